package pfs

import (
	"time"

	"github.com/orbistools/pkgforge/internal/utils/binutil"
)

const (
	// BlockSize is the fixed PFS block size.
	BlockSize = 0x10000

	// DinodeS32Size is the on-disk size of the signed inode variant, which
	// carries a 36-byte signature+pointer pair per block slot.
	DinodeS32Size = 0x2C0
	// DinodeD32Size is the on-disk size of the unsigned inode variant.
	DinodeD32Size = 0xA8

	// NDirect is the number of direct block slots per inode.
	NDirect = 12

	// SigEntrySize is one HMAC-SHA256 signature plus a 32-bit block index.
	SigEntrySize = 36
	// SigsPerBlock is how many signature entries one indirect block holds.
	SigsPerBlock = BlockSize / SigEntrySize
	// PtrsPerBlock is how many plain pointers an unsigned indirect block holds.
	PtrsPerBlock = BlockSize / 4

	// dinodeBlockTableOffset is where the block pointer area starts within
	// either dinode variant.
	dinodeBlockTableOffset = 0x64
)

var timeZero = time.Unix(0, 0)

// InodeMode holds the POSIX-style type and permission bits.
type InodeMode uint16

const (
	ModeFile InodeMode = 0x81A4 // S_IFREG | 0644
	ModeDir  InodeMode = 0x41ED // S_IFDIR | 0755
)

// InodeFlags is the PFS inode flag word.
type InodeFlags uint32

const (
	InodeFlagReadonly   InodeFlags = 0x00000001
	InodeFlagCompressed InodeFlags = 0x00000008
	InodeFlagInternal   InodeFlags = 0x00020000

	// inodeFlagsSignedFixed are the two bits set on every inode of a
	// signed image.
	inodeFlagsSignedFixed InodeFlags = 0x00000010 | 0x00001000
)

// Dinode is the in-memory form of one PFS inode. Two physical layouts
// exist: the signed variant interleaves a 32-byte signature with each block
// pointer, the unsigned variant stores bare pointers.
type Dinode struct {
	Number         uint32
	Mode           InodeMode
	Nlink          uint16
	Flags          InodeFlags
	Size           int64
	SizeCompressed int64
	Time           time.Time
	UID            uint32
	GID            uint32
	Blocks         uint32

	Direct   [NDirect]int32
	Indirect [2]int32
}

// NewDinode returns an inode with the pointer table initialized for the
// given mode: unused slots are 0 in signed images and -1 otherwise.
func NewDinode(signed bool, mode InodeMode, flags InodeFlags, t time.Time) *Dinode {
	d := &Dinode{Mode: mode, Flags: flags, Nlink: 1, Time: t}
	if signed {
		d.Flags |= inodeFlagsSignedFixed
	} else {
		for i := range d.Direct {
			d.Direct[i] = -1
		}
		d.Indirect[0] = -1
		d.Indirect[1] = -1
	}
	return d
}

// DinodeSizeOf returns the serialized inode size for the given image mode.
func DinodeSizeOf(signed bool) int {
	if signed {
		return DinodeS32Size
	}
	return DinodeD32Size
}

// InodesPerBlock returns how many inodes one block packs; the remainder of
// the block is padding.
func InodesPerBlock(signed bool) int {
	return BlockSize / DinodeSizeOf(signed)
}

func (d *Dinode) encodeCommon(w *binutil.Writer) {
	w.Put(uint16(d.Mode))
	w.Put(d.Nlink)
	w.Put(uint32(d.Flags))
	w.Put(d.Size)
	w.Put(d.SizeCompressed)
	sec := uint64(d.Time.Unix())
	nsec := uint32(d.Time.Nanosecond())
	for i := 0; i < 4; i++ {
		w.Put(sec)
	}
	for i := 0; i < 4; i++ {
		w.Put(nsec)
	}
	w.Put(d.UID)
	w.Put(d.GID)
	w.PutZeros(16)
	w.Put(d.Blocks)
}

// EncodeS32 serializes the signed variant. Signature bytes are zero here;
// the signing pass writes them in place later, together with the block
// index copy that follows each signature.
func (d *Dinode) EncodeS32() ([]byte, error) {
	w := binutil.NewLEWriter()
	d.encodeCommon(w)
	for i := 0; i < NDirect; i++ {
		w.PutZeros(32)
		w.Put(d.Direct[i])
	}
	for i := 0; i < 2; i++ {
		w.PutZeros(32)
		w.Put(d.Indirect[i])
	}
	w.PadTo(DinodeS32Size)
	return w.Bytes()
}

// EncodeD32 serializes the unsigned variant.
func (d *Dinode) EncodeD32() ([]byte, error) {
	w := binutil.NewLEWriter()
	d.encodeCommon(w)
	for i := 0; i < NDirect; i++ {
		w.Put(d.Direct[i])
	}
	w.Put(d.Indirect[0])
	w.Put(d.Indirect[1])
	w.PadTo(DinodeD32Size)
	return w.Bytes()
}

// Encode serializes the variant matching the image mode.
func (d *Dinode) Encode(signed bool) ([]byte, error) {
	if signed {
		return d.EncodeS32()
	}
	return d.EncodeD32()
}

// SigSlotOffset returns the offset of block-slot i's signature relative to
// the inode start. Slots 0..11 are the direct blocks, 12 and 13 the
// indirect blocks.
func SigSlotOffset(slot int) int64 {
	return dinodeBlockTableOffset + int64(slot)*SigEntrySize
}

// DataBlocks returns the data block count for a payload of the given size.
func DataBlocks(size int64) int64 {
	return (size + BlockSize - 1) / BlockSize
}

// IndirectBlocksNeeded returns how many indirect blocks (single, double and
// second-level) a payload of the given size consumes in signed mode.
func IndirectBlocksNeeded(size int64) int64 {
	blocks := DataBlocks(size)
	if blocks <= NDirect {
		return 0
	}
	rest := blocks - NDirect
	if rest <= SigsPerBlock {
		return 1
	}
	secondLevel := (rest - SigsPerBlock + SigsPerBlock - 1) / SigsPerBlock
	return 1 + 1 + secondLevel
}
