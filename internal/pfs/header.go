package pfs

import (
	"github.com/orbistools/pkgforge/internal/utils/binutil"
)

// PFS header mode flags.
const (
	headerModeSigned    uint16 = 0x1
	headerModeIs64      uint16 = 0x2
	headerModeEncrypted uint16 = 0x4
)

const (
	pfsVersion = 1
	pfsMagic   = 20130315

	// headerInodeSigOffset is where the embedded inode-block dinode sits
	// within the header block; its signature area therefore starts at 0xB8.
	headerInodeSigOffset = 0x54
	headerSeedOffset     = 0x370

	// HeaderSignedOffset is where the header's own signature is stored;
	// HeaderSignedSize is the length of the span from the start of block 0
	// that this signature covers.
	HeaderSignedOffset = 0x380
	HeaderSignedSize   = 0x5A0
)

// Header describes a PFS image: geometry, mode flags, the seed feeding the
// key derivations, and an embedded dinode addressing the inode blocks via
// the same direct/indirect scheme the file inodes use.
type Header struct {
	Signed    bool
	Encrypted bool
	BlockSize uint32
	Seed      [16]byte

	NDinode      int64
	Ndblock      int64
	NDinodeBlock int64
	UrootIno     int64

	// InodeBlockSig addresses the inode blocks. In signed mode its
	// signature slots are final-signature targets at 0xB8 + 36*i.
	InodeBlockSig *Dinode
}

// NewHeader builds a header for the given mode. The seed is recorded only
// when the image is signed or encrypted.
func NewHeader(signed, encrypted bool, blockSize uint32, seed [16]byte) *Header {
	h := &Header{
		Signed:    signed,
		Encrypted: encrypted,
		BlockSize: blockSize,
	}
	if signed || encrypted {
		h.Seed = seed
	}
	h.InodeBlockSig = NewDinode(signed, ModeFile, InodeFlagInternal|InodeFlagReadonly, timeZero)
	return h
}

// Mode returns the header flag word.
func (h *Header) Mode() uint16 {
	m := headerModeIs64
	if h.Signed {
		m |= headerModeSigned
	}
	if h.Encrypted {
		m |= headerModeEncrypted
	}
	return m
}

// Encode serializes the header into a full block. Everything from
// HeaderSignedOffset to the end of the block is left zero; the signing pass
// stores the header signature at HeaderSignedOffset.
func (h *Header) Encode() ([]byte, error) {
	w := binutil.NewLEWriter()
	w.Put(int64(pfsVersion))
	w.Put(int64(pfsMagic))
	w.Put(int64(0)) // id
	w.Put(uint8(0)) // fmode
	w.Put(uint8(0)) // clean
	w.Put(uint8(0)) // readonly
	w.Put(uint8(0)) // rsv
	w.Put(h.Mode())
	w.Put(uint16(0))
	w.Put(h.BlockSize)
	w.Put(uint32(0)) // nbackup
	w.Put(h.Ndblock) // nblock
	w.Put(h.NDinode)
	w.Put(h.Ndblock)
	w.Put(h.NDinodeBlock)
	w.Put(h.UrootIno)
	w.PadTo(headerInodeSigOffset)
	ibs, err := h.InodeBlockSig.EncodeS32()
	if err != nil {
		return nil, err
	}
	w.PutBytes(ibs)
	w.PadTo(headerSeedOffset)
	w.PutBytes(h.Seed[:])
	w.PadTo(int(h.BlockSize))
	return w.Bytes()
}
