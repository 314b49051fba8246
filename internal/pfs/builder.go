package pfs

import (
	"fmt"
	"io"
	"time"

	"github.com/orbistools/pkgforge/internal/utils/errors"
)

// Properties selects the image mode and keys.
type Properties struct {
	Signed    bool
	Encrypted bool
	NewCrypt  bool
	BlockSize uint32
	Seed      [16]byte
	MinBlocks int64
	Ekpfs     []byte
	FileTime  time.Time
}

// Builder lays out and writes one PFS image. Construction runs the setup
// and layout phases; inodes and dirents are frozen afterwards, and
// WriteData/Sign/Encrypt only fill the planned byte ranges.
type Builder struct {
	props Properties
	tree  *Tree

	header    *Header
	superroot *FSNode
	fptNode   *FSNode
	crNode    *FSNode
	uroot     *FSNode

	// allNodes holds collision resolver, uroot, directories and files in
	// their data-block order; allInodes holds every inode by number.
	allNodes  []*FSNode
	allInodes []*Dinode

	dirents map[*FSNode][]Dirent

	plan         *layout
	indirectPtrs []indirectPtr
}

// NewBuilder runs the setup phase over the staged tree and computes the
// block layout. The returned builder knows the exact image size.
func NewBuilder(props Properties, tree *Tree) (*Builder, error) {
	if props.BlockSize != BlockSize {
		return nil, fmt.Errorf("%w: block size must be 0x%X", errors.ErrInvalidArgument, BlockSize)
	}
	if props.Encrypted && !props.Signed {
		return nil, fmt.Errorf("%w: encrypted images must be signed", errors.ErrInvalidArgument)
	}
	b := &Builder{props: props, tree: tree, dirents: map[*FSNode][]Dirent{}}
	if err := b.setup(); err != nil {
		return nil, err
	}
	plan, err := b.calculateDataBlockLayout()
	if err != nil {
		return nil, err
	}
	b.plan = plan
	b.header.Ndblock = plan.ndblock
	b.header.NDinodeBlock = plan.dinodeBlockCount
	return b, nil
}

// setup creates the root structure, numbers every inode and builds the
// flat path table from the complete node list.
func (b *Builder) setup() error {
	signed := b.props.Signed
	t := b.props.FileTime
	if t.IsZero() {
		t = timeZero
	}

	dirs := b.tree.Dirs()
	files := b.tree.Files()

	// Collision scan decides whether inode 2 is the resolver or uroot.
	var paths []PathEntry
	for _, i := range dirs {
		paths = append(paths, PathEntry{Path: b.tree.FullPath(i)})
	}
	for _, i := range files {
		paths = append(paths, PathEntry{Path: b.tree.FullPath(i)})
	}
	hasCollision := pathsCollide(paths)

	internal := InodeFlagInternal | InodeFlagReadonly
	b.superroot = &FSNode{Kind: NodeDir, Name: "", Parent: -1}
	b.superroot.Ino = NewDinode(signed, ModeDir, internal, t)
	b.superroot.Ino.Number = 0
	b.superroot.Ino.Nlink = 2

	b.fptNode = &FSNode{Kind: NodeBlob, Name: "flat_path_table", Parent: -1}
	b.fptNode.Ino = NewDinode(signed, ModeFile, internal, t)
	b.fptNode.Ino.Number = 1

	next := uint32(2)
	if hasCollision {
		b.crNode = &FSNode{Kind: NodeBlob, Name: "collision_resolver", Parent: -1}
		b.crNode.Ino = NewDinode(signed, ModeFile, internal, t)
		b.crNode.Ino.Number = next
		next++
	}

	b.uroot = b.tree.Root()
	b.uroot.Ino = NewDinode(signed, ModeDir, InodeFlagReadonly, t)
	b.uroot.Ino.Number = next
	b.uroot.Ino.Nlink = 2
	next++

	// Super-root dirents: path table, optional resolver, then uroot.
	srDirents := []Dirent{{Ino: 1, Type: DirentFile, Name: "flat_path_table"}}
	if b.crNode != nil {
		srDirents = append(srDirents, Dirent{Ino: b.crNode.Ino.Number, Type: DirentFile, Name: "collision_resolver"})
	}
	srDirents = append(srDirents, Dirent{Ino: b.uroot.Ino.Number, Type: DirentDir, Name: "uroot"})
	b.dirents[b.superroot] = srDirents

	b.dirents[b.uroot] = []Dirent{
		{Ino: b.uroot.Ino.Number, Type: DirentDot, Name: "."},
		{Ino: 0, Type: DirentDotDot, Name: ".."},
	}

	// Directory inodes in ordinal order; each adds itself to its parent.
	for _, di := range dirs {
		n := b.tree.Nodes[di]
		n.Ino = NewDinode(signed, ModeDir, InodeFlagReadonly, t)
		n.Ino.Number = next
		n.Ino.Nlink = 2
		next++
		parent := b.parentNode(di)
		b.dirents[n] = []Dirent{
			{Ino: n.Ino.Number, Type: DirentDot, Name: "."},
			{Ino: parent.Ino.Number, Type: DirentDotDot, Name: ".."},
		}
		b.dirents[parent] = append(b.dirents[parent], Dirent{Ino: n.Ino.Number, Type: DirentDir, Name: n.Name})
		parent.Ino.Nlink++
	}

	// File inodes in shallow-last order.
	for _, fi := range files {
		n := b.tree.Nodes[fi]
		flags := InodeFlagReadonly
		if n.Compress {
			flags |= InodeFlagCompressed
		}
		n.Ino = NewDinode(signed, ModeFile, flags, t)
		n.Ino.Number = next
		n.Ino.Size = n.Size
		n.Ino.SizeCompressed = n.SizeCompressed
		next++
		parent := b.parentNode(fi)
		b.dirents[parent] = append(b.dirents[parent], Dirent{Ino: n.Ino.Number, Type: DirentFile, Name: n.Name})
	}

	// Path table over the now-numbered node list.
	paths = paths[:0]
	for _, i := range append(append([]int{}, dirs...), files...) {
		paths = append(paths, PathEntry{Path: b.tree.FullPath(i), Ino: b.tree.Nodes[i].Ino.Number})
	}
	fpt, cr := BuildPathTable(paths)
	b.fptNode.Size = fpt.Size()
	b.fptNode.Ino.Size = fpt.Size()
	b.fptNode.Write = fpt.WriteTo
	if (cr != nil) != hasCollision {
		return fmt.Errorf("%w: collision scan and table builder disagree", errors.ErrSizeMismatch)
	}
	if cr != nil {
		b.crNode.Size = cr.Size()
		b.crNode.Ino.Size = cr.Size()
		b.crNode.Write = cr.WriteTo
	}

	// Directory sizes depend on the finished dirent lists.
	b.finishDir(b.superroot)
	b.finishDir(b.uroot)
	for _, di := range dirs {
		b.finishDir(b.tree.Nodes[di])
	}

	// Freeze node and inode orderings.
	if b.crNode != nil {
		b.allNodes = append(b.allNodes, b.crNode)
	}
	b.allNodes = append(b.allNodes, b.uroot)
	for _, di := range dirs {
		b.allNodes = append(b.allNodes, b.tree.Nodes[di])
	}
	for _, fi := range files {
		b.allNodes = append(b.allNodes, b.tree.Nodes[fi])
	}

	b.allInodes = append(b.allInodes, b.superroot.Ino, b.fptNode.Ino)
	if b.crNode != nil {
		b.allInodes = append(b.allInodes, b.crNode.Ino)
	}
	b.allInodes = append(b.allInodes, b.uroot.Ino)
	for _, di := range dirs {
		b.allInodes = append(b.allInodes, b.tree.Nodes[di].Ino)
	}
	for _, fi := range files {
		b.allInodes = append(b.allInodes, b.tree.Nodes[fi].Ino)
	}

	b.header = NewHeader(b.props.Signed, b.props.Encrypted, b.props.BlockSize, b.props.Seed)
	b.header.NDinode = int64(len(b.allInodes))
	b.header.UrootIno = int64(b.uroot.Ino.Number)
	return nil
}

func (b *Builder) parentNode(i int) *FSNode {
	p := b.tree.Nodes[i].Parent
	if p < 0 {
		return b.uroot
	}
	return b.tree.Nodes[p]
}

// finishDir sets a directory's payload size from its dirent stream. The
// inode size is the stream rounded up to whole blocks.
func (b *Builder) finishDir(n *FSNode) {
	n.Size = direntStreamSize(b.dirents[n])
	n.Ino.Size = DataBlocks(n.Size) * BlockSize
}

func pathsCollide(entries []PathEntry) bool {
	seen := make(map[uint32]bool, len(entries))
	for _, e := range entries {
		h := HashPath(e.Path)
		if seen[h] {
			return true
		}
		seen[h] = true
	}
	return false
}

// ImageSize returns the total image size in bytes.
func (b *Builder) ImageSize() int64 {
	return b.plan.ndblock * BlockSize
}

// Header returns the image header (complete after layout).
func (b *Builder) Header() *Header {
	return b.header
}

// HasCollision reports whether the image carries a collision resolver.
func (b *Builder) HasCollision() bool {
	return b.crNode != nil
}

// DataSigs exposes the planned data-block signatures.
func (b *Builder) DataSigs() []BlockSigInfo {
	return b.plan.dataSigs
}

// FinalSigs exposes the planned indirect/metadata signatures.
func (b *Builder) FinalSigs() []BlockSigInfo {
	return b.plan.finalSigs
}

// EmptyBlock returns the block index of the plaintext hole, or -1.
func (b *Builder) EmptyBlock() int64 {
	return b.plan.emptyBlock
}

// WriteData fills the image region with header, inodes, dirents and file
// payloads. image must be at least ImageSize() bytes.
func (b *Builder) WriteData(image []byte) error {
	if int64(len(image)) < b.ImageSize() {
		return fmt.Errorf("%w: image region %d below %d", errors.ErrShortWrite, len(image), b.ImageSize())
	}
	hdr, err := b.header.Encode()
	if err != nil {
		return err
	}
	copy(image, hdr)

	signed := b.props.Signed
	for idx, ino := range b.allInodes {
		enc, err := ino.Encode(signed)
		if err != nil {
			return err
		}
		copy(image[inodeImageOffset(idx, signed):], enc)
	}

	copy(image[b.plan.superrootBlock*BlockSize:], direntStream(b.dirents[b.superroot]))

	if err := b.writePayload(image, b.fptNode); err != nil {
		return err
	}
	for _, n := range b.allNodes {
		if err := b.writePayload(image, n); err != nil {
			return err
		}
	}

	for _, p := range b.indirectPtrs {
		var off int64
		if signed {
			off = p.block*BlockSize + p.slot*SigEntrySize + 32
		} else {
			off = p.block*BlockSize + p.slot*4
		}
		putU32(image[off:], uint32(p.value))
	}
	return nil
}

func (b *Builder) writePayload(image []byte, n *FSNode) error {
	size := n.Size
	if n.Compress {
		size = n.SizeCompressed
	}
	if size == 0 {
		return nil
	}
	start := int64(n.Ino.Direct[0]) * BlockSize
	region := image[start : start+DataBlocks(size)*BlockSize]
	if n.Kind == NodeDir {
		copy(region, direntStream(b.dirents[n]))
		return nil
	}
	w := &sliceWriter{buf: region}
	if err := n.Write(w); err != nil {
		return err
	}
	if int64(w.off) != size {
		return fmt.Errorf("%w: node %q wrote %d of %d bytes", errors.ErrSizeMismatch, n.Name, w.off, size)
	}
	return nil
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// sliceWriter writes sequentially into a fixed region.
type sliceWriter struct {
	buf []byte
	off int
}

func (w *sliceWriter) Write(p []byte) (int, error) {
	if w.off+len(p) > len(w.buf) {
		return 0, io.ErrShortWrite
	}
	copy(w.buf[w.off:], p)
	w.off += len(p)
	return len(p), nil
}

// Build writes, signs and encrypts the image into the given region using up
// to workers parallel tasks (1 disables parallelism).
func (b *Builder) Build(image []byte, workers int) error {
	if err := b.WriteData(image); err != nil {
		return err
	}
	if b.props.Signed {
		if err := b.Sign(image, workers); err != nil {
			return err
		}
	}
	if b.props.Encrypted {
		if err := b.Encrypt(image, workers); err != nil {
			return err
		}
	}
	return nil
}
