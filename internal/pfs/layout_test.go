package pfs

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProps(signed, encrypted bool) Properties {
	var seed [16]byte
	copy(seed[:], "0123456789abcdef")
	return Properties{
		Signed:    signed,
		Encrypted: encrypted,
		BlockSize: BlockSize,
		Seed:      seed,
		Ekpfs:     make([]byte, 32),
		FileTime:  time.Unix(1700000000, 0),
	}
}

func zeroWriter(size int64) WriteFunc {
	return func(w io.Writer) error {
		buf := make([]byte, 0x8000)
		remaining := size
		for remaining > 0 {
			n := int64(len(buf))
			if n > remaining {
				n = remaining
			}
			if _, err := w.Write(buf[:n]); err != nil {
				return err
			}
			remaining -= n
		}
		return nil
	}
}

func treeWithFiles(files map[string]int64) *Tree {
	tree := &Tree{}
	tree.AddDir(-1, "uroot")
	for name, size := range files {
		tree.AddFile(0, name, size, zeroWriter(size))
	}
	return tree
}

func TestLayoutSingleSmallFile(t *testing.T) {
	t.Parallel()

	// 100 KiB spans two blocks, both in direct slots.
	tree := treeWithFiles(map[string]int64{"eboot.bin": 100 * 1024})
	_, err := NewBuilder(testProps(true, false), tree)
	require.NoError(t, err)

	idx := tree.Lookup("eboot.bin")
	ino := tree.Nodes[idx].Ino
	assert.Equal(t, uint32(2), ino.Blocks)
	assert.Equal(t, ino.Direct[0]+1, ino.Direct[1])
	assert.Equal(t, int32(0), ino.Indirect[0])
	assert.Equal(t, int32(0), ino.Indirect[1])
	assert.Equal(t, int64(100*1024), ino.Size)
}

func TestLayoutLargeFileIndirection(t *testing.T) {
	t.Parallel()

	// 1 GiB = 16384 blocks: 12 direct, 1820 through the single-indirect
	// block, the rest through 8 second-level blocks under the double.
	const gib = int64(1) << 30
	tree := treeWithFiles(map[string]int64{"big.bin": gib})
	b, err := NewBuilder(testProps(true, false), tree)
	require.NoError(t, err)

	assert.Equal(t, int64(10), IndirectBlocksNeeded(gib))

	idx := tree.Lookup("big.bin")
	ino := tree.Nodes[idx].Ino
	assert.Equal(t, uint32(16384), ino.Blocks)
	assert.NotEqual(t, int32(0), ino.Indirect[0])
	assert.NotEqual(t, int32(0), ino.Indirect[1])

	// The data pool holds the file's 16384 leaf blocks plus uroot's one
	// dirent block.
	assert.Len(t, b.DataSigs(), 16384+1)

	// Serial pool: header, inode block, fpt, super-root dirents, plus the
	// 10 indirect blocks.
	assert.GreaterOrEqual(t, len(b.FinalSigs()), 10+4)

	// Every planned data signature covers a distinct block.
	seen := map[int64]bool{}
	for _, e := range b.DataSigs() {
		assert.False(t, seen[e.Block])
		seen[e.Block] = true
	}
}

func TestLayoutBlockCountsMatchSizes(t *testing.T) {
	t.Parallel()

	tree := treeWithFiles(map[string]int64{
		"a.bin": 1,
		"b.bin": BlockSize,
		"c.bin": BlockSize + 1,
	})
	_, err := NewBuilder(testProps(true, false), tree)
	require.NoError(t, err)

	for name, want := range map[string]uint32{"a.bin": 1, "b.bin": 1, "c.bin": 2} {
		ino := tree.Nodes[tree.Lookup(name)].Ino
		assert.Equal(t, want, ino.Blocks, name)
	}
}

func TestLayoutCollisionResolverInodeNumbers(t *testing.T) {
	t.Parallel()

	// The path hash folds case and is order-insensitive over characters,
	// so two anagram names collide.
	tree := treeWithFiles(map[string]int64{"ab.bin": 16, "ba.bin": 16})
	b, err := NewBuilder(testProps(true, false), tree)
	require.NoError(t, err)

	require.True(t, b.HasCollision())
	assert.Equal(t, uint32(2), b.crNode.Ino.Number)
	assert.Equal(t, uint32(3), b.uroot.Ino.Number)

	srDirents := b.dirents[b.superroot]
	require.Len(t, srDirents, 3)
	assert.Equal(t, "flat_path_table", srDirents[0].Name)
	assert.Equal(t, "collision_resolver", srDirents[1].Name)
	assert.Equal(t, "uroot", srDirents[2].Name)
}

func TestLayoutNoCollisionUrootIsInode2(t *testing.T) {
	t.Parallel()

	tree := treeWithFiles(map[string]int64{"eboot.bin": 16})
	b, err := NewBuilder(testProps(true, false), tree)
	require.NoError(t, err)

	require.False(t, b.HasCollision())
	assert.Equal(t, uint32(2), b.uroot.Ino.Number)
}

func TestLayoutMinBlocksFloor(t *testing.T) {
	t.Parallel()

	props := testProps(true, false)
	props.MinBlocks = 1000
	tree := treeWithFiles(map[string]int64{"eboot.bin": 16})
	b, err := NewBuilder(props, tree)
	require.NoError(t, err)
	assert.Equal(t, int64(1000*BlockSize), b.ImageSize())
}

func TestLayoutUnsignedSentinels(t *testing.T) {
	t.Parallel()

	tree := treeWithFiles(map[string]int64{"eboot.bin": 16})
	b, err := NewBuilder(Properties{BlockSize: BlockSize, FileTime: time.Unix(1700000000, 0)}, tree)
	require.NoError(t, err)

	assert.Empty(t, b.DataSigs())
	assert.Empty(t, b.FinalSigs())

	ino := tree.Nodes[tree.Lookup("eboot.bin")].Ino
	assert.NotEqual(t, int32(-1), ino.Direct[0])
	for i := 1; i < NDirect; i++ {
		assert.Equal(t, int32(-1), ino.Direct[i])
	}
	assert.Equal(t, int32(-1), ino.Indirect[0])
}

func TestDirentStreamNeverCrossesBlocks(t *testing.T) {
	t.Parallel()

	var dirents []Dirent
	dirents = append(dirents,
		Dirent{Ino: 1, Type: DirentDot, Name: "."},
		Dirent{Ino: 0, Type: DirentDotDot, Name: ".."},
	)
	// Enough long names to spill into a second block.
	name := "a-rather-long-file-name-padding-the-directory-block-0123456789"
	for i := 0; i < 1000; i++ {
		dirents = append(dirents, Dirent{Ino: uint32(i + 2), Type: DirentFile, Name: name})
	}
	stream := direntStream(dirents)
	assert.Equal(t, direntStreamSize(dirents), int64(len(stream)))
	require.Greater(t, len(stream), BlockSize)

	// Walk the records: each must fit within its block.
	off := 0
	for off < len(stream) {
		entSize := int(uint32(stream[off+12]) | uint32(stream[off+13])<<8 |
			uint32(stream[off+14])<<16 | uint32(stream[off+15])<<24)
		if entSize == 0 {
			break
		}
		start := off % BlockSize
		assert.LessOrEqual(t, start+direntHeaderSize, BlockSize)
		off += entSize
	}
}
