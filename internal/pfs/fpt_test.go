package pfs

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPathFoldsCase(t *testing.T) {
	t.Parallel()

	assert.Equal(t, HashPath("EBOOT.BIN"), HashPath("eboot.bin"))
	assert.NotEqual(t, HashPath("eboot.bin"), HashPath("eboot.bim"))
}

func TestBuildPathTableNoCollision(t *testing.T) {
	t.Parallel()

	table, resolver := BuildPathTable([]PathEntry{
		{Path: "eboot.bin", Ino: 4},
		{Path: "sce_module", Ino: 3},
	})
	require.Nil(t, resolver)
	assert.False(t, table.HasCollision())
	assert.Equal(t, int64(16), table.Size())

	ino, ok := table.Lookup("eboot.bin")
	require.True(t, ok)
	assert.Equal(t, uint32(4), ino)

	_, ok = table.Lookup("missing.bin")
	assert.False(t, ok)
}

// collidingPaths returns two distinct paths with equal table hashes. The
// hash folds case, so a case swap collides without being the same path.
func collidingPaths() (string, string) {
	return "data/file.bin", "DATA/FILE.BIN"
}

func TestBuildPathTableCollision(t *testing.T) {
	t.Parallel()

	a, b := collidingPaths()
	require.Equal(t, HashPath(a), HashPath(b))

	table, resolver := BuildPathTable([]PathEntry{
		{Path: a, Ino: 10},
		{Path: b, Ino: 11},
		{Path: "other.bin", Ino: 12},
	})
	require.NotNil(t, resolver)
	assert.True(t, table.HasCollision())
	assert.Greater(t, resolver.Size(), int64(0))

	ino, ok := table.Lookup(a)
	require.True(t, ok)
	assert.Equal(t, uint32(10), ino)
	ino, ok = table.Lookup(b)
	require.True(t, ok)
	assert.Equal(t, uint32(11), ino)
	ino, ok = table.Lookup("other.bin")
	require.True(t, ok)
	assert.Equal(t, uint32(12), ino)
}

func TestPathTableSerializesDeterministically(t *testing.T) {
	t.Parallel()

	entries := []PathEntry{
		{Path: "b.bin", Ino: 5},
		{Path: "a.bin", Ino: 4},
		{Path: "dir/c.bin", Ino: 6},
	}
	var first, second bytes.Buffer
	t1, _ := BuildPathTable(entries)
	require.NoError(t, t1.WriteTo(&first))
	t2, _ := BuildPathTable([]PathEntry{entries[2], entries[0], entries[1]})
	require.NoError(t, t2.WriteTo(&second))
	assert.Equal(t, first.Bytes(), second.Bytes())
	assert.Equal(t, t1.Size(), int64(first.Len()))
}
