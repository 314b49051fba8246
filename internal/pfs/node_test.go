package pfs

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStagedFile(t *testing.T, root, rel string, data []byte) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestBuildTreeShallowLastFileOrder(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeStagedFile(t, root, "x.txt", []byte("x"))
	writeStagedFile(t, root, "a/b/c.txt", []byte("c"))

	tree, err := BuildTree(root, nil)
	require.NoError(t, err)

	files := tree.Files()
	require.Len(t, files, 2)
	assert.Equal(t, "a/b/c.txt", tree.FullPath(files[0]))
	assert.Equal(t, "x.txt", tree.FullPath(files[1]))

	dirs := tree.Dirs()
	require.Len(t, dirs, 2)
	assert.Equal(t, "a", tree.FullPath(dirs[0]))
	assert.Equal(t, "a/b", tree.FullPath(dirs[1]))
}

func TestBuildTreeExcludesRecognizedEntries(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeStagedFile(t, root, "eboot.bin", []byte("eboot"))
	writeStagedFile(t, root, "sce_sys/param.sfo", []byte("sfo"))
	writeStagedFile(t, root, "sce_sys/extra.bin", []byte("keep"))

	tree, err := BuildTree(root, func(rel string) bool {
		return rel == "sce_sys/param.sfo"
	})
	require.NoError(t, err)

	assert.Equal(t, -1, tree.Lookup("sce_sys/param.sfo"))
	assert.NotEqual(t, -1, tree.Lookup("sce_sys/extra.bin"))
	assert.NotEqual(t, -1, tree.Lookup("eboot.bin"))
}

func TestFileWriteCallbackStreamsContents(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	payload := bytes.Repeat([]byte("orbis"), 100)
	writeStagedFile(t, root, "data.bin", payload)

	tree, err := BuildTree(root, nil)
	require.NoError(t, err)
	idx := tree.Lookup("data.bin")
	require.NotEqual(t, -1, idx)
	n := tree.Nodes[idx]
	assert.Equal(t, int64(len(payload)), n.Size)

	var sink bytes.Buffer
	require.NoError(t, n.Write(&sink))
	assert.Equal(t, payload, sink.Bytes())
}

func TestTreeFullPath(t *testing.T) {
	t.Parallel()

	tree := &Tree{}
	tree.AddDir(-1, "uroot")
	d := tree.AddDir(0, "sub")
	f := tree.AddFile(d, "f.bin", 1, func(w io.Writer) error {
		_, err := w.Write([]byte{0})
		return err
	})
	assert.Equal(t, "", tree.FullPath(0))
	assert.Equal(t, "sub", tree.FullPath(d))
	assert.Equal(t, "sub/f.bin", tree.FullPath(f))
}
