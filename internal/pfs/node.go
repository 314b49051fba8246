// Package pfs builds PlayStation File System disk images: a staged tree is
// laid out into 64 KiB blocks with inodes, dirents and a flat path table,
// then optionally signed per block with HMAC-SHA256 and encrypted with
// AES-XTS at 4 KiB sector granularity.
package pfs

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/orbistools/pkgforge/internal/utils/errors"
	"github.com/orbistools/pkgforge/internal/utils/fsutil"
)

// NodeKind discriminates the FSNode variants.
type NodeKind int

const (
	NodeDir NodeKind = iota
	NodeFile
	// NodeBlob is a synthetic file whose contents come from a write
	// callback instead of the staging directory (path table, collision
	// resolver, embedded inner image). Block layout treats it as a file.
	NodeBlob
)

// WriteFunc streams a file's contents into the given sink.
type WriteFunc func(w io.Writer) error

// FSNode is one entry of the staging tree. Nodes live in an arena owned by
// the Tree; parents are referenced by arena index so the structure stays
// acyclic.
type FSNode struct {
	Kind   NodeKind
	Name   string
	Parent int // arena index, -1 for the tree root

	// Dir fields
	Children []int // arena indices, dirent order

	// File fields
	Size           int64
	SizeCompressed int64
	Compress       bool
	Write          WriteFunc

	// Assigned during builder setup
	Ino *Dinode
}

// Tree is the arena of staging nodes. Index 0 is the content root (uroot).
type Tree struct {
	Nodes []*FSNode
}

// Root returns the content root directory node.
func (t *Tree) Root() *FSNode {
	return t.Nodes[0]
}

// FullPath returns the slash-separated path of node i relative to the root,
// without a leading slash. The root itself yields "".
func (t *Tree) FullPath(i int) string {
	n := t.Nodes[i]
	if n.Parent < 0 {
		return ""
	}
	parent := t.FullPath(n.Parent)
	if parent == "" {
		return n.Name
	}
	return parent + "/" + n.Name
}

// parentPath returns the node's parent path with a trailing slash, or ""
// for nodes directly under the root.
func (t *Tree) parentPath(i int) string {
	p := t.FullPath(t.Nodes[i].Parent)
	if p == "" {
		return ""
	}
	return p + "/"
}

// AddDir inserts a directory under parent and returns its index.
func (t *Tree) AddDir(parent int, name string) int {
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, &FSNode{Kind: NodeDir, Name: name, Parent: parent})
	if parent >= 0 {
		t.Nodes[parent].Children = append(t.Nodes[parent].Children, idx)
	}
	return idx
}

// AddFile inserts a file under parent and returns its index.
func (t *Tree) AddFile(parent int, name string, size int64, write WriteFunc) int {
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, &FSNode{Kind: NodeFile, Name: name, Parent: parent, Size: size, Write: write})
	if parent >= 0 {
		t.Nodes[parent].Children = append(t.Nodes[parent].Children, idx)
	}
	return idx
}

// Dirs returns the directory indices (root excluded) in ordinal full-path
// order. The order is load-bearing: inode numbering and dirent emission
// follow it, and reproducible output depends on it.
func (t *Tree) Dirs() []int {
	var dirs []int
	for i := 1; i < len(t.Nodes); i++ {
		if t.Nodes[i].Kind == NodeDir {
			dirs = append(dirs, i)
		}
	}
	sort.SliceStable(dirs, func(a, b int) bool {
		return t.FullPath(dirs[a]) < t.FullPath(dirs[b])
	})
	return dirs
}

// Files returns the file indices sorted by the synthetic shallow-last key:
// parentPath + "zzzzzzzzzz/" + name. The marker pushes files in shallow
// directories after files in deeper ones.
func (t *Tree) Files() []int {
	var files []int
	for i := 1; i < len(t.Nodes); i++ {
		if t.Nodes[i].Kind != NodeDir {
			files = append(files, i)
		}
	}
	sort.SliceStable(files, func(a, b int) bool {
		return t.fileSortKey(files[a]) < t.fileSortKey(files[b])
	})
	return files
}

func (t *Tree) fileSortKey(i int) string {
	return t.parentPath(i) + "zzzzzzzzzz/" + t.Nodes[i].Name
}

// Lookup finds a node by its full path, or -1.
func (t *Tree) Lookup(path string) int {
	for i := range t.Nodes {
		if t.FullPath(i) == path {
			return i
		}
	}
	return -1
}

// BuildTree scans rootDir into a staging tree. File contents are not read
// eagerly; each file node carries a write callback that streams the source
// file when the image is written. Entries for which exclude returns true are
// skipped (they become PKG entries instead of PFS files).
func BuildTree(rootDir string, exclude func(rel string) bool) (*Tree, error) {
	if !fsutil.DirExists(rootDir) {
		return nil, fmt.Errorf("%w: %s", errors.ErrDirNotFound, rootDir)
	}
	t := &Tree{}
	t.AddDir(-1, "uroot")
	byPath := map[string]int{"": 0}

	err := fsutil.WalkDir(rootDir, func(rel string, entry fsutil.DirEntry) error {
		if exclude != nil && exclude(rel) {
			if entry.IsDir {
				return nil // its children find no parent below and are skipped too
			}
			return nil
		}
		parentRel := ""
		if idx := strings.LastIndexByte(rel, '/'); idx >= 0 {
			parentRel = rel[:idx]
		}
		parent, ok := byPath[parentRel]
		if !ok {
			// Parent was excluded; skip the subtree entry.
			return nil
		}
		if entry.IsDir {
			byPath[rel] = t.AddDir(parent, entry.Name)
			return nil
		}
		src := entry.Path
		t.AddFile(parent, entry.Name, entry.Size, func(w io.Writer) error {
			f, err := os.Open(src)
			if err != nil {
				return fmt.Errorf("%w: %v", errors.ErrFileReadError, err)
			}
			defer f.Close()
			if _, err := io.Copy(w, f); err != nil {
				return fmt.Errorf("%w: %v", errors.ErrFileReadError, err)
			}
			return nil
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrPathNotAccessible, err)
	}
	return t, nil
}
