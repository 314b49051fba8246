package pfs

import (
	"io"
	"sort"

	"github.com/orbistools/pkgforge/internal/utils/binutil"
)

// HashPath computes the flat-path-table hash of a full path. ASCII letters
// are folded to upper case before mixing.
func HashPath(path string) uint32 {
	var hash uint32
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		hash = uint32(c)*31 + hash
	}
	return hash
}

// collisionFlag marks a table entry whose value is an offset into the
// collision resolver instead of an inode number.
const collisionFlag = 0x80000000

// PathEntry is one (full path, inode number) pair fed to the table builder.
type PathEntry struct {
	Path string
	Ino  uint32
}

type fptRecord struct {
	hash  uint32
	value uint32
}

// FlatPathTable maps full-path hashes to inode numbers for O(1) lookup at
// mount time. When two paths share a hash the table entry points into the
// CollisionResolver, which stores the colliding paths verbatim.
type FlatPathTable struct {
	records  []fptRecord
	resolver *CollisionResolver
}

// CollisionResolver stores (inode, path) records for every path whose hash
// collides with another. It exists only when at least one collision does.
type CollisionResolver struct {
	blob []byte
}

// BuildPathTable constructs the table, plus a resolver iff any two paths
// hash to the same bucket. Both serialize deterministically.
func BuildPathTable(entries []PathEntry) (*FlatPathTable, *CollisionResolver) {
	sorted := make([]PathEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(a, b int) bool {
		ha, hb := HashPath(sorted[a].Path), HashPath(sorted[b].Path)
		if ha != hb {
			return ha < hb
		}
		return sorted[a].Path < sorted[b].Path
	})

	counts := make(map[uint32]int, len(sorted))
	for _, e := range sorted {
		counts[HashPath(e.Path)]++
	}

	t := &FlatPathTable{}
	var resolver *CollisionResolver
	var blob []byte
	for _, e := range sorted {
		h := HashPath(e.Path)
		if counts[h] > 1 {
			if resolver == nil {
				resolver = &CollisionResolver{}
			}
			off := uint32(len(blob))
			blob = append(blob, encodeResolverRecord(e)...)
			t.records = append(t.records, fptRecord{hash: h, value: off | collisionFlag})
			continue
		}
		t.records = append(t.records, fptRecord{hash: h, value: e.Ino})
	}
	if resolver != nil {
		resolver.blob = blob
		t.resolver = resolver
	}
	return t, resolver
}

func encodeResolverRecord(e PathEntry) []byte {
	w := binutil.NewLEWriter()
	w.Put(e.Ino)
	nameLen := len(e.Path) + 1 // NUL terminator
	entSize := 8 + (nameLen+3)&^3
	w.Put(uint32(entSize))
	w.PutBytes([]byte(e.Path))
	w.PadTo(entSize)
	b, _ := w.Bytes()
	return b
}

// HasCollision reports whether any two paths hashed to the same bucket.
func (t *FlatPathTable) HasCollision() bool {
	return t.resolver != nil
}

// Size returns the serialized table size.
func (t *FlatPathTable) Size() int64 {
	return int64(len(t.records)) * 8
}

// WriteTo serializes the table: 8-byte records sorted ascending by hash.
func (t *FlatPathTable) WriteTo(w io.Writer) error {
	enc := binutil.NewLEWriter()
	for _, r := range t.records {
		enc.Put(r.hash)
		enc.Put(r.value)
	}
	b, err := enc.Bytes()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Lookup resolves a path to its table value (inode number, or a resolver
// offset with the high bit set).
func (t *FlatPathTable) Lookup(path string) (uint32, bool) {
	h := HashPath(path)
	i := sort.Search(len(t.records), func(i int) bool { return t.records[i].hash >= h })
	for ; i < len(t.records) && t.records[i].hash == h; i++ {
		if t.records[i].value&collisionFlag == 0 {
			return t.records[i].value, true
		}
		if ino, ok := t.resolver.lookup(t.records[i].value&^collisionFlag, path); ok {
			return ino, true
		}
	}
	return 0, false
}

// Size returns the serialized resolver size.
func (r *CollisionResolver) Size() int64 {
	return int64(len(r.blob))
}

// WriteTo serializes the resolver records.
func (r *CollisionResolver) WriteTo(w io.Writer) error {
	_, err := w.Write(r.blob)
	return err
}

func (r *CollisionResolver) lookup(off uint32, path string) (uint32, bool) {
	if int(off)+8 > len(r.blob) {
		return 0, false
	}
	rec := r.blob[off:]
	ino := uint32(rec[0]) | uint32(rec[1])<<8 | uint32(rec[2])<<16 | uint32(rec[3])<<24
	entSize := int(uint32(rec[4]) | uint32(rec[5])<<8 | uint32(rec[6])<<16 | uint32(rec[7])<<24)
	if entSize > len(rec) {
		return 0, false
	}
	name := rec[8:entSize]
	for i, c := range name {
		if c == 0 {
			name = name[:i]
			break
		}
	}
	if string(name) == path {
		return ino, true
	}
	return 0, false
}
