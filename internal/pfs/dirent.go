package pfs

import (
	"encoding/binary"
)

// DirentType tags a directory entry record.
type DirentType uint32

const (
	DirentFile   DirentType = 2
	DirentDir    DirentType = 3
	DirentDot    DirentType = 4
	DirentDotDot DirentType = 5
)

// Dirent maps a name to an inode within a directory's data blocks.
type Dirent struct {
	Ino  uint32
	Type DirentType
	Name string
}

const direntHeaderSize = 16

// EntSize returns the serialized record size: a fixed header plus the name
// padded to 8 bytes.
func (d *Dirent) EntSize() int {
	return direntHeaderSize + align8(len(d.Name))
}

func align8(n int) int {
	return (n + 7) &^ 7
}

// encode writes the record into b, using entSize as the recorded record
// size. entSize may exceed EntSize() when the record is stretched to the
// end of a block so that no record spans a block boundary.
func (d *Dirent) encode(b []byte, entSize int) {
	binary.LittleEndian.PutUint32(b[0:], d.Ino)
	binary.LittleEndian.PutUint32(b[4:], uint32(d.Type))
	binary.LittleEndian.PutUint32(b[8:], uint32(len(d.Name)))
	binary.LittleEndian.PutUint32(b[12:], uint32(entSize))
	copy(b[direntHeaderSize:], d.Name)
}

// direntStream serializes a directory's records, never letting one span a
// 64 KiB block boundary: a record that would cross is pushed to the next
// block and its predecessor's recorded size is stretched to cover the gap.
func direntStream(dirents []Dirent) []byte {
	var out []byte
	prevOff := -1
	for _, d := range dirents {
		sz := d.EntSize()
		blockRem := BlockSize - len(out)%BlockSize
		if sz > blockRem {
			if prevOff >= 0 {
				stretched := binary.LittleEndian.Uint32(out[prevOff+12:]) + uint32(blockRem)
				binary.LittleEndian.PutUint32(out[prevOff+12:], stretched)
			}
			out = append(out, make([]byte, blockRem)...)
		}
		prevOff = len(out)
		rec := make([]byte, sz)
		d.encode(rec, sz)
		out = append(out, rec...)
	}
	return out
}

// direntStreamSize returns the byte length direntStream would produce.
func direntStreamSize(dirents []Dirent) int64 {
	n := 0
	for _, d := range dirents {
		sz := d.EntSize()
		blockRem := BlockSize - n%BlockSize
		if sz > blockRem {
			n += blockRem
		}
		n += sz
	}
	return int64(n)
}
