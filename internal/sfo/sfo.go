// Package sfo reads and writes PSF (param.sfo) system files and applies the
// publishing-tool augmentations the PKG builder needs.
package sfo

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/orbistools/pkgforge/internal/utils/errors"
)

var sfoMagic = [4]byte{0x00, 0x50, 0x53, 0x46}

const sfoVersion = 0x101

// Param formats.
const (
	FormatUtf8Special uint16 = 0x0004
	FormatUtf8        uint16 = 0x0204
	FormatInteger     uint16 = 0x0404
)

type sfoHeader struct {
	Magic             [4]byte
	Version           int32
	KeyTableOffset    int32
	DataTableOffset   int32
	IndexTableEntries int32
}

type sfoIndexTableEntry struct {
	KeyOffset      uint16
	ParamFormat    uint16
	ParamLength    uint32
	ParamMaxLength uint32
	DataOffset     uint32
}

// Entry is one key/value parameter.
type Entry struct {
	Key       string
	Format    uint16
	MaxLength uint32
	Value     []byte // raw data table bytes, ParamLength long
}

// File is a parsed param.sfo.
type File struct {
	Entries []Entry
}

// Parse decodes a PSF blob.
func Parse(data []byte) (*File, error) {
	var header sfoHeader
	hsize := binary.Size(header)
	if len(data) < hsize {
		return nil, fmt.Errorf("%w: truncated header", errors.ErrInvalidSfo)
	}
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidSfo, err)
	}
	if !bytes.Equal(header.Magic[:], sfoMagic[:]) {
		return nil, fmt.Errorf("%w: bad magic", errors.ErrInvalidSfo)
	}
	index := make([]sfoIndexTableEntry, header.IndexTableEntries)
	if err := binary.Read(bytes.NewReader(data[hsize:]), binary.LittleEndian, &index); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidSfo, err)
	}
	if int(header.DataTableOffset) > len(data) || header.KeyTableOffset > header.DataTableOffset {
		return nil, fmt.Errorf("%w: table offsets out of range", errors.ErrInvalidSfo)
	}
	keys := data[header.KeyTableOffset:header.DataTableOffset]
	values := data[header.DataTableOffset:]

	f := &File{}
	for _, e := range index {
		n := bytes.IndexByte(keys[e.KeyOffset:], 0)
		if n < 0 {
			return nil, fmt.Errorf("%w: unterminated key", errors.ErrInvalidSfo)
		}
		key := string(keys[e.KeyOffset : int(e.KeyOffset)+n])
		if int(e.DataOffset)+int(e.ParamMaxLength) > len(values) {
			return nil, fmt.Errorf("%w: value for %q out of range", errors.ErrInvalidSfo, key)
		}
		value := make([]byte, e.ParamLength)
		copy(value, values[e.DataOffset:e.DataOffset+e.ParamLength])
		f.Entries = append(f.Entries, Entry{
			Key:       key,
			Format:    e.ParamFormat,
			MaxLength: e.ParamMaxLength,
			Value:     value,
		})
	}
	return f, nil
}

// Serialize encodes the file: header, index, key table, 4-aligned data
// table. Entries are stored sorted by key, as the system expects.
func (f *File) Serialize() ([]byte, error) {
	entries := make([]Entry, len(f.Entries))
	copy(entries, f.Entries)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	var keyTable, dataTable bytes.Buffer
	index := make([]sfoIndexTableEntry, len(entries))
	for i, e := range entries {
		maxLen := e.MaxLength
		if maxLen < uint32(len(e.Value)) {
			maxLen = uint32(len(e.Value))
		}
		index[i] = sfoIndexTableEntry{
			KeyOffset:      uint16(keyTable.Len()),
			ParamFormat:    e.Format,
			ParamLength:    uint32(len(e.Value)),
			ParamMaxLength: maxLen,
			DataOffset:     uint32(dataTable.Len()),
		}
		keyTable.WriteString(e.Key)
		keyTable.WriteByte(0)
		dataTable.Write(e.Value)
		dataTable.Write(make([]byte, int(maxLen)-len(e.Value)))
		for dataTable.Len()%4 != 0 {
			dataTable.WriteByte(0)
		}
	}

	hsize := binary.Size(sfoHeader{})
	isize := binary.Size(sfoIndexTableEntry{}) * len(entries)
	keyTableOffset := hsize + isize
	dataTableOffset := keyTableOffset + keyTable.Len()
	for dataTableOffset%4 != 0 {
		keyTable.WriteByte(0)
		dataTableOffset++
	}

	out := &bytes.Buffer{}
	header := sfoHeader{
		Magic:             sfoMagic,
		Version:           sfoVersion,
		KeyTableOffset:    int32(keyTableOffset),
		DataTableOffset:   int32(dataTableOffset),
		IndexTableEntries: int32(len(entries)),
	}
	if err := binary.Write(out, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidSfo, err)
	}
	if err := binary.Write(out, binary.LittleEndian, index); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidSfo, err)
	}
	out.Write(keyTable.Bytes())
	out.Write(dataTable.Bytes())
	return out.Bytes(), nil
}

func (f *File) find(key string) *Entry {
	for i := range f.Entries {
		if f.Entries[i].Key == key {
			return &f.Entries[i]
		}
	}
	return nil
}

// GetString returns the value of a utf8 entry.
func (f *File) GetString(key string) (string, bool) {
	e := f.find(key)
	if e == nil {
		return "", false
	}
	v := e.Value
	if e.Format == FormatUtf8 && len(v) > 0 && v[len(v)-1] == 0 {
		v = v[:len(v)-1]
	}
	return string(v), true
}

// GetInt returns the value of an integer entry.
func (f *File) GetInt(key string) (uint32, bool) {
	e := f.find(key)
	if e == nil || e.Format != FormatInteger || len(e.Value) < 4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(e.Value), true
}

// SetString stores a NUL-terminated utf8 value, growing the entry's max
// length to the next 4-byte multiple when needed.
func (f *File) SetString(key, value string) {
	raw := append([]byte(value), 0)
	e := f.find(key)
	if e == nil {
		f.Entries = append(f.Entries, Entry{Key: key, Format: FormatUtf8})
		e = &f.Entries[len(f.Entries)-1]
	}
	e.Value = raw
	if e.MaxLength < uint32(len(raw)) {
		e.MaxLength = uint32((len(raw) + 3) &^ 3)
	}
}

// SetInt stores an integer value.
func (f *File) SetInt(key string, value uint32) {
	var raw [4]byte
	binary.LittleEndian.PutUint32(raw[:], value)
	e := f.find(key)
	if e == nil {
		f.Entries = append(f.Entries, Entry{Key: key, Format: FormatInteger, MaxLength: 4})
		e = &f.Entries[len(f.Entries)-1]
	}
	e.Value = raw[:]
	if e.MaxLength < 4 {
		e.MaxLength = 4
	}
}
