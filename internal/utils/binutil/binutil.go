// Package binutil provides fixed-endian serialization helpers for the
// on-disk structures of the PKG and PFS formats.
package binutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Writer appends fixed-endian fields to an in-memory buffer. Encoding errors
// are sticky: the first failure is retained and subsequent writes are no-ops.
type Writer struct {
	buf   bytes.Buffer
	order binary.ByteOrder
	err   error
}

// NewLEWriter returns a Writer emitting little-endian fields.
func NewLEWriter() *Writer {
	return &Writer{order: binary.LittleEndian}
}

// NewBEWriter returns a Writer emitting big-endian fields.
func NewBEWriter() *Writer {
	return &Writer{order: binary.BigEndian}
}

// Put encodes v with the writer's byte order. v must be a fixed-size value
// as understood by encoding/binary.
func (w *Writer) Put(v interface{}) {
	if w.err != nil {
		return
	}
	if err := binary.Write(&w.buf, w.order, v); err != nil {
		w.err = fmt.Errorf("failed to encode %T: %w", v, err)
	}
}

// PutBytes appends raw bytes unchanged.
func (w *Writer) PutBytes(b []byte) {
	if w.err != nil {
		return
	}
	w.buf.Write(b)
}

// PutZeros appends n zero bytes.
func (w *Writer) PutZeros(n int) {
	if w.err != nil {
		return
	}
	w.buf.Write(make([]byte, n))
}

// PadTo appends zero bytes until the buffer length reaches size.
func (w *Writer) PadTo(size int) {
	if w.err != nil {
		return
	}
	if w.buf.Len() > size {
		w.err = fmt.Errorf("buffer length %d already past pad target %d", w.buf.Len(), size)
		return
	}
	w.buf.Write(make([]byte, size-w.buf.Len()))
}

// Len returns the current buffer length.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Bytes returns the encoded buffer and the first error encountered.
func (w *Writer) Bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf.Bytes(), nil
}

// Align rounds n up to the next multiple of align. align must be a power of two.
func Align(n int64, align int64) int64 {
	return (n + align - 1) &^ (align - 1)
}

// ReadStruct decodes one fixed-layout struct from b with the given byte order.
func ReadStruct(b []byte, order binary.ByteOrder, v interface{}) error {
	if err := binary.Read(bytes.NewReader(b), order, v); err != nil {
		return fmt.Errorf("failed to decode %T: %w", v, err)
	}
	return nil
}
