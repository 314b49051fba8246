package pfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/orbistools/pkgforge/internal/utils/binutil"
	"github.com/orbistools/pkgforge/internal/utils/errors"
)

const (
	pfscMagic       = "PFSC"
	pfscTableOffset = 0x400
)

// CompressImage wraps a PFS image into a PFSC container: each 64 KiB block
// is deflated independently; blocks whose compressed form would not fit a
// block are stored raw. The offset table carries nblocks+1 entries so every
// block's extent is table-delimited.
func CompressImage(image []byte) ([]byte, error) {
	if len(image)%BlockSize != 0 {
		return nil, fmt.Errorf("%w: image size %d not block aligned", errors.ErrInvalidArgument, len(image))
	}
	nblocks := len(image) / BlockSize

	offsets := make([]uint64, nblocks+1)
	var data bytes.Buffer
	dataStart := binutil.Align(pfscTableOffset+int64(nblocks+1)*8, BlockSize)
	for i := 0; i < nblocks; i++ {
		offsets[i] = uint64(dataStart) + uint64(data.Len())
		block := image[i*BlockSize : (i+1)*BlockSize]
		var comp bytes.Buffer
		zw, err := zlib.NewWriterLevel(&comp, zlib.BestCompression)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrIoFailure, err)
		}
		if _, err := zw.Write(block); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrIoFailure, err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrIoFailure, err)
		}
		if comp.Len() >= BlockSize {
			data.Write(block)
		} else {
			data.Write(comp.Bytes())
		}
	}
	offsets[nblocks] = uint64(dataStart) + uint64(data.Len())

	w := binutil.NewLEWriter()
	w.PutBytes([]byte(pfscMagic))
	w.Put(uint32(0))
	w.Put(uint32(6))
	w.Put(uint32(BlockSize))
	w.Put(uint64(BlockSize))
	w.Put(uint64(pfscTableOffset))
	w.Put(uint64(dataStart))
	w.Put(uint64(len(image)))
	w.PadTo(pfscTableOffset)
	for _, off := range offsets {
		w.Put(off)
	}
	w.PadTo(int(dataStart))
	w.PutBytes(data.Bytes())
	return w.Bytes()
}

// DecompressImage reverses CompressImage; used by the round-trip tests.
func DecompressImage(container []byte) ([]byte, error) {
	if len(container) < pfscTableOffset || string(container[:4]) != pfscMagic {
		return nil, fmt.Errorf("%w: not a PFSC container", errors.ErrInvalidArgument)
	}
	var hdr struct {
		Magic       [4]byte
		Unk1        uint32
		Unk2        uint32
		BlockSize   uint32
		BlockSize2  uint64
		TableOffset uint64
		DataStart   uint64
		DataLength  uint64
	}
	if err := binutil.ReadStruct(container[:0x30], binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	nblocks := int(hdr.DataLength / uint64(hdr.BlockSize))
	out := make([]byte, hdr.DataLength)
	table := container[hdr.TableOffset:]
	for i := 0; i < nblocks; i++ {
		lo := binary.LittleEndian.Uint64(table[i*8:])
		hi := binary.LittleEndian.Uint64(table[(i+1)*8:])
		chunk := container[lo:hi]
		dst := out[i*int(hdr.BlockSize) : (i+1)*int(hdr.BlockSize)]
		if hi-lo == uint64(hdr.BlockSize) {
			copy(dst, chunk)
			continue
		}
		zr, err := zlib.NewReader(bytes.NewReader(chunk))
		if err != nil {
			return nil, fmt.Errorf("%w: block %d: %v", errors.ErrIoFailure, i, err)
		}
		if _, err := io.ReadFull(zr, dst); err != nil {
			zr.Close()
			return nil, fmt.Errorf("%w: block %d: %v", errors.ErrIoFailure, i, err)
		}
		zr.Close()
	}
	return out, nil
}
