package pkgfile

import (
	"fmt"

	"github.com/orbistools/pkgforge/internal/utils/binutil"
	"github.com/orbistools/pkgforge/internal/utils/cryptoutil"
	"github.com/orbistools/pkgforge/internal/utils/errors"
	"golang.org/x/sync/errgroup"
)

const (
	playgoChunkDatSize = 0x4000
	playgoChunkSize    = 0x10000
)

// buildDefaultChunkDat synthesizes a single-chunk playgo-chunk.dat for
// projects that do not stage one: one chunk and one mchunk spanning the
// whole image, every language mapped to it.
func buildDefaultChunkDat(imageSize uint64) ([]byte, error) {
	w := binutil.NewLEWriter()
	w.PutBytes([]byte("plgo"))
	w.Put(uint16(0x200)) // version
	w.Put(uint16(0))     // image count
	w.Put(uint16(1))     // chunk count
	w.Put(uint16(1))     // mchunk count
	w.Put(uint16(1))     // scenario count
	w.PutZeros(2)
	w.Put(uint64(1)) // default language mask
	w.PadTo(0x100)
	// chunk 0: whole image as one mchunk
	w.Put(uint16(0)) // flags
	w.Put(uint16(1)) // mchunk count
	w.PadTo(0x120)
	// mchunk 0 extent
	w.Put(uint64(0))
	w.Put(imageSize)
	w.PadTo(playgoChunkDatSize)
	return w.Bytes()
}

// defaultManifestXML is the minimal playgo manifest for non-streamed
// single-chunk packages.
const defaultManifestXML = `<?xml version="1.0"?>
<psproject fmt="playgo-manifest" version="1000">
  <volume>
    <chunk_info chunk_count="1" scenario_count="1">
      <chunks>
        <chunk id="0" label="Chunk #0"/>
      </chunks>
      <scenarios default_id="0">
        <scenario id="0" type="sp" initial_chunk_count="1" label="Scenario #0">0</scenario>
      </scenarios>
    </chunk_info>
  </volume>
</psproject>
`

// chunkShaSize returns the hash table size for a package of the given size:
// 4 bytes per 64 KiB chunk.
func chunkShaSize(packageSize uint64) uint32 {
	chunks := (packageSize + playgoChunkSize - 1) / playgoChunkSize
	return uint32(chunks * 4)
}

// computeChunkSha fills dst with the truncated SHA-256 prefix of every
// 64 KiB chunk of file from startChunk onward, in parallel over disjoint
// 4-byte slots. dst caps the table: chunks beyond it are skipped (the
// caller has already logged the anomaly).
func computeChunkSha(file []byte, dst []byte, startChunk, workers int) error {
	chunks := (len(file) + playgoChunkSize - 1) / playgoChunkSize
	if max := len(dst) / 4; chunks > max {
		chunks = max
	}
	if startChunk >= chunks {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	span := (chunks - startChunk + workers - 1) / workers
	var g errgroup.Group
	for lo := startChunk; lo < chunks; lo += span {
		hi := lo + span
		if hi > chunks {
			hi = chunks
		}
		lo := lo
		g.Go(func() error {
			for c := lo; c < hi; c++ {
				start := c * playgoChunkSize
				end := start + playgoChunkSize
				if end > len(file) {
					end = len(file)
				}
				sum := cryptoutil.Sha256(file[start:end])
				copy(dst[c*4:c*4+4], sum[:4])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrIoFailure, err)
	}
	return nil
}
