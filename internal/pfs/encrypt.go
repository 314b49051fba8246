package pfs

import (
	"fmt"

	"github.com/orbistools/pkgforge/internal/utils/cryptoutil"
	"github.com/orbistools/pkgforge/internal/utils/errors"
	"golang.org/x/sync/errgroup"
)

// sectorsPerBlock is how many 4 KiB XTS sectors one 64 KiB block spans.
const sectorsPerBlock = BlockSize / cryptoutil.XtsSectorSize

// xtsSectorGen yields the sector indices to encrypt: every sector from 16
// up to total, skipping the hole sectors of the empty block, which stay
// plaintext zeros so the runtime can recognize the image structure.
func xtsSectorGen(total, holeStart, holeLen int64) func() (int64, bool) {
	next := int64(sectorsPerBlock)
	return func() (int64, bool) {
		for next < total && next >= holeStart && next < holeStart+holeLen {
			next++
		}
		if next >= total {
			return 0, false
		}
		s := next
		next++
		return s, true
	}
}

// Encrypt applies AES-XTS in place at 4 KiB sector granularity, tweaked by
// sector index, from sector 16 to the end of the image; the header block and
// the sectors of the empty block stay plaintext. Workers transform disjoint
// sector ranges, each with its own cipher state.
func (b *Builder) Encrypt(image []byte, workers int) error {
	if len(b.props.Ekpfs) != 32 {
		return fmt.Errorf("%w: ekpfs must be 32 bytes", errors.ErrInvalidKeySize)
	}
	tweakKey, dataKey := cryptoutil.PfsGenEncKeys(b.props.Ekpfs, b.header.Seed[:], b.props.NewCrypt)

	total := (int64(len(image)) + cryptoutil.XtsSectorSize - 1) / cryptoutil.XtsSectorSize
	if sz := b.ImageSize() / cryptoutil.XtsSectorSize; total > sz {
		total = sz
	}
	holeStart, holeLen := int64(-1), int64(0)
	if b.plan.emptyBlock >= 0 {
		holeStart = b.plan.emptyBlock * sectorsPerBlock
		holeLen = sectorsPerBlock
	}

	if workers < 1 {
		workers = 1
	}
	span := (total + int64(workers) - 1) / int64(workers)
	var g errgroup.Group
	for lo := int64(sectorsPerBlock); lo < total; lo += span {
		hi := lo + span
		if hi > total {
			hi = total
		}
		lo := lo
		g.Go(func() error {
			xf, err := cryptoutil.NewXtsTransformer(dataKey, tweakKey)
			if err != nil {
				return err
			}
			for s := lo; s < hi; s++ {
				if s >= holeStart && s < holeStart+holeLen {
					continue
				}
				off := s * cryptoutil.XtsSectorSize
				if err := xf.EncryptSector(image[off:off+cryptoutil.XtsSectorSize], uint64(s)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
