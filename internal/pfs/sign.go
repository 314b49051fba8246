package pfs

import (
	"fmt"
	"hash"

	"github.com/orbistools/pkgforge/internal/utils/cryptoutil"
	"github.com/orbistools/pkgforge/internal/utils/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds the parallel signing, encryption and hashing stages.
const DefaultWorkers = 10

// Sign writes every planned block signature. Data-block signatures are
// computed in parallel over disjoint image ranges; each worker owns one
// keyed HMAC state. The final pool runs serially afterwards because
// indirect-block contents embed the data signatures.
func (b *Builder) Sign(image []byte, workers int) error {
	if len(b.props.Ekpfs) != 32 {
		return fmt.Errorf("%w: ekpfs must be 32 bytes", errors.ErrInvalidKeySize)
	}
	signKey := cryptoutil.PfsGenSignKey(b.props.Ekpfs, b.header.Seed[:])

	if workers < 1 {
		workers = 1
	}
	sigs := b.plan.dataSigs
	chunk := (len(sigs) + workers - 1) / workers
	var g errgroup.Group
	for start := 0; start < len(sigs); start += chunk {
		end := start + chunk
		if end > len(sigs) {
			end = len(sigs)
		}
		part := sigs[start:end]
		g.Go(func() error {
			mac := cryptoutil.NewHmacSha256(signKey)
			for _, e := range part {
				signBlock(image, mac, e)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// The serial pool runs in reverse enqueue order: a second-level
	// indirect block is signed before the double-indirect holding its
	// signature, inode blocks after every signature written into them,
	// and the header region last of all.
	mac := cryptoutil.NewHmacSha256(signKey)
	for i := len(b.plan.finalSigs) - 1; i >= 0; i-- {
		signBlock(image, mac, b.plan.finalSigs[i])
	}
	return nil
}

func signBlock(image []byte, mac hash.Hash, e BlockSigInfo) {
	data := image[e.Block*BlockSize : e.Block*BlockSize+int64(e.Size)]
	mac.Reset()
	mac.Write(data)
	sum := mac.Sum(nil)
	copy(image[e.SigOffset:], sum)
	putU32(image[e.SigOffset+32:], uint32(e.Block))
}
