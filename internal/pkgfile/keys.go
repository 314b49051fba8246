package pkgfile

import (
	"fmt"

	"github.com/orbistools/pkgforge/internal/utils/cryptoutil"
	"github.com/orbistools/pkgforge/internal/utils/errors"
)

const (
	entryKeysSize      = 0x800
	imageKeySize       = 0x100
	generalDigestsSize = 0x180
	entryKeyCount      = 7
)

// buildEntryKeys assembles the EntryKeys entry: a 32-byte seed digest
// followed by seven (digest, RSA-encrypted key) slots for key indices 2..8.
func buildEntryKeys(contentID, passcode string) ([]byte, error) {
	out := make([]byte, 0, entryKeysSize)
	out = append(out, cryptoutil.Sha256Concat([]byte(contentID), []byte(passcode))...)
	for i := uint32(0); i < entryKeyCount; i++ {
		key, err := cryptoutil.ComputeKeys(contentID, passcode, i+2)
		if err != nil {
			return nil, err
		}
		out = append(out, cryptoutil.Sha256(key)...)
		enc, err := cryptoutil.FakeKeyset.PublicEncrypt(key)
		if err != nil {
			return nil, fmt.Errorf("%w: entry key %d: %v", errors.ErrCryptoFailure, i, err)
		}
		out = append(out, enc...)
	}
	if len(out) != entryKeysSize {
		return nil, fmt.Errorf("%w: entry keys blob is %d bytes", errors.ErrSizeMismatch, len(out))
	}
	return out, nil
}

// buildImageKey RSA-encrypts EKPFS with the fake keyset.
func buildImageKey(ekpfs []byte) ([]byte, error) {
	enc, err := cryptoutil.FakeKeyset.PublicEncrypt(ekpfs)
	if err != nil {
		return nil, fmt.Errorf("%w: image key: %v", errors.ErrCryptoFailure, err)
	}
	return enc, nil
}

// generalDigests carries the fixed per-field digests the cascade fills in:
// content id, the whole param.sfo, the major params, and the PFS image.
type generalDigests struct {
	data []byte
}

func newGeneralDigests() *generalDigests {
	return &generalDigests{data: make([]byte, generalDigestsSize)}
}

func (g *generalDigests) setSlot(i int, digest []byte) {
	copy(g.data[i*32:(i+1)*32], digest)
}

func (g *generalDigests) fill(contentID string, paramSfo []byte, majorParams []byte, pfsImageDigest []byte) {
	var cid [48]byte
	copy(cid[:], contentID)
	g.setSlot(0, cryptoutil.Sha256(cid[:]))
	g.setSlot(1, cryptoutil.Sha256(paramSfo))
	g.setSlot(2, cryptoutil.Sha256(majorParams))
	if pfsImageDigest != nil {
		g.setSlot(3, pfsImageDigest)
	}
}
