package cryptoutil

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/orbistools/pkgforge/internal/utils/errors"
)

// Key derivation indices. Index 1 derives EKPFS from the passcode and the
// PFS sign key from EKPFS; the remaining indices derive the XTS key halves
// and the per-entry keys.
const (
	KeyIndexEkpfs   = 1
	KeyIndexSign    = 1
	KeyIndexTweak   = 2
	KeyIndexData    = 3
	KeyIndexTweakV2 = 5
	KeyIndexDataV2  = 6
)

// ComputeKeys derives a 32-byte key from the content id and passcode for the
// given index. Index 1 yields EKPFS; indices 2..8 yield the entry keys.
func ComputeKeys(contentID, passcode string, index uint32) ([]byte, error) {
	if len(contentID) != 36 {
		return nil, fmt.Errorf("%w: got %d characters", errors.ErrInvalidContentID, len(contentID))
	}
	if len(passcode) != 32 {
		return nil, fmt.Errorf("%w: got %d characters", errors.ErrInvalidPasscode, len(passcode))
	}
	h := sha256.New()
	var idx [4]byte
	binary.LittleEndian.PutUint32(idx[:], index)
	h.Write(idx[:])
	var cid [64]byte
	copy(cid[:], contentID)
	h.Write(cid[:])
	h.Write([]byte(passcode))
	return h.Sum(nil), nil
}

// PfsGenCryptoKey derives a PFS key from EKPFS and the image seed:
// HMAC-SHA256(ekpfs, le32(index) || seed).
func PfsGenCryptoKey(ekpfs, seed []byte, index uint32) []byte {
	var idx [4]byte
	binary.LittleEndian.PutUint32(idx[:], index)
	mac := NewHmacSha256(ekpfs)
	mac.Write(idx[:])
	mac.Write(seed)
	return mac.Sum(nil)
}

// PfsGenSignKey derives the HMAC key used for per-block signatures.
func PfsGenSignKey(ekpfs, seed []byte) []byte {
	return PfsGenCryptoKey(ekpfs, seed, KeyIndexSign)
}

// PfsGenEncKeys derives the XTS (tweakKey, dataKey) pair. newCrypt selects
// the second-generation derivation, which uses a disjoint index range so the
// two variants never produce the same keys for a given seed.
func PfsGenEncKeys(ekpfs, seed []byte, newCrypt bool) (tweakKey, dataKey []byte) {
	if newCrypt {
		return PfsGenCryptoKey(ekpfs, seed, KeyIndexTweakV2), PfsGenCryptoKey(ekpfs, seed, KeyIndexDataV2)
	}
	return PfsGenCryptoKey(ekpfs, seed, KeyIndexTweak), PfsGenCryptoKey(ekpfs, seed, KeyIndexData)
}
