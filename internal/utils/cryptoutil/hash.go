// Package cryptoutil provides the cryptographic primitives used by the PKG
// and PFS builders: SHA-256 digests, HMAC-SHA256 block signatures, the PFS
// key derivations, AES-XTS sector transforms and the raw RSA-2048 operation.
package cryptoutil

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// Bytes2Hex encodes a byte slice to hex string
func Bytes2Hex(d []byte) string {
	return hex.EncodeToString(d)
}

// Sha256 returns the SHA-256 digest of data.
func Sha256(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// Sha256Concat returns the SHA-256 digest of the concatenation of the given
// slices without copying them into one buffer first.
func Sha256Concat(parts ...[]byte) []byte {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

// HmacSha256 returns HMAC-SHA256(key, data).
func HmacSha256(key []byte, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// NewHmacSha256 returns a reusable keyed HMAC-SHA256 state. Parallel signing
// workers each own one and Reset it between blocks.
func NewHmacSha256(key []byte) hash.Hash {
	return hmac.New(sha256.New, key)
}
