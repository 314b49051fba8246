package cryptoutil

import (
	"fmt"
	"math/big"

	"github.com/orbistools/pkgforge/internal/utils/errors"
)

// Keyset holds the components of an RSA-2048 key used for the raw
// (unpadded) operations of the PKG format. The public exponent is the
// conventional 65537 for all baked-in keysets.
type Keyset struct {
	Modulus         []byte
	PrivateExponent []byte
	P               []byte
	Q               []byte
	DP              []byte
	DQ              []byte
	QInv            []byte
}

const publicExponent = 65537

// PublicEncrypt computes m^e mod n and returns the 256-byte big-endian
// result. m must be at most 256 bytes and numerically below the modulus.
func (k *Keyset) PublicEncrypt(m []byte) ([]byte, error) {
	n := new(big.Int).SetBytes(k.Modulus)
	x := new(big.Int).SetBytes(m)
	if x.Cmp(n) >= 0 {
		return nil, fmt.Errorf("%w: message not below modulus", errors.ErrCryptoFailure)
	}
	x.Exp(x, big.NewInt(publicExponent), n)
	return leftPad(x.Bytes(), 256), nil
}

// PrivateEncrypt computes m^d mod n via the CRT components and returns the
// 256-byte big-endian result. This is the raw signature primitive; the PKG
// header signature is PrivateEncrypt(SHA256(header)) with no padding scheme.
func (k *Keyset) PrivateEncrypt(m []byte) ([]byte, error) {
	n := new(big.Int).SetBytes(k.Modulus)
	c := new(big.Int).SetBytes(m)
	if c.Cmp(n) >= 0 {
		return nil, fmt.Errorf("%w: message not below modulus", errors.ErrCryptoFailure)
	}
	p := new(big.Int).SetBytes(k.P)
	q := new(big.Int).SetBytes(k.Q)
	dp := new(big.Int).SetBytes(k.DP)
	dq := new(big.Int).SetBytes(k.DQ)
	qinv := new(big.Int).SetBytes(k.QInv)

	m1 := new(big.Int).Exp(new(big.Int).Mod(c, p), dp, p)
	m2 := new(big.Int).Exp(new(big.Int).Mod(c, q), dq, q)
	h := new(big.Int).Sub(m1, m2)
	h.Mod(h, p)
	h.Mul(h, qinv)
	h.Mod(h, p)
	x := new(big.Int).Mul(h, q)
	x.Add(x, m2)
	return leftPad(x.Bytes(), 256), nil
}

func leftPad(b []byte, size int) []byte {
	out := make([]byte, size)
	copy(out[size-len(b):], b)
	return out
}

// FakeKeyset encrypts EKPFS into the ImageKey entry of fake-signed packages.
// PkgSignKey signs the PKG header. Both are fixed, well-known keys: the
// format requires a signature the console will accept from homebrew tooling,
// not a secret.
var FakeKeyset = &Keyset{
	Modulus: []byte{
		0xbd, 0x09, 0xe4, 0xdd, 0x67, 0xad, 0xd8, 0x7c, 0x86, 0x15, 0x83, 0xf4, 0x10, 0xa6, 0x65, 0xc5,
		0x72, 0x6f, 0x71, 0xa1, 0xb6, 0xb8, 0xd5, 0x46, 0x3b, 0x33, 0x27, 0xde, 0xa8, 0x8b, 0x62, 0x45,
		0x35, 0xb1, 0x22, 0xe2, 0xb7, 0x25, 0x61, 0x43, 0x52, 0x2a, 0x34, 0x06, 0x94, 0x06, 0x25, 0x07,
		0x5c, 0x5f, 0x32, 0x8f, 0x7a, 0xff, 0x8a, 0x77, 0x3d, 0x16, 0x88, 0xcb, 0x12, 0x72, 0x18, 0x95,
		0xf2, 0x93, 0x8c, 0xb8, 0xa5, 0x40, 0x75, 0x2e, 0x61, 0xc9, 0xbb, 0x73, 0xa7, 0x87, 0xf9, 0xe1,
		0xa3, 0xca, 0x14, 0x59, 0xed, 0x14, 0x6d, 0xf7, 0x93, 0x98, 0x35, 0x4a, 0xde, 0x2d, 0x41, 0xa6,
		0xc7, 0x68, 0x8a, 0xd8, 0x91, 0xff, 0x79, 0x9a, 0xcc, 0x66, 0x28, 0x03, 0x36, 0x6f, 0x80, 0x88,
		0x35, 0xad, 0x1b, 0x47, 0x4a, 0xc2, 0x50, 0xad, 0x0b, 0xf9, 0x7b, 0x9e, 0x5e, 0x94, 0x27, 0x38,
		0xf5, 0xb5, 0xa2, 0xde, 0x7d, 0x61, 0xee, 0x62, 0x5b, 0x6a, 0x9c, 0xd3, 0xc1, 0x94, 0xfa, 0x07,
		0xbe, 0xab, 0x6f, 0x55, 0xbe, 0x15, 0x5d, 0x16, 0xc9, 0x50, 0xb8, 0xb3, 0xb2, 0xbe, 0xdc, 0x20,
		0x20, 0x99, 0x08, 0x4d, 0x17, 0x8d, 0xbd, 0xa5, 0x3b, 0xed, 0x76, 0x8b, 0x71, 0xad, 0xb9, 0x4b,
		0x69, 0x87, 0x24, 0xd4, 0x5e, 0x98, 0x8b, 0xa7, 0xb7, 0x4a, 0x1d, 0x4b, 0x4d, 0xaf, 0x9d, 0xbe,
		0x08, 0x61, 0xaa, 0x90, 0xef, 0x1d, 0x1b, 0x29, 0xea, 0x49, 0x3b, 0x5d, 0x90, 0xf1, 0xba, 0x7a,
		0x27, 0x82, 0x36, 0x45, 0xfc, 0x04, 0xe1, 0xb5, 0x8f, 0x9e, 0xce, 0x96, 0x80, 0x05, 0xa3, 0xbd,
		0x9e, 0x0b, 0xf3, 0x40, 0xfe, 0x17, 0x5f, 0x81, 0x2f, 0x50, 0xa1, 0xc0, 0x49, 0x20, 0x26, 0xf7,
		0xbf, 0xbb, 0x06, 0x3b, 0x6f, 0x80, 0x93, 0x44, 0xf8, 0xaa, 0xce, 0xfd, 0x3f, 0x8c, 0xdc, 0x27,
	},
	PrivateExponent: []byte{
		0x7b, 0x33, 0x6f, 0x8d, 0x3c, 0x7c, 0xf8, 0x92, 0x6f, 0x70, 0xa6, 0x46, 0xf2, 0x72, 0xff, 0xf0,
		0xe6, 0xdb, 0xea, 0xda, 0xd2, 0x13, 0x34, 0x2c, 0x49, 0x78, 0xd5, 0x8b, 0x2f, 0x9d, 0x67, 0xb6,
		0x63, 0x7f, 0xc6, 0x94, 0xab, 0x78, 0x19, 0x23, 0x9e, 0xf1, 0x12, 0x67, 0x17, 0x21, 0xca, 0x10,
		0x3a, 0x0b, 0x71, 0x10, 0x41, 0xc1, 0x39, 0xa4, 0xec, 0x93, 0x3b, 0x23, 0xde, 0x29, 0xae, 0x0c,
		0x4b, 0xc4, 0x0d, 0xfa, 0x68, 0xf8, 0xd1, 0x66, 0x21, 0x25, 0x30, 0x9d, 0xf7, 0x99, 0x8f, 0x29,
		0x97, 0x6d, 0xa4, 0x45, 0xd7, 0x55, 0x71, 0x35, 0xe1, 0x63, 0x59, 0x98, 0x29, 0xa4, 0xa5, 0x1c,
		0xe4, 0xe9, 0x25, 0x54, 0x70, 0x12, 0x68, 0x56, 0x92, 0xd0, 0x21, 0x53, 0xb6, 0xae, 0x84, 0xbe,
		0x40, 0xfd, 0x48, 0xc1, 0xf5, 0xdf, 0x1e, 0x65, 0x29, 0x60, 0xb7, 0x48, 0x47, 0xab, 0x96, 0xc3,
		0x50, 0x16, 0x6b, 0x43, 0x6e, 0x32, 0x3f, 0xed, 0x5e, 0xd7, 0xd6, 0xa3, 0x94, 0x52, 0xee, 0xce,
		0x40, 0x3e, 0x38, 0xc4, 0x04, 0xcf, 0x12, 0xad, 0xb8, 0xed, 0x1a, 0xc5, 0x87, 0x29, 0x5b, 0x46,
		0x92, 0x64, 0x18, 0xfd, 0xf0, 0x37, 0x80, 0x51, 0x37, 0xdb, 0x2f, 0xda, 0x2a, 0x25, 0x1b, 0xd7,
		0x00, 0x64, 0x35, 0x34, 0xdb, 0x39, 0xbe, 0x3a, 0x30, 0x74, 0x15, 0x5e, 0x94, 0xe7, 0x21, 0x93,
		0x56, 0x72, 0x61, 0x3e, 0x5c, 0x95, 0x21, 0x7a, 0xf2, 0xa2, 0x7e, 0x20, 0x12, 0x42, 0xac, 0x0a,
		0xc8, 0x23, 0x03, 0x0d, 0xb7, 0xb4, 0xca, 0x41, 0xe8, 0xdc, 0x9c, 0x77, 0x65, 0x4a, 0xdf, 0xd3,
		0x99, 0x88, 0xcc, 0x56, 0x14, 0xc1, 0xe4, 0x95, 0xce, 0x7c, 0x97, 0xc3, 0x00, 0xfe, 0x38, 0xa6,
		0x34, 0xcd, 0x5c, 0xd9, 0x04, 0x52, 0xd1, 0x38, 0x08, 0xba, 0x25, 0x29, 0x07, 0x0c, 0x3e, 0x01,
	},
	P: []byte{
		0xf5, 0xfe, 0x47, 0x6a, 0x74, 0xa5, 0x62, 0xde, 0x4b, 0x33, 0xf8, 0xf3, 0x1c, 0x45, 0xff, 0xe7,
		0x11, 0x83, 0x0e, 0x15, 0xc0, 0xe8, 0xdb, 0xbb, 0xa1, 0xdc, 0xfc, 0x0b, 0xbb, 0x08, 0xad, 0x9d,
		0xd6, 0xc8, 0xaf, 0x6b, 0xbd, 0x37, 0xf2, 0xec, 0xf4, 0xf5, 0x82, 0xd3, 0x4c, 0xd1, 0xa1, 0x20,
		0xc8, 0x12, 0xc4, 0x66, 0x0a, 0x76, 0x88, 0x19, 0x90, 0x7f, 0xb4, 0xf6, 0x85, 0x7c, 0x39, 0x35,
		0xdd, 0x5d, 0xf2, 0x5f, 0x7a, 0xe4, 0x35, 0x8f, 0xd8, 0x6f, 0x2d, 0x17, 0xd8, 0x71, 0x95, 0x3e,
		0x6d, 0x11, 0xb4, 0x42, 0x3f, 0xf4, 0x6d, 0x83, 0x59, 0x71, 0x1c, 0xf3, 0x82, 0xfd, 0xf1, 0x5e,
		0xfb, 0x39, 0xf5, 0xea, 0x25, 0x87, 0xbf, 0xfa, 0xdb, 0xc7, 0xe0, 0x37, 0x7f, 0x9d, 0xd6, 0x9d,
		0x06, 0x19, 0x5a, 0xee, 0x40, 0xd9, 0x6f, 0x51, 0xa5, 0x93, 0x2d, 0x11, 0xee, 0xc0, 0xe3, 0x07,
	},
	Q: []byte{
		0xc4, 0xba, 0x80, 0x75, 0x76, 0xbe, 0xdb, 0x97, 0xd3, 0x62, 0x00, 0x4d, 0x85, 0x31, 0x09, 0xc0,
		0x7f, 0x0d, 0x48, 0x59, 0xd9, 0x18, 0xfe, 0x3c, 0x0f, 0xbf, 0x91, 0xf7, 0x37, 0x40, 0x36, 0x5f,
		0x7d, 0xc6, 0x4e, 0x39, 0x30, 0x34, 0x08, 0x54, 0x7e, 0x83, 0xde, 0x7e, 0x66, 0xbf, 0x00, 0x5b,
		0xf1, 0xe4, 0xd4, 0xe4, 0x91, 0x84, 0x1b, 0xe3, 0xcb, 0xe3, 0xbc, 0xd9, 0x71, 0x85, 0xc7, 0x3e,
		0x84, 0xa5, 0x1e, 0x2d, 0x26, 0xcf, 0xc1, 0x97, 0x74, 0xb0, 0xab, 0xd1, 0x4c, 0x4f, 0xa1, 0x94,
		0x99, 0xcc, 0xa5, 0x96, 0xa2, 0x4c, 0xf4, 0x2e, 0x11, 0xbe, 0xfe, 0xdb, 0xcc, 0x28, 0x08, 0x1c,
		0x9a, 0x1d, 0x79, 0x63, 0xe1, 0xab, 0xe7, 0xb0, 0x99, 0x55, 0x69, 0xbd, 0xf5, 0x47, 0x78, 0x76,
		0x12, 0x44, 0x97, 0x13, 0xa2, 0xe8, 0x07, 0xbd, 0x46, 0x3a, 0x99, 0x9a, 0xe1, 0x3c, 0x55, 0xe1,
	},
	DP: []byte{
		0xb7, 0x00, 0x83, 0x3a, 0x94, 0x2a, 0x91, 0x81, 0xd4, 0x2a, 0x86, 0xf2, 0xbd, 0x3e, 0xea, 0x20,
		0x89, 0xab, 0x98, 0xa7, 0xe0, 0x4a, 0x9b, 0x65, 0x5c, 0x06, 0x5d, 0x4f, 0x90, 0xc5, 0xe4, 0xfb,
		0x3e, 0x55, 0x30, 0x03, 0x93, 0xd1, 0xf2, 0x9c, 0x0b, 0xa4, 0x35, 0xbe, 0x62, 0x30, 0xb5, 0x91,
		0x00, 0xa6, 0xcd, 0x8b, 0x28, 0x0f, 0x84, 0x32, 0x98, 0x88, 0x19, 0x25, 0x28, 0xab, 0x00, 0x98,
		0xac, 0xe5, 0x7e, 0x31, 0x3f, 0xe8, 0x54, 0x5c, 0x7d, 0xe4, 0x3f, 0x84, 0xb4, 0xd5, 0xd2, 0xf4,
		0x8d, 0x09, 0x95, 0xb3, 0x8f, 0x86, 0x94, 0x8e, 0x19, 0xd5, 0x07, 0x77, 0xb5, 0x24, 0x9c, 0x13,
		0x50, 0x0c, 0x8f, 0x80, 0xb0, 0x88, 0xeb, 0xee, 0x80, 0xe0, 0x92, 0x52, 0x57, 0x53, 0x21, 0xdc,
		0xd1, 0x33, 0xbd, 0xac, 0xef, 0x7b, 0x92, 0xd0, 0x07, 0xc0, 0x94, 0xcf, 0xf9, 0x71, 0x6f, 0xb3,
	},
	DQ: []byte{
		0x03, 0x4a, 0x3b, 0x2b, 0xbb, 0xb8, 0xa5, 0x63, 0x7c, 0x9d, 0x7e, 0xf3, 0xcc, 0xee, 0x6d, 0x03,
		0x53, 0x1c, 0x9d, 0xc1, 0x22, 0xe8, 0x50, 0x18, 0x21, 0x0b, 0x4b, 0x1d, 0x9f, 0x46, 0xeb, 0xa1,
		0xdd, 0x30, 0x9b, 0xce, 0x49, 0x08, 0x15, 0xbb, 0x94, 0x02, 0x10, 0x8e, 0x7c, 0x99, 0x65, 0x20,
		0x24, 0x83, 0x77, 0x2b, 0xfb, 0x63, 0x02, 0x34, 0x65, 0x0c, 0x81, 0xf4, 0x00, 0xfa, 0x03, 0xc2,
		0xff, 0xe4, 0xe3, 0x04, 0x4e, 0x49, 0xdb, 0x2a, 0xf5, 0x40, 0x9f, 0x1e, 0xf8, 0xef, 0xbb, 0xfc,
		0x08, 0x36, 0x6b, 0xee, 0x80, 0xf8, 0x58, 0x7d, 0x0c, 0xbe, 0xec, 0xf4, 0x30, 0x0d, 0xdb, 0x54,
		0xdf, 0x1e, 0xef, 0x10, 0xc4, 0x8d, 0x63, 0x6a, 0x88, 0xa5, 0xed, 0x06, 0xc8, 0x3b, 0x51, 0xc0,
		0x67, 0xbd, 0xcd, 0xe8, 0xfe, 0x28, 0x73, 0x38, 0xaf, 0x1b, 0xfb, 0xc5, 0xa3, 0x4e, 0xa7, 0x01,
	},
	QInv: []byte{
		0xc1, 0x84, 0x6c, 0x6d, 0xde, 0xe9, 0x0e, 0xbd, 0xb8, 0x4f, 0x93, 0xe5, 0x6a, 0x16, 0x49, 0x3c,
		0x69, 0xa8, 0xe8, 0xb4, 0xae, 0xcd, 0x37, 0x8b, 0xa7, 0xc7, 0xda, 0xc9, 0xb9, 0x9c, 0xd4, 0x5c,
		0x06, 0xdb, 0x32, 0x93, 0xef, 0xad, 0x7a, 0xa0, 0xa3, 0xd5, 0x06, 0xb6, 0x24, 0xc8, 0xd5, 0x10,
		0x31, 0xdc, 0x18, 0xd9, 0x24, 0xae, 0xfe, 0xdd, 0x6a, 0x01, 0xf8, 0xda, 0x11, 0x2d, 0x1e, 0x2d,
		0xd3, 0xa9, 0xc8, 0x8a, 0x7a, 0x63, 0x12, 0x22, 0xa1, 0x25, 0x6b, 0x17, 0x32, 0x36, 0xb6, 0x58,
		0x73, 0xa9, 0xe8, 0x5f, 0x67, 0x2e, 0x34, 0x44, 0xc5, 0x38, 0x04, 0x2a, 0xd7, 0xa1, 0xef, 0x0f,
		0x8d, 0x3d, 0x3c, 0x4b, 0xe6, 0x24, 0x16, 0x31, 0xd3, 0xa4, 0xdc, 0x63, 0x30, 0xf1, 0x97, 0x90,
		0xd2, 0xa3, 0xed, 0xf9, 0x12, 0xe8, 0xc3, 0x36, 0x54, 0x00, 0xd9, 0x4e, 0xe3, 0x84, 0x9d, 0x9f,
	},
}

var PkgSignKey = &Keyset{
	Modulus: []byte{
		0x94, 0x3f, 0x2e, 0x55, 0x4c, 0xa7, 0x81, 0xb6, 0x34, 0xa0, 0x38, 0xdc, 0xf5, 0x5d, 0x86, 0x41,
		0x9c, 0xe6, 0xe1, 0x9d, 0x8a, 0x5b, 0x7a, 0xf9, 0xa7, 0x94, 0xf7, 0xa3, 0x43, 0x6e, 0x82, 0x09,
		0x07, 0xf6, 0xbc, 0xaa, 0xe0, 0x61, 0x17, 0xab, 0x83, 0xcd, 0xc3, 0x1a, 0xaa, 0x34, 0xd7, 0x08,
		0x24, 0x2a, 0xc9, 0xbd, 0xab, 0xc5, 0xa9, 0x90, 0x23, 0xb5, 0x26, 0x08, 0xfd, 0x50, 0xef, 0xc8,
		0x17, 0x54, 0x0d, 0x76, 0xe7, 0x55, 0x01, 0xed, 0x02, 0xd7, 0xe0, 0x1f, 0xfc, 0x84, 0xf3, 0xfc,
		0x99, 0xbb, 0xae, 0xed, 0xd1, 0x8e, 0x0e, 0x52, 0xf7, 0xfd, 0xc6, 0x1c, 0x7a, 0x79, 0x3b, 0x80,
		0x2b, 0x68, 0x92, 0xdd, 0x09, 0xd7, 0x99, 0x2e, 0xd0, 0x1e, 0x71, 0xd0, 0x4a, 0x7f, 0xeb, 0x9d,
		0x36, 0x84, 0x79, 0x2d, 0xf1, 0x60, 0x4c, 0xbd, 0x5c, 0x59, 0x13, 0xd7, 0x32, 0xe1, 0x17, 0xba,
		0xd3, 0xf3, 0xcd, 0xfb, 0x38, 0x20, 0x55, 0x94, 0x1c, 0xbb, 0x33, 0x1d, 0xe3, 0x9f, 0x0f, 0x43,
		0x96, 0x5e, 0x9c, 0xc0, 0xca, 0x0c, 0x3f, 0x76, 0x24, 0x47, 0xe7, 0x01, 0x9b, 0xa1, 0x17, 0xd2,
		0x66, 0x4d, 0x73, 0x3c, 0x0a, 0x80, 0xc0, 0x41, 0xc7, 0x88, 0x15, 0x2f, 0x2c, 0x25, 0x4e, 0xa5,
		0xdd, 0x1a, 0xfb, 0xa1, 0xf4, 0x8b, 0xe5, 0x12, 0x84, 0x42, 0x28, 0x59, 0x8c, 0xad, 0x99, 0xa3,
		0x50, 0x31, 0x1f, 0x32, 0x4a, 0xf9, 0xdd, 0xf5, 0xc9, 0x0a, 0x92, 0x65, 0xff, 0xbd, 0x1e, 0x1e,
		0xe6, 0xc6, 0xc1, 0xdf, 0xb6, 0xa4, 0x93, 0x1c, 0x98, 0x9a, 0x17, 0xf1, 0x21, 0x75, 0xb5, 0xd8,
		0xbe, 0x02, 0x0b, 0x3b, 0xaa, 0x1c, 0x2f, 0x82, 0x6c, 0x3f, 0x2e, 0x67, 0x11, 0xaa, 0xd7, 0x04,
		0x08, 0xe6, 0x90, 0xd5, 0x58, 0x04, 0xa9, 0x89, 0x50, 0x7a, 0x1f, 0x9e, 0x48, 0x8c, 0xde, 0x3f,
	},
	PrivateExponent: []byte{
		0x89, 0x6e, 0x99, 0x31, 0x92, 0xc2, 0xa7, 0x49, 0x97, 0x38, 0x01, 0xff, 0x35, 0xa8, 0xe2, 0x51,
		0xe9, 0x77, 0x51, 0x29, 0x8f, 0x9e, 0x87, 0x3e, 0xf2, 0xd0, 0xf3, 0x52, 0x73, 0xac, 0xfa, 0xf8,
		0x0c, 0x5d, 0xfd, 0x42, 0x1c, 0x89, 0x66, 0x3c, 0x27, 0x10, 0x96, 0x13, 0x1e, 0x3f, 0xa6, 0x29,
		0x71, 0xfe, 0x08, 0xd0, 0xc1, 0x71, 0x99, 0x64, 0x7a, 0xf5, 0xf0, 0xb0, 0xdc, 0xc6, 0x2f, 0xc4,
		0xbb, 0x7b, 0xbc, 0x8f, 0xc2, 0x9d, 0xd8, 0x0f, 0x35, 0x57, 0x93, 0xfb, 0x93, 0x4a, 0x5e, 0x36,
		0x8a, 0xfe, 0xa7, 0x88, 0xe9, 0x80, 0x5c, 0x5f, 0x26, 0x70, 0x29, 0x3d, 0x35, 0x7d, 0x36, 0x5f,
		0xf7, 0xde, 0x16, 0x68, 0xbc, 0x3b, 0x17, 0x53, 0x82, 0xb4, 0xf6, 0xa6, 0x36, 0xaa, 0xa8, 0x6f,
		0x32, 0x9f, 0x55, 0x07, 0xf6, 0x81, 0x64, 0x23, 0x18, 0x7d, 0xac, 0x1b, 0x10, 0x9c, 0x04, 0x36,
		0x4c, 0xed, 0x59, 0x33, 0x6c, 0x18, 0xe7, 0xef, 0xff, 0x10, 0x9d, 0x6f, 0x81, 0xe5, 0xf2, 0x5c,
		0xd5, 0x35, 0x85, 0x07, 0x0f, 0x15, 0x4a, 0x7e, 0x3e, 0xe8, 0x37, 0x77, 0x38, 0x98, 0xc8, 0xc4,
		0xc9, 0xd3, 0x35, 0x46, 0x75, 0x64, 0xb9, 0x27, 0xf9, 0xcf, 0x15, 0x9f, 0x79, 0xcc, 0xfd, 0x94,
		0x36, 0xdc, 0xaa, 0x99, 0x4b, 0xa6, 0x55, 0x00, 0x2d, 0x7d, 0xd4, 0x0d, 0xaf, 0x42, 0x15, 0xbb,
		0x88, 0x50, 0x2f, 0x70, 0x42, 0xe2, 0x31, 0xe0, 0xfe, 0xce, 0xf7, 0x1f, 0x48, 0x6e, 0xf3, 0x2d,
		0x70, 0xe3, 0x8b, 0x46, 0x8c, 0xc8, 0xbd, 0x42, 0xfe, 0x96, 0xd0, 0x30, 0xa8, 0x94, 0xbf, 0xa3,
		0xab, 0xba, 0x1f, 0x18, 0xee, 0xa2, 0x98, 0xc3, 0xcf, 0xbb, 0xf9, 0xe2, 0x62, 0x57, 0xa7, 0x49,
		0x1b, 0x2a, 0xfc, 0x04, 0xd6, 0xb4, 0xf2, 0x26, 0xaf, 0x13, 0xb9, 0xeb, 0x53, 0x99, 0xb9, 0x21,
	},
	P: []byte{
		0xe6, 0xb8, 0xbb, 0x90, 0x39, 0xa4, 0x54, 0xf2, 0x9c, 0xba, 0x16, 0x8c, 0x48, 0x19, 0xab, 0xa7,
		0x5b, 0xce, 0xec, 0x96, 0xce, 0x21, 0xc2, 0xe1, 0x89, 0xa8, 0x15, 0x97, 0x79, 0xfa, 0x02, 0x60,
		0xc0, 0x3f, 0xd3, 0xb0, 0x03, 0xcb, 0xc6, 0x95, 0x8f, 0x98, 0x2f, 0x9c, 0xa9, 0x83, 0x96, 0xa9,
		0xab, 0xf0, 0xd7, 0x58, 0x25, 0x1e, 0x07, 0xa1, 0x77, 0x5d, 0xb8, 0x49, 0x7e, 0x9e, 0xe8, 0x74,
		0x74, 0x56, 0xc7, 0xdf, 0xf1, 0xd8, 0xfc, 0x12, 0x5e, 0xcc, 0x1f, 0x40, 0x0f, 0x9b, 0xf4, 0x76,
		0x28, 0xe9, 0x50, 0x3b, 0x93, 0x84, 0xf2, 0x24, 0x9f, 0x54, 0x50, 0x9b, 0x86, 0xf5, 0x3a, 0x66,
		0x73, 0xd5, 0x05, 0xdf, 0x9d, 0xe0, 0xdf, 0x23, 0xc3, 0x98, 0xbb, 0x3d, 0xdc, 0x5a, 0x01, 0xf7,
		0xcb, 0xf4, 0x95, 0xdb, 0xa9, 0x53, 0x41, 0x70, 0xf2, 0x16, 0xd7, 0xda, 0x89, 0x52, 0x3d, 0x83,
	},
	Q: []byte{
		0xa4, 0x7d, 0x33, 0x02, 0xcb, 0x99, 0x90, 0x94, 0x64, 0x3e, 0x23, 0x90, 0x13, 0x9a, 0x11, 0x77,
		0xb0, 0xc0, 0x26, 0xd5, 0x2c, 0x38, 0x0b, 0x22, 0xd9, 0x31, 0xa5, 0xf7, 0x70, 0x0a, 0xc1, 0x1d,
		0x80, 0x44, 0x11, 0x00, 0xcc, 0x64, 0xfd, 0xaa, 0x0c, 0x74, 0xfb, 0x11, 0x4e, 0xc0, 0x90, 0x8e,
		0xce, 0x46, 0xd6, 0xa6, 0x2d, 0xe1, 0xda, 0x83, 0xe6, 0x5a, 0xdd, 0xcd, 0x99, 0xee, 0xa5, 0xdd,
		0xf3, 0x14, 0x4d, 0xd9, 0x01, 0x16, 0x8c, 0x27, 0x67, 0x02, 0x11, 0xce, 0x1c, 0xb3, 0x23, 0xb5,
		0x3a, 0xfc, 0xb9, 0x8c, 0xb5, 0x9f, 0xc7, 0xc0, 0x63, 0x8c, 0x55, 0xfd, 0xce, 0x63, 0xee, 0x1a,
		0xc0, 0x4c, 0xd4, 0x78, 0x1e, 0xa7, 0xca, 0x6f, 0x71, 0x8d, 0xeb, 0x86, 0x42, 0x89, 0xac, 0xc7,
		0x98, 0xd5, 0xa2, 0x86, 0x51, 0xef, 0xad, 0xfd, 0xd5, 0xb9, 0x14, 0xd5, 0xbd, 0xb0, 0xdb, 0x95,
	},
	DP: []byte{
		0x47, 0xe1, 0x91, 0xfe, 0x13, 0x17, 0x51, 0xa7, 0xec, 0x90, 0x45, 0x6a, 0x1b, 0x24, 0x74, 0x48,
		0x45, 0xe0, 0x27, 0xf1, 0xab, 0xf2, 0xf4, 0xc6, 0x53, 0x9e, 0xdc, 0x6b, 0x3f, 0x03, 0x57, 0x2e,
		0x51, 0x77, 0x11, 0x3a, 0xab, 0x54, 0x17, 0x60, 0x8d, 0x46, 0x3a, 0xbf, 0x32, 0x48, 0xde, 0xed,
		0xa9, 0xb5, 0xf5, 0x41, 0x6e, 0xfe, 0xf6, 0x1d, 0xa6, 0x14, 0xba, 0xcf, 0x9a, 0xf5, 0x63, 0x32,
		0xb4, 0xf4, 0x3c, 0x7d, 0x56, 0xd9, 0xe5, 0x5e, 0xcb, 0xce, 0x08, 0x86, 0x6a, 0xd6, 0x89, 0xc9,
		0x2e, 0x61, 0xd2, 0x2f, 0x5d, 0x7c, 0x73, 0xfc, 0x58, 0xef, 0x69, 0xd5, 0xaa, 0xac, 0x48, 0x2f,
		0x97, 0x32, 0xed, 0x0b, 0x88, 0x22, 0x81, 0x22, 0xa1, 0x53, 0xba, 0x32, 0x41, 0xae, 0x81, 0x22,
		0x74, 0x96, 0x95, 0x01, 0xc4, 0xb5, 0x3d, 0x94, 0x34, 0xb8, 0x4d, 0x33, 0xb6, 0xc8, 0xba, 0x85,
	},
	DQ: []byte{
		0x70, 0x53, 0x97, 0x0c, 0x27, 0xa1, 0x3c, 0x9c, 0x39, 0x40, 0x3d, 0xe4, 0xdb, 0x9d, 0xf0, 0xa3,
		0xbd, 0xad, 0xda, 0x56, 0xe4, 0x95, 0x78, 0xf5, 0x59, 0x40, 0x90, 0x47, 0xc2, 0xd9, 0x75, 0x3b,
		0x02, 0x26, 0x79, 0x3e, 0x04, 0x56, 0x4a, 0xeb, 0x5f, 0x0a, 0x5b, 0x91, 0x5c, 0x28, 0x20, 0x0f,
		0x85, 0x49, 0xd6, 0xb7, 0x30, 0xc9, 0xf5, 0x00, 0xf1, 0xc3, 0xc7, 0x87, 0xe9, 0xc0, 0x90, 0xc0,
		0x5a, 0x88, 0xd9, 0x08, 0x81, 0xb7, 0xb6, 0x0a, 0x0a, 0x4b, 0xdd, 0x80, 0xd5, 0x14, 0x78, 0x24,
		0x00, 0x9e, 0x28, 0xcf, 0xb0, 0x0f, 0xe6, 0xc6, 0xb8, 0xb4, 0x52, 0xdc, 0xb9, 0x9e, 0x80, 0x31,
		0x00, 0x74, 0xf6, 0xfa, 0xf8, 0x64, 0x38, 0xd7, 0x95, 0xc2, 0x06, 0xbe, 0x6e, 0x9d, 0xb9, 0xc1,
		0xab, 0xda, 0xe7, 0xdb, 0xb6, 0x04, 0x68, 0xda, 0xd8, 0xa2, 0x45, 0x5a, 0x18, 0xe9, 0xb7, 0x69,
	},
	QInv: []byte{
		0x16, 0x31, 0x5b, 0xca, 0xb4, 0xfc, 0xed, 0x04, 0xb0, 0xd5, 0x0a, 0x8a, 0x47, 0x75, 0x43, 0x8c,
		0x88, 0x17, 0x6d, 0x3f, 0xf7, 0x5f, 0xa7, 0x49, 0x27, 0x38, 0xad, 0xc2, 0xce, 0xde, 0x6f, 0xae,
		0x39, 0xcc, 0xe6, 0x65, 0x91, 0x86, 0x0c, 0x83, 0xe6, 0xf4, 0xc0, 0x80, 0xde, 0xaf, 0x93, 0xb7,
		0x75, 0x2b, 0x90, 0x3f, 0xd7, 0x0b, 0xe7, 0xde, 0xe1, 0x45, 0x70, 0x61, 0x8a, 0x25, 0x6c, 0x8c,
		0x05, 0x94, 0x3d, 0xbb, 0x2a, 0x9b, 0xab, 0x6f, 0xf1, 0xce, 0xf1, 0x4d, 0x77, 0x1d, 0xc8, 0x35,
		0x0a, 0xa5, 0xb6, 0x7b, 0xc9, 0x27, 0xea, 0x6e, 0x43, 0xfa, 0x6f, 0x1c, 0x70, 0x1d, 0xf8, 0xda,
		0x32, 0x42, 0x62, 0xe3, 0xdc, 0x76, 0xdd, 0x52, 0x9e, 0x57, 0xdd, 0x43, 0x2d, 0x22, 0xcd, 0xfa,
		0x7d, 0x94, 0x97, 0xa9, 0xb8, 0x40, 0xe0, 0x14, 0x6f, 0x6f, 0x2f, 0xe9, 0xee, 0x9f, 0x71, 0x31,
	},
}

