package cryptoutil

import (
	"crypto/aes"
	"fmt"

	"github.com/orbistools/pkgforge/internal/utils/errors"
	"golang.org/x/crypto/xts"
)

// XtsSectorSize is the granularity of PFS image encryption.
const XtsSectorSize = 0x1000

// XtsTransformer encrypts or decrypts 4 KiB sectors in place with AES-XTS,
// using the sector index as the tweak. Each parallel worker owns one.
type XtsTransformer struct {
	cipher *xts.Cipher
}

// NewXtsTransformer builds a transformer from the PFS data and tweak keys.
func NewXtsTransformer(dataKey, tweakKey []byte) (*XtsTransformer, error) {
	if len(dataKey) != 32 || len(tweakKey) != 32 {
		return nil, fmt.Errorf("%w: xts keys must be 32 bytes each", errors.ErrInvalidKeySize)
	}
	key := make([]byte, 0, 64)
	key = append(key, dataKey...)
	key = append(key, tweakKey...)
	c, err := xts.NewCipher(aes.NewCipher, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrCryptoFailure, err)
	}
	return &XtsTransformer{cipher: c}, nil
}

// EncryptSector encrypts one sector in place.
func (t *XtsTransformer) EncryptSector(sector []byte, index uint64) error {
	if len(sector) != XtsSectorSize {
		return fmt.Errorf("%w: sector must be %d bytes", errors.ErrInvalidArgument, XtsSectorSize)
	}
	t.cipher.Encrypt(sector, sector, index)
	return nil
}

// DecryptSector decrypts one sector in place.
func (t *XtsTransformer) DecryptSector(sector []byte, index uint64) error {
	if len(sector) != XtsSectorSize {
		return fmt.Errorf("%w: sector must be %d bytes", errors.ErrInvalidArgument, XtsSectorSize)
	}
	t.cipher.Decrypt(sector, sector, index)
	return nil
}
