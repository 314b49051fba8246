package pkgfile

import (
	"github.com/orbistools/pkgforge/internal/utils/binutil"
)

const (
	licenseDatSize  = 0x400
	licenseInfoSize = 0x200

	licenseEntitlementOffset = 0x370
)

// buildLicenseDat assembles the fake-DRM license blob: version tag, content
// id, the fake flag and the optional entitlement key near the end.
func buildLicenseDat(contentID string, contentType ContentType, entitlementKey []byte) ([]byte, error) {
	w := binutil.NewBEWriter()
	w.Put(uint32(1)) // version
	w.Put(uint32(drmTypePS4))
	w.Put(uint32(contentType))
	w.PadTo(0x10)
	w.PutBytes([]byte(contentID))
	w.PadTo(0x40)
	w.Put(uint32(1)) // fake license
	w.PadTo(licenseEntitlementOffset)
	if entitlementKey != nil {
		w.PutBytes(entitlementKey)
	}
	w.PadTo(licenseDatSize)
	return w.Bytes()
}

// buildLicenseInfo is the first 0x100 bytes of the license material padded
// to exactly 0x200.
func buildLicenseInfo(contentID string, contentType ContentType, entitlementKey []byte) ([]byte, error) {
	dat, err := buildLicenseDat(contentID, contentType, entitlementKey)
	if err != nil {
		return nil, err
	}
	info := make([]byte, licenseInfoSize)
	copy(info, dat[:0x100])
	return info, nil
}
