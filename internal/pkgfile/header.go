package pkgfile

import (
	"encoding/binary"
	"fmt"

	"github.com/orbistools/pkgforge/internal/project"
	"github.com/orbistools/pkgforge/internal/utils/errors"
)

// ContentType is the PKG content type field.
type ContentType uint32

const (
	ContentTypeGD ContentType = 0x1A
	ContentTypeAC ContentType = 0x1B
	ContentTypeAL ContentType = 0x1C
	ContentTypeDP ContentType = 0x1E
)

// ContentTypeFor maps the project volume type onto the header content type.
// AL packages carry no PFS image at all.
func ContentTypeFor(v project.VolumeType) (ContentType, error) {
	switch v {
	case project.VolumePS4App:
		return ContentTypeGD, nil
	case project.VolumePS4Patch, project.VolumePS4Remaster:
		return ContentTypeDP, nil
	case project.VolumePS4ACData, project.VolumePS4SFTheme, project.VolumePS4Theme:
		return ContentTypeAC, nil
	case project.VolumePS4ACNoData:
		return ContentTypeAL, nil
	default:
		return 0, fmt.Errorf("%w: %q", errors.ErrUnknownVolumeType, v)
	}
}

// Fixed header template constants.
const (
	pkgMagic = 0x7F434E54

	HeaderSize      = 0x1000
	headerDigestOff = 0xFE0
	signatureOff    = 0x1000
	signatureSize   = 0x100

	BodyOffset        = 0x2000
	InitialBodySize   = 0x7E000
	BodyAlign         = 0x80000
	EntryAlign        = 0x10
	PfsImageOffsetMin = 0x80000

	PfsFlagsOldCrypt = 0x80000000000003CC
	PfsFlagsNewCrypt = 0xA0000000000003CC

	PfsSignedSize = 0x10000
	PfsCacheSize  = 0xD0000

	drmTypePS4 = 0xF
)

// Header is the 0x1000-byte big-endian PKG header plus the detached
// signature block at 0x1000.
type Header struct {
	Flags            uint32
	EntryCount       uint32
	ScEntryCount     uint16
	EntryTableOffset uint32
	MainEntDataSize  uint32
	BodyOffset       uint64
	BodySize         uint64
	ContentID        [36]byte
	DrmType          uint32
	ContentType      ContentType
	ContentFlags     uint32
	PromoteSize      uint32
	VersionDate      uint32
	IroTag           uint32
	EkcVersion       uint32

	ScEntries1Hash  [32]byte
	ScEntries2Hash  [32]byte
	DigestTableHash [32]byte
	BodyDigest      [32]byte

	PfsImageCount    uint32
	PfsFlags         uint64
	PfsImageOffset   uint64
	PfsImageSize     uint64
	MountImageOffset uint64
	MountImageSize   uint64
	PackageSize      uint64
	PfsSignedSize    uint32
	PfsCacheSize     uint32
	PfsImageDigest   [32]byte
	PfsSignedDigest  [32]byte

	HeaderDigest    [32]byte
	HeaderSignature [256]byte
}

// EncodeTo writes the header fields into the first 0x1100 bytes of file.
// The digest at 0xFE0 and signature at 0x1000 are written from their
// fields, so the cascade can fill them and re-encode.
func (h *Header) EncodeTo(file []byte) error {
	if len(file) < signatureOff+signatureSize {
		return fmt.Errorf("%w: header region too small", errors.ErrShortWrite)
	}
	be := binary.BigEndian
	for i := 0; i < signatureOff+signatureSize; i++ {
		file[i] = 0
	}
	be.PutUint32(file[0x000:], pkgMagic)
	be.PutUint32(file[0x004:], h.Flags)
	be.PutUint32(file[0x008:], 0)
	be.PutUint32(file[0x00C:], drmTypePS4)
	be.PutUint32(file[0x010:], h.EntryCount)
	be.PutUint16(file[0x014:], h.ScEntryCount)
	be.PutUint16(file[0x016:], uint16(h.EntryCount))
	be.PutUint32(file[0x018:], h.EntryTableOffset)
	be.PutUint32(file[0x01C:], h.MainEntDataSize)
	be.PutUint64(file[0x020:], h.BodyOffset)
	be.PutUint64(file[0x028:], h.BodySize)
	copy(file[0x040:], h.ContentID[:])
	be.PutUint32(file[0x070:], h.DrmType)
	be.PutUint32(file[0x074:], uint32(h.ContentType))
	be.PutUint32(file[0x078:], h.ContentFlags)
	be.PutUint32(file[0x07C:], h.PromoteSize)
	be.PutUint32(file[0x080:], h.VersionDate)
	be.PutUint32(file[0x098:], h.IroTag)
	be.PutUint32(file[0x09C:], h.EkcVersion)
	copy(file[0x100:], h.ScEntries1Hash[:])
	copy(file[0x120:], h.ScEntries2Hash[:])
	copy(file[0x140:], h.DigestTableHash[:])
	copy(file[0x160:], h.BodyDigest[:])
	be.PutUint32(file[0x400:], 1)
	be.PutUint32(file[0x404:], h.PfsImageCount)
	be.PutUint64(file[0x408:], h.PfsFlags)
	be.PutUint64(file[0x410:], h.PfsImageOffset)
	be.PutUint64(file[0x418:], h.PfsImageSize)
	be.PutUint64(file[0x420:], h.MountImageOffset)
	be.PutUint64(file[0x428:], h.MountImageSize)
	be.PutUint64(file[0x430:], h.PackageSize)
	be.PutUint32(file[0x438:], h.PfsSignedSize)
	be.PutUint32(file[0x43C:], h.PfsCacheSize)
	copy(file[0x440:], h.PfsImageDigest[:])
	copy(file[0x460:], h.PfsSignedDigest[:])
	copy(file[headerDigestOff:], h.HeaderDigest[:])
	copy(file[signatureOff:], h.HeaderSignature[:])
	return nil
}

// DecodeHeader reads the header fields back from a serialized file.
func DecodeHeader(file []byte) (*Header, error) {
	if len(file) < signatureOff+signatureSize {
		return nil, fmt.Errorf("%w: truncated header", errors.ErrInvalidArgument)
	}
	be := binary.BigEndian
	if be.Uint32(file[0x000:]) != pkgMagic {
		return nil, fmt.Errorf("%w: bad magic", errors.ErrInvalidArgument)
	}
	h := &Header{}
	h.Flags = be.Uint32(file[0x004:])
	h.EntryCount = be.Uint32(file[0x010:])
	h.ScEntryCount = be.Uint16(file[0x014:])
	h.EntryTableOffset = be.Uint32(file[0x018:])
	h.MainEntDataSize = be.Uint32(file[0x01C:])
	h.BodyOffset = be.Uint64(file[0x020:])
	h.BodySize = be.Uint64(file[0x028:])
	copy(h.ContentID[:], file[0x040:])
	h.DrmType = be.Uint32(file[0x070:])
	h.ContentType = ContentType(be.Uint32(file[0x074:]))
	h.ContentFlags = be.Uint32(file[0x078:])
	h.PromoteSize = be.Uint32(file[0x07C:])
	h.VersionDate = be.Uint32(file[0x080:])
	h.IroTag = be.Uint32(file[0x098:])
	h.EkcVersion = be.Uint32(file[0x09C:])
	copy(h.ScEntries1Hash[:], file[0x100:])
	copy(h.ScEntries2Hash[:], file[0x120:])
	copy(h.DigestTableHash[:], file[0x140:])
	copy(h.BodyDigest[:], file[0x160:])
	h.PfsImageCount = be.Uint32(file[0x404:])
	h.PfsFlags = be.Uint64(file[0x408:])
	h.PfsImageOffset = be.Uint64(file[0x410:])
	h.PfsImageSize = be.Uint64(file[0x418:])
	h.MountImageOffset = be.Uint64(file[0x420:])
	h.MountImageSize = be.Uint64(file[0x428:])
	h.PackageSize = be.Uint64(file[0x430:])
	h.PfsSignedSize = be.Uint32(file[0x438:])
	h.PfsCacheSize = be.Uint32(file[0x43C:])
	copy(h.PfsImageDigest[:], file[0x440:])
	copy(h.PfsSignedDigest[:], file[0x460:])
	copy(h.HeaderDigest[:], file[headerDigestOff:])
	copy(h.HeaderSignature[:], file[signatureOff:])
	return h, nil
}
