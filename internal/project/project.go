// Package project defines the package project model handed to the core
// builders by external collaborators (CLI, config loader, GP4 importers).
package project

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/orbistools/pkgforge/internal/utils/errors"
)

// VolumeType selects the package variety being authored.
type VolumeType string

const (
	VolumePS4App      VolumeType = "pkg_ps4_app"
	VolumePS4Patch    VolumeType = "pkg_ps4_patch"
	VolumePS4Remaster VolumeType = "pkg_ps4_remaster"
	VolumePS4ACData   VolumeType = "pkg_ps4_ac_data"
	VolumePS4ACNoData VolumeType = "pkg_ps4_ac_nodata"
	VolumePS4SFTheme  VolumeType = "pkg_ps4_sf_theme"
	VolumePS4Theme    VolumeType = "pkg_ps4_theme"
)

// PfsOptions carries the PFS image parameters of a project.
type PfsOptions struct {
	Sign      bool
	Encrypt   bool
	NewCrypt  bool // second-generation key derivation, flagged in pfs_flags
	BlockSize uint32
	Seed      [16]byte
	MinBlocks int64
	Ekpfs     []byte // optional explicit EKPFS; derived from passcode when nil
	FileTime  time.Time
}

// PkgProject is the configuration tree the core consumes. External
// collaborators construct it (from yaml, GP4, or flags) and hand it to the
// PKG builder together with a target path.
type PkgProject struct {
	ContentID       string
	Passcode        string
	EntitlementKey  string // hex, optional
	VolumeType      VolumeType
	CreationDate    time.Time
	UseCreationTime bool
	RootDir         string
	Pfs             PfsOptions
}

// DefaultPfsOptions returns the PFS parameters used when a project does not
// override them.
func DefaultPfsOptions() PfsOptions {
	return PfsOptions{
		Sign:      true,
		Encrypt:   true,
		BlockSize: 0x10000,
		MinBlocks: 0,
	}
}

// Validate checks the fields the core depends on. It fails fast so no bytes
// are written for a project the builders cannot complete.
func (p *PkgProject) Validate() error {
	if len(p.ContentID) != 36 {
		return fmt.Errorf("%w: %q", errors.ErrInvalidContentID, p.ContentID)
	}
	for _, c := range p.ContentID {
		if c < 0x21 || c > 0x7e {
			return fmt.Errorf("%w: non-ASCII character in %q", errors.ErrInvalidContentID, p.ContentID)
		}
	}
	if len(p.Passcode) != 32 {
		return fmt.Errorf("%w: got %d characters", errors.ErrInvalidPasscode, len(p.Passcode))
	}
	if p.EntitlementKey != "" {
		if len(p.EntitlementKey) != 32 {
			return fmt.Errorf("%w: got %d characters", errors.ErrInvalidEntitlementKey, len(p.EntitlementKey))
		}
		if _, err := hex.DecodeString(p.EntitlementKey); err != nil {
			return fmt.Errorf("%w: %v", errors.ErrInvalidEntitlementKey, err)
		}
	}
	switch p.VolumeType {
	case VolumePS4App, VolumePS4Patch, VolumePS4Remaster,
		VolumePS4ACData, VolumePS4ACNoData, VolumePS4SFTheme, VolumePS4Theme:
	default:
		return fmt.Errorf("%w: %q", errors.ErrUnknownVolumeType, p.VolumeType)
	}
	if p.Pfs.BlockSize == 0 {
		p.Pfs.BlockSize = 0x10000
	}
	if p.VolumeType != VolumePS4ACNoData && p.RootDir == "" {
		return fmt.Errorf("%w: root directory not set", errors.ErrInvalidProject)
	}
	return nil
}

// EntitlementKeyBytes returns the decoded entitlement key, or nil when the
// project has none.
func (p *PkgProject) EntitlementKeyBytes() []byte {
	if p.EntitlementKey == "" {
		return nil
	}
	b, err := hex.DecodeString(p.EntitlementKey)
	if err != nil {
		return nil
	}
	return b
}

// TitleID extracts the title id portion of the content id.
func (p *PkgProject) TitleID() string {
	if len(p.ContentID) != 36 {
		return ""
	}
	return p.ContentID[7:16]
}
