package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProject() *PkgProject {
	return &PkgProject{
		ContentID:  "UP9000-CUSA00001_00-TESTPACKAGE00000",
		Passcode:   "00000000000000000000000000000000",
		VolumeType: VolumePS4App,
		RootDir:    "/staging",
		Pfs:        DefaultPfsOptions(),
	}
}

func TestValidateAcceptsGoodProject(t *testing.T) {
	t.Parallel()

	p := validProject()
	require.NoError(t, p.Validate())
	assert.Equal(t, "CUSA00001", p.TitleID())
}

func TestValidateRejectsBadContentID(t *testing.T) {
	t.Parallel()

	p := validProject()
	p.ContentID = "too-short"
	assert.Error(t, p.Validate())
}

func TestValidateRejectsBadPasscode(t *testing.T) {
	t.Parallel()

	p := validProject()
	p.Passcode = "short"
	assert.Error(t, p.Validate())
}

func TestValidateRejectsUnknownVolumeType(t *testing.T) {
	t.Parallel()

	p := validProject()
	p.VolumeType = "pkg_ps5_app"
	assert.Error(t, p.Validate())
}

func TestValidateEntitlementKey(t *testing.T) {
	t.Parallel()

	p := validProject()
	p.EntitlementKey = "00112233445566778899aabbccddeeff"
	require.NoError(t, p.Validate())
	assert.Len(t, p.EntitlementKeyBytes(), 16)

	p.EntitlementKey = "not hex"
	assert.Error(t, p.Validate())
}

func TestValidateAcNoDataNeedsNoRoot(t *testing.T) {
	t.Parallel()

	p := validProject()
	p.VolumeType = VolumePS4ACNoData
	p.RootDir = ""
	assert.NoError(t, p.Validate())
}
