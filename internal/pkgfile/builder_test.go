package pkgfile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/orbistools/pkgforge/internal/project"
	"github.com/orbistools/pkgforge/internal/sfo"
	"github.com/orbistools/pkgforge/internal/utils/cryptoutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testContentID = "UP9000-CUSA00001_00-TESTPACKAGE00000"
	testPasscode  = "00000000000000000000000000000000"
)

func stageFile(t *testing.T, root, rel string, data []byte) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func stageParamSfo(t *testing.T, root string) {
	t.Helper()
	f := &sfo.File{}
	f.SetString("TITLE", "Test Title")
	f.SetString("TITLE_ID", "CUSA00001")
	f.SetString("CATEGORY", "gd")
	f.SetString("APP_VER", "01.00")
	f.SetString("VERSION", "01.00")
	f.SetString("CONTENT_ID", testContentID)
	data, err := f.Serialize()
	require.NoError(t, err)
	stageFile(t, root, "sce_sys/param.sfo", data)
}

func testProject(t *testing.T, volume project.VolumeType) *project.PkgProject {
	root := t.TempDir()
	stageParamSfo(t, root)
	stageFile(t, root, "sce_sys/icon0.png", []byte("fake png bytes"))
	if volume != project.VolumePS4ACNoData {
		stageFile(t, root, "eboot.bin", bytes.Repeat([]byte{0x42}, 100*1024))
	}
	p := &project.PkgProject{
		ContentID:    testContentID,
		Passcode:     testPasscode,
		VolumeType:   volume,
		CreationDate: time.Date(2026, 8, 5, 12, 0, 0, 0, time.UTC),
		RootDir:      root,
		Pfs:          project.DefaultPfsOptions(),
	}
	copy(p.Pfs.Seed[:], "fedcba9876543210")
	p.Pfs.FileTime = time.Unix(1700000000, 0)
	return p
}

func buildToBuffer(t *testing.T, p *project.PkgProject) (*Pkg, []byte) {
	t.Helper()
	b, err := NewBuilder(p)
	require.NoError(t, err)
	var buf bytes.Buffer
	pkg, err := b.WriteTo(&buf, nil)
	require.NoError(t, err)
	return pkg, buf.Bytes()
}

func TestTinyAcNoDataPackage(t *testing.T) {
	t.Parallel()

	p := testProject(t, project.VolumePS4ACNoData)
	pkg, file := buildToBuffer(t, p)

	h, err := DecodeHeader(file)
	require.NoError(t, err)
	assert.Equal(t, ContentTypeAL, h.ContentType)
	assert.Equal(t, uint64(0), h.PfsImageSize)
	assert.Equal(t, h.BodyOffset+h.BodySize, h.PackageSize)
	assert.Equal(t, uint64(len(file)), h.PackageSize)
	assert.Equal(t, uint64(0), h.BodySize%BodyAlign)

	// No PlayGo entries outside GD content.
	assert.Nil(t, pkg.Entry(EntryIDPlaygoChunkSha))
	assert.NotNil(t, pkg.Entry(EntryIDParamSfo))
	assert.NotNil(t, pkg.Entry(EntryIDIcon0Png))
	assert.NotNil(t, pkg.Entry(EntryIDPsReservedDat))
}

func TestHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	p := testProject(t, project.VolumePS4App)
	pkg, file := buildToBuffer(t, p)

	h, err := DecodeHeader(file)
	require.NoError(t, err)
	assert.Equal(t, pkg.Header.EntryCount, h.EntryCount)
	assert.Equal(t, pkg.Header.ScEntryCount, h.ScEntryCount)
	assert.Equal(t, pkg.Header.EntryTableOffset, h.EntryTableOffset)
	assert.Equal(t, pkg.Header.MainEntDataSize, h.MainEntDataSize)
	assert.Equal(t, pkg.Header.BodySize, h.BodySize)
	assert.Equal(t, pkg.Header.PfsImageOffset, h.PfsImageOffset)
	assert.Equal(t, pkg.Header.PfsImageSize, h.PfsImageSize)
	assert.Equal(t, pkg.Header.PackageSize, h.PackageSize)
	assert.Equal(t, pkg.Header.PfsFlags, h.PfsFlags)
	assert.Equal(t, [36]byte(pkg.Header.ContentID), h.ContentID)
	assert.Equal(t, pkg.Header.VersionDate, uint32(20260805))
}

func TestGdPackageStructure(t *testing.T) {
	t.Parallel()

	p := testProject(t, project.VolumePS4App)
	pkg, file := buildToBuffer(t, p)
	h := pkg.Header

	assert.Equal(t, ContentTypeGD, h.ContentType)
	assert.Equal(t, uint64(BodyOffset)+h.BodySize, h.PfsImageOffset)
	assert.GreaterOrEqual(t, h.PfsImageOffset, uint64(PfsImageOffsetMin))
	assert.Equal(t, h.PfsImageOffset+h.PfsImageSize, h.PackageSize)
	assert.Equal(t, h.PackageSize, h.MountImageSize)
	assert.Equal(t, uint64(PfsFlagsOldCrypt), h.PfsFlags)

	// Metas table size follows the entry count.
	metas := pkg.Entry(EntryIDMetas)
	require.NotNil(t, metas)
	assert.Equal(t, uint32(len(pkg.Entries))*32, metas.Meta.DataSize)

	// ChunkSha covers the whole package, 4 bytes per 64 KiB chunk.
	chunkSha := pkg.Entry(EntryIDPlaygoChunkSha)
	require.NotNil(t, chunkSha)
	assert.Equal(t, chunkShaSize(h.PackageSize), chunkSha.Meta.DataSize)

	// The canonical entry order begins with the SC entries.
	wantOrder := []EntryID{
		EntryIDEntryKeys, EntryIDImageKey, EntryIDGeneralDigests,
		EntryIDMetas, EntryIDDigests, EntryIDEntryNames,
		EntryIDPlaygoChunkDat, EntryIDPlaygoChunkSha, EntryIDPlaygoManifest,
		EntryIDLicenseDat, EntryIDLicenseInfo, EntryIDParamSfo,
	}
	require.GreaterOrEqual(t, len(pkg.Entries), len(wantOrder))
	for i, id := range wantOrder {
		assert.Equal(t, id, pkg.Entries[i].Meta.ID)
	}
	// The final entry is the reserved block.
	assert.Equal(t, EntryIDPsReservedDat, pkg.Entries[len(pkg.Entries)-1].Meta.ID)

	// PFS digests match the embedded image.
	region := file[h.PfsImageOffset : h.PfsImageOffset+h.PfsImageSize]
	assert.Equal(t, cryptoutil.Sha256(region[:PfsSignedSize]), h.PfsSignedDigest[:])
	assert.Equal(t, cryptoutil.Sha256(region), h.PfsImageDigest[:])
}

func TestDigestCascade(t *testing.T) {
	t.Parallel()

	p := testProject(t, project.VolumePS4App)
	pkg, file := buildToBuffer(t, p)
	h := pkg.Header

	digests := pkg.Entry(EntryIDDigests)
	require.NotNil(t, digests)
	for i, e := range pkg.Entries {
		if i == 0 {
			continue
		}
		data := append([]byte(nil), file[e.Meta.DataOffset:e.Meta.DataOffset+e.Meta.DataSize]...)
		if e.Meta.ID == EntryIDDigests {
			// The digest table's own slot is computed while the slots from
			// its own index onward are still zero.
			for j := i * 32; j < len(data); j++ {
				data[j] = 0
			}
		}
		want := cryptoutil.Sha256(data)
		slot := file[int(digests.Meta.DataOffset)+i*32 : int(digests.Meta.DataOffset)+(i+1)*32]
		assert.Equal(t, want, []byte(slot), "entry 0x%X", uint32(e.Meta.ID))
	}

	assert.Equal(t, cryptoutil.Sha256(file[h.BodyOffset:h.BodyOffset+h.BodySize]), h.BodyDigest[:])
	assert.Equal(t, cryptoutil.Sha256(digests.Data), h.DigestTableHash[:])

	entryKeys := pkg.Entry(EntryIDEntryKeys)
	scSpan := file[entryKeys.Meta.DataOffset : digests.Meta.DataOffset+digests.Meta.DataSize]
	assert.Equal(t, uint32(len(scSpan)), h.MainEntDataSize)
	assert.Equal(t, cryptoutil.Sha256(scSpan), h.ScEntries1Hash[:])

	assert.Equal(t, cryptoutil.Sha256(file[:0xFE0]), h.HeaderDigest[:])
	assert.Equal(t, h.HeaderDigest[:], []byte(file[0xFE0:0x1000]))

	// The header signature verifies against the sign key's public half.
	sig := file[0x1000:0x1100]
	back, err := cryptoutil.PkgSignKey.PublicEncrypt(sig)
	require.NoError(t, err)
	digest := cryptoutil.Sha256(file[:0x1000])
	assert.Equal(t, digest, back[256-32:])
}

func TestBuildDeterministic(t *testing.T) {
	t.Parallel()

	p := testProject(t, project.VolumePS4App)
	_, first := buildToBuffer(t, p)
	_, second := buildToBuffer(t, p)
	assert.Equal(t, first, second)
}

func TestMmapAndStreamPathsAgree(t *testing.T) {
	t.Parallel()

	p := testProject(t, project.VolumePS4App)
	_, streamed := buildToBuffer(t, p)

	b, err := NewBuilder(p)
	require.NoError(t, err)
	out := filepath.Join(t.TempDir(), "out.pkg")
	_, err = b.Write(out, nil)
	require.NoError(t, err)
	mapped, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, streamed, mapped)
}

func TestMissingParamSfoFailsFast(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	stageFile(t, root, "eboot.bin", []byte("eboot"))
	p := &project.PkgProject{
		ContentID:  testContentID,
		Passcode:   testPasscode,
		VolumeType: project.VolumePS4App,
		RootDir:    root,
		Pfs:        project.DefaultPfsOptions(),
	}
	b, err := NewBuilder(p)
	require.NoError(t, err)
	_, err = b.WriteTo(&bytes.Buffer{}, nil)
	assert.Error(t, err)
}

func TestEventsReported(t *testing.T) {
	t.Parallel()

	p := testProject(t, project.VolumePS4App)
	b, err := NewBuilder(p)
	require.NoError(t, err)

	var messages []string
	var percents []int
	var buf bytes.Buffer
	_, err = b.WriteTo(&buf, func(e Event) {
		switch ev := e.(type) {
		case Message:
			messages = append(messages, string(ev))
		case Progress:
			percents = append(percents, int(ev))
		}
	})
	require.NoError(t, err)
	assert.NotEmpty(t, messages)
	assert.Equal(t, []int{15, 40, 70, 80}, percents)
}

func TestRecognizedSceSysName(t *testing.T) {
	t.Parallel()

	assert.True(t, RecognizedSceSysName("sce_sys/param.sfo"))
	assert.True(t, RecognizedSceSysName("sce_sys/trophy/trophy00.trp"))
	assert.False(t, RecognizedSceSysName("sce_sys/unknown.bin"))
	assert.False(t, RecognizedSceSysName("param.sfo"))
}

func TestAugmentedParamSfoFields(t *testing.T) {
	t.Parallel()

	p := testProject(t, project.VolumePS4App)
	pkg, _ := buildToBuffer(t, p)

	entry := pkg.Entry(EntryIDParamSfo)
	require.NotNil(t, entry)
	f, err := sfo.Parse(entry.Data)
	require.NoError(t, err)

	pubtool, ok := f.GetString("PUBTOOLINFO")
	require.True(t, ok)
	assert.Contains(t, pubtool, "c_date=20260805")
	assert.Contains(t, pubtool, "img0_l0_size=")
	assert.Contains(t, pubtool, "img0_sc_ksize=512")

	ver, ok := f.GetInt("PUBTOOLVER")
	require.True(t, ok)
	assert.Equal(t, uint32(0x02890000), ver)
}
