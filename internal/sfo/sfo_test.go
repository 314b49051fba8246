package sfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFile() *File {
	f := &File{}
	f.SetString("TITLE", "Example Title")
	f.SetString("TITLE_ID", "CUSA00001")
	f.SetString("CATEGORY", "gd")
	f.SetString("APP_VER", "01.00")
	f.SetString("VERSION", "01.00")
	f.SetString("CONTENT_ID", "UP9000-CUSA00001_00-TESTPACKAGE00000")
	f.SetInt("APP_TYPE", 1)
	f.SetInt("SYSTEM_VER", 0)
	return f
}

func TestSerializeParseRoundTrip(t *testing.T) {
	t.Parallel()

	f := testFile()
	data, err := f.Serialize()
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)

	title, ok := back.GetString("TITLE")
	require.True(t, ok)
	assert.Equal(t, "Example Title", title)

	appType, ok := back.GetInt("APP_TYPE")
	require.True(t, ok)
	assert.Equal(t, uint32(1), appType)

	// Round-tripping again is byte-stable.
	data2, err := back.Serialize()
	require.NoError(t, err)
	assert.Equal(t, data, data2)
}

func TestParseRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("not an sfo"))
	assert.Error(t, err)
	_, err = Parse(nil)
	assert.Error(t, err)
}

func TestSetStringGrowsMaxLength(t *testing.T) {
	t.Parallel()

	f := testFile()
	f.SetString("PUBTOOLINFO", "c_date=20260805,img0_l0_size=1536,img0_l1_size=0,img0_sc_ksize=512,img0_pc_ksize=832")
	data, err := f.Serialize()
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	v, ok := back.GetString("PUBTOOLINFO")
	require.True(t, ok)
	assert.Contains(t, v, "img0_sc_ksize=512")

	// Replacing with a shorter value keeps the allocated max length.
	back.SetString("PUBTOOLINFO", "c_date=20260805")
	data2, err := back.Serialize()
	require.NoError(t, err)
	assert.Equal(t, len(data), len(data2))
}

func TestSerializeSortsKeys(t *testing.T) {
	t.Parallel()

	a := &File{}
	a.SetString("ZEBRA", "z")
	a.SetString("ALPHA", "a")
	b := &File{}
	b.SetString("ALPHA", "a")
	b.SetString("ZEBRA", "z")

	da, err := a.Serialize()
	require.NoError(t, err)
	db, err := b.Serialize()
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestUpdateExistingIntValue(t *testing.T) {
	t.Parallel()

	f := testFile()
	f.SetInt("APP_TYPE", 2)
	data, err := f.Serialize()
	require.NoError(t, err)
	back, err := Parse(data)
	require.NoError(t, err)
	v, ok := back.GetInt("APP_TYPE")
	require.True(t, ok)
	assert.Equal(t, uint32(2), v)
}
