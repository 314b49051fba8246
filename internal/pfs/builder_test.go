package pfs

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/orbistools/pkgforge/internal/utils/cryptoutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildImage(t *testing.T, props Properties, tree *Tree, workers int) (*Builder, []byte) {
	t.Helper()
	b, err := NewBuilder(props, tree)
	require.NoError(t, err)
	image := make([]byte, b.ImageSize())
	require.NoError(t, b.Build(image, workers))
	return b, image
}

func patternWriter(size int64) WriteFunc {
	return func(w io.Writer) error {
		buf := make([]byte, 251)
		for i := range buf {
			buf[i] = byte(i * 7)
		}
		remaining := size
		for remaining > 0 {
			n := int64(len(buf))
			if n > remaining {
				n = remaining
			}
			if _, err := w.Write(buf[:n]); err != nil {
				return err
			}
			remaining -= n
		}
		return nil
	}
}

func patternTree(files map[string]int64) *Tree {
	tree := &Tree{}
	tree.AddDir(-1, "uroot")
	for name, size := range files {
		tree.AddFile(0, name, size, patternWriter(size))
	}
	return tree
}

func TestSignedImageSignaturesVerify(t *testing.T) {
	t.Parallel()

	props := testProps(true, false)
	tree := patternTree(map[string]int64{"eboot.bin": 100 * 1024, "meta.bin": 16})
	b, image := buildImage(t, props, tree, 4)

	signKey := cryptoutil.PfsGenSignKey(props.Ekpfs, props.Seed[:])
	check := func(e BlockSigInfo) {
		data := make([]byte, e.Size)
		copy(data, image[e.Block*BlockSize:e.Block*BlockSize+int64(e.Size)])
		if e.Block == 0 {
			// The header signature slot lies inside its own covered
			// span and was zero when the signature was computed.
			for i := e.SigOffset; i < e.SigOffset+SigEntrySize; i++ {
				data[i] = 0
			}
		}
		want := cryptoutil.HmacSha256(signKey, data)
		assert.Equal(t, want, []byte(image[e.SigOffset:e.SigOffset+32]))
		assert.Equal(t, uint32(e.Block), binary.LittleEndian.Uint32(image[e.SigOffset+32:]))
	}
	for _, e := range b.DataSigs() {
		check(e)
	}
	for _, e := range b.FinalSigs() {
		check(e)
	}
}

func TestEncryptedImageHoleAndRoundTrip(t *testing.T) {
	t.Parallel()

	props := testProps(true, true)
	tree := patternTree(map[string]int64{"eboot.bin": 3 * BlockSize})
	b, err := NewBuilder(props, tree)
	require.NoError(t, err)

	plain := make([]byte, b.ImageSize())
	require.NoError(t, b.WriteData(plain))
	require.NoError(t, b.Sign(plain, 2))

	enc := make([]byte, len(plain))
	copy(enc, plain)
	require.NoError(t, b.Encrypt(enc, 2))

	hole := b.EmptyBlock()
	require.GreaterOrEqual(t, hole, int64(0))

	// The 16 sectors of the empty block stay plaintext zeros.
	assert.Equal(t, make([]byte, BlockSize), []byte(enc[hole*BlockSize:(hole+1)*BlockSize]))

	// The first 16 sectors (the header block) are never encrypted.
	assert.Equal(t, plain[:BlockSize], []byte(enc[:BlockSize]))

	// Data sectors changed.
	dataOff := int64(tree.Nodes[tree.Lookup("eboot.bin")].Ino.Direct[0]) * BlockSize
	assert.NotEqual(t, plain[dataOff:dataOff+BlockSize], []byte(enc[dataOff:dataOff+BlockSize]))

	// Every encrypted sector decrypts back to the pre-encryption image.
	tweakKey, dataKey := cryptoutil.PfsGenEncKeys(props.Ekpfs, props.Seed[:], false)
	xf, err := cryptoutil.NewXtsTransformer(dataKey, tweakKey)
	require.NoError(t, err)
	dec := make([]byte, len(enc))
	copy(dec, enc)
	total := int64(len(dec)) / cryptoutil.XtsSectorSize
	gen := xtsSectorGen(total, hole*sectorsPerBlock, sectorsPerBlock)
	for {
		s, ok := gen()
		if !ok {
			break
		}
		off := s * cryptoutil.XtsSectorSize
		require.NoError(t, xf.DecryptSector(dec[off:off+cryptoutil.XtsSectorSize], uint64(s)))
	}
	assert.Equal(t, plain, dec)
}

func TestXtsSectorGenSkipsHole(t *testing.T) {
	t.Parallel()

	gen := xtsSectorGen(64, 32, 16)
	var sectors []int64
	for {
		s, ok := gen()
		if !ok {
			break
		}
		sectors = append(sectors, s)
	}
	require.Len(t, sectors, 64-16-16)
	assert.Equal(t, int64(16), sectors[0])
	for _, s := range sectors {
		assert.False(t, s >= 32 && s < 48, "sector %d inside the hole", s)
	}
}

func TestOldAndNewCryptDiffer(t *testing.T) {
	t.Parallel()

	props := testProps(true, true)
	oldTweak, oldData := cryptoutil.PfsGenEncKeys(props.Ekpfs, props.Seed[:], false)
	newTweak, newData := cryptoutil.PfsGenEncKeys(props.Ekpfs, props.Seed[:], true)
	assert.NotEqual(t, oldTweak, newTweak)
	assert.NotEqual(t, oldData, newData)

	build := func(newCrypt bool) []byte {
		p := testProps(true, true)
		p.NewCrypt = newCrypt
		tree := patternTree(map[string]int64{"eboot.bin": BlockSize})
		_, image := buildImage(t, p, tree, 1)
		return image
	}
	oldImage := build(false)
	newImage := build(true)
	require.Equal(t, len(oldImage), len(newImage))

	// Sector 16 is the first encrypted sector; the variants disagree.
	off := int64(sectorsPerBlock) * cryptoutil.XtsSectorSize
	assert.NotEqual(t,
		[]byte(oldImage[off:off+cryptoutil.XtsSectorSize]),
		[]byte(newImage[off:off+cryptoutil.XtsSectorSize]))
}

func TestBuildDeterministic(t *testing.T) {
	t.Parallel()

	build := func() []byte {
		props := testProps(true, true)
		tree := patternTree(map[string]int64{"eboot.bin": 100 * 1024, "config.bin": 32})
		_, image := buildImage(t, props, tree, 3)
		return image
	}
	assert.Equal(t, build(), build())
}

func TestUnsignedImageWritesPayloads(t *testing.T) {
	t.Parallel()

	tree := patternTree(map[string]int64{"eboot.bin": 300})
	props := Properties{BlockSize: BlockSize, FileTime: timeZero}
	_, image := buildImage(t, props, tree, 1)

	ino := tree.Nodes[tree.Lookup("eboot.bin")].Ino
	var want bytes.Buffer
	require.NoError(t, patternWriter(300)(&want))
	start := int64(ino.Direct[0]) * BlockSize
	assert.Equal(t, want.Bytes(), []byte(image[start:start+300]))
}

func TestPfscRoundTrip(t *testing.T) {
	t.Parallel()

	tree := patternTree(map[string]int64{"eboot.bin": BlockSize + 100})
	props := Properties{BlockSize: BlockSize, FileTime: timeZero}
	_, image := buildImage(t, props, tree, 1)

	container, err := CompressImage(image)
	require.NoError(t, err)
	assert.Equal(t, "PFSC", string(container[:4]))

	back, err := DecompressImage(container)
	require.NoError(t, err)
	assert.Equal(t, image, back)
}
