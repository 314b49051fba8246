package cryptoutil

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testContentID = "UP9000-CUSA00001_00-TESTPACKAGE00000"
	testPasscode  = "00000000000000000000000000000000"
)

func TestComputeKeysDeterministic(t *testing.T) {
	t.Parallel()

	k1, err := ComputeKeys(testContentID, testPasscode, 1)
	require.NoError(t, err)
	k2, err := ComputeKeys(testContentID, testPasscode, 1)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 32)

	k3, err := ComputeKeys(testContentID, testPasscode, 2)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)
}

func TestComputeKeysValidatesInputs(t *testing.T) {
	t.Parallel()

	_, err := ComputeKeys("short", testPasscode, 1)
	assert.Error(t, err)
	_, err = ComputeKeys(testContentID, "short", 1)
	assert.Error(t, err)
}

func TestPfsKeyDerivations(t *testing.T) {
	t.Parallel()

	ekpfs, err := ComputeKeys(testContentID, testPasscode, KeyIndexEkpfs)
	require.NoError(t, err)
	seed := []byte("0123456789abcdef")

	sign1 := PfsGenSignKey(ekpfs, seed)
	sign2 := PfsGenSignKey(ekpfs, seed)
	assert.Equal(t, sign1, sign2)
	assert.Len(t, sign1, 32)

	oldTweak, oldData := PfsGenEncKeys(ekpfs, seed, false)
	newTweak, newData := PfsGenEncKeys(ekpfs, seed, true)
	assert.NotEqual(t, oldTweak, oldData)
	assert.NotEqual(t, oldTweak, newTweak)
	assert.NotEqual(t, oldData, newData)
	assert.NotEqual(t, sign1, oldTweak)
}

func keysetFromRSA(k *rsa.PrivateKey) *Keyset {
	pad := func(b []byte, n int) []byte {
		out := make([]byte, n)
		copy(out[n-len(b):], b)
		return out
	}
	return &Keyset{
		Modulus:         pad(k.N.Bytes(), 256),
		PrivateExponent: pad(k.D.Bytes(), 256),
		P:               pad(k.Primes[0].Bytes(), 128),
		Q:               pad(k.Primes[1].Bytes(), 128),
		DP:              pad(k.Precomputed.Dp.Bytes(), 128),
		DQ:              pad(k.Precomputed.Dq.Bytes(), 128),
		QInv:            pad(k.Precomputed.Qinv.Bytes(), 128),
	}
}

func TestRawRsaRoundTripGeneratedKey(t *testing.T) {
	t.Parallel()

	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	ks := keysetFromRSA(rsaKey)

	msg := make([]byte, 255)
	_, err = rand.Read(msg)
	require.NoError(t, err)

	enc, err := ks.PublicEncrypt(msg)
	require.NoError(t, err)
	require.Len(t, enc, 256)

	dec, err := ks.PrivateEncrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, msg, dec[1:])
}

func TestRawRsaBakedKeysetsRoundTrip(t *testing.T) {
	t.Parallel()

	for _, ks := range []*Keyset{FakeKeyset, PkgSignKey} {
		msg := Sha256([]byte("header digest material"))
		sig, err := ks.PrivateEncrypt(msg)
		require.NoError(t, err)
		back, err := ks.PublicEncrypt(sig)
		require.NoError(t, err)
		assert.Equal(t, leftPad(msg, 256), back)
	}
}

func TestXtsTransformerRoundTrip(t *testing.T) {
	t.Parallel()

	dataKey := Sha256([]byte("data"))
	tweakKey := Sha256([]byte("tweak"))
	xf, err := NewXtsTransformer(dataKey, tweakKey)
	require.NoError(t, err)

	sector := make([]byte, XtsSectorSize)
	for i := range sector {
		sector[i] = byte(i)
	}
	orig := make([]byte, len(sector))
	copy(orig, sector)

	require.NoError(t, xf.EncryptSector(sector, 16))
	assert.NotEqual(t, orig, sector)
	require.NoError(t, xf.DecryptSector(sector, 16))
	assert.Equal(t, orig, sector)

	// A different tweak yields different ciphertext.
	a := make([]byte, len(orig))
	copy(a, orig)
	b := make([]byte, len(orig))
	copy(b, orig)
	require.NoError(t, xf.EncryptSector(a, 16))
	require.NoError(t, xf.EncryptSector(b, 17))
	assert.NotEqual(t, a, b)
}

func TestHmacHelpersAgree(t *testing.T) {
	t.Parallel()

	key := []byte("key material")
	data := []byte("payload")
	mac := NewHmacSha256(key)
	mac.Write(data)
	assert.Equal(t, HmacSha256(key, data), mac.Sum(nil))
}
