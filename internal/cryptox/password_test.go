package cryptox

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/dmitrijs2005/sharejoy/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

var hasher = NewPBKDF2Hasher()

func TestHashPassword_Deterministic(t *testing.T) {
	const password = "S3cr3t!"
	const salt = "a1b2c3d4e5f60123456789abcdef0001"

	h1, err := hasher.HashPassword(password, salt)
	require.NoError(t, err)
	h2, err := hasher.HashPassword(password, salt)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, PBKDF2KeyLen*2)
	_, err = hex.DecodeString(h1)
	assert.NoError(t, err)
}

func TestHashPassword_DifferentPasswordsDiffer(t *testing.T) {
	const salt = "00112233445566778899aabbccddeeff"

	a, err := hasher.HashPassword("hunter2", salt)
	require.NoError(t, err)
	b, err := hasher.HashPassword("hunter3", salt)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHashPassword_DifferentSaltsDiffer(t *testing.T) {
	a, err := hasher.HashPassword("hunter2", "00112233445566778899aabbccddeeff")
	require.NoError(t, err)
	b, err := hasher.HashPassword("hunter2", "ffeeddccbbaa99887766554433221100")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHashPassword_MalformedSalt(t *testing.T) {
	_, err := hasher.HashPassword("pw", "not-hex")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidEncoding)

	_, err = hasher.HashPassword("pw", "abc")
	assert.ErrorIs(t, err, common.ErrInvalidEncoding)
}

func TestDeriveKey_KnownVector(t *testing.T) {
	// PBKDF2-HMAC-SHA256, P="passwd", S="salt", c=1 (RFC 7914 section 11), first block.
	got := deriveKey([]byte("passwd"), []byte("salt"), 1)
	assert.Equal(t, "55ac046e56e3089fec1691c22544b605f94185216dde0465e68b9d57c20dacbc", hex.EncodeToString(got))
}

func TestVerifyPassword(t *testing.T) {
	const salt = "00112233445566778899aabbccddeeff"
	hash, err := hasher.HashPassword("hunter2", salt)
	require.NoError(t, err)

	ok, err := hasher.VerifyPassword("hunter2", salt, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.VerifyPassword("wrong", salt, hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_LengthMismatchIsNoMatch(t *testing.T) {
	ok, err := hasher.VerifyPassword("hunter2", "00112233445566778899aabbccddeeff", "abcd")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_MalformedInput(t *testing.T) {
	_, err := hasher.VerifyPassword("pw", "zz", "00")
	assert.ErrorIs(t, err, common.ErrInvalidEncoding)

	_, err = hasher.VerifyPassword("pw", "00", "zz")
	assert.ErrorIs(t, err, common.ErrInvalidEncoding)
}

func TestGenerateSalt(t *testing.T) {
	a, err := hasher.GenerateSalt()
	require.NoError(t, err)
	b, err := hasher.GenerateSalt()
	require.NoError(t, err)

	assert.Len(t, a, SaltSize*2)
	assert.Len(t, b, SaltSize*2)
	assert.NotEqual(t, a, b)
	assert.Regexp(t, "^[0-9a-f]{32}$", a)
}

func TestGenerateSalt_EntropyFailureIsFatal(t *testing.T) {
	h := &PBKDF2Hasher{Entropy: failingReader{}}

	salt, err := h.GenerateSalt()
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrEntropyFailure)
	assert.Empty(t, salt)
}
