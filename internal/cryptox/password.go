// Package cryptox holds the password hashing engine used by the credential
// store and the value encryption used to keep the storage backend encrypted
// at rest.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/dmitrijs2005/sharejoy/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the number of random bytes in a salt (32 hex characters).
	SaltSize = 16

	// PBKDF2Iterations and PBKDF2KeyLen define the stored hash format.
	// Changing either invalidates every stored hash.
	PBKDF2Iterations = 10000
	PBKDF2KeyLen     = 32
)

// Hasher derives and checks password hashes. The credential store depends on
// this interface so tests can plug in a deterministic implementation.
type Hasher interface {
	GenerateSalt() (string, error)
	HashPassword(password, saltHex string) (string, error)
	VerifyPassword(password, saltHex, expectedHashHex string) (bool, error)
}

// PBKDF2Hasher is the production Hasher: PBKDF2-HMAC-SHA256 with
// PBKDF2Iterations rounds and a PBKDF2KeyLen-byte output.
type PBKDF2Hasher struct {
	// Entropy is the salt source. Nil means crypto/rand.
	Entropy io.Reader
}

// NewPBKDF2Hasher returns a hasher reading salts from crypto/rand.
func NewPBKDF2Hasher() *PBKDF2Hasher {
	return &PBKDF2Hasher{Entropy: rand.Reader}
}

// GenerateSalt returns SaltSize secure random bytes as lowercase hex.
// Entropy failures are returned wrapped in common.ErrEntropyFailure.
func (h *PBKDF2Hasher) GenerateSalt() (string, error) {
	return common.MakeRandHexString(h.Entropy, SaltSize)
}

// HashPassword derives the hex hash of password under the hex-encoded salt.
func (h *PBKDF2Hasher) HashPassword(password, saltHex string) (string, error) {
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return "", fmt.Errorf("%w: salt: %v", common.ErrInvalidEncoding, err)
	}
	return hex.EncodeToString(deriveKey([]byte(password), salt, PBKDF2Iterations)), nil
}

// VerifyPassword reports whether password hashes to expectedHashHex under
// saltHex. The comparison runs in constant time over the decoded bytes.
func (h *PBKDF2Hasher) VerifyPassword(password, saltHex, expectedHashHex string) (bool, error) {
	expected, err := hex.DecodeString(expectedHashHex)
	if err != nil {
		return false, fmt.Errorf("%w: hash: %v", common.ErrInvalidEncoding, err)
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false, fmt.Errorf("%w: salt: %v", common.ErrInvalidEncoding, err)
	}

	candidate := deriveKey([]byte(password), salt, PBKDF2Iterations)
	defer common.WipeByteArray(candidate)

	return subtle.ConstantTimeCompare(candidate, expected) == 1, nil
}

func deriveKey(password, salt []byte, iterations int) []byte {
	return pbkdf2.Key(password, salt, iterations, PBKDF2KeyLen, sha256.New)
}
