package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sharejoy/internal/common"
	"golang.org/x/crypto/argon2"
)

// MasterKeySize is the AES-256 key length produced by DeriveMasterKey.
const MasterKeySize = 32

// DeriveMasterKey stretches a storage passphrase into an AES-256 key with
// Argon2id.
func DeriveMasterKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, MasterKeySize)
}

// EncryptValue seals plaintext with AES-GCM under key and returns
// base64(nonce || ciphertext). A fresh 12-byte nonce is drawn for every call.
//
// The key must be 16, 24 or 32 bytes long.
func EncryptValue(plaintext, key []byte) (string, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrEntropyFailure, err)
	}

	sealed := aesgcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptValue reverses EncryptValue. Tampered or truncated input and a wrong
// key all fail authentication and return an error.
func DecryptValue(encoded string, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidEncoding, err)
	}
	if len(sealed) < aesgcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := sealed[:aesgcm.NonceSize()], sealed[aesgcm.NonceSize():]
	return aesgcm.Open(nil, nonce, ciphertext, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
