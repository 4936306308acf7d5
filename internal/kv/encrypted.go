package kv

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sharejoy/internal/common"
	"github.com/dmitrijs2005/sharejoy/internal/cryptox"
)

// EncryptedStorage encrypts values before they reach the wrapped backend.
// Keys stay in clear text. The key-derivation salt lives under SaltKey in
// the wrapped backend itself.
type EncryptedStorage struct {
	inner Storage
	key   []byte
}

var ErrReservedKey = errors.New("reserved key")

// NewEncryptedStorage derives the value key from passphrase and the salt
// stored in inner, creating the salt on first use.
func NewEncryptedStorage(ctx context.Context, inner Storage, passphrase []byte) (*EncryptedStorage, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("%w: empty storage passphrase", common.ErrorValidation)
	}

	saltHex, found, err := inner.Get(ctx, SaltKey)
	if err != nil {
		return nil, err
	}
	if !found {
		saltHex, err = common.MakeRandHexString(nil, cryptox.SaltSize)
		if err != nil {
			return nil, err
		}
		if err := inner.Set(ctx, SaltKey, saltHex); err != nil {
			return nil, err
		}
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return nil, fmt.Errorf("%w: kv salt: %v", common.ErrInvalidEncoding, err)
	}

	return &EncryptedStorage{inner: inner, key: cryptox.DeriveMasterKey(passphrase, salt)}, nil
}

func (e *EncryptedStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if key == SaltKey {
		return "", false, ErrReservedKey
	}
	enc, found, err := e.inner.Get(ctx, key)
	if err != nil || !found {
		return "", found, err
	}
	plain, err := cryptox.DecryptValue(enc, e.key)
	if err != nil {
		return "", false, fmt.Errorf("failed to decrypt kv[%s]: %w", key, err)
	}
	return string(plain), true, nil
}

func (e *EncryptedStorage) Set(ctx context.Context, key, value string) error {
	if key == SaltKey {
		return ErrReservedKey
	}
	enc, err := cryptox.EncryptValue([]byte(value), e.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt kv[%s]: %w", key, err)
	}
	return e.inner.Set(ctx, key, enc)
}

func (e *EncryptedStorage) Delete(ctx context.Context, key string) error {
	if key == SaltKey {
		return ErrReservedKey
	}
	return e.inner.Delete(ctx, key)
}

// CompareAndSet compares against the decrypted value and hands the exact
// ciphertext it read to the wrapped backend, so the swap stays atomic there.
func (e *EncryptedStorage) CompareAndSet(ctx context.Context, key, old, value string) (bool, error) {
	if key == SaltKey {
		return false, ErrReservedKey
	}
	raw, found, err := e.inner.Get(ctx, key)
	if err != nil {
		return false, err
	}

	current := ""
	if found && raw != "" {
		plain, err := cryptox.DecryptValue(raw, e.key)
		if err != nil {
			return false, fmt.Errorf("failed to decrypt kv[%s]: %w", key, err)
		}
		current = string(plain)
	}
	if current != old {
		return false, nil
	}

	enc, err := cryptox.EncryptValue([]byte(value), e.key)
	if err != nil {
		return false, fmt.Errorf("failed to encrypt kv[%s]: %w", key, err)
	}
	return e.inner.CompareAndSet(ctx, key, raw, enc)
}

// Atomically forwards to the wrapped backend, keeping values encrypted inside
// the unit of work.
func (e *EncryptedStorage) Atomically(ctx context.Context, fn func(ctx context.Context, s Storage) error) error {
	return Atomically(ctx, e.inner, func(ctx context.Context, s Storage) error {
		return fn(ctx, &EncryptedStorage{inner: s, key: e.key})
	})
}
