// Package kv provides the key/value storage backends the credential store
// persists into. Every backend stores string values under string keys and
// reports absent keys through the found flag rather than an error.
package kv

import (
	"context"
	"errors"
)

// Storage is an asynchronous, key-scoped, string-valued persistent store.
//
// Contract:
//   - Get returns found=false and a nil error for an absent key.
//   - Set overwrites any previous value.
//   - Delete of an absent key is not an error.
//   - CompareAndSet writes value only while the stored value still equals
//     old; an empty old matches an absent key. A mismatch returns ok=false
//     and a nil error. The comparison and the write are one atomic step on
//     every backend, across processes.
type Storage interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	CompareAndSet(ctx context.Context, key, old, value string) (ok bool, err error)
}

// SaltKey is reserved by EncryptedStorage for its key-derivation salt.
const SaltKey = "kv.salt"

var ErrUnknownBackend = errors.New("unknown storage backend")

// Atomic is implemented by backends that can run several operations as one
// unit. The Storage handed to fn must be the only one used inside it.
type Atomic interface {
	Atomically(ctx context.Context, fn func(ctx context.Context, s Storage) error) error
}

// Atomically runs fn inside a transaction when s supports it, and directly
// against s otherwise.
func Atomically(ctx context.Context, s Storage, fn func(ctx context.Context, s Storage) error) error {
	if a, ok := s.(Atomic); ok {
		return a.Atomically(ctx, fn)
	}
	return fn(ctx, s)
}
