package kv

import (
	"context"
	"fmt"
	"io"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

// Options select and configure a backend for Open.
type Options struct {
	Backend     string
	SQLitePath  string
	PostgresDSN string
	S3          S3Config

	// Passphrase, when set, wraps the backend in EncryptedStorage.
	Passphrase string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

var newS3API = func(ctx context.Context, c S3Config) (S3API, error) {
	return NewS3Client(ctx, c)
}

// Open builds the configured backend. The returned closer releases the
// database handle, if any.
func Open(ctx context.Context, o Options) (Storage, io.Closer, error) {
	var (
		s      Storage
		closer io.Closer = nopCloser{}
	)

	switch o.Backend {
	case BackendMemory:
		s = NewMemoryStorage()
	case "", BackendSQLite:
		st, db, err := OpenSQLite(ctx, o.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite init error: %w", err)
		}
		s, closer = st, db
	case BackendPostgres:
		st, db, err := OpenPostgres(ctx, o.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres init error: %w", err)
		}
		s, closer = st, db
	case BackendS3:
		client, err := newS3API(ctx, o.S3)
		if err != nil {
			return nil, nil, err
		}
		s = NewS3Storage(client, o.S3.Bucket, o.S3.Prefix)
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, o.Backend)
	}

	if o.Passphrase != "" {
		enc, err := NewEncryptedStorage(ctx, s, []byte(o.Passphrase))
		if err != nil {
			_ = closer.Close()
			return nil, nil, err
		}
		s = enc
	}

	return s, closer, nil
}
