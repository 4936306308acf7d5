package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/sharejoy/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, kv.BackendSQLite, c.StorageBackend)
	assert.Equal(t, "sharejoy.db", c.SQLiteFile)
	assert.Equal(t, 10*time.Second, c.OperationTimeout)
	assert.Empty(t, c.StoragePassphrase)
}

func TestLoadConfig_DefaultsWithoutArgs(t *testing.T) {
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, cfg)
}

func TestLoadConfig_FlagsOverrideJSON(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"storage_backend":   "postgres",
		"postgres_dsn":      "postgres://from-json",
		"operation_timeout": "3s",
	})

	cfg, err := LoadConfig([]string{"-c", path, "-d", "postgres://from-flag"})
	require.NoError(t, err)

	assert.Equal(t, kv.BackendPostgres, cfg.StorageBackend)
	assert.Equal(t, "postgres://from-flag", cfg.PostgresDSN)
	assert.Equal(t, 3*time.Second, cfg.OperationTimeout)
}

func TestStorageOptions_SQLiteUnderDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	cfg := &Config{StorageBackend: kv.BackendSQLite, DataDir: dir, SQLiteFile: "sj.db", StoragePassphrase: "pp"}

	o, err := cfg.StorageOptions()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sj.db"), o.SQLitePath)
	assert.Equal(t, "pp", o.Passphrase)
	assert.DirExists(t, dir)
}

func TestStorageOptions_InMemorySQLite(t *testing.T) {
	cfg := &Config{StorageBackend: kv.BackendSQLite, DataDir: filepath.Join(t.TempDir(), "unused"), SQLiteFile: ":memory:"}

	o, err := cfg.StorageOptions()
	require.NoError(t, err)
	assert.Equal(t, ":memory:", o.SQLitePath)
	assert.NoDirExists(t, cfg.DataDir)
}

func TestStorageOptions_S3(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults()
	cfg.StorageBackend = kv.BackendS3
	cfg.S3RootUser, cfg.S3RootPassword = "ak", "sk"

	o, err := cfg.StorageOptions()
	require.NoError(t, err)
	assert.Equal(t, kv.S3Config{
		Bucket:       "sharejoy",
		Prefix:       "kv",
		Region:       "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000/",
		AccessKey:    "ak",
		SecretKey:    "sk",
	}, o.S3)
	assert.Empty(t, o.SQLitePath)
}
