package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/sharejoy/internal/common"
	"github.com/dmitrijs2005/sharejoy/internal/flagx"
	"github.com/dmitrijs2005/sharejoy/internal/timex"
)

// JsonConfig is a DTO used only for JSON unmarshalling. Pointer fields tell
// an absent key from an empty value.
type JsonConfig struct {
	StorageBackend    *string         `json:"storage_backend"`
	DataDir           *string         `json:"data_dir"`
	SQLiteFile        *string         `json:"sqlite_file"`
	PostgresDSN       *string         `json:"postgres_dsn"`
	S3Bucket          *string         `json:"s3_bucket"`
	S3Region          *string         `json:"s3_region"`
	S3BaseEndpoint    *string         `json:"s3_base_endpoint"`
	S3RootUser        *string         `json:"s3_root_user"`
	S3RootPassword    *string         `json:"s3_root_password"`
	S3Prefix          *string         `json:"s3_prefix"`
	StoragePassphrase *string         `json:"storage_passphrase"`
	SeedFile          *string         `json:"seed_file"`
	LogFormat         *string         `json:"log_format"`
	LogLevel          *string         `json:"log_level"`
	OperationTimeout  *timex.Duration `json:"operation_timeout"`
}

// parseJson overlays cfg with the file named by -c/-config in args. Without
// such a flag it does nothing.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("%w: config %s: %v", common.ErrInvalidEncoding, path, err)
	}

	for dst, src := range map[*string]*string{
		&cfg.StorageBackend:    jc.StorageBackend,
		&cfg.DataDir:           jc.DataDir,
		&cfg.SQLiteFile:        jc.SQLiteFile,
		&cfg.PostgresDSN:       jc.PostgresDSN,
		&cfg.S3Bucket:          jc.S3Bucket,
		&cfg.S3Region:          jc.S3Region,
		&cfg.S3BaseEndpoint:    jc.S3BaseEndpoint,
		&cfg.S3RootUser:        jc.S3RootUser,
		&cfg.S3RootPassword:    jc.S3RootPassword,
		&cfg.S3Prefix:          jc.S3Prefix,
		&cfg.StoragePassphrase: jc.StoragePassphrase,
		&cfg.SeedFile:          jc.SeedFile,
		&cfg.LogFormat:         jc.LogFormat,
		&cfg.LogLevel:          jc.LogLevel,
	} {
		if src != nil {
			*dst = *src
		}
	}
	if jc.OperationTimeout != nil {
		cfg.OperationTimeout = jc.OperationTimeout.Duration
	}
	return nil
}
