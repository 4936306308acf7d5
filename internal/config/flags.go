package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/sharejoy/internal/common"
)

// usageOutput receives flag errors and the -h usage text.
var usageOutput io.Writer = os.Stderr

// parseFlags overlays cfg with the command-line flags. -c and -config are
// accepted but read by parseJson. An unknown flag or a stray argument is an
// error; -h prints usage and returns flag.ErrHelp.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("sharejoy", flag.ContinueOnError)
	fs.SetOutput(usageOutput)

	fs.StringVar(&cfg.StorageBackend, "backend", cfg.StorageBackend, "storage backend")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.SQLiteFile, "sqlite-file", cfg.SQLiteFile, "sqlite file name")
	fs.StringVar(&cfg.PostgresDSN, "d", cfg.PostgresDSN, "postgres DSN")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "s3 bucket")
	fs.StringVar(&cfg.S3Region, "s3-region", cfg.S3Region, "s3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "s3-endpoint", cfg.S3BaseEndpoint, "s3 endpoint")
	fs.StringVar(&cfg.S3RootUser, "s3-user", cfg.S3RootUser, "s3 access key")
	fs.StringVar(&cfg.S3RootPassword, "s3-password", cfg.S3RootPassword, "s3 secret key")
	fs.StringVar(&cfg.S3Prefix, "s3-prefix", cfg.S3Prefix, "s3 key prefix")
	fs.StringVar(&cfg.StoragePassphrase, "passphrase", cfg.StoragePassphrase, "storage encryption passphrase")
	fs.StringVar(&cfg.SeedFile, "seed", cfg.SeedFile, "YAML seed file")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	timeout := fs.Int("t", int(cfg.OperationTimeout.Seconds()), "operation timeout (in seconds)")
	fs.String("c", "", "path to JSON config file (short)")
	fs.String("config", "", "path to JSON config file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", common.ErrorValidation, fs.Arg(0))
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.OperationTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
