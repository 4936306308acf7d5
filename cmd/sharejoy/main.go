package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"github.com/dmitrijs2005/sharejoy/internal/buildinfo"
	"github.com/dmitrijs2005/sharejoy/internal/cli"
	"github.com/dmitrijs2005/sharejoy/internal/config"
	"github.com/dmitrijs2005/sharejoy/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	if z, ok := logger.(*logging.ZapLogger); ok {
		defer z.Sync()
	}

	ctx := context.Background()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "run failed", "err", err)
	}
}
