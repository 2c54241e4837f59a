package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/jobkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/jobkeeper/internal/client/cli"
	"github.com/dmitrijs2005/jobkeeper/internal/client/config"
	"github.com/dmitrijs2005/jobkeeper/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	if err := run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	return app.Run(ctx)
}
