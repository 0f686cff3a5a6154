package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"ledger/internal/cli"
	applog "ledger/internal/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ledger: %v\n", err)
		return cli.ExitError
	}

	logger, err := cli.SetupLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ledger: %v\n", err)
		return cli.ExitError
	}

	logger.Debug("Starting ledger",
		applog.FieldOperation, applog.OpStartup,
		applog.FieldBackend, cfg.DataBackend)

	ctx, stop := cli.SignalContext(logger)
	defer stop()
	ctx = applog.WithContext(ctx, logger)

	res, err := cli.OpenService(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open ledger", applog.FieldBackend, cfg.DataBackend, applog.FieldError, err)
		fmt.Fprintf(os.Stderr, "ledger: %v\n", err)
		return cli.ExitError
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Warn("Cleanup failed", applog.FieldError, err)
		}
	}()

	app := &cli.App{
		Service: res.Service,
		Out:     os.Stdout,
		Err:     os.Stderr,
		Logger:  logger,
	}
	if isatty.IsTerminal(os.Stdin.Fd()) {
		app.Prompter = cli.NewFormPrompter()
	}

	return app.Run(ctx, os.Args[1:])
}
