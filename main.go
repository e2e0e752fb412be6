// Package main implements the main entry point for the CHIP-8 interpreter
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/retrochip8/internal/app"
	"github.com/retroenv/retrochip8/internal/cli"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/host"
	appctx "github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := appctx.Context()

	opts, err := cli.ParseFlags("retrochip8", os.Args[1:])
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Trace, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			app.PrintBanner(logger, opts, version, commit, date)
			if msg := usageErr.Error(); msg != "" {
				logger.Error(msg)
			}
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	if err := app.PrepareOptions(&opts); err != nil {
		config.CreateLogger(opts.Debug, opts.Trace, opts.Quiet).Fatal(err.Error())
	}

	logger := config.CreateLogger(opts.Debug, opts.Trace, opts.Quiet)
	app.PrintBanner(logger, opts, version, commit, date)

	if err := app.Run(ctx, logger, opts, os.Stdout); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			logger.Info("Operation cancelled")
		case errors.Is(err, host.ErrBreakpoint):
			logger.Info("Execution stopped", log.Err(err))
		default:
			logger.Error("Running ROM failed", log.Err(err))
			os.Exit(1)
		}
	}
}
