// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// duoshell-host is the privileged side of a duoshell application. It
// binds the handlers of every enabled feature on a Unix socket and
// serves renderer calls until SIGINT or SIGTERM.
//
// Usage:
//
//	duoshell-host --config duoshell.yaml --variant admin [--socket path] [--verbose]
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/duoshell/features"
	"github.com/bureau-foundation/duoshell/lib/config"
	"github.com/bureau-foundation/duoshell/lib/handler"
	"github.com/bureau-foundation/duoshell/lib/logging"
	"github.com/bureau-foundation/duoshell/lib/process"
	"github.com/bureau-foundation/duoshell/lib/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}

func run(args []string) error {
	var (
		configPath  string
		variantName string
		socketPath  string
		verbose     bool
		showVersion bool
	)

	flagSet := pflag.NewFlagSet("duoshell-host", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to duoshell.yaml (default: $DUOSHELL_CONFIG)")
	flagSet.StringVar(&variantName, "variant", "", "application variant: admin or client (default: from config)")
	flagSet.StringVar(&socketPath, "socket", "", "override the socket path from the config file")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return &process.UsageError{Err: err}
	}
	if showVersion {
		version.Print("duoshell-host")
		return nil
	}
	if flagSet.NArg() > 0 {
		return process.Usagef("unexpected argument: %s", flagSet.Arg(0))
	}

	cfg, err := loadConfig(configPath, variantName)
	if err != nil {
		return err
	}
	if socketPath != "" {
		cfg.Paths.Socket = socketPath
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return &process.UsageError{Err: fmt.Errorf("invalid configuration: %w", err)}
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: logging.Format(cfg.Log.Format),
	})
	if err != nil {
		return &process.UsageError{Err: err}
	}

	host, err := newHost(cfg, logger)
	if err != nil {
		return err
	}
	if err := cfg.EnsurePaths(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("duoshell host starting",
		"variant", string(cfg.Variant),
		"app", cfg.App.Name,
		"socket", cfg.Paths.Socket,
		"channels", host.Channels(),
	)
	if err := host.Serve(ctx); err != nil {
		return err
	}
	logger.Info("duoshell host stopped")
	return nil
}

func loadConfig(path, variantName string) (*config.Config, error) {
	var variant config.Variant
	if variantName != "" {
		parsed, err := config.ParseVariant(variantName)
		if err != nil {
			return nil, &process.UsageError{Err: err}
		}
		variant = parsed
	}
	cfg, err := config.LoadSelected(path, variant)
	if err != nil {
		return nil, &process.UsageError{Err: err}
	}
	return cfg, nil
}

// newHost builds a host serving every enabled feature. Only the uid
// running the host may connect.
func newHost(cfg *config.Config, logger *slog.Logger) (*handler.Host, error) {
	enabled, err := features.Resolve(cfg.Features)
	if err != nil {
		return nil, &process.UsageError{Err: err}
	}

	uid := uint32(os.Getuid())
	host := handler.NewHost(cfg.Paths.Socket, handler.Options{AllowedUID: &uid}, logger)

	appVersion := cfg.App.Version
	if appVersion == "" {
		appVersion = version.Short()
	}
	environment := features.Environment{
		AppName:    cfg.App.Name,
		AppVersion: appVersion,
		Logger:     logger,
	}
	for _, feature := range enabled {
		feature.Register(host, environment)
	}
	return host, nil
}
