// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// duoshell-call plays the renderer: it runs the preload wiring for the
// configured variant, looks the exposed surface up by its global name,
// and performs one call through it. It never touches the transport
// directly, so it can reach exactly what the surface exposes.
//
// Usage:
//
//	duoshell-call --config duoshell.yaml [--variant client] app.getVersion
//	duoshell-call --config duoshell.yaml window.setTitle "Inbox"
//	duoshell-call --config duoshell.yaml --list
//
// Arguments are decoded as integers, floats, or JSON arrays/objects
// when they parse as such, and passed as strings otherwise. The result
// is printed as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/duoshell/bridge"
	"github.com/bureau-foundation/duoshell/lib/config"
	"github.com/bureau-foundation/duoshell/lib/logging"
	"github.com/bureau-foundation/duoshell/lib/process"
	"github.com/bureau-foundation/duoshell/lib/validate"
	"github.com/bureau-foundation/duoshell/lib/version"
	"github.com/bureau-foundation/duoshell/preload"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		process.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	var (
		configPath  string
		variantName string
		list        bool
		verbose     bool
		showVersion bool
	)

	flagSet := pflag.NewFlagSet("duoshell-call", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to duoshell.yaml (default: $DUOSHELL_CONFIG)")
	flagSet.StringVar(&variantName, "variant", "", "application variant: admin or client (default: from config)")
	flagSet.BoolVar(&list, "list", false, "list the exposed methods and exit")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	// Arguments after the method name belong to the call, even if they
	// look like flags.
	flagSet.SetInterspersed(false)

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return &process.UsageError{Err: err}
	}
	if showVersion {
		version.Print("duoshell-call")
		return nil
	}

	var variant config.Variant
	if variantName != "" {
		parsed, err := config.ParseVariant(variantName)
		if err != nil {
			return &process.UsageError{Err: err}
		}
		variant = parsed
	}
	cfg, err := config.LoadSelected(configPath, variant)
	if err != nil {
		return &process.UsageError{Err: err}
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return &process.UsageError{Err: fmt.Errorf("invalid configuration: %w", err)}
	}

	// Quiet by default: stdout carries the result, so only warnings
	// reach stderr unless --verbose was given.
	level := "warn"
	if verbose {
		level = cfg.Log.Level
	}
	logger, err := logging.New(logging.Options{Level: level, Format: logging.Format(cfg.Log.Format)})
	if err != nil {
		return &process.UsageError{Err: err}
	}

	world, err := preload.Run(ctx, cfg, preload.Options{Logger: logger})
	if err != nil {
		return err
	}
	surface, ok := world.Lookup(bridge.GlobalName)
	if !ok {
		return fmt.Errorf("nothing exposed under %s", bridge.GlobalName)
	}

	if list {
		return printSurface(stdout, surface)
	}

	if flagSet.NArg() == 0 {
		return process.Usagef("usage: duoshell-call [flags] <namespace>.<method> [args...]")
	}
	namespace, method, err := splitTarget(flagSet.Arg(0))
	if err != nil {
		return &process.UsageError{Err: err}
	}
	callArgs := make([]any, 0, flagSet.NArg()-1)
	for _, raw := range flagSet.Args()[1:] {
		callArgs = append(callArgs, parseArgument(raw))
	}

	result, err := surface.Call(ctx, namespace, method, callArgs...)
	if err != nil {
		var unknown *bridge.UnknownMethodError
		if errors.As(err, &unknown) || errors.Is(err, validate.ErrInvalidParameter) {
			return &process.UsageError{Err: err}
		}
		return err
	}
	return printResult(stdout, result)
}

// splitTarget parses "namespace.method". The method is everything after
// the first dot.
func splitTarget(target string) (namespace, method string, err error) {
	namespace, method, found := strings.Cut(target, ".")
	if !found || namespace == "" || method == "" {
		return "", "", fmt.Errorf("target %q must have the form <namespace>.<method>", target)
	}
	return namespace, method, nil
}

// parseArgument converts one command-line argument into a call
// argument.
func parseArgument(raw string) any {
	if integer, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return integer
	}
	if number, err := strconv.ParseFloat(raw, 64); err == nil {
		return number
	}
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		var decoded any
		if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
			return decoded
		}
	}
	return raw
}

func printSurface(stdout io.Writer, surface *bridge.Surface) error {
	for _, namespace := range surface.Namespaces() {
		for _, method := range surface.Methods(namespace) {
			if _, err := fmt.Fprintf(stdout, "%s.%s\n", namespace, method); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(stdout, "# digest %s\n", surface.Digest())
	return err
}

func printResult(stdout io.Writer, result any) error {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("encoding result as JSON: %w", err)
	}
	return nil
}
