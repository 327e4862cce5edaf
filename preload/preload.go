// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package preload turns a loaded configuration into a renderer's
// bridge: it resolves the enabled built-in features, loads module
// manifests, and runs [bridge.Preload] with invocation defaults taken
// from the config file.
package preload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/bureau-foundation/duoshell/bridge"
	"github.com/bureau-foundation/duoshell/features"
	"github.com/bureau-foundation/duoshell/lib/clock"
	"github.com/bureau-foundation/duoshell/lib/config"
	"github.com/bureau-foundation/duoshell/lib/manifest"
	"github.com/bureau-foundation/duoshell/lib/validate"
)

// Options supplies the runtime collaborators the config file cannot.
type Options struct {
	// Transport overrides the socket transport built from
	// cfg.Paths.Socket.
	Transport bridge.Transport

	// World receives the surface. Nil means a fresh World.
	World *bridge.World

	Clock          clock.Clock
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	Logger         *slog.Logger
}

// Run wires the bridge described by cfg and exposes it. It returns the
// world the surface was exposed into.
func Run(ctx context.Context, cfg *config.Config, options Options) (*bridge.World, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	adapterConfig, err := AdapterConfig(cfg)
	if err != nil {
		return nil, err
	}
	adapterConfig.Clock = options.Clock
	adapterConfig.TracerProvider = options.TracerProvider
	adapterConfig.MeterProvider = options.MeterProvider
	adapterConfig.Logger = logger

	builders, err := ModuleBuilders(cfg)
	if err != nil {
		return nil, err
	}

	transport := options.Transport
	if transport == nil {
		transport = bridge.NewSocketTransport(cfg.Paths.Socket)
	}
	world := options.World
	if world == nil {
		world = bridge.NewWorld(logger)
	}

	if _, err := bridge.Preload(ctx, bridge.PreloadConfig{
		Transport: transport,
		Adapter:   adapterConfig,
		Modules:   builders,
		World:     world,
		Logger:    logger.With("variant", string(cfg.Variant)),
	}); err != nil {
		return nil, fmt.Errorf("preload (%s): %w", cfg.Variant, err)
	}
	return world, nil
}

// AdapterConfig converts the config file's invoke section.
func AdapterConfig(cfg *config.Config) (bridge.AdapterConfig, error) {
	timeout, err := cfg.Invoke.TimeoutDuration()
	if err != nil {
		return bridge.AdapterConfig{}, err
	}
	backoff, err := cfg.Invoke.BackoffDuration()
	if err != nil {
		return bridge.AdapterConfig{}, err
	}
	defaults := bridge.Options{
		Timeout:    timeout,
		Retry:      cfg.Invoke.Retry,
		RetryCount: cfg.Invoke.RetryCount,
	}
	if err := defaults.Validate(); err != nil {
		return bridge.AdapterConfig{}, err
	}
	return bridge.AdapterConfig{
		Defaults:    defaults,
		BackoffUnit: backoff,
	}, nil
}

// ModuleBuilders returns the builders for cfg's enabled features
// followed by every module declared in cfg's manifests, in file order.
func ModuleBuilders(cfg *config.Config) ([]bridge.ModuleBuilder, error) {
	enabled, err := features.Resolve(cfg.Features)
	if err != nil {
		return nil, err
	}

	var builders []bridge.ModuleBuilder
	for _, feature := range enabled {
		builders = append(builders, feature.Module)
	}

	for _, path := range cfg.Paths.Manifests {
		loaded, err := LoadManifest(path)
		if err != nil {
			return nil, err
		}
		for _, spec := range loaded.Modules {
			builders = append(builders, ModuleFromSpec(spec))
		}
	}
	return builders, nil
}

// LoadManifest reads and validates one manifest file.
func LoadManifest(path string) (*manifest.Manifest, error) {
	loaded, err := manifest.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if issues := manifest.Validate(loaded); len(issues) > 0 {
		return nil, fmt.Errorf("manifest %s has %d issue(s):\n  %s",
			path, len(issues), strings.Join(issues, "\n  "))
	}
	return loaded, nil
}

// ModuleFromSpec returns a builder for a manifest module.
func ModuleFromSpec(spec manifest.ModuleSpec) bridge.ModuleBuilder {
	return func(factory *bridge.Factory) (*bridge.Module, error) {
		definitions := make(map[string]bridge.MethodDefinition, len(spec.Methods))
		for name, method := range spec.Methods {
			definition, err := definitionFromSpec(method)
			if err != nil {
				return nil, fmt.Errorf("module %q method %q: %w", spec.Name, name, err)
			}
			definitions[name] = definition
		}
		return factory.CreateModule(spec.Name, definitions)
	}
}

func definitionFromSpec(method manifest.MethodSpec) (bridge.MethodDefinition, error) {
	definition := bridge.MethodDefinition{Channel: method.Channel}

	if method.Params != nil {
		definition.Params = make([]bridge.Param, 0, len(method.Params))
		for index, param := range method.Params {
			kind, err := validate.ParseKind(param.Kind)
			if err != nil {
				return bridge.MethodDefinition{}, fmt.Errorf("params[%d]: %w", index, err)
			}
			definition.Params = append(definition.Params, bridge.Param{Name: param.Name, Kind: kind})
		}
	}

	if method.Options != nil {
		overrides, err := overridesFromSpec(method.Options)
		if err != nil {
			return bridge.MethodDefinition{}, err
		}
		definition.Options = overrides
	}
	return definition, nil
}

func overridesFromSpec(spec *manifest.OptionsSpec) (*bridge.Overrides, error) {
	overrides := &bridge.Overrides{
		Retry:      spec.Retry,
		RetryCount: spec.RetryCount,
	}
	if spec.Timeout != "" {
		timeout, err := time.ParseDuration(spec.Timeout)
		if err != nil {
			return nil, fmt.Errorf("options.timeout: %w", err)
		}
		if timeout <= 0 {
			return nil, errors.New("options.timeout must be positive")
		}
		overrides.Timeout = &timeout
	}
	return overrides, nil
}
