// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ModuleBuilder constructs one module from the shared factory.
type ModuleBuilder func(factory *Factory) (*Module, error)

// PreloadConfig describes one renderer's startup wiring.
type PreloadConfig struct {
	// Transport reaches the privileged host. Required.
	Transport Transport

	// Adapter configures timeouts, retries, and telemetry. Its Logger
	// defaults to Logger below.
	Adapter AdapterConfig

	// Modules are built and registered in order.
	Modules []ModuleBuilder

	// World receives the surface. Required.
	World *World

	// GlobalName is the exposure key. Empty means GlobalName.
	GlobalName string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Preload builds every module, registers them into a fresh Registry,
// publishes it, and exposes the resulting Surface into the world.
// Any failure aborts startup: a renderer never sees a partial surface.
func Preload(ctx context.Context, config PreloadConfig) (*Surface, error) {
	if config.Transport == nil {
		return nil, errors.New("bridge: Preload requires a transport")
	}
	if config.World == nil {
		return nil, errors.New("bridge: Preload requires a world")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	globalName := config.GlobalName
	if globalName == "" {
		globalName = GlobalName
	}

	adapterConfig := config.Adapter
	if adapterConfig.Logger == nil {
		adapterConfig.Logger = logger
	}
	adapter, err := NewAdapter(config.Transport, adapterConfig)
	if err != nil {
		return nil, err
	}
	factory := NewFactory(adapter)

	registry := NewRegistry(logger)
	for index, build := range config.Modules {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("preload interrupted: %w", err)
		}
		module, err := build(factory)
		if err != nil {
			return nil, fmt.Errorf("building module %d: %w", index, err)
		}
		if err := registry.Register(module); err != nil {
			return nil, err
		}
	}

	surface, err := registry.Publish()
	if err != nil {
		return nil, err
	}
	if err := config.World.ExposeInMainWorld(globalName, surface); err != nil {
		return nil, err
	}
	return surface, nil
}
