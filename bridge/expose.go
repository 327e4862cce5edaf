// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/duoshell/lib/validate"
)

// GlobalName is the well-known key renderer code looks the surface up
// under.
const GlobalName = "shellAPI"

// World is the renderer's global scope. Values exposed into it can be
// read but never replaced.
type World struct {
	logger *slog.Logger

	mu      sync.RWMutex
	globals map[string]*Surface
}

// NewWorld returns an empty World.
func NewWorld(logger *slog.Logger) *World {
	if logger == nil {
		logger = slog.Default()
	}
	return &World{
		logger:  logger,
		globals: make(map[string]*Surface),
	}
}

// ExposeInMainWorld publishes surface under key. Each key can be
// exposed once; a second exposure returns *AlreadyExposedError and
// leaves the first in place.
func (w *World) ExposeInMainWorld(key string, surface *Surface) error {
	if _, err := validate.Name(key, "global name"); err != nil {
		return err
	}
	if surface == nil {
		return errors.New("bridge: ExposeInMainWorld called with a nil surface")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.globals[key]; exists {
		return &AlreadyExposedError{Key: key}
	}
	w.globals[key] = surface
	w.logger.Info("surface exposed to renderer",
		"key", key,
		"namespaces", surface.Namespaces(),
		"digest", surface.Digest(),
	)
	return nil
}

// Lookup returns the surface exposed under key.
func (w *World) Lookup(key string) (*Surface, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	surface, ok := w.globals[key]
	return surface, ok
}
