// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"errors"
	"log/slog"
	"sync"
)

// Phase is the registry's lifecycle state.
type Phase int

const (
	// PhaseOpen accepts registrations.
	PhaseOpen Phase = iota

	// PhasePublished rejects registrations; the surface is fixed.
	PhasePublished
)

func (p Phase) String() string {
	switch p {
	case PhaseOpen:
		return "open"
	case PhasePublished:
		return "published"
	}
	return "unknown"
}

// API maps namespace → method name → callable.
type API map[string]map[string]Func

// Registry collects modules under unique names. One Registry is
// created per renderer process and passed through startup wiring.
// Safe for concurrent use.
type Registry struct {
	logger *slog.Logger

	mu      sync.Mutex
	phase   Phase
	modules map[string]*Module
	order   []string
}

// NewRegistry returns an empty registry in PhaseOpen.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:  logger,
		modules: make(map[string]*Module),
	}
}

// Register stores module under its name. Fails with
// *DuplicateModuleError if the name is taken (the existing module is
// left untouched) and with *RegistrationClosedError after Publish.
func (r *Registry) Register(module *Module) error {
	if module == nil {
		return errors.New("bridge: Register called with a nil module")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseOpen {
		return &RegistrationClosedError{Name: module.Name()}
	}
	if _, exists := r.modules[module.Name()]; exists {
		return &DuplicateModuleError{Name: module.Name()}
	}

	r.modules[module.Name()] = module
	r.order = append(r.order, module.Name())
	r.logger.Debug("module registered",
		"module", module.Name(),
		"methods", module.MethodNames(),
	)
	return nil
}

// Module returns the module registered under name.
func (r *Registry) Module(name string) (*Module, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	module, ok := r.modules[name]
	return module, ok
}

// HasModule reports whether name is registered.
func (r *Registry) HasModule(name string) bool {
	_, ok := r.Module(name)
	return ok
}

// ModuleNames returns the registered names in registration order.
func (r *Registry) ModuleNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Phase returns the current lifecycle phase.
func (r *Registry) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// BuildAPI returns a snapshot of every registered module's methods,
// keyed by module name. The snapshot shares no maps with the registry.
func (r *Registry) BuildAPI() API {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buildAPILocked()
}

func (r *Registry) buildAPILocked() API {
	api := make(API, len(r.modules))
	for name, module := range r.modules {
		api[name] = module.API()
	}
	return api
}

// Publish closes registration and returns the frozen Surface built
// from everything registered so far. A second call returns
// ErrAlreadyPublished.
func (r *Registry) Publish() (*Surface, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase == PhasePublished {
		return nil, ErrAlreadyPublished
	}
	r.phase = PhasePublished

	surface := newSurface(r.buildAPILocked(), r.order)
	r.logger.Info("bridge surface published",
		"namespaces", surface.Namespaces(),
		"digest", surface.Digest(),
	)
	return surface, nil
}
