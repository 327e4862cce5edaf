// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package features is the catalog of built-in feature modules. Each
// feature contributes a bridge module for the renderer and the
// privileged handlers that serve it; configuration enables features by
// name.
package features

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/bureau-foundation/duoshell/bridge"
	"github.com/bureau-foundation/duoshell/features/app"
	"github.com/bureau-foundation/duoshell/lib/handler"
)

// Environment is what the host knows about the running application.
type Environment struct {
	AppName    string
	AppVersion string

	// Platform overrides runtime.GOOS when non-empty.
	Platform string

	Logger *slog.Logger
}

// Feature pairs the two halves of one built-in module.
type Feature struct {
	// Name is the configuration key and the namespace.
	Name string

	// Module builds the renderer-side module.
	Module bridge.ModuleBuilder

	// Register binds the feature's channels on a host.
	Register func(host *handler.Host, environment Environment)
}

var catalog = map[string]Feature{
	app.Namespace: {
		Name:   app.Namespace,
		Module: app.NewModule,
		Register: func(host *handler.Host, environment Environment) {
			app.RegisterHandlers(host, app.Info{
				Name:     environment.AppName,
				Version:  environment.AppVersion,
				Platform: environment.Platform,
			}, environment.Logger)
		},
	},
}

// Lookup returns the named feature.
func Lookup(name string) (Feature, error) {
	feature, ok := catalog[name]
	if !ok {
		return Feature{}, fmt.Errorf("unknown feature %q (available: %v)", name, Names())
	}
	return feature, nil
}

// Resolve looks up every name, failing on the first unknown one.
func Resolve(names []string) ([]Feature, error) {
	resolved := make([]Feature, 0, len(names))
	for _, name := range names {
		feature, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, feature)
	}
	return resolved, nil
}

// Names returns the catalog's feature names, sorted.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
