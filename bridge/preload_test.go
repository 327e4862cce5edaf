// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/bureau-foundation/duoshell/lib/clock"
)

func appModuleBuilder(factory *Factory) (*Module, error) {
	return factory.CreateModule("app", map[string]MethodDefinition{
		"getVersion": Define[string]("app:getVersion"),
	})
}

func TestPreloadExposesSurface(t *testing.T) {
	transport := echoTransport(t)
	world := NewWorld(testLogger())

	surface, err := Preload(context.Background(), PreloadConfig{
		Transport: transport,
		Adapter:   AdapterConfig{Clock: clock.Real()},
		Modules:   []ModuleBuilder{appModuleBuilder},
		World:     world,
		Logger:    testLogger(),
	})
	if err != nil {
		t.Fatalf("Preload: %v", err)
	}

	exposed, ok := world.Lookup(GlobalName)
	if !ok || exposed != surface {
		t.Fatalf("surface not exposed under %s", GlobalName)
	}

	version, err := Bind[string](exposed, "app", "getVersion")(context.Background())
	if err != nil || version != "1.0.0" {
		t.Errorf("app.getVersion = %q, %v", version, err)
	}
}

func TestPreloadCustomGlobalName(t *testing.T) {
	world := NewWorld(testLogger())
	_, err := Preload(context.Background(), PreloadConfig{
		Transport:  echoTransport(t),
		Modules:    []ModuleBuilder{appModuleBuilder},
		World:      world,
		GlobalName: "adminAPI",
		Logger:     testLogger(),
	})
	if err != nil {
		t.Fatalf("Preload: %v", err)
	}
	if _, ok := world.Lookup("adminAPI"); !ok {
		t.Error("surface not exposed under adminAPI")
	}
	if _, ok := world.Lookup(GlobalName); ok {
		t.Error("surface unexpectedly exposed under the default name")
	}
}

func TestPreloadFailures(t *testing.T) {
	failing := func(factory *Factory) (*Module, error) {
		return nil, errors.New("feature unavailable")
	}

	tests := []struct {
		name    string
		modules []ModuleBuilder
		check   func(t *testing.T, err error)
	}{
		{
			name:    "builder error",
			modules: []ModuleBuilder{appModuleBuilder, failing},
			check: func(t *testing.T, err error) {
				if err == nil {
					t.Fatal("expected error")
				}
			},
		},
		{
			name:    "duplicate module",
			modules: []ModuleBuilder{appModuleBuilder, appModuleBuilder},
			check: func(t *testing.T, err error) {
				var duplicate *DuplicateModuleError
				if !errors.As(err, &duplicate) {
					t.Fatalf("error = %v, want *DuplicateModuleError", err)
				}
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			world := NewWorld(testLogger())
			_, err := Preload(context.Background(), PreloadConfig{
				Transport: echoTransport(t),
				Modules:   test.modules,
				World:     world,
				Logger:    testLogger(),
			})
			test.check(t, err)
			if _, ok := world.Lookup(GlobalName); ok {
				t.Error("a failed preload exposed a surface")
			}
		})
	}
}

func TestPreloadTwiceIntoSameWorld(t *testing.T) {
	world := NewWorld(testLogger())
	config := PreloadConfig{
		Transport: echoTransport(t),
		Modules:   []ModuleBuilder{appModuleBuilder},
		World:     world,
		Logger:    testLogger(),
	}
	if _, err := Preload(context.Background(), config); err != nil {
		t.Fatalf("first Preload: %v", err)
	}
	_, err := Preload(context.Background(), config)
	var exposed *AlreadyExposedError
	if !errors.As(err, &exposed) {
		t.Errorf("second Preload error = %v, want *AlreadyExposedError", err)
	}
}

func TestPreloadRequiresTransportAndWorld(t *testing.T) {
	if _, err := Preload(context.Background(), PreloadConfig{World: NewWorld(nil)}); err == nil {
		t.Error("expected error without a transport")
	}
	if _, err := Preload(context.Background(), PreloadConfig{Transport: echoTransport(t)}); err == nil {
		t.Error("expected error without a world")
	}
}
