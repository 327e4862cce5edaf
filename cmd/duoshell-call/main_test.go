// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/bureau-foundation/duoshell/features/app"
	"github.com/bureau-foundation/duoshell/lib/handler"
	"github.com/bureau-foundation/duoshell/lib/process"
	"github.com/bureau-foundation/duoshell/lib/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// startHost serves the app feature plus a window:setTitle echo handler
// and returns a config file pointing at it.
func startHost(t *testing.T) string {
	t.Helper()

	socketPath := testutil.SocketPath(t, "host.sock")
	host := handler.NewHost(socketPath, handler.Options{}, testLogger())
	app.RegisterHandlers(host, app.Info{Name: "Duoshell Admin", Version: "1.0.0", Platform: "linux"}, testLogger())
	host.Handle("window:setTitle", func(ctx context.Context, call *handler.Call) (any, error) {
		var title string
		if err := call.Arg(0, &title); err != nil {
			return nil, err
		}
		return map[string]any{"title": title}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		host.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	testutil.WaitForSocket(t, socketPath)

	directory := t.TempDir()
	manifestPath := filepath.Join(directory, "window.jsonc")
	manifest := `{"modules": [{"name": "window", "methods": {
		"setTitle": {"channel": "window:setTitle", "params": [{"name": "title", "kind": "string"}]},
	}}]}`
	if err := os.WriteFile(manifestPath, []byte(manifest), 0644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}

	configPath := filepath.Join(directory, "duoshell.yaml")
	configContent := "variant: admin\n" +
		"log:\n  format: text\n" +
		"paths:\n  socket: " + socketPath + "\n  manifests: [" + manifestPath + "]\n"
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return configPath
}

func TestCallThroughSurface(t *testing.T) {
	configPath := startHost(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"getVersion", []string{"app.getVersion"}, `"1.0.0"`},
		{"getName", []string{"app.getName"}, `"Duoshell Admin"`},
		{"manifest method", []string{"window.setTitle", "Inbox"}, "{\n  \"title\": \"Inbox\"\n}"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var stdout bytes.Buffer
			args := append([]string{"--config", configPath}, test.args...)
			if err := run(context.Background(), args, &stdout); err != nil {
				t.Fatalf("run(%v): %v", args, err)
			}
			if got := strings.TrimSpace(stdout.String()); got != test.want {
				t.Errorf("output = %q, want %q", got, test.want)
			}
		})
	}
}

func TestList(t *testing.T) {
	configPath := startHost(t)

	var stdout bytes.Buffer
	if err := run(context.Background(), []string{"--config", configPath, "--list"}, &stdout); err != nil {
		t.Fatalf("run --list: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	want := []string{"app.getName", "app.getPlatform", "app.getVersion", "window.setTitle"}
	if len(lines) != len(want)+1 {
		t.Fatalf("output lines = %v", lines)
	}
	if !reflect.DeepEqual(lines[:len(want)], want) {
		t.Errorf("methods = %v, want %v", lines[:len(want)], want)
	}
	if !strings.HasPrefix(lines[len(want)], "# digest ") {
		t.Errorf("last line = %q, want the surface digest", lines[len(want)])
	}
}

func TestCallErrors(t *testing.T) {
	configPath := startHost(t)

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{"no target", []string{}, process.ExitUsage},
		{"malformed target", []string{"getVersion"}, process.ExitUsage},
		{"unknown method", []string{"app.quit"}, process.ExitUsage},
		{"unknown namespace", []string{"file.read", "/etc/passwd"}, process.ExitUsage},
		{"wrong argument kind", []string{"window.setTitle", "42"}, process.ExitUsage},
		{"wrong arity", []string{"window.setTitle"}, process.ExitUsage},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			args := append([]string{"--config", configPath}, test.args...)
			err := run(context.Background(), args, &bytes.Buffer{})
			if got := process.ExitCode(err); got != test.wantCode {
				t.Errorf("run(%v) error = %v (exit %d), want exit %d", args, err, got, test.wantCode)
			}
		})
	}
}

func TestCallHostDown(t *testing.T) {
	directory := t.TempDir()
	configPath := filepath.Join(directory, "duoshell.yaml")
	configContent := "paths:\n  socket: " + filepath.Join(directory, "absent.sock") + "\n"
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	err := run(context.Background(), []string{"--config", configPath, "app.getVersion"}, &bytes.Buffer{})
	if err == nil || !strings.HasPrefix(err.Error(), "remote call failed: app:getVersion - ") {
		t.Fatalf("error = %v, want a remote call failure", err)
	}
	var usage *process.UsageError
	if errors.As(err, &usage) {
		t.Error("a host failure must not be reported as a usage error")
	}
}

func TestParseArgument(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"2.5", 2.5},
		{"hello", "hello"},
		{`["a", 1]`, []any{"a", float64(1)}},
		{`{"k": true}`, map[string]any{"k": true}},
		{"[not json", "[not json"},
		{"", ""},
	}
	for _, test := range tests {
		if got := parseArgument(test.raw); !reflect.DeepEqual(got, test.want) {
			t.Errorf("parseArgument(%q) = %#v, want %#v", test.raw, got, test.want)
		}
	}
}

func TestSplitTarget(t *testing.T) {
	namespace, method, err := splitTarget("app.getVersion")
	if err != nil || namespace != "app" || method != "getVersion" {
		t.Errorf("splitTarget = %q, %q, %v", namespace, method, err)
	}
	for _, bad := range []string{"app", ".getVersion", "app.", ""} {
		if _, _, err := splitTarget(bad); err == nil {
			t.Errorf("splitTarget(%q) should fail", bad)
		}
	}
}
