// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const windowManifest = `{
	// Window controls for the admin shell.
	"description": "window management",
	"modules": [
		{
			"name": "window",
			"methods": {
				"minimize": {"channel": "window:minimize", "params": []},
				"setTitle": {
					"channel": "window:setTitle",
					"params": [{"name": "title", "kind": "string"}],
				},
				/* Slow on some compositors. */
				"capture": {
					"channel": "window:capture",
					"options": {"timeout": "5s", "retry": true, "retryCount": 2},
				},
			},
		},
	],
}`

func TestParse(t *testing.T) {
	t.Parallel()

	manifest, err := Parse([]byte(windowManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if manifest.Description != "window management" {
		t.Errorf("Description = %q", manifest.Description)
	}
	if len(manifest.Modules) != 1 || manifest.Modules[0].Name != "window" {
		t.Fatalf("Modules = %+v", manifest.Modules)
	}

	methods := manifest.Modules[0].Methods
	if len(methods) != 3 {
		t.Fatalf("methods = %d, want 3", len(methods))
	}

	minimize := methods["minimize"]
	if minimize.Params == nil || len(minimize.Params) != 0 {
		t.Errorf("minimize.Params = %#v, want an empty non-nil list", minimize.Params)
	}

	setTitle := methods["setTitle"]
	if len(setTitle.Params) != 1 || setTitle.Params[0].Kind != "string" {
		t.Errorf("setTitle.Params = %+v", setTitle.Params)
	}

	capture := methods["capture"]
	if capture.Params != nil {
		t.Errorf("capture.Params = %#v, want nil (unchecked)", capture.Params)
	}
	if capture.Options == nil || capture.Options.Timeout != "5s" ||
		capture.Options.Retry == nil || !*capture.Options.Retry ||
		capture.Options.RetryCount == nil || *capture.Options.RetryCount != 2 {
		t.Errorf("capture.Options = %+v", capture.Options)
	}

	if issues := Validate(manifest); len(issues) != 0 {
		t.Errorf("Validate: unexpected issues %v", issues)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`{"modules": [{"name": "a", "methods": {"m": {"channel": "a:m", "retries": 3}}}]}`))
	if err == nil || !strings.Contains(err.Error(), "retries") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte(`{"modules": [`)); err == nil {
		t.Fatal("expected error for truncated manifest")
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "window.jsonc")
	if err := os.WriteFile(path, []byte(windowManifest), 0644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}

	manifest, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(manifest.Modules) != 1 {
		t.Errorf("Modules = %d, want 1", len(manifest.Modules))
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "absent.jsonc")); err == nil {
		t.Error("expected error for a missing file")
	}

	broken := filepath.Join(t.TempDir(), "broken.jsonc")
	if err := os.WriteFile(broken, []byte("{"), 0644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	if _, err := ReadFile(broken); err == nil || !strings.Contains(err.Error(), broken) {
		t.Errorf("expected error naming %s, got %v", broken, err)
	}
}

func TestNameFromPath(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"manifests/window.jsonc":  "window",
		"/etc/duoshell/file.json": "file",
		"dialog":                  "dialog",
	}
	for path, want := range tests {
		if got := NameFromPath(path); got != want {
			t.Errorf("NameFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func intPointer(value int) *int { return &value }

func TestValidate(t *testing.T) {
	t.Parallel()

	validMethod := map[string]MethodSpec{"ping": {Channel: "util:ping"}}

	tests := []struct {
		name           string
		manifest       *Manifest
		expectedIssues int
		wantSubstrings []string
	}{
		{
			name: "valid",
			manifest: &Manifest{Modules: []ModuleSpec{
				{Name: "util", Methods: validMethod},
			}},
		},
		{
			name:           "no modules",
			manifest:       &Manifest{},
			expectedIssues: 1,
			wantSubstrings: []string{"no modules"},
		},
		{
			name: "duplicate module",
			manifest: &Manifest{Modules: []ModuleSpec{
				{Name: "util", Methods: validMethod},
				{Name: "util", Methods: validMethod},
			}},
			expectedIssues: 1,
			wantSubstrings: []string{"duplicate module name", "modules[0]"},
		},
		{
			name: "empty module name and no methods",
			manifest: &Manifest{Modules: []ModuleSpec{
				{Name: ""},
			}},
			expectedIssues: 2,
			wantSubstrings: []string{"invalid parameter", "no methods"},
		},
		{
			name: "missing channel",
			manifest: &Manifest{Modules: []ModuleSpec{
				{Name: "util", Methods: map[string]MethodSpec{"ping": {}}},
			}},
			expectedIssues: 1,
			wantSubstrings: []string{`method "ping"`, "channel"},
		},
		{
			name: "unknown kind",
			manifest: &Manifest{Modules: []ModuleSpec{
				{Name: "file", Methods: map[string]MethodSpec{
					"read": {Channel: "file:read", Params: []ParamSpec{{Name: "path", Kind: "path"}}},
				}},
			}},
			expectedIssues: 1,
			wantSubstrings: []string{"params[0]", `unknown parameter kind "path"`},
		},
		{
			name: "bad options",
			manifest: &Manifest{Modules: []ModuleSpec{
				{Name: "file", Methods: map[string]MethodSpec{
					"read":  {Channel: "file:read", Options: &OptionsSpec{Timeout: "soon"}},
					"write": {Channel: "file:write", Options: &OptionsSpec{Timeout: "-1s", RetryCount: intPointer(-2)}},
				}},
			}},
			expectedIssues: 3,
			wantSubstrings: []string{"invalid options.timeout", "must be positive", "retryCount must be non-negative"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			issues := Validate(test.manifest)
			if len(issues) != test.expectedIssues {
				t.Fatalf("got %d issues, want %d: %v", len(issues), test.expectedIssues, issues)
			}
			joined := strings.Join(issues, "\n")
			for _, substring := range test.wantSubstrings {
				if !strings.Contains(joined, substring) {
					t.Errorf("issues %q missing %q", joined, substring)
				}
			}
		})
	}
}
