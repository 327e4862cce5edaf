// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest parses and validates module manifests: JSONC files
// that declare extra bridge modules (namespaces, methods, the channel
// each method forwards to, parameter kinds, and per-method invocation
// options) without writing Go code.
//
// The typical flow:
//
//  1. ReadFile or Parse: JSONC bytes → Manifest
//  2. Validate: structural checks (names, channels, kinds, durations)
//  3. The preload wiring turns each ModuleSpec into a bridge module
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// Manifest is the top-level document.
type Manifest struct {
	// Description is free text for humans.
	Description string `json:"description,omitempty"`

	// Modules are registered in the order listed.
	Modules []ModuleSpec `json:"modules"`
}

// ModuleSpec declares one namespace.
type ModuleSpec struct {
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Methods     map[string]MethodSpec `json:"methods"`
}

// MethodSpec declares one method.
type MethodSpec struct {
	// Channel is the host operation, "<domain>:<action>".
	Channel string `json:"channel"`

	// Params, when present, fixes arity and argument kinds. An absent
	// list leaves arguments unchecked; an empty list means no
	// arguments.
	Params []ParamSpec `json:"params,omitempty"`

	// Options overrides the invocation defaults for this method.
	Options *OptionsSpec `json:"options,omitempty"`
}

// ParamSpec declares one positional argument.
type ParamSpec struct {
	Name string `json:"name"`

	// Kind is string, number, array, or any. Empty means any.
	Kind string `json:"kind,omitempty"`
}

// OptionsSpec is a partial set of invocation options. Timeout uses
// time.ParseDuration syntax.
type OptionsSpec struct {
	Timeout    string `json:"timeout,omitempty"`
	Retry      *bool  `json:"retry,omitempty"`
	RetryCount *int   `json:"retryCount,omitempty"`
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Manifest. Unknown fields are rejected
// so a misspelled option does not silently fall back to the default.
func Parse(data []byte) (*Manifest, error) {
	stripped := jsonc.ToJSON(data)

	decoder := json.NewDecoder(bytes.NewReader(stripped))
	decoder.DisallowUnknownFields()

	var manifest Manifest
	if err := decoder.Decode(&manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	return &manifest, nil
}

// ReadFile reads and parses a JSONC manifest file.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	manifest, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return manifest, nil
}

// NameFromPath extracts a manifest name from a file path by stripping
// the directory prefix and the file extension. For example,
// "manifests/window.jsonc" returns "window".
func NameFromPath(path string) string {
	base := filepath.Base(path)
	extension := filepath.Ext(base)
	return strings.TrimSuffix(base, extension)
}
