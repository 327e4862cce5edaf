// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for duoshell
// binaries.
//
// Configuration is loaded from a single file specified by either the
// DUOSHELL_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks and no automatic file
// search.
//
// The file may contain variant sections (admin, client) that override
// base values when the selected [Variant] matches. When neither the
// base config nor the variant section names the application, the
// variant's product name is used ("Duoshell Admin" or "Duoshell
// Client").
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${DUOSHELL_ROOT}, and ${VAR:-default} patterns are expanded.
//
// Key exports:
//
//   - [Config] -- master struct with App, Paths, Invoke, Log
//   - [Default] -- returns a Config with default values
//   - [Load], [LoadFile], [LoadFileVariant], and [LoadSelected] -- the
//     entry points
//
// This package depends on no other duoshell packages.
package config
