// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for duoshell
// binaries. These functions centralize the raw I/O that happens before
// the structured logger exists or after main() has given up:
//
//   - Fatal error reporting to stderr when the logger may not be
//     initialized (pre-logger).
//   - Process exit with a status code that distinguishes usage errors
//     from runtime failures.
package process
