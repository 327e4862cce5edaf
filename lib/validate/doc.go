// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package validate checks the runtime kind of values that cross the
// trust boundary between the sandboxed renderer and the privileged host.
//
// Every check takes the value and the name of the parameter it was
// passed as, returns the value narrowed to its Go type on success, and
// returns an [*InvalidParameterError] naming the parameter and the
// expected kind on failure. Checks have no side effects.
//
// Numbers accept every Go integer and floating-point kind (decoded CBOR
// produces uint64, int64, and float64 depending on the wire encoding);
// NaN is rejected. Arrays accept any slice or array kind.
//
// This package depends on no other duoshell packages.
package validate
