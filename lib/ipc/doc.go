// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ipc defines the CBOR-encoded message types for the
// renderer↔host Unix socket protocol. Both the privileged handler host
// (lib/handler) and the renderer-side transport (bridge) import this
// package so the wire types are defined once rather than mirrored.
//
// Each connection carries exactly one [Request] followed by one
// [Response]. Arguments and results travel as pre-encoded CBOR values
// so that neither side needs to know the other's Go types.
package ipc
