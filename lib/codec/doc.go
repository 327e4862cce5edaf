// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides duoshell's standard CBOR encoding configuration.
//
// Everything that crosses the process boundary between the privileged
// host and the sandboxed renderer is CBOR: invocation requests, handler
// responses, and the argument and result values they carry. JSON is
// reserved for human-facing output (the duoshell-call CLI) and for
// module manifests.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. The
// same logical value always produces identical bytes, which keeps
// request logs and test fixtures stable.
//
// For buffer-oriented operations (argument encoding, result decoding):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (the handler socket):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// Decoding into an any-typed target produces map[string]any for CBOR
// maps, never map[any]any, so decoded results can be re-encoded as JSON
// without conversion.
package codec
