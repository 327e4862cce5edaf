// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package handler is the privileged side of the bridge: it binds
// channel names to Go functions and serves them on a Unix socket that
// only the sandboxed renderer can reach.
//
// A [Host] accepts one CBOR [ipc.Request] per connection, dispatches it
// to the [Func] bound for the request's channel, and writes one
// [ipc.Response]. Channels are bound with [Host.Handle] before Serve
// runs; binding the same channel twice is a wiring error and panics at
// startup. A request for a channel with no binding receives an error
// response (never a crash), which the renderer-side adapter reports as
// a failed remote call.
//
// # Caller identity
//
// When [Options].AllowedUID is set, the host reads the peer
// credentials of each connection (SO_PEERCRED) and closes connections
// from any other uid before reading the request. This is a coarse
// guard for hosts and renderers that share a PID namespace; the primary
// boundary is that the socket path is only bind-mounted into the
// renderer's sandbox.
package handler
