// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"fmt"

	"github.com/bureau-foundation/duoshell/lib/codec"
)

// Request is one invocation sent from the renderer to the host.
type Request struct {
	// Channel names the privileged operation, "<domain>:<action>".
	Channel string `cbor:"channel"`

	// RequestID correlates renderer-side and host-side log lines for
	// one attempt. Retries of the same invocation share an ID.
	RequestID string `cbor:"request_id,omitempty"`

	// Attempt is the 1-based attempt number within the invocation.
	Attempt int `cbor:"attempt,omitempty"`

	// Args holds each positional argument, CBOR-encoded independently.
	Args []codec.RawMessage `cbor:"args,omitempty"`
}

// Response is the host's reply to a Request.
type Response struct {
	// OK indicates whether the handler succeeded.
	OK bool `cbor:"ok"`

	// Error contains the handler's error message if OK is false.
	Error string `cbor:"error,omitempty"`

	// Data is the CBOR-encoded handler result. Absent when the handler
	// returned nil.
	Data codec.RawMessage `cbor:"data,omitempty"`
}

// HandlerError is returned by the renderer-side transport when the
// host answered with ok=false: the handler raised, the channel had no
// handler bound, or the request was malformed.
type HandlerError struct {
	Channel string
	Message string
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("host error on %q: %s", e.Channel, e.Message)
}

// UnboundChannelMessage is the error text the host sends for a channel
// with no handler.
func UnboundChannelMessage(channel string) string {
	return fmt.Sprintf("no handler bound for channel %q", channel)
}

// MaxMessageSize bounds a single encoded Request or Response.
const MaxMessageSize = 1024 * 1024
