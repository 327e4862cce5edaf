// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/bureau-foundation/duoshell/lib/codec"
	"github.com/bureau-foundation/duoshell/lib/ipc"
)

// Transport performs one round trip to the privileged host. It must
// return when ctx is done; the Adapter enforces timeouts by cancelling
// ctx and does not wait for a transport that ignores it.
//
// A nil result with a nil error means the handler returned no value.
type Transport interface {
	Invoke(ctx context.Context, request *ipc.Request) (codec.RawMessage, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, request *ipc.Request) (codec.RawMessage, error)

// Invoke calls f.
func (f TransportFunc) Invoke(ctx context.Context, request *ipc.Request) (codec.RawMessage, error) {
	return f(ctx, request)
}

// dialTimeout caps the connect phase independently of the attempt
// timeout; a host that is not listening should fail fast.
const dialTimeout = 5 * time.Second

// SocketTransport sends each request on a fresh connection to the
// host's Unix socket, matching the host's one-request-per-connection
// model.
type SocketTransport struct {
	socketPath string
}

// NewSocketTransport returns a transport for the host listening on
// socketPath.
func NewSocketTransport(socketPath string) *SocketTransport {
	return &SocketTransport{socketPath: socketPath}
}

// Invoke sends request and returns the handler's encoded result. A
// response with ok=false is returned as *ipc.HandlerError; connection
// and encoding failures are returned as plain errors.
func (t *SocketTransport) Invoke(ctx context.Context, request *ipc.Request) (codec.RawMessage, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", t.socketPath)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", t.socketPath, err)
	}
	defer conn.Close()

	// Unblock reads and writes as soon as the attempt is abandoned.
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if err := codec.NewEncoder(conn).Encode(request); err != nil {
		return nil, t.contextError(ctx, fmt.Errorf("writing request: %w", err))
	}

	// CBOR is self-delimiting; the half-close only lets the host see a
	// clean EOF.
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	var response ipc.Response
	if err := codec.NewDecoder(io.LimitReader(conn, ipc.MaxMessageSize)).Decode(&response); err != nil {
		return nil, t.contextError(ctx, fmt.Errorf("reading response: %w", err))
	}

	if !response.OK {
		return nil, &ipc.HandlerError{Channel: request.Channel, Message: response.Error}
	}
	return response.Data, nil
}

// contextError prefers the context's cause over the deadline error the
// forced connection deadline produces.
func (t *SocketTransport) contextError(ctx context.Context, err error) error {
	if cause := context.Cause(ctx); cause != nil {
		return cause
	}
	return err
}
