// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/bureau-foundation/duoshell/lib/codec"
	"github.com/bureau-foundation/duoshell/lib/ipc"
	"github.com/bureau-foundation/duoshell/lib/netutil"
	"github.com/bureau-foundation/duoshell/lib/validate"
)

// Func handles one invocation of a channel. Return a value to send as
// the result (nil sends no data), or an error to fail the call. The
// error text is delivered to the renderer verbatim.
type Func func(ctx context.Context, call *Call) (any, error)

// Call is the decoded request handed to a Func.
type Call struct {
	Channel   string
	RequestID string
	Attempt   int
	Args      []codec.RawMessage
}

// NumArgs returns the number of positional arguments.
func (c *Call) NumArgs() int { return len(c.Args) }

// Arg decodes the positional argument at index into target.
func (c *Call) Arg(index int, target any) error {
	if index < 0 || index >= len(c.Args) {
		return fmt.Errorf("%s: missing argument %d (got %d)", c.Channel, index, len(c.Args))
	}
	if err := codec.Unmarshal(c.Args[index], target); err != nil {
		return fmt.Errorf("%s: decoding argument %d: %w", c.Channel, index, err)
	}
	return nil
}

// Options configures a Host.
type Options struct {
	// AllowedUID restricts callers to one uid. Nil accepts any uid that
	// can open the socket.
	AllowedUID *uint32

	// ReadTimeout bounds how long a connection may take to send its
	// request. Zero means 30 seconds.
	ReadTimeout time.Duration

	// WriteTimeout bounds how long writing the response may take. Zero
	// means 10 seconds.
	WriteTimeout time.Duration
}

const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

// Host serves bound channels on a Unix socket.
type Host struct {
	socketPath string
	options    Options
	logger     *slog.Logger

	mu       sync.RWMutex
	handlers map[string]Func
	serving  bool

	activeConnections sync.WaitGroup
}

// NewHost creates a host that will listen on socketPath. Bind channels
// with Handle before calling Serve.
func NewHost(socketPath string, options Options, logger *slog.Logger) *Host {
	if options.ReadTimeout <= 0 {
		options.ReadTimeout = defaultReadTimeout
	}
	if options.WriteTimeout <= 0 {
		options.WriteTimeout = defaultWriteTimeout
	}
	return &Host{
		socketPath: socketPath,
		options:    options,
		logger:     logger,
		handlers:   make(map[string]Func),
	}
}

// Handle binds handler to channel. Panics if the channel name is
// empty, already bound, or if Serve has started: all three are
// wiring mistakes that must surface at startup.
func (h *Host) Handle(channel string, handler Func) {
	if _, err := validate.Channel(channel); err != nil {
		panic(fmt.Sprintf("handler.Host: %v (got %q)", err, channel))
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.serving {
		panic(fmt.Sprintf("handler.Host: Handle(%q) called after Serve", channel))
	}
	if _, exists := h.handlers[channel]; exists {
		panic(fmt.Sprintf("handler.Host: duplicate handler for channel %q", channel))
	}
	h.handlers[channel] = handler
}

// Channels returns the bound channel names, sorted.
func (h *Host) Channels() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	channels := make([]string, 0, len(h.handlers))
	for channel := range h.handlers {
		channels = append(channels, channel)
	}
	sort.Strings(channels)
	return channels
}

// Serve listens on the socket and dispatches requests until ctx is
// cancelled, then stops accepting and waits for in-flight handlers.
//
// A stale socket file at the configured path is removed first. The
// socket file is removed on return.
func (h *Host) Serve(ctx context.Context) error {
	h.mu.Lock()
	h.serving = true
	h.mu.Unlock()

	if err := os.Remove(h.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale socket %s: %w", h.socketPath, err)
	}

	listener, err := net.Listen("unix", h.socketPath)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", h.socketPath, err)
	}
	defer func() {
		listener.Close()
		os.Remove(h.socketPath)
	}()

	// Restrict the socket to the owner. Sandboxes that need access get
	// it through a bind mount, not through permissive modes.
	if err := os.Chmod(h.socketPath, 0o600); err != nil {
		return fmt.Errorf("restricting socket permissions on %s: %w", h.socketPath, err)
	}

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	h.logger.Info("handler host listening",
		"path", h.socketPath,
		"channels", len(h.Channels()),
	)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			h.logger.Error("accept failed", "error", err)
			continue
		}

		h.activeConnections.Add(1)
		go func() {
			defer h.activeConnections.Done()
			h.handleConnection(ctx, conn)
		}()
	}

	h.activeConnections.Wait()
	return nil
}

// handleConnection processes one request-response cycle.
func (h *Host) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	if h.options.AllowedUID != nil {
		uid, err := peerUID(conn)
		if err != nil {
			h.logger.Warn("rejecting connection: peer credentials unavailable", "error", err)
			return
		}
		if uid != *h.options.AllowedUID {
			h.logger.Warn("rejecting connection from unexpected uid",
				"uid", uid,
				"allowed_uid", *h.options.AllowedUID,
			)
			return
		}
	}

	conn.SetReadDeadline(time.Now().Add(h.options.ReadTimeout))

	var request ipc.Request
	if err := codec.NewDecoder(io.LimitReader(conn, ipc.MaxMessageSize)).Decode(&request); err != nil {
		if errors.Is(err, io.EOF) {
			return
		}
		h.writeResponse(conn, "", ipc.Response{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	logger := h.logger.With(
		"channel", request.Channel,
		"request_id", request.RequestID,
		"attempt", request.Attempt,
	)

	if request.Channel == "" {
		h.writeResponse(conn, request.Channel, ipc.Response{Error: "missing required field: channel"})
		return
	}

	h.mu.RLock()
	handler, exists := h.handlers[request.Channel]
	h.mu.RUnlock()
	if !exists {
		logger.Warn("invocation of unbound channel")
		h.writeResponse(conn, request.Channel, ipc.Response{Error: ipc.UnboundChannelMessage(request.Channel)})
		return
	}

	call := &Call{
		Channel:   request.Channel,
		RequestID: request.RequestID,
		Attempt:   request.Attempt,
		Args:      request.Args,
	}

	result, err := h.invoke(ctx, handler, call)
	if err != nil {
		logger.Debug("handler failed", "error", err)
		h.writeResponse(conn, request.Channel, ipc.Response{Error: err.Error()})
		return
	}

	response := ipc.Response{OK: true}
	if result != nil {
		data, err := codec.Marshal(result)
		if err != nil {
			h.writeResponse(conn, request.Channel, ipc.Response{
				Error: fmt.Sprintf("internal: marshaling result: %v", err),
			})
			return
		}
		response.Data = data
	}
	h.writeResponse(conn, request.Channel, response)
}

// invoke runs handler, converting a panic into an error so one broken
// handler cannot take the host down.
func (h *Host) invoke(ctx context.Context, handler Func, call *Call) (result any, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			h.logger.Error("handler panicked",
				"channel", call.Channel,
				"request_id", call.RequestID,
				"panic", recovered,
			)
			result = nil
			err = fmt.Errorf("internal: handler for %q panicked", call.Channel)
		}
	}()
	return handler(ctx, call)
}

// writeResponse encodes response onto conn. Failures are expected when
// the renderer gave up on the call (timeout) and closed its end, so
// those are logged at debug level only.
func (h *Host) writeResponse(conn net.Conn, channel string, response ipc.Response) {
	conn.SetWriteDeadline(time.Now().Add(h.options.WriteTimeout))
	if err := codec.NewEncoder(conn).Encode(response); err != nil {
		if netutil.IsExpectedCloseError(err) {
			h.logger.Debug("renderer closed connection before response", "channel", channel)
			return
		}
		h.logger.Warn("failed to write response", "channel", channel, "error", err)
	}
}
