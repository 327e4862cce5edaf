// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/bureau-foundation/duoshell/lib/clock"
	"github.com/bureau-foundation/duoshell/lib/codec"
	"github.com/bureau-foundation/duoshell/lib/ipc"
	"github.com/bureau-foundation/duoshell/lib/validate"
)

// DefaultBackoffUnit is the linear backoff step: the wait after
// attempt n is n units.
const DefaultBackoffUnit = time.Second

// AdapterConfig configures an Adapter. Every field is optional.
type AdapterConfig struct {
	// Defaults are the options used when a call passes no overrides.
	// The zero value means DefaultOptions().
	Defaults Options

	// BackoffUnit is the linear backoff step. Zero means
	// DefaultBackoffUnit.
	BackoffUnit time.Duration

	// Clock drives attempt timeouts and backoff waits. Nil means
	// clock.Real().
	Clock clock.Clock

	// Logger receives per-attempt debug lines and final failures. Nil
	// means slog.Default().
	Logger *slog.Logger

	// TracerProvider and MeterProvider default to the otel globals.
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider

	// NewRequestID generates the correlation ID shared by all attempts
	// of one invocation. Nil means a random UUID.
	NewRequestID func() string
}

// Adapter performs remote calls over a Transport.
type Adapter struct {
	transport    Transport
	defaults     Options
	backoffUnit  time.Duration
	clock        clock.Clock
	logger       *slog.Logger
	tracer       trace.Tracer
	instruments  *instruments
	newRequestID func() string
}

// NewAdapter returns an Adapter sending calls through transport.
func NewAdapter(transport Transport, config AdapterConfig) (*Adapter, error) {
	if transport == nil {
		return nil, errors.New("bridge: NewAdapter requires a transport")
	}

	defaults := config.Defaults
	if defaults == (Options{}) {
		defaults = DefaultOptions()
	}
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("bridge: invalid default options: %w", err)
	}

	adapter := &Adapter{
		transport:    transport,
		defaults:     defaults,
		backoffUnit:  config.BackoffUnit,
		clock:        config.Clock,
		logger:       config.Logger,
		newRequestID: config.NewRequestID,
	}
	if adapter.backoffUnit <= 0 {
		adapter.backoffUnit = DefaultBackoffUnit
	}
	if adapter.clock == nil {
		adapter.clock = clock.Real()
	}
	if adapter.logger == nil {
		adapter.logger = slog.Default()
	}
	if adapter.newRequestID == nil {
		adapter.newRequestID = uuid.NewString
	}

	tracerProvider := config.TracerProvider
	if tracerProvider == nil {
		tracerProvider = otel.GetTracerProvider()
	}
	adapter.tracer = tracerProvider.Tracer(instrumentationName)

	meterProvider := config.MeterProvider
	if meterProvider == nil {
		meterProvider = otel.GetMeterProvider()
	}
	instruments, err := newInstruments(meterProvider.Meter(instrumentationName))
	if err != nil {
		return nil, fmt.Errorf("bridge: creating metric instruments: %w", err)
	}
	adapter.instruments = instruments

	return adapter, nil
}

// Defaults returns the adapter's default options.
func (a *Adapter) Defaults() Options { return a.defaults }

// errAttemptTimedOut is the cancellation cause installed by the
// per-attempt timer.
var errAttemptTimedOut = errors.New("attempt timed out")

// Invoke calls channel with args and returns the handler's encoded
// result (nil when the handler returned nothing).
//
// The channel, the effective options, and the encodability of every
// argument are checked first; a violation returns
// *validate.InvalidParameterError without contacting the host. After
// dispatch, failures are *RemoteCallError or *TimeoutError. With retry
// enabled, up to RetryCount+1 attempts are made, waiting BackoffUnit*n
// after the n-th failed attempt; the last attempt's error is returned.
// Cancelling ctx aborts an in-flight attempt or backoff wait.
func (a *Adapter) Invoke(ctx context.Context, channel string, overrides *Overrides, args ...any) (codec.RawMessage, error) {
	if _, err := validate.Channel(channel); err != nil {
		return nil, err
	}
	options := overrides.Apply(a.defaults)
	if err := options.Validate(); err != nil {
		return nil, err
	}
	encodedArgs, failedIndex, err := codec.MarshalEach(args)
	if err != nil {
		return nil, &validate.InvalidParameterError{
			Param:    fmt.Sprintf("args[%d]", failedIndex),
			Expected: "a CBOR-encodable value",
		}
	}

	requestID := a.newRequestID()
	logger := a.logger.With("channel", channel, "request_id", requestID)
	started := a.clock.Now()

	ctx, span := a.startSpan(ctx, channel, requestID, options)
	defer span.End()

	totalAttempts := options.Attempts()
	var lastErr error
	attemptsMade := 0
	for attempt := 1; attempt <= totalAttempts; attempt++ {
		attemptsMade = attempt
		a.instruments.recordAttempt(ctx, channel)

		data, err := a.attempt(ctx, &ipc.Request{
			Channel:   channel,
			RequestID: requestID,
			Attempt:   attempt,
			Args:      encodedArgs,
		}, options.Timeout)
		if err == nil {
			a.finish(ctx, span, channel, attemptsMade, started, nil)
			return data, nil
		}

		lastErr = err
		logger.Debug("attempt failed",
			"attempt", attempt,
			"of", totalAttempts,
			"error", err,
		)
		span.AddEvent("attempt failed", attemptEventOptions(attempt, err))

		if ctx.Err() != nil || attempt == totalAttempts {
			break
		}
		if err := a.backoff(ctx, attempt); err != nil {
			lastErr = &RemoteCallError{
				Channel: channel,
				Cause:   fmt.Errorf("retry abandoned after attempt %d (last error: %v): %w", attempt, lastErr, err),
			}
			break
		}
	}

	if lastErr == nil {
		lastErr = &RemoteCallError{
			Channel: channel,
			Cause:   fmt.Errorf("failed after %d retries", options.RetryCount),
		}
	}

	logger.Warn("remote call failed",
		"attempts", attemptsMade,
		"error", lastErr,
	)
	a.finish(ctx, span, channel, attemptsMade, started, lastErr)
	return nil, lastErr
}

// attempt performs one round trip, racing the transport against the
// attempt timeout and the caller's context.
func (a *Adapter) attempt(ctx context.Context, request *ipc.Request, timeout time.Duration) (codec.RawMessage, error) {
	attemptCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	timer := a.clock.AfterFunc(timeout, func() { cancel(errAttemptTimedOut) })
	defer timer.Stop()

	type outcome struct {
		data codec.RawMessage
		err  error
	}
	// Buffered so an abandoned transport goroutine can always finish.
	done := make(chan outcome, 1)
	go func() {
		data, err := a.transport.Invoke(attemptCtx, request)
		done <- outcome{data: data, err: err}
	}()

	select {
	case result := <-done:
		if result.err == nil {
			return result.data, nil
		}
		if attemptCtx.Err() == nil {
			return nil, &RemoteCallError{Channel: request.Channel, Cause: result.err}
		}
	case <-attemptCtx.Done():
	}

	cause := context.Cause(attemptCtx)
	if errors.Is(cause, errAttemptTimedOut) {
		return nil, &TimeoutError{Channel: request.Channel, Timeout: timeout}
	}
	return nil, &RemoteCallError{Channel: request.Channel, Cause: cause}
}

// backoff waits BackoffUnit*completedAttempt, or until ctx is done.
func (a *Adapter) backoff(ctx context.Context, completedAttempt int) error {
	delay := a.backoffUnit * time.Duration(completedAttempt)
	elapsed := make(chan struct{})
	timer := a.clock.AfterFunc(delay, func() { close(elapsed) })

	select {
	case <-elapsed:
		return nil
	case <-ctx.Done():
		timer.Stop()
		return context.Cause(ctx)
	}
}

// InvokeAs calls channel through adapter and decodes the result into R.
// A call whose handler returned nothing yields the zero R.
func InvokeAs[R any](ctx context.Context, adapter *Adapter, channel string, overrides *Overrides, args ...any) (R, error) {
	var result R
	data, err := adapter.Invoke(ctx, channel, overrides, args...)
	if err != nil {
		return result, err
	}
	if len(data) == 0 {
		return result, nil
	}
	if err := codec.Unmarshal(data, &result); err != nil {
		return result, &RemoteCallError{
			Channel: channel,
			Cause:   fmt.Errorf("decoding result as %T: %w", result, err),
		}
	}
	return result, nil
}
