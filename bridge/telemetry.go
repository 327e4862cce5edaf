// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName scopes the adapter's tracer and meter.
const instrumentationName = "github.com/bureau-foundation/duoshell/bridge"

// Metric names.
const (
	metricAttempts = "duoshell.bridge.attempts"
	metricFailures = "duoshell.bridge.failures"
	metricDuration = "duoshell.bridge.invoke.duration"
)

// instruments holds the adapter's metric instruments.
type instruments struct {
	attempts metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

func newInstruments(meter metric.Meter) (*instruments, error) {
	attempts, err := meter.Int64Counter(metricAttempts,
		metric.WithDescription("Remote call attempts, including retries"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(metricFailures,
		metric.WithDescription("Invocations that failed after their final attempt"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(metricDuration,
		metric.WithDescription("Invocation duration including retries and backoff"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &instruments{
		attempts: attempts,
		failures: failures,
		duration: duration,
	}, nil
}

func (i *instruments) recordAttempt(ctx context.Context, channel string) {
	i.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("channel", channel)))
}

// errorKind classifies a final invocation error for metric attributes.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "remote"
	}
}

func (a *Adapter) startSpan(ctx context.Context, channel, requestID string, options Options) (context.Context, trace.Span) {
	return a.tracer.Start(ctx, "bridge.invoke "+channel,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("bridge.channel", channel),
			attribute.String("bridge.request_id", requestID),
			attribute.Bool("bridge.retry", options.Retry),
			attribute.Int("bridge.max_attempts", options.Attempts()),
			attribute.Int64("bridge.timeout_ms", options.Timeout.Milliseconds()),
		),
	)
}

// finish records the outcome of an invocation on its span and metrics.
func (a *Adapter) finish(ctx context.Context, span trace.Span, channel string, attempts int, started time.Time, err error) {
	span.SetAttributes(attribute.Int("bridge.attempts", attempts))

	channelAttribute := attribute.String("channel", channel)
	outcome := "ok"
	if err != nil {
		outcome = errorKind(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.instruments.failures.Add(ctx, 1, metric.WithAttributes(
			channelAttribute,
			attribute.String("kind", outcome),
		))
	}

	elapsed := a.clock.Now().Sub(started).Seconds()
	a.instruments.duration.Record(ctx, elapsed, metric.WithAttributes(
		channelAttribute,
		attribute.String("outcome", outcome),
	))
}

func attemptEventOptions(attempt int, err error) trace.EventOption {
	return trace.WithAttributes(
		attribute.Int("bridge.attempt", attempt),
		attribute.String("error", err.Error()),
	)
}
