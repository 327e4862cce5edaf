// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"time"

	"github.com/bureau-foundation/duoshell/lib/validate"
)

// Options controls one invocation. Options is a value type: every call
// works on its own copy.
type Options struct {
	// Timeout bounds each attempt. Must be positive.
	Timeout time.Duration

	// Retry enables retrying failed attempts.
	Retry bool

	// RetryCount is the number of retries after the first attempt when
	// Retry is set. Must not be negative.
	RetryCount int
}

// DefaultOptions returns the invocation defaults: 30 second timeout,
// no retry, 3 retries when retry is enabled.
func DefaultOptions() Options {
	return Options{
		Timeout:    30 * time.Second,
		Retry:      false,
		RetryCount: 3,
	}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if o.Timeout <= 0 {
		return &validate.InvalidParameterError{Param: "options.timeout", Expected: "a positive duration"}
	}
	if o.RetryCount < 0 {
		return &validate.InvalidParameterError{Param: "options.retryCount", Expected: "a non-negative integer"}
	}
	return nil
}

// Attempts returns the total number of attempts these options allow.
func (o Options) Attempts() int {
	if !o.Retry {
		return 1
	}
	return o.RetryCount + 1
}

// Overrides is a partial Options: nil fields keep the adapter's
// defaults. A nil *Overrides keeps every default.
type Overrides struct {
	Timeout    *time.Duration
	Retry      *bool
	RetryCount *int
}

// Apply returns base with every non-nil override substituted.
func (o *Overrides) Apply(base Options) Options {
	if o == nil {
		return base
	}
	if o.Timeout != nil {
		base.Timeout = *o.Timeout
	}
	if o.Retry != nil {
		base.Retry = *o.Retry
	}
	if o.RetryCount != nil {
		base.RetryCount = *o.RetryCount
	}
	return base
}

// WithRetry returns overrides that enable retry with count retries.
func WithRetry(count int) *Overrides {
	retry := true
	return &Overrides{Retry: &retry, RetryCount: &count}
}

// WithTimeout returns overrides that set only the per-attempt timeout.
func WithTimeout(timeout time.Duration) *Overrides {
	return &Overrides{Timeout: &timeout}
}

// AndTimeout returns a copy of o with the timeout set.
func (o *Overrides) AndTimeout(timeout time.Duration) *Overrides {
	var merged Overrides
	if o != nil {
		merged = *o
	}
	merged.Timeout = &timeout
	return &merged
}
