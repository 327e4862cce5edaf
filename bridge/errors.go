// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRemoteCallFailed matches every error produced by a dispatched
	// call that did not succeed, including timeouts.
	ErrRemoteCallFailed = errors.New("remote call failed")

	// ErrTimeout matches attempts abandoned because no response arrived
	// within the configured timeout.
	ErrTimeout = errors.New("timeout")

	// ErrAlreadyPublished is returned by a second Registry.Publish.
	ErrAlreadyPublished = errors.New("registry already published")
)

// RemoteCallError reports a call that was dispatched but failed: the
// handler raised, the channel was unbound, the transport broke, or the
// caller's context ended.
type RemoteCallError struct {
	Channel string
	Cause   error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("remote call failed: %s - %v", e.Channel, e.Cause)
}

func (e *RemoteCallError) Unwrap() error { return e.Cause }

// Is reports whether target is ErrRemoteCallFailed.
func (e *RemoteCallError) Is(target error) bool {
	return target == ErrRemoteCallFailed
}

// TimeoutError reports an attempt that received no response within
// its timeout. It unwraps to context.DeadlineExceeded.
type TimeoutError struct {
	Channel string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout: %s - no response after %v", e.Channel, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return context.DeadlineExceeded }

// Is reports whether target is ErrTimeout or ErrRemoteCallFailed.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout || target == ErrRemoteCallFailed
}

// DuplicateModuleError reports a registration under a name that is
// already taken.
type DuplicateModuleError struct {
	Name string
}

func (e *DuplicateModuleError) Error() string {
	return fmt.Sprintf("duplicate module: %q is already registered", e.Name)
}

// RegistrationClosedError reports a registration attempted after the
// registry was published.
type RegistrationClosedError struct {
	Name string
}

func (e *RegistrationClosedError) Error() string {
	return fmt.Sprintf("registration closed: module %q arrived after the surface was published", e.Name)
}

// UnknownMethodError reports a surface call to a namespace or method
// that was never registered.
type UnknownMethodError struct {
	Namespace string
	Method    string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("unknown method: %s.%s", e.Namespace, e.Method)
}

// AlreadyExposedError reports a second exposure under the same global
// name.
type AlreadyExposedError struct {
	Key string
}

func (e *AlreadyExposedError) Error() string {
	return fmt.Sprintf("already exposed: %q is fixed for the lifetime of the renderer", e.Key)
}
