// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction.
//
// The invocation adapter waits on two kinds of timers: the per-attempt
// timeout and the linear backoff between retries. Both go through a
// Clock so tests can drive them deterministically instead of sleeping
// for real seconds.
//
// In production:
//
//	adapter := bridge.NewAdapter(transport, bridge.AdapterConfig{Clock: clock.Real()})
//
// In tests:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	// ... start the invocation in a goroutine ...
//	fake.WaitForDeadline(fake.Now().Add(time.Second)) // backoff registered
//	fake.Advance(time.Second)                         // fire it
//
// WaitForDeadline exists because an in-flight attempt also holds a
// timeout timer: counting pending timers cannot tell the two apart, a
// deadline can.
package clock
