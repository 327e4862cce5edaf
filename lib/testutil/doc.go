// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for duoshell packages.
//
// [SocketDir] creates a short temporary directory for Unix sockets;
// t.TempDir() paths can exceed the 108-byte sun_path limit.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so individual tests never call time.After directly. They are
// the only place in the test suite that uses real wall-clock timeouts;
// everything else runs on lib/clock.Fake.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation.
//
// All helpers call t.Fatalf on failure.
package testutil
