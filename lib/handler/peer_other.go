// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package handler

import (
	"errors"
	"net"
)

// peerUID is only implemented on Linux. Hosts configured with an
// AllowedUID on other platforms reject every connection.
func peerUID(net.Conn) (uint32, error) {
	return 0, errors.New("peer credentials are only supported on linux")
}
