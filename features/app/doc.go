// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package app is the application-metadata feature: the renderer-facing
// "app" namespace (getVersion, getPlatform, getName) and the privileged
// handlers that answer it.
//
// Both halves live together so the channel names are declared once.
// [NewModule] builds the bridge side through a [bridge.Factory];
// [RegisterHandlers] binds the host side on a [handler.Host].
package app
