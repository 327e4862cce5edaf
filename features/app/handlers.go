// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/bureau-foundation/duoshell/lib/handler"
)

// Info is what the privileged side reports about the running
// application.
type Info struct {
	// Name is the product name of the variant, e.g. "Duoshell Admin".
	Name string

	// Version is the application version string.
	Version string

	// Platform is the host OS identifier. Empty means runtime.GOOS.
	Platform string
}

// RegisterHandlers binds the app channels on host.
func RegisterHandlers(host *handler.Host, info Info, logger *slog.Logger) {
	if info.Platform == "" {
		info.Platform = runtime.GOOS
	}

	host.Handle(ChannelGetVersion, constant(logger, ChannelGetVersion, info.Version))
	host.Handle(ChannelGetPlatform, constant(logger, ChannelGetPlatform, info.Platform))
	host.Handle(ChannelGetName, constant(logger, ChannelGetName, info.Name))
}

// constant returns a handler that answers with value and logs it.
func constant(logger *slog.Logger, channel, value string) handler.Func {
	return func(ctx context.Context, call *handler.Call) (any, error) {
		logger.Debug("answering app query",
			"channel", channel,
			"value", value,
			"request_id", call.RequestID,
		)
		return value, nil
	}
}
