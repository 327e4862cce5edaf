// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"github.com/bureau-foundation/duoshell/bridge"
)

// Namespace is the module name renderer code sees.
const Namespace = "app"

// Channels served by the privileged host.
const (
	ChannelGetVersion  = "app:getVersion"
	ChannelGetPlatform = "app:getPlatform"
	ChannelGetName     = "app:getName"
)

// Definitions returns the method definitions of the app namespace.
func Definitions() map[string]bridge.MethodDefinition {
	return map[string]bridge.MethodDefinition{
		"getVersion":  bridge.Define[string](ChannelGetVersion),
		"getPlatform": bridge.Define[string](ChannelGetPlatform),
		"getName":     bridge.Define[string](ChannelGetName),
	}
}

// NewModule builds the app module forwarding through factory.
func NewModule(factory *bridge.Factory) (*bridge.Module, error) {
	return factory.CreateModule(Namespace, Definitions())
}
