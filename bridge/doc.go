// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bridge assembles the only surface through which sandboxed
// renderer code can reach privileged operations.
//
// The pieces, leaf first:
//
//   - [Adapter] performs one named remote call: it validates the
//     channel and arguments, races each attempt against a timeout,
//     retries with linear backoff when asked to, and normalizes every
//     failure into [*RemoteCallError] or [*TimeoutError].
//   - [Factory] turns declarative [MethodDefinition] values into
//     callables and groups them into a named [Module].
//   - [Registry] collects modules under unique names. It has two
//     phases: open for registration, then published. [Registry.Publish]
//     performs the transition and returns the frozen [Surface]; any
//     later Register fails with [*RegistrationClosedError].
//   - [World] is the renderer's global scope. [World.ExposeInMainWorld]
//     publishes a Surface under a well-known key exactly once.
//
// Startup wiring runs once per renderer process. [Preload] performs it
// from a list of [ModuleBuilder] values; spelled out, it is:
//
//	registry := bridge.NewRegistry(logger)
//	registry.Register(appModule)
//	surface, err := registry.Publish()
//	err = world.ExposeInMainWorld(bridge.GlobalName, surface)
//
// Renderer code then calls through the surface and nothing else:
//
//	version, err := bridge.Bind[string](surface, "app", "getVersion")(ctx)
//
// A Surface carries only callables. It has no path back to the
// Registry, the Adapter, or the Transport, so holding one grants
// exactly the operations that were registered before publication.
//
// # Errors
//
// Validation failures are [*validate.InvalidParameterError] and are
// returned before anything is sent. Remote failures are
// [*RemoteCallError] (message "remote call failed: <channel> - <cause>")
// or [*TimeoutError] ("timeout: <channel> - ..."), both matching
// [ErrRemoteCallFailed]. Registration mistakes are
// [*DuplicateModuleError] and [*RegistrationClosedError].
package bridge
