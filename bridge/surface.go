// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/duoshell/lib/codec"
)

// surfaceDomainKey separates surface digests from any other BLAKE3
// use. ASCII "duoshell.bridge.surface", zero-padded to 32 bytes.
var surfaceDomainKey = [32]byte{
	'd', 'u', 'o', 's', 'h', 'e', 'l', 'l', '.', 'b', 'r', 'i', 'd', 'g', 'e', '.',
	's', 'u', 'r', 'f', 'a', 'c', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Surface is the frozen, namespaced set of methods exposed to renderer
// code. It holds callables only.
type Surface struct {
	api        API
	namespaces []string
	digest     string
}

// newSurface takes ownership of api.
func newSurface(api API, order []string) *Surface {
	surface := &Surface{
		api:        api,
		namespaces: append([]string(nil), order...),
	}
	surface.digest = surface.computeDigest()
	return surface
}

// Call invokes namespace.method with args.
func (s *Surface) Call(ctx context.Context, namespace, method string, args ...any) (any, error) {
	methods, ok := s.api[namespace]
	if !ok {
		return nil, &UnknownMethodError{Namespace: namespace, Method: method}
	}
	function, ok := methods[method]
	if !ok {
		return nil, &UnknownMethodError{Namespace: namespace, Method: method}
	}
	return function(ctx, args...)
}

// Namespaces returns the exposed namespaces in registration order.
func (s *Surface) Namespaces() []string {
	return append([]string(nil), s.namespaces...)
}

// Methods returns the sorted method names of namespace, or nil if the
// namespace does not exist.
func (s *Surface) Methods(namespace string) []string {
	methods, ok := s.api[namespace]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether namespace.method exists.
func (s *Surface) Has(namespace, method string) bool {
	_, ok := s.api[namespace][method]
	return ok
}

// Digest returns a hex BLAKE3 digest of the surface's shape (sorted
// namespace and method names). Two renderers exposing the same set of
// methods report the same digest.
func (s *Surface) Digest() string { return s.digest }

func (s *Surface) computeDigest() string {
	hasher, err := blake3.NewKeyed(surfaceDomainKey[:])
	if err != nil {
		panic("bridge: BLAKE3 keyed hash initialization failed: " + err.Error())
	}

	namespaces := append([]string(nil), s.namespaces...)
	sort.Strings(namespaces)
	for _, namespace := range namespaces {
		for _, method := range s.Methods(namespace) {
			hasher.Write([]byte(namespace))
			hasher.Write([]byte{'.'})
			hasher.Write([]byte(method))
			hasher.Write([]byte{'\n'})
		}
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

// Bind returns a typed callable for namespace.method. Results that are
// not already an R (methods built without Define, or custom
// implementations) are converted through a CBOR round trip. A missing
// method is reported when the callable is invoked.
func Bind[R any](surface *Surface, namespace, method string) func(ctx context.Context, args ...any) (R, error) {
	return func(ctx context.Context, args ...any) (R, error) {
		var zero R
		result, err := surface.Call(ctx, namespace, method, args...)
		if err != nil {
			return zero, err
		}
		if result == nil {
			return zero, nil
		}
		if typed, ok := result.(R); ok {
			return typed, nil
		}

		data, err := codec.Marshal(result)
		if err != nil {
			return zero, fmt.Errorf("%s.%s: converting %T to %T: %w", namespace, method, result, zero, err)
		}
		var converted R
		if err := codec.Unmarshal(data, &converted); err != nil {
			return zero, fmt.Errorf("%s.%s: converting %T to %T: %w", namespace, method, result, zero, err)
		}
		return converted, nil
	}
}
