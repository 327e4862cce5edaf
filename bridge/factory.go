// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"fmt"
	"sort"

	"github.com/bureau-foundation/duoshell/lib/codec"
	"github.com/bureau-foundation/duoshell/lib/validate"
)

// Func is a surface method as seen by renderer code.
type Func func(ctx context.Context, args ...any) (any, error)

// Param declares one positional argument of a method.
type Param struct {
	Name string
	Kind validate.Kind
}

// String declares a string parameter.
func String(name string) Param { return Param{Name: name, Kind: validate.KindString} }

// Number declares a numeric parameter.
func Number(name string) Param { return Param{Name: name, Kind: validate.KindNumber} }

// Array declares an array parameter.
func Array(name string) Param { return Param{Name: name, Kind: validate.KindArray} }

// MethodDefinition declares one method of a module.
type MethodDefinition struct {
	// Channel is the host operation the method forwards to. Ignored
	// when Implementation is set.
	Channel string

	// Params, when non-nil, fixes the method's arity and argument
	// kinds; calls that do not match fail before transmission. Nil
	// leaves arguments unchecked.
	Params []Param

	// Options overrides the adapter defaults for this method. Nil uses
	// the defaults.
	Options *Overrides

	// Implementation replaces the generated forwarder, for methods that
	// need to shape their arguments themselves. It is used unchanged.
	Implementation Func

	// decode converts the encoded result. Set by Define; nil decodes
	// into a generic value.
	decode func(codec.RawMessage) (any, error)
}

// Define declares a method whose result decodes into R and whose
// arguments must match params exactly. With no params the method takes
// no arguments.
func Define[R any](channel string, params ...Param) MethodDefinition {
	if params == nil {
		params = []Param{}
	}
	return MethodDefinition{
		Channel: channel,
		Params:  params,
		decode: func(data codec.RawMessage) (any, error) {
			var result R
			if len(data) == 0 {
				return result, nil
			}
			if err := codec.Unmarshal(data, &result); err != nil {
				return nil, fmt.Errorf("decoding result as %T: %w", result, err)
			}
			return result, nil
		},
	}
}

// WithOptions returns a copy of d with per-method option overrides.
func (d MethodDefinition) WithOptions(overrides *Overrides) MethodDefinition {
	d.Options = overrides
	return d
}

// Factory builds methods and modules that forward to one Adapter.
type Factory struct {
	adapter *Adapter
}

// NewFactory returns a Factory forwarding through adapter.
func NewFactory(adapter *Adapter) *Factory {
	return &Factory{adapter: adapter}
}

// CreateMethod builds the callable for definition. A definition with an
// Implementation returns it unchanged. Otherwise the channel is
// validated here, at definition time, and the returned Func checks its
// arguments against Params before forwarding them to the adapter.
func (f *Factory) CreateMethod(definition MethodDefinition) (Func, error) {
	if definition.Implementation != nil {
		return definition.Implementation, nil
	}

	channel, err := validate.Channel(definition.Channel)
	if err != nil {
		return nil, err
	}
	for index, param := range definition.Params {
		if _, err := validate.ParseKind(string(param.Kind)); err != nil {
			return nil, fmt.Errorf("method on %s: parameter %d: %w", channel, index, err)
		}
	}

	params := definition.Params
	overrides := definition.Options
	decode := definition.decode
	if decode == nil {
		decode = decodeAny
	}

	return func(ctx context.Context, args ...any) (any, error) {
		if err := checkArguments(params, args); err != nil {
			return nil, err
		}
		data, err := f.adapter.Invoke(ctx, channel, overrides, args...)
		if err != nil {
			return nil, err
		}
		result, err := decode(data)
		if err != nil {
			return nil, &RemoteCallError{Channel: channel, Cause: err}
		}
		return result, nil
	}, nil
}

// CreateModule builds every definition into a Module named name.
// Method names are kept verbatim. Uniqueness of the module name is the
// Registry's concern, not the factory's.
func (f *Factory) CreateModule(name string, definitions map[string]MethodDefinition) (*Module, error) {
	if _, err := validate.Name(name, "module name"); err != nil {
		return nil, err
	}

	methods := make(map[string]Func, len(definitions))
	for methodName, definition := range definitions {
		method, err := f.CreateMethod(definition)
		if err != nil {
			return nil, fmt.Errorf("module %q method %q: %w", name, methodName, err)
		}
		methods[methodName] = method
	}
	return NewModule(name, methods)
}

// checkArguments enforces a declared parameter list. Nil params accept
// any arguments.
func checkArguments(params []Param, args []any) error {
	if params == nil {
		return nil
	}
	if len(args) != len(params) {
		return &validate.InvalidParameterError{
			Param:    "args",
			Expected: fmt.Sprintf("%d argument(s), got %d", len(params), len(args)),
		}
	}
	for index, param := range params {
		name := param.Name
		if name == "" {
			name = fmt.Sprintf("args[%d]", index)
		}
		if err := validate.Check(param.Kind, args[index], name); err != nil {
			return err
		}
	}
	return nil
}

func decodeAny(data codec.RawMessage) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var result any
	if err := codec.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	return result, nil
}

// Module is a named group of methods exposed as one namespace. A
// Module is immutable once constructed.
type Module struct {
	name    string
	methods map[string]Func
}

// NewModule builds a module from already-constructed methods. The map
// is copied.
func NewModule(name string, methods map[string]Func) (*Module, error) {
	if _, err := validate.Name(name, "module name"); err != nil {
		return nil, err
	}

	copied := make(map[string]Func, len(methods))
	for methodName, method := range methods {
		if _, err := validate.Name(methodName, "method name"); err != nil {
			return nil, fmt.Errorf("module %q: %w", name, err)
		}
		if method == nil {
			return nil, fmt.Errorf("module %q: method %q is nil", name, methodName)
		}
		copied[methodName] = method
	}
	return &Module{name: name, methods: copied}, nil
}

// Name returns the module's namespace.
func (m *Module) Name() string { return m.name }

// Method returns the named method.
func (m *Module) Method(name string) (Func, bool) {
	method, ok := m.methods[name]
	return method, ok
}

// MethodNames returns the method names, sorted.
func (m *Module) MethodNames() []string {
	names := make([]string, 0, len(m.methods))
	for name := range m.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// API returns a copy of the module's method map.
func (m *Module) API() map[string]Func {
	api := make(map[string]Func, len(m.methods))
	for name, method := range m.methods {
		api[name] = method
	}
	return api
}
