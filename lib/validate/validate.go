// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package validate

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
)

// ErrInvalidParameter is matched by every *InvalidParameterError via
// errors.Is.
var ErrInvalidParameter = errors.New("invalid parameter")

// InvalidParameterError reports a value that failed a kind check.
type InvalidParameterError struct {
	// Param is the name the value was passed as ("channel", "args[0]").
	Param string

	// Expected describes the required kind ("a string", "a number").
	Expected string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter: %s must be %s", e.Param, e.Expected)
}

// Is reports whether target is ErrInvalidParameter.
func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}

// Kind names the primitive kinds a parameter can be declared as.
type Kind string

const (
	KindAny    Kind = "any"
	KindString Kind = "string"
	KindNumber Kind = "number"
	KindArray  Kind = "array"
)

// ParseKind converts a manifest kind name into a Kind. The empty
// string is KindAny.
func ParseKind(name string) (Kind, error) {
	switch Kind(name) {
	case "", KindAny:
		return KindAny, nil
	case KindString, KindNumber, KindArray:
		return Kind(name), nil
	}
	return "", fmt.Errorf("unknown parameter kind %q (want string, number, array, or any)", name)
}

// Check validates value against kind. KindAny accepts everything.
func Check(kind Kind, value any, param string) error {
	var err error
	switch kind {
	case KindString:
		_, err = String(value, param)
	case KindNumber:
		_, err = Number(value, param)
	case KindArray:
		_, err = Array(value, param)
	case KindAny, "":
	default:
		return fmt.Errorf("validate: unknown kind %q for %s", kind, param)
	}
	return err
}

// String asserts that value is a string.
func String(value any, param string) (string, error) {
	text, ok := value.(string)
	if !ok {
		return "", &InvalidParameterError{Param: param, Expected: "a string"}
	}
	return text, nil
}

// Number asserts that value is a non-NaN number of any Go numeric kind
// and returns it as float64.
func Number(value any, param string) (float64, error) {
	invalid := &InvalidParameterError{Param: param, Expected: "a number"}
	if value == nil {
		return 0, invalid
	}

	reflected := reflect.ValueOf(value)
	switch reflected.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(reflected.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(reflected.Uint()), nil
	case reflect.Float32, reflect.Float64:
		number := reflected.Float()
		if math.IsNaN(number) {
			return 0, invalid
		}
		return number, nil
	}
	return 0, invalid
}

// Array asserts that value is a slice or array and returns its
// elements. A nil slice of a concrete type is a valid empty array; an
// untyped nil is not.
func Array(value any, param string) ([]any, error) {
	if value == nil {
		return nil, &InvalidParameterError{Param: param, Expected: "an array"}
	}

	reflected := reflect.ValueOf(value)
	switch reflected.Kind() {
	case reflect.Slice, reflect.Array:
		// []byte is a CBOR byte string, not an array.
		if reflected.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		elements := make([]any, reflected.Len())
		for index := range elements {
			elements[index] = reflected.Index(index).Interface()
		}
		return elements, nil
	}
	return nil, &InvalidParameterError{Param: param, Expected: "an array"}
}

// Name asserts that value is a non-empty string without surrounding
// whitespace. Module and method names use this check.
func Name(value any, param string) (string, error) {
	text, err := String(value, param)
	if err != nil {
		return "", err
	}
	if text == "" || strings.TrimSpace(text) != text {
		return "", &InvalidParameterError{Param: param, Expected: "a non-empty name without surrounding whitespace"}
	}
	return text, nil
}

// Channel asserts that value is a non-empty string. "<domain>:<action>"
// is only a naming convention: any other string is sent as is and an
// unbound channel is reported by the host.
func Channel(value any) (string, error) {
	channel, err := String(value, "channel")
	if err != nil {
		return "", err
	}
	if channel == "" {
		return "", &InvalidParameterError{Param: "channel", Expected: "a non-empty string"}
	}
	return channel, nil
}
