// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package validate

import (
	"errors"
	"math"
	"testing"
)

func TestString(t *testing.T) {
	if got, err := String("app:getVersion", "channel"); err != nil || got != "app:getVersion" {
		t.Fatalf("String(valid) = %q, %v", got, err)
	}

	for _, value := range []any{nil, 42, []string{"a"}, struct{}{}} {
		_, err := String(value, "channel")
		var invalid *InvalidParameterError
		if !errors.As(err, &invalid) {
			t.Fatalf("String(%#v) error = %v, want *InvalidParameterError", value, err)
		}
		if invalid.Param != "channel" || invalid.Expected != "a string" {
			t.Errorf("String(%#v) = %+v", value, invalid)
		}
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  float64
		ok    bool
	}{
		{"int", 3, 3, true},
		{"int64", int64(-7), -7, true},
		{"uint64 from cbor", uint64(42), 42, true},
		{"float32", float32(1.5), 1.5, true},
		{"float64", 2.25, 2.25, true},
		{"infinity", math.Inf(1), math.Inf(1), true},
		{"nan", math.NaN(), 0, false},
		{"string", "3", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Number(test.value, "count")
			if test.ok {
				if err != nil {
					t.Fatalf("Number(%v): %v", test.value, err)
				}
				if got != test.want {
					t.Errorf("Number(%v) = %v, want %v", test.value, got, test.want)
				}
				return
			}
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("Number(%v) error = %v, want ErrInvalidParameter", test.value, err)
			}
			if want := "invalid parameter: count must be a number"; err.Error() != want {
				t.Errorf("error text = %q, want %q", err.Error(), want)
			}
		})
	}
}

func TestArray(t *testing.T) {
	elements, err := Array([]string{"a", "b"}, "paths")
	if err != nil {
		t.Fatalf("Array([]string): %v", err)
	}
	if len(elements) != 2 || elements[0] != "a" || elements[1] != "b" {
		t.Errorf("Array([]string) = %v", elements)
	}

	if elements, err := Array([2]int{1, 2}, "pair"); err != nil || len(elements) != 2 {
		t.Errorf("Array([2]int) = %v, %v", elements, err)
	}

	if elements, err := Array([]any(nil), "empty"); err != nil || len(elements) != 0 {
		t.Errorf("Array(nil slice) = %v, %v", elements, err)
	}

	for _, value := range []any{nil, "abc", []byte("raw"), map[string]any{}} {
		if _, err := Array(value, "paths"); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("Array(%#v) error = %v, want ErrInvalidParameter", value, err)
		}
	}
}

func TestChannel(t *testing.T) {
	valid := []string{"app:getVersion", "file:read", "window:set-title", "ping", "window:title:set", ":x"}
	for _, channel := range valid {
		if _, err := Channel(channel); err != nil {
			t.Errorf("Channel(%q): %v", channel, err)
		}
	}

	invalid := []any{"", 7, nil}
	for _, value := range invalid {
		_, err := Channel(value)
		var parameterErr *InvalidParameterError
		if !errors.As(err, &parameterErr) {
			t.Errorf("Channel(%#v) error = %v, want *InvalidParameterError", value, err)
			continue
		}
		if parameterErr.Param != "channel" {
			t.Errorf("Channel(%#v) Param = %q, want channel", value, parameterErr.Param)
		}
	}
}

func TestName(t *testing.T) {
	if _, err := Name("app", "module name"); err != nil {
		t.Errorf("Name(app): %v", err)
	}
	for _, value := range []any{"", " app", "app\n", 1} {
		if _, err := Name(value, "module name"); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("Name(%#v) error = %v, want ErrInvalidParameter", value, err)
		}
	}
}

func TestCheckDispatchesByKind(t *testing.T) {
	tests := []struct {
		kind  Kind
		value any
		ok    bool
	}{
		{KindString, "x", true},
		{KindString, 1, false},
		{KindNumber, 1, true},
		{KindNumber, math.NaN(), false},
		{KindArray, []int{1}, true},
		{KindArray, "x", false},
		{KindAny, nil, true},
	}
	for _, test := range tests {
		err := Check(test.kind, test.value, "args[0]")
		if test.ok && err != nil {
			t.Errorf("Check(%s, %#v): %v", test.kind, test.value, err)
		}
		if !test.ok && !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("Check(%s, %#v) error = %v, want ErrInvalidParameter", test.kind, test.value, err)
		}
	}

	if err := Check(Kind("object"), 1, "args[0]"); err == nil || errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Check(unknown kind) error = %v, want a configuration error", err)
	}
}

func TestParseKind(t *testing.T) {
	for name, want := range map[string]Kind{"": KindAny, "any": KindAny, "string": KindString, "number": KindNumber, "array": KindArray} {
		got, err := ParseKind(name)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %q, %v; want %q", name, got, err, want)
		}
	}
	if _, err := ParseKind("object"); err == nil {
		t.Error("ParseKind(object) should fail")
	}
}
