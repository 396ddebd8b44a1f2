// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tpquery

import (
	"encoding/json"
	"fmt"
)

// Optional holds a value that may be absent. The zero Optional is
// absent. Unlike a zero value check, an Optional distinguishes "not
// supplied" from "supplied as 0".
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a present Optional holding value.
func Some[T any](value T) Optional[T] {
	return Optional[T]{value: value, set: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// FromPointer returns Some(*pointer), or None for a nil pointer.
func FromPointer[T any](pointer *T) Optional[T] {
	if pointer == nil {
		return None[T]()
	}
	return Some(*pointer)
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether the value is present.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// OrElse returns the value if present and fallback otherwise.
func (o Optional[T]) OrElse(fallback T) T {
	if o.set {
		return o.value
	}
	return fallback
}

// Value returns the value as an any, for use by Params and ConditionsFor.
func (o Optional[T]) Value() (any, bool) {
	return o.value, o.set
}

// String formats the value, or "<unset>".
func (o Optional[T]) String() string {
	if !o.set {
		return "<unset>"
	}
	return fmt.Sprint(o.value)
}

// MarshalJSON encodes an absent Optional as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null as absent and anything else as present.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = None[T]()
		return nil
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*o = Some(value)
	return nil
}

// valuer is implemented by Optional of any type.
type valuer interface {
	Value() (any, bool)
}
