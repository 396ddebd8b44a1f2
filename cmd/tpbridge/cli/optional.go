// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/tpbridge/lib/tpquery"
)

// optionalValue adapts a [tpquery.Optional] field to [pflag.Value]. The
// field becomes present only when Set is called.
type optionalValue[T any] struct {
	target   *tpquery.Optional[T]
	typeName string
	parse    func(string) (T, error)
}

func (v *optionalValue[T]) String() string {
	value, ok := v.target.Get()
	if !ok {
		return ""
	}
	return fmt.Sprint(value)
}

func (v *optionalValue[T]) Set(text string) error {
	value, err := v.parse(text)
	if err != nil {
		return err
	}
	*v.target = tpquery.Some(value)
	return nil
}

func (v *optionalValue[T]) Type() string {
	return v.typeName
}

// bindOptional registers an Optional field. Registration resets the
// field to absent, or to the parsed default tag when one is given.
func bindOptional[T any](flagSet *pflag.FlagSet, target *tpquery.Optional[T], name, shorthand, description, defaultString, typeName string, parse func(string) (T, error)) error {
	*target = tpquery.None[T]()
	value := &optionalValue[T]{target: target, typeName: typeName, parse: parse}
	if defaultString != "" {
		if err := value.Set(defaultString); err != nil {
			return fmt.Errorf("default for --%s: %w", name, err)
		}
	}
	flagSet.VarP(value, name, shorthand, description)
	return nil
}
