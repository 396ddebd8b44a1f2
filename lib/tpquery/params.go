// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tpquery

import (
	"net/url"
	"sort"
)

// Params builds URL query parameters from named values, dropping only
// absent ones (nil, nil pointers, unset Optionals). Zero values such as
// 0 and false are kept.
func Params(values map[string]any) url.Values {
	params := url.Values{}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, present := resolve(values[key])
		if !present {
			continue
		}
		if text, ok := value.(string); ok {
			params.Set(key, text)
			continue
		}
		params.Set(key, Literal(value))
	}
	return params
}
