// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tpquery

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Condition is one parenthesized predicate, e.g. "(Project.Id eq 5)".
type Condition string

// Eq builds an equality condition against a field path. Numbers are
// rendered bare, strings single-quoted, booleans as true/false.
func Eq(field string, value any) Condition {
	return Condition(fmt.Sprintf("(%s eq %s)", field, Literal(value)))
}

// Contains builds a substring condition on a string field, e.g.
// "(Name.Contains('login'))".
func Contains(field, text string) Condition {
	return Condition(fmt.Sprintf("(%s.Contains(%s))", field, quote(text)))
}

// Literal renders a value as a query dialect literal.
func Literal(value any) string {
	switch typed := value.(type) {
	case string:
		return quote(typed)
	case bool:
		return strconv.FormatBool(typed)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprint(typed)
	}
}

// quote wraps text in single quotes. The text is not escaped.
func quote(text string) string {
	return "'" + text + "'"
}

// Where joins conditions with " and ". An empty list yields an absent
// value, which Params drops.
func Where(conditions ...Condition) Optional[string] {
	if len(conditions) == 0 {
		return None[string]()
	}
	parts := make([]string, len(conditions))
	for i, condition := range conditions {
		parts[i] = string(condition)
	}
	return Some(strings.Join(parts, " and "))
}

// Filter maps a filter name to the remote field path it constrains.
type Filter struct {
	Name  string
	Field string
}

// FilterSet is the ordered list of filters an entity accepts.
type FilterSet []Filter

// Filters are filter values keyed by filter name. A nil value, nil
// pointer or unset Optional means the filter is absent.
type Filters map[string]any

// ConditionsFor returns one equality condition per filter in set that
// has a present value in filters, in the set's order. Names in filters
// that set does not declare are ignored.
func ConditionsFor(set FilterSet, filters Filters) []Condition {
	var conditions []Condition
	for _, filter := range set {
		raw, ok := filters[filter.Name]
		if !ok {
			continue
		}
		value, present := resolve(raw)
		if !present {
			continue
		}
		conditions = append(conditions, Eq(filter.Field, value))
	}
	return conditions
}

// resolve unwraps Optionals and pointers. It reports false for nil, nil
// pointers and unset Optionals.
func resolve(raw any) (any, bool) {
	if raw == nil {
		return nil, false
	}
	if optional, ok := raw.(valuer); ok {
		return optional.Value()
	}
	value := reflect.ValueOf(raw)
	if value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, false
		}
		return value.Elem().Interface(), true
	}
	return raw, true
}
