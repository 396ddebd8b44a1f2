// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package entity

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Ref is a related entity embedded in a record, e.g. the Project of a
// user story.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// String returns the name, or "#<id>" for an unnamed reference.
func (r *Ref) String() string {
	if r == nil {
		return ""
	}
	if r.Name != "" {
		return r.Name
	}
	return "#" + strconv.FormatInt(r.ID, 10)
}

func requireID(record map[string]any) (int64, error) {
	raw, ok := record["Id"]
	if !ok || raw == nil {
		return 0, fmt.Errorf("entity: record has no Id")
	}
	id, ok := toInt(raw)
	if !ok {
		return 0, fmt.Errorf("entity: Id %v is not an integer", raw)
	}
	return id, nil
}

func toInt(raw any) (int64, bool) {
	switch typed := raw.(type) {
	case json.Number:
		value, err := typed.Int64()
		return value, err == nil
	case float64:
		if typed != math.Trunc(typed) {
			return 0, false
		}
		return int64(typed), true
	case int:
		return int64(typed), true
	case int64:
		return typed, true
	}
	return 0, false
}

func toFloat(raw any) (float64, bool) {
	switch typed := raw.(type) {
	case json.Number:
		value, err := typed.Float64()
		return value, err == nil
	case float64:
		return typed, true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	}
	return 0, false
}

func stringField(record map[string]any, key string) string {
	value, _ := record[key].(string)
	return value
}

func boolField(record map[string]any, key string, fallback bool) bool {
	value, ok := record[key].(bool)
	if !ok {
		return fallback
	}
	return value
}

func floatField(record map[string]any, key string) *float64 {
	value, ok := toFloat(record[key])
	if !ok {
		return nil
	}
	return &value
}

// refField reads a nested entity. Users carry no Name, so their
// display name is built from FirstName/LastName or Login.
func refField(record map[string]any, key string) *Ref {
	nested, ok := record[key].(map[string]any)
	if !ok {
		return nil
	}
	ref := &Ref{Name: stringField(nested, "Name")}
	if id, ok := toInt(nested["Id"]); ok {
		ref.ID = id
	}
	if ref.Name == "" {
		ref.Name = displayName(stringField(nested, "FirstName"), stringField(nested, "LastName"), stringField(nested, "Login"))
	}
	return ref
}

func displayName(first, last, login string) string {
	if name := strings.TrimSpace(first + " " + last); name != "" {
		return name
	}
	return login
}
