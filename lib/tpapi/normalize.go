// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is one TargetProcess entity as returned by the API. Fields are
// kept verbatim; numbers decode as json.Number.
type Record map[string]any

// Normalize decodes a response body into a list of records. A JSON
// array is returned as is, an object with an "Items" key yields that
// array, and any other object becomes a one-element list. Anything else
// (null, scalars, non-object elements) is an error.
func Normalize(body []byte) ([]Record, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("decoding response body: %w", err)
	}

	switch typed := value.(type) {
	case []any:
		return toRecords(typed)
	case map[string]any:
		if items, ok := typed["Items"]; ok {
			list, ok := items.([]any)
			if !ok {
				return nil, fmt.Errorf("\"Items\" is %s, want an array", kindOf(items))
			}
			return toRecords(list)
		}
		return []Record{typed}, nil
	default:
		return nil, fmt.Errorf("response body is %s, want an array or object", kindOf(value))
	}
}

func toRecords(list []any) ([]Record, error) {
	records := make([]Record, 0, len(list))
	for i, element := range list {
		object, ok := element.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("element %d is %s, want an object", i, kindOf(element))
		}
		records = append(records, object)
	}
	return records, nil
}

func kindOf(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "a boolean"
	case json.Number:
		return "a number"
	case string:
		return "a string"
	case []any:
		return "an array"
	case map[string]any:
		return "an object"
	default:
		return fmt.Sprintf("%T", value)
	}
}
