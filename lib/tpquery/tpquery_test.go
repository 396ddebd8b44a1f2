// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tpquery

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestConditionsForEmpty(t *testing.T) {
	conditions := ConditionsFor(UserStoryFilters, Filters{})
	if len(conditions) != 0 {
		t.Fatalf("conditions = %v, want none", conditions)
	}
	if where := Where(conditions...); where.IsSet() {
		t.Errorf("Where() = %v, want unset", where)
	}
}

func TestConditionsForOrderAndRendering(t *testing.T) {
	conditions := ConditionsFor(BugFilters, Filters{
		"severity":   "Critical",
		"state":      "Open",
		"project_id": 5,
	})
	want := []Condition{
		"(Project.Id eq 5)",
		"(EntityState.Name eq 'Open')",
		"(Severity.Name eq 'Critical')",
	}
	if !reflect.DeepEqual(conditions, want) {
		t.Errorf("conditions = %v, want %v", conditions, want)
	}

	where, ok := Where(conditions...).Get()
	if !ok {
		t.Fatal("Where() unset")
	}
	wantWhere := "(Project.Id eq 5) and (EntityState.Name eq 'Open') and (Severity.Name eq 'Critical')"
	if where != wantWhere {
		t.Errorf("Where() = %q, want %q", where, wantWhere)
	}
}

func TestConditionsForZeroValues(t *testing.T) {
	zero := 0
	conditions := ConditionsFor(UserStoryFilters, Filters{
		"project_id":  Some(0),
		"assignee_id": &zero,
		"state":       "",
	})
	want := []Condition{
		"(Project.Id eq 0)",
		"(Assignable.Assignee.Id eq 0)",
		"(EntityState.Name eq '')",
	}
	if !reflect.DeepEqual(conditions, want) {
		t.Errorf("conditions = %v, want %v", conditions, want)
	}
}

func TestConditionsForAbsentValues(t *testing.T) {
	var missing *int
	conditions := ConditionsFor(UserStoryFilters, Filters{
		"project_id":  None[int](),
		"feature_id":  missing,
		"assignee_id": nil,
	})
	if len(conditions) != 0 {
		t.Errorf("conditions = %v, want none", conditions)
	}
}

func TestConditionsForIgnoresUnknownFilters(t *testing.T) {
	conditions := ConditionsFor(FeatureFilters, Filters{
		"project_id": 7,
		"severity":   "High",
		"nonsense":   true,
	})
	want := []Condition{"(Project.Id eq 7)"}
	if !reflect.DeepEqual(conditions, want) {
		t.Errorf("conditions = %v, want %v", conditions, want)
	}
}

func TestAssigneePathDiffersByEntity(t *testing.T) {
	filters := Filters{"assignee_id": 42}
	tests := []struct {
		name string
		set  FilterSet
		want Condition
	}{
		{"stories", UserStoryFilters, "(Assignable.Assignee.Id eq 42)"},
		{"tasks", TaskFilters, "(Assignable.Assignee.Id eq 42)"},
		{"bugs", BugFilters, "(Assignee.Id eq 42)"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			conditions := ConditionsFor(test.set, filters)
			if len(conditions) != 1 || conditions[0] != test.want {
				t.Errorf("conditions = %v, want [%s]", conditions, test.want)
			}
		})
	}
}

func TestLiteral(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{5, "5"},
		{int64(-12), "-12"},
		{1.5, "1.5"},
		{true, "true"},
		{false, "false"},
		{"Open", "'Open'"},
		{"it's", "'it's'"},
	}
	for _, test := range tests {
		if got := Literal(test.value); got != test.want {
			t.Errorf("Literal(%#v) = %q, want %q", test.value, got, test.want)
		}
	}
}

func TestContains(t *testing.T) {
	if got := Contains("Name", "login"); got != "(Name.Contains('login'))" {
		t.Errorf("Contains() = %q", got)
	}
}

func TestParamsKeepsZeroValues(t *testing.T) {
	params := Params(map[string]any{
		"take":    Some(0),
		"skip":    0,
		"where":   None[string](),
		"include": "Name",
		"orderby": nil,
		"flag":    false,
		"empty":   "",
	})

	want := map[string]string{
		"take":    "0",
		"skip":    "0",
		"include": "Name",
		"flag":    "false",
		"empty":   "",
	}
	if len(params) != len(want) {
		t.Fatalf("params = %v, want keys %v", params, want)
	}
	for key, value := range want {
		if !params.Has(key) {
			t.Errorf("params missing %q", key)
			continue
		}
		if got := params.Get(key); got != value {
			t.Errorf("params[%q] = %q, want %q", key, got, value)
		}
	}
}

func TestParamsStringsAreNotQuoted(t *testing.T) {
	params := Params(map[string]any{"where": Some("(Project.Id eq 1)")})
	if got := params.Get("where"); got != "(Project.Id eq 1)" {
		t.Errorf("where = %q", got)
	}
}

func TestOptional(t *testing.T) {
	if value := None[int]().OrElse(100); value != 100 {
		t.Errorf("None.OrElse = %d, want 100", value)
	}
	if value := Some(0).OrElse(100); value != 0 {
		t.Errorf("Some(0).OrElse = %d, want 0", value)
	}

	number := 3
	if got := FromPointer(&number); !got.IsSet() || got.OrElse(0) != 3 {
		t.Errorf("FromPointer(&3) = %v", got)
	}
	if got := FromPointer[int](nil); got.IsSet() {
		t.Errorf("FromPointer(nil) = %v, want unset", got)
	}
}

func TestOptionalJSON(t *testing.T) {
	var decoded struct {
		ProjectID Optional[int]    `json:"project_id"`
		FeatureID Optional[int]    `json:"feature_id"`
		State     Optional[string] `json:"state"`
	}
	if err := json.Unmarshal([]byte(`{"project_id": 0, "state": null}`), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if value, ok := decoded.ProjectID.Get(); !ok || value != 0 {
		t.Errorf("ProjectID = %v, want Some(0)", decoded.ProjectID)
	}
	if decoded.FeatureID.IsSet() {
		t.Errorf("FeatureID = %v, want unset", decoded.FeatureID)
	}
	if decoded.State.IsSet() {
		t.Errorf("State = %v, want unset", decoded.State)
	}

	encoded, err := json.Marshal(decoded)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(encoded) != `{"project_id":0,"feature_id":null,"state":null}` {
		t.Errorf("Marshal = %s", encoded)
	}
}
