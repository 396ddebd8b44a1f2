// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tpquery translates simple typed filters into the TargetProcess
// REST query dialect.
//
// A filter is a (name, value) pair such as ("project_id", 5). Each entity
// declares a [FilterSet] mapping the filter names it accepts to remote
// field paths; [ConditionsFor] turns the filters that are present into
// parenthesized conditions in the set's declared order:
//
//	project_id=5      → (Project.Id eq 5)
//	state="Open"      → (EntityState.Name eq 'Open')
//
// Filter names that a set does not declare are ignored. [Where] joins
// conditions with " and " and yields an absent value for an empty list,
// so that no where parameter is sent at all.
//
// Absence is explicit throughout: a filter or parameter is dropped only
// when it is nil, a nil pointer, or an unset [Optional]. Zero values
// such as 0, false and "" are real values and are always sent.
//
// String values are wrapped in single quotes and otherwise embedded
// verbatim. Callers must treat the text they pass as trusted.
package tpquery
