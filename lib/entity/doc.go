// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package entity provides typed read views over TargetProcess records.
//
// The query client returns records verbatim as map[string]any so that
// no field is lost. This package extracts the commonly used fields into
// structs (Project, UserStory, Bug, Feature, Release, Task, User) for
// callers that want them, such as the CLI's table output. Fields that
// are absent or null stay at their zero value; related entities are
// returned as *Ref and are nil when absent.
//
// Only Id is required. A record whose Id is missing or not an integer
// is rejected with an error.
package entity
