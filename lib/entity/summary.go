// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package entity

import (
	"fmt"
	"strconv"
)

// Kind names an entity type.
type Kind string

const (
	KindProject   Kind = "project"
	KindUserStory Kind = "user_story"
	KindBug       Kind = "bug"
	KindFeature   Kind = "feature"
	KindRelease   Kind = "release"
	KindTask      Kind = "task"
	KindUser      Kind = "user"
)

// KindForEndpoint maps a REST endpoint to its Kind. Unknown endpoints
// map to "".
func KindForEndpoint(endpoint string) Kind {
	switch endpoint {
	case "Projects":
		return KindProject
	case "UserStories":
		return KindUserStory
	case "Bugs":
		return KindBug
	case "Features":
		return KindFeature
	case "Releases":
		return KindRelease
	case "Tasks":
		return KindTask
	case "Users":
		return KindUser
	}
	return ""
}

// Summary is the one-line view of any entity used for table output.
type Summary struct {
	ID      int64
	Name    string
	State   string
	Project string
	Owner   string
}

// Columns returns the summary as table cells in the order of
// SummaryHeader.
func (s Summary) Columns() []string {
	return []string{strconv.FormatInt(s.ID, 10), s.Name, s.State, s.Project, s.Owner}
}

// SummaryHeader is the table header matching Summary.Columns.
var SummaryHeader = []string{"ID", "NAME", "STATE", "PROJECT", "OWNER"}

// Summarize builds a Summary of record read as kind. An unknown kind
// falls back to the generic Id/Name fields.
func Summarize(kind Kind, record map[string]any) (Summary, error) {
	switch kind {
	case KindProject:
		project, err := ProjectFrom(record)
		return Summary{ID: project.ID, Name: project.Name, State: project.Process.String()}, err
	case KindUserStory:
		story, err := UserStoryFrom(record)
		return Summary{ID: story.ID, Name: story.Name, State: story.EntityState.String(),
			Project: story.Project.String(), Owner: story.Assignee.String()}, err
	case KindBug:
		bug, err := BugFrom(record)
		return Summary{ID: bug.ID, Name: bug.Name, State: bug.EntityState.String(),
			Project: bug.Project.String(), Owner: bug.Assignee.String()}, err
	case KindFeature:
		feature, err := FeatureFrom(record)
		return Summary{ID: feature.ID, Name: feature.Name, State: feature.EntityState.String(),
			Project: feature.Project.String()}, err
	case KindRelease:
		release, err := ReleaseFrom(record)
		return Summary{ID: release.ID, Name: release.Name, State: dateRange(release.StartDate, release.EndDate),
			Project: release.Project.String()}, err
	case KindTask:
		task, err := TaskFrom(record)
		return Summary{ID: task.ID, Name: task.Name, State: task.EntityState.String(),
			Project: task.Project.String(), Owner: task.Assignee.String()}, err
	case KindUser:
		user, err := UserFrom(record)
		state := "active"
		if !user.IsActive {
			state = "inactive"
		}
		return Summary{ID: user.ID, Name: user.FullName(), State: state, Owner: user.Email}, err
	}

	id, err := requireID(record)
	if err != nil {
		return Summary{}, err
	}
	return Summary{ID: id, Name: stringField(record, "Name")}, nil
}

func dateRange(start, end string) string {
	if start == "" && end == "" {
		return ""
	}
	return fmt.Sprintf("%s..%s", start, end)
}
