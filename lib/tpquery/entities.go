// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tpquery

// Filter sets for the entities tpbridge queries. The assignee path
// differs by entity: user stories and tasks are assignables whose
// assignments live under Assignable.Assignee, while bugs expose
// Assignee directly.
var (
	UserStoryFilters = FilterSet{
		{Name: "project_id", Field: "Project.Id"},
		{Name: "feature_id", Field: "Feature.Id"},
		{Name: "assignee_id", Field: "Assignable.Assignee.Id"},
		{Name: "state", Field: "EntityState.Name"},
	}

	BugFilters = FilterSet{
		{Name: "project_id", Field: "Project.Id"},
		{Name: "assignee_id", Field: "Assignee.Id"},
		{Name: "state", Field: "EntityState.Name"},
		{Name: "severity", Field: "Severity.Name"},
	}

	FeatureFilters = FilterSet{
		{Name: "project_id", Field: "Project.Id"},
		{Name: "state", Field: "EntityState.Name"},
	}

	SprintFilters = FilterSet{
		{Name: "project_id", Field: "Project.Id"},
	}

	TaskFilters = FilterSet{
		{Name: "project_id", Field: "Project.Id"},
		{Name: "user_story_id", Field: "UserStory.Id"},
		{Name: "assignee_id", Field: "Assignable.Assignee.Id"},
		{Name: "state", Field: "EntityState.Name"},
	}

	UserFilters = FilterSet{
		{Name: "is_active", Field: "IsActive"},
	}

	// SearchFilters holds the filters search adds after its name
	// condition.
	SearchFilters = FilterSet{
		{Name: "project_id", Field: "Project.Id"},
	}
)
