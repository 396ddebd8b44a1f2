// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tpapi

import (
	"context"

	"github.com/bureau-foundation/tpbridge/lib/tpquery"
)

// Endpoints queried by the entity operations.
const (
	EndpointProjects    = "Projects"
	EndpointUserStories = "UserStories"
	EndpointBugs        = "Bugs"
	EndpointFeatures    = "Features"
	EndpointReleases    = "Releases"
	EndpointTasks       = "Tasks"
	EndpointUsers       = "Users"
)

// Related entities expanded inline by each operation.
const (
	IncludeProjects    = "Name"
	IncludeSearch      = "Project,EntityState"
	IncludeUserStories = "Project,EntityState,Assignee,Feature"
	IncludeBugs        = "Project,EntityState,Assignee,Priority,Severity"
	IncludeFeatures    = "Project,EntityState"
	IncludeSprints     = "Project,Iteration"
	IncludeTasks       = "Project,EntityState,Assignee,UserStory"
	IncludeUsers       = "FirstName,LastName,Email,Login,IsActive"
)

// Page sizes that differ from DefaultTake.
const (
	SearchTake  = 20
	SprintsTake = 50
)

// GetProjects lists projects.
func (client *Client) GetProjects(ctx context.Context, take tpquery.Optional[int]) ([]Record, error) {
	return client.Get(ctx, EndpointProjects, Query{
		Include: tpquery.Some(IncludeProjects),
		Take:    tpquery.Some(take.OrElse(DefaultTake)),
	})
}

// SearchQuery selects entities whose Name contains Query.
type SearchQuery struct {
	Query string

	// EntityType is the endpoint to search. Unset or empty means
	// UserStories.
	EntityType tpquery.Optional[string]

	ProjectID tpquery.Optional[int]
	Take      tpquery.Optional[int]
}

// Search finds entities by name substring, optionally within a project.
func (client *Client) Search(ctx context.Context, search SearchQuery) ([]Record, error) {
	endpoint := search.EntityType.OrElse("")
	if endpoint == "" {
		endpoint = EndpointUserStories
	}

	conditions := []tpquery.Condition{tpquery.Contains("Name", search.Query)}
	conditions = append(conditions, tpquery.ConditionsFor(tpquery.SearchFilters, tpquery.Filters{
		"project_id": search.ProjectID,
	})...)

	return client.Get(ctx, endpoint, Query{
		Include: tpquery.Some(IncludeSearch),
		Where:   tpquery.Where(conditions...),
		Take:    tpquery.Some(search.Take.OrElse(SearchTake)),
	})
}

// UserStoryQuery filters GetUserStories.
type UserStoryQuery struct {
	ProjectID  tpquery.Optional[int]
	FeatureID  tpquery.Optional[int]
	AssigneeID tpquery.Optional[int]
	State      tpquery.Optional[string]
	Take       tpquery.Optional[int]
}

// GetUserStories lists user stories.
func (client *Client) GetUserStories(ctx context.Context, query UserStoryQuery) ([]Record, error) {
	return client.list(ctx, EndpointUserStories, IncludeUserStories, query.Take.OrElse(DefaultTake),
		tpquery.UserStoryFilters, tpquery.Filters{
			"project_id":  query.ProjectID,
			"feature_id":  query.FeatureID,
			"assignee_id": query.AssigneeID,
			"state":       query.State,
		})
}

// BugQuery filters GetBugs.
type BugQuery struct {
	ProjectID  tpquery.Optional[int]
	AssigneeID tpquery.Optional[int]
	State      tpquery.Optional[string]
	Severity   tpquery.Optional[string]
	Take       tpquery.Optional[int]
}

// GetBugs lists bugs.
func (client *Client) GetBugs(ctx context.Context, query BugQuery) ([]Record, error) {
	return client.list(ctx, EndpointBugs, IncludeBugs, query.Take.OrElse(DefaultTake),
		tpquery.BugFilters, tpquery.Filters{
			"project_id":  query.ProjectID,
			"assignee_id": query.AssigneeID,
			"state":       query.State,
			"severity":    query.Severity,
		})
}

// FeatureQuery filters GetFeatures.
type FeatureQuery struct {
	ProjectID tpquery.Optional[int]
	State     tpquery.Optional[string]
	Take      tpquery.Optional[int]
}

// GetFeatures lists features.
func (client *Client) GetFeatures(ctx context.Context, query FeatureQuery) ([]Record, error) {
	return client.list(ctx, EndpointFeatures, IncludeFeatures, query.Take.OrElse(DefaultTake),
		tpquery.FeatureFilters, tpquery.Filters{
			"project_id": query.ProjectID,
			"state":      query.State,
		})
}

// SprintQuery filters GetSprints.
type SprintQuery struct {
	ProjectID tpquery.Optional[int]
	Take      tpquery.Optional[int]
}

// GetSprints lists sprints. TargetProcess models them as releases.
func (client *Client) GetSprints(ctx context.Context, query SprintQuery) ([]Record, error) {
	return client.list(ctx, EndpointReleases, IncludeSprints, query.Take.OrElse(SprintsTake),
		tpquery.SprintFilters, tpquery.Filters{
			"project_id": query.ProjectID,
		})
}

// TaskQuery filters GetTasks.
type TaskQuery struct {
	ProjectID   tpquery.Optional[int]
	UserStoryID tpquery.Optional[int]
	AssigneeID  tpquery.Optional[int]
	State       tpquery.Optional[string]
	Take        tpquery.Optional[int]
}

// GetTasks lists tasks.
func (client *Client) GetTasks(ctx context.Context, query TaskQuery) ([]Record, error) {
	return client.list(ctx, EndpointTasks, IncludeTasks, query.Take.OrElse(DefaultTake),
		tpquery.TaskFilters, tpquery.Filters{
			"project_id":    query.ProjectID,
			"user_story_id": query.UserStoryID,
			"assignee_id":   query.AssigneeID,
			"state":         query.State,
		})
}

// UserQuery filters GetUsers.
type UserQuery struct {
	IsActive tpquery.Optional[bool]
	Take     tpquery.Optional[int]
}

// GetUsers lists users.
func (client *Client) GetUsers(ctx context.Context, query UserQuery) ([]Record, error) {
	return client.list(ctx, EndpointUsers, IncludeUsers, query.Take.OrElse(DefaultTake),
		tpquery.UserFilters, tpquery.Filters{
			"is_active": query.IsActive,
		})
}

func (client *Client) list(ctx context.Context, endpoint, include string, take int, set tpquery.FilterSet, filters tpquery.Filters) ([]Record, error) {
	return client.Get(ctx, endpoint, Query{
		Include: tpquery.Some(include),
		Where:   tpquery.Where(tpquery.ConditionsFor(set, filters)...),
		Take:    tpquery.Some(take),
	})
}
