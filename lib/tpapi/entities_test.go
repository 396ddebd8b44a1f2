// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tpapi

import (
	"context"
	"testing"

	"github.com/bureau-foundation/tpbridge/lib/gate"
	"github.com/bureau-foundation/tpbridge/lib/tpquery"
)

func TestEntityOperations(t *testing.T) {
	tests := []struct {
		name        string
		call        func(context.Context, *Client) error
		wantPath    string
		wantInclude string
		wantTake    string
		wantWhere   string
	}{
		{
			name: "projects",
			call: func(ctx context.Context, c *Client) error {
				_, err := c.GetProjects(ctx, tpquery.None[int]())
				return err
			},
			wantPath:    "/api/v1/Projects",
			wantInclude: "Name",
			wantTake:    "100",
		},
		{
			name: "search defaults",
			call: func(ctx context.Context, c *Client) error {
				_, err := c.Search(ctx, SearchQuery{Query: "login"})
				return err
			},
			wantPath:    "/api/v1/UserStories",
			wantInclude: "Project,EntityState",
			wantTake:    "20",
			wantWhere:   "(Name.Contains('login'))",
		},
		{
			name: "search in project",
			call: func(ctx context.Context, c *Client) error {
				_, err := c.Search(ctx, SearchQuery{
					Query:      "login",
					EntityType: tpquery.Some("Bugs"),
					ProjectID:  tpquery.Some(5),
					Take:       tpquery.Some(3),
				})
				return err
			},
			wantPath:    "/api/v1/Bugs",
			wantInclude: "Project,EntityState",
			wantTake:    "3",
			wantWhere:   "(Name.Contains('login')) and (Project.Id eq 5)",
		},
		{
			name: "search empty entity type",
			call: func(ctx context.Context, c *Client) error {
				_, err := c.Search(ctx, SearchQuery{Query: "x", EntityType: tpquery.Some("")})
				return err
			},
			wantPath:    "/api/v1/UserStories",
			wantInclude: "Project,EntityState",
			wantTake:    "20",
			wantWhere:   "(Name.Contains('x'))",
		},
		{
			name: "user stories unfiltered",
			call: func(ctx context.Context, c *Client) error {
				_, err := c.GetUserStories(ctx, UserStoryQuery{})
				return err
			},
			wantPath:    "/api/v1/UserStories",
			wantInclude: "Project,EntityState,Assignee,Feature",
			wantTake:    "100",
		},
		{
			name: "user stories filtered",
			call: func(ctx context.Context, c *Client) error {
				_, err := c.GetUserStories(ctx, UserStoryQuery{
					ProjectID:  tpquery.Some(0),
					FeatureID:  tpquery.Some(7),
					AssigneeID: tpquery.Some(42),
					State:      tpquery.Some("Open"),
				})
				return err
			},
			wantPath:    "/api/v1/UserStories",
			wantInclude: "Project,EntityState,Assignee,Feature",
			wantTake:    "100",
			wantWhere:   "(Project.Id eq 0) and (Feature.Id eq 7) and (Assignable.Assignee.Id eq 42) and (EntityState.Name eq 'Open')",
		},
		{
			name: "bugs",
			call: func(ctx context.Context, c *Client) error {
				_, err := c.GetBugs(ctx, BugQuery{
					AssigneeID: tpquery.Some(42),
					Severity:   tpquery.Some("Critical"),
					Take:       tpquery.Some(10),
				})
				return err
			},
			wantPath:    "/api/v1/Bugs",
			wantInclude: "Project,EntityState,Assignee,Priority,Severity",
			wantTake:    "10",
			wantWhere:   "(Assignee.Id eq 42) and (Severity.Name eq 'Critical')",
		},
		{
			name: "features",
			call: func(ctx context.Context, c *Client) error {
				_, err := c.GetFeatures(ctx, FeatureQuery{State: tpquery.Some("Done")})
				return err
			},
			wantPath:    "/api/v1/Features",
			wantInclude: "Project,EntityState",
			wantTake:    "100",
			wantWhere:   "(EntityState.Name eq 'Done')",
		},
		{
			name: "sprints",
			call: func(ctx context.Context, c *Client) error {
				_, err := c.GetSprints(ctx, SprintQuery{ProjectID: tpquery.Some(5)})
				return err
			},
			wantPath:    "/api/v1/Releases",
			wantInclude: "Project,Iteration",
			wantTake:    "50",
			wantWhere:   "(Project.Id eq 5)",
		},
		{
			name: "tasks",
			call: func(ctx context.Context, c *Client) error {
				_, err := c.GetTasks(ctx, TaskQuery{UserStoryID: tpquery.Some(11), AssigneeID: tpquery.Some(2)})
				return err
			},
			wantPath:    "/api/v1/Tasks",
			wantInclude: "Project,EntityState,Assignee,UserStory",
			wantTake:    "100",
			wantWhere:   "(UserStory.Id eq 11) and (Assignable.Assignee.Id eq 2)",
		},
		{
			name: "users",
			call: func(ctx context.Context, c *Client) error {
				_, err := c.GetUsers(ctx, UserQuery{IsActive: tpquery.Some(false)})
				return err
			},
			wantPath:    "/api/v1/Users",
			wantInclude: "FirstName,LastName,Email,Login,IsActive",
			wantTake:    "100",
			wantWhere:   "(IsActive eq false)",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			setup := newTestSetup(t, gate.Policy{}, true)
			if err := test.call(context.Background(), setup.client); err != nil {
				t.Fatalf("call: %v", err)
			}

			request := setup.server.last(t)
			if request.Path != test.wantPath {
				t.Errorf("path = %q, want %q", request.Path, test.wantPath)
			}
			query := request.Query()
			if got := query.Get("include"); got != test.wantInclude {
				t.Errorf("include = %q, want %q", got, test.wantInclude)
			}
			if got := query.Get("take"); got != test.wantTake {
				t.Errorf("take = %q, want %q", got, test.wantTake)
			}
			if test.wantWhere == "" {
				if query.Has("where") {
					t.Errorf("unexpected where = %q", query.Get("where"))
				}
			} else if got := query.Get("where"); got != test.wantWhere {
				t.Errorf("where = %q, want %q", got, test.wantWhere)
			}
		})
	}
}
