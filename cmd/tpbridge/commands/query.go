// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bureau-foundation/tpbridge/cmd/tpbridge/cli"
	"github.com/bureau-foundation/tpbridge/lib/tpapi"
	"github.com/bureau-foundation/tpbridge/lib/tpquery"
)

type projectsParams struct {
	cli.JSONOutput
	Take tpquery.Optional[int] `json:"take" flag:"take,n" desc:"maximum number of projects to return" default:"100"`
}

func projectsCommand(runtime *Runtime) *cli.Command {
	var params projectsParams

	return &cli.Command{
		Name:    "projects",
		Summary: "List projects (ID and name)",
		Description: `Get all projects (id and name) for quick reference.

Use this to find project IDs before querying specific entities.`,
		Usage: "tpbridge projects [flags]",
		Examples: []cli.Example{
			{Description: "List projects", Command: "tpbridge projects"},
		},
		ToolName:    "get_projects",
		Params:      func() any { return &params },
		Output:      recordsOutput,
		Annotations: cli.ReadOnly(),
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := noArgs(args); err != nil {
				return err
			}
			client, err := runtime.Client(logger)
			if err != nil {
				return err
			}
			records, err := client.GetProjects(ctx, params.Take)
			if err != nil {
				return classify(err)
			}
			return emitRecords(&params.JSONOutput, tpapi.EndpointProjects, records, logger)
		},
	}
}

type searchParams struct {
	cli.JSONOutput
	Query      string                   `json:"query"       desc:"search term (matched against entity names)" required:"true"`
	EntityType tpquery.Optional[string] `json:"entity_type" flag:"entity-type,t" desc:"collection to search: UserStories, Bugs, Features or Tasks (default UserStories)"`
	ProjectID  tpquery.Optional[int]    `json:"project_id"  flag:"project-id,p"  desc:"filter by project ID"`
	Take       tpquery.Optional[int]    `json:"take"        flag:"take,n"        desc:"maximum results to return" default:"20"`
}

func searchCommand(runtime *Runtime) *cli.Command {
	var params searchParams

	return &cli.Command{
		Name:    "search",
		Summary: "Search entities by name",
		Description: `Search entities by name substring.

Quick way to find user stories, bugs, features or tasks by partial name
match. Searches user stories unless an entity type is given.`,
		Usage: "tpbridge search <query> [flags]",
		Examples: []cli.Example{
			{Description: "Stories mentioning login", Command: "tpbridge search login"},
			{Description: "Bugs in one project", Command: "tpbridge search timeout --entity-type Bugs --project-id 12"},
		},
		ToolName:    "search",
		Params:      func() any { return &params },
		Output:      recordsOutput,
		Annotations: cli.ReadOnly(),
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				params.Query = strings.Join(args, " ")
			}
			if params.Query == "" {
				return cli.Validation("search query is required\n\nUsage: tpbridge search <query>")
			}
			client, err := runtime.Client(logger)
			if err != nil {
				return err
			}
			records, err := client.Search(ctx, tpapi.SearchQuery{
				Query:      params.Query,
				EntityType: params.EntityType,
				ProjectID:  params.ProjectID,
				Take:       params.Take,
			})
			if err != nil {
				return classify(err)
			}
			endpoint := params.EntityType.OrElse("")
			if endpoint == "" {
				endpoint = tpapi.EndpointUserStories
			}
			return emitRecords(&params.JSONOutput, endpoint, records, logger)
		},
	}
}

type storiesParams struct {
	cli.JSONOutput
	ProjectID  tpquery.Optional[int]    `json:"project_id"  flag:"project-id,p" desc:"filter by project ID"`
	FeatureID  tpquery.Optional[int]    `json:"feature_id"  flag:"feature-id"   desc:"filter by feature ID"`
	AssigneeID tpquery.Optional[int]    `json:"assignee_id" flag:"assignee-id"  desc:"filter by assignee user ID"`
	State      tpquery.Optional[string] `json:"state"       flag:"state,s"      desc:"filter by state name (e.g. Open, In Progress, Done)"`
	Take       tpquery.Optional[int]    `json:"take"        flag:"take,n"       desc:"maximum results" default:"100"`
}

func storiesCommand(runtime *Runtime) *cli.Command {
	var params storiesParams

	return &cli.Command{
		Name:        "stories",
		Summary:     "List user stories",
		Description: "Get user stories with project, state, assignee and feature info.",
		Usage:       "tpbridge stories [flags]",
		Examples: []cli.Example{
			{Description: "Open stories in project 12", Command: "tpbridge stories --project-id 12 --state Open"},
		},
		ToolName:    "get_user_stories",
		Params:      func() any { return &params },
		Output:      recordsOutput,
		Annotations: cli.ReadOnly(),
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := noArgs(args); err != nil {
				return err
			}
			client, err := runtime.Client(logger)
			if err != nil {
				return err
			}
			records, err := client.GetUserStories(ctx, tpapi.UserStoryQuery{
				ProjectID:  params.ProjectID,
				FeatureID:  params.FeatureID,
				AssigneeID: params.AssigneeID,
				State:      params.State,
				Take:       params.Take,
			})
			if err != nil {
				return classify(err)
			}
			return emitRecords(&params.JSONOutput, tpapi.EndpointUserStories, records, logger)
		},
	}
}

type bugsParams struct {
	cli.JSONOutput
	ProjectID  tpquery.Optional[int]    `json:"project_id"  flag:"project-id,p" desc:"filter by project ID"`
	AssigneeID tpquery.Optional[int]    `json:"assignee_id" flag:"assignee-id"  desc:"filter by assignee user ID"`
	State      tpquery.Optional[string] `json:"state"       flag:"state,s"      desc:"filter by state name (e.g. Open, Resolved)"`
	Severity   tpquery.Optional[string] `json:"severity"    flag:"severity"     desc:"filter by severity name (e.g. Critical, Major, Minor)"`
	Take       tpquery.Optional[int]    `json:"take"        flag:"take,n"       desc:"maximum results" default:"100"`
}

func bugsCommand(runtime *Runtime) *cli.Command {
	var params bugsParams

	return &cli.Command{
		Name:        "bugs",
		Summary:     "List bugs",
		Description: "Get bugs with project, state, assignee, priority and severity info.",
		Usage:       "tpbridge bugs [flags]",
		Examples: []cli.Example{
			{Description: "Critical bugs in project 12", Command: "tpbridge bugs --project-id 12 --severity Critical"},
		},
		ToolName:    "get_bugs",
		Params:      func() any { return &params },
		Output:      recordsOutput,
		Annotations: cli.ReadOnly(),
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := noArgs(args); err != nil {
				return err
			}
			client, err := runtime.Client(logger)
			if err != nil {
				return err
			}
			records, err := client.GetBugs(ctx, tpapi.BugQuery{
				ProjectID:  params.ProjectID,
				AssigneeID: params.AssigneeID,
				State:      params.State,
				Severity:   params.Severity,
				Take:       params.Take,
			})
			if err != nil {
				return classify(err)
			}
			return emitRecords(&params.JSONOutput, tpapi.EndpointBugs, records, logger)
		},
	}
}

type featuresParams struct {
	cli.JSONOutput
	ProjectID tpquery.Optional[int]    `json:"project_id" flag:"project-id,p" desc:"filter by project ID"`
	State     tpquery.Optional[string] `json:"state"      flag:"state,s"      desc:"filter by state name (e.g. Proposed, In Progress, Completed)"`
	Take      tpquery.Optional[int]    `json:"take"       flag:"take,n"       desc:"maximum results" default:"100"`
}

func featuresCommand(runtime *Runtime) *cli.Command {
	var params featuresParams

	return &cli.Command{
		Name:        "features",
		Summary:     "List features",
		Description: "Get features with project and state info.",
		Usage:       "tpbridge features [flags]",
		ToolName:    "get_features",
		Params:      func() any { return &params },
		Output:      recordsOutput,
		Annotations: cli.ReadOnly(),
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := noArgs(args); err != nil {
				return err
			}
			client, err := runtime.Client(logger)
			if err != nil {
				return err
			}
			records, err := client.GetFeatures(ctx, tpapi.FeatureQuery{
				ProjectID: params.ProjectID,
				State:     params.State,
				Take:      params.Take,
			})
			if err != nil {
				return classify(err)
			}
			return emitRecords(&params.JSONOutput, tpapi.EndpointFeatures, records, logger)
		},
	}
}

type sprintsParams struct {
	cli.JSONOutput
	ProjectID tpquery.Optional[int] `json:"project_id" flag:"project-id,p" desc:"filter by project ID"`
	Take      tpquery.Optional[int] `json:"take"       flag:"take,n"       desc:"maximum results" default:"50"`
}

func sprintsCommand(runtime *Runtime) *cli.Command {
	var params sprintsParams

	return &cli.Command{
		Name:    "sprints",
		Summary: "List sprints (releases)",
		Description: `Get sprints with project and iteration info. TargetProcess stores
sprints as releases; the STATE column of the table shows the date range.`,
		Usage:       "tpbridge sprints [flags]",
		ToolName:    "get_sprints",
		Params:      func() any { return &params },
		Output:      recordsOutput,
		Annotations: cli.ReadOnly(),
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := noArgs(args); err != nil {
				return err
			}
			client, err := runtime.Client(logger)
			if err != nil {
				return err
			}
			records, err := client.GetSprints(ctx, tpapi.SprintQuery{
				ProjectID: params.ProjectID,
				Take:      params.Take,
			})
			if err != nil {
				return classify(err)
			}
			return emitRecords(&params.JSONOutput, tpapi.EndpointReleases, records, logger)
		},
	}
}

type tasksParams struct {
	cli.JSONOutput
	ProjectID   tpquery.Optional[int]    `json:"project_id"    flag:"project-id,p"  desc:"filter by project ID"`
	UserStoryID tpquery.Optional[int]    `json:"user_story_id" flag:"user-story-id" desc:"filter by parent user story ID"`
	AssigneeID  tpquery.Optional[int]    `json:"assignee_id"   flag:"assignee-id"   desc:"filter by assignee user ID"`
	State       tpquery.Optional[string] `json:"state"         flag:"state,s"       desc:"filter by state name"`
	Take        tpquery.Optional[int]    `json:"take"          flag:"take,n"        desc:"maximum results" default:"100"`
}

func tasksCommand(runtime *Runtime) *cli.Command {
	var params tasksParams

	return &cli.Command{
		Name:        "tasks",
		Summary:     "List tasks",
		Description: "Get tasks with project, state, assignee and parent user story info.",
		Usage:       "tpbridge tasks [flags]",
		Examples: []cli.Example{
			{Description: "Tasks under one story", Command: "tpbridge tasks --user-story-id 4521"},
		},
		ToolName:    "get_tasks",
		Params:      func() any { return &params },
		Output:      recordsOutput,
		Annotations: cli.ReadOnly(),
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := noArgs(args); err != nil {
				return err
			}
			client, err := runtime.Client(logger)
			if err != nil {
				return err
			}
			records, err := client.GetTasks(ctx, tpapi.TaskQuery{
				ProjectID:   params.ProjectID,
				UserStoryID: params.UserStoryID,
				AssigneeID:  params.AssigneeID,
				State:       params.State,
				Take:        params.Take,
			})
			if err != nil {
				return classify(err)
			}
			return emitRecords(&params.JSONOutput, tpapi.EndpointTasks, records, logger)
		},
	}
}

type usersParams struct {
	cli.JSONOutput
	IsActive tpquery.Optional[bool] `json:"is_active" flag:"active" desc:"filter by active flag (--active or --active=false)"`
	Take     tpquery.Optional[int]  `json:"take"      flag:"take,n" desc:"maximum results" default:"100"`
}

func usersCommand(runtime *Runtime) *cli.Command {
	var params usersParams

	return &cli.Command{
		Name:        "users",
		Summary:     "List users",
		Description: "Get users with name, email, login and active flag. Use the IDs as assignee filters.",
		Usage:       "tpbridge users [flags]",
		Examples: []cli.Example{
			{Description: "Active users only", Command: "tpbridge users --active"},
		},
		ToolName:    "get_users",
		Params:      func() any { return &params },
		Output:      recordsOutput,
		Annotations: cli.ReadOnly(),
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := noArgs(args); err != nil {
				return err
			}
			client, err := runtime.Client(logger)
			if err != nil {
				return err
			}
			records, err := client.GetUsers(ctx, tpapi.UserQuery{
				IsActive: params.IsActive,
				Take:     params.Take,
			})
			if err != nil {
				return classify(err)
			}
			return emitRecords(&params.JSONOutput, tpapi.EndpointUsers, records, logger)
		},
	}
}

func noArgs(args []string) error {
	if len(args) > 0 {
		return cli.Validation("unexpected argument %q", args[0])
	}
	return nil
}
