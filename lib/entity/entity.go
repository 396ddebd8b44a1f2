// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package entity

type Project struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Process     *Ref   `json:"process,omitempty"`
}

func ProjectFrom(record map[string]any) (Project, error) {
	id, err := requireID(record)
	if err != nil {
		return Project{}, err
	}
	return Project{
		ID:          id,
		Name:        stringField(record, "Name"),
		Description: stringField(record, "Description"),
		Process:     refField(record, "Process"),
	}, nil
}

type UserStory struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Project     *Ref     `json:"project,omitempty"`
	EntityState *Ref     `json:"entity_state,omitempty"`
	Assignee    *Ref     `json:"assignee,omitempty"`
	Feature     *Ref     `json:"feature,omitempty"`
	Effort      *float64 `json:"effort,omitempty"`
}

func UserStoryFrom(record map[string]any) (UserStory, error) {
	id, err := requireID(record)
	if err != nil {
		return UserStory{}, err
	}
	return UserStory{
		ID:          id,
		Name:        stringField(record, "Name"),
		Project:     refField(record, "Project"),
		EntityState: refField(record, "EntityState"),
		Assignee:    refField(record, "Assignee"),
		Feature:     refField(record, "Feature"),
		Effort:      floatField(record, "Effort"),
	}, nil
}

type Bug struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Project     *Ref   `json:"project,omitempty"`
	EntityState *Ref   `json:"entity_state,omitempty"`
	Assignee    *Ref   `json:"assignee,omitempty"`
	Priority    *Ref   `json:"priority,omitempty"`
	Severity    *Ref   `json:"severity,omitempty"`
}

func BugFrom(record map[string]any) (Bug, error) {
	id, err := requireID(record)
	if err != nil {
		return Bug{}, err
	}
	return Bug{
		ID:          id,
		Name:        stringField(record, "Name"),
		Project:     refField(record, "Project"),
		EntityState: refField(record, "EntityState"),
		Assignee:    refField(record, "Assignee"),
		Priority:    refField(record, "Priority"),
		Severity:    refField(record, "Severity"),
	}, nil
}

type Feature struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Project     *Ref   `json:"project,omitempty"`
	EntityState *Ref   `json:"entity_state,omitempty"`
}

func FeatureFrom(record map[string]any) (Feature, error) {
	id, err := requireID(record)
	if err != nil {
		return Feature{}, err
	}
	return Feature{
		ID:          id,
		Name:        stringField(record, "Name"),
		Project:     refField(record, "Project"),
		EntityState: refField(record, "EntityState"),
	}, nil
}

// Release is a TargetProcess release, which tpbridge presents as a
// sprint. Dates are kept in the API's own string format.
type Release struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Project   *Ref   `json:"project,omitempty"`
	Iteration *Ref   `json:"iteration,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

func ReleaseFrom(record map[string]any) (Release, error) {
	id, err := requireID(record)
	if err != nil {
		return Release{}, err
	}
	return Release{
		ID:        id,
		Name:      stringField(record, "Name"),
		Project:   refField(record, "Project"),
		Iteration: refField(record, "Iteration"),
		StartDate: stringField(record, "StartDate"),
		EndDate:   stringField(record, "EndDate"),
	}, nil
}

type Task struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Project     *Ref   `json:"project,omitempty"`
	EntityState *Ref   `json:"entity_state,omitempty"`
	Assignee    *Ref   `json:"assignee,omitempty"`
	UserStory   *Ref   `json:"user_story,omitempty"`
}

func TaskFrom(record map[string]any) (Task, error) {
	id, err := requireID(record)
	if err != nil {
		return Task{}, err
	}
	return Task{
		ID:          id,
		Name:        stringField(record, "Name"),
		Project:     refField(record, "Project"),
		EntityState: refField(record, "EntityState"),
		Assignee:    refField(record, "Assignee"),
		UserStory:   refField(record, "UserStory"),
	}, nil
}

type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Login     string `json:"login,omitempty"`
	IsActive  bool   `json:"is_active"`
}

// UserFrom reads a user. IsActive defaults to true when the record
// omits it.
func UserFrom(record map[string]any) (User, error) {
	id, err := requireID(record)
	if err != nil {
		return User{}, err
	}
	return User{
		ID:        id,
		FirstName: stringField(record, "FirstName"),
		LastName:  stringField(record, "LastName"),
		Email:     stringField(record, "Email"),
		Login:     stringField(record, "Login"),
		IsActive:  boolField(record, "IsActive", true),
	}, nil
}

// FullName is "First Last", or the login when both are empty.
func (u User) FullName() string {
	return displayName(u.FirstName, u.LastName, u.Login)
}
