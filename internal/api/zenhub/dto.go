package zenhub

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vilaca/zenhub-estimates/internal/domain"
)

// ZenHub API response types

type zenhubUser struct {
	Login       string `json:"login"`
	GitHubLogin string `json:"github_login"`
	Email       string `json:"email"`
}

func (u zenhubUser) toDomain() *domain.User {
	login := u.Login
	if login == "" {
		login = u.GitHubLogin
	}
	return &domain.User{Login: login, Email: u.Email}
}

type zenhubIssue struct {
	Assignee    *zenhubAssignee  `json:"assignee"`
	Assignees   []zenhubAssignee `json:"assignees"`
	CreatedAt   *string          `json:"created_at"`
	ClosedAt    *string          `json:"closed_at"`
	UpdatedAt   *string          `json:"updated_at"`
	Estimate    estimateValue    `json:"estimate"`
	HTMLURL     string           `json:"html_url"`
	IsEpic      bool             `json:"is_epic"`
	Labels      []zenhubLabel    `json:"labels"`
	Milestone   *zenhubMilestone `json:"milestone"`
	RepoName    string           `json:"repo_name"`
	IssueNumber int              `json:"issue_number"`
	State       string           `json:"state"`
	Title       string           `json:"title"`
	Pipeline    *zenhubPipeline  `json:"pipeline"`
}

type zenhubAssignee struct {
	ID        int     `json:"id"`
	Login     string  `json:"login"`
	HTMLURL   *string `json:"html_url"`
	AvatarURL *string `json:"avatar_url"`
}

type zenhubLabel struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type zenhubMilestone struct {
	Title string  `json:"title"`
	State string  `json:"state"`
	DueOn *string `json:"due_on"`
}

type zenhubPipeline struct {
	ID          string  `json:"id"`
	LegacyID    string  `json:"_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// estimateValue accepts null, a bare number, or {"value": n}.
// An absent or null estimate decodes to nil.
type estimateValue struct {
	value *float64
}

func (e *estimateValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		e.value = nil
		return nil
	}

	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			Value *float64 `json:"value"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("estimate: %w", err)
		}
		e.value = obj.Value
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("estimate: %w", err)
	}
	e.value = &f
	return nil
}

// toDomain converts a ZenHub issue to the domain model.
func (zi zenhubIssue) toDomain() domain.Issue {
	issue := domain.Issue{
		CreatedAt:   zi.CreatedAt,
		ClosedAt:    zi.ClosedAt,
		UpdatedAt:   zi.UpdatedAt,
		Estimate:    zi.Estimate.value,
		HTMLURL:     zi.HTMLURL,
		IsEpic:      zi.IsEpic,
		RepoName:    zi.RepoName,
		IssueNumber: zi.IssueNumber,
		State:       zi.State,
		Title:       zi.Title,
	}

	if zi.Assignee != nil {
		a := zi.Assignee.toDomain()
		issue.Assignee = &a
	}

	issue.Assignees = make([]domain.Assignee, len(zi.Assignees))
	for i, a := range zi.Assignees {
		issue.Assignees[i] = a.toDomain()
	}

	issue.Labels = make([]domain.Label, len(zi.Labels))
	for i, l := range zi.Labels {
		issue.Labels[i] = domain.Label{Name: l.Name, Color: l.Color}
	}

	if zi.Milestone != nil {
		issue.Milestone = &domain.Milestone{
			Title: zi.Milestone.Title,
			State: zi.Milestone.State,
			DueOn: zi.Milestone.DueOn,
		}
	}

	if zi.Pipeline != nil {
		id := zi.Pipeline.ID
		if id == "" {
			id = zi.Pipeline.LegacyID
		}
		issue.Pipeline = &domain.Pipeline{
			ID:          id,
			Name:        zi.Pipeline.Name,
			Description: zi.Pipeline.Description,
		}
	}

	return issue
}

func (a zenhubAssignee) toDomain() domain.Assignee {
	return domain.Assignee{
		ID:        a.ID,
		Login:     a.Login,
		HTMLURL:   a.HTMLURL,
		AvatarURL: a.AvatarURL,
	}
}
