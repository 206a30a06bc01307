package domain

// Issue represents a ZenHub issue as returned by the workspace issue list.
// Optional fields are pointers; a nil Estimate means "not estimated",
// which is distinct from an estimate of zero.
type Issue struct {
	Assignee    *Assignee
	Assignees   []Assignee
	CreatedAt   *string
	ClosedAt    *string
	UpdatedAt   *string
	Estimate    *float64
	HTMLURL     string
	IsEpic      bool
	Labels      []Label
	Milestone   *Milestone
	RepoName    string
	IssueNumber int
	State       string // "open", "closed"
	Title       string
	Pipeline    *Pipeline // nil if the issue is not on the board
}

// Assignee represents the user an issue is assigned to.
type Assignee struct {
	ID        int
	Login     string
	HTMLURL   *string
	AvatarURL *string
}

// Label represents a GitHub label attached to an issue.
type Label struct {
	Name  string
	Color string
}

// Milestone represents the GitHub milestone of an issue.
type Milestone struct {
	Title string
	State string
	DueOn *string
}

// HasEstimate returns true if the issue carries an estimate.
func (i Issue) HasEstimate() bool {
	return i.Estimate != nil
}

// AssigneeLogin returns the login of the singular assignee, or "" if unassigned.
func (i Issue) AssigneeLogin() string {
	if i.Assignee == nil {
		return ""
	}
	return i.Assignee.Login
}

// PipelineName returns the name of the issue's pipeline, or "" if it has none.
func (i Issue) PipelineName() string {
	if i.Pipeline == nil {
		return ""
	}
	return i.Pipeline.Name
}

// LabelNames returns the names of the issue's labels in order.
func (i Issue) LabelNames() []string {
	names := make([]string, len(i.Labels))
	for idx, l := range i.Labels {
		names[idx] = l.Name
	}
	return names
}
