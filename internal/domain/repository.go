package domain

// Repository represents a GitHub repository connected to a ZenHub workspace.
type Repository struct {
	ID    int
	Name  string
	Owner string
}

// FullName returns the "owner/name" form of the repository.
func (r Repository) FullName() string {
	if r.Owner == "" {
		return r.Name
	}
	return r.Owner + "/" + r.Name
}
