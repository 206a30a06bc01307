package domain

// User represents the ZenHub user the API token belongs to.
type User struct {
	Login string
	Email string
}
