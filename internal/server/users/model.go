package users

import "github.com/google/uuid"

// User is a directory entry for a newsroom user. Email may be overridden by
// the author-profile email when a profile exists.
type User struct {
	ID          uuid.UUID `json:"_id"`
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
}
