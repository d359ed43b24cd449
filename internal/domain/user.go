package domain

import "github.com/google/uuid"

// User represents a registered user of the network. The id is assigned
// by the client at registration time and never changes afterwards.
// PasswordHash holds the bcrypt hash of the credential; it is stripped
// before a user leaves the service layer.
type User struct {
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Birthday     *Date     `json:"birthday,omitempty"`
	PasswordHash string    `json:"password_hash,omitempty"`
}

// Sanitized returns a copy of the user without credential material.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}
