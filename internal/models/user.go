package models

import (
	"strings"
	"time"
)

// User represents a user account in the system.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	CreatedAt    time.Time `json:"createdAt"`
}

// Username derives the display name from the email's local part.
func (u User) Username() string {
	name, _, _ := strings.Cut(u.Email, "@")
	return name
}
