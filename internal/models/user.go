package models

import "time"

// User represents a registered account capable of owning todos.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	IsActive     bool      `json:"isActive"`
	IsSuperuser  bool      `json:"isSuperuser"`
	CreatedAt    time.Time `json:"createdAt"`
}

// DisplayLabel returns the name shown for a user: the display name when set,
// otherwise the username.
func (u User) DisplayLabel() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
