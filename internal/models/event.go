package models

import "time"

// Event is a single activity-log entry, e.g. a registration or a todo
// mutation. UserID is nil for events not tied to an account.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	UserID    *string   `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
