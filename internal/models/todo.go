package models

import "time"

// Todo represents a single task owned by exactly one user. The owner is fixed
// at creation time and never changes.
type Todo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TodoListOptions carries the optional filters, ordering and pagination
// parameters for a list query. Zero values mean "not supplied".
type TodoListOptions struct {
	TitleSearch       string
	DescriptionSearch string
	Completed         *bool
	Search            string
	Ordering          string
	Page              int
	PageSize          int
}

// TodoPage is the paginated envelope returned by the list endpoint.
type TodoPage struct {
	Count    int    `json:"count"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Results  []Todo `json:"results"`
}
