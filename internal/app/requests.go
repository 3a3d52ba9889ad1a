package app

import "time"

// LoginRequest identifies a user. Name is only consulted when the email is
// neither stored nor listed in the bootstrap accounts.
type LoginRequest struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type CreateTaskRequest struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	AssigneeEmail string     `json:"assignee_email"`
	DueAt         *time.Time `json:"due_at,omitempty"`
}
