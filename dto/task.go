package dto

import (
	"errors"
	"time"
)

type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Status      string  `json:"status" validate:"omitempty,oneof=todo in-progress completed"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"dueDate"`
	ProjectID   *string `json:"projectId" validate:"omitempty,uuid4"`
}

// UpdateTaskRequest carries a partial update: nil fields are left untouched.
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,oneof=todo in-progress completed"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"dueDate"`
	ProjectID   *string `json:"projectId" validate:"omitempty,uuid4"`
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=todo in-progress completed"`
}

// ParseDate accepts the two date shapes the frontend sends: a bare
// calendar date ("2024-01-15") or a full RFC3339 timestamp.
func ParseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, *s); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", *s); err == nil {
		return &t, nil
	}
	return nil, errors.New("invalid date format, want YYYY-MM-DD or RFC3339")
}
