package model

import "time"

type Chore struct {
	ID             string     `json:"id"`
	HouseholdID    string     `json:"household_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	AssignedTo     *string    `json:"assigned_to"`
	CreatedBy      string     `json:"created_by"`
	DueDate        *time.Time `json:"due_date"`
	PointValue     int        `json:"point_value"`
	IsCompleted    bool       `json:"is_completed"`
	CompletedAt    *time.Time `json:"completed_at"`
	CompletedBy    *string    `json:"completed_by"`
	RecurrenceRule string     `json:"recurrence_rule,omitempty"`
	NextOccurrence *time.Time `json:"next_occurrence"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsRecurring reports whether the chore carries a recurrence rule.
func (c Chore) IsRecurring() bool {
	return c.RecurrenceRule != ""
}

// Anchor returns the date the next occurrence should be computed from:
// the due date if one exists, otherwise the completion date.
func (c Chore) Anchor() *time.Time {
	if c.DueDate != nil {
		return c.DueDate
	}
	return c.CompletedAt
}
