package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type Priority string

const (
	PriorityNow   Priority = "Now"
	PriorityNext  Priority = "Next"
	PriorityLater Priority = "Later"
)

// Priorities lists every valid priority level, highest urgency first.
var Priorities = []Priority{PriorityNow, PriorityNext, PriorityLater}

func (p Priority) Valid() bool {
	for _, q := range Priorities {
		if p == q {
			return true
		}
	}
	return false
}

type Recurrence string

const (
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceYearly  Recurrence = "yearly"
)

func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// Task is either an ordinary task, a recurring template, or an instance
// generated from a template. Templates are never actionable themselves;
// instances carry ParentTaskID and have the recurrence fields cleared.
type Task struct {
	ID                  uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	Title               string     `json:"title" gorm:"not null"`
	Description         string     `json:"description"`
	Priority            Priority   `json:"priority" gorm:"not null;default:'Next'"`
	DueDate             *time.Time `json:"due_date,omitempty"`
	GoalID              *uuid.UUID `json:"goal_id,omitempty" gorm:"type:uuid"`
	Completed           bool       `json:"completed"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	NotCompleted        bool       `json:"not_completed"`
	NotCompletedAt      *time.Time `json:"not_completed_at,omitempty"`
	TimeSpent           *float64   `json:"time_spent,omitempty"`
	Recurrence          Recurrence `json:"recurrence,omitempty"`
	RecurrenceEndDate   *time.Time `json:"recurrence_end_date,omitempty"`
	IsRecurringTemplate bool       `json:"is_recurring_template"`
	ParentTaskID        *uuid.UUID `json:"parent_task_id,omitempty" gorm:"type:uuid"`
	CreatedAt           time.Time  `json:"created_at"`
}

// Open reports whether the task is still pending: neither completed nor
// marked not-completed.
func (t Task) Open() bool {
	return !t.Completed && !t.NotCompleted
}

// Actionable reports whether the task should appear in active listings.
// Templates and not-completed tasks are excluded.
func (t Task) Actionable() bool {
	return !t.IsRecurringTemplate && !t.NotCompleted
}
