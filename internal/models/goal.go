package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// Goal is an aggregation target for tasks and habits. Goals hold no
// children; tasks and habits point at a goal through their GoalID.
type Goal struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	TimeGoal    *float64  `json:"time_goal,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
