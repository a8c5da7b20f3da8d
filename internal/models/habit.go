package models

import (
	"sort"
	"time"

	"github.com/gofrs/uuid"
)

type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
	FrequencyCustom Frequency = "custom"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyCustom:
		return true
	}
	return false
}

// CheckInList holds the calendar days a habit was checked in, as sorted
// unique YYYY-MM-DD strings.
type CheckInList []string

func (l CheckInList) Contains(day string) bool {
	for _, d := range l {
		if d == day {
			return true
		}
	}
	return false
}

// Add returns the list with day inserted, keeping it sorted and unique.
func (l CheckInList) Add(day string) CheckInList {
	if l.Contains(day) {
		return l
	}
	out := append(CheckInList{}, l...)
	out = append(out, day)
	sort.Strings(out)
	return out
}

// Remove returns the list with day removed, if present.
func (l CheckInList) Remove(day string) CheckInList {
	out := make(CheckInList, 0, len(l))
	for _, d := range l {
		if d != day {
			out = append(out, d)
		}
	}
	return out
}

// CheckedOn reports whether the habit was checked in on the calendar day
// of t.
func (l CheckInList) CheckedOn(t time.Time) bool {
	return l.Contains(Day(t))
}

type Habit struct {
	ID          uuid.UUID   `json:"id" gorm:"primaryKey;type:uuid"`
	Title       string      `json:"title" gorm:"not null"`
	Description string      `json:"description"`
	Priority    Priority    `json:"priority" gorm:"not null;default:'Next'"`
	Frequency   Frequency   `json:"frequency" gorm:"not null;default:'daily'"`
	GoalID      *uuid.UUID  `json:"goal_id,omitempty" gorm:"type:uuid"`
	CheckIns    CheckInList `json:"check_ins" gorm:"serializer:json"`
	CreatedAt   time.Time   `json:"created_at"`
}
