package services

import (
	"fmt"
	"strings"
	"time"

	"productivity-tracker/backend/internal/models"
	"productivity-tracker/backend/internal/store"

	"github.com/gofrs/uuid"
)

// HabitService owns habit CRUD, daily check-ins, and streak calculation.
type HabitService struct {
	store *store.Store
	nowFn func() time.Time
}

func NewHabitService(s *store.Store) *HabitService {
	return &HabitService{store: s, nowFn: time.Now}
}

type HabitInput struct {
	Title       string
	Description string
	Priority    models.Priority
	Frequency   models.Frequency
	GoalID      *uuid.UUID
}

type HabitUpdate struct {
	Title       *string
	Description *string
	Priority    *models.Priority
	Frequency   *models.Frequency
	GoalID      *uuid.UUID
	ClearGoalID bool
}

func (s *HabitService) Create(in HabitInput) (models.Habit, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.Habit{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.Priority == "" {
		in.Priority = models.PriorityNext
	}
	if !in.Priority.Valid() {
		return models.Habit{}, fmt.Errorf("%w: unknown priority %q", ErrValidation, in.Priority)
	}
	if in.Frequency == "" {
		in.Frequency = models.FrequencyDaily
	}
	if !in.Frequency.Valid() {
		return models.Habit{}, fmt.Errorf("%w: unknown frequency %q", ErrValidation, in.Frequency)
	}

	habit := models.Habit{
		ID:          uuid.Must(uuid.NewV4()),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Frequency:   in.Frequency,
		GoalID:      in.GoalID,
		CheckIns:    models.CheckInList{},
		CreatedAt:   s.nowFn(),
	}

	err := s.store.Update(func(d *store.Data) (store.Change, error) {
		d.Habits = append(d.Habits, habit)
		return store.ChangedHabits, nil
	})
	if err != nil {
		return models.Habit{}, err
	}
	return habit, nil
}

func (s *HabitService) Update(id uuid.UUID, in HabitUpdate) (models.Habit, error) {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return models.Habit{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.Priority != nil && !in.Priority.Valid() {
		return models.Habit{}, fmt.Errorf("%w: unknown priority %q", ErrValidation, *in.Priority)
	}
	if in.Frequency != nil && !in.Frequency.Valid() {
		return models.Habit{}, fmt.Errorf("%w: unknown frequency %q", ErrValidation, *in.Frequency)
	}

	var updated models.Habit
	err := s.store.Update(func(d *store.Data) (store.Change, error) {
		i := findHabit(d.Habits, id)
		if i < 0 {
			return 0, fmt.Errorf("%w: habit %s", ErrNotFound, id)
		}
		h := &d.Habits[i]
		if in.Title != nil {
			h.Title = *in.Title
		}
		if in.Description != nil {
			h.Description = *in.Description
		}
		if in.Priority != nil {
			h.Priority = *in.Priority
		}
		if in.Frequency != nil {
			h.Frequency = *in.Frequency
		}
		if in.ClearGoalID {
			h.GoalID = nil
		} else if in.GoalID != nil {
			gid := *in.GoalID
			h.GoalID = &gid
		}
		updated = *h
		return store.ChangedHabits, nil
	})
	if err != nil {
		return models.Habit{}, err
	}
	return updated, nil
}

func (s *HabitService) Delete(id uuid.UUID) error {
	return s.store.Update(func(d *store.Data) (store.Change, error) {
		i := findHabit(d.Habits, id)
		if i < 0 {
			return 0, fmt.Errorf("%w: habit %s", ErrNotFound, id)
		}
		d.Habits = append(d.Habits[:i], d.Habits[i+1:]...)
		return store.ChangedHabits, nil
	})
}

func (s *HabitService) List() []models.Habit {
	var out []models.Habit
	s.store.View(func(d store.Data) {
		out = append([]models.Habit{}, d.Habits...)
	})
	return out
}

// CheckIn records a check-in for the given day, defaulting to today.
// Duplicate days are ignored.
func (s *HabitService) CheckIn(id uuid.UUID, day string) (models.Habit, error) {
	return s.mutateCheckIns(id, day, models.CheckInList.Add)
}

// Uncheck removes a check-in for the given day, defaulting to today.
func (s *HabitService) Uncheck(id uuid.UUID, day string) (models.Habit, error) {
	return s.mutateCheckIns(id, day, models.CheckInList.Remove)
}

func (s *HabitService) mutateCheckIns(id uuid.UUID, day string, op func(models.CheckInList, string) models.CheckInList) (models.Habit, error) {
	if day == "" {
		day = models.Day(s.nowFn())
	} else if _, err := models.ParseDay(day); err != nil {
		return models.Habit{}, fmt.Errorf("%w: invalid date %q", ErrValidation, day)
	}

	var updated models.Habit
	err := s.store.Update(func(d *store.Data) (store.Change, error) {
		i := findHabit(d.Habits, id)
		if i < 0 {
			return 0, fmt.Errorf("%w: habit %s", ErrNotFound, id)
		}
		d.Habits[i].CheckIns = op(d.Habits[i].CheckIns, day)
		updated = d.Habits[i]
		return store.ChangedHabits, nil
	})
	if err != nil {
		return models.Habit{}, err
	}
	return updated, nil
}

// Streak returns the habit's consecutive-day streak ending today, or
// yesterday as a grace period when today has not been checked in yet.
// It is recomputed fresh on every call since check-ins can be added and
// removed out of order.
func (s *HabitService) Streak(id uuid.UUID) (int, error) {
	var habit *models.Habit
	s.store.View(func(d store.Data) {
		if i := findHabit(d.Habits, id); i >= 0 {
			h := d.Habits[i]
			habit = &h
		}
	})
	if habit == nil {
		return 0, fmt.Errorf("%w: habit %s", ErrNotFound, id)
	}
	return streak(habit.CheckIns, s.nowFn()), nil
}

func streak(checkIns models.CheckInList, now time.Time) int {
	day := models.StartOfDay(now)
	if !checkIns.Contains(models.Day(day)) {
		day = day.AddDate(0, 0, -1)
		if !checkIns.Contains(models.Day(day)) {
			return 0
		}
	}

	count := 0
	for checkIns.Contains(models.Day(day)) {
		count++
		day = day.AddDate(0, 0, -1)
	}
	return count
}

func (s *HabitService) Search(query string) []models.Habit {
	q := strings.ToLower(query)
	matched := make([]models.Habit, 0)
	s.store.View(func(d store.Data) {
		for _, h := range d.Habits {
			if strings.Contains(strings.ToLower(h.Title), q) ||
				strings.Contains(strings.ToLower(h.Description), q) {
				matched = append(matched, h)
			}
		}
	})
	return matched
}

type HabitFilter struct {
	Priority  *models.Priority
	Frequency *models.Frequency
	GoalID    *uuid.UUID
}

func (s *HabitService) Filter(f HabitFilter) []models.Habit {
	matched := make([]models.Habit, 0)
	s.store.View(func(d store.Data) {
		for _, h := range d.Habits {
			if f.Priority != nil && h.Priority != *f.Priority {
				continue
			}
			if f.Frequency != nil && h.Frequency != *f.Frequency {
				continue
			}
			if f.GoalID != nil && (h.GoalID == nil || *h.GoalID != *f.GoalID) {
				continue
			}
			matched = append(matched, h)
		}
	})
	return matched
}

func findHabit(habits []models.Habit, id uuid.UUID) int {
	for i := range habits {
		if habits[i].ID == id {
			return i
		}
	}
	return -1
}
