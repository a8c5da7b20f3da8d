package store

import (
	"errors"
	"fmt"
	"sync"

	"productivity-tracker/backend/internal/models"
	"productivity-tracker/backend/internal/storage"
)

// ErrPersistence marks a failed storage write. The triggering mutation is
// rolled back in memory, so success is never reported after a failed save.
var ErrPersistence = errors.New("persistence failure")

// Change flags which collections a mutation touched.
type Change uint8

const (
	ChangedTasks Change = 1 << iota
	ChangedHabits
	ChangedGoals
)

// Data is a working view of all three collections. Mutation callbacks may
// append, remove, and reassign elements, but must not mutate through
// pointer fields of the previous generation (replace pointers instead) so
// a failed save can roll back cleanly.
type Data struct {
	Tasks  []models.Task
	Habits []models.Habit
	Goals  []models.Goal
}

// Store owns the in-memory collections. It is the single authoritative
// owner of entity state: every mutation goes through Update, persists
// synchronously, and bumps the revision counter.
type Store struct {
	mu       sync.Mutex
	storage  storage.Storage
	data     Data
	revision uint64
}

// Open loads the full record set from the storage collaborator.
func Open(st storage.Storage) (*Store, error) {
	tasks, err := st.LoadTasks()
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	habits, err := st.LoadHabits()
	if err != nil {
		return nil, fmt.Errorf("load habits: %w", err)
	}
	goals, err := st.LoadGoals()
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}

	return &Store{
		storage: st,
		data:    Data{Tasks: tasks, Habits: habits, Goals: goals},
	}, nil
}

// Revision returns a counter that increases on every committed mutation.
// Readers may use it as a cache key: equal revisions mean identical state.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// View runs fn with a read-only snapshot of the collections.
func (s *Store) View(fn func(d Data)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.copyData())
}

// Update runs fn against a working copy, persists whichever collections fn
// reports changed, and commits the copy on success. If any save fails the
// in-memory state is left untouched and an ErrPersistence-wrapped error is
// returned. Errors from fn itself abort before anything is written.
func (s *Store) Update(fn func(d *Data) (Change, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.copyData()
	change, err := fn(&working)
	if err != nil {
		return err
	}
	if change == 0 {
		return nil
	}

	if change&ChangedTasks != 0 {
		if err := s.storage.SaveTasks(working.Tasks); err != nil {
			return fmt.Errorf("%w: save tasks: %v", ErrPersistence, err)
		}
	}
	if change&ChangedHabits != 0 {
		if err := s.storage.SaveHabits(working.Habits); err != nil {
			return fmt.Errorf("%w: save habits: %v", ErrPersistence, err)
		}
	}
	if change&ChangedGoals != 0 {
		if err := s.storage.SaveGoals(working.Goals); err != nil {
			return fmt.Errorf("%w: save goals: %v", ErrPersistence, err)
		}
	}

	s.data = working
	s.revision++
	return nil
}

func (s *Store) copyData() Data {
	return Data{
		Tasks:  append([]models.Task{}, s.data.Tasks...),
		Habits: append([]models.Habit{}, s.data.Habits...),
		Goals:  append([]models.Goal{}, s.data.Goals...),
	}
}
