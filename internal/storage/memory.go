package storage

import (
	"sync"

	"productivity-tracker/backend/internal/models"
)

// Memory is an in-process Storage used by tests and by the "memory"
// database driver. Contents are lost on shutdown.
type Memory struct {
	mu     sync.Mutex
	tasks  []models.Task
	habits []models.Habit
	goals  []models.Goal

	// FailSaves makes every Save* call fail, for exercising persistence
	// error paths in tests.
	FailSaves error
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) LoadTasks() ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Task{}, m.tasks...), nil
}

func (m *Memory) LoadHabits() ([]models.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Habit{}, m.habits...), nil
}

func (m *Memory) LoadGoals() ([]models.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Goal{}, m.goals...), nil
}

func (m *Memory) SaveTasks(tasks []models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaves != nil {
		return m.FailSaves
	}
	m.tasks = append([]models.Task{}, tasks...)
	return nil
}

func (m *Memory) SaveHabits(habits []models.Habit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaves != nil {
		return m.FailSaves
	}
	m.habits = append([]models.Habit{}, habits...)
	return nil
}

func (m *Memory) SaveGoals(goals []models.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaves != nil {
		return m.FailSaves
	}
	m.goals = append([]models.Goal{}, goals...)
	return nil
}
