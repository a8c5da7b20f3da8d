package storage

import (
	"fmt"

	"productivity-tracker/backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage is the persistence collaborator: it loads the full record set at
// startup and durably replaces whole collections after each mutation.
type Storage interface {
	LoadTasks() ([]models.Task, error)
	LoadHabits() ([]models.Habit, error)
	LoadGoals() ([]models.Goal, error)
	SaveTasks([]models.Task) error
	SaveHabits([]models.Habit) error
	SaveGoals([]models.Goal) error
}

type GormStorage struct {
	db *gorm.DB
}

// Open connects to the configured database and migrates the schema.
// driver is "sqlite" or "postgres"; dsn is the driver-specific DSN.
func Open(driver, dsn string) (*GormStorage, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&models.Task{}, &models.Habit{}, &models.Goal{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &GormStorage{db: db}, nil
}

func (s *GormStorage) LoadTasks() ([]models.Task, error) {
	var tasks []models.Task
	if err := s.db.Order("created_at").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return tasks, nil
}

func (s *GormStorage) LoadHabits() ([]models.Habit, error) {
	var habits []models.Habit
	if err := s.db.Order("created_at").Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}
	return habits, nil
}

func (s *GormStorage) LoadGoals() ([]models.Goal, error) {
	var goals []models.Goal
	if err := s.db.Order("created_at").Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}
	return goals, nil
}

func (s *GormStorage) SaveTasks(tasks []models.Task) error {
	return s.replace(&models.Task{}, func(tx *gorm.DB) error {
		if len(tasks) == 0 {
			return nil
		}
		return tx.CreateInBatches(tasks, 100).Error
	})
}

func (s *GormStorage) SaveHabits(habits []models.Habit) error {
	return s.replace(&models.Habit{}, func(tx *gorm.DB) error {
		if len(habits) == 0 {
			return nil
		}
		return tx.CreateInBatches(habits, 100).Error
	})
}

func (s *GormStorage) SaveGoals(goals []models.Goal) error {
	return s.replace(&models.Goal{}, func(tx *gorm.DB) error {
		if len(goals) == 0 {
			return nil
		}
		return tx.CreateInBatches(goals, 100).Error
	})
}

// replace swaps out a whole collection inside one transaction so a crash
// mid-write never leaves a half-saved table.
func (s *GormStorage) replace(model interface{}, insert func(tx *gorm.DB) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
		return insert(tx)
	})
}
