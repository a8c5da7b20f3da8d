package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"productivity-tracker/backend/internal/models"
	"productivity-tracker/backend/internal/store"

	"github.com/gofrs/uuid"
)

// GoalService owns goal CRUD and progress aggregation. Goals hold no
// children; deleting one unlinks every referencing task and habit in the
// same operation.
type GoalService struct {
	store *store.Store
	nowFn func() time.Time
}

func NewGoalService(s *store.Store) *GoalService {
	return &GoalService{store: s, nowFn: time.Now}
}

type GoalInput struct {
	Title       string
	Description string
	TimeGoal    *float64
}

type GoalUpdate struct {
	Title         *string
	Description   *string
	TimeGoal      *float64
	ClearTimeGoal bool
}

// GoalProgress reconciles a goal's heterogeneous children: tasks complete
// by flag, habits complete by having checked in today. TimePercentage is
// deliberately uncapped so over-completion stays visible.
type GoalProgress struct {
	Total           int      `json:"total"`
	Completed       int      `json:"completed"`
	TasksTotal      int      `json:"tasks_total"`
	TasksCompleted  int      `json:"tasks_completed"`
	HabitsTotal     int      `json:"habits_total"`
	HabitsCompleted int      `json:"habits_completed"`
	Percentage      float64  `json:"percentage"`
	TimeGoal        *float64 `json:"time_goal,omitempty"`
	TimeSpent       float64  `json:"time_spent"`
	TimePercentage  *float64 `json:"time_percentage,omitempty"`
}

func (s *GoalService) Create(in GoalInput) (models.Goal, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.Goal{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.TimeGoal != nil && *in.TimeGoal <= 0 {
		return models.Goal{}, fmt.Errorf("%w: time_goal must be positive", ErrValidation)
	}

	goal := models.Goal{
		ID:          uuid.Must(uuid.NewV4()),
		Title:       in.Title,
		Description: in.Description,
		TimeGoal:    in.TimeGoal,
		CreatedAt:   s.nowFn(),
	}

	err := s.store.Update(func(d *store.Data) (store.Change, error) {
		d.Goals = append(d.Goals, goal)
		return store.ChangedGoals, nil
	})
	if err != nil {
		return models.Goal{}, err
	}
	return goal, nil
}

func (s *GoalService) Update(id uuid.UUID, in GoalUpdate) (models.Goal, error) {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return models.Goal{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.TimeGoal != nil && *in.TimeGoal <= 0 {
		return models.Goal{}, fmt.Errorf("%w: time_goal must be positive", ErrValidation)
	}

	var updated models.Goal
	err := s.store.Update(func(d *store.Data) (store.Change, error) {
		i := findGoal(d.Goals, id)
		if i < 0 {
			return 0, fmt.Errorf("%w: goal %s", ErrNotFound, id)
		}
		g := &d.Goals[i]
		if in.Title != nil {
			g.Title = *in.Title
		}
		if in.Description != nil {
			g.Description = *in.Description
		}
		if in.ClearTimeGoal {
			g.TimeGoal = nil
		} else if in.TimeGoal != nil {
			tg := *in.TimeGoal
			g.TimeGoal = &tg
		}
		updated = *g
		return store.ChangedGoals, nil
	})
	if err != nil {
		return models.Goal{}, err
	}
	return updated, nil
}

// Delete removes the goal and clears goal_id on every task and habit that
// referenced it. Dependents themselves are never deleted.
func (s *GoalService) Delete(id uuid.UUID) error {
	return s.store.Update(func(d *store.Data) (store.Change, error) {
		i := findGoal(d.Goals, id)
		if i < 0 {
			return 0, fmt.Errorf("%w: goal %s", ErrNotFound, id)
		}
		d.Goals = append(d.Goals[:i], d.Goals[i+1:]...)
		change := store.ChangedGoals

		for j := range d.Tasks {
			if d.Tasks[j].GoalID != nil && *d.Tasks[j].GoalID == id {
				d.Tasks[j].GoalID = nil
				change |= store.ChangedTasks
			}
		}
		for j := range d.Habits {
			if d.Habits[j].GoalID != nil && *d.Habits[j].GoalID == id {
				d.Habits[j].GoalID = nil
				change |= store.ChangedHabits
			}
		}
		return change, nil
	})
}

func (s *GoalService) List() []models.Goal {
	var out []models.Goal
	s.store.View(func(d store.Data) {
		out = append([]models.Goal{}, d.Goals...)
	})
	return out
}

// Progress computes completion and time-budget ratios for one goal.
// Reading progress consults "now", so the lazy expiry sweep runs first and
// any detected transitions are persisted.
func (s *GoalService) Progress(id uuid.UUID) (GoalProgress, error) {
	now := s.nowFn()
	var (
		progress GoalProgress
		found    bool
	)
	err := s.store.Update(func(d *store.Data) (store.Change, error) {
		ch := sweepTasks(d, now)
		i := findGoal(d.Goals, id)
		if i < 0 {
			// Still persist sweep results before reporting not-found.
			return ch, nil
		}
		found = true
		progress = goalProgress(*d, d.Goals[i], now)
		return ch, nil
	})
	if err != nil {
		return GoalProgress{}, err
	}
	if !found {
		return GoalProgress{}, fmt.Errorf("%w: goal %s", ErrNotFound, id)
	}
	return progress, nil
}

// goalProgress is shared with the analytics aggregator so the per-goal
// breakdown there cannot drift from getGoalProgress.
func goalProgress(d store.Data, goal models.Goal, now time.Time) GoalProgress {
	p := GoalProgress{TimeGoal: goal.TimeGoal}

	for _, t := range d.Tasks {
		if t.IsRecurringTemplate || t.GoalID == nil || *t.GoalID != goal.ID {
			continue
		}
		p.TasksTotal++
		if t.Completed {
			p.TasksCompleted++
		}
		if t.TimeSpent != nil {
			p.TimeSpent += *t.TimeSpent
		}
	}

	for _, h := range d.Habits {
		if h.GoalID == nil || *h.GoalID != goal.ID {
			continue
		}
		p.HabitsTotal++
		if h.CheckIns.CheckedOn(now) {
			p.HabitsCompleted++
		}
	}

	p.Total = p.TasksTotal + p.HabitsTotal
	p.Completed = p.TasksCompleted + p.HabitsCompleted
	p.Percentage = percentage(p.Completed, p.Total)
	p.TimeSpent = round1(p.TimeSpent)

	if goal.TimeGoal != nil && *goal.TimeGoal > 0 {
		tp := round1(p.TimeSpent / *goal.TimeGoal * 100)
		p.TimePercentage = &tp
	}
	return p
}

// percentage returns completed/total as a percent rounded to one decimal,
// 0 when total is zero.
func percentage(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(completed) / float64(total) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func findGoal(goals []models.Goal, id uuid.UUID) int {
	for i := range goals {
		if goals[i].ID == id {
			return i
		}
	}
	return -1
}
