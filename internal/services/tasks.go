package services

import (
	"fmt"
	"strings"
	"time"

	"productivity-tracker/backend/internal/models"
	"productivity-tracker/backend/internal/recurrence"
	"productivity-tracker/backend/internal/store"

	"github.com/gofrs/uuid"
)

// TaskService owns task CRUD and the completion state machine:
// Pending -> Completed (toggle), Completed -> Pending (undo),
// Pending -> NotCompleted (lazy expiry once a due date is >24h past).
// NotCompleted is terminal. Resolving a recurring instance, by completion
// or expiry, immediately materializes the next one.
type TaskService struct {
	store *store.Store
	nowFn func() time.Time
}

func NewTaskService(s *store.Store) *TaskService {
	return &TaskService{store: s, nowFn: time.Now}
}

type TaskInput struct {
	Title             string
	Description       string
	Priority          models.Priority
	DueDate           *time.Time
	GoalID            *uuid.UUID
	TimeSpent         *float64
	Recurrence        models.Recurrence
	RecurrenceEndDate *time.Time
}

// TaskUpdate applies a partial update; nil fields are left unchanged.
// Clear* flags unset the corresponding optional field. Setting Recurrence
// to the empty string strips all recurrence fields.
type TaskUpdate struct {
	Title                  *string
	Description            *string
	Priority               *models.Priority
	DueDate                *time.Time
	ClearDueDate           bool
	GoalID                 *uuid.UUID
	ClearGoalID            bool
	TimeSpent              *float64
	Recurrence             *models.Recurrence
	RecurrenceEndDate      *time.Time
	ClearRecurrenceEndDate bool
}

func (s *TaskService) Create(in TaskInput) (models.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.Task{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.Priority == "" {
		in.Priority = models.PriorityNext
	}
	if !in.Priority.Valid() {
		return models.Task{}, fmt.Errorf("%w: unknown priority %q", ErrValidation, in.Priority)
	}
	if in.TimeSpent != nil && *in.TimeSpent < 0 {
		return models.Task{}, fmt.Errorf("%w: time_spent must not be negative", ErrValidation)
	}
	if in.Recurrence != "" && !in.Recurrence.Valid() {
		return models.Task{}, fmt.Errorf("%w: unknown recurrence %q", ErrValidation, in.Recurrence)
	}

	now := s.nowFn()
	task := models.Task{
		ID:          uuid.Must(uuid.NewV4()),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		GoalID:      in.GoalID,
		TimeSpent:   normalizeTimeSpent(in.TimeSpent),
		CreatedAt:   now,
	}
	if in.Recurrence != "" {
		task.Recurrence = in.Recurrence
		task.IsRecurringTemplate = true
		task.RecurrenceEndDate = in.RecurrenceEndDate
	}

	err := s.store.Update(func(d *store.Data) (store.Change, error) {
		d.Tasks = append(d.Tasks, task)
		// A new template with a due date gets its first instance right away.
		if task.IsRecurringTemplate && task.DueDate != nil {
			recurrence.Materialize(&d.Tasks, task, now, now)
		}
		return store.ChangedTasks, nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskService) Update(id uuid.UUID, in TaskUpdate) (models.Task, error) {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return models.Task{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.Priority != nil && !in.Priority.Valid() {
		return models.Task{}, fmt.Errorf("%w: unknown priority %q", ErrValidation, *in.Priority)
	}
	if in.TimeSpent != nil && *in.TimeSpent < 0 {
		return models.Task{}, fmt.Errorf("%w: time_spent must not be negative", ErrValidation)
	}
	if in.Recurrence != nil && *in.Recurrence != "" && !in.Recurrence.Valid() {
		return models.Task{}, fmt.Errorf("%w: unknown recurrence %q", ErrValidation, *in.Recurrence)
	}

	var updated models.Task
	err := s.store.Update(func(d *store.Data) (store.Change, error) {
		i := findTask(d.Tasks, id)
		if i < 0 {
			return 0, fmt.Errorf("%w: task %s", ErrNotFound, id)
		}
		t := &d.Tasks[i]

		if in.Title != nil {
			t.Title = *in.Title
		}
		if in.Description != nil {
			t.Description = *in.Description
		}
		if in.Priority != nil {
			t.Priority = *in.Priority
		}
		if in.ClearDueDate {
			t.DueDate = nil
		} else if in.DueDate != nil {
			due := *in.DueDate
			t.DueDate = &due
		}
		if in.ClearGoalID {
			t.GoalID = nil
		} else if in.GoalID != nil {
			gid := *in.GoalID
			t.GoalID = &gid
		}
		if in.TimeSpent != nil {
			t.TimeSpent = normalizeTimeSpent(in.TimeSpent)
		}
		if in.Recurrence != nil {
			if *in.Recurrence == "" {
				t.Recurrence = ""
				t.IsRecurringTemplate = false
				t.RecurrenceEndDate = nil
				t.ParentTaskID = nil
			} else {
				t.Recurrence = *in.Recurrence
				t.IsRecurringTemplate = true
				t.ParentTaskID = nil
			}
		}
		if in.ClearRecurrenceEndDate {
			t.RecurrenceEndDate = nil
		} else if in.RecurrenceEndDate != nil {
			end := *in.RecurrenceEndDate
			t.RecurrenceEndDate = &end
		}

		updated = *t
		return store.ChangedTasks, nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return updated, nil
}

// Toggle flips a pending task to completed, or undoes a completion.
// Completing a recurring instance triggers eager regeneration; undo does
// not, since the next instance already exists. Not-completed tasks are
// terminal and cannot be toggled.
func (s *TaskService) Toggle(id uuid.UUID) (models.Task, error) {
	now := s.nowFn()
	var toggled models.Task
	err := s.store.Update(func(d *store.Data) (store.Change, error) {
		i := findTask(d.Tasks, id)
		if i < 0 {
			return 0, fmt.Errorf("%w: task %s", ErrNotFound, id)
		}
		t := &d.Tasks[i]
		if t.IsRecurringTemplate {
			return 0, fmt.Errorf("%w: recurring templates are not actionable", ErrValidation)
		}
		if t.NotCompleted {
			return 0, fmt.Errorf("%w: task is marked not completed", ErrValidation)
		}

		if t.Completed {
			t.Completed = false
			t.CompletedAt = nil
		} else {
			ts := now
			t.Completed = true
			t.CompletedAt = &ts
			resolveInstance(d, d.Tasks[i], now)
		}
		toggled = d.Tasks[i]
		return store.ChangedTasks, nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return toggled, nil
}

func (s *TaskService) Delete(id uuid.UUID) error {
	return s.store.Update(func(d *store.Data) (store.Change, error) {
		i := findTask(d.Tasks, id)
		if i < 0 {
			return 0, fmt.Errorf("%w: task %s", ErrNotFound, id)
		}
		d.Tasks = append(d.Tasks[:i], d.Tasks[i+1:]...)
		return store.ChangedTasks, nil
	})
}

// List returns every task record after running the lazy sweep: overdue
// pending tasks expire, and templates missing an open instance are
// materialized. Any transitions detected are persisted before returning.
func (s *TaskService) List() ([]models.Task, error) {
	now := s.nowFn()
	var out []models.Task
	err := s.store.Update(func(d *store.Data) (store.Change, error) {
		ch := sweepTasks(d, now)
		out = append([]models.Task{}, d.Tasks...)
		return ch, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Active returns the actionable view: no templates, no not-completed tasks.
func (s *TaskService) Active() ([]models.Task, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	active := make([]models.Task, 0, len(all))
	for _, t := range all {
		if t.Actionable() {
			active = append(active, t)
		}
	}
	return active, nil
}

func (s *TaskService) Search(query string) ([]models.Task, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	matched := make([]models.Task, 0)
	for _, t := range all {
		if strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

type TaskFilter struct {
	Priority  *models.Priority
	Completed *bool
	DueDate   *time.Time
	GoalID    *uuid.UUID
}

func (s *TaskService) Filter(f TaskFilter) ([]models.Task, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	matched := make([]models.Task, 0)
	for _, t := range all {
		if f.Priority != nil && t.Priority != *f.Priority {
			continue
		}
		if f.Completed != nil && t.Completed != *f.Completed {
			continue
		}
		if f.DueDate != nil && (t.DueDate == nil || !models.SameDay(*t.DueDate, *f.DueDate)) {
			continue
		}
		if f.GoalID != nil && (t.GoalID == nil || *t.GoalID != *f.GoalID) {
			continue
		}
		matched = append(matched, t)
	}
	return matched, nil
}

// DueWithin returns pending tasks whose due date falls inside the next
// `hours` hours, measured from end of the due day. Used by the external
// reminder scheduler; the core never sends mail itself.
func (s *TaskService) DueWithin(hours int) ([]models.Task, error) {
	now := s.nowFn()
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	window := time.Duration(hours) * time.Hour
	due := make([]models.Task, 0)
	for _, t := range all {
		if t.IsRecurringTemplate || !t.Open() || t.DueDate == nil {
			continue
		}
		left := models.EndOfDay(*t.DueDate).Sub(now)
		if left >= 0 && left <= window {
			due = append(due, t)
		}
	}
	return due, nil
}

// sweepTasks applies lazy expiry and recurrence materialization until the
// state is stable. Expiring an instance counts as resolving it, so the next
// occurrence is generated in the same pass; repeated rounds let a template
// that sat idle catch up one period at a time without ever holding more
// than one open instance.
func sweepTasks(d *store.Data, now time.Time) store.Change {
	var changed store.Change
	for {
		dirty := false

		for i := range d.Tasks {
			t := &d.Tasks[i]
			if t.IsRecurringTemplate || !t.Open() || t.DueDate == nil {
				continue
			}
			if now.Sub(models.EndOfDay(*t.DueDate)) > 24*time.Hour {
				ts := now
				t.NotCompleted = true
				t.NotCompletedAt = &ts
				dirty = true
			}
		}

		var templates []models.Task
		for _, t := range d.Tasks {
			if t.IsRecurringTemplate {
				templates = append(templates, t)
			}
		}
		for _, tmpl := range templates {
			if recurrence.Materialize(&d.Tasks, tmpl, now, now) {
				dirty = true
			}
		}

		if !dirty {
			return changed
		}
		changed = store.ChangedTasks
	}
}

// resolveInstance regenerates the next occurrence after an instance reaches
// completed or not-completed.
func resolveInstance(d *store.Data, inst models.Task, now time.Time) {
	if inst.ParentTaskID == nil {
		return
	}
	for _, t := range d.Tasks {
		if t.ID == *inst.ParentTaskID && t.IsRecurringTemplate {
			recurrence.Materialize(&d.Tasks, t, now, now)
			return
		}
	}
}

func findTask(tasks []models.Task, id uuid.UUID) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// normalizeTimeSpent treats zero as "unset", matching how time tracking is
// entered from the UI.
func normalizeTimeSpent(v *float64) *float64 {
	if v == nil || *v == 0 {
		return nil
	}
	out := *v
	return &out
}
