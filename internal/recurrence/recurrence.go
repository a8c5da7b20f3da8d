// Package recurrence expands recurring-task templates into concrete dated
// instances. The engine keeps at most one open instance per template alive
// and regenerates eagerly whenever an instance resolves.
package recurrence

import (
	"time"

	"productivity-tracker/backend/internal/models"

	"github.com/gofrs/uuid"
)

// NextDue advances a due date by one recurrence period. Monthly and yearly
// advancement clamps to the last valid day of the target month, so Jan 31
// rolls to Feb 28 (or 29), never into March.
func NextDue(last time.Time, r models.Recurrence) time.Time {
	switch r {
	case models.RecurrenceDaily:
		return last.AddDate(0, 0, 1)
	case models.RecurrenceWeekly:
		return last.AddDate(0, 0, 7)
	case models.RecurrenceMonthly:
		return addMonthsClamped(last, 1)
	case models.RecurrenceYearly:
		return addMonthsClamped(last, 12)
	}
	return last
}

func addMonthsClamped(t time.Time, months int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()

	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, t.Location())
}

// Ended reports whether the template's recurrence window has closed as of
// asOf. The end date is inclusive: recurrence ends only once the current
// day is past it.
func Ended(tmpl models.Task, asOf time.Time) bool {
	if tmpl.RecurrenceEndDate == nil {
		return false
	}
	return models.StartOfDay(asOf).After(models.StartOfDay(*tmpl.RecurrenceEndDate))
}

// HasOpenInstance reports whether any instance of the template is still
// pending.
func HasOpenInstance(tasks []models.Task, templateID uuid.UUID) bool {
	for _, t := range tasks {
		if t.ParentTaskID != nil && *t.ParentTaskID == templateID && t.Open() {
			return true
		}
	}
	return false
}

// LatestDue returns the most recent due date among the template's
// instances, falling back to the template's own due date. The second
// return is false when neither exists.
func LatestDue(tasks []models.Task, tmpl models.Task) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, t := range tasks {
		if t.ParentTaskID == nil || *t.ParentTaskID != tmpl.ID || t.DueDate == nil {
			continue
		}
		if !found || t.DueDate.After(latest) {
			latest = *t.DueDate
			found = true
		}
	}
	if found {
		return latest, true
	}
	if tmpl.DueDate != nil {
		return *tmpl.DueDate, true
	}
	return time.Time{}, false
}

// NextInstance builds the next instance of a template, due one period after
// lastDue. It returns false once recurrence has ended or the next due date
// would land past the inclusive end bound.
func NextInstance(tmpl models.Task, lastDue, asOf, now time.Time) (models.Task, bool) {
	if !tmpl.IsRecurringTemplate || !tmpl.Recurrence.Valid() {
		return models.Task{}, false
	}
	if Ended(tmpl, asOf) {
		return models.Task{}, false
	}

	due := NextDue(lastDue, tmpl.Recurrence)
	if tmpl.RecurrenceEndDate != nil && models.StartOfDay(due).After(models.StartOfDay(*tmpl.RecurrenceEndDate)) {
		return models.Task{}, false
	}

	parentID := tmpl.ID
	inst := models.Task{
		ID:           uuid.Must(uuid.NewV4()),
		Title:        tmpl.Title,
		Description:  tmpl.Description,
		Priority:     tmpl.Priority,
		DueDate:      &due,
		GoalID:       tmpl.GoalID,
		TimeSpent:    tmpl.TimeSpent,
		ParentTaskID: &parentID,
		CreatedAt:    now,
	}
	return inst, true
}

// Materialize appends the next instance for the template when none is open,
// reporting whether the task list changed.
func Materialize(d *[]models.Task, tmpl models.Task, asOf, now time.Time) bool {
	if HasOpenInstance(*d, tmpl.ID) {
		return false
	}
	lastDue, ok := LatestDue(*d, tmpl)
	if !ok {
		return false
	}
	inst, ok := NextInstance(tmpl, lastDue, asOf, now)
	if !ok {
		return false
	}
	*d = append(*d, inst)
	return true
}
