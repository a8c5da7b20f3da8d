package services

import (
	"reflect"
	"testing"
	"time"

	"productivity-tracker/backend/internal/models"
)

func newAnalyticsFixture(t *testing.T, now time.Time) (*AnalyticsService, *TaskService, *HabitService, *GoalService) {
	t.Helper()
	st := newTestStore(t)
	analytics := NewAnalyticsService(st)
	analytics.nowFn = func() time.Time { return now }
	tasks := NewTaskService(st)
	tasks.nowFn = func() time.Time { return now }
	habits := NewHabitService(st)
	habits.nowFn = func() time.Time { return now }
	goals := NewGoalService(st)
	goals.nowFn = func() time.Time { return now }
	return analytics, tasks, habits, goals
}

func TestSnapshotEmpty(t *testing.T) {
	analytics, _, _, _ := newAnalyticsFixture(t, testNow)

	snap, err := analytics.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Overall.Total != 0 || snap.Overall.CompletionPercentage != 0 {
		t.Errorf("expected empty overall breakdown, got %+v", snap.Overall)
	}
	if len(snap.ByPriority) != len(models.Priorities) {
		t.Errorf("expected a breakdown per priority, got %d", len(snap.ByPriority))
	}
	if snap.ByGoal.TotalGoals != 0 {
		t.Errorf("expected no goals, got %d", snap.ByGoal.TotalGoals)
	}
}

func TestSnapshotBreakdowns(t *testing.T) {
	analytics, tasks, _, goals := newAnalyticsFixture(t, testNow)
	goal, _ := goals.Create(GoalInput{Title: "health"})

	done, _ := tasks.Create(TaskInput{Title: "a", Priority: models.PriorityNow, GoalID: &goal.ID})
	if _, err := tasks.Toggle(done.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := tasks.Create(TaskInput{Title: "b", Priority: models.PriorityNow}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := tasks.Create(TaskInput{Title: "c", Priority: models.PriorityLater}); err != nil {
		t.Fatalf("create: %v", err)
	}

	snap, err := analytics.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if snap.Overall.Total != 3 || snap.Overall.Completed != 1 || snap.Overall.Incomplete != 2 {
		t.Errorf("overall = %+v", snap.Overall)
	}
	if snap.Overall.CompletionPercentage != 33.3 {
		t.Errorf("completion percentage = %v, want 33.3", snap.Overall.CompletionPercentage)
	}

	now := snap.ByPriority[models.PriorityNow]
	if now.Total != 2 || now.Completed != 1 || now.CompletionPercentage != 50.0 {
		t.Errorf("Now breakdown = %+v", now)
	}
	if later := snap.ByPriority[models.PriorityLater]; later.Total != 1 || later.Completed != 0 {
		t.Errorf("Later breakdown = %+v", later)
	}

	if snap.ByGoal.TasksWithGoals != 1 || snap.ByGoal.TasksWithoutGoals != 2 {
		t.Errorf("goal linkage counts = %+v", snap.ByGoal)
	}
	if snap.TimeStats.CompletedToday != 1 || snap.TimeStats.CreatedToday != 3 {
		t.Errorf("time stats = %+v", snap.TimeStats)
	}
}

func TestSnapshotExcludesTemplates(t *testing.T) {
	analytics, tasks, _, _ := newAnalyticsFixture(t, testNow)
	due := day(t, "2025-03-10")
	if _, err := tasks.Create(TaskInput{Title: "daily", DueDate: &due, Recurrence: models.RecurrenceDaily}); err != nil {
		t.Fatalf("create: %v", err)
	}

	snap, err := analytics.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	// Template plus one generated instance; only the instance counts.
	if snap.Overall.Total != 1 {
		t.Errorf("overall total = %d, want 1", snap.Overall.Total)
	}
}

func TestSnapshotCountsExpiryAsOverdue(t *testing.T) {
	analytics, tasks, _, _ := newAnalyticsFixture(t, testNow)
	overdue := day(t, "2025-03-01")
	if _, err := tasks.Create(TaskInput{Title: "stale", DueDate: &overdue}); err != nil {
		t.Fatalf("create: %v", err)
	}
	soon := day(t, "2025-03-12")
	if _, err := tasks.Create(TaskInput{Title: "soon", DueDate: &soon}); err != nil {
		t.Fatalf("create: %v", err)
	}

	snap, err := analytics.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if snap.Overall.Total != 2 || snap.Overall.NotCompleted != 1 {
		t.Errorf("expiring a task must move it to not_completed without changing the total: %+v", snap.Overall)
	}
	if snap.TimeStats.OverdueCount != 1 {
		t.Errorf("overdue count = %d, want 1", snap.TimeStats.OverdueCount)
	}
	if snap.TimeStats.DueSoonCount != 1 {
		t.Errorf("due soon count = %d, want 1", snap.TimeStats.DueSoonCount)
	}
}

func TestSnapshotIdempotent(t *testing.T) {
	analytics, tasks, habits, goals := newAnalyticsFixture(t, testNow)
	goal, _ := goals.Create(GoalInput{Title: "health", TimeGoal: float64Ptr(10)})
	overdue := day(t, "2025-03-01")
	if _, err := tasks.Create(TaskInput{Title: "stale", DueDate: &overdue, GoalID: &goal.ID}); err != nil {
		t.Fatalf("create: %v", err)
	}
	habit, _ := habits.Create(HabitInput{Title: "stretch", GoalID: &goal.ID})
	if _, err := habits.CheckIn(habit.ID, ""); err != nil {
		t.Fatalf("check in: %v", err)
	}

	first, err := analytics.Snapshot()
	if err != nil {
		t.Fatalf("first snapshot: %v", err)
	}
	second, err := analytics.Snapshot()
	if err != nil {
		t.Fatalf("second snapshot: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("consecutive snapshots differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestProductivityRanking(t *testing.T) {
	analytics, tasks, _, goals := newAnalyticsFixture(t, testNow)

	busy, _ := goals.Create(GoalInput{Title: "busy"})
	productive, _ := goals.Create(GoalInput{Title: "productive"})
	if _, err := goals.Create(GoalInput{Title: "empty"}); err != nil {
		t.Fatalf("create goal: %v", err)
	}

	for _, title := range []string{"a", "b", "c"} {
		if _, err := tasks.Create(TaskInput{Title: title, GoalID: &busy.ID}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	done, _ := tasks.Create(TaskInput{Title: "win", GoalID: &productive.ID})
	if _, err := tasks.Toggle(done.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	snap, err := analytics.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	p := snap.Productivity

	if p.MostProductiveGoal != "productive" || p.MostProductiveCompletionRate != 100.0 {
		t.Errorf("most productive = %q at %v", p.MostProductiveGoal, p.MostProductiveCompletionRate)
	}
	if p.GoalWithMostTasks != "busy" || p.MaxTasksInGoal != 3 {
		t.Errorf("goal with most tasks = %q (%d)", p.GoalWithMostTasks, p.MaxTasksInGoal)
	}
	if got := p.GoalDistribution["busy"]; got != 75.0 {
		t.Errorf("busy share = %v, want 75.0", got)
	}
	if got := p.GoalDistribution["productive"]; got != 25.0 {
		t.Errorf("productive share = %v, want 25.0", got)
	}
	// The goal with no items never becomes most productive.
	if p.MostProductiveGoal == "empty" {
		t.Error("empty goal must not rank as most productive")
	}
}
