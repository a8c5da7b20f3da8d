package services

import (
	"errors"
	"testing"
	"time"

	"productivity-tracker/backend/internal/models"

	"github.com/gofrs/uuid"
)

func newHabitServiceAt(t *testing.T, now time.Time) *HabitService {
	t.Helper()
	svc := NewHabitService(newTestStore(t))
	svc.nowFn = func() time.Time { return now }
	return svc
}

func TestCreateHabitDefaults(t *testing.T) {
	svc := newHabitServiceAt(t, testNow)

	habit, err := svc.Create(HabitInput{Title: "meditate"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if habit.Priority != models.PriorityNext {
		t.Errorf("expected default priority Next, got %s", habit.Priority)
	}
	if habit.Frequency != models.FrequencyDaily {
		t.Errorf("expected default frequency daily, got %s", habit.Frequency)
	}
	if len(habit.CheckIns) != 0 {
		t.Errorf("expected empty check-in list, got %v", habit.CheckIns)
	}
}

func TestCreateHabitValidation(t *testing.T) {
	svc := newHabitServiceAt(t, testNow)

	if _, err := svc.Create(HabitInput{Title: "  "}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for empty title, got %v", err)
	}
	if _, err := svc.Create(HabitInput{Title: "a", Frequency: "hourly"}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for bad frequency, got %v", err)
	}
}

func TestCheckInDefaultsToToday(t *testing.T) {
	svc := newHabitServiceAt(t, testNow)
	habit, _ := svc.Create(HabitInput{Title: "meditate"})

	updated, err := svc.CheckIn(habit.ID, "")
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if !updated.CheckIns.Contains("2025-03-10") {
		t.Errorf("expected today recorded, got %v", updated.CheckIns)
	}
}

func TestCheckInIsIdempotent(t *testing.T) {
	svc := newHabitServiceAt(t, testNow)
	habit, _ := svc.Create(HabitInput{Title: "meditate"})

	if _, err := svc.CheckIn(habit.ID, "2025-03-09"); err != nil {
		t.Fatalf("check in: %v", err)
	}
	updated, err := svc.CheckIn(habit.ID, "2025-03-09")
	if err != nil {
		t.Fatalf("second check in: %v", err)
	}
	if len(updated.CheckIns) != 1 {
		t.Errorf("duplicate day must not be recorded twice: %v", updated.CheckIns)
	}
}

func TestCheckInRejectsBadDate(t *testing.T) {
	svc := newHabitServiceAt(t, testNow)
	habit, _ := svc.Create(HabitInput{Title: "meditate"})

	if _, err := svc.CheckIn(habit.ID, "03/09/2025"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for bad date, got %v", err)
	}
}

func TestUncheckRemovesDay(t *testing.T) {
	svc := newHabitServiceAt(t, testNow)
	habit, _ := svc.Create(HabitInput{Title: "meditate"})

	if _, err := svc.CheckIn(habit.ID, "2025-03-09"); err != nil {
		t.Fatalf("check in: %v", err)
	}
	updated, err := svc.Uncheck(habit.ID, "2025-03-09")
	if err != nil {
		t.Fatalf("uncheck: %v", err)
	}
	if updated.CheckIns.Contains("2025-03-09") {
		t.Errorf("expected day removed, got %v", updated.CheckIns)
	}

	// Unchecking a day that was never recorded is a no-op.
	if _, err := svc.Uncheck(habit.ID, "2025-01-01"); err != nil {
		t.Errorf("uncheck of absent day: %v", err)
	}
}

func TestCheckInMissingHabit(t *testing.T) {
	svc := newHabitServiceAt(t, testNow)
	if _, err := svc.CheckIn(uuid.Must(uuid.NewV4()), ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStreakCases(t *testing.T) {
	cases := []struct {
		name     string
		checkIns []string
		want     int
	}{
		{"no check-ins", nil, 0},
		{"only today", []string{"2025-03-10"}, 1},
		{"ending today", []string{"2025-03-08", "2025-03-09", "2025-03-10"}, 3},
		{"grace via yesterday", []string{"2025-03-07", "2025-03-08", "2025-03-09"}, 3},
		{"both today and yesterday missing", []string{"2025-03-07", "2025-03-08"}, 0},
		{"gap stops the count", []string{"2025-03-06", "2025-03-08", "2025-03-09", "2025-03-10"}, 3},
		{"old run only", []string{"2025-02-01", "2025-02-02"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newHabitServiceAt(t, testNow)
			habit, _ := svc.Create(HabitInput{Title: "meditate"})
			for _, d := range tc.checkIns {
				if _, err := svc.CheckIn(habit.ID, d); err != nil {
					t.Fatalf("check in %s: %v", d, err)
				}
			}
			got, err := svc.Streak(habit.ID)
			if err != nil {
				t.Fatalf("streak: %v", err)
			}
			if got != tc.want {
				t.Errorf("streak = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestStreakRecomputesAfterUncheck(t *testing.T) {
	svc := newHabitServiceAt(t, testNow)
	habit, _ := svc.Create(HabitInput{Title: "meditate"})
	for _, d := range []string{"2025-03-08", "2025-03-09", "2025-03-10"} {
		if _, err := svc.CheckIn(habit.ID, d); err != nil {
			t.Fatalf("check in: %v", err)
		}
	}

	if _, err := svc.Uncheck(habit.ID, "2025-03-09"); err != nil {
		t.Fatalf("uncheck: %v", err)
	}
	got, err := svc.Streak(habit.ID)
	if err != nil {
		t.Fatalf("streak: %v", err)
	}
	if got != 1 {
		t.Errorf("streak after breaking the chain = %d, want 1", got)
	}
}

func TestHabitFilter(t *testing.T) {
	svc := newHabitServiceAt(t, testNow)
	goalID := uuid.Must(uuid.NewV4())
	if _, err := svc.Create(HabitInput{Title: "run", Priority: models.PriorityNow, GoalID: &goalID}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(HabitInput{Title: "read", Priority: models.PriorityLater}); err != nil {
		t.Fatalf("create: %v", err)
	}

	p := models.PriorityNow
	got := svc.Filter(HabitFilter{Priority: &p})
	if len(got) != 1 || got[0].Title != "run" {
		t.Errorf("priority filter: got %v", got)
	}

	got = svc.Filter(HabitFilter{GoalID: &goalID})
	if len(got) != 1 || got[0].Title != "run" {
		t.Errorf("goal filter: got %v", got)
	}
}
