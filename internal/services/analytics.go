package services

import (
	"sort"
	"time"

	"productivity-tracker/backend/internal/models"
	"productivity-tracker/backend/internal/store"
)

// AnalyticsService derives a full statistics snapshot from current state.
// Every call recomputes from scratch; at hundreds of records that costs
// less than keeping an incremental cache coherent. Reading a snapshot
// consults "now", so the lazy expiry sweep runs first.
type AnalyticsService struct {
	store *store.Store
	nowFn func() time.Time
}

func NewAnalyticsService(s *store.Store) *AnalyticsService {
	return &AnalyticsService{store: s, nowFn: time.Now}
}

// Breakdown is a completion tally over a set of tasks.
type Breakdown struct {
	Total                int     `json:"total"`
	Completed            int     `json:"completed"`
	Incomplete           int     `json:"incomplete"`
	NotCompleted         int     `json:"not_completed"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

// GoalBreakdown is a goal's progress plus its display name, keyed by goal
// id in the snapshot.
type GoalBreakdown struct {
	GoalName string `json:"goal_name"`
	GoalProgress
}

type GoalStats struct {
	Goals             map[string]GoalBreakdown `json:"goals"`
	TasksWithGoals    int                      `json:"tasks_with_goals"`
	TasksWithoutGoals int                      `json:"tasks_without_goals"`
	TotalGoals        int                      `json:"total_goals"`
}

type TimeStats struct {
	OverdueCount      int     `json:"overdue_count"`
	DueSoonCount      int     `json:"due_soon_count"`
	CompletedToday    int     `json:"completed_today"`
	CreatedToday      int     `json:"created_today"`
	AvgCompletionDays float64 `json:"avg_completion_days"`
}

type Productivity struct {
	MostProductiveGoal           string             `json:"most_productive_goal"`
	MostProductiveCompletionRate float64            `json:"most_productive_completion_rate"`
	GoalWithMostTasks            string             `json:"goal_with_most_tasks"`
	MaxTasksInGoal               int                `json:"max_tasks_in_goal"`
	GoalDistribution             map[string]float64 `json:"goal_distribution"`
}

type Snapshot struct {
	Overall      Breakdown                     `json:"overall"`
	ByPriority   map[models.Priority]Breakdown `json:"by_priority"`
	ByGoal       GoalStats                     `json:"by_goal"`
	TimeStats    TimeStats                     `json:"time_stats"`
	Productivity Productivity                  `json:"productivity"`
}

// Snapshot computes the full statistics snapshot. Templates are excluded
// everywhere: only actionable tasks and their terminal outcomes count.
func (s *AnalyticsService) Snapshot() (Snapshot, error) {
	now := s.nowFn()
	var snap Snapshot
	err := s.store.Update(func(d *store.Data) (store.Change, error) {
		ch := sweepTasks(d, now)
		snap = buildSnapshot(*d, now)
		return ch, nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func buildSnapshot(d store.Data, now time.Time) Snapshot {
	tasks := make([]models.Task, 0, len(d.Tasks))
	for _, t := range d.Tasks {
		if !t.IsRecurringTemplate {
			tasks = append(tasks, t)
		}
	}

	snap := Snapshot{
		Overall:    breakdown(tasks),
		ByPriority: make(map[models.Priority]Breakdown, len(models.Priorities)),
	}

	for _, p := range models.Priorities {
		var subset []models.Task
		for _, t := range tasks {
			if t.Priority == p {
				subset = append(subset, t)
			}
		}
		snap.ByPriority[p] = breakdown(subset)
	}

	snap.ByGoal = goalStats(d, tasks, now)
	snap.TimeStats = timeStats(tasks, now)
	snap.Productivity = productivity(snap.ByGoal.Goals, len(tasks))
	return snap
}

func breakdown(tasks []models.Task) Breakdown {
	b := Breakdown{Total: len(tasks)}
	for _, t := range tasks {
		switch {
		case t.Completed:
			b.Completed++
		case t.NotCompleted:
			b.NotCompleted++
		default:
			b.Incomplete++
		}
	}
	b.CompletionPercentage = percentage(b.Completed, b.Total)
	return b
}

func goalStats(d store.Data, tasks []models.Task, now time.Time) GoalStats {
	gs := GoalStats{
		Goals:      make(map[string]GoalBreakdown, len(d.Goals)),
		TotalGoals: len(d.Goals),
	}

	for _, g := range d.Goals {
		gs.Goals[g.ID.String()] = GoalBreakdown{
			GoalName:     g.Title,
			GoalProgress: goalProgress(d, g, now),
		}
	}

	for _, t := range tasks {
		if t.GoalID != nil {
			gs.TasksWithGoals++
		} else {
			gs.TasksWithoutGoals++
		}
	}
	return gs
}

func timeStats(tasks []models.Task, now time.Time) TimeStats {
	var ts TimeStats
	var completionDays float64
	completedCount := 0

	for _, t := range tasks {
		if t.NotCompleted {
			ts.OverdueCount++
		}
		if t.Open() && t.DueDate != nil {
			left := models.EndOfDay(*t.DueDate).Sub(now)
			if left >= 0 && left <= 7*24*time.Hour {
				ts.DueSoonCount++
			}
		}
		if t.CompletedAt != nil && models.SameDay(*t.CompletedAt, now) {
			ts.CompletedToday++
		}
		if models.SameDay(t.CreatedAt, now) {
			ts.CreatedToday++
		}
		if t.Completed && t.CompletedAt != nil {
			completionDays += t.CompletedAt.Sub(t.CreatedAt).Hours() / 24
			completedCount++
		}
	}

	if completedCount > 0 {
		ts.AvgCompletionDays = round1(completionDays / float64(completedCount))
	}
	return ts
}

func productivity(goals map[string]GoalBreakdown, totalTasks int) Productivity {
	p := Productivity{GoalDistribution: make(map[string]float64)}

	// Deterministic iteration so ties resolve the same way every call.
	ids := make([]string, 0, len(goals))
	for id := range goals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return goals[ids[i]].GoalName < goals[ids[j]].GoalName
	})

	for _, id := range ids {
		g := goals[id]
		if g.Total >= 1 && g.Percentage > p.MostProductiveCompletionRate {
			p.MostProductiveCompletionRate = g.Percentage
			p.MostProductiveGoal = g.GoalName
		}
		if g.TasksTotal > p.MaxTasksInGoal {
			p.MaxTasksInGoal = g.TasksTotal
			p.GoalWithMostTasks = g.GoalName
		}
	}

	// Top five goals by share of all tasks.
	type share struct {
		name string
		pct  float64
	}
	shares := make([]share, 0, len(ids))
	for _, id := range ids {
		g := goals[id]
		pct := 0.0
		if totalTasks > 0 {
			pct = round1(float64(g.TasksTotal) / float64(totalTasks) * 100)
		}
		shares = append(shares, share{name: g.GoalName, pct: pct})
	}
	sort.SliceStable(shares, func(i, j int) bool { return shares[i].pct > shares[j].pct })
	if len(shares) > 5 {
		shares = shares[:5]
	}
	for _, sh := range shares {
		p.GoalDistribution[sh.name] = sh.pct
	}
	return p
}
