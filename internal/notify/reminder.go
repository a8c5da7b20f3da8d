// Package notify periodically finds tasks due soon and enqueues reminder
// jobs for the external mailer. The core's only involvement is the
// TasksDueWithin query; everything past the queue is someone else's job.
package notify

import (
	"fmt"
	"log"
	"sync"
	"time"

	"productivity-tracker/backend/internal/models"
	"productivity-tracker/backend/internal/services"
	"productivity-tracker/backend/internal/worker"

	"github.com/gofrs/uuid"
	"github.com/robfig/cron/v3"
)

type Config struct {
	// WindowHours is how far ahead to look for due tasks.
	WindowHours int
	// ResendAfter suppresses repeat reminders for the same task.
	ResendAfter time.Duration
	// Schedule is a cron expression for the sweep.
	Schedule string
}

func DefaultConfig() Config {
	return Config{
		WindowHours: 24,
		ResendAfter: 12 * time.Hour,
		Schedule:    "@hourly",
	}
}

// ReminderScheduler runs the recurring due-task sweep.
type ReminderScheduler struct {
	tasks *services.TaskService
	queue *worker.JobQueue
	cfg   Config
	cron  *cron.Cron
	nowFn func() time.Time

	mu       sync.Mutex
	lastSent map[uuid.UUID]time.Time
}

func NewReminderScheduler(tasks *services.TaskService, queue *worker.JobQueue, cfg Config) *ReminderScheduler {
	if cfg.WindowHours <= 0 {
		cfg.WindowHours = 24
	}
	if cfg.ResendAfter <= 0 {
		cfg.ResendAfter = 12 * time.Hour
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "@hourly"
	}
	return &ReminderScheduler{
		tasks:    tasks,
		queue:    queue,
		cfg:      cfg,
		cron:     cron.New(),
		nowFn:    time.Now,
		lastSent: make(map[uuid.UUID]time.Time),
	}
}

func (s *ReminderScheduler) Start() error {
	_, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		if n, err := s.RunOnce(); err != nil {
			log.Printf("reminder sweep failed: %v", err)
		} else if n > 0 {
			log.Printf("enqueued %d task reminders", n)
		}
	})
	if err != nil {
		return fmt.Errorf("error scheduling reminder sweep: %w", err)
	}
	s.cron.Start()
	return nil
}

func (s *ReminderScheduler) Stop() {
	s.cron.Stop()
}

// RunOnce performs a single sweep and returns how many reminders were
// enqueued. Tasks reminded within the resend window are skipped.
func (s *ReminderScheduler) RunOnce() (int, error) {
	due, err := s.tasks.DueWithin(s.cfg.WindowHours)
	if err != nil {
		return 0, err
	}

	now := s.nowFn()
	sent := 0
	for _, t := range due {
		if !s.shouldSend(t.ID, now) {
			continue
		}
		if err := s.queue.Enqueue(worker.ReminderQueue, worker.JobTypeTaskReminder, reminderPayload(t)); err != nil {
			return sent, fmt.Errorf("enqueue reminder for task %s: %w", t.ID, err)
		}
		s.markSent(t.ID, now)
		sent++
	}
	return sent, nil
}

func (s *ReminderScheduler) shouldSend(id uuid.UUID, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastSent[id]
	return !ok || now.Sub(last) >= s.cfg.ResendAfter
}

func (s *ReminderScheduler) markSent(id uuid.UUID, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSent[id] = now
}

func reminderPayload(t models.Task) map[string]interface{} {
	payload := map[string]interface{}{
		"task_id":  t.ID.String(),
		"title":    t.Title,
		"priority": string(t.Priority),
	}
	if t.DueDate != nil {
		payload["due_date"] = models.Day(*t.DueDate)
	}
	return payload
}
