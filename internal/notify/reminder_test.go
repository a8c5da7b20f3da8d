package notify

import (
	"testing"
	"time"

	"productivity-tracker/backend/internal/services"
	"productivity-tracker/backend/internal/storage"
	"productivity-tracker/backend/internal/store"
	"productivity-tracker/backend/internal/worker"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newReminderFixture(t *testing.T) (*ReminderScheduler, *services.TaskService, *worker.JobQueue) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	st, err := store.Open(storage.NewMemory())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	tasks := services.NewTaskService(st)
	queue := worker.NewJobQueue(client)
	scheduler := NewReminderScheduler(tasks, queue, DefaultConfig())
	return scheduler, tasks, queue
}

func TestRunOnceEnqueuesDueTasks(t *testing.T) {
	scheduler, tasks, queue := newReminderFixture(t)

	today := time.Now()
	if _, err := tasks.Create(services.TaskInput{Title: "due today", DueDate: &today}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := tasks.Create(services.TaskInput{Title: "undated"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	sent, err := scheduler.RunOnce()
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}

	size, err := queue.Size(worker.ReminderQueue)
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if size != 1 {
		t.Errorf("queue size = %d, want 1", size)
	}
}

func TestRunOnceSkipsRecentlyReminded(t *testing.T) {
	scheduler, tasks, _ := newReminderFixture(t)

	today := time.Now()
	if _, err := tasks.Create(services.TaskInput{Title: "due today", DueDate: &today}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if sent, err := scheduler.RunOnce(); err != nil || sent != 1 {
		t.Fatalf("first sweep: sent=%d err=%v", sent, err)
	}
	if sent, err := scheduler.RunOnce(); err != nil || sent != 0 {
		t.Errorf("second sweep inside resend window: sent=%d err=%v", sent, err)
	}
}

func TestRunOnceResendsAfterWindow(t *testing.T) {
	scheduler, tasks, _ := newReminderFixture(t)

	today := time.Now()
	if _, err := tasks.Create(services.TaskInput{Title: "due today", DueDate: &today}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if sent, err := scheduler.RunOnce(); err != nil || sent != 1 {
		t.Fatalf("first sweep: sent=%d err=%v", sent, err)
	}

	// Push the clock past the resend window.
	scheduler.nowFn = func() time.Time { return time.Now().Add(scheduler.cfg.ResendAfter + time.Minute) }
	if sent, err := scheduler.RunOnce(); err != nil || sent != 1 {
		t.Errorf("sweep after resend window: sent=%d err=%v", sent, err)
	}
}
