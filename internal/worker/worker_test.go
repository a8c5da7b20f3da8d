package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestQueue(t *testing.T) (*JobQueue, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewJobQueue(client), client
}

func TestEnqueueAndSize(t *testing.T) {
	queue, _ := newTestQueue(t)

	if err := queue.Enqueue(ReminderQueue, JobTypeTaskReminder, map[string]interface{}{"task_id": "t1"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := queue.Enqueue(ReminderQueue, JobTypeTaskReminder, map[string]interface{}{"task_id": "t2"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	size, err := queue.Size(ReminderQueue)
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if size != 2 {
		t.Errorf("queue size = %d, want 2", size)
	}
}

func TestWorkerProcessesJob(t *testing.T) {
	queue, client := newTestQueue(t)

	var (
		mu      sync.Mutex
		handled []string
	)
	w := NewWorker(WorkerConfig{RedisClient: client, Queues: []string{ReminderQueue}})
	w.RegisterHandler(JobTypeTaskReminder, func(ctx context.Context, job *Job) error {
		mu.Lock()
		defer mu.Unlock()
		handled = append(handled, job.Payload["task_id"].(string))
		return nil
	})

	if err := queue.Enqueue(ReminderQueue, JobTypeTaskReminder, map[string]interface{}{"task_id": "t1"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	w.Start(1)
	defer w.Stop()

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(handled)
		mu.Unlock()
		if n == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("job was not processed in time")
		case <-time.After(10 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if handled[0] != "t1" {
		t.Errorf("handled payload = %q, want t1", handled[0])
	}
}

func TestFailedJobLandsInDeadQueue(t *testing.T) {
	queue, client := newTestQueue(t)

	w := NewWorker(WorkerConfig{RedisClient: client, Queues: []string{ReminderQueue}})
	w.RegisterHandler(JobTypeTaskReminder, func(ctx context.Context, job *Job) error {
		return errors.New("delivery failed")
	})

	if err := queue.Enqueue(ReminderQueue, JobTypeTaskReminder, map[string]interface{}{"task_id": "t1"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	w.Start(1)
	defer w.Stop()

	deadline := time.After(3 * time.Second)
	for {
		size, err := queue.Size("dead_queue")
		if err != nil {
			t.Fatalf("size: %v", err)
		}
		if size == 1 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("job never reached the dead queue")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
