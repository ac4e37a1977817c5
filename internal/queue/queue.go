// Package queue runs asynchronous tasks (document generation) inside the
// server process, tracking their lifecycle so clients can poll for results.
// Failed tasks are retried with linear backoff before being marked
// permanently failed.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Status of a tracked task.
type Status string

// Task statuses.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// MaxRetries is how many attempts a task gets before it is permanently
// failed.
const MaxRetries = 3

// RetryBackoff is the base backoff unit; attempt n waits n × RetryBackoff.
const RetryBackoff = 5 * time.Second

// Task is one tracked unit of work.
type Task struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Kind      string    `json:"kind"`
	Status    Status    `json:"status"`
	Payload   any       `json:"payload,omitempty"`
	Result    any       `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Processor executes one kind of task and returns its result.
type Processor func(ctx context.Context, task *Task) (any, error)

// Queue is an in-process task tracker and executor.
type Queue struct {
	mu         sync.Mutex
	tasks      map[uuid.UUID]*Task
	processors map[string]Processor
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
	logger     zerolog.Logger
	wg         sync.WaitGroup
}

// New creates a Queue.
func New(logger zerolog.Logger) *Queue {
	return &Queue{
		tasks:      make(map[uuid.UUID]*Task),
		processors: make(map[string]Processor),
		now:        time.Now,
		sleep:      sleepCtx,
		logger:     logger,
	}
}

// WithClock replaces the wall clock, for tests.
func (q *Queue) WithClock(now func() time.Time) *Queue {
	q.now = now
	return q
}

// WithSleep replaces the backoff sleep, for tests.
func (q *Queue) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *Queue {
	q.sleep = sleep
	return q
}

// Register binds a processor to a task kind. Must be called before Add for
// that kind.
func (q *Queue) Register(kind string, p Processor) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.processors[kind] = p
}

// Add enqueues a task and starts processing it in the background.
func (q *Queue) Add(ctx context.Context, userID uuid.UUID, kind string, payload any) (*Task, error) {
	q.mu.Lock()
	processor, ok := q.processors[kind]
	if !ok {
		q.mu.Unlock()
		return nil, fmt.Errorf("no processor registered for task kind %q", kind)
	}

	now := q.now()
	task := &Task{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Status:    StatusPending,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}
	q.tasks[task.ID] = task
	q.mu.Unlock()

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.process(ctx, task, processor)
	}()

	return q.snapshot(task.ID), nil
}

// Get returns a point-in-time copy of a task, or nil if unknown.
func (q *Queue) Get(id uuid.UUID) *Task {
	return q.snapshot(id)
}

// ByUser returns point-in-time copies of all tasks owned by a user.
func (q *Queue) ByUser(userID uuid.UUID) []*Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []*Task
	for _, task := range q.tasks {
		if task.UserID == userID {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out
}

// Wait blocks until all in-flight tasks finish. Used during shutdown and in
// tests.
func (q *Queue) Wait() {
	q.wg.Wait()
}

func (q *Queue) process(ctx context.Context, task *Task, processor Processor) {
	for attempt := 1; attempt <= MaxRetries; attempt++ {
		q.update(task.ID, func(t *Task) {
			t.Status = StatusProcessing
			t.Attempts = attempt
		})

		result, err := processor(ctx, q.snapshot(task.ID))
		if err == nil {
			q.update(task.ID, func(t *Task) {
				t.Status = StatusCompleted
				t.Result = result
				t.Error = ""
			})
			return
		}

		q.logger.Warn().
			Err(err).
			Str("task", task.ID.String()).
			Str("kind", task.Kind).
			Int("attempt", attempt).
			Msg("task attempt failed")
		q.update(task.ID, func(t *Task) {
			t.Error = err.Error()
		})

		if attempt < MaxRetries {
			if sleepErr := q.sleep(ctx, time.Duration(attempt)*RetryBackoff); sleepErr != nil {
				break
			}
		}
	}

	q.update(task.ID, func(t *Task) {
		t.Status = StatusFailed
	})
}

func (q *Queue) update(id uuid.UUID, fn func(*Task)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if task, ok := q.tasks[id]; ok {
		fn(task)
		task.UpdatedAt = q.now()
	}
}

func (q *Queue) snapshot(id uuid.UUID) *Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	task, ok := q.tasks[id]
	if !ok {
		return nil
	}
	copied := *task
	return &copied
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
