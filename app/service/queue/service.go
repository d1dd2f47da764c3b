package queue

import (
	"context"
	"log/slog"
	"time"

	"warelay/app/config"

	"github.com/samber/do"
)

var _ do.Shutdownable = (*Service)(nil)

// Task is one deferred generation unit: a sender label for logging plus the
// work itself. Tasks run strictly one at a time, in enqueue order.
type Task struct {
	Sender string
	Run    func(ctx context.Context) error
}

type Service struct {
	interval time.Duration
	tasks    chan Task
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return &Service{
		interval: time.Duration(cfg.Queue.IntervalMS) * time.Millisecond,
		tasks:    make(chan Task, cfg.Queue.Buffer),
	}, nil
}

// Enqueue appends a task to the tail of the pending sequence and returns
// immediately. When the buffer is full the task is dropped with a warning.
func (s *Service) Enqueue(task Task) {
	defer func() {
		if r := recover(); r != nil {

		}
	}()

	select {
	case s.tasks <- task:
	default:
		slog.Warn("task queue is full, dropping task", "sender", task.Sender)
	}
}

func (s *Service) Pending() int {
	return len(s.tasks)
}

// Run is the single worker loop: take the head task, execute it to
// completion, wait at least the configured interval, take the next. A failed
// or panicking task is contained and the loop proceeds.
func (s *Service) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-s.tasks:
			if !ok {
				return
			}

			s.execute(ctx, task)

			select {
			case <-ctx.Done():
				return
			case <-time.After(s.interval):
			}
		}
	}
}

func (s *Service) execute(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Task panicked",
				"sender", task.Sender,
				"panic", r,
			)
		}
	}()

	start := time.Now()

	if err := task.Run(ctx); err != nil {
		slog.Error("Task failed",
			"sender", task.Sender,
			"error", err,
		)
		return
	}

	slog.Info("Task completed",
		"sender", task.Sender,
		"duration", time.Since(start),
	)
}

func (s *Service) Shutdown() error {
	close(s.tasks)

	return nil
}
