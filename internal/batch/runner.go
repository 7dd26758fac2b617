package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"vidscribe/internal/logging"
)

// ErrJobRunning is returned when a job is already active, in this process or
// in another one holding the lock file.
var ErrJobRunning = errors.New("a transcription job is already running")

// Runner runs at most one Orchestrator job at a time on a background
// goroutine.
type Runner struct {
	orchestrator *Orchestrator
	logger       *slog.Logger
	lockPath     string

	mu      sync.Mutex
	lock    *flock.Flock
	cancel  context.CancelFunc
	done    chan struct{}
	summary Summary
}

// NewRunner wraps orch. An empty lockPath disables the machine-wide lock.
func NewRunner(orch *Orchestrator, lockPath string, logger *slog.Logger) *Runner {
	return &Runner{
		orchestrator: orch,
		logger:       logging.NewComponentLogger(logger, "runner"),
		lockPath:     lockPath,
	}
}

// Start launches a job for root. Each job gets a fresh context derived from
// ctx; cancelling ctx or calling Cancel stops it.
func (r *Runner) Start(ctx context.Context, root string, sink Sink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done != nil {
		select {
		case <-r.done:
		default:
			return ErrJobRunning
		}
	}

	var lock *flock.Flock
	if r.lockPath != "" {
		if err := os.MkdirAll(filepath.Dir(r.lockPath), 0o755); err != nil {
			return fmt.Errorf("create lock directory: %w", err)
		}
		lock = flock.New(r.lockPath)
		ok, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			return ErrJobRunning
		}
	}

	jobCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.lock = lock
	r.cancel = cancel
	r.done = done
	r.summary = Summary{}

	go func() {
		defer close(done)
		defer cancel()
		summary := r.orchestrator.Run(jobCtx, root, sink)
		r.mu.Lock()
		r.summary = summary
		r.mu.Unlock()
		if lock != nil {
			if err := lock.Unlock(); err != nil {
				r.logger.Warn("failed to release job lock",
					logging.Error(err),
					logging.String(logging.FieldEventType, "lock_release_failed"),
					logging.String(logging.FieldErrorHint, "remove the lock file if no job is running"),
					logging.String(logging.FieldImpact, "next job may report a running job"),
				)
			}
		}
	}()
	return nil
}

// Cancel requests the active job to stop. It is a no-op when idle.
func (r *Runner) Cancel() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the active job finishes or ctx is done, and returns the
// job summary.
func (r *Runner) Wait(ctx context.Context) (Summary, error) {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done == nil {
		return Summary{}, errors.New("no job started")
	}
	select {
	case <-done:
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary, nil
}

// Running reports whether a job is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == nil {
		return false
	}
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

// RunSync starts a job and waits for it.
func (r *Runner) RunSync(ctx context.Context, root string, sink Sink) (Summary, error) {
	if err := r.Start(ctx, root, sink); err != nil {
		return Summary{}, err
	}
	return r.Wait(context.WithoutCancel(ctx))
}
