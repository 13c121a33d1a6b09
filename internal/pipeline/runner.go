package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/cv-ranker/internal/logger"
)

// ErrRunInProgress is returned by Start while another run has not reached Done.
var ErrRunInProgress = errors.New("an analysis run is already in progress")

// Snapshot is the latest known state of a run.
type Snapshot struct {
	ID         string
	State      State
	Progress   int
	Result     *Result
	StartedAt  time.Time
	FinishedAt time.Time
}

// Runner owns at most one in-flight run and executes it on its own goroutine.
type Runner struct {
	worker *Worker
	logger *zap.Logger
	newID  func() string

	mu      sync.Mutex
	active  bool
	current *Snapshot
}

func NewRunner(worker *Worker, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		worker: worker,
		logger: log,
		newID:  func() string { return uuid.NewString() },
	}
}

// Start validates req and launches a run. The returned channel delivers every
// event of the run and is closed after the result event.
func (r *Runner) Start(ctx context.Context, req Request) (string, <-chan Event, error) {
	if err := req.Validate(); err != nil {
		return "", nil, err
	}

	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return "", nil, ErrRunInProgress
	}
	id := r.newID()
	r.active = true
	r.current = &Snapshot{ID: id, State: StateIdle, StartedAt: time.Now()}
	r.mu.Unlock()

	runLogger := logger.WithRun(r.logger, id, req.Folder)
	runLogger.Info("run started", zap.Int("files", len(req.Files)))

	// Sized to hold every event of the run so the worker never waits on a slow reader.
	events := make(chan Event, len(req.Files)+8)

	go func() {
		defer close(events)
		// Runs are not cancellable once started.
		r.worker.Run(context.WithoutCancel(ctx), id, req, func(ev Event) {
			r.record(ev)
			events <- ev
		})
	}()

	return id, events, nil
}

// Current returns the snapshot of the latest run, if any.
func (r *Runner) Current() (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return Snapshot{}, false
	}
	return *r.current, true
}

// Busy reports whether a run is in flight.
func (r *Runner) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

func (r *Runner) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil || r.current.ID != ev.RunID {
		return
	}

	switch ev.Kind {
	case EventState:
		r.current.State = ev.State
	case EventProgress:
		if ev.Progress > r.current.Progress {
			r.current.Progress = ev.Progress
		}
	case EventResult:
		r.current.State = StateDone
		r.current.Result = ev.Result
		r.current.FinishedAt = time.Now()
		r.active = false
	}
}
