package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/annotate-api/internal/events"
	"github.com/phrazzld/annotate-api/internal/task"
)

const (
	defaultRequestTimeout = 60 * time.Second
	archiveTimeout        = 5 * time.Second

	// Frames a subscriber can receive: the snapshot it attaches with, the
	// start announcement, one per item and the terminal frame.
	extraFrames = 3
)

// Config tunes the generation service.
type Config struct {
	// RequestTimeout bounds every completion call.
	RequestTimeout time.Duration

	// MaxCount caps Request.Count; zero means unlimited.
	MaxCount int

	// StartOnSubmit queues the generator at submit time instead of waiting
	// for the first stream subscriber.
	StartOnSubmit bool

	// DefaultProvider applies when a request names none.
	DefaultProvider string
}

// Runner schedules generator jobs.
type Runner interface {
	Submit(ctx context.Context, t task.Task) error
}

// Dependencies are the collaborators of a Service. Archive and Metrics are
// optional.
type Dependencies struct {
	Registry *Registry
	Hub      *events.Hub
	Runner   Runner
	Factory  ClientFactory
	Splitter *Splitter
	Archive  Archive
	Metrics  *Metrics
}

// Service is the entry point for generation tasks: it validates requests,
// schedules generators and hands out status, results and live streams.
type Service struct {
	cfg      Config
	registry *Registry
	hub      *events.Hub
	runner   Runner
	factory  ClientFactory
	splitter *Splitter
	archive  Archive
	metrics  *Metrics
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService wires a Service and registers its hooks on the registry.
func NewService(cfg Config, deps Dependencies, logger *slog.Logger) (*Service, error) {
	switch {
	case deps.Registry == nil:
		return nil, fmt.Errorf("%w: registry is required", ErrInvalidConfig)
	case deps.Hub == nil:
		return nil, fmt.Errorf("%w: event hub is required", ErrInvalidConfig)
	case deps.Runner == nil:
		return nil, fmt.Errorf("%w: runner is required", ErrInvalidConfig)
	case deps.Factory == nil:
		return nil, fmt.Errorf("%w: client factory is required", ErrInvalidConfig)
	case deps.Splitter == nil:
		return nil, fmt.Errorf("%w: splitter is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.DefaultProvider == "" {
		cfg.DefaultProvider = ProviderOpenAI
	}

	s := &Service{
		cfg:      cfg,
		registry: deps.Registry,
		hub:      deps.Hub,
		runner:   deps.Runner,
		factory:  deps.Factory,
		splitter: deps.Splitter,
		archive:  deps.Archive,
		metrics:  deps.Metrics,
		validate: validator.New(),
		logger:   logger.With("component", "generation_service"),
	}
	s.registry.OnChange(s.publish)
	s.registry.OnFinal(s.finalize)
	return s, nil
}

// Start validates req and registers a pending task for it. With
// StartOnSubmit the generator is queued right away; a full queue leaves the
// task pending so a stream can start it later.
func (s *Service) Start(ctx context.Context, req Request) (*Task, error) {
	req.Provider = strings.ToLower(strings.TrimSpace(req.Provider))
	if req.Provider == "" {
		req.Provider = s.cfg.DefaultProvider
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err.Error())
	}
	if s.cfg.MaxCount > 0 && req.Count > s.cfg.MaxCount {
		return nil, fmt.Errorf("%w: count must not exceed %d", ErrInvalidRequest, s.cfg.MaxCount)
	}

	t := s.registry.Create(req)
	s.logger.Info("generation task created",
		"task_id", t.id,
		"provider", req.Provider,
		"model", req.Model,
		"total_count", req.Count)

	if s.cfg.StartOnSubmit {
		if err := s.begin(ctx, t); err != nil {
			s.logger.Warn("generator not scheduled at submit, task stays pending",
				"task_id", t.id,
				"error", err)
		}
	}
	return t, nil
}

// Stream subscribes to a task's frames and starts its generator if nobody
// has yet. The first frame is always the current snapshot. For a finished
// task the stream holds only that snapshot.
func (s *Service) Stream(ctx context.Context, id string) (*Stream, error) {
	t, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}

	stream, err := s.subscribe(t)
	if err != nil {
		return nil, err
	}

	if t.Status() == StatusPending {
		if err := s.begin(ctx, t); err != nil && !errors.Is(err, ErrAlreadyStarted) {
			stream.Close()
			return nil, err
		}
	}
	return stream, nil
}

// Cancel requests cancellation. Repeating it, or cancelling a finished task,
// is not an error.
func (s *Service) Cancel(ctx context.Context, id string) error {
	if !s.registry.Cancel(id) {
		return ErrTaskNotFound
	}
	return nil
}

// Status returns the live snapshot of a task, or its archived final snapshot
// once the registry has dropped it.
func (s *Service) Status(ctx context.Context, id string) (*Snapshot, error) {
	if t, err := s.registry.Get(id); err == nil {
		snap := t.Snapshot()
		return &snap, nil
	}
	rec, err := s.loadArchived(ctx, id)
	if err != nil {
		return nil, err
	}
	return &rec.Snapshot, nil
}

// Results returns what a task has produced so far, falling back to the
// archive like Status.
func (s *Service) Results(ctx context.Context, id string) (*Results, error) {
	if t, err := s.registry.Get(id); err == nil {
		res := t.Results()
		return &res, nil
	}
	rec, err := s.loadArchived(ctx, id)
	if err != nil {
		return nil, err
	}
	return &rec.Results, nil
}

// List returns snapshots of the live tasks in submission order.
func (s *Service) List(ctx context.Context) []Snapshot {
	tasks := s.registry.List()
	out := make([]Snapshot, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Snapshot())
	}
	return out
}

// Close stops scheduled removals. Running generators are stopped by the
// task runner.
func (s *Service) Close() {
	s.registry.Close()
}

// begin claims t and queues its generator.
func (s *Service) begin(ctx context.Context, t *Task) error {
	if !t.claim() {
		return ErrAlreadyStarted
	}
	if err := s.runner.Submit(ctx, &generationJob{svc: s, task: t}); err != nil {
		if t.unclaim() {
			s.registry.Finish(t)
		}
		return fmt.Errorf("failed to schedule generator for task %s: %w", t.id, err)
	}
	return nil
}

// subscribe attaches to t's topic atomically with reading its snapshot, so
// no frame is lost or repeated between the two.
func (s *Service) subscribe(t *Task) (*Stream, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	frame, err := json.Marshal(t.snapshotLocked(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if t.status.IsTerminal() {
		ch := make(chan json.RawMessage, 1)
		ch <- frame
		close(ch)
		return &Stream{TaskID: t.id, Frames: ch}, nil
	}

	sub := s.hub.Subscribe(t.id, t.req.Count+extraFrames, frame)
	return &Stream{TaskID: t.id, Frames: sub.C, closeFn: sub.Close}, nil
}

// publish is the registry change hook; it runs under the task lock.
func (s *Service) publish(snap Snapshot) {
	frame, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("failed to encode frame", "task_id", snap.TaskID, "error", err)
		return
	}
	s.hub.Publish(snap.TaskID, frame)
}

// finalize is the registry terminal hook.
func (s *Service) finalize(t *Task) {
	s.hub.CloseTopic(t.id)

	snap := t.Snapshot()
	s.metrics.finished(snap.Status)

	if s.archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()

	rec := ArchivedTask{Snapshot: snap, Results: t.Results(), FinishedAt: time.Now().UTC()}
	if err := s.archive.Save(ctx, rec); err != nil {
		s.logger.Warn("failed to archive generation task", "task_id", t.id, "error", err)
	}
}

func (s *Service) loadArchived(ctx context.Context, id string) (*ArchivedTask, error) {
	if s.archive == nil {
		return nil, ErrTaskNotFound
	}
	rec, err := s.archive.Load(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to load archived task %s: %w", id, err)
	}
	return rec, nil
}

// Stream delivers the frames of one task.
type Stream struct {
	TaskID string

	// Frames is closed after the terminal frame.
	Frames <-chan json.RawMessage

	closeFn func()
}

// Close detaches the stream. The task keeps running.
func (s *Stream) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}
