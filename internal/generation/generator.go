package generation

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/phrazzld/annotate-api/internal/platform/logger"
	"github.com/phrazzld/annotate-api/internal/redact"
)

// generationJob adapts a claimed task to the task runner.
type generationJob struct {
	svc  *Service
	task *Task
}

func (j *generationJob) ID() string   { return j.task.id }
func (j *generationJob) Type() string { return "generation" }

// Execute drives the task to a terminal state. Failures are recorded on the
// task, never returned, so the runner's error handler only sees real bugs.
func (j *generationJob) Execute(ctx context.Context) error {
	j.svc.generate(ctx, j.task)
	return nil
}

// generate runs the completion loop for one claimed task. The task owns its
// client for the duration of the call; every exit path closes it, records a
// terminal state and hands the task to the registry for archival and removal.
func (s *Service) generate(ctx context.Context, t *Task) {
	log := s.logger.With(
		"task_id", t.id,
		"provider", t.req.Provider,
		"model", t.req.Model,
	)
	ctx = logger.WithLogger(ctx, log)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.metrics.started()
	defer s.metrics.stopped()
	defer s.registry.Finish(t)
	defer func() {
		if r := recover(); r != nil {
			log.Error("generator panicked", "panic", r, "stack", string(debug.Stack()))
			s.fail(log, t, fmt.Errorf("generator panic: %v", r))
		}
	}()

	t.attachCancel(cancel)
	log.Info("generation started", "total_count", t.req.Count)

	client, err := s.factory.Open(ctx, t.req)
	if err != nil {
		s.fail(log, t, err)
		return
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Warn("failed to close generation client", "error", redact.Error(err))
		}
	}()

	var pattern string
	if t.req.ParseRegex != nil {
		pattern = *t.req.ParseRegex
	}
	custom := s.splitter.Compile(pattern)
	prompt := t.req.Prompt()

	for i := 1; i <= t.req.Count; i++ {
		if t.isCancelled() || ctx.Err() != nil {
			s.cancelled(log, t)
			return
		}

		raw, err := s.complete(ctx, client, prompt)
		if err != nil {
			if ctx.Err() != nil {
				s.cancelled(log, t)
				return
			}
			s.metrics.item(false)
			log.Warn("item generation failed, skipping",
				"item", i,
				"error", redact.Error(err))
			continue
		}

		text, labels := s.splitter.SplitWith(raw, custom)
		if t.addItem(GeneratedText{Text: text, Labels: labels, RawOutput: raw}) {
			s.metrics.item(true)
		}
	}

	if t.isCancelled() {
		s.cancelled(log, t)
		return
	}
	if t.finish(StatusCompleted, "") {
		log.Info("generation completed", "generated_count", t.Results().GeneratedCount)
	}
}

// complete performs one call bounded by the request timeout.
func (s *Service) complete(ctx context.Context, client Completer, prompt Prompt) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	start := time.Now()
	raw, err := client.Complete(callCtx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w after %s: %w", ErrGenerationFailed, time.Since(start).Round(time.Millisecond), err)
	}
	return raw, nil
}

func (s *Service) cancelled(log *slog.Logger, t *Task) {
	if t.finish(StatusCancelled, "") {
		log.Info("generation cancelled", "generated_count", t.Results().GeneratedCount)
	}
}

func (s *Service) fail(log *slog.Logger, t *Task, err error) {
	msg := redact.Error(err)
	if t.finish(StatusError, msg) {
		log.Error("generation failed", "error", msg)
	}
}
