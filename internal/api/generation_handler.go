package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sse"
	"github.com/phrazzld/annotate-api/internal/api/shared"
	"github.com/phrazzld/annotate-api/internal/generation"
	"github.com/phrazzld/annotate-api/internal/platform/logger"
	"github.com/phrazzld/annotate-api/internal/service"
)

// GenerationService runs and observes generation tasks.
type GenerationService interface {
	Start(ctx context.Context, req generation.Request) (*generation.Task, error)
	Stream(ctx context.Context, id string) (*generation.Stream, error)
	Cancel(ctx context.Context, id string) error
	Status(ctx context.Context, id string) (*generation.Snapshot, error)
	Results(ctx context.Context, id string) (*generation.Results, error)
	List(ctx context.Context) []generation.Snapshot
}

// Importer stores generated texts as annotations.
type Importer interface {
	ImportLabeled(ctx context.Context, items []service.LabeledText) (int, error)
}

// GenerationHandler handles generation task requests, including the
// server-sent event stream of task progress.
type GenerationHandler struct {
	generation GenerationService
	importer   Importer
	logger     *slog.Logger
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(generation GenerationService, importer Importer, logger *slog.Logger) *GenerationHandler {
	if generation == nil || importer == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("generation service and importer cannot be nil for GenerationHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerationHandler{
		generation: generation,
		importer:   importer,
		logger:     logger.With(slog.String("component", "generation_handler")),
	}
}

// Start handles POST /generate/start.
func (h *GenerationHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req generation.Request
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).
			Warn("invalid request format", slog.String("error", err.Error()))
		message := "Invalid request format"
		if errors.Is(err, shared.ErrEmptyBody) {
			message = "Request body is required"
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, message)
		return
	}

	t, err := h.generation.Start(r.Context(), req)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start generation")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, StartGenerationResponse{
		TaskID:  t.ID(),
		Status:  "created",
		Message: "Generation task created",
	})
}

// Stream handles GET /generate/stream/{taskID}. It relays one event per task
// state change and returns after the terminal event or when the client leaves.
// Leaving does not cancel the task.
func (h *GenerationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	taskID := getTaskID(r)

	flusher, ok := w.(http.Flusher)
	if !ok {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Streaming is not supported", errors.New("response writer does not implement http.Flusher"))
		return
	}

	stream, err := h.generation.Stream(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to open stream")
		return
	}
	defer stream.Close()

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	log = log.With(slog.String("task_id", taskID))
	log.Debug("stream opened")

	frames := 0
	for {
		select {
		case <-r.Context().Done():
			log.Debug("stream client disconnected", slog.Int("frames", frames))
			return

		case frame, open := <-stream.Frames:
			if !open {
				log.Debug("stream finished", slog.Int("frames", frames))
				return
			}
			if err := sse.Encode(w, sse.Event{Data: []byte(frame)}); err != nil {
				log.Warn("failed to write stream frame", slog.String("error", err.Error()))
				return
			}
			flusher.Flush()
			frames++
		}
	}
}

// Cancel handles POST /generate/cancel/{taskID}.
func (h *GenerationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	taskID := getTaskID(r)
	if err := h.generation.Cancel(r.Context(), taskID); err != nil {
		HandleAPIError(w, r, err, "Failed to cancel task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, shared.MessageResponse{Message: "Cancellation requested"})
}

// Status handles GET /generate/status/{taskID}.
func (h *GenerationHandler) Status(w http.ResponseWriter, r *http.Request) {
	snap, err := h.generation.Status(r.Context(), getTaskID(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task status")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, snap)
}

// Results handles GET /generate/results/{taskID}.
func (h *GenerationHandler) Results(w http.ResponseWriter, r *http.Request) {
	res, err := h.generation.Results(r.Context(), getTaskID(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task results")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, res)
}

// SaveResults handles POST /generate/results/{taskID}/save. Every generated
// text is imported together with its labels; texts already stored are skipped.
func (h *GenerationHandler) SaveResults(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	taskID := getTaskID(r)

	res, err := h.generation.Results(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task results")
		return
	}

	items := make([]service.LabeledText, 0, len(res.Texts))
	for _, t := range res.Texts {
		item := service.LabeledText{Text: t.Text}
		if t.Labels != nil {
			item.Labels = *t.Labels
		}
		items = append(items, item)
	}

	imported, err := h.importer.ImportLabeled(r.Context(), items)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to save generated texts")
		return
	}

	log.Info("generated texts saved",
		slog.String("task_id", taskID),
		slog.Int("generated", len(items)),
		slog.Int("imported", imported))
	shared.RespondWithJSON(w, r, http.StatusOK, ImportedCountResponse{ImportedCount: imported})
}

// List handles GET /generate/tasks.
func (h *GenerationHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks := h.generation.List(r.Context())
	if tasks == nil {
		tasks = []generation.Snapshot{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{Tasks: tasks})
}
