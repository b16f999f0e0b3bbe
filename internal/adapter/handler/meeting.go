package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kgwiazdak/sprint-planning-copilot/errors"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/adapter/dto/common"
	meetingDTO "github.com/kgwiazdak/sprint-planning-copilot/internal/adapter/dto/meeting"
	taskDTO "github.com/kgwiazdak/sprint-planning-copilot/internal/adapter/dto/task"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/entities"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/repositories"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/infrastructure/queue"
)

// Canceller aborts an in-flight import for a meeting
type Canceller interface {
	Cancel(meetingID uuid.UUID) bool
}

// Meeting handles meeting-related HTTP requests
type Meeting struct {
	meetings  repositories.MeetingRepository
	tasks     repositories.TaskRepository
	queue     queue.ImportQueue
	canceller Canceller
	logger    *zap.Logger
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(meetings repositories.MeetingRepository, tasks repositories.TaskRepository, q queue.ImportQueue, canceller Canceller, logger *zap.Logger) *Meeting {
	return &Meeting{
		meetings:  meetings,
		tasks:     tasks,
		queue:     q,
		canceller: canceller,
		logger:    logger,
	}
}

// SubmitImport handles POST /meetings/import. The meeting is persisted in
// the queued state and a job is enqueued; the response returns immediately
// with 202, clients poll the status endpoint.
func (h *Meeting) SubmitImport(c echo.Context) error {
	var req meetingDTO.ImportRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	if !req.HasSource() {
		return HandleError(c, errors.ErrMeetingSourceMissing())
	}

	startedAt := time.Now()
	if req.StartedAt != nil {
		startedAt = *req.StartedAt
	}

	m := entities.NewMeeting(req.Title, startedAt)
	m.SourceBlob = req.SourceBlob
	m.SourceText = req.SourceText

	ctx := c.Request().Context()
	if err := h.meetings.Create(ctx, m); err != nil {
		return HandleError(c, err)
	}

	job := &queue.ImportJob{MeetingID: m.ID, EnqueuedAt: time.Now()}
	if err := h.queue.Enqueue(ctx, job); err != nil {
		if h.logger != nil {
			h.logger.Error("❌ Failed to enqueue import job",
				zap.String("meeting_id", m.ID.String()),
				zap.Error(err),
			)
		}
		return HandleError(c, errors.ErrQueueFailed("enqueue", err).WithDetail("meeting_id", m.ID.String()))
	}

	if h.logger != nil {
		h.logger.Info("📥 Import queued",
			zap.String("meeting_id", m.ID.String()),
			zap.String("title", m.Title),
		)
	}
	return c.JSON(http.StatusAccepted, meetingDTO.ImportAccepted{
		MeetingID: m.ID,
		Status:    string(entities.MeetingStatusQueued),
	})
}

// GetStatus handles GET /meetings/:id/status
func (h *Meeting) GetStatus(c echo.Context) error {
	id, err := ParseIDParam(c)
	if err != nil {
		return err
	}
	m, err := h.meetings.FindByID(c.Request().Context(), id)
	if err != nil {
		return HandleError(c, err)
	}
	return c.JSON(http.StatusOK, meetingDTO.StatusFromEntity(m))
}

// List handles GET /meetings
func (h *Meeting) List(c echo.Context) error {
	var q meetingDTO.ListQuery
	if err := c.Bind(&q); err != nil {
		return HandleError(c, errors.ErrInvalidArgument("invalid query parameters"))
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Limit > 200 {
		q.Limit = 200
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	meetings, err := h.meetings.List(c.Request().Context(), q.Limit, q.Offset)
	if err != nil {
		return HandleError(c, err)
	}

	out := make([]*meetingDTO.Response, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, meetingDTO.FromEntity(m))
	}
	return c.JSON(http.StatusOK, common.ListResponse{
		Data: out,
		Pagination: &common.PaginationResponse{
			Limit:  q.Limit,
			Offset: q.Offset,
			Count:  len(out),
		},
	})
}

// Get handles GET /meetings/:id
func (h *Meeting) Get(c echo.Context) error {
	id, err := ParseIDParam(c)
	if err != nil {
		return err
	}
	m, err := h.meetings.FindByID(c.Request().Context(), id)
	if err != nil {
		return HandleError(c, err)
	}
	return c.JSON(http.StatusOK, meetingDTO.FromEntity(m))
}

// Update handles PATCH /meetings/:id. Only metadata is writable, the
// import pipeline owns the status field.
func (h *Meeting) Update(c echo.Context) error {
	id, err := ParseIDParam(c)
	if err != nil {
		return err
	}
	var req meetingDTO.UpdateRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	m, err := h.meetings.FindByID(ctx, id)
	if err != nil {
		return HandleError(c, err)
	}

	if req.Title != nil {
		m.Title = *req.Title
	}
	if req.StartedAt != nil {
		m.StartedAt = *req.StartedAt
	}
	m.UpdatedAt = time.Now()

	if err := h.meetings.Update(ctx, m); err != nil {
		return HandleError(c, err)
	}
	return c.JSON(http.StatusOK, meetingDTO.FromEntity(m))
}

// Delete handles DELETE /meetings/:id. An in-flight import is cancelled
// before the rows go away, its results will find nothing to attach to.
func (h *Meeting) Delete(c echo.Context) error {
	id, err := ParseIDParam(c)
	if err != nil {
		return err
	}

	if h.canceller != nil && h.canceller.Cancel(id) {
		if h.logger != nil {
			h.logger.Info("🛑 Cancelled in-flight import", zap.String("meeting_id", id.String()))
		}
	}

	if err := h.meetings.Delete(c.Request().Context(), id); err != nil {
		return HandleError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListTasks handles GET /meetings/:id/tasks
func (h *Meeting) ListTasks(c echo.Context) error {
	id, err := ParseIDParam(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.meetings.FindByID(ctx, id); err != nil {
		return HandleError(c, err)
	}

	tasks, err := h.tasks.ListByMeeting(ctx, id)
	if err != nil {
		return HandleError(c, err)
	}
	return c.JSON(http.StatusOK, common.ListResponse{Data: taskDTO.FromEntities(tasks)})
}
