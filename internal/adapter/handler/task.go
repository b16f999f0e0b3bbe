package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kgwiazdak/sprint-planning-copilot/errors"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/adapter/dto/common"
	taskDTO "github.com/kgwiazdak/sprint-planning-copilot/internal/adapter/dto/task"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/entities"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/repositories"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/usecase/jirapush"
)

// Task handles draft task HTTP requests
type Task struct {
	tasks repositories.TaskRepository
	push  *jirapush.Service
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(tasks repositories.TaskRepository, push *jirapush.Service) *Task {
	return &Task{tasks: tasks, push: push}
}

// List handles GET /tasks?status=
func (h *Task) List(c echo.Context) error {
	var q taskDTO.ListQuery
	if err := c.Bind(&q); err != nil {
		return HandleError(c, errors.ErrInvalidArgument("invalid query parameters"))
	}
	if q.Status != "" && !entities.TaskStatus(q.Status).IsValid() {
		return HandleError(c, errors.ErrInvalidArgument("status must be one of draft, approved, rejected"))
	}

	tasks, err := h.tasks.List(c.Request().Context(), entities.TaskStatus(q.Status), 200, 0)
	if err != nil {
		return HandleError(c, err)
	}
	return c.JSON(http.StatusOK, common.ListResponse{Data: taskDTO.FromEntities(tasks)})
}

// Get handles GET /tasks/:id
func (h *Task) Get(c echo.Context) error {
	id, err := ParseIDParam(c)
	if err != nil {
		return err
	}
	task, err := h.tasks.FindByID(c.Request().Context(), id)
	if err != nil {
		return HandleError(c, err)
	}
	return c.JSON(http.StatusOK, taskDTO.FromEntity(task))
}

// Update handles PATCH /tasks/:id. Pushed tasks are immutable, the
// tracker owns them from that point on.
func (h *Task) Update(c echo.Context) error {
	id, err := ParseIDParam(c)
	if err != nil {
		return err
	}
	var req taskDTO.UpdateRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	task, err := h.tasks.FindByID(ctx, id)
	if err != nil {
		return HandleError(c, err)
	}
	if task.IsPushed() {
		return HandleError(c, errors.ErrTaskAlreadyPushed(*task.IssueKey))
	}

	if req.Summary != nil {
		task.Summary = *req.Summary
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.IssueType != nil {
		task.IssueType = entities.IssueType(*req.IssueType)
	}
	if req.Priority != nil {
		task.Priority = entities.Priority(*req.Priority)
	}
	if req.StoryPoints != nil {
		task.StoryPoints = req.StoryPoints
	}
	if req.Labels != nil {
		task.SetLabels(req.Labels)
	}
	if req.AssigneeID != nil {
		task.AssigneeID = req.AssigneeID
	}

	if err := h.tasks.Update(ctx, task); err != nil {
		return HandleError(c, err)
	}
	return c.JSON(http.StatusOK, taskDTO.FromEntity(task))
}

// BulkApprove handles POST /tasks/bulk-approve. Always 200 with per-id
// outcomes, a failed push never aborts the rest of the batch.
func (h *Task) BulkApprove(c echo.Context) error {
	var req taskDTO.BulkRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	outcomes := h.push.BulkApprove(c.Request().Context(), req.TaskIDs)
	return c.JSON(http.StatusOK, map[string]interface{}{"outcomes": outcomes})
}

// BulkReject handles POST /tasks/bulk-reject
func (h *Task) BulkReject(c echo.Context) error {
	var req taskDTO.BulkRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	outcomes := h.push.BulkReject(c.Request().Context(), req.TaskIDs)
	return c.JSON(http.StatusOK, map[string]interface{}{"outcomes": outcomes})
}
