package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/entities"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/usecase/jirapush"
	"github.com/kgwiazdak/sprint-planning-copilot/pkg/jira"
)

type taskStore struct {
	tasks map[uuid.UUID]*entities.Task
}

func newTaskStore(tasks ...*entities.Task) *taskStore {
	s := &taskStore{tasks: map[uuid.UUID]*entities.Task{}}
	for _, task := range tasks {
		s.tasks[task.ID] = task
	}
	return s
}

func (s *taskStore) FindByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	task, ok := s.tasks[id]
	if !ok {
		return nil, entities.ErrTaskNotFound
	}
	return task, nil
}

func (s *taskStore) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Task, error) {
	return nil, nil
}

func (s *taskStore) List(ctx context.Context, status entities.TaskStatus, limit, offset int) ([]*entities.Task, error) {
	var out []*entities.Task
	for _, task := range s.tasks {
		if status == "" || task.Status == status {
			out = append(out, task)
		}
	}
	return out, nil
}

func (s *taskStore) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Task, error) {
	return nil, nil
}

func (s *taskStore) Update(ctx context.Context, task *entities.Task) error {
	s.tasks[task.ID] = task
	return nil
}

func (s *taskStore) UpdateStatus(ctx context.Context, ids []uuid.UUID, status entities.TaskStatus) error {
	for _, id := range ids {
		if task, ok := s.tasks[id]; ok {
			task.Status = status
		}
	}
	return nil
}

func (s *taskStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.tasks, id)
	return nil
}

type userStore struct{}

func (userStore) Create(ctx context.Context, user *entities.User) error { return nil }
func (userStore) FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return nil, entities.ErrUserNotFound
}
func (userStore) FindByDisplayName(ctx context.Context, name string) (*entities.User, error) {
	return nil, entities.ErrUserNotFound
}
func (userStore) Update(ctx context.Context, user *entities.User) error { return nil }
func (userStore) List(ctx context.Context) ([]*entities.User, error)   { return nil, nil }

type stubCreator struct {
	count int
}

func (s *stubCreator) CreateIssue(ctx context.Context, req *jira.IssueRequest) (*jira.Issue, error) {
	s.count++
	return &jira.Issue{Key: "SPC-1", URL: "https://example.atlassian.net/browse/SPC-1"}, nil
}

func newDraft(summary string) *entities.Task {
	task := entities.NewTask(uuid.New(), summary)
	task.Description = "detail"
	task.IssueType = entities.IssueTypeTask
	return task
}

func TestBulkApproveReturnsPerTaskOutcomes(t *testing.T) {
	good := newDraft("A valid summary")
	store := newTaskStore(good)
	push := jirapush.NewService(store, userStore{}, &stubCreator{}, nil)
	h := NewTaskHandler(store, push)
	e := newEcho()

	missing := uuid.New()
	body, _ := json.Marshal(map[string]interface{}{
		"task_ids": []uuid.UUID{good.ID, missing},
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/tasks/bulk-approve", strings.NewReader(string(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.BulkApprove(e.NewContext(req, rec)); err != nil {
		t.Fatalf("BulkApprove() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Outcomes []jirapush.Outcome `json:"outcomes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(resp.Outcomes))
	}
	if resp.Outcomes[0].Status != jirapush.OutcomePushed {
		t.Errorf("first outcome = %s, want pushed", resp.Outcomes[0].Status)
	}
	if resp.Outcomes[1].Status != jirapush.OutcomeFailed {
		t.Errorf("second outcome = %s, want failed", resp.Outcomes[1].Status)
	}
}

func TestBulkApproveRejectsEmptyBatch(t *testing.T) {
	store := newTaskStore()
	h := NewTaskHandler(store, jirapush.NewService(store, userStore{}, &stubCreator{}, nil))
	e := newEcho()

	req := httptest.NewRequest(http.MethodPost, "/v1/tasks/bulk-approve", strings.NewReader(`{"task_ids": []}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h.BulkApprove(e.NewContext(req, rec))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestUpdateRejectsPushedTask(t *testing.T) {
	task := newDraft("Already upstream")
	task.MarkPushed("SPC-9", "https://example.atlassian.net/browse/SPC-9")
	store := newTaskStore(task)
	h := NewTaskHandler(store, jirapush.NewService(store, userStore{}, &stubCreator{}, nil))
	e := newEcho()

	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"summary": "New summary"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(task.ID.String())

	if err := h.Update(c); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "TASK_ALREADY_PUSHED") || !strings.Contains(rec.Body.String(), "SPC-9") {
		t.Errorf("body = %s, want the already-pushed code with the issue key", rec.Body.String())
	}
	if task.Summary != "Already upstream" {
		t.Error("pushed task must not be modified")
	}
}

func TestUpdatePatchesDraftFields(t *testing.T) {
	task := newDraft("Old summary")
	store := newTaskStore(task)
	h := NewTaskHandler(store, jirapush.NewService(store, userStore{}, &stubCreator{}, nil))
	e := newEcho()

	body := `{"summary": "New summary", "priority": "High", "story_points": 8}`
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(task.ID.String())

	if err := h.Update(c); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if task.Summary != "New summary" || task.Priority != entities.PriorityHigh {
		t.Errorf("task not patched: %+v", task)
	}
	if task.StoryPoints == nil || *task.StoryPoints != 8 {
		t.Errorf("story points = %v, want 8", task.StoryPoints)
	}
}

func TestUpdateRejectsInvalidEnum(t *testing.T) {
	task := newDraft("Old summary")
	store := newTaskStore(task)
	h := NewTaskHandler(store, jirapush.NewService(store, userStore{}, &stubCreator{}, nil))
	e := newEcho()

	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"issue_type": "Epic"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(task.ID.String())

	err := h.Update(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	draft := newDraft("Still a draft")
	rejected := newDraft("Thrown out")
	rejected.Status = entities.TaskStatusRejected
	store := newTaskStore(draft, rejected)
	h := NewTaskHandler(store, jirapush.NewService(store, userStore{}, &stubCreator{}, nil))
	e := newEcho()

	req := httptest.NewRequest(http.MethodGet, "/v1/tasks?status=draft", nil)
	rec := httptest.NewRecorder()

	if err := h.List(e.NewContext(req, rec)); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Data []struct {
			ID     uuid.UUID `json:"id"`
			Status string    `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != draft.ID {
		t.Errorf("unexpected list body: %s", rec.Body.String())
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	store := newTaskStore()
	h := NewTaskHandler(store, jirapush.NewService(store, userStore{}, &stubCreator{}, nil))
	e := newEcho()

	req := httptest.NewRequest(http.MethodGet, "/v1/tasks?status=archived", nil)
	rec := httptest.NewRecorder()

	if err := h.List(e.NewContext(req, rec)); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
