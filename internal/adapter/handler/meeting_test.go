package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/entities"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/infrastructure/queue"
	"github.com/kgwiazdak/sprint-planning-copilot/pkg/validator"
)

type memMeetingRepo struct {
	mu       sync.Mutex
	meetings map[uuid.UUID]*entities.Meeting
}

func newMemMeetingRepo(meetings ...*entities.Meeting) *memMeetingRepo {
	repo := &memMeetingRepo{meetings: map[uuid.UUID]*entities.Meeting{}}
	for _, m := range meetings {
		repo.meetings[m.ID] = m
	}
	return repo
}

func (r *memMeetingRepo) Create(ctx context.Context, m *entities.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meetings[m.ID] = m
	return nil
}

func (r *memMeetingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[id]
	if !ok {
		return nil, entities.ErrMeetingNotFound
	}
	return m, nil
}

func (r *memMeetingRepo) List(ctx context.Context, limit, offset int) ([]*entities.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entities.Meeting, 0, len(r.meetings))
	for _, m := range r.meetings {
		out = append(out, m)
	}
	return out, nil
}

func (r *memMeetingRepo) Claim(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	return nil, entities.ErrMeetingNotClaimable
}

func (r *memMeetingRepo) Update(ctx context.Context, m *entities.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meetings[m.ID] = m
	return nil
}

func (r *memMeetingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meetings[id]; !ok {
		return entities.ErrMeetingNotFound
	}
	delete(r.meetings, id)
	return nil
}

type memTaskRepo struct {
	byMeeting map[uuid.UUID][]*entities.Task
}

func (r *memTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	return nil, entities.ErrTaskNotFound
}

func (r *memTaskRepo) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Task, error) {
	return r.byMeeting[meetingID], nil
}

func (r *memTaskRepo) List(ctx context.Context, status entities.TaskStatus, limit, offset int) ([]*entities.Task, error) {
	return nil, nil
}

func (r *memTaskRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Task, error) {
	return nil, nil
}

func (r *memTaskRepo) Update(ctx context.Context, task *entities.Task) error { return nil }

func (r *memTaskRepo) UpdateStatus(ctx context.Context, ids []uuid.UUID, status entities.TaskStatus) error {
	return nil
}

func (r *memTaskRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type memQueue struct {
	mu   sync.Mutex
	jobs []*queue.ImportJob
	err  error
}

func (q *memQueue) Enqueue(ctx context.Context, job *queue.ImportJob) error {
	if q.err != nil {
		return q.err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *memQueue) Dequeue(ctx context.Context) (*queue.ImportJob, error) {
	return nil, queue.ErrEmpty
}

func (q *memQueue) Length(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.jobs)), nil
}

type recordingCanceller struct {
	cancelled []uuid.UUID
}

func (r *recordingCanceller) Cancel(meetingID uuid.UUID) bool {
	r.cancelled = append(r.cancelled, meetingID)
	return true
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	return e
}

func TestSubmitImportQueuesMeeting(t *testing.T) {
	repo := newMemMeetingRepo()
	q := &memQueue{}
	h := NewMeetingHandler(repo, &memTaskRepo{}, q, nil, nil)
	e := newEcho()

	body := `{"title": "Sprint planning", "source_text": "Alice: we need retries."}`
	req := httptest.NewRequest(http.MethodPost, "/v1/meetings/import", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.SubmitImport(e.NewContext(req, rec)); err != nil {
		t.Fatalf("SubmitImport() error = %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}

	var resp struct {
		MeetingID uuid.UUID `json:"meeting_id"`
		Status    string    `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Status != "queued" {
		t.Errorf("status = %q, want queued", resp.Status)
	}

	stored, err := repo.FindByID(context.Background(), resp.MeetingID)
	if err != nil {
		t.Fatalf("meeting not persisted: %v", err)
	}
	if stored.Status != entities.MeetingStatusQueued {
		t.Errorf("stored status = %s, want queued", stored.Status)
	}
	if len(q.jobs) != 1 || q.jobs[0].MeetingID != resp.MeetingID {
		t.Errorf("expected one queued job for the meeting, got %v", q.jobs)
	}
}

func TestSubmitImportRejectsAmbiguousSource(t *testing.T) {
	h := NewMeetingHandler(newMemMeetingRepo(), &memTaskRepo{}, &memQueue{}, nil, nil)
	e := newEcho()

	cases := []string{
		`{"title": "No source"}`,
		`{"title": "Both sources", "source_blob": "recordings/a.wav", "source_text": "hello"}`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/v1/meetings/import", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()

		if err := h.SubmitImport(e.NewContext(req, rec)); err != nil {
			t.Fatalf("SubmitImport() error = %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestSubmitImportReportsQueueOutage(t *testing.T) {
	q := &memQueue{err: context.DeadlineExceeded}
	h := NewMeetingHandler(newMemMeetingRepo(), &memTaskRepo{}, q, nil, nil)
	e := newEcho()

	body := `{"title": "Sprint planning", "source_text": "hello"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/meetings/import", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.SubmitImport(e.NewContext(req, rec)); err != nil {
		t.Fatalf("SubmitImport() error = %v", err)
	}
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INTEGRATION_QUEUE_FAILED") {
		t.Errorf("body = %s, want the queue failure code", rec.Body.String())
	}
}

func TestGetStatusReportsFailure(t *testing.T) {
	m := entities.NewMeeting("Backlog grooming", time.Now())
	_ = m.MarkProcessing()
	_ = m.MarkFailed("transcription failed: upstream error")
	repo := newMemMeetingRepo(m)

	h := NewMeetingHandler(repo, &memTaskRepo{}, &memQueue{}, nil, nil)
	e := newEcho()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(m.ID.String())

	if err := h.GetStatus(c); err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Status        string  `json:"status"`
		FailureReason *string `json:"failure_reason"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Status != "failed" || resp.FailureReason == nil {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestGetStatusUnknownMeeting(t *testing.T) {
	h := NewMeetingHandler(newMemMeetingRepo(), &memTaskRepo{}, &memQueue{}, nil, nil)
	e := newEcho()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	if err := h.GetStatus(c); err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "MEETING_NOT_FOUND") {
		t.Errorf("body = %s, want the meeting not found code", rec.Body.String())
	}
}

func TestDeleteCancelsInFlightImport(t *testing.T) {
	m := entities.NewMeeting("Standup", time.Now())
	repo := newMemMeetingRepo(m)
	canceller := &recordingCanceller{}

	h := NewMeetingHandler(repo, &memTaskRepo{}, &memQueue{}, canceller, nil)
	e := newEcho()

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(m.ID.String())

	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(canceller.cancelled) != 1 || canceller.cancelled[0] != m.ID {
		t.Error("expected the in-flight import to be cancelled")
	}
	if _, err := repo.FindByID(context.Background(), m.ID); err == nil {
		t.Error("meeting must be gone after delete")
	}
}
