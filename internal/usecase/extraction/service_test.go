package extraction

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/entities"
	"github.com/kgwiazdak/sprint-planning-copilot/pkg/ai"
)

type fakeRunRepo struct {
	mu           sync.Mutex
	successRun   *entities.ExtractionRun
	successTasks []*entities.Task
	failureRun   *entities.ExtractionRun
	updatedRun   *entities.ExtractionRun
	finalizeErr  error
}

func (f *fakeRunRepo) FinalizeSuccess(ctx context.Context, run *entities.ExtractionRun, meeting *entities.Meeting, tasks []*entities.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finalizeErr != nil {
		return f.finalizeErr
	}
	f.successRun = run
	f.successTasks = tasks
	return nil
}

func (f *fakeRunRepo) FinalizeFailure(ctx context.Context, run *entities.ExtractionRun, meeting *entities.Meeting) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finalizeErr != nil {
		return f.finalizeErr
	}
	f.failureRun = run
	return nil
}

func (f *fakeRunRepo) Update(ctx context.Context, run *entities.ExtractionRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updatedRun = run
	return nil
}

func (f *fakeRunRepo) success() *entities.ExtractionRun {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.successRun
}

func (f *fakeRunRepo) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.ExtractionRun, error) {
	return nil, nil
}

type fakeUserRepo struct {
	users []*entities.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entities.User) error { return nil }

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (f *fakeUserRepo) FindByDisplayName(ctx context.Context, name string) (*entities.User, error) {
	for _, u := range f.users {
		if u.DisplayName == name {
			return u, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, user *entities.User) error { return nil }

func (f *fakeUserRepo) List(ctx context.Context) ([]*entities.User, error) {
	return f.users, nil
}

type fakeArtifacts struct {
	texts map[string]string
	jsons map[string][]byte
	fail  bool
}

func newFakeArtifacts() *fakeArtifacts {
	return &fakeArtifacts{texts: map[string]string{}, jsons: map[string][]byte{}}
}

func (f *fakeArtifacts) UploadText(ctx context.Context, objectName string, content string) error {
	if f.fail {
		return errors.New("bucket unavailable")
	}
	f.texts[objectName] = content
	return nil
}

func (f *fakeArtifacts) UploadJSON(ctx context.Context, objectName string, payload []byte) error {
	if f.fail {
		return errors.New("bucket unavailable")
	}
	f.jsons[objectName] = payload
	return nil
}

type fakeExtractor struct {
	raw string
	err error
}

func (f *fakeExtractor) ExtractTasks(ctx context.Context, transcript string) (string, error) {
	return f.raw, f.err
}

func processingMeeting(t *testing.T, sourceText string) *entities.Meeting {
	t.Helper()
	meeting := entities.NewMeeting("Sprint planning", time.Now())
	if sourceText != "" {
		meeting.SourceText = &sourceText
	}
	if err := meeting.MarkProcessing(); err != nil {
		t.Fatalf("MarkProcessing() error = %v", err)
	}
	return meeting
}

func newTestService(runRepo *fakeRunRepo, userRepo *fakeUserRepo, extractor ai.Extractor, artifacts *fakeArtifacts) *Service {
	telemetry := NewTelemetryRecorder(artifacts, nil)
	return NewService(nil, runRepo, userRepo, ai.NewMockTranscriber(), extractor, telemetry, nil, nil, artifacts, nil, nil)
}

func TestRunCompletesWithDraftTasks(t *testing.T) {
	alice := entities.NewUser("Alice Kim")
	runRepo := &fakeRunRepo{}
	userRepo := &fakeUserRepo{users: []*entities.User{alice}}
	artifacts := newFakeArtifacts()
	extractor := &fakeExtractor{raw: `{"tasks": [
		{"summary": "Add retry to the uploader", "description": "Wrap uploads in bounded retries.", "issue_type": "Task", "priority": "High", "story_points": 3, "labels": ["backend"], "assignee": "Alice Kim"},
		{"summary": "Fix login redirect loop", "description": "Expired sessions loop forever.", "issue_type": "Bug", "priority": "Medium"}
	]}`}

	svc := newTestService(runRepo, userRepo, extractor, artifacts)
	meeting := processingMeeting(t, "Alice: we need retries on the uploader.")

	if err := svc.Run(context.Background(), meeting); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if runRepo.successRun == nil {
		t.Fatal("expected FinalizeSuccess to be called")
	}
	if runRepo.failureRun != nil {
		t.Fatal("FinalizeFailure must not be called on success")
	}
	if meeting.Status != entities.MeetingStatusCompleted {
		t.Errorf("meeting status = %s, want completed", meeting.Status)
	}
	if len(runRepo.successTasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(runRepo.successTasks))
	}
	if runRepo.successRun.TaskCount != 2 {
		t.Errorf("run task count = %d, want 2", runRepo.successRun.TaskCount)
	}
	if runRepo.successRun.Outcome != entities.RunOutcomeSuccess {
		t.Errorf("run outcome = %s, want success", runRepo.successRun.Outcome)
	}

	first := runRepo.successTasks[0]
	if first.Status != entities.TaskStatusDraft {
		t.Errorf("task status = %s, want draft", first.Status)
	}
	if first.AssigneeID == nil || *first.AssigneeID != alice.ID {
		t.Errorf("task assignee = %v, want %v", first.AssigneeID, alice.ID)
	}
	if runRepo.successTasks[1].AssigneeID != nil {
		t.Error("unassigned draft must keep nil assignee")
	}

	if runRepo.successRun.TranscriptRef == nil {
		t.Error("expected transcript artifact ref on the run")
	}
	if runRepo.successRun.TelemetryRef == nil {
		t.Error("expected telemetry artifact ref on the run")
	}
	if runRepo.updatedRun == nil {
		t.Error("expected the telemetry ref to be persisted on the run record")
	}
}

func TestRunFailsOnRejectedPayload(t *testing.T) {
	runRepo := &fakeRunRepo{}
	userRepo := &fakeUserRepo{}
	artifacts := newFakeArtifacts()
	extractor := &fakeExtractor{raw: `{"tasks": [{"summary": "x", "description": "too short summary", "issue_type": "Task", "priority": "Low"}]}`}

	svc := newTestService(runRepo, userRepo, extractor, artifacts)
	meeting := processingMeeting(t, "some transcript")

	if err := svc.Run(context.Background(), meeting); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if runRepo.successRun != nil {
		t.Fatal("FinalizeSuccess must not be called when the payload is rejected")
	}
	if runRepo.failureRun == nil {
		t.Fatal("expected FinalizeFailure to be called")
	}
	if meeting.Status != entities.MeetingStatusFailed {
		t.Errorf("meeting status = %s, want failed", meeting.Status)
	}
	if meeting.FailureReason == nil || !strings.Contains(*meeting.FailureReason, "rejected") {
		t.Errorf("failure reason = %v, want schema rejection", meeting.FailureReason)
	}
	if runRepo.failureRun.Outcome != entities.RunOutcomeFailure {
		t.Errorf("run outcome = %s, want failure", runRepo.failureRun.Outcome)
	}
}

func TestRunFailsOnExtractorError(t *testing.T) {
	runRepo := &fakeRunRepo{}
	artifacts := newFakeArtifacts()
	extractor := &fakeExtractor{err: errors.New("model overloaded")}

	svc := newTestService(runRepo, &fakeUserRepo{}, extractor, artifacts)
	meeting := processingMeeting(t, "some transcript")

	if err := svc.Run(context.Background(), meeting); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if runRepo.failureRun == nil {
		t.Fatal("expected FinalizeFailure to be called")
	}
	if meeting.FailureReason == nil || !strings.Contains(*meeting.FailureReason, "task extraction failed") {
		t.Errorf("failure reason = %v", meeting.FailureReason)
	}
}

func TestRunFailsWithoutSource(t *testing.T) {
	runRepo := &fakeRunRepo{}
	artifacts := newFakeArtifacts()

	svc := newTestService(runRepo, &fakeUserRepo{}, &fakeExtractor{}, artifacts)
	meeting := processingMeeting(t, "")

	if err := svc.Run(context.Background(), meeting); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if runRepo.failureRun == nil {
		t.Fatal("expected FinalizeFailure to be called")
	}
	if meeting.Status != entities.MeetingStatusFailed {
		t.Errorf("meeting status = %s, want failed", meeting.Status)
	}
}

func TestRunSurvivesArtifactOutage(t *testing.T) {
	runRepo := &fakeRunRepo{}
	artifacts := newFakeArtifacts()
	artifacts.fail = true
	extractor := &fakeExtractor{raw: `{"tasks": []}`}

	svc := newTestService(runRepo, &fakeUserRepo{}, extractor, artifacts)
	meeting := processingMeeting(t, "quiet meeting")

	if err := svc.Run(context.Background(), meeting); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if runRepo.successRun == nil {
		t.Fatal("artifact upload failures must not fail the run")
	}
	if runRepo.successRun.TranscriptRef != nil {
		t.Error("transcript ref must stay nil when the upload failed")
	}
	if runRepo.successRun.TelemetryRef != nil {
		t.Error("telemetry ref must stay nil when the upload failed")
	}
	if meeting.Status != entities.MeetingStatusCompleted {
		t.Errorf("meeting status = %s, want completed", meeting.Status)
	}
}

func TestRunDiscardsResultsForDeletedMeeting(t *testing.T) {
	runRepo := &fakeRunRepo{finalizeErr: entities.ErrMeetingNotFound}
	artifacts := newFakeArtifacts()
	extractor := &fakeExtractor{raw: `{"tasks": []}`}

	svc := newTestService(runRepo, &fakeUserRepo{}, extractor, artifacts)
	meeting := processingMeeting(t, "some transcript")

	if err := svc.Run(context.Background(), meeting); err != nil {
		t.Fatalf("Run() on deleted meeting must not error, got %v", err)
	}
	if len(artifacts.jsons) != 0 {
		t.Error("telemetry must not be recorded for discarded results")
	}
}

func TestRunSkipsTelemetryWhenPersistFails(t *testing.T) {
	runRepo := &fakeRunRepo{finalizeErr: errors.New("database is down")}
	artifacts := newFakeArtifacts()
	extractor := &fakeExtractor{raw: `{"tasks": []}`}

	svc := newTestService(runRepo, &fakeUserRepo{}, extractor, artifacts)
	meeting := processingMeeting(t, "some transcript")

	if err := svc.Run(context.Background(), meeting); err == nil {
		t.Fatal("Run() must surface the persist failure")
	}
	if len(artifacts.jsons) != 0 {
		t.Error("a run that never landed must not emit a success telemetry artifact")
	}
}
