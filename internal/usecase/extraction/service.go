package extraction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/entities"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/repositories"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/infrastructure/audio"
	"github.com/kgwiazdak/sprint-planning-copilot/pkg/ai"
	"github.com/kgwiazdak/sprint-planning-copilot/pkg/config"
)

const ticksPerSecond = 10_000_000

// BlobStore reads stored objects
type BlobStore interface {
	GetFile(ctx context.Context, objectName string) (io.ReadCloser, error)
}

// Service runs the extraction pipeline for one claimed meeting
type Service struct {
	meetingRepo repositories.MeetingRepository
	runRepo     repositories.ExtractionRunRepository
	userRepo    repositories.UserRepository

	transcriber ai.Transcriber
	extractor   ai.Extractor
	parser      *Parser
	resolver    *Resolver
	telemetry   *TelemetryRecorder

	recordings BlobStore
	voices     BlobStore
	artifacts  ArtifactStore

	silenceMs int
	logger    *zap.Logger
}

// NewService creates the extraction pipeline service
func NewService(
	meetingRepo repositories.MeetingRepository,
	runRepo repositories.ExtractionRunRepository,
	userRepo repositories.UserRepository,
	transcriber ai.Transcriber,
	extractor ai.Extractor,
	telemetry *TelemetryRecorder,
	recordings BlobStore,
	voices BlobStore,
	artifacts ArtifactStore,
	cfg *config.Config,
	logger *zap.Logger,
) *Service {
	maxTasks := 50
	if cfg != nil {
		maxTasks = cfg.Extractor.MaxTasks
	}
	return &Service{
		meetingRepo: meetingRepo,
		runRepo:     runRepo,
		userRepo:    userRepo,
		transcriber: transcriber,
		extractor:   extractor,
		parser:      NewParser(maxTasks),
		resolver:    NewResolver(),
		telemetry:   telemetry,
		recordings:  recordings,
		voices:      voices,
		artifacts:   artifacts,
		silenceMs:   300,
		logger:      logger,
	}
}

// Run executes the pipeline for a meeting already claimed into processing.
// Task drafts land atomically with the completed state; telemetry is
// recorded once per persisted run, never for discarded results.
func (s *Service) Run(ctx context.Context, meeting *entities.Meeting) error {
	run := entities.NewExtractionRun(meeting.ID)

	transcriptText, speakers, err := s.buildTranscript(ctx, meeting)
	if err != nil {
		return s.fail(ctx, run, meeting, fmt.Sprintf("transcription failed: %v", err))
	}

	if ref := s.uploadTranscript(ctx, run, transcriptText); ref != "" {
		run.TranscriptRef = &ref
	}

	raw, err := s.extractor.ExtractTasks(ctx, transcriptText)
	if err != nil {
		return s.fail(ctx, run, meeting, fmt.Sprintf("task extraction failed: %v", err))
	}

	drafts, err := s.parser.Parse(raw)
	if err != nil {
		return s.fail(ctx, run, meeting, fmt.Sprintf("extraction payload rejected: %v", err))
	}

	tasks, err := s.materialize(ctx, meeting.ID, drafts, speakers)
	if err != nil {
		return s.fail(ctx, run, meeting, fmt.Sprintf("failed to assemble tasks: %v", err))
	}

	run.TaskCount = len(tasks)
	run.Finish(entities.RunOutcomeSuccess, "")

	if err := meeting.MarkCompleted(); err != nil {
		return err
	}
	if err := s.runRepo.FinalizeSuccess(ctx, run, meeting, tasks); err != nil {
		if errors.Is(err, entities.ErrMeetingNotFound) {
			// Deleted while we were processing, nothing left to write
			if s.logger != nil {
				s.logger.Info("🗑️ Meeting deleted mid-run, discarding results",
					zap.String("meeting_id", meeting.ID.String()),
				)
			}
			return nil
		}
		return err
	}

	// Telemetry only exists for runs that actually landed
	s.recordTelemetry(ctx, run)

	if s.logger != nil {
		s.logger.Info("✅ Extraction completed",
			zap.String("meeting_id", meeting.ID.String()),
			zap.Int("task_count", len(tasks)),
			zap.Duration("duration", run.Duration()),
		)
	}
	return nil
}

// fail records a failed run and moves the meeting to failed
func (s *Service) fail(ctx context.Context, run *entities.ExtractionRun, meeting *entities.Meeting, reason string) error {
	run.Finish(entities.RunOutcomeFailure, reason)

	if err := meeting.MarkFailed(reason); err != nil {
		return err
	}
	if err := s.runRepo.FinalizeFailure(ctx, run, meeting); err != nil {
		if errors.Is(err, entities.ErrMeetingNotFound) {
			return nil
		}
		return err
	}

	s.recordTelemetry(ctx, run)

	if s.logger != nil {
		s.logger.Error("❌ Extraction failed",
			zap.String("meeting_id", meeting.ID.String()),
			zap.String("reason", reason),
		)
	}
	return nil
}

// buildTranscript produces the transcript text and the diarization label
// to user mapping. A pre-supplied transcript skips audio work entirely.
func (s *Service) buildTranscript(ctx context.Context, meeting *entities.Meeting) (string, map[string]uuid.UUID, error) {
	if meeting.SourceText != nil && *meeting.SourceText != "" {
		return *meeting.SourceText, nil, nil
	}
	if meeting.SourceBlob == nil || *meeting.SourceBlob == "" {
		return "", nil, entities.ErrNoMeetingSource
	}

	recording, err := s.fetchBlob(ctx, *meeting.SourceBlob)
	if err != nil {
		return "", nil, fmt.Errorf("failed to fetch recording: %w", err)
	}

	audioPayload := recording
	var introRefs []IntroRef
	var meetingStart float64

	// Intro alignment only works on audio we can splice. Anything that is
	// not canonical PCM WAV goes to the transcriber untouched.
	if pcm, parseErr := audio.ParseWAV(recording); parseErr == nil {
		combined, spans, startTick, introErr := s.prependIntros(ctx, pcm)
		if introErr != nil {
			if s.logger != nil {
				s.logger.Warn("⚠️ Skipping intro alignment", zap.Error(introErr))
			}
		} else if len(spans) > 0 {
			audioPayload = combined
			meetingStart = float64(startTick) / ticksPerSecond
			introRefs = spans
		}
	}

	transcript, err := s.transcriber.Transcribe(ctx, bytes.NewReader(audioPayload))
	if err != nil {
		return "", nil, err
	}

	speakers := s.resolver.ResolveSpeakers(introRefs, transcript.Utterances)
	text := s.renderTranscript(ctx, transcript, speakers, meetingStart)
	if text == "" {
		return "", nil, fmt.Errorf("no speech could be recognized")
	}
	return text, speakers, nil
}

// prependIntros loads every known user's voice sample and splices the clips
// ahead of the meeting audio. Returns the spans as resolver input.
func (s *Service) prependIntros(ctx context.Context, meeting *audio.PCM) ([]byte, []IntroRef, int64, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, nil, 0, err
	}
	sortUsersByName(users)

	var clips []audio.IntroClip
	var owners []*entities.User
	for _, user := range users {
		if !user.HasVoiceSample() {
			continue
		}
		sample, err := s.fetchVoiceSample(ctx, *user.VoiceSampleRef)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("⚠️ Failed to load voice sample",
					zap.String("user", user.DisplayName),
					zap.Error(err),
				)
			}
			continue
		}
		pcm, err := audio.ParseWAV(sample)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("⚠️ Voice sample is not canonical WAV",
					zap.String("user", user.DisplayName),
					zap.Error(err),
				)
			}
			continue
		}
		clips = append(clips, audio.IntroClip{DisplayName: user.DisplayName, PCM: pcm})
		owners = append(owners, user)
	}

	combined, spans, startTick, err := audio.PrependIntros(meeting, clips, s.silenceMs)
	if err != nil {
		return nil, nil, 0, err
	}

	refs := make([]IntroRef, 0, len(spans))
	for i, span := range spans {
		refs = append(refs, IntroRef{
			UserID:      owners[i].ID,
			DisplayName: span.DisplayName,
			Start:       float64(span.StartTick) / ticksPerSecond,
			End:         float64(span.EndTick) / ticksPerSecond,
		})
	}
	return combined, refs, startTick, nil
}

// fetchBlob downloads the recording with bounded retries on transient errors
func (s *Service) fetchBlob(ctx context.Context, objectName string) ([]byte, error) {
	var payload []byte
	fetch := func() error {
		rc, err := s.recordings.GetFile(ctx, objectName)
		if err != nil {
			return err
		}
		defer rc.Close()
		payload, err = io.ReadAll(rc)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(fetch, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *Service) fetchVoiceSample(ctx context.Context, objectName string) ([]byte, error) {
	rc, err := s.voices.GetFile(ctx, objectName)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// renderTranscript turns diarized utterances into reviewable text, dropping
// everything before the meeting start offset (the intro clips themselves).
func (s *Service) renderTranscript(ctx context.Context, transcript *ai.Transcript, speakers map[string]uuid.UUID, meetingStart float64) string {
	if len(transcript.Utterances) == 0 {
		return strings.TrimSpace(transcript.Text)
	}

	names := s.displayNames(ctx, speakers)

	var lines []string
	for _, utt := range transcript.Utterances {
		if utt.StartTime < meetingStart {
			continue
		}
		text := strings.TrimSpace(utt.Text)
		if text == "" {
			continue
		}
		label := "Speaker " + utt.Speaker
		if name, ok := names[utt.Speaker]; ok {
			label = name
		}
		lines = append(lines, fmt.Sprintf("%s: %s", label, text))
	}
	return strings.Join(lines, "\n")
}

// displayNames loads the display names for resolved speaker labels
func (s *Service) displayNames(ctx context.Context, speakers map[string]uuid.UUID) map[string]string {
	names := make(map[string]string, len(speakers))
	for label, userID := range speakers {
		user, err := s.userRepo.FindByID(ctx, userID)
		if err != nil {
			continue
		}
		names[label] = user.DisplayName
	}
	return names
}

// materialize converts validated drafts into task entities
func (s *Service) materialize(ctx context.Context, meetingID uuid.UUID, drafts []TaskDraft, speakers map[string]uuid.UUID) ([]*entities.Task, error) {
	usersByName, err := s.usersByName(ctx)
	if err != nil {
		return nil, err
	}

	tasks := make([]*entities.Task, 0, len(drafts))
	for _, draft := range drafts {
		task := entities.NewTask(meetingID, draft.Summary)
		task.Description = draft.Description
		task.IssueType = entities.IssueType(draft.IssueType)
		task.Priority = entities.Priority(draft.Priority)
		task.StoryPoints = draft.StoryPoints
		task.SetLabels(draft.Labels)
		if draft.SourceQuote != "" {
			quote := draft.SourceQuote
			task.SourceQuote = &quote
		}
		if draft.Assignee != nil {
			task.AssigneeID = s.resolver.ResolveAssignee(*draft.Assignee, speakers, usersByName)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (s *Service) usersByName(ctx context.Context) (map[string]uuid.UUID, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]uuid.UUID, len(users))
	for _, user := range users {
		byName[user.DisplayName] = user.ID
	}
	return byName, nil
}

// recordTelemetry uploads the run summary after the run row exists and
// backfills the artifact ref, best effort
func (s *Service) recordTelemetry(ctx context.Context, run *entities.ExtractionRun) {
	ref := s.telemetry.Record(ctx, run)
	if ref == "" {
		return
	}
	run.TelemetryRef = &ref
	if err := s.runRepo.Update(ctx, run); err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Failed to persist telemetry ref",
				zap.String("run_id", run.ID.String()),
				zap.Error(err),
			)
		}
	}
}

// uploadTranscript stores the transcript artifact, best effort
func (s *Service) uploadTranscript(ctx context.Context, run *entities.ExtractionRun, text string) string {
	if s.artifacts == nil {
		return ""
	}
	ref := fmt.Sprintf("transcripts/%s/%s.txt", run.MeetingID, run.ID)
	if err := s.artifacts.UploadText(ctx, ref, text); err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Failed to upload transcript artifact",
				zap.String("run_id", run.ID.String()),
				zap.Error(err),
			)
		}
		return ""
	}
	return ref
}

// sortUsersByName keeps intro append order deterministic
func sortUsersByName(users []*entities.User) {
	sort.Slice(users, func(i, j int) bool {
		return users[i].DisplayName < users[j].DisplayName
	})
}
