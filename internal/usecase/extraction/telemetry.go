package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/entities"
)

// ArtifactStore uploads run artifacts to blob storage
type ArtifactStore interface {
	UploadText(ctx context.Context, objectName string, content string) error
	UploadJSON(ctx context.Context, objectName string, payload []byte) error
}

// runTelemetry is the JSON payload recorded for every finished run
type runTelemetry struct {
	RunID           string  `json:"run_id"`
	MeetingID       string  `json:"meeting_id"`
	Outcome         string  `json:"outcome"`
	FailureReason   string  `json:"failure_reason,omitempty"`
	TaskCount       int     `json:"task_count"`
	DurationSeconds float64 `json:"duration_seconds"`
	StartedAt       string  `json:"started_at"`
	CompletedAt     string  `json:"completed_at,omitempty"`
}

// TelemetryRecorder writes one artifact per finished extraction run.
// Recording is best effort: a telemetry failure is logged and swallowed,
// it never changes the run's outcome.
type TelemetryRecorder struct {
	store  ArtifactStore
	logger *zap.Logger
}

// NewTelemetryRecorder creates a telemetry recorder
func NewTelemetryRecorder(store ArtifactStore, logger *zap.Logger) *TelemetryRecorder {
	return &TelemetryRecorder{store: store, logger: logger}
}

// Record uploads the run summary and returns the artifact ref, or empty
// string when recording failed.
func (t *TelemetryRecorder) Record(ctx context.Context, run *entities.ExtractionRun) string {
	if t.store == nil || run == nil {
		return ""
	}

	payload := runTelemetry{
		RunID:           run.ID.String(),
		MeetingID:       run.MeetingID.String(),
		Outcome:         string(run.Outcome),
		TaskCount:       run.TaskCount,
		DurationSeconds: run.Duration().Seconds(),
		StartedAt:       run.StartedAt.Format(time.RFC3339),
	}
	if run.FailureReason != nil {
		payload.FailureReason = *run.FailureReason
	}
	if run.CompletedAt != nil {
		payload.CompletedAt = run.CompletedAt.Format(time.RFC3339)
	}

	b, err := json.Marshal(payload)
	if err != nil {
		if t.logger != nil {
			t.logger.Warn("⚠️ Failed to marshal run telemetry", zap.Error(err))
		}
		return ""
	}

	ref := fmt.Sprintf("telemetry/%s/%s.json", run.MeetingID, run.ID)
	if err := t.store.UploadJSON(ctx, ref, b); err != nil {
		if t.logger != nil {
			t.logger.Warn("⚠️ Failed to upload run telemetry",
				zap.String("run_id", run.ID.String()),
				zap.Error(err),
			)
		}
		return ""
	}
	return ref
}
