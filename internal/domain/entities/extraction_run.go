package entities

import (
	"time"

	"github.com/google/uuid"
)

// RunOutcome represents the result of a single extraction attempt
type RunOutcome string

const (
	RunOutcomeSuccess RunOutcome = "success"
	RunOutcomeFailure RunOutcome = "failure"
)

// ExtractionRun is one processing attempt over a meeting. Rows are
// append-only; the meeting's current state reflects its most recent run.
type ExtractionRun struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID     uuid.UUID  `json:"meeting_id" gorm:"type:uuid;not null;index"`
	StartedAt     time.Time  `json:"started_at" gorm:"type:timestamp;not null"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" gorm:"type:timestamp"`
	Outcome       RunOutcome `json:"outcome" gorm:"type:varchar(20)"`
	FailureReason *string    `json:"failure_reason,omitempty" gorm:"type:text"`
	TranscriptRef *string    `json:"transcript_ref,omitempty" gorm:"type:text"` // blob object holding the transcript artifact
	TelemetryRef  *string    `json:"telemetry_ref,omitempty" gorm:"type:text"`  // blob object holding the telemetry payload
	TaskCount     int        `json:"task_count" gorm:"type:integer;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// NewExtractionRun creates a run for a processing attempt that just started
func NewExtractionRun(meetingID uuid.UUID) *ExtractionRun {
	now := time.Now()
	return &ExtractionRun{
		ID:        uuid.New(),
		MeetingID: meetingID,
		StartedAt: now,
		CreatedAt: now,
	}
}

// Finish records the outcome of the run
func (r *ExtractionRun) Finish(outcome RunOutcome, failureReason string) {
	now := time.Now()
	r.CompletedAt = &now
	r.Outcome = outcome
	if failureReason != "" {
		r.FailureReason = &failureReason
	}
}

// Duration returns the elapsed time of the run, zero while still in flight
func (r *ExtractionRun) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// TableName specifies the table name for GORM
func (ExtractionRun) TableName() string {
	return "extraction_runs"
}
