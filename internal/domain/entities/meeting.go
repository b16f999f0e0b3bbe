package entities

import (
	"time"

	"github.com/google/uuid"
)

// MeetingStatus represents the lifecycle state of an imported meeting
type MeetingStatus string

const (
	MeetingStatusQueued     MeetingStatus = "queued"     // Submitted, waiting for the worker
	MeetingStatusProcessing MeetingStatus = "processing" // Claimed by the worker, extraction in flight
	MeetingStatusCompleted  MeetingStatus = "completed"  // Extraction finished, draft tasks persisted
	MeetingStatusFailed     MeetingStatus = "failed"     // Extraction failed, reason recorded
)

// IsValid checks if the meeting status is a known value
func (s MeetingStatus) IsValid() bool {
	switch s {
	case MeetingStatusQueued, MeetingStatusProcessing, MeetingStatusCompleted, MeetingStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed out of this status
func (s MeetingStatus) IsTerminal() bool {
	return s == MeetingStatusCompleted || s == MeetingStatusFailed
}

// CanTransition reports whether from -> to is a legal lifecycle transition.
// The only legal chain is queued -> processing -> {completed, failed}.
func CanTransition(from, to MeetingStatus) bool {
	switch from {
	case MeetingStatusQueued:
		return to == MeetingStatusProcessing
	case MeetingStatusProcessing:
		return to == MeetingStatusCompleted || to == MeetingStatusFailed
	}
	return false
}

// Meeting represents an imported meeting recording
type Meeting struct {
	ID            uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title         string        `json:"title" gorm:"type:varchar(255);not null"`
	StartedAt     time.Time     `json:"started_at" gorm:"type:timestamp;not null"`
	Status        MeetingStatus `json:"status" gorm:"type:varchar(50);not null;index;default:'queued'"`
	FailureReason *string       `json:"failure_reason,omitempty" gorm:"type:text"`
	SourceBlob    *string       `json:"source_blob,omitempty" gorm:"type:text"` // blob reference for the uploaded recording
	SourceText    *string       `json:"source_text,omitempty" gorm:"type:text"` // pre-supplied transcript text, skips transcription

	// Derived, filled by the repository from a draft-count subquery
	DraftTaskCount int `json:"draft_task_count" gorm:"-"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewMeeting creates a meeting in the queued state
func NewMeeting(title string, startedAt time.Time) *Meeting {
	now := time.Now()
	return &Meeting{
		ID:        uuid.New(),
		Title:     title,
		StartedAt: startedAt,
		Status:    MeetingStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkProcessing transitions the meeting to processing
func (m *Meeting) MarkProcessing() error {
	if !CanTransition(m.Status, MeetingStatusProcessing) {
		return ErrInvalidTransition
	}
	m.Status = MeetingStatusProcessing
	m.UpdatedAt = time.Now()
	return nil
}

// MarkCompleted transitions the meeting to completed
func (m *Meeting) MarkCompleted() error {
	if !CanTransition(m.Status, MeetingStatusCompleted) {
		return ErrInvalidTransition
	}
	m.Status = MeetingStatusCompleted
	m.FailureReason = nil
	m.UpdatedAt = time.Now()
	return nil
}

// MarkFailed transitions the meeting to failed with a display-ready reason
func (m *Meeting) MarkFailed(reason string) error {
	if !CanTransition(m.Status, MeetingStatusFailed) {
		return ErrInvalidTransition
	}
	m.Status = MeetingStatusFailed
	m.FailureReason = &reason
	m.UpdatedAt = time.Now()
	return nil
}

// TableName specifies the table name for GORM
func (Meeting) TableName() string {
	return "meetings"
}
