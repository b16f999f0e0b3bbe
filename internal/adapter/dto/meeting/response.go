package meeting

import (
	"time"

	"github.com/google/uuid"

	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/entities"
)

// ImportAccepted is the 202 body for a queued import
type ImportAccepted struct {
	MeetingID uuid.UUID `json:"meeting_id"`
	Status    string    `json:"status"`
}

// StatusResponse is the lightweight polling body for an import in flight
type StatusResponse struct {
	MeetingID      uuid.UUID `json:"meeting_id"`
	Status         string    `json:"status"`
	FailureReason  *string   `json:"failure_reason,omitempty"`
	DraftTaskCount int       `json:"draft_task_count"`
}

// Response is the full meeting representation
type Response struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	StartedAt      time.Time `json:"started_at"`
	Status         string    `json:"status"`
	FailureReason  *string   `json:"failure_reason,omitempty"`
	SourceBlob     *string   `json:"source_blob,omitempty"`
	HasSourceText  bool      `json:"has_source_text"`
	DraftTaskCount int       `json:"draft_task_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FromEntity maps a meeting entity to its API representation
func FromEntity(m *entities.Meeting) *Response {
	return &Response{
		ID:             m.ID,
		Title:          m.Title,
		StartedAt:      m.StartedAt,
		Status:         string(m.Status),
		FailureReason:  m.FailureReason,
		SourceBlob:     m.SourceBlob,
		HasSourceText:  m.SourceText != nil && *m.SourceText != "",
		DraftTaskCount: m.DraftTaskCount,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// StatusFromEntity maps a meeting entity to the polling body
func StatusFromEntity(m *entities.Meeting) *StatusResponse {
	return &StatusResponse{
		MeetingID:      m.ID,
		Status:         string(m.Status),
		FailureReason:  m.FailureReason,
		DraftTaskCount: m.DraftTaskCount,
	}
}
