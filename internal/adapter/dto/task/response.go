package task

import (
	"time"

	"github.com/google/uuid"

	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/entities"
)

// Response is the full draft task representation
type Response struct {
	ID          uuid.UUID  `json:"id"`
	MeetingID   uuid.UUID  `json:"meeting_id"`
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
	IssueType   string     `json:"issue_type"`
	Priority    string     `json:"priority"`
	StoryPoints *int       `json:"story_points,omitempty"`
	AssigneeID  *uuid.UUID `json:"assignee_id,omitempty"`
	Labels      []string   `json:"labels"`
	Status      string     `json:"status"`
	SourceQuote *string    `json:"source_quote,omitempty"`
	IssueKey    *string    `json:"issue_key,omitempty"`
	IssueURL    *string    `json:"issue_url,omitempty"`
	PushedAt    *time.Time `json:"pushed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// FromEntity maps a task entity to its API representation
func FromEntity(t *entities.Task) *Response {
	labels := t.LabelList()
	if labels == nil {
		labels = []string{}
	}
	return &Response{
		ID:          t.ID,
		MeetingID:   t.MeetingID,
		Summary:     t.Summary,
		Description: t.Description,
		IssueType:   string(t.IssueType),
		Priority:    string(t.Priority),
		StoryPoints: t.StoryPoints,
		AssigneeID:  t.AssigneeID,
		Labels:      labels,
		Status:      string(t.Status),
		SourceQuote: t.SourceQuote,
		IssueKey:    t.IssueKey,
		IssueURL:    t.IssueURL,
		PushedAt:    t.PushedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// FromEntities maps a task slice, never returning nil
func FromEntities(tasks []*entities.Task) []*Response {
	out := make([]*Response, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, FromEntity(t))
	}
	return out
}
