package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TaskStatus represents the review state of a draft backlog item
type TaskStatus string

const (
	TaskStatusDraft    TaskStatus = "draft"
	TaskStatusApproved TaskStatus = "approved"
	TaskStatusRejected TaskStatus = "rejected"
)

// IsValid checks if the task status is a known value
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusDraft, TaskStatusApproved, TaskStatusRejected:
		return true
	}
	return false
}

// IssueType maps onto the external tracker's issue types
type IssueType string

const (
	IssueTypeStory IssueType = "Story"
	IssueTypeTask  IssueType = "Task"
	IssueTypeBug   IssueType = "Bug"
	IssueTypeSpike IssueType = "Spike"
)

// IsValid checks if the issue type is a known value
func (t IssueType) IsValid() bool {
	switch t {
	case IssueTypeStory, IssueTypeTask, IssueTypeBug, IssueTypeSpike:
		return true
	}
	return false
}

// Priority is the backlog priority of a task
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// IsValid checks if the priority is a known value
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a draft backlog item extracted from one meeting
type Task struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID   uuid.UUID      `json:"meeting_id" gorm:"type:uuid;not null;index"`
	Summary     string         `json:"summary" gorm:"type:varchar(300);not null"`
	Description string         `json:"description" gorm:"type:text"`
	IssueType   IssueType      `json:"issue_type" gorm:"type:varchar(20);not null"`
	Priority    Priority       `json:"priority" gorm:"type:varchar(20);not null;default:'Medium'"`
	StoryPoints *int           `json:"story_points,omitempty" gorm:"type:integer"`
	AssigneeID  *uuid.UUID     `json:"assignee_id,omitempty" gorm:"type:uuid;index"`
	Labels      datatypes.JSON `json:"labels" gorm:"type:jsonb;default:'[]'"`
	Status      TaskStatus     `json:"status" gorm:"type:varchar(20);not null;index;default:'draft'"`
	SourceQuote *string        `json:"source_quote,omitempty" gorm:"type:text"`

	// Set once by the push service, never overwritten
	IssueKey *string    `json:"issue_key,omitempty" gorm:"type:varchar(50);index"`
	IssueURL *string    `json:"issue_url,omitempty" gorm:"type:text"`
	PushedAt *time.Time `json:"pushed_at,omitempty" gorm:"type:timestamp"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewTask creates a draft task owned by a meeting
func NewTask(meetingID uuid.UUID, summary string) *Task {
	now := time.Now()
	return &Task{
		ID:        uuid.New(),
		MeetingID: meetingID,
		Summary:   summary,
		Priority:  PriorityMedium,
		Status:    TaskStatusDraft,
		Labels:    datatypes.JSON([]byte("[]")),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsPushed reports whether the task already carries an external issue key
func (t *Task) IsPushed() bool {
	return t.IssueKey != nil && *t.IssueKey != ""
}

// LabelList decodes the JSONB label set
func (t *Task) LabelList() []string {
	var labels []string
	if len(t.Labels) == 0 {
		return labels
	}
	_ = json.Unmarshal(t.Labels, &labels)
	return labels
}

// SetLabels encodes the label set into the JSONB column
func (t *Task) SetLabels(labels []string) {
	if labels == nil {
		labels = []string{}
	}
	b, err := json.Marshal(labels)
	if err != nil {
		return
	}
	t.Labels = datatypes.JSON(b)
}

// MarkPushed records the external issue reference and approves the task
func (t *Task) MarkPushed(issueKey, issueURL string) {
	now := time.Now()
	t.Status = TaskStatusApproved
	t.IssueKey = &issueKey
	t.IssueURL = &issueURL
	t.PushedAt = &now
	t.UpdatedAt = now
}

// TableName specifies the table name for GORM
func (Task) TableName() string {
	return "tasks"
}
