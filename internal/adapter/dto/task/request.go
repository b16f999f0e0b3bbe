package task

import "github.com/google/uuid"

// UpdateRequest patches a draft task before it is pushed
type UpdateRequest struct {
	Summary     *string    `json:"summary" validate:"omitempty,min=3,max=300"`
	Description *string    `json:"description" validate:"omitempty,min=1"`
	IssueType   *string    `json:"issue_type" validate:"omitempty,issue_type"`
	Priority    *string    `json:"priority" validate:"omitempty,priority"`
	StoryPoints *int       `json:"story_points" validate:"omitempty,min=0,max=100"`
	Labels      []string   `json:"labels" validate:"omitempty,max=20"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
}

// BulkRequest selects tasks for a bulk approve or reject
type BulkRequest struct {
	TaskIDs []uuid.UUID `json:"task_ids" validate:"required,min=1,max=100"`
}

// ListQuery filters the task list
type ListQuery struct {
	Status string `query:"status" validate:"omitempty,task_status"`
}
