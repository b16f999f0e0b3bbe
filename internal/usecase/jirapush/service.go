package jirapush

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/entities"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/repositories"
	"github.com/kgwiazdak/sprint-planning-copilot/pkg/jira"
)

// OutcomeStatus is the per-task result of a bulk operation
type OutcomeStatus string

const (
	OutcomePushed        OutcomeStatus = "pushed"
	OutcomeAlreadyPushed OutcomeStatus = "already_pushed"
	OutcomeRejected      OutcomeStatus = "rejected"
	OutcomeSkipped       OutcomeStatus = "skipped"
	OutcomeFailed        OutcomeStatus = "failed"
)

// Outcome reports what happened to one task in a bulk operation.
// Bulk calls never abort midway, every requested ID gets an outcome.
type Outcome struct {
	TaskID   uuid.UUID     `json:"task_id"`
	Status   OutcomeStatus `json:"status"`
	IssueKey string        `json:"issue_key,omitempty"`
	IssueURL string        `json:"issue_url,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Service pushes approved tasks to the external tracker
type Service struct {
	tasks  repositories.TaskRepository
	users  repositories.UserRepository
	client jira.IssueCreator
	logger *zap.Logger
}

// NewService creates the push service
func NewService(tasks repositories.TaskRepository, users repositories.UserRepository, client jira.IssueCreator, logger *zap.Logger) *Service {
	return &Service{tasks: tasks, users: users, client: client, logger: logger}
}

// BulkApprove pushes each task to the tracker and marks it approved.
// Already-pushed tasks are reported as such without a second push, so
// retrying a partially failed batch is safe.
func (s *Service) BulkApprove(ctx context.Context, ids []uuid.UUID) []Outcome {
	outcomes := make([]Outcome, 0, len(ids))
	for _, id := range ids {
		outcomes = append(outcomes, s.approveOne(ctx, id))
	}
	return outcomes
}

func (s *Service) approveOne(ctx context.Context, id uuid.UUID) Outcome {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entities.ErrTaskNotFound) {
			return Outcome{TaskID: id, Status: OutcomeFailed, Error: "task not found"}
		}
		return Outcome{TaskID: id, Status: OutcomeFailed, Error: err.Error()}
	}

	if task.IsPushed() {
		return Outcome{
			TaskID:   id,
			Status:   OutcomeAlreadyPushed,
			IssueKey: *task.IssueKey,
			IssueURL: derefString(task.IssueURL),
		}
	}

	issue, err := s.client.CreateIssue(ctx, s.buildRequest(ctx, task))
	if err != nil {
		var rejected *jira.RejectedError
		if errors.As(err, &rejected) {
			if s.logger != nil {
				s.logger.Warn("⚠️ Tracker rejected task",
					zap.String("task_id", id.String()),
					zap.String("reason", rejected.Message),
				)
			}
			return Outcome{TaskID: id, Status: OutcomeRejected, Error: rejected.Message}
		}
		if s.logger != nil {
			s.logger.Error("❌ Failed to push task",
				zap.String("task_id", id.String()),
				zap.Error(err),
			)
		}
		return Outcome{TaskID: id, Status: OutcomeFailed, Error: err.Error()}
	}

	task.MarkPushed(issue.Key, issue.URL)
	if err := s.tasks.Update(ctx, task); err != nil {
		// The issue exists upstream, surface the key so nobody re-pushes it
		return Outcome{TaskID: id, Status: OutcomeFailed, IssueKey: issue.Key, IssueURL: issue.URL, Error: err.Error()}
	}

	if s.logger != nil {
		s.logger.Info("✅ Task pushed",
			zap.String("task_id", id.String()),
			zap.String("issue_key", issue.Key),
		)
	}
	return Outcome{TaskID: id, Status: OutcomePushed, IssueKey: issue.Key, IssueURL: issue.URL}
}

// BulkReject marks tasks as rejected. Tasks that already made it to the
// tracker are skipped, rejection never rewrites pushed history.
func (s *Service) BulkReject(ctx context.Context, ids []uuid.UUID) []Outcome {
	outcomes := make([]Outcome, 0, len(ids))
	for _, id := range ids {
		task, err := s.tasks.FindByID(ctx, id)
		if err != nil {
			outcomes = append(outcomes, Outcome{TaskID: id, Status: OutcomeFailed, Error: "task not found"})
			continue
		}
		if task.IsPushed() {
			outcomes = append(outcomes, Outcome{TaskID: id, Status: OutcomeSkipped, IssueKey: *task.IssueKey, Error: "task already pushed"})
			continue
		}
		task.Status = entities.TaskStatusRejected
		if err := s.tasks.Update(ctx, task); err != nil {
			outcomes = append(outcomes, Outcome{TaskID: id, Status: OutcomeFailed, Error: err.Error()})
			continue
		}
		outcomes = append(outcomes, Outcome{TaskID: id, Status: OutcomeRejected})
	}
	return outcomes
}

// buildRequest maps a task to the tracker payload, resolving the assignee
// to their tracker account when one is linked
func (s *Service) buildRequest(ctx context.Context, task *entities.Task) *jira.IssueRequest {
	req := &jira.IssueRequest{
		Summary:     task.Summary,
		Description: task.Description,
		IssueType:   string(task.IssueType),
		Priority:    string(task.Priority),
		StoryPoints: task.StoryPoints,
		Labels:      SanitizeLabels(task.LabelList()),
		SourceQuote: derefString(task.SourceQuote),
	}

	if task.AssigneeID != nil {
		user, err := s.users.FindByID(ctx, *task.AssigneeID)
		if err == nil && user.JiraAccountID != nil {
			req.AssigneeID = *user.JiraAccountID
		}
	}
	return req
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
