package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/entities"
)

// TaskRepository defines the interface for draft task data access
type TaskRepository interface {
	// FindByID finds a task by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Task, error)

	// ListByMeeting returns all tasks for a meeting in creation order
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Task, error)

	// List returns tasks newest first, optionally filtered by review status
	List(ctx context.Context, status entities.TaskStatus, limit, offset int) ([]*entities.Task, error)

	// ListByIDs returns the tasks matching the given IDs
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Task, error)

	// Update persists task fields
	Update(ctx context.Context, task *entities.Task) error

	// UpdateStatus sets the review status for a batch of tasks
	UpdateStatus(ctx context.Context, ids []uuid.UUID, status entities.TaskStatus) error

	// Delete removes a task
	Delete(ctx context.Context, id uuid.UUID) error
}
