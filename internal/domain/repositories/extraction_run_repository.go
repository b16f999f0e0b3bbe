package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/entities"
)

// ExtractionRunRepository defines the interface for extraction run records
type ExtractionRunRepository interface {
	// FinalizeSuccess atomically persists the run, its extracted tasks and
	// the meeting's completed state in one transaction. Either everything
	// lands or nothing does.
	FinalizeSuccess(ctx context.Context, run *entities.ExtractionRun, meeting *entities.Meeting, tasks []*entities.Task) error

	// FinalizeFailure persists the failed run together with the meeting's
	// failed state. No tasks are written.
	FinalizeFailure(ctx context.Context, run *entities.ExtractionRun, meeting *entities.Meeting) error

	// Update persists mutations to an already finalized run record
	Update(ctx context.Context, run *entities.ExtractionRun) error

	// ListByMeeting returns the runs for a meeting, newest first
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.ExtractionRun, error)
}
