package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/entities"
)

// MeetingRepository defines the interface for meeting data access
type MeetingRepository interface {
	// Create creates a new meeting
	Create(ctx context.Context, meeting *entities.Meeting) error

	// FindByID finds a meeting by ID, with its draft task count filled in
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)

	// List returns meetings newest first, with draft task counts filled in
	List(ctx context.Context, limit, offset int) ([]*entities.Meeting, error)

	// Claim atomically moves a queued meeting to processing. Returns
	// entities.ErrMeetingNotClaimable when the meeting is not queued,
	// which is how a second worker loses the race.
	Claim(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)

	// Update persists meeting fields
	Update(ctx context.Context, meeting *entities.Meeting) error

	// Delete removes a meeting and its tasks
	Delete(ctx context.Context, id uuid.UUID) error
}
