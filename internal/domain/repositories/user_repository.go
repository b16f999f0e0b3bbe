package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/entities"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *entities.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error)

	// FindByDisplayName finds a user by display name
	FindByDisplayName(ctx context.Context, name string) (*entities.User, error)

	// Update persists user fields
	Update(ctx context.Context, user *entities.User) error

	// List returns all users ordered by display name
	List(ctx context.Context) ([]*entities.User, error)
}
