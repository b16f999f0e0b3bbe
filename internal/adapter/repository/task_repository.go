package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/entities"
)

// TaskRepository handles draft task data operations
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// FindByID retrieves a task by ID
func (r *TaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	var task entities.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// ListByMeeting retrieves all tasks of a meeting in creation order
func (r *TaskRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Task, error) {
	var tasks []*entities.Task
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// List retrieves tasks newest first, optionally filtered by review status
func (r *TaskRepository) List(ctx context.Context, status entities.TaskStatus, limit, offset int) ([]*entities.Task, error) {
	query := r.db.WithContext(ctx).Model(&entities.Task{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var tasks []*entities.Task
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByIDs retrieves the tasks matching the given IDs
func (r *TaskRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tasks []*entities.Task
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update persists task fields
func (r *TaskRepository) Update(ctx context.Context, task *entities.Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}
	return r.db.WithContext(ctx).Save(task).Error
}

// UpdateStatus sets the review status for a batch of tasks
func (r *TaskRepository) UpdateStatus(ctx context.Context, ids []uuid.UUID, status entities.TaskStatus) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&entities.Task{}).
		Where("id IN ?", ids).
		Update("status", status).Error
}

// Delete removes a task
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrTaskNotFound
	}
	return nil
}
