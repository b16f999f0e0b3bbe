package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/entities"
)

// ExtractionRunRepository handles extraction run records
type ExtractionRunRepository struct {
	db *gorm.DB
}

// NewExtractionRunRepository creates a new extraction run repository
func NewExtractionRunRepository(db *gorm.DB) *ExtractionRunRepository {
	return &ExtractionRunRepository{db: db}
}

// FinalizeSuccess persists the run, its tasks and the completed meeting in
// one transaction. A crash between steps can never leave partial drafts.
func (r *ExtractionRunRepository) FinalizeSuccess(ctx context.Context, run *entities.ExtractionRun, meeting *entities.Meeting, tasks []*entities.Task) error {
	if run == nil || meeting == nil {
		return errors.New("run and meeting cannot be nil")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The meeting may have been deleted while the pipeline ran
		var exists int64
		if err := tx.Model(&entities.Meeting{}).
			Where("id = ?", meeting.ID).
			Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return entities.ErrMeetingNotFound
		}

		if err := tx.Create(run).Error; err != nil {
			return err
		}
		if len(tasks) > 0 {
			if err := tx.Create(tasks).Error; err != nil {
				return err
			}
		}
		return tx.Model(&entities.Meeting{}).
			Where("id = ?", meeting.ID).
			Updates(map[string]interface{}{
				"status":         meeting.Status,
				"failure_reason": meeting.FailureReason,
				"updated_at":     meeting.UpdatedAt,
			}).Error
	})
}

// FinalizeFailure persists the failed run together with the failed meeting
func (r *ExtractionRunRepository) FinalizeFailure(ctx context.Context, run *entities.ExtractionRun, meeting *entities.Meeting) error {
	if run == nil || meeting == nil {
		return errors.New("run and meeting cannot be nil")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&entities.Meeting{}).
			Where("id = ?", meeting.ID).
			Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return entities.ErrMeetingNotFound
		}

		if err := tx.Create(run).Error; err != nil {
			return err
		}
		return tx.Model(&entities.Meeting{}).
			Where("id = ?", meeting.ID).
			Updates(map[string]interface{}{
				"status":         meeting.Status,
				"failure_reason": meeting.FailureReason,
				"updated_at":     meeting.UpdatedAt,
			}).Error
	})
}

// Update persists mutations to an already finalized run record
func (r *ExtractionRunRepository) Update(ctx context.Context, run *entities.ExtractionRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

// ListByMeeting retrieves runs of a meeting, newest first
func (r *ExtractionRunRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.ExtractionRun, error) {
	var runs []*entities.ExtractionRun
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("started_at DESC").
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
