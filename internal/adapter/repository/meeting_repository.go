package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/entities"
)

// MeetingRepository handles meeting data operations
type MeetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// Create creates a new meeting
func (r *MeetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	if meeting == nil {
		return errors.New("meeting cannot be nil")
	}
	return r.db.WithContext(ctx).Create(meeting).Error
}

// FindByID retrieves a meeting by ID with its draft task count
func (r *MeetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrMeetingNotFound
		}
		return nil, err
	}
	if err := r.fillDraftCounts(ctx, []*entities.Meeting{&meeting}); err != nil {
		return nil, err
	}
	return &meeting, nil
}

// List retrieves meetings newest first with their draft task counts
func (r *MeetingRepository) List(ctx context.Context, limit, offset int) ([]*entities.Meeting, error) {
	if limit <= 0 {
		limit = 50
	}
	var meetings []*entities.Meeting
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&meetings).Error; err != nil {
		return nil, err
	}
	if err := r.fillDraftCounts(ctx, meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}

// Claim atomically moves a queued meeting to processing. The guarded UPDATE
// makes concurrent claims race on RowsAffected, only one wins.
func (r *MeetingRepository) Claim(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ? AND status = ?", id, entities.MeetingStatusQueued).
		Update("status", entities.MeetingStatusProcessing)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// Either the meeting is gone or another worker got here first
		var exists int64
		if err := r.db.WithContext(ctx).
			Model(&entities.Meeting{}).
			Where("id = ?", id).
			Count(&exists).Error; err != nil {
			return nil, err
		}
		if exists == 0 {
			return nil, entities.ErrMeetingNotFound
		}
		return nil, entities.ErrMeetingNotClaimable
	}

	return r.FindByID(ctx, id)
}

// Update persists meeting fields
func (r *MeetingRepository) Update(ctx context.Context, meeting *entities.Meeting) error {
	if meeting == nil {
		return errors.New("meeting cannot be nil")
	}
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", meeting.ID).
		Save(meeting).Error
}

// Delete removes a meeting together with its tasks and runs
func (r *MeetingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meeting_id = ?", id).Delete(&entities.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("meeting_id = ?", id).Delete(&entities.ExtractionRun{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&entities.Meeting{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return entities.ErrMeetingNotFound
		}
		return nil
	})
}

// fillDraftCounts fills the derived draft task counts in one grouped query
func (r *MeetingRepository) fillDraftCounts(ctx context.Context, meetings []*entities.Meeting) error {
	if len(meetings) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(meetings))
	for _, m := range meetings {
		ids = append(ids, m.ID)
	}

	type draftCount struct {
		MeetingID uuid.UUID
		Count     int
	}
	var counts []draftCount
	if err := r.db.WithContext(ctx).
		Model(&entities.Task{}).
		Select("meeting_id, COUNT(*) as count").
		Where("meeting_id IN ? AND status = ?", ids, entities.TaskStatusDraft).
		Group("meeting_id").
		Scan(&counts).Error; err != nil {
		return err
	}

	byID := make(map[uuid.UUID]int, len(counts))
	for _, c := range counts {
		byID[c.MeetingID] = c.Count
	}
	for _, m := range meetings {
		m.DraftTaskCount = byID[m.ID]
	}
	return nil
}
