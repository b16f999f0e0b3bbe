package entities

import (
	"time"

	"github.com/google/uuid"
)

// User is a known participant that extracted tasks can be assigned to.
// Rows are created by the voice-sample sync step or by a manual profile upload.
type User struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	DisplayName   string    `json:"display_name" gorm:"type:varchar(255);uniqueIndex;not null"`
	Email         *string   `json:"email,omitempty" gorm:"type:varchar(255)"`
	JiraAccountID *string   `json:"jira_account_id,omitempty" gorm:"type:varchar(255)"`

	// Blob object holding the user's voice-intro clip, if one was synced
	VoiceSampleRef *string `json:"voice_sample_ref,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewUser creates a user with default values
func NewUser(displayName string) *User {
	now := time.Now()
	return &User{
		ID:          uuid.New(),
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// HasVoiceSample checks if the user has a synced voice-intro clip
func (u *User) HasVoiceSample() bool {
	return u.VoiceSampleRef != nil && *u.VoiceSampleRef != ""
}

// SetVoiceSample records the blob reference of the user's intro clip
func (u *User) SetVoiceSample(ref string) {
	u.VoiceSampleRef = &ref
	u.UpdatedAt = time.Now()
}

// Validate validates user data
func (u *User) Validate() error {
	if u.DisplayName == "" {
		return ErrInvalidName
	}
	return nil
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
