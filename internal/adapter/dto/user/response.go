package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/entities"
)

// Response is the user representation exposed to clients
type Response struct {
	ID             uuid.UUID `json:"id"`
	DisplayName    string    `json:"display_name"`
	Email          *string   `json:"email,omitempty"`
	JiraAccountID  *string   `json:"jira_account_id,omitempty"`
	HasVoiceSample bool      `json:"has_voice_sample"`
	CreatedAt      time.Time `json:"created_at"`
}

// FromEntity maps a user entity to its API representation
func FromEntity(u *entities.User) *Response {
	return &Response{
		ID:             u.ID,
		DisplayName:    u.DisplayName,
		Email:          u.Email,
		JiraAccountID:  u.JiraAccountID,
		HasVoiceSample: u.HasVoiceSample(),
		CreatedAt:      u.CreatedAt,
	}
}
