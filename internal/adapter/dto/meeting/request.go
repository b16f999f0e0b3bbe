package meeting

import "time"

// ImportRequest submits a meeting for asynchronous import. Exactly one of
// SourceBlob and SourceText must be set; a pre-supplied transcript skips
// the transcription stage entirely.
type ImportRequest struct {
	Title      string     `json:"title" validate:"required,min=1,max=255"`
	StartedAt  *time.Time `json:"started_at"`
	SourceBlob *string    `json:"source_blob" validate:"omitempty,min=1"`
	SourceText *string    `json:"source_text" validate:"omitempty,min=1"`
}

// HasSource reports whether exactly one import source is present
func (r *ImportRequest) HasSource() bool {
	hasBlob := r.SourceBlob != nil && *r.SourceBlob != ""
	hasText := r.SourceText != nil && *r.SourceText != ""
	return hasBlob != hasText
}

// UpdateRequest patches meeting metadata. Status is never writable here,
// only the import pipeline moves it.
type UpdateRequest struct {
	Title     *string    `json:"title" validate:"omitempty,min=1,max=255"`
	StartedAt *time.Time `json:"started_at"`
}

// ListQuery carries list pagination parameters
type ListQuery struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=200"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}
