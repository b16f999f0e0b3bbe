package storage

// UploadURLRequest asks for a presigned upload slot for a recording
type UploadURLRequest struct {
	FileName    string `json:"file_name" validate:"required,min=1,max=255"`
	ContentType string `json:"content_type" validate:"omitempty,max=100"`
}

// UploadURLResponse carries the presigned PUT URL and the object name the
// client should submit back as the meeting's source blob
type UploadURLResponse struct {
	URL        string `json:"url"`
	ObjectName string `json:"object_name"`
	ExpiresIn  int    `json:"expires_in_seconds"`
}
