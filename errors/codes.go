package errors

// ErrorCode is the machine-readable code carried on every AppError
type ErrorCode string

const (
	// General
	ErrorCode_INTERNAL         ErrorCode = "INTERNAL"
	ErrorCode_INVALID_ARGUMENT ErrorCode = "INVALID_ARGUMENT"
	ErrorCode_NOT_FOUND        ErrorCode = "NOT_FOUND"

	// Meeting import
	ErrorCode_MEETING_NOT_FOUND      ErrorCode = "MEETING_NOT_FOUND"
	ErrorCode_MEETING_NOT_QUEUED     ErrorCode = "MEETING_NOT_QUEUED"
	ErrorCode_MEETING_SOURCE_MISSING ErrorCode = "MEETING_SOURCE_MISSING"

	// Tasks and review
	ErrorCode_TASK_NOT_FOUND      ErrorCode = "TASK_NOT_FOUND"
	ErrorCode_TASK_ALREADY_PUSHED ErrorCode = "TASK_ALREADY_PUSHED"

	// Infrastructure
	ErrorCode_INTEGRATION_QUEUE_FAILED   ErrorCode = "INTEGRATION_QUEUE_FAILED"
	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = "INTEGRATION_STORAGE_FAILED"
)

// String returns the code as a string
func (c ErrorCode) String() string {
	return string(c)
}
