package entities

import "errors"

// Domain errors
var (
	// Meeting errors
	ErrMeetingNotFound     = errors.New("meeting not found")
	ErrInvalidTransition   = errors.New("invalid meeting status transition")
	ErrMeetingNotClaimable = errors.New("meeting is not queued for processing")
	ErrNoMeetingSource     = errors.New("meeting has neither a source recording nor a transcript")

	// Task errors
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskAlreadyPushed  = errors.New("task already pushed to jira")
	ErrInvalidIssueType   = errors.New("invalid issue type")
	ErrInvalidPriority    = errors.New("invalid priority")
	ErrInvalidStoryPoints = errors.New("story points out of range")

	// Extraction run errors
	ErrRunNotFound = errors.New("extraction run not found")

	// User errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidName       = errors.New("invalid name")

	// Generic errors
	ErrInvalidRequest = errors.New("invalid request")
)
