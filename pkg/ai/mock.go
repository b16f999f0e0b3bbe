package ai

import (
	"context"
	"io"
)

// MockTranscriber returns a canned diarized transcript without any network
// calls. Used in development and tests.
type MockTranscriber struct{}

// NewMockTranscriber creates a mock transcriber
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{}
}

// Transcribe drains the reader and returns a fixed two-speaker transcript
func (m *MockTranscriber) Transcribe(ctx context.Context, audio io.Reader) (*Transcript, error) {
	if audio != nil {
		_, _ = io.Copy(io.Discard, audio)
	}
	return &Transcript{
		Text: "We need to fix the login timeout before the release. I will take the rate limiting work.",
		Utterances: []Utterance{
			{Speaker: "A", Text: "We need to fix the login timeout before the release.", StartTime: 0.5, EndTime: 4.2, Confidence: 0.94},
			{Speaker: "B", Text: "I will take the rate limiting work.", StartTime: 4.8, EndTime: 7.1, Confidence: 0.91},
		},
	}, nil
}

// MockExtractor returns canned draft tasks without any network calls
type MockExtractor struct{}

// NewMockExtractor creates a mock extractor
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

// ExtractTasks returns a fixed JSON payload in the extraction schema
func (m *MockExtractor) ExtractTasks(ctx context.Context, transcript string) (string, error) {
	return `{"tasks":[` +
		`{"summary":"Fix login timeout before release","description":"Login sessions expire too aggressively and users are logged out mid-flow.","issue_type":"Bug","priority":"High","story_points":3,"labels":["auth"],"source_quote":"We need to fix the login timeout before the release.","assignee":"Speaker A"},` +
		`{"summary":"Add rate limiting to the public API","description":"Introduce per-client rate limits on the public endpoints.","issue_type":"Story","priority":"Medium","story_points":5,"labels":["api","security"],"source_quote":"I will take the rate limiting work.","assignee":"Speaker B"}` +
		`]}`, nil
}
