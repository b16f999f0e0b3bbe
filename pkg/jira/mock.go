package jira

import (
	"context"
	"fmt"
	"sync"
)

// MockClient issues sequential fake keys without touching the network.
// Used in development and tests.
type MockClient struct {
	mu         sync.Mutex
	counter    int
	projectKey string
}

// NewMockClient creates a mock issue creator
func NewMockClient(projectKey string) *MockClient {
	if projectKey == "" {
		projectKey = "SPC"
	}
	return &MockClient{projectKey: projectKey}
}

// CreateIssue returns the next sequential issue key
func (m *MockClient) CreateIssue(ctx context.Context, req *IssueRequest) (*Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	key := fmt.Sprintf("%s-%d", m.projectKey, m.counter)
	return &Issue{
		Key: key,
		URL: fmt.Sprintf("https://example.atlassian.net/browse/%s", key),
	}, nil
}
