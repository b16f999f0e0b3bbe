package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kgwiazdak/sprint-planning-copilot/pkg/config"
)

// IssueRequest is the payload the push service assembles per task
type IssueRequest struct {
	Summary     string
	Description string
	IssueType   string
	Priority    string
	StoryPoints *int
	Labels      []string
	AssigneeID  string
	SourceQuote string
}

// Issue is the created tracker issue
type Issue struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// RejectedError carries the upstream validation message when the tracker
// refuses a payload. Rejections are per-issue and never retried.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("issue rejected: %s", e.Message)
}

// IssueCreator creates tracker issues from draft tasks
type IssueCreator interface {
	CreateIssue(ctx context.Context, req *IssueRequest) (*Issue, error)
}

// Client is a minimal Jira Cloud REST client
type Client struct {
	baseURL          string
	email            string
	apiToken         string
	projectKey       string
	storyPointsField string
	client           *http.Client
}

// NewClient creates a Jira client from config
func NewClient(cfg *config.JiraConfig) *Client {
	c := &Client{
		projectKey:       "SPC",
		storyPointsField: "customfield_10016",
		client:           &http.Client{Timeout: 30 * time.Second},
	}
	if cfg != nil {
		c.baseURL = strings.TrimRight(cfg.BaseURL, "/")
		c.email = cfg.Email
		c.apiToken = cfg.APIToken
		if cfg.ProjectKey != "" {
			c.projectKey = cfg.ProjectKey
		}
		if cfg.StoryPointsField != "" {
			c.storyPointsField = cfg.StoryPointsField
		}
	}
	return c
}

type createIssueResponse struct {
	Key string `json:"key"`
}

type jiraErrorResponse struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}

// CreateIssue creates one issue and returns its key and browse URL.
// A 4xx from Jira is returned as *RejectedError with the upstream message.
func (c *Client) CreateIssue(ctx context.Context, r *IssueRequest) (*Issue, error) {
	fields := map[string]interface{}{
		"project":     map[string]string{"key": c.projectKey},
		"summary":     r.Summary,
		"description": c.renderDescription(r),
		"issuetype":   map[string]string{"name": r.IssueType},
		"priority":    map[string]string{"name": r.Priority},
	}
	if len(r.Labels) > 0 {
		fields["labels"] = r.Labels
	}
	if r.AssigneeID != "" {
		fields["assignee"] = map[string]string{"accountId": r.AssigneeID}
	}
	if r.StoryPoints != nil {
		fields[c.storyPointsField] = *r.StoryPoints
	}

	b, err := json.Marshal(map[string]interface{}{"fields": fields})
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/rest/api/2/issue"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.email, c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, &RejectedError{Message: readErrorMessage(resp.Body)}
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("jira returned status %d", resp.StatusCode)
	}

	var created createIssueResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, err
	}
	if created.Key == "" {
		return nil, fmt.Errorf("jira response missing issue key")
	}

	return &Issue{
		Key: created.Key,
		URL: fmt.Sprintf("%s/browse/%s", c.baseURL, created.Key),
	}, nil
}

// renderDescription appends the source quote so reviewers can trace the
// issue back to the meeting.
func (c *Client) renderDescription(r *IssueRequest) string {
	if r.SourceQuote == "" {
		return r.Description
	}
	return fmt.Sprintf("%s\n\n{quote}%s{quote}", r.Description, r.SourceQuote)
}

func readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 64*1024))
	if err != nil {
		return "unreadable error response"
	}

	var parsed jiraErrorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil {
		parts := append([]string{}, parsed.ErrorMessages...)
		for field, msg := range parsed.Errors {
			parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}

	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		return "no error detail"
	}
	return msg
}
