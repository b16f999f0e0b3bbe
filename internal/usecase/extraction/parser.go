package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TaskDraft is one extracted backlog item before persistence
type TaskDraft struct {
	Summary     string   `json:"summary" validate:"required,min=3,max=300"`
	Description string   `json:"description" validate:"required,min=1"`
	IssueType   string   `json:"issue_type" validate:"required,oneof=Story Task Bug Spike"`
	Priority    string   `json:"priority" validate:"required,oneof=Low Medium High"`
	StoryPoints *int     `json:"story_points" validate:"omitempty,min=0,max=100"`
	Labels      []string `json:"labels" validate:"max=20"`
	SourceQuote string   `json:"source_quote"`
	Assignee    *string  `json:"assignee"`
}

type extractionPayload struct {
	Tasks []TaskDraft `json:"tasks" validate:"required,dive"`
}

// Parser validates the raw extractor output against the draft schema.
// One invalid task fails the whole payload, partial batches never land.
type Parser struct {
	validate *validator.Validate
	maxTasks int
}

// NewParser creates a new Parser instance
func NewParser(maxTasks int) *Parser {
	if maxTasks <= 0 {
		maxTasks = 50
	}
	return &Parser{
		validate: validator.New(),
		maxTasks: maxTasks,
	}
}

// Parse parses and validates the extractor's raw response
func (p *Parser) Parse(raw string) ([]TaskDraft, error) {
	raw = extractJSON(raw)

	var payload extractionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}
	if payload.Tasks == nil {
		return nil, fmt.Errorf("extraction response has no tasks field")
	}
	if len(payload.Tasks) > p.maxTasks {
		return nil, fmt.Errorf("extraction produced %d tasks, limit is %d", len(payload.Tasks), p.maxTasks)
	}

	if err := p.validate.Struct(&payload); err != nil {
		return nil, fmt.Errorf("extraction payload validation failed: %w", err)
	}

	return payload.Tasks, nil
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}
