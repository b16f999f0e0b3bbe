package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kgwiazdak/sprint-planning-copilot/pkg/config"
)

// Extractor turns a transcript into a raw JSON payload of draft tasks
type Extractor interface {
	ExtractTasks(ctx context.Context, transcript string) (string, error)
}

const extractionSystemPrompt = `You are a sprint planning assistant. Extract actionable backlog items from the meeting transcript.
Return ONLY a JSON object of the form {"tasks": [...]} where every task has:
- "summary": short imperative title
- "description": what needs to be done and why
- "issue_type": one of "Story", "Task", "Bug", "Spike"
- "priority": one of "Low", "Medium", "High"
- "story_points": integer estimate or null
- "labels": array of short lowercase labels
- "source_quote": the transcript line the task came from
- "assignee": the speaker who took the work, or null
Only include items that are clearly actionable. Do not invent work nobody mentioned.`

// GroqClient is a minimal client for Groq chat completions used for task extraction
type GroqClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewGroqClient creates a Groq client from config
func NewGroqClient(cfg *config.ExtractorConfig) *GroqClient {
	base := "https://api.groq.com/openai/v1"
	model := "llama-3.3-70b-versatile"
	timeout := 2 * time.Minute
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
		if cfg.BaseURL != "" {
			base = cfg.BaseURL
		}
		if cfg.Model != "" {
			model = cfg.Model
		}
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
	}

	return &GroqClient{
		apiKey:  apiKey,
		baseURL: base,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model       string      `json:"model,omitempty"`
	Messages    interface{} `json:"messages,omitempty"`
	Temperature float64     `json:"temperature,omitempty"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExtractTasks sends the transcript to Groq and returns the assistant content
func (g *GroqClient) ExtractTasks(ctx context.Context, transcript string) (string, error) {
	reqBody := ChatRequest{
		Model: g.model,
		Messages: []map[string]string{
			{"role": "system", "content": extractionSystemPrompt},
			{"role": "user", "content": transcript},
		},
		Temperature: 0.2,
		MaxTokens:   8000,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := g.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("groq returned status %d", resp.StatusCode)
	}

	var cr ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("empty response from groq")
	}
	return cr.Choices[0].Message.Content, nil
}
