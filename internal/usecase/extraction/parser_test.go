package extraction

import (
	"strings"
	"testing"
)

func TestParseValidPayload(t *testing.T) {
	parser := NewParser(50)

	raw := "```json\n" + `{
		"tasks": [
			{
				"summary": "Add retry to the uploader",
				"description": "Uploads fail on flaky networks, wrap them in bounded retries.",
				"issue_type": "Task",
				"priority": "High",
				"story_points": 3,
				"labels": ["backend"],
				"source_quote": "we really need retries there",
				"assignee": "Speaker A"
			},
			{
				"summary": "Fix login redirect loop",
				"description": "Expired sessions bounce between login and home.",
				"issue_type": "Bug",
				"priority": "Medium"
			}
		]
	}` + "\n```"

	drafts, err := parser.Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("expected 2 drafts, got %d", len(drafts))
	}
	if drafts[0].Summary != "Add retry to the uploader" {
		t.Errorf("unexpected summary %q", drafts[0].Summary)
	}
	if drafts[0].StoryPoints == nil || *drafts[0].StoryPoints != 3 {
		t.Errorf("story points not preserved: %v", drafts[0].StoryPoints)
	}
	if drafts[1].StoryPoints != nil {
		t.Errorf("expected nil story points for second draft")
	}
	if drafts[0].Assignee == nil || *drafts[0].Assignee != "Speaker A" {
		t.Errorf("assignee not preserved: %v", drafts[0].Assignee)
	}
}

func TestParseRejectsInvalidEnum(t *testing.T) {
	parser := NewParser(50)

	raw := `{"tasks": [{"summary": "A valid summary", "description": "ok", "issue_type": "Epic", "priority": "High"}]}`
	if _, err := parser.Parse(raw); err == nil {
		t.Fatal("expected validation error for issue_type Epic")
	}
}

func TestParseRejectsShortSummary(t *testing.T) {
	parser := NewParser(50)

	raw := `{"tasks": [{"summary": "ab", "description": "ok", "issue_type": "Task", "priority": "Low"}]}`
	if _, err := parser.Parse(raw); err == nil {
		t.Fatal("expected validation error for two-character summary")
	}
}

func TestParseRejectsOutOfRangeStoryPoints(t *testing.T) {
	parser := NewParser(50)

	raw := `{"tasks": [{"summary": "A valid summary", "description": "ok", "issue_type": "Task", "priority": "Low", "story_points": 101}]}`
	if _, err := parser.Parse(raw); err == nil {
		t.Fatal("expected validation error for story_points 101")
	}
}

func TestParseRejectsMissingTasksField(t *testing.T) {
	parser := NewParser(50)

	if _, err := parser.Parse(`{"items": []}`); err == nil {
		t.Fatal("expected error for payload without tasks")
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	parser := NewParser(50)

	if _, err := parser.Parse("here are your tasks!"); err == nil {
		t.Fatal("expected error for non-JSON payload")
	}
}

func TestParseEnforcesTaskLimit(t *testing.T) {
	parser := NewParser(2)

	task := `{"summary": "A valid summary", "description": "ok", "issue_type": "Task", "priority": "Low"}`
	raw := `{"tasks": [` + strings.Join([]string{task, task, task}, ",") + `]}`
	_, err := parser.Parse(raw)
	if err == nil {
		t.Fatal("expected error for exceeding the task limit")
	}
	if !strings.Contains(err.Error(), "limit") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseEmptyTaskListIsValid(t *testing.T) {
	parser := NewParser(50)

	drafts, err := parser.Parse(`{"tasks": []}`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(drafts) != 0 {
		t.Fatalf("expected no drafts, got %d", len(drafts))
	}
}
