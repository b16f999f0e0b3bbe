package extraction

import (
	"strings"

	"github.com/google/uuid"

	"github.com/kgwiazdak/sprint-planning-copilot/pkg/ai"
)

// IntroRef is one prepended voice-intro span with the user it belongs to.
// Offsets are seconds into the combined audio.
type IntroRef struct {
	UserID      uuid.UUID
	DisplayName string
	Start       float64
	End         float64
}

func (r IntroRef) contains(t float64) bool {
	return r.Start <= t && t < r.End
}

// Resolver correlates diarization labels with known users through the
// voice-intro spans at the head of the combined audio.
type Resolver struct{}

// NewResolver creates a new Resolver
func NewResolver() *Resolver {
	return &Resolver{}
}

// ResolveSpeakers maps diarization labels to user IDs. A label is resolved
// when its first utterance starts inside an intro span; the order the clips
// were appended in is what carries the identity, the label text never does.
// Labels that first appear outside every span stay unresolved.
func (r *Resolver) ResolveSpeakers(intros []IntroRef, utterances []ai.Utterance) map[string]uuid.UUID {
	resolved := make(map[string]uuid.UUID)
	if len(intros) == 0 {
		return resolved
	}

	seen := make(map[string]bool)
	for _, utt := range utterances {
		if utt.Speaker == "" || seen[utt.Speaker] {
			continue
		}
		seen[utt.Speaker] = true

		for _, intro := range intros {
			if intro.contains(utt.StartTime) {
				if _, taken := resolved[utt.Speaker]; !taken {
					resolved[utt.Speaker] = intro.UserID
				}
				break
			}
		}
	}

	return resolved
}

// ResolveAssignee maps the extractor's assignee string to a user ID. It
// accepts either a diarization label ("Speaker A") through the speaker map,
// or a display name matched case-insensitively against known users.
// Unknown names resolve to nil rather than failing the task.
func (r *Resolver) ResolveAssignee(assignee string, speakers map[string]uuid.UUID, usersByName map[string]uuid.UUID) *uuid.UUID {
	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		return nil
	}

	if label, ok := strings.CutPrefix(assignee, "Speaker "); ok {
		if id, found := speakers[label]; found {
			return &id
		}
	}
	if id, found := speakers[assignee]; found {
		return &id
	}

	for name, id := range usersByName {
		if strings.EqualFold(name, assignee) {
			matched := id
			return &matched
		}
	}

	return nil
}
