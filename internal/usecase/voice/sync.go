package voice

import (
	"context"
	"errors"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/entities"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/repositories"
)

const introPrefix = "intro_"

// SampleLister enumerates voice sample objects in blob storage
type SampleLister interface {
	ListFiles(ctx context.Context, prefix string) ([]string, error)
}

// Syncer reconciles the users table with the voice sample bucket. Each
// object named intro_<name>.wav becomes a user whose display name is
// derived from the file name; existing users just get their sample ref
// refreshed. Safe to run on every startup.
type Syncer struct {
	store  SampleLister
	users  repositories.UserRepository
	logger *zap.Logger
}

// NewSyncer creates a voice profile syncer
func NewSyncer(store SampleLister, users repositories.UserRepository, logger *zap.Logger) *Syncer {
	return &Syncer{store: store, users: users, logger: logger}
}

// Sync scans the bucket and upserts one user per intro clip. Returns the
// number of users created or updated.
func (s *Syncer) Sync(ctx context.Context) (int, error) {
	objects, err := s.store.ListFiles(ctx, introPrefix)
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, object := range objects {
		name := DeriveDisplayName(object)
		if name == "" {
			continue
		}
		if err := s.upsert(ctx, name, object); err != nil {
			if s.logger != nil {
				s.logger.Warn("⚠️ Failed to sync voice profile",
					zap.String("object", object),
					zap.Error(err),
				)
			}
			continue
		}
		synced++
	}

	if s.logger != nil {
		s.logger.Info("🎙️ Voice profiles synced", zap.Int("count", synced))
	}
	return synced, nil
}

func (s *Syncer) upsert(ctx context.Context, name, object string) error {
	user, err := s.users.FindByDisplayName(ctx, name)
	if errors.Is(err, entities.ErrUserNotFound) {
		user = entities.NewUser(name)
		user.SetVoiceSample(object)
		return s.users.Create(ctx, user)
	}
	if err != nil {
		return err
	}

	if user.VoiceSampleRef != nil && *user.VoiceSampleRef == object {
		return nil
	}
	user.SetVoiceSample(object)
	return s.users.Update(ctx, user)
}

// DeriveDisplayName turns an intro clip object name into a display name.
// "intro_anna_kowalska-nowak.wav" becomes "Anna Kowalska-Nowak". Objects
// without the intro prefix yield an empty string.
func DeriveDisplayName(object string) string {
	base := path.Base(object)
	if !strings.HasPrefix(base, introPrefix) {
		return ""
	}
	base = strings.TrimPrefix(base, introPrefix)
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}

	words := strings.Fields(base)
	for i, word := range words {
		words[i] = titleWord(word)
	}
	return strings.Join(words, " ")
}

// titleWord capitalizes a word, keeping hyphenated parts independent
func titleWord(word string) string {
	parts := strings.Split(word, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
	}
	return strings.Join(parts, "-")
}
