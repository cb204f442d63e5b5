// Package session persists the in-progress conversation to the local cache
// so that a restart reproduces the same ordered message sequence.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/askgita/askgita/internal/client/models"
	"github.com/askgita/askgita/internal/client/store"
)

// Key is the cache key holding the serialized live conversation.
const Key = "chat_messages"

// Store loads and saves the live ConversationSession. Replay sessions must
// never be saved here; the controller enforces that.
type Store struct {
	kv store.Store
}

func New(kv store.Store) *Store {
	return &Store{kv: kv}
}

// Load returns the cached live session, or an empty live session when the
// cache is missing or unreadable. Corrupted data never fails the caller.
func (s *Store) Load(ctx context.Context) *models.ConversationSession {
	raw, err := s.kv.Get(ctx, Key)
	if err != nil || len(raw) == 0 {
		return models.NewLiveSession()
	}

	var sess models.ConversationSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return models.NewLiveSession()
	}
	if sess.Messages == nil {
		sess.Messages = []models.Message{}
	}
	// Whatever was cached is, by definition, the live conversation.
	sess.Mode = models.ModeLive
	sess.RemoteID = ""
	return &sess
}

// Save serializes the whole session and overwrites the cached value in one
// write.
func (s *Store) Save(ctx context.Context, sess *models.ConversationSession) error {
	if sess.Mode != models.ModeLive {
		return fmt.Errorf("refusing to persist a %s session", sess.Mode)
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}
	return s.kv.Set(ctx, Key, raw)
}

// Clear removes the cached conversation.
func (s *Store) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, Key)
}
