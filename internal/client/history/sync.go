// Package history reads, deletes, and searches the server-held conversation
// archive. Listing and fetching never touch the local conversation cache;
// replay is the controller's business.
package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/askgita/askgita/internal/client/api"
	"github.com/askgita/askgita/internal/client/models"
	"github.com/askgita/askgita/internal/common"
	"github.com/askgita/askgita/internal/logging"
)

// AuthState is the slice of the auth gate the service needs: whether remote
// calls are permitted at all.
type AuthState interface {
	Authenticated() bool
}

// Service fetches archived conversations and keeps the last fetched list
// for local, network-free searching.
type Service struct {
	api  api.Client
	auth AuthState
	log  logging.Logger

	mu      sync.Mutex
	fetched []models.ArchivedConversation
}

func NewService(apiClient api.Client, auth AuthState, log logging.Logger) *Service {
	return &Service{api: apiClient, auth: auth, log: log}
}

// List fetches the caller's archive, newest first. Ties on created_at are
// broken by id, descending, so the order is total and stable for rendering.
// Guests get common.ErrUnauthorized without a network round trip.
func (s *Service) List(ctx context.Context) ([]models.ArchivedConversation, error) {
	if !s.auth.Authenticated() {
		return nil, fmt.Errorf("%w: log in to view chat history", common.ErrUnauthorized)
	}

	items, err := s.api.History(ctx)
	if err != nil {
		return nil, err
	}

	sortNewestFirst(items)

	s.mu.Lock()
	s.fetched = items
	s.mu.Unlock()

	return items, nil
}

func sortNewestFirst(items []models.ArchivedConversation) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
}

// Get fetches a single archived conversation. Missing or foreign ids map to
// common.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*models.ArchivedConversation, error) {
	if !s.auth.Authenticated() {
		return nil, fmt.Errorf("%w: log in to view chat history", common.ErrUnauthorized)
	}
	return s.api.Conversation(ctx, id)
}

// Delete removes one conversation. Deleting an id that is already gone
// succeeds: the caller wanted it absent and it is.
func (s *Service) Delete(ctx context.Context, id string) error {
	if !s.auth.Authenticated() {
		return common.ErrUnauthorized
	}

	err := s.api.DeleteConversation(ctx, id)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}

	s.mu.Lock()
	kept := s.fetched[:0]
	for _, c := range s.fetched {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.fetched = kept
	s.mu.Unlock()

	return nil
}

// DeleteAll wipes the caller's entire archive.
func (s *Service) DeleteAll(ctx context.Context) error {
	if !s.auth.Authenticated() {
		return common.ErrUnauthorized
	}
	if err := s.api.DeleteAllConversations(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.fetched = nil
	s.mu.Unlock()

	return nil
}

// Search filters the last fetched list locally, matching term
// case-insensitively against titles and message contents. An empty term
// returns the whole cached list. No network round trip per keystroke.
func (s *Service) Search(term string) []models.ArchivedConversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(term) == "" {
		return append([]models.ArchivedConversation(nil), s.fetched...)
	}

	needle := strings.ToLower(term)
	var out []models.ArchivedConversation
	for _, c := range s.fetched {
		if matches(c, needle) {
			out = append(out, c)
		}
	}
	return out
}

func matches(c models.ArchivedConversation, needle string) bool {
	if strings.Contains(strings.ToLower(c.Title), needle) {
		return true
	}
	for _, m := range c.Messages {
		if strings.Contains(strings.ToLower(m.Content), needle) {
			return true
		}
	}
	return false
}
