package chats

import (
	"context"
	"time"

	"github.com/google/uuid"

	clientmodels "github.com/askgita/askgita/internal/client/models"
	"github.com/askgita/askgita/internal/server/models"
)

// titleLimit is how much of the prompt becomes the archive title.
const titleLimit = 30

// Service manages the per-user conversation archive.
type Service struct {
	repo Repository

	// now is a seam for tests.
	now func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Archive stores one prompt/answer exchange as a conversation document.
// The assistant message keeps the raw model output, reasoning block
// included, so a later replay has everything the live session had.
func (s *Service) Archive(ctx context.Context, userID, prompt, rawAnswer string) (*models.Conversation, error) {
	now := s.now().UTC()

	conv := &models.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Date:      now.Format("2006-01-02"),
		Title:     Title(prompt),
		CreatedAt: now,
		Messages: []clientmodels.Message{
			{Role: clientmodels.RoleUser, Content: prompt},
			{Role: clientmodels.RoleAssistant, Content: rawAnswer},
		},
	}

	return s.repo.Insert(ctx, conv)
}

// Title derives the archive title from the prompt: the first 30 characters
// with an ellipsis when truncated.
func Title(prompt string) string {
	runes := []rune(prompt)
	if len(runes) > titleLimit {
		return string(runes[:titleLimit]) + "..."
	}
	return prompt
}

// List returns the user's archive, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]models.Conversation, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get returns one conversation owned by userID.
func (s *Service) Get(ctx context.Context, userID, id string) (*models.Conversation, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// Delete removes one conversation owned by userID.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.DeleteOne(ctx, userID, id)
}

// DeleteAll wipes the user's archive.
func (s *Service) DeleteAll(ctx context.Context, userID string) error {
	return s.repo.DeleteAllByUser(ctx, userID)
}
