package chats

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientmodels "github.com/askgita/askgita/internal/client/models"
	"github.com/askgita/askgita/internal/server/models"
)

type fakeRepo struct {
	Repository

	inserted *models.Conversation
}

func (f *fakeRepo) Insert(_ context.Context, conv *models.Conversation) (*models.Conversation, error) {
	f.inserted = conv
	return conv, nil
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{name: "short prompt unchanged", prompt: "what is karma?", want: "what is karma?"},
		{name: "exactly at limit", prompt: strings.Repeat("x", 30), want: strings.Repeat("x", 30)},
		{name: "long prompt truncated", prompt: strings.Repeat("x", 31), want: strings.Repeat("x", 30) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Title(tt.prompt))
		})
	}
}

func TestTitleCountsRunesNotBytes(t *testing.T) {
	prompt := strings.Repeat("ध", 35)
	got := Title(prompt)
	assert.Equal(t, strings.Repeat("ध", 30)+"...", got)
}

func TestArchiveBuildsConversationDocument(t *testing.T) {
	repo := &fakeRepo{}
	s := NewService(repo)
	s.now = func() time.Time {
		return time.Date(2025, 3, 1, 12, 30, 45, 0, time.UTC)
	}

	raw := "<think>reasoning</think>\nthe answer"
	conv, err := s.Archive(context.Background(), "u1", "what is dharma?", raw)
	require.NoError(t, err)
	require.Same(t, repo.inserted, conv)

	assert.NotEmpty(t, conv.ID)
	assert.Equal(t, "u1", conv.UserID)
	assert.Equal(t, "2025-03-01", conv.Date)
	assert.Equal(t, "what is dharma?", conv.Title)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 30, 45, 0, time.UTC), conv.CreatedAt)

	require.Len(t, conv.Messages, 2)
	assert.Equal(t, clientmodels.Message{Role: clientmodels.RoleUser, Content: "what is dharma?"}, conv.Messages[0])
	// The raw model output, reasoning included, is what gets archived.
	assert.Equal(t, clientmodels.Message{Role: clientmodels.RoleAssistant, Content: raw}, conv.Messages[1])
}
