package chats

import (
	"context"

	"github.com/askgita/askgita/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, conv *models.Conversation) (*models.Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]models.Conversation, error)
	GetByID(ctx context.Context, userID, id string) (*models.Conversation, error)
	DeleteOne(ctx context.Context, userID, id string) error
	DeleteAllByUser(ctx context.Context, userID string) error
}
