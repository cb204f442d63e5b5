package chats

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/askgita/askgita/internal/common"
	"github.com/askgita/askgita/internal/server/models"
)

// MongoRepository stores archived conversations in the chat_history
// collection. Every operation is scoped to the owning user_id, so one
// account can never read or delete another account's conversations.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{col: db.Collection("chat_history")}
}

func (r *MongoRepository) Insert(ctx context.Context, conv *models.Conversation) (*models.Conversation, error) {
	if _, err := r.col.InsertOne(ctx, conv); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return conv, nil
}

func (r *MongoRepository) ListByUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.Conversation
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, userID, id string) (*models.Conversation, error) {
	conv := &models.Conversation{}
	err := r.col.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(conv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return conv, nil
}

func (r *MongoRepository) DeleteOne(ctx context.Context, userID, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if res.DeletedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) DeleteAllByUser(ctx context.Context, userID string) error {
	if _, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
