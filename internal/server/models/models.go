// Package models defines the server-side persistence entities.
package models

import (
	"time"

	"github.com/askgita/askgita/internal/client/models"
)

// User is an account document in the users collection.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Username     string    `bson:"username" json:"username"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	ProfileImage string    `bson:"profile_image,omitempty" json:"profileImage,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// Conversation is an archived chat document in the chat_history collection.
// Message payloads reuse the client wire type so the archive round-trips
// through the history endpoints without translation.
type Conversation struct {
	ID        string           `bson:"_id" json:"id"`
	UserID    string           `bson:"user_id" json:"-"`
	Title     string           `bson:"title" json:"title"`
	Date      string           `bson:"date" json:"date"`
	CreatedAt time.Time        `bson:"created_at" json:"created_at"`
	Messages  []models.Message `bson:"messages" json:"messages"`
}
