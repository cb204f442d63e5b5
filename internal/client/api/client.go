// Package api defines the remote-service interfaces the client core talks
// to, and an HTTP implementation of them. The rest of the client never sees
// HTTP details; components depend on the Client interface so tests can
// substitute fakes.
package api

import (
	"context"

	"github.com/askgita/askgita/internal/client/models"
)

// ChatResult is the answer returned by the remote chat service.
type ChatResult struct {
	Response string `json:"response"`
	Thinking string `json:"thinking,omitempty"`
	Language string `json:"language,omitempty"`
}

// Client is the full remote surface consumed by the client core: the chat
// service, the auth service, and the history service.
//
// Error mapping (match with errors.Is):
//   - common.ErrUnauthorized — call rejected for missing/invalid credentials
//   - common.ErrNotFound     — referenced conversation absent or foreign
//   - common.ErrValidation   — server rejected the request payload
//   - common.ErrUnavailable  — transport failure or 5xx
type Client interface {
	// Chat service.
	Send(ctx context.Context, prompt, language string) (*ChatResult, error)

	// Auth service.
	Login(ctx context.Context, email, password string) (*models.Identity, error)
	Register(ctx context.Context, username, email, password, otp string) (*models.Identity, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*models.Identity, error)
	UpdateProfile(ctx context.Context, username, profileImage string) (*models.Identity, error)
	SendRegistrationOTP(ctx context.Context, email string) error
	VerifyRegistrationOTP(ctx context.Context, email, otp string) error
	SendDeleteOTP(ctx context.Context) error
	DeleteAccount(ctx context.Context, otp string) error

	// History service.
	History(ctx context.Context) ([]models.ArchivedConversation, error)
	Conversation(ctx context.Context, id string) (*models.ArchivedConversation, error)
	DeleteConversation(ctx context.Context, id string) error
	DeleteAllConversations(ctx context.Context) error

	Close() error
}
