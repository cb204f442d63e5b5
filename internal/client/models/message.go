// Package models defines the conversation data types shared by the client
// components: messages, the current conversation session, the cached
// identity, and server-held archived conversations.
package models

import "time"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation entry. Messages are immutable once
// created and keep their insertion order; nothing reorders or mutates a
// message after append.
//
// Auxiliary holds optional supplementary content (the model's reasoning
// trace) that may be omitted by policy, e.g. for Hindi answers.
type Message struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Auxiliary string `json:"thinking,omitempty"`
}

// SessionMode distinguishes a live conversation from a read-only replay of
// an archived one.
type SessionMode string

const (
	ModeLive   SessionMode = "live"
	ModeReplay SessionMode = "replay"
)

// ConversationSession is the local representation of the current
// conversation. Only live sessions accept new messages; replay sessions are
// never persisted back to the local store.
//
// RemoteID is set only in replay mode and names the archived conversation
// being viewed.
type ConversationSession struct {
	Messages []Message   `json:"messages"`
	Mode     SessionMode `json:"mode"`
	RemoteID string      `json:"remoteId,omitempty"`
}

// NewLiveSession returns an empty session in live mode.
func NewLiveSession() *ConversationSession {
	return &ConversationSession{Messages: []Message{}, Mode: ModeLive}
}

// Append adds a message, preserving insertion order.
func (s *ConversationSession) Append(m Message) {
	s.Messages = append(s.Messages, m)
}

// Clone returns a deep copy. Used when stashing the live session before
// entering replay mode so that replay cannot leak messages into it.
func (s *ConversationSession) Clone() *ConversationSession {
	cp := &ConversationSession{
		Messages: make([]Message, len(s.Messages)),
		Mode:     s.Mode,
		RemoteID: s.RemoteID,
	}
	copy(cp.Messages, s.Messages)
	return cp
}

// Identity is the cached authenticated user. A nil *Identity means the
// session belongs to a guest.
//
// The JSON field names match the server's identity payload and the legacy
// browser client's localStorage layout.
type Identity struct {
	UserID       string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Token        string `json:"token"`
	ProfileImage string `json:"profileImage,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// ArchivedConversation is a server-resident conversation read through the
// history service.
type ArchivedConversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	Messages  []Message `json:"messages"`
}
