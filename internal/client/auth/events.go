package auth

import "github.com/askgita/askgita/internal/client/models"

// EventKind labels an identity transition published by the Gate.
type EventKind string

const (
	EventLogin   EventKind = "login"
	EventLogout  EventKind = "logout"
	EventRefresh EventKind = "refresh"
	EventUpdate  EventKind = "update"
)

// Event is the typed payload delivered to subscribers whenever the cached
// identity changes. Identity is nil for EventLogout.
type Event struct {
	Kind     EventKind
	Identity *models.Identity
}
