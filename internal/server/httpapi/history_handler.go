package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/askgita/askgita/internal/common"
	"github.com/askgita/askgita/internal/server/chats"
	"github.com/askgita/askgita/internal/server/models"
)

// HistoryHandler serves the per-user conversation archive.
type HistoryHandler struct {
	chats *chats.Service
}

func NewHistoryHandler(chatService *chats.Service) *HistoryHandler {
	return &HistoryHandler{chats: chatService}
}

// List returns the caller's archive, newest first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	items, err := h.chats.List(r.Context(), userID)
	if err != nil {
		InternalError(w, "failed to load history")
		return
	}
	if items == nil {
		items = []models.Conversation{}
	}
	OK(w, items)
}

// Get returns one archived conversation owned by the caller.
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	id := chi.URLParam(r, "chatID")

	conv, err := h.chats.Get(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			NotFound(w, "conversation not found")
			return
		}
		InternalError(w, "failed to load conversation")
		return
	}
	OK(w, conv)
}

// Delete removes one archived conversation owned by the caller.
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	id := chi.URLParam(r, "chatID")

	if err := h.chats.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			NotFound(w, "conversation not found")
			return
		}
		InternalError(w, "failed to delete conversation")
		return
	}
	OK(w, map[string]any{"deleted": true})
}

// DeleteAll wipes the caller's entire archive.
func (h *HistoryHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	if err := h.chats.DeleteAll(r.Context(), userID); err != nil {
		InternalError(w, "failed to delete history")
		return
	}
	OK(w, map[string]any{"deleted": true})
}
