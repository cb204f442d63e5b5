package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/askgita/askgita/internal/common"
	"github.com/askgita/askgita/internal/logging"
	"github.com/askgita/askgita/internal/server/answer"
	"github.com/askgita/askgita/internal/server/chats"
)

// ChatHandler handles question answering.
type ChatHandler struct {
	answers *answer.Service
	chats   *chats.Service
	log     logging.Logger
}

func NewChatHandler(answers *answer.Service, chatService *chats.Service, log logging.Logger) *ChatHandler {
	return &ChatHandler{answers: answers, chats: chatService, log: log}
}

// Chat answers one prompt. Authenticated exchanges are archived; guests get
// the answer only. The answer service already degrades generation failures
// to a fallback answer, so this endpoint only fails on bad input.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Prompt   string `json:"prompt" validate:"required"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		BadRequest(w, "No prompt provided")
		return
	}

	language := input.Language
	if language == "" {
		language = common.LanguageEnglish
	}
	if !common.ValidLanguage(language) {
		BadRequest(w, "unsupported language")
		return
	}

	result := h.answers.Answer(r.Context(), input.Prompt, language)

	if userID, ok := UserID(r.Context()); ok {
		if _, err := h.chats.Archive(r.Context(), userID, input.Prompt, result.Raw); err != nil {
			h.log.Error(r.Context(), "failed to archive exchange", "user_id", userID, "err", err)
		}
	}

	OK(w, map[string]any{
		"response": result.Response,
		"thinking": result.Thinking,
		"language": result.Language,
	})
}
