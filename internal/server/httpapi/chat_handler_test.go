package httpapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askgita/askgita/internal/logging"
	"github.com/askgita/askgita/internal/server/answer"
	"github.com/askgita/askgita/internal/server/chats"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// openaiStub mimics the completions endpoint the answer service talks to.
func openaiStub(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func chatRequest(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestChatRejectsMissingPrompt(t *testing.T) {
	h := NewChatHandler(nil, nil, discardLogger())

	w := httptest.NewRecorder()
	h.Chat(w, chatRequest(`{"language":"english"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No prompt provided")
}

func TestChatRejectsBadBodyAndLanguage(t *testing.T) {
	h := NewChatHandler(nil, nil, discardLogger())

	w := httptest.NewRecorder()
	h.Chat(w, chatRequest(`{not json`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.Chat(w, chatRequest(`{"prompt":"q","language":"klingon"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatGuestGetsAnswerWithoutArchiving(t *testing.T) {
	llm := openaiStub(t, "<think>reasoning</think>\nthe answer")
	defer llm.Close()

	repo := &memChatRepo{}
	answers := answer.NewService(llm.URL, "test-key", "test-model", discardLogger())
	h := NewChatHandler(answers, chats.NewService(repo), discardLogger())

	w := httptest.NewRecorder()
	h.Chat(w, chatRequest(`{"prompt":"what is dharma?"}`))

	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Response string `json:"response"`
			Thinking string `json:"thinking"`
			Language string `json:"language"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "the answer", env.Data.Response)
	assert.Equal(t, "reasoning", env.Data.Thinking)
	assert.Equal(t, "english", env.Data.Language)

	assert.Empty(t, repo.convs)
}

func TestChatAuthenticatedExchangeIsArchivedRaw(t *testing.T) {
	raw := "<think>reasoning</think>\nthe answer"
	llm := openaiStub(t, raw)
	defer llm.Close()

	repo := &memChatRepo{}
	answers := answer.NewService(llm.URL, "test-key", "test-model", discardLogger())
	h := NewChatHandler(answers, chats.NewService(repo), discardLogger())

	r := chatRequest(`{"prompt":"what is dharma?"}`)
	r = r.WithContext(withUserID(r.Context(), "u1"))
	w := httptest.NewRecorder()
	h.Chat(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, repo.convs, 1)
	conv := repo.convs[0]
	assert.Equal(t, "u1", conv.UserID)
	assert.Equal(t, "what is dharma?", conv.Title)
	require.Len(t, conv.Messages, 2)
	// The archive keeps the unprocessed output, reasoning block included.
	assert.Equal(t, raw, conv.Messages[1].Content)
}
