package answer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askgita/askgita/internal/common"
	"github.com/askgita/askgita/internal/logging"
)

// fakeCompleter returns scripted responses in order; an entry with a
// non-nil err simulates a failed attempt.
type fakeCompleter struct {
	responses []scripted
	calls     int
	prompts   []string
}

type scripted struct {
	content string
	err     error
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, req.Messages[len(req.Messages)-1].Content)

	if i >= len(f.responses) {
		return openai.ChatCompletionResponse{}, errors.New("no more scripted responses")
	}
	s := f.responses[i]
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	if s.content == "" {
		// A reply with no choices, which counts as a failed attempt.
		return openai.ChatCompletionResponse{}, nil
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

func newTestService(f *fakeCompleter) *Service {
	return &Service{
		client: f,
		model:  "test-model",
		log:    logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		sleep:  func(time.Duration) {},
	}
}

func TestAnswerExtractsThinkingBlock(t *testing.T) {
	f := &fakeCompleter{responses: []scripted{
		{content: "<think>\nthe reasoning\n</think>\n\nthe visible answer"},
	}}
	s := newTestService(f)

	got := s.Answer(context.Background(), "what is dharma?", common.LanguageEnglish)

	assert.Equal(t, "the visible answer", got.Response)
	assert.Equal(t, "the reasoning", got.Thinking)
	assert.Equal(t, common.LanguageEnglish, got.Language)
	assert.Equal(t, "<think>\nthe reasoning\n</think>\n\nthe visible answer", got.Raw)
}

func TestAnswerWithoutThinkBlock(t *testing.T) {
	f := &fakeCompleter{responses: []scripted{{content: "just an answer"}}}
	s := newTestService(f)

	got := s.Answer(context.Background(), "q", common.LanguageEnglish)
	assert.Equal(t, "just an answer", got.Response)
	assert.Empty(t, got.Thinking)
}

func TestAnswerStripsBracketsAndCollapsesNewlines(t *testing.T) {
	f := &fakeCompleter{responses: []scripted{
		{content: "<think>t</think>\n[Chapter 2] says:\n\n\n\nact [without] attachment"},
	}}
	s := newTestService(f)

	got := s.Answer(context.Background(), "q", common.LanguageEnglish)
	assert.Equal(t, "Chapter 2 says:\n\nact without attachment", got.Response)
}

func TestAnswerHindiPrependsInstructionAndSuppressesThinking(t *testing.T) {
	f := &fakeCompleter{responses: []scripted{
		{content: "<think>english reasoning</think>\nThe answer follows कर्म का अर्थ है निष्काम सेवा। And some trailing English"},
	}}
	s := newTestService(f)

	got := s.Answer(context.Background(), "कर्म क्या है?", common.LanguageHindi)

	require.Len(t, f.prompts, 1)
	assert.Equal(t, hindiAnswerPrefix+"कर्म क्या है?", f.prompts[0])

	assert.Equal(t, "कर्म का अर्थ है निष्काम सेवा।", got.Response)
	assert.Empty(t, got.Thinking)
	assert.Equal(t, common.LanguageHindi, got.Language)
}

func TestAnswerHindiWithoutDevanagariKeepsText(t *testing.T) {
	f := &fakeCompleter{responses: []scripted{{content: "only english came back"}}}
	s := newTestService(f)

	got := s.Answer(context.Background(), "q", common.LanguageHindi)
	assert.Equal(t, "only english came back", got.Response)
}

func TestAnswerRetriesThenSucceeds(t *testing.T) {
	f := &fakeCompleter{responses: []scripted{
		{err: errors.New("timeout")},
		{err: errors.New("timeout")},
		{content: "third time lucky"},
	}}
	s := newTestService(f)

	got := s.Answer(context.Background(), "q", common.LanguageEnglish)
	assert.Equal(t, "third time lucky", got.Response)
	assert.Equal(t, 3, f.calls)
}

func TestAnswerAllAttemptsFailReturnsFallback(t *testing.T) {
	f := &fakeCompleter{responses: []scripted{
		{err: errors.New("down")},
		{err: errors.New("down")},
		{err: errors.New("down")},
	}}
	s := newTestService(f)

	got := s.Answer(context.Background(), "q", common.LanguageEnglish)
	assert.Equal(t, fallbackAnswer, got.Response)
	assert.Empty(t, got.Thinking)
	assert.Equal(t, 3, f.calls)
}

func TestEmptyChoicesCountsAsFailure(t *testing.T) {
	f := &fakeCompleter{responses: []scripted{
		{}, {}, {content: "recovered"},
	}}
	s := newTestService(f)

	got := s.Answer(context.Background(), "q", common.LanguageEnglish)
	assert.Equal(t, "recovered", got.Response)
	assert.Equal(t, 3, f.calls)
}
