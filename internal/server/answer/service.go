// Package answer generates chat responses through an OpenAI-compatible
// completion API and post-processes them into the wire shape the clients
// expect: a visible answer plus an optional reasoning trace.
package answer

import (
	"context"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/askgita/askgita/internal/common"
	"github.com/askgita/askgita/internal/logging"
)

const systemPrompt = `You are an expert ancient assistant who is well versed in Bhagavad-gita.
You are Multilingual, you understand English, Hindi and Sanskrit.

Always structure your response in this format:
<think>
[Your step-by-step thinking process here]
</think>

[Your final answer here]`

// hindiAnswerPrefix asks the model to answer in Hindi.
const hindiAnswerPrefix = "कृपया हिंदी में उत्तर दें: "

// fallbackAnswer is returned when every generation attempt fails.
const fallbackAnswer = "I apologize, but I'm having trouble generating a response right now. Please try again later."

const (
	maxAttempts = 3
	retryDelay  = 2 * time.Second
)

var (
	thinkOpen  = "<think>"
	thinkClose = "</think>"

	bracketRe = regexp.MustCompile(`[\[\]]`)
	newlineRe = regexp.MustCompile(`\n{3,}`)

	// A contiguous run of Devanagari text with digits, whitespace, and
	// common punctuation, so bullets and numbering survive the filter.
	hindiBlockRe = regexp.MustCompile(`[\x{0900}-\x{097F}0-9\s\-•.,:;!?()\[\]"“”‘’]+`)
)

// Result is a generated answer ready for the chat endpoint.
//
// Raw keeps the unprocessed model output including the reasoning block; the
// archive stores Raw so a replay can re-derive both parts.
type Result struct {
	Response string
	Thinking string
	Language string
	Raw      string
}

// chatCompleter is the slice of the OpenAI client the service uses.
// *openai.Client satisfies it; tests substitute a fake.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Service turns user prompts into answers.
type Service struct {
	client chatCompleter
	model  string
	log    logging.Logger

	// sleep is a seam so retry tests do not wait in real time.
	sleep func(time.Duration)
}

func NewService(baseURL, apiKey, model string, log logging.Logger) *Service {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Service{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		log:    log,
		sleep:  time.Sleep,
	}
}

// Answer generates a response for prompt in the requested language.
//
// Hindi requests get the answer-in-Hindi instruction prepended, and the
// generated text is reduced to its largest Devanagari block with the
// reasoning trace suppressed. Generation is retried up to three times;
// when every attempt fails the fixed fallback answer is returned instead
// of an error, matching what the chat endpoint promises its callers.
func (s *Service) Answer(ctx context.Context, prompt, language string) *Result {
	modified := prompt
	if language == common.LanguageHindi {
		modified = hindiAnswerPrefix + prompt
	}

	raw := s.complete(ctx, modified)

	thinking, answer := extractThinkingAndAnswer(raw)

	if language == common.LanguageHindi {
		answer = largestHindiBlock(answer)
		answer = strings.TrimSpace(newlineRe.ReplaceAllString(answer, "\n\n"))
		thinking = ""
	}

	return &Result{
		Response: answer,
		Thinking: thinking,
		Language: language,
		Raw:      raw,
	}
}

func (s *Service) complete(ctx context.Context, prompt string) string {
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := s.client.CreateChatCompletion(ctx, req)
		if err == nil && len(resp.Choices) > 0 {
			return resp.Choices[0].Message.Content
		}
		s.log.Warn(ctx, "generation attempt failed", "attempt", attempt, "err", err)
		if attempt < maxAttempts {
			s.sleep(retryDelay)
		}
	}
	return fallbackAnswer
}

// extractThinkingAndAnswer splits a model response into its reasoning block
// and the visible answer. Responses without a complete think block are
// returned whole as the answer.
func extractThinkingAndAnswer(text string) (thinking, answer string) {
	start := strings.Index(text, thinkOpen)
	end := strings.Index(text, thinkClose)
	if start == -1 || end == -1 || end < start {
		answer = text
	} else {
		thinking = strings.TrimSpace(text[start+len(thinkOpen) : end])
		answer = strings.TrimSpace(text[end+len(thinkClose):])
	}

	answer = bracketRe.ReplaceAllString(answer, "")
	answer = strings.TrimSpace(newlineRe.ReplaceAllString(answer, "\n\n"))
	return thinking, answer
}

// largestHindiBlock returns the longest contiguous Devanagari run in text,
// or text unchanged when none is found.
func largestHindiBlock(text string) string {
	blocks := hindiBlockRe.FindAllString(text, -1)
	best := ""
	for _, b := range blocks {
		if !strings.ContainsFunc(b, isDevanagari) {
			continue
		}
		if len(b) > len(best) {
			best = b
		}
	}
	if best == "" {
		return text
	}
	return strings.TrimSpace(best)
}

func isDevanagari(r rune) bool {
	return r >= 0x0900 && r <= 0x097F
}
