// Package controller orchestrates the session components into one coherent
// conversation lifecycle. It is the only package presentation code talks
// to: input flows in through Send, archived conversations are opened and
// closed through replay, and every other component stays behind it.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/askgita/askgita/internal/client/api"
	"github.com/askgita/askgita/internal/client/auth"
	"github.com/askgita/askgita/internal/client/history"
	"github.com/askgita/askgita/internal/client/models"
	"github.com/askgita/askgita/internal/client/quota"
	"github.com/askgita/askgita/internal/client/session"
	"github.com/askgita/askgita/internal/client/voice"
	"github.com/askgita/askgita/internal/common"
	"github.com/askgita/askgita/internal/logging"
)

// Mode is the controller state: who may append and where messages come
// from.
type Mode string

const (
	ModeGuestLive Mode = "guest-live"
	ModeAuthLive  Mode = "auth-live"
	ModeReplay    Mode = "replay"
)

// Fixed conversation-thread texts. The thread itself is the error channel
// the user sees; transport failures never propagate out of Send.
const (
	QuotaAdvisory = "You have reached the limit of 10 questions. Please sign up or log in to continue chatting."
	SendFailure   = "Sorry, there was an error processing your request. Please try again."
)

// ErrSendInFlight is returned when a send is attempted while another one is
// outstanding. Only one send may be in flight per session.
var ErrSendInFlight = errors.New("a send is already in progress")

// ErrReadOnly is returned when a send is attempted in replay mode.
var ErrReadOnly = errors.New("archived conversations are read-only")

// Controller composes the auth gate, local session store, guest quota,
// history sync, and voice coordinator into the session lifecycle described
// by the three modes.
type Controller struct {
	gate  *auth.Gate
	sess  *session.Store
	quota *quota.Limiter
	hist  *history.Service
	voice *voice.Coordinator
	chat  api.Client
	log   logging.Logger

	mu       sync.Mutex
	cur      *models.ConversationSession
	stash    *models.ConversationSession // live session parked while replaying
	mode     Mode
	language string
	inFlight bool
}

func New(gate *auth.Gate, sess *session.Store, q *quota.Limiter, hist *history.Service,
	vc *voice.Coordinator, chat api.Client, log logging.Logger) *Controller {
	return &Controller{
		gate:     gate,
		sess:     sess,
		quota:    q,
		hist:     hist,
		voice:    vc,
		chat:     chat,
		log:      log,
		cur:      models.NewLiveSession(),
		mode:     ModeGuestLive,
		language: common.LanguageEnglish,
	}
}

// Start restores cached state and derives the initial mode. When replayID
// is non-empty and the user is authenticated, the controller starts in
// replay mode for that conversation.
func (c *Controller) Start(ctx context.Context, replayID string) {
	c.gate.Load(ctx)
	c.gate.Refresh(ctx) // failures are swallowed inside the gate
	c.voice.LoadPrefs(ctx)

	c.mu.Lock()
	c.cur = c.sess.Load(ctx)
	c.mode = c.liveModeLocked()
	c.mu.Unlock()

	if replayID != "" && c.gate.Authenticated() {
		c.OpenConversation(ctx, replayID)
	}
}

// liveModeLocked derives the live mode from the identity. Caller holds mu.
func (c *Controller) liveModeLocked() Mode {
	if c.gate.Authenticated() {
		return ModeAuthLive
	}
	return ModeGuestLive
}

// Mode returns the current controller state.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Busy reports whether a send is outstanding; the presentation layer uses
// this to disable the send affordance.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Messages returns a copy of the visible conversation.
func (c *Controller) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.cur.Messages))
	copy(out, c.cur.Messages)
	return out
}

// Language returns the active answer language.
func (c *Controller) Language() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.language
}

// SetLanguage sets the answer language. Unknown values are ignored.
func (c *Controller) SetLanguage(lang string) {
	if !common.ValidLanguage(lang) {
		return
	}
	c.mu.Lock()
	c.language = lang
	c.mu.Unlock()
}

// ToggleLanguage flips between english and hindi and returns the new value.
func (c *Controller) ToggleLanguage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.language == common.LanguageEnglish {
		c.language = common.LanguageHindi
	} else {
		c.language = common.LanguageEnglish
	}
	return c.language
}

// QuestionsRemaining returns how many free questions a guest has left, or
// -1 for authenticated users.
func (c *Controller) QuestionsRemaining(ctx context.Context) int {
	if c.gate.Authenticated() {
		return -1
	}
	left := c.quota.Limit() - c.quota.Count(ctx)
	if left < 0 {
		left = 0
	}
	return left
}

// Send appends the user's message, persists it, and asks the remote chat
// service for an answer. The user's message is always recorded before the
// network call, so a slow or failed call never loses what was asked. A
// guest past the quota gets the fixed advisory instead of a network call.
// Transport failures become the fixed failure message in the thread.
func (c *Controller) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: empty message", common.ErrValidation)
	}

	c.mu.Lock()
	if c.mode == ModeReplay {
		c.mu.Unlock()
		return ErrReadOnly
	}
	if c.inFlight {
		c.mu.Unlock()
		return ErrSendInFlight
	}

	sess := c.cur
	sess.Append(models.Message{Role: models.RoleUser, Content: text})
	c.persistLocked(ctx)

	if c.mode == ModeGuestLive {
		count, err := c.quota.Increment(ctx)
		if err != nil {
			c.log.Warn(ctx, "failed to persist question count", "err", err)
		}
		if c.quota.Exceeded(count) {
			sess.Append(models.Message{Role: models.RoleAssistant, Content: QuotaAdvisory})
			c.persistLocked(ctx)
			c.mu.Unlock()
			return nil
		}
	}

	c.inFlight = true
	language := c.language
	c.mu.Unlock()

	result, err := c.chat.Send(ctx, text, language)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	// The session may have been replaced while the request was in flight
	// (logout, replay). The reply belongs to the old thread; drop it.
	if c.cur != sess || c.mode == ModeReplay {
		c.log.Warn(ctx, "dropping reply for a replaced session")
		return nil
	}

	if err != nil {
		c.log.Warn(ctx, "chat send failed", "err", err)
		sess.Append(models.Message{Role: models.RoleAssistant, Content: SendFailure})
		c.persistLocked(ctx)
		return nil
	}

	reply := models.Message{
		Role:      models.RoleAssistant,
		Content:   result.Response,
		Auxiliary: result.Thinking,
	}
	sess.Append(reply)
	c.persistLocked(ctx)

	if c.voice.AutoSpeak() {
		c.voice.SpeakReply(ctx, len(sess.Messages)-1, reply.Content)
	}
	return nil
}

// persistLocked saves the current session if it is live. Persistence
// failures are logged, never fatal: the in-memory thread stays usable.
// Caller holds mu.
func (c *Controller) persistLocked(ctx context.Context) {
	if c.cur.Mode != models.ModeLive {
		return
	}
	if err := c.sess.Save(ctx, c.cur); err != nil {
		c.log.Warn(ctx, "failed to persist conversation", "err", err)
	}
}

// OpenConversation switches to replay mode for the archived conversation
// id. The live session is parked untouched and restored by CloseReplay. A
// fetch failure yields an empty replay view rather than an error.
func (c *Controller) OpenConversation(ctx context.Context, id string) {
	archived, err := c.hist.Get(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != ModeReplay {
		c.stash = c.cur.Clone()
	}

	replay := &models.ConversationSession{Mode: models.ModeReplay, RemoteID: id, Messages: []models.Message{}}
	if err != nil {
		c.log.Warn(ctx, "failed to load archived conversation", "id", id, "err", err)
	} else {
		replay.Messages = append(replay.Messages, archived.Messages...)
	}

	c.cur = replay
	c.mode = ModeReplay
}

// CloseReplay leaves replay mode and restores the previously parked live
// session unchanged.
func (c *Controller) CloseReplay() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != ModeReplay {
		return
	}

	if c.stash != nil {
		c.cur = c.stash
	} else {
		c.cur = models.NewLiveSession()
	}
	c.stash = nil
	c.mode = c.liveModeLocked()
}

// ClearChat empties the visible conversation and clears the local cache,
// keeping the current mode.
func (c *Controller) ClearChat(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cur.Messages = []models.Message{}
	if err := c.sess.Clear(ctx); err != nil {
		c.log.Warn(ctx, "failed to clear cached conversation", "err", err)
	}
}

// Login authenticates and, on success, moves a guest-live session to
// auth-live. Messages sent as a guest are preserved; the quota reset is the
// gate's doing.
func (c *Controller) Login(ctx context.Context, email, password string) (*models.Identity, error) {
	id, err := c.gate.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.mode != ModeReplay {
		c.mode = ModeAuthLive
	}
	c.mu.Unlock()
	return id, nil
}

// Register creates an account and adopts it exactly like Login.
func (c *Controller) Register(ctx context.Context, username, email, password, otp string) (*models.Identity, error) {
	id, err := c.gate.Register(ctx, username, email, password, otp)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.mode != ModeReplay {
		c.mode = ModeAuthLive
	}
	c.mu.Unlock()
	return id, nil
}

// Logout clears the identity, conversation, and quota through the gate and
// returns to an empty guest-live session. Any in-flight playback or capture
// stops: nothing of the previous account's session survives.
func (c *Controller) Logout(ctx context.Context) error {
	c.voice.StopPlayback()
	c.voice.StopCapture()

	if err := c.gate.Logout(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	c.cur = models.NewLiveSession()
	c.stash = nil
	c.mode = ModeGuestLive
	c.mu.Unlock()
	return nil
}

// Identity returns the cached identity, nil for guests.
func (c *Controller) Identity() *models.Identity {
	return c.gate.Current()
}

// ToggleSpeech drives the play/pause control for the message at index.
// Unknown indexes and non-assistant messages are ignored.
func (c *Controller) ToggleSpeech(ctx context.Context, index int) {
	c.mu.Lock()
	if index < 0 || index >= len(c.cur.Messages) || c.cur.Messages[index].Role != models.RoleAssistant {
		c.mu.Unlock()
		return
	}
	text := c.cur.Messages[index].Content
	c.mu.Unlock()

	c.voice.TogglePlayback(ctx, index, text)
}
