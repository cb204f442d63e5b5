package voice

import (
	"context"
	"strings"
	"sync"

	"github.com/askgita/askgita/internal/client/store"
	"github.com/askgita/askgita/internal/logging"
)

// PlaybackState is the synthesis side of the coordinator's state machine:
// idle → speaking → paused ⇄ speaking → idle.
type PlaybackState int

const (
	PlaybackIdle PlaybackState = iota
	PlaybackSpeaking
	PlaybackPaused
)

// NoIndex marks "no utterance active".
const NoIndex = -1

// Coordinator manages capture and playback state over a Capability. At most
// one output stream is active at a time: starting playback for a new
// message index cancels any in-flight playback for a different one.
//
// A nil capability turns every operation into a silent no-op; absence of a
// platform engine is not an error.
type Coordinator struct {
	cap Capability
	kv  store.Store
	log logging.Logger

	mu sync.Mutex

	// capture
	capturing bool
	committed string
	interim   string

	// playback
	state       PlaybackState
	activeIndex int
	handle      Handle

	prefs Prefs
}

func NewCoordinator(capability Capability, kv store.Store, log logging.Logger) *Coordinator {
	return &Coordinator{
		cap:         capability,
		kv:          kv,
		log:         log,
		activeIndex: NoIndex,
		prefs:       DefaultPrefs(),
	}
}

// Available reports whether a platform speech engine is present.
func (c *Coordinator) Available() bool { return c.cap != nil }

// LoadPrefs restores persisted voice preferences. Call once at startup.
func (c *Coordinator) LoadPrefs(ctx context.Context) {
	p := LoadPrefs(ctx, c.kv)
	c.mu.Lock()
	c.prefs = p
	c.mu.Unlock()
}

// Prefs returns the active (already clamped) preferences.
func (c *Coordinator) Prefs() Prefs {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefs
}

// UpdatePrefs clamps, persists, and applies new preferences.
func (c *Coordinator) UpdatePrefs(ctx context.Context, p Prefs) error {
	p = p.Clamp()
	if err := SavePrefs(ctx, c.kv, p); err != nil {
		return err
	}
	c.mu.Lock()
	c.prefs = p
	c.mu.Unlock()
	return nil
}

// AutoSpeak reports whether assistant replies should be spoken on arrival.
func (c *Coordinator) AutoSpeak() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefs.AutoSpeak
}

// StartCapture begins speech recognition for languageTag. Interim results
// feed the compose field for live feedback; only finalized segments are
// committed, separated by a single space, so words are not duplicated
// across recognition callbacks.
func (c *Coordinator) StartCapture(ctx context.Context, languageTag string) error {
	if c.cap == nil {
		return nil
	}

	c.mu.Lock()
	if c.capturing {
		c.mu.Unlock()
		return nil
	}
	c.capturing = true
	c.mu.Unlock()

	err := c.cap.StartCapture(languageTag, func(text string, final bool) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.capturing {
			return
		}
		if final {
			c.commitSegment(text)
			c.interim = ""
		} else {
			c.interim = text
		}
	})
	if err != nil {
		c.mu.Lock()
		c.capturing = false
		c.mu.Unlock()
		c.log.Warn(ctx, "speech capture failed to start", "err", err)
		return err
	}
	return nil
}

// commitSegment appends a finalized transcript segment. Caller holds mu.
func (c *Coordinator) commitSegment(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if c.committed == "" {
		c.committed = text
		return
	}
	c.committed += " " + text
}

// StopCapture stops listening. Whatever was already committed to the
// compose field stays untouched; only the uncommitted interim fragment is
// dropped. Safe to call while not capturing.
func (c *Coordinator) StopCapture() {
	c.mu.Lock()
	wasCapturing := c.capturing
	c.capturing = false
	c.interim = ""
	c.mu.Unlock()

	if wasCapturing && c.cap != nil {
		_ = c.cap.StopCapture()
	}
}

// Capturing reports whether recognition is active.
func (c *Coordinator) Capturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capturing
}

// ComposeText returns the current compose-field content: the committed
// transcript plus any live interim fragment.
func (c *Coordinator) ComposeText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.interim == "" {
		return c.committed
	}
	if c.committed == "" {
		return c.interim
	}
	return c.committed + " " + c.interim
}

// ConsumeCompose returns the committed transcript and clears the compose
// state, e.g. after the user sends the message.
func (c *Coordinator) ConsumeCompose() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.committed
	c.committed = ""
	c.interim = ""
	return out
}

// TogglePlayback drives the play/pause control for the message at index:
//
//   - different (or no) index active: cancel it and start speaking this one
//   - same index, speaking: pause
//   - same index, paused: resume
func (c *Coordinator) TogglePlayback(ctx context.Context, index int, text string) {
	if c.cap == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeIndex == index {
		switch c.state {
		case PlaybackSpeaking:
			if err := c.cap.Pause(c.handle); err == nil {
				c.state = PlaybackPaused
			}
			return
		case PlaybackPaused:
			if err := c.cap.Resume(c.handle); err == nil {
				c.state = PlaybackSpeaking
			}
			return
		}
	}

	// Switching to a new index: at most one output stream may be active.
	if c.state != PlaybackIdle && c.handle != nil {
		_ = c.cap.Cancel(c.handle)
	}
	c.startSpeakingLocked(ctx, index, text)
}

// SpeakReply starts playback for a freshly arrived assistant message
// (auto-speak). Any current playback for another index is cancelled.
func (c *Coordinator) SpeakReply(ctx context.Context, index int, text string) {
	if c.cap == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != PlaybackIdle && c.handle != nil {
		_ = c.cap.Cancel(c.handle)
	}
	c.startSpeakingLocked(ctx, index, text)
}

// startSpeakingLocked begins a new utterance. Caller holds mu.
func (c *Coordinator) startSpeakingLocked(ctx context.Context, index int, text string) {
	params := SpeakParams{Voice: c.prefs.Voice, Rate: c.prefs.Rate, Pitch: c.prefs.Pitch}

	var h Handle
	h, err := c.cap.Speak(text, params, func() { c.utteranceDone(h) })
	if err != nil {
		c.log.Warn(ctx, "speech synthesis failed to start", "err", err, "index", index)
		c.state = PlaybackIdle
		c.activeIndex = NoIndex
		c.handle = nil
		return
	}
	c.handle = h
	c.activeIndex = index
	c.state = PlaybackSpeaking
}

// utteranceDone transitions back to idle when the active utterance finishes
// naturally. Stale completions from cancelled utterances are ignored.
func (c *Coordinator) utteranceDone(h Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle != h {
		return
	}
	c.state = PlaybackIdle
	c.activeIndex = NoIndex
	c.handle = nil
}

// StopPlayback cancels any in-flight utterance.
func (c *Coordinator) StopPlayback() {
	if c.cap == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle != nil {
		_ = c.cap.Cancel(c.handle)
	}
	c.state = PlaybackIdle
	c.activeIndex = NoIndex
	c.handle = nil
}

// Playback returns the active message index (NoIndex when idle) and state.
func (c *Coordinator) Playback() (int, PlaybackState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeIndex, c.state
}
