package voice

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askgita/askgita/internal/logging"
)

type memStore struct {
	m map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{m: make(map[string][]byte)}
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	return s.m[key], nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte) error {
	s.m[key] = value
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	delete(s.m, key)
	return nil
}

func (s *memStore) Clear(_ context.Context) error {
	s.m = make(map[string][]byte)
	return nil
}

// fakeCapability records calls and exposes the recognition and completion
// callbacks so tests can drive them by hand.
type fakeCapability struct {
	onResult TranscriptFunc

	spoken    []string
	onDone    func()
	paused    int
	resumed   int
	cancelled int
	nextH     int
}

func (f *fakeCapability) StartCapture(_ string, onResult TranscriptFunc) error {
	f.onResult = onResult
	return nil
}

func (f *fakeCapability) StopCapture() error {
	f.onResult = nil
	return nil
}

func (f *fakeCapability) Speak(text string, _ SpeakParams, onDone func()) (Handle, error) {
	f.spoken = append(f.spoken, text)
	f.onDone = onDone
	f.nextH++
	return f.nextH, nil
}

func (f *fakeCapability) Pause(_ Handle) error  { f.paused++; return nil }
func (f *fakeCapability) Resume(_ Handle) error { f.resumed++; return nil }
func (f *fakeCapability) Cancel(_ Handle) error { f.cancelled++; return nil }

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNilCapabilityIsSilentNoOp(t *testing.T) {
	c := NewCoordinator(nil, newMemStore(), testLogger())
	ctx := context.Background()

	assert.False(t, c.Available())
	require.NoError(t, c.StartCapture(ctx, "en-US"))
	assert.False(t, c.Capturing())

	c.TogglePlayback(ctx, 0, "hello")
	index, state := c.Playback()
	assert.Equal(t, NoIndex, index)
	assert.Equal(t, PlaybackIdle, state)
}

func TestCaptureCommitsFinalsDropsInterim(t *testing.T) {
	f := &fakeCapability{}
	c := NewCoordinator(f, newMemStore(), testLogger())
	ctx := context.Background()

	require.NoError(t, c.StartCapture(ctx, "en-US"))
	require.NotNil(t, f.onResult)

	f.onResult("what is", false)
	assert.Equal(t, "what is", c.ComposeText())

	f.onResult("what is dharma", true)
	f.onResult("and why", false)
	assert.Equal(t, "what is dharma and why", c.ComposeText())

	// Stopping keeps the committed transcript and drops the live fragment.
	c.StopCapture()
	assert.Equal(t, "what is dharma", c.ComposeText())

	assert.Equal(t, "what is dharma", c.ConsumeCompose())
	assert.Empty(t, c.ComposeText())
}

func TestCaptureJoinsSegmentsWithSingleSpace(t *testing.T) {
	f := &fakeCapability{}
	c := NewCoordinator(f, newMemStore(), testLogger())

	require.NoError(t, c.StartCapture(context.Background(), "hi-IN"))
	f.onResult("  first ", true)
	f.onResult("second", true)
	f.onResult("   ", true)

	assert.Equal(t, "first second", c.ComposeText())
}

func TestTogglePausesAndResumesSameIndex(t *testing.T) {
	f := &fakeCapability{}
	c := NewCoordinator(f, newMemStore(), testLogger())
	ctx := context.Background()

	c.TogglePlayback(ctx, 2, "verse")
	index, state := c.Playback()
	assert.Equal(t, 2, index)
	assert.Equal(t, PlaybackSpeaking, state)

	c.TogglePlayback(ctx, 2, "verse")
	_, state = c.Playback()
	assert.Equal(t, PlaybackPaused, state)
	assert.Equal(t, 1, f.paused)

	c.TogglePlayback(ctx, 2, "verse")
	_, state = c.Playback()
	assert.Equal(t, PlaybackSpeaking, state)
	assert.Equal(t, 1, f.resumed)

	// No extra utterance was started by pause or resume.
	assert.Equal(t, []string{"verse"}, f.spoken)
}

func TestSwitchingIndexCancelsActiveUtterance(t *testing.T) {
	f := &fakeCapability{}
	c := NewCoordinator(f, newMemStore(), testLogger())
	ctx := context.Background()

	c.TogglePlayback(ctx, 0, "first")
	c.TogglePlayback(ctx, 1, "second")

	assert.Equal(t, 1, f.cancelled)
	index, state := c.Playback()
	assert.Equal(t, 1, index)
	assert.Equal(t, PlaybackSpeaking, state)
	assert.Equal(t, []string{"first", "second"}, f.spoken)
}

func TestStaleCompletionIgnored(t *testing.T) {
	f := &fakeCapability{}
	c := NewCoordinator(f, newMemStore(), testLogger())
	ctx := context.Background()

	c.TogglePlayback(ctx, 0, "first")
	stale := f.onDone

	c.TogglePlayback(ctx, 1, "second")

	// The cancelled utterance finishing late must not clobber the new one.
	stale()
	index, state := c.Playback()
	assert.Equal(t, 1, index)
	assert.Equal(t, PlaybackSpeaking, state)

	f.onDone()
	index, state = c.Playback()
	assert.Equal(t, NoIndex, index)
	assert.Equal(t, PlaybackIdle, state)
}

func TestStopPlayback(t *testing.T) {
	f := &fakeCapability{}
	c := NewCoordinator(f, newMemStore(), testLogger())

	c.SpeakReply(context.Background(), 3, "reply")
	c.StopPlayback()

	assert.Equal(t, 1, f.cancelled)
	index, state := c.Playback()
	assert.Equal(t, NoIndex, index)
	assert.Equal(t, PlaybackIdle, state)
}

func TestUpdatePrefsClampsAndPersists(t *testing.T) {
	kv := newMemStore()
	c := NewCoordinator(&fakeCapability{}, kv, testLogger())
	ctx := context.Background()

	err := c.UpdatePrefs(ctx, Prefs{Rate: 9, Pitch: 0.1, AutoSpeak: true})
	require.NoError(t, err)

	p := c.Prefs()
	assert.Equal(t, MaxRate, p.Rate)
	assert.Equal(t, MinPitch, p.Pitch)
	assert.True(t, p.AutoSpeak)

	var stored Prefs
	require.NoError(t, json.Unmarshal(kv.m[PrefsKey], &stored))
	assert.Equal(t, p, stored)
}

func TestLoadPrefsClampsStoredValues(t *testing.T) {
	kv := newMemStore()
	kv.m[PrefsKey] = []byte(`{"rate":0.01,"pitch":5.0,"autoSpeak":true}`)

	c := NewCoordinator(&fakeCapability{}, kv, testLogger())
	c.LoadPrefs(context.Background())

	p := c.Prefs()
	assert.Equal(t, MinRate, p.Rate)
	assert.Equal(t, MaxPitch, p.Pitch)
	assert.True(t, c.AutoSpeak())
}

func TestLoadPrefsCorruptFallsBackToDefaults(t *testing.T) {
	kv := newMemStore()
	kv.m[PrefsKey] = []byte("{broken")

	c := NewCoordinator(&fakeCapability{}, kv, testLogger())
	c.LoadPrefs(context.Background())

	assert.Equal(t, DefaultPrefs(), c.Prefs())
}
