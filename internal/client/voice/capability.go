// Package voice coordinates speech-to-text capture and text-to-speech
// playback on top of a platform capability interface. The platform engine
// is injected; on platforms without one every operation is a silent no-op.
package voice

// TranscriptFunc receives recognition results. Non-final results are
// interim feedback and will be replaced; final results are committed
// transcript segments.
type TranscriptFunc func(text string, final bool)

// Handle identifies one in-flight synthesis utterance.
type Handle any

// SpeakParams tunes the synthetic voice for one utterance.
type SpeakParams struct {
	Voice string
	Rate  float64
	Pitch float64
}

// Capability is the platform speech engine surface.
//
// StartCapture begins recognition for the given BCP-47 language tag and
// streams results to onResult until StopCapture. Speak starts synthesis and
// invokes onDone when the utterance finishes on its own (not when
// cancelled); onDone must be invoked asynchronously, never from inside the
// Speak call itself.
type Capability interface {
	StartCapture(languageTag string, onResult TranscriptFunc) error
	StopCapture() error
	Speak(text string, params SpeakParams, onDone func()) (Handle, error)
	Pause(h Handle) error
	Resume(h Handle) error
	Cancel(h Handle) error
}
