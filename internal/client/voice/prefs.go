package voice

import (
	"context"
	"encoding/json"

	"github.com/askgita/askgita/internal/client/store"
)

// PrefsKey is the cache key holding persisted voice preferences.
const PrefsKey = "voice_prefs"

// Safe ranges for synthesis parameters. Stored values outside these ranges
// are clamped before use, whatever a previous version may have written.
const (
	MinRate  = 0.6
	MaxRate  = 1.4
	MinPitch = 0.5
	MaxPitch = 1.8
)

// Prefs are the persisted voice settings.
type Prefs struct {
	Voice     string  `json:"voice,omitempty"`
	Rate      float64 `json:"rate"`
	Pitch     float64 `json:"pitch"`
	AutoSpeak bool    `json:"autoSpeak"`
}

// DefaultPrefs returns neutral synthesis settings with auto-speak off.
func DefaultPrefs() Prefs {
	return Prefs{Rate: 1.0, Pitch: 1.0}
}

// Clamp forces Rate and Pitch into their safe ranges.
func (p Prefs) Clamp() Prefs {
	p.Rate = clamp(p.Rate, MinRate, MaxRate)
	p.Pitch = clamp(p.Pitch, MinPitch, MaxPitch)
	return p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// LoadPrefs reads persisted preferences, clamping whatever was stored.
// Missing or unreadable data yields defaults.
func LoadPrefs(ctx context.Context, kv store.Store) Prefs {
	raw, err := kv.Get(ctx, PrefsKey)
	if err != nil || len(raw) == 0 {
		return DefaultPrefs()
	}
	var p Prefs
	if err := json.Unmarshal(raw, &p); err != nil {
		return DefaultPrefs()
	}
	return p.Clamp()
}

// SavePrefs clamps and persists p as a single overwrite.
func SavePrefs(ctx context.Context, kv store.Store, p Prefs) error {
	raw, err := json.Marshal(p.Clamp())
	if err != nil {
		return err
	}
	return kv.Set(ctx, PrefsKey, raw)
}
