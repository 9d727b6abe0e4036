// Package voice turns navigation instructions into speech announcements.
// The synthesis engine itself lives behind the Synthesizer interface; over
// the wire it is the client's speech facility, in tests a recorder.
package voice

import (
	"sync"
)

// Utterance is a single announcement handed to the synthesis engine.
type Utterance struct {
	Text   string  `json:"text"`
	Rate   float64 `json:"rate"`
	Pitch  float64 `json:"pitch"`
	Volume float64 `json:"volume"`
}

// Synthesizer dispatches utterances. Cancel stops any in-flight utterance;
// it must be safe to call when nothing is speaking.
type Synthesizer interface {
	Speak(u Utterance)
	Cancel()
}

// Guide deduplicates and dispatches voice announcements. Position updates
// arrive several times inside the same announcement threshold window, so a
// call whose text equals the immediately preceding announcement is dropped.
type Guide struct {
	mu       sync.Mutex
	synth    Synthesizer
	enabled  bool
	lastText string
}

func NewGuide(synth Synthesizer) *Guide {
	return &Guide{
		synth:   synth,
		enabled: true,
	}
}

// Speak announces text unless guidance is muted or the text repeats the
// previous announcement. Any in-flight utterance is cancelled first: the
// latest instruction always wins, there is no queue.
func (g *Guide) Speak(text string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.enabled || text == g.lastText {
		return
	}

	g.synth.Cancel()
	g.synth.Speak(Utterance{
		Text:   text,
		Rate:   1.0,
		Pitch:  1.0,
		Volume: 1.0,
	})
	g.lastText = text
}

// Toggle flips the enabled flag and reports the new state. Disabling cuts
// off any in-flight speech immediately.
func (g *Guide) Toggle() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.enabled = !g.enabled
	if !g.enabled {
		g.synth.Cancel()
	}
	return g.enabled
}

// Enabled reports whether guidance is currently audible.
func (g *Guide) Enabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.enabled
}
