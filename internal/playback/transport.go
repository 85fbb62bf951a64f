// Package playback holds the play/pause transport and serves clip source
// media for preview.
package playback

import (
	"math"
	"sync"
)

// State is a snapshot of the transport.
type State struct {
	Playing     bool    `json:"playing"`
	CurrentTime float64 `json:"current_time"`
}

// Transport tracks whether the timeline is playing and where the playhead
// is. It is safe for concurrent use.
type Transport struct {
	mu          sync.Mutex
	playing     bool
	currentTime float64
}

func NewTransport(at float64) *Transport {
	return &Transport{currentTime: math.Max(0, at)}
}

func (t *Transport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return State{Playing: t.playing, CurrentTime: t.currentTime}
}

// Seek moves the playhead; negative times clamp to zero.
func (t *Transport) Seek(at float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.currentTime = math.Max(0, at)
	return t.currentTime
}

// Toggle flips play/pause and returns the new playing state.
func (t *Transport) Toggle() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.playing = !t.playing
	return t.playing
}

func (t *Transport) Pause() {
	t.mu.Lock()
	t.playing = false
	t.mu.Unlock()
}
