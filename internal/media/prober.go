// Package media answers questions about source media that the timeline
// itself cannot: how long a clip's source file is, and what it contains.
package media

import (
	"context"
	"errors"
	"log/slog"
)

// ErrUnknownSource is returned when a prober has nothing on record for src.
var ErrUnknownSource = errors.New("unknown media source")

// Prober inspects a media source.
type Prober interface {
	Probe(ctx context.Context, src string) (*ProbeResult, error)
}

// ProbeResult describes a media source. Duration is in seconds; zero means
// the length could not be determined.
type ProbeResult struct {
	Duration   float64 `json:"duration"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	Codec      string  `json:"codec,omitempty"`
	AudioCodec string  `json:"audio_codec,omitempty"`
	FrameRate  float64 `json:"frame_rate,omitempty"`
	Bitrate    int64   `json:"bitrate,omitempty"`
}

// StubProber knows nothing about any source. Trims stay unclamped when it
// is in use.
type StubProber struct {
	logger *slog.Logger
}

func NewStubProber(logger *slog.Logger) *StubProber {
	return &StubProber{logger: logger}
}

func (p *StubProber) Probe(_ context.Context, src string) (*ProbeResult, error) {
	if p.logger != nil {
		p.logger.Debug("probe stub: no media inspection configured", "src", src)
	}
	return &ProbeResult{}, nil
}

// StaticProber answers from a fixed table. Useful for imports that carry
// their own durations, and for tests.
type StaticProber map[string]ProbeResult

func (p StaticProber) Probe(_ context.Context, src string) (*ProbeResult, error) {
	r, ok := p[src]
	if !ok {
		return nil, ErrUnknownSource
	}
	return &r, nil
}

// Duration probes src and reports its length, ok is false when the length
// is unknown for any reason.
func Duration(ctx context.Context, p Prober, src string) (float64, bool) {
	if p == nil || src == "" {
		return 0, false
	}
	r, err := p.Probe(ctx, src)
	if err != nil || r == nil || r.Duration <= 0 {
		return 0, false
	}
	return r.Duration, true
}
