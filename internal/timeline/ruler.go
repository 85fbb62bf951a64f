package timeline

import (
	"fmt"
	"math"
)

// Tick is one labelled ruler mark.
type Tick struct {
	Time  float64 `json:"time"`
	X     float64 `json:"x"`
	Label string  `json:"label"`
}

// PlayheadX maps the playhead time to pixels.
func PlayheadX(currentTime, zoom float64) float64 {
	return TimeToPixels(currentTime, zoom)
}

// TickStep is the ruler spacing in seconds; it coarsens as zoom drops.
func TickStep(zoom float64) float64 {
	switch {
	case zoom > 60:
		return 1
	case zoom > 30:
		return 5
	default:
		return 10
	}
}

// MaxTicks bounds a single ruler response.
const MaxTicks = 10000

// Ticks returns ruler marks from 0 through until (inclusive of the last
// whole step), at most MaxTicks of them. Non-finite input yields none.
func Ticks(zoom, until float64) []Tick {
	if !isFinite(zoom) || !isFinite(until) {
		return nil
	}
	step := TickStep(zoom)
	n := MaxTicks
	if whole := math.Floor(math.Max(0, until) / step); whole < MaxTicks {
		n = int(whole) + 1
	}
	ticks := make([]Tick, 0, n)
	for i := 0; i < n; i++ {
		t := float64(i) * step
		ticks = append(ticks, Tick{Time: t, X: TimeToPixels(t, zoom), Label: FormatTimecode(t)})
	}
	return ticks
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FormatTimecode renders seconds as m:ss.
func FormatTimecode(t float64) string {
	s := int(math.Floor(math.Max(0, t)))
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// Ruler returns the ticks covering the timeline plus some tail room.
func (e *Engine) Ruler(tail float64) []Tick {
	return Ticks(e.zoom.Value(), e.tl.Duration()+math.Max(0, tail))
}
