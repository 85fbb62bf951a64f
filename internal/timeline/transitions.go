package timeline

import (
	"fmt"
	"math"
	"sort"
)

// TransitionPoint is a boundary between two touching clips on a video track
// where a transition can be added or edited.
type TransitionPoint struct {
	TrackID  string  `json:"track_id"`
	PrevID   string  `json:"prev_id"`
	NextID   string  `json:"next_id"`
	Boundary float64 `json:"boundary"`
	Gap      float64 `json:"gap"`
	// X is the boundary in pixels; ControlX is where the control is drawn.
	X          float64     `json:"x"`
	ControlX   float64     `json:"control_x"`
	Transition *Transition `json:"transition,omitempty"`
	// SpanBefore and SpanAfter are the pixels the transition occupies on
	// each side of the boundary.
	SpanBefore float64 `json:"span_before"`
	SpanAfter  float64 `json:"span_after"`
}

// Touching reports whether next starts within AdjacencyEpsilon of prev's end.
func Touching(prev, next Item) bool {
	return math.Abs(next.Start-prev.End()) < AdjacencyEpsilon
}

// Adjacencies lists the transition points of a track. Only video tracks
// have them.
func Adjacencies(t *Track, zoom float64) []TransitionPoint {
	if t == nil || t.Type != TrackVideo || len(t.Items) < 2 {
		return nil
	}

	items := make([]Item, len(t.Items))
	copy(items, t.Items)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Start < items[j].Start
	})

	var points []TransitionPoint
	for i := 1; i < len(items); i++ {
		prev, next := items[i-1], items[i]
		if !Touching(prev, next) {
			continue
		}
		x := TimeToPixels(next.Start, zoom)
		p := TransitionPoint{
			TrackID:  t.ID,
			PrevID:   prev.ID,
			NextID:   next.ID,
			Boundary: next.Start,
			Gap:      next.Start - prev.End(),
			X:        x,
			ControlX: x - ControlHalfWidthPx,
		}
		if next.Transition.Active() {
			tr := *next.Transition
			p.Transition = &tr
			p.SpanBefore, p.SpanAfter = TransitionSpan(&tr, zoom)
		}
		points = append(points, p)
	}
	return points
}

// TransitionSpan returns how many pixels a transition reserves before and
// after its boundary.
func TransitionSpan(tr *Transition, zoom float64) (before, after float64) {
	if !tr.Active() {
		return 0, 0
	}
	w := TimeToPixels(math.Max(0, tr.Duration), zoom)
	switch tr.Timing {
	case TimingPrefix:
		return w, 0
	case TimingPostfix:
		return 0, w
	default:
		return w / 2, w / 2
	}
}

// Transitions lists the transition points of every video track.
func (e *Engine) Transitions() []TransitionPoint {
	var out []TransitionPoint
	for _, t := range e.tl.tracks {
		out = append(out, Adjacencies(t, e.zoom.Value())...)
	}
	return out
}

// ActivateTransition opens the transition editor for the boundary into itemID.
func (e *Engine) ActivateTransition(trackID, itemID string) {
	if _, ok := e.tl.Item(trackID, itemID); !ok {
		return
	}
	e.cb.selectTransition(trackID, itemID)
}

// SetTransition assigns the transition into an item. A nil or "none"
// transition clears it.
func (e *Engine) SetTransition(trackID, itemID string, tr *Transition) error {
	if tr.Active() && tr.Timing != "" && !tr.Timing.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTiming, tr.Timing)
	}
	t := e.tl.track(trackID)
	if t == nil {
		return ErrTrackNotFound
	}
	if t.Type != TrackVideo {
		return ErrNotVideoTrack
	}
	item, ok := e.tl.Item(trackID, itemID)
	if !ok {
		return ErrItemNotFound
	}

	if !tr.Active() {
		item.Transition = nil
	} else {
		cp := *tr
		cp.Duration = math.Max(0, finiteOr(cp.Duration, 0))
		if cp.Timing == "" {
			cp.Timing = TimingOverlap
		}
		item.Transition = &cp
	}
	return e.tl.UpdateItem(trackID, item)
}
