package timeline

import "math"

type DragKind string

const (
	DragMove        DragKind = "move"
	DragResizeLeft  DragKind = "resize-left"
	DragResizeRight DragKind = "resize-right"
	DragScrub       DragKind = "scrub"
)

func (k DragKind) Valid() bool {
	switch k {
	case DragMove, DragResizeLeft, DragResizeRight, DragScrub:
		return true
	}
	return false
}

// DragState is the record captured on pointer-down. A nil state means Idle.
type DragState struct {
	Kind             DragKind `json:"kind"`
	TrackID          string   `json:"track_id,omitempty"`
	ItemID           string   `json:"item_id,omitempty"`
	StartX           float64  `json:"start_x"`
	OriginalStart    float64  `json:"original_start"`
	OriginalDuration float64  `json:"original_duration"`
	OriginalOffset   float64  `json:"original_offset"`
	Bounds           Bounds   `json:"bounds"`

	// LastStart is the most recent start computed by a move.
	LastStart float64 `json:"last_start"`
}

// PointerDown starts a gesture. X is the pointer position in timeline
// pixels. Bounds opt a move into snapping against neighbor boundaries.
type PointerDown struct {
	Kind    DragKind
	TrackID string
	ItemID  string
	X       float64
	Bounds  Bounds
}

type PointerMove struct {
	X            float64
	HoverTrackID string
}

type PointerUp struct {
	HoverTrackID string
}

// Drag returns the active drag, if any.
func (e *Engine) Drag() (DragState, bool) {
	if e.drag == nil {
		return DragState{}, false
	}
	return *e.drag, true
}

// Dragging reports whether a gesture is in progress.
func (e *Engine) Dragging() bool {
	return e.drag != nil
}

// PointerDown handles a pointer press on an item edge/body or on the ruler.
// Pressing an item selects it and seeks to the pointer; locked items never
// enter a drag.
func (e *Engine) PointerDown(ev PointerDown) {
	if !ev.Kind.Valid() {
		return
	}
	z := e.zoom.Value()

	if ev.Kind == DragScrub {
		e.drag = &DragState{Kind: DragScrub, StartX: ev.X}
		e.Seek(PixelsToTime(ev.X, z))
		return
	}

	item, ok := e.tl.Item(ev.TrackID, ev.ItemID)
	if !ok {
		e.debug("pointer down on missing item", "track_id", ev.TrackID, "item_id", ev.ItemID)
		return
	}

	e.cb.selectClip(ev.TrackID, ev.ItemID)
	e.Seek(PixelsToTime(ev.X, z))

	if item.IsLocked {
		e.debug("drag rejected on locked item", "item_id", item.ID)
		return
	}

	e.drag = &DragState{
		Kind:             ev.Kind,
		TrackID:          ev.TrackID,
		ItemID:           ev.ItemID,
		StartX:           ev.X,
		OriginalStart:    item.Start,
		OriginalDuration: item.Duration,
		OriginalOffset:   item.Offset,
		Bounds:           ev.Bounds,
		LastStart:        item.Start,
	}
	e.debug("drag started", "kind", ev.Kind, "item_id", item.ID)
}

// PointerMove applies the pointer position to the active drag and commits
// the result immediately.
func (e *Engine) PointerMove(ev PointerMove) {
	d := e.drag
	if d == nil {
		return
	}
	z := e.zoom.Value()

	if d.Kind == DragScrub {
		e.Seek(PixelsToTime(ev.X, z))
		return
	}

	item, ok := e.tl.Item(d.TrackID, d.ItemID)
	if !ok {
		return
	}
	delta := PixelsToTime(ev.X-d.StartX, z)

	switch d.Kind {
	case DragMove:
		start := math.Max(0, d.OriginalStart+delta)
		start = ResolveSnap(start, d.Bounds, z)
		item.Start = start
		d.LastStart = start
	case DragResizeRight:
		item.Duration = e.resizeRight(item, d, delta)
	case DragResizeLeft:
		shift := e.leftShift(item, d, delta)
		item.Start = d.OriginalStart + shift
		item.Duration = d.OriginalDuration - shift
		item.Offset = d.OriginalOffset + shift
	}

	_ = e.tl.UpdateItem(d.TrackID, item)
}

// PointerUp ends the gesture. A move released over another track transfers
// the item there; any other clip drag reports a drag end for its track.
func (e *Engine) PointerUp(ev PointerUp) {
	d := e.drag
	e.drag = nil
	if d == nil || d.Kind == DragScrub {
		return
	}

	if d.Kind == DragMove && ev.HoverTrackID != "" && ev.HoverTrackID != d.TrackID {
		if err := e.tl.MoveItemAcrossTracks(d.ItemID, d.TrackID, ev.HoverTrackID, d.LastStart); err != nil {
			e.debug("cross-track drop ignored", "item_id", d.ItemID, "target", ev.HoverTrackID, "error", err)
		}
		return
	}

	e.cb.dragEnd(d.TrackID)
}

func (e *Engine) resizeRight(item Item, d *DragState, delta float64) float64 {
	dur := math.Max(MinDuration, d.OriginalDuration+delta)
	if src, ok := e.sourceLength(item); ok {
		dur = math.Max(MinDuration, math.Min(dur, src-d.OriginalOffset))
	}
	return dur
}

// leftShift clamps a left-edge trim so the start stays >= 0 and the clip
// keeps MinDuration. With a known source length the offset stays >= 0.
func (e *Engine) leftShift(item Item, d *DragState, delta float64) float64 {
	lo := -d.OriginalStart
	if _, ok := e.sourceLength(item); ok {
		lo = math.Max(lo, -d.OriginalOffset)
	}
	hi := d.OriginalDuration - MinDuration
	return math.Min(math.Max(delta, lo), hi)
}

func (e *Engine) sourceLength(item Item) (float64, bool) {
	if e.sourceDur == nil || item.Type != ItemVideo {
		return 0, false
	}
	src, ok := e.sourceDur(item)
	if !ok || src <= 0 {
		return 0, false
	}
	return src, true
}
