package timeline

import (
	"log/slog"
	"math"
)

// SourceDurationFunc reports the full length of an item's source media.
// ok is false when the length is unknown.
type SourceDurationFunc func(item Item) (seconds float64, ok bool)

// Options configures an Engine. Zero values are usable.
type Options struct {
	Zoom float64
	// CurrentTime restores the playhead without emitting OnSeek.
	CurrentTime float64
	Callbacks   Callbacks
	Logger      *slog.Logger
	// NewID generates ids for pasted, duplicated and split items.
	NewID func() string
	// Factory creates items for AddTrackItem.
	Factory ItemFactory
	// SourceDuration, when set, caps trims at the end of the source media.
	SourceDuration SourceDurationFunc
}

// Engine is one timeline editing instance: the track model plus the drag
// state, zoom, playhead and clipboard that belong to it.
type Engine struct {
	tl          *Timeline
	cb          Callbacks
	zoom        Zoom
	currentTime float64
	drag        *DragState
	clipboard   *Item
	newID       func() string
	factory     ItemFactory
	sourceDur   SourceDurationFunc
	logger      *slog.Logger
}

// New creates an engine over the given tracks.
func New(tracks []*Track, opts Options) *Engine {
	if opts.NewID == nil {
		opts.NewID = NewID
	}
	z := opts.Zoom
	if z == 0 {
		z = DefaultZoom
	}
	return &Engine{
		tl:          NewTimeline(tracks, opts.Callbacks, opts.NewID),
		cb:          opts.Callbacks,
		zoom:        Zoom(ClampZoom(z)),
		currentTime: math.Max(0, opts.CurrentTime),
		newID:       opts.NewID,
		factory:     opts.Factory,
		sourceDur:   opts.SourceDuration,
		logger:      opts.Logger,
	}
}

// Timeline exposes the clip and track model.
func (e *Engine) Timeline() *Timeline {
	return e.tl
}

func (e *Engine) Zoom() float64 {
	return e.zoom.Value()
}

// SetZoom sets an absolute zoom, clamped to [MinZoom, MaxZoom].
func (e *Engine) SetZoom(z float64) float64 {
	e.zoom = e.zoom.Set(z)
	e.cb.zoom(e.zoom.Value())
	return e.zoom.Value()
}

// StepZoom applies n wheel steps of ZoomStep px/sec.
func (e *Engine) StepZoom(n int) float64 {
	e.zoom = e.zoom.Step(n)
	e.cb.zoom(e.zoom.Value())
	return e.zoom.Value()
}

func (e *Engine) CurrentTime() float64 {
	return e.currentTime
}

// Seek moves the playhead; negative times clamp to zero.
func (e *Engine) Seek(t float64) {
	e.currentTime = math.Max(0, t)
	e.cb.seek(e.currentTime)
}

func (e *Engine) PlayPause() {
	e.cb.playPause()
}

// PlayheadX is the playhead position in pixels.
func (e *Engine) PlayheadX() float64 {
	return PlayheadX(e.currentTime, e.zoom.Value())
}

// Select marks an item as selected. Empty ids deselect.
func (e *Engine) Select(trackID, itemID string) {
	if itemID != "" {
		if _, ok := e.tl.Item(trackID, itemID); !ok {
			return
		}
	}
	e.cb.selectClip(trackID, itemID)
}

func (e *Engine) Deselect() {
	e.cb.selectClip("", "")
}

func (e *Engine) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
