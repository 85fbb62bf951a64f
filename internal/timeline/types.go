// Package timeline implements the editing engine behind the video editor:
// tracks and clips, the pointer drag state machine, snapping, transition
// adjacency and the clip operations exposed to the editor UI.
//
// The engine is synchronous and single-threaded. Hosts that receive events
// from several goroutines must serialize calls into an Engine themselves.
package timeline

import (
	"github.com/google/uuid"
)

const (
	// MinDuration is the shortest clip length in seconds.
	MinDuration = 0.5

	// AdjacencyEpsilon is the largest gap, in seconds, at which two clips
	// still count as touching.
	AdjacencyEpsilon = 0.1

	MinZoom     = 10.0
	MaxZoom     = 200.0
	DefaultZoom = 50.0
	ZoomStep    = 10.0

	// SnapThresholdPx is the snap distance in screen pixels.
	SnapThresholdPx = 10.0

	// ControlHalfWidthPx centers the transition control on a clip boundary.
	ControlHalfWidthPx = 12.0
)

type TrackType string

const (
	TrackVideo   TrackType = "video"
	TrackAudio   TrackType = "audio"
	TrackOverlay TrackType = "overlay"
)

func (t TrackType) Valid() bool {
	switch t {
	case TrackVideo, TrackAudio, TrackOverlay:
		return true
	}
	return false
}

type ItemType string

const (
	ItemVideo ItemType = "video"
	ItemImage ItemType = "image"
	ItemColor ItemType = "color"
	ItemText  ItemType = "text"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemVideo, ItemImage, ItemColor, ItemText:
		return true
	}
	return false
}

type TransitionTiming string

const (
	TimingPrefix  TransitionTiming = "prefix"
	TimingOverlap TransitionTiming = "overlap"
	TimingPostfix TransitionTiming = "postfix"
)

// Valid reports whether t is one of the known timings. Empty is not valid.
func (t TransitionTiming) Valid() bool {
	switch t {
	case TimingPrefix, TimingOverlap, TimingPostfix:
		return true
	}
	return false
}

// TransitionNone marks an explicitly cleared transition.
const TransitionNone = "none"

// Transition describes the effect played into an item from its predecessor.
type Transition struct {
	Type     string           `json:"type" yaml:"type"`
	Duration float64          `json:"duration" yaml:"duration"`
	Timing   TransitionTiming `json:"timing" yaml:"timing"`
}

// Active reports whether t describes a real transition.
func (t *Transition) Active() bool {
	return t != nil && t.Type != "" && t.Type != TransitionNone
}

// Animation references a named preset. The engine never interprets it.
type Animation struct {
	Preset string         `json:"preset" yaml:"preset"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Item is a single clip placed on a track.
type Item struct {
	ID           string      `json:"id" yaml:"id"`
	Type         ItemType    `json:"type" yaml:"type"`
	Start        float64     `json:"start" yaml:"start"`
	Duration     float64     `json:"duration" yaml:"duration"`
	Offset       float64     `json:"offset" yaml:"offset"`
	Src          string      `json:"src,omitempty" yaml:"src,omitempty"`
	Thumbnail    string      `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	Name         string      `json:"name,omitempty" yaml:"name,omitempty"`
	IsLocked     bool        `json:"is_locked" yaml:"is_locked"`
	IsBackground bool        `json:"is_background" yaml:"is_background"`
	Animation    *Animation  `json:"animation,omitempty" yaml:"animation,omitempty"`
	Transition   *Transition `json:"transition,omitempty" yaml:"transition,omitempty"`
}

// End returns Start+Duration.
func (it Item) End() float64 {
	return it.Start + it.Duration
}

// Clone returns a deep copy of the item.
func (it Item) Clone() Item {
	out := it
	if it.Transition != nil {
		tr := *it.Transition
		out.Transition = &tr
	}
	if it.Animation != nil {
		an := *it.Animation
		if it.Animation.Params != nil {
			an.Params = make(map[string]any, len(it.Animation.Params))
			for k, v := range it.Animation.Params {
				an.Params[k] = v
			}
		}
		out.Animation = &an
	}
	return out
}

// Track is a horizontal lane of items. Item order is insertion order;
// timeline position comes from Item.Start.
type Track struct {
	ID    string    `json:"id" yaml:"id"`
	Type  TrackType `json:"type" yaml:"type"`
	Name  string    `json:"name" yaml:"name"`
	Items []Item    `json:"items" yaml:"items"`
}

func (t *Track) indexOf(itemID string) int {
	for i := range t.Items {
		if t.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the track.
func (t *Track) Clone() *Track {
	out := &Track{ID: t.ID, Type: t.Type, Name: t.Name, Items: make([]Item, len(t.Items))}
	for i, it := range t.Items {
		out.Items[i] = it.Clone()
	}
	return out
}

// NewID returns a fresh random item identifier.
func NewID() string {
	return uuid.NewString()
}
