// Package project persists timelines and hosts the editing sessions that
// drive a timeline.Engine on behalf of API and CLI callers.
package project

import (
	"errors"
	"time"

	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidItemKind = errors.New("invalid item kind")
	ErrInvalidTrack    = errors.New("invalid track")
)

// Config table keys.
const (
	ConfigAuthToken = "auth_token"
	ConfigDeviceID  = "device_id"
)

// DefaultItemDuration is the length given to new items whose source length
// is unknown.
const DefaultItemDuration = 5.0

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Zoom      float64   `json:"zoom"`
	Playhead  float64   `json:"playhead"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Selection names an item on a track. Empty ids mean nothing is selected.
type Selection struct {
	TrackID string `json:"track_id,omitempty"`
	ItemID  string `json:"item_id,omitempty"`
}

func (s Selection) Empty() bool {
	return s.ItemID == ""
}

// Snapshot is the full observable state of an editing session.
type Snapshot struct {
	Project          Project                    `json:"project"`
	Tracks           []*timeline.Track          `json:"tracks"`
	Duration         float64                    `json:"duration"`
	Zoom             float64                    `json:"zoom"`
	CurrentTime      float64                    `json:"current_time"`
	PlayheadX        float64                    `json:"playhead_x"`
	Playing          bool                       `json:"playing"`
	Selection        Selection                  `json:"selection"`
	TransitionTarget Selection                  `json:"transition_target"`
	Transitions      []timeline.TransitionPoint `json:"transitions"`
	Drag             *timeline.DragState        `json:"drag,omitempty"`
}
