package api

import (
	"time"

	"github.com/heimdex/heimdex-timeline/internal/project"
	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	DeviceID string `json:"device_id"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type CreateProjectRequest struct {
	Name string `json:"name"`
}

type ProjectResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Zoom      float64 `json:"zoom"`
	Playhead  float64 `json:"playhead"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type ProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

type AddTrackRequest struct {
	Type timeline.TrackType `json:"type"`
	Name string             `json:"name,omitempty"`
}

// PointerDownRequest starts a drag. MinStart and MaxStart opt a move into
// snapping against neighbor boundaries.
type PointerDownRequest struct {
	Kind     timeline.DragKind `json:"kind"`
	TrackID  string            `json:"track_id,omitempty"`
	ItemID   string            `json:"item_id,omitempty"`
	X        float64           `json:"x"`
	MinStart *float64          `json:"min_start,omitempty"`
	MaxStart *float64          `json:"max_start,omitempty"`
}

type PointerMoveRequest struct {
	X            float64 `json:"x"`
	HoverTrackID string  `json:"hover_track_id,omitempty"`
}

type PointerUpRequest struct {
	HoverTrackID string `json:"hover_track_id,omitempty"`
}

// ZoomRequest sets an absolute zoom, or applies Steps wheel steps when
// Zoom is absent.
type ZoomRequest struct {
	Zoom  *float64 `json:"zoom,omitempty"`
	Steps int      `json:"steps,omitempty"`
}

type ZoomResponse struct {
	Zoom      float64 `json:"zoom"`
	PlayheadX float64 `json:"playhead_x"`
}

type SeekRequest struct {
	Time float64 `json:"time"`
}

type PlayheadResponse struct {
	CurrentTime float64 `json:"current_time"`
	PlayheadX   float64 `json:"playhead_x"`
	Playing     bool    `json:"playing"`
}

type RulerResponse struct {
	Zoom      float64         `json:"zoom"`
	Duration  float64         `json:"duration"`
	PlayheadX float64         `json:"playhead_x"`
	Ticks     []timeline.Tick `json:"ticks"`
}

type TransitionsResponse struct {
	Transitions []timeline.TransitionPoint `json:"transitions"`
}

type ItemResponse struct {
	TrackID string        `json:"track_id"`
	Item    timeline.Item `json:"item"`
}

// TimeRequest names a time on the timeline. A nil Time means the playhead.
type TimeRequest struct {
	Time *float64 `json:"time,omitempty"`
}

type SplitResponse struct {
	TrackID string        `json:"track_id"`
	Left    timeline.Item `json:"left"`
	Right   timeline.Item `json:"right"`
}

type DropRequest struct {
	Time float64       `json:"time"`
	Item timeline.Item `json:"item"`
}

func ProjectToResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		Zoom:      p.Zoom,
		Playhead:  p.Playhead,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}
