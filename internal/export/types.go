package export

import "github.com/heimdex/heimdex-timeline/internal/timeline"

// Request asks for one video track of a project to be written as an EDL.
// An empty TrackID picks the project's first video track.
type Request struct {
	Format    string  `json:"format"`
	TrackID   string  `json:"track_id"`
	FrameRate float64 `json:"frame_rate"`
	OutputDir string  `json:"output_dir"`
	Filename  string  `json:"filename"`
}

// Event is one edit: a span of source media placed on the record timeline.
// Times are seconds.
type Event struct {
	Reel       string
	ClipName   string
	MediaPath  string
	SourceIn   float64
	SourceOut  float64
	RecordIn   float64
	RecordOut  float64
	Transition *timeline.Transition
}

type Response struct {
	Status     string   `json:"status"`
	Format     string   `json:"format"`
	OutputPath string   `json:"output_path"`
	TrackID    string   `json:"track_id"`
	EventCount int      `json:"event_count"`
	Skipped    []string `json:"skipped"`
}
