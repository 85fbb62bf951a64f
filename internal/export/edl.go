package export

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

const (
	DefaultFrameRate = 30.0
	DefaultTitle     = "heimdex_export"

	// Reel names for sourced media and generated black.
	reelMedia = "AX"
	reelBlack = "BL"
)

var (
	ErrNoVideoTrack = errors.New("project has no video track")
	ErrNotVideo     = errors.New("track is not a video track")
	ErrNoEvents     = errors.New("track has no exportable items")
)

// PickTrack returns the track named by id, or the first video track when id
// is empty.
func PickTrack(tracks []*timeline.Track, id string) (*timeline.Track, error) {
	for _, t := range tracks {
		if id == "" && t.Type == timeline.TrackVideo {
			return t, nil
		}
		if t.ID == id {
			if t.Type != timeline.TrackVideo {
				return nil, fmt.Errorf("%w: %s", ErrNotVideo, id)
			}
			return t, nil
		}
	}
	if id == "" {
		return nil, ErrNoVideoTrack
	}
	return nil, fmt.Errorf("%w: %s", timeline.ErrTrackNotFound, id)
}

// Events turns a video track into edits ordered by record time. Items that
// have no picture to cut (text) are returned by id in skipped.
func Events(t *timeline.Track) (events []Event, skipped []string) {
	items := make([]timeline.Item, len(t.Items))
	copy(items, t.Items)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Start < items[j].Start })

	for _, it := range items {
		ev := Event{
			ClipName:  it.Name,
			MediaPath: it.Src,
			SourceIn:  math.Max(0, it.Offset),
			SourceOut: math.Max(0, it.Offset) + it.Duration,
			RecordIn:  it.Start,
			RecordOut: it.End(),
		}
		switch it.Type {
		case timeline.ItemVideo, timeline.ItemImage:
			ev.Reel = reelMedia
		case timeline.ItemColor:
			ev.Reel = reelBlack
			ev.MediaPath = ""
		default:
			skipped = append(skipped, it.ID)
			continue
		}
		if ev.ClipName == "" {
			ev.ClipName = it.ID
		}
		if it.Transition.Active() && it.Transition.Duration > 0 {
			tr := *it.Transition
			ev.Transition = &tr
		}
		events = append(events, ev)
	}
	return events, skipped
}

// GenerateEDL renders events as a CMX3600 list. Events with a transition are
// written as dissolves from the preceding edit.
func GenerateEDL(events []Event, title string, frameRate float64) string {
	tb := newTimebase(frameRate)

	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if tb.drop > 0 {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	for i, ev := range events {
		edit := "C"
		if ev.Transition != nil {
			edit = fmt.Sprintf("D    %03d", tb.frames(ev.Transition.Duration))
		}
		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s %-8s %s %s %s %s", i+1, ev.Reel, "V", edit,
				tb.timecode(ev.SourceIn), tb.timecode(ev.SourceOut),
				tb.timecode(ev.RecordIn), tb.timecode(ev.RecordOut)),
			fmt.Sprintf("* FROM CLIP NAME:  %s", ev.ClipName),
		)
		if ev.MediaPath != "" {
			lines = append(lines, fmt.Sprintf("* MEDIA PATH:  %s", ev.MediaPath))
		}
		if ev.Transition != nil {
			lines = append(lines, fmt.Sprintf("* TRANSITION:  %s %s", ev.Transition.Type, ev.Transition.Timing))
		}
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// Result is a rendered edit decision list.
type Result struct {
	TrackID string
	EDL     string
	Events  int
	Skipped []string
}

// Build renders one video track of a project. An empty trackID picks the
// first video track.
func Build(title string, tracks []*timeline.Track, trackID string, frameRate float64) (*Result, error) {
	t, err := PickTrack(tracks, trackID)
	if err != nil {
		return nil, err
	}
	events, skipped := Events(t)
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoEvents, t.ID)
	}
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	title = SanitizeName(title, 120)
	if title == "" {
		title = DefaultTitle
	}
	if skipped == nil {
		skipped = []string{}
	}
	return &Result{
		TrackID: t.ID,
		EDL:     GenerateEDL(events, title, frameRate),
		Events:  len(events),
		Skipped: skipped,
	}, nil
}

// WriteFile validates dir and writes the list to <dir>/<name>.edl.
func WriteFile(dir, name, edl string) (string, error) {
	if err := ValidateOutputDir(dir); err != nil {
		return "", err
	}
	name = SanitizeName(strings.TrimSuffix(name, ".edl"), 120)
	if name == "" {
		name = DefaultTitle
	}
	out := filepath.Join(dir, name+".edl")
	if err := os.WriteFile(out, []byte(edl), 0o644); err != nil {
		return "", fmt.Errorf("write edl: %w", err)
	}
	return out, nil
}

// timebase converts seconds to frame counts and timecode. At 29.97 and
// 59.94 it uses SMPTE drop-frame numbering: two (or four) frame numbers are
// skipped every minute except each tenth minute.
type timebase struct {
	rate float64 // real frames per second
	fps  int     // nominal frames per second
	drop int     // frame numbers dropped per minute
}

func newTimebase(frameRate float64) timebase {
	if frameRate <= 0 || math.IsNaN(frameRate) || math.IsInf(frameRate, 0) {
		frameRate = DefaultFrameRate
	}
	tb := timebase{rate: frameRate, fps: int(math.Round(frameRate))}
	switch {
	case math.Abs(frameRate-29.97) < 0.01:
		tb.drop = 2
	case math.Abs(frameRate-59.94) < 0.01:
		tb.drop = 4
	}
	if tb.drop == 0 {
		tb.rate = float64(tb.fps)
	}
	return tb
}

// frames counts real frames in sec, never below zero.
func (tb timebase) frames(sec float64) int {
	return int(math.Round(math.Max(0, sec) * tb.rate))
}

func (tb timebase) timecode(sec float64) string {
	n := tb.frames(sec)
	sep := ":"
	if tb.drop > 0 {
		perMinute := tb.fps*60 - tb.drop
		perTenMinutes := perMinute*10 + tb.drop
		tens, rem := n/perTenMinutes, n%perTenMinutes
		n += tb.drop * 9 * tens
		if rem > tb.drop {
			n += tb.drop * ((rem - tb.drop) / perMinute)
		}
		sep = ";"
	}

	frames := n % tb.fps
	totalSeconds := n / tb.fps
	return fmt.Sprintf("%02d:%02d:%02d%s%02d",
		totalSeconds/3600, totalSeconds/60%60, totalSeconds%60, sep, frames)
}
