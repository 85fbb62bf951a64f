package project

import (
	"fmt"
	"path"
	"strings"

	"github.com/heimdex/heimdex-timeline/internal/media"
	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

// newItem places an added item at the end of the first track of the right
// type, creating that track when the timeline has none.
func (s *Session) newItem(req timeline.AddItemRequest, tracks []*timeline.Track) (timeline.AddResult, error) {
	var want timeline.TrackType
	switch req.Kind {
	case timeline.ItemVideo, timeline.ItemImage, timeline.ItemColor:
		want = timeline.TrackVideo
	case timeline.ItemText:
		want = timeline.TrackOverlay
	default:
		return timeline.AddResult{}, fmt.Errorf("%w: %q", ErrInvalidItemKind, req.Kind)
	}

	var res timeline.AddResult
	var target *timeline.Track
	for _, t := range tracks {
		if t.Type == want {
			target = t
			break
		}
	}
	if target == nil {
		target = &timeline.Track{ID: s.newID(), Type: want, Name: trackName(want, tracks)}
		res.NewTrack = target
	}
	res.TrackID = target.ID

	dur := DefaultItemDuration
	if req.Kind == timeline.ItemVideo {
		if d, ok := media.Duration(s.ctx, s.prober, req.Src); ok {
			dur = d
		}
	}

	res.Item = timeline.Item{
		Type:      req.Kind,
		Start:     trackEnd(target),
		Duration:  dur,
		Src:       req.Src,
		Thumbnail: req.Thumbnail,
		Name:      itemName(req),
	}
	return res, nil
}

func trackEnd(t *timeline.Track) float64 {
	var end float64
	for _, it := range t.Items {
		if it.End() > end {
			end = it.End()
		}
	}
	return end
}

// trackName numbers a new track after the existing ones of its type.
func trackName(typ timeline.TrackType, tracks []*timeline.Track) string {
	n := 1
	for _, t := range tracks {
		if t.Type == typ {
			n++
		}
	}
	label := string(typ)
	return fmt.Sprintf("%s %d", strings.ToUpper(label[:1])+label[1:], n)
}

func itemName(req timeline.AddItemRequest) string {
	if req.Name != "" {
		return req.Name
	}
	if req.Src != "" && req.Kind != timeline.ItemColor && req.Kind != timeline.ItemText {
		return path.Base(req.Src)
	}
	return string(req.Kind)
}
