package timeline

import (
	"fmt"
)

type recorder struct {
	updates   []Item
	inserts   []Item
	deletes   []string
	moves     []string
	dragEnds  []string
	selected  []string
	seeks     []float64
	trSelects []string
	zooms     []float64
	plays     int
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnUpdateClip: func(trackID string, item Item) { r.updates = append(r.updates, item) },
		OnInsertClip: func(trackID string, item Item) { r.inserts = append(r.inserts, item) },
		OnDeleteClip: func(trackID, itemID string) { r.deletes = append(r.deletes, itemID) },
		OnMoveClip: func(itemID, src, dst string, start float64) {
			r.moves = append(r.moves, fmt.Sprintf("%s:%s->%s@%g", itemID, src, dst, start))
		},
		OnClipDragEnd:      func(trackID string) { r.dragEnds = append(r.dragEnds, trackID) },
		OnSelectClip:       func(trackID, itemID string) { r.selected = append(r.selected, itemID) },
		OnSelectTransition: func(trackID, itemID string) { r.trSelects = append(r.trSelects, itemID) },
		OnSeek:             func(t float64) { r.seeks = append(r.seeks, t) },
		OnPlayPause:        func() { r.plays++ },
		OnZoom:             func(z float64) { r.zooms = append(r.zooms, z) },
	}
}

func (r *recorder) lastUpdate() Item {
	if len(r.updates) == 0 {
		return Item{}
	}
	return r.updates[len(r.updates)-1]
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

func videoTrack(id string, items ...Item) *Track {
	return &Track{ID: id, Type: TrackVideo, Name: id, Items: items}
}

func clip(id string, start, duration, offset float64) Item {
	return Item{ID: id, Type: ItemVideo, Start: start, Duration: duration, Offset: offset, Src: id + ".mp4"}
}

func newTestEngine(zoom float64, tracks ...*Track) (*Engine, *recorder) {
	rec := &recorder{}
	e := New(tracks, Options{Zoom: zoom, Callbacks: rec.callbacks(), NewID: seqIDs()})
	return e, rec
}
