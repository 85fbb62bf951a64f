package project

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/heimdex/heimdex-timeline/internal/logging"
	"github.com/heimdex/heimdex-timeline/internal/media"
	"github.com/heimdex/heimdex-timeline/internal/playback"
	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

// Session is one open project: an engine whose callbacks write through to
// the repository. All access goes through Service.Do, which serializes it.
type Session struct {
	mu        sync.Mutex
	project   Project
	repo      Repository
	engine    *timeline.Engine
	transport *playback.Transport
	prober    media.Prober
	newID     func() string
	logger    *slog.Logger
	resolve   bool

	// Per-call state, valid while Do holds mu.
	ctx       context.Context
	err       error
	dirty     map[string]bool
	viewDirty bool

	selection  Selection
	transition Selection
}

func sessionLogger(logger *slog.Logger, projectID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logging.WithProjectID(logger, projectID)
}

func newSession(p Project, tracks []*timeline.Track, svc *Service) *Session {
	s := &Session{
		project:   p,
		repo:      svc.repo,
		transport: playback.NewTransport(p.Playhead),
		prober:    svc.opts.Prober,
		newID:     svc.opts.NewID,
		logger:    sessionLogger(svc.opts.Logger, p.ID),
		resolve:   svc.opts.ResolveOverlaps,
		ctx:       context.Background(),
		dirty:     make(map[string]bool),
	}

	opts := timeline.Options{
		Zoom:        p.Zoom,
		CurrentTime: p.Playhead,
		Callbacks:   svc.opts.Metrics.Instrument(s.callbacks()),
		Logger:      s.logger,
		NewID:       s.newID,
		Factory:     s.newItem,
	}
	if s.prober != nil {
		opts.SourceDuration = func(it timeline.Item) (float64, bool) {
			return media.Duration(s.ctx, s.prober, it.Src)
		}
	}
	s.engine = timeline.New(tracks, opts)
	return s
}

func (s *Session) Engine() *timeline.Engine {
	return s.engine
}

func (s *Session) Transport() *playback.Transport {
	return s.transport
}

func (s *Session) Project() Project {
	return s.project
}

func (s *Session) Selection() Selection {
	return s.selection
}

func (s *Session) TransitionTarget() Selection {
	return s.transition
}

// Snapshot captures everything a client needs to draw the timeline.
func (s *Session) Snapshot() Snapshot {
	e := s.engine
	snap := Snapshot{
		Project:          s.project,
		Tracks:           e.Timeline().Tracks(),
		Duration:         e.Timeline().Duration(),
		Zoom:             e.Zoom(),
		CurrentTime:      e.CurrentTime(),
		PlayheadX:        e.PlayheadX(),
		Playing:          s.transport.State().Playing,
		Selection:        s.selection,
		TransitionTarget: s.transition,
		Transitions:      e.Transitions(),
	}
	if d, ok := e.Drag(); ok {
		snap.Drag = &d
	}
	return snap
}

// AddTrack appends an empty track.
func (s *Session) AddTrack(typ timeline.TrackType, name string) (*timeline.Track, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: type %q", ErrInvalidTrack, typ)
	}
	tl := s.engine.Timeline()
	if name == "" {
		name = trackName(typ, tl.Tracks())
	}
	t := &timeline.Track{ID: s.newID(), Type: typ, Name: name}
	if !tl.AddTrack(t) {
		return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidTrack, t.ID)
	}
	if err := s.repo.SaveTrack(s.ctx, s.project.ID, t, len(tl.Tracks())-1); err != nil {
		return nil, err
	}
	return t, nil
}

// RemoveTrack deletes a track and everything on it.
func (s *Session) RemoveTrack(trackID string) error {
	if !s.engine.Timeline().RemoveTrack(trackID) {
		return timeline.ErrTrackNotFound
	}
	if s.selection.TrackID == trackID {
		s.selection = Selection{}
	}
	if s.transition.TrackID == trackID {
		s.transition = Selection{}
	}
	delete(s.dirty, trackID)
	return s.repo.DeleteTrack(s.ctx, s.project.ID, trackID)
}

func (s *Session) callbacks() timeline.Callbacks {
	return timeline.Callbacks{
		OnUpdateClip: func(trackID string, item timeline.Item) {
			s.record(s.repo.SaveItem(s.ctx, s.project.ID, trackID, item, s.itemPosition(trackID, item.ID)))
		},
		OnInsertClip: func(trackID string, item timeline.Item) {
			t, ok := s.engine.Timeline().Track(trackID)
			if !ok {
				return
			}
			s.record(s.repo.SaveTrack(s.ctx, s.project.ID, t, s.trackPosition(trackID)))
			s.record(s.repo.SaveItem(s.ctx, s.project.ID, trackID, item, s.itemPosition(trackID, item.ID)))
			s.record(s.repo.SaveTrackOrder(s.ctx, s.project.ID, t))
		},
		OnDeleteClip: func(trackID, itemID string) {
			s.record(s.repo.DeleteItem(s.ctx, s.project.ID, itemID))
			if s.selection.ItemID == itemID {
				s.selection = Selection{}
			}
			if s.transition.ItemID == itemID {
				s.transition = Selection{}
			}
		},
		OnMoveClip: func(itemID, src, dst string, _ float64) {
			it, ok := s.engine.Timeline().Item(dst, itemID)
			if !ok {
				return
			}
			s.record(s.repo.SaveItem(s.ctx, s.project.ID, dst, it, s.itemPosition(dst, itemID)))
			if s.selection.ItemID == itemID {
				s.selection.TrackID = dst
			}
			if s.resolve {
				s.dirty[dst] = true
			}
			if s.logger != nil {
				s.logger.Debug("item moved across tracks", "item_id", itemID, "from", src, "to", dst)
			}
		},
		OnClipDragEnd: func(trackID string) {
			if s.resolve {
				s.dirty[trackID] = true
			}
		},
		OnSelectClip: func(trackID, itemID string) {
			s.selection = Selection{TrackID: trackID, ItemID: itemID}
		},
		OnSelectTransition: func(trackID, itemID string) {
			s.transition = Selection{TrackID: trackID, ItemID: itemID}
		},
		OnSeek: func(t float64) {
			s.project.Playhead = s.transport.Seek(t)
			s.viewDirty = true
		},
		OnPlayPause: func() {
			s.transport.Toggle()
		},
		OnZoom: func(z float64) {
			s.project.Zoom = z
			s.viewDirty = true
		},
	}
}

// flush runs the work deferred until the engine call returned: rippling
// tracks a drag left overlapping and saving the view.
func (s *Session) flush() {
	ids := make([]string, 0, len(s.dirty))
	for id := range s.dirty {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	clear(s.dirty)

	tl := s.engine.Timeline()
	for _, id := range ids {
		t, ok := tl.Track(id)
		if !ok {
			continue
		}
		for _, it := range ResolveOverlaps(t) {
			s.record(tl.UpdateItem(id, it))
		}
	}

	if s.viewDirty {
		s.viewDirty = false
		s.record(s.repo.UpdateProjectView(s.ctx, s.project.ID, s.project.Zoom, s.project.Playhead))
	}
}

func (s *Session) record(err error) {
	if err == nil {
		return
	}
	if s.logger != nil {
		s.logger.Error("failed to persist timeline change", "error", err)
	}
	if s.err == nil {
		s.err = err
	}
}

func (s *Session) itemPosition(trackID, itemID string) int {
	t, ok := s.engine.Timeline().Track(trackID)
	if !ok {
		return 0
	}
	for i, it := range t.Items {
		if it.ID == itemID {
			return i
		}
	}
	return len(t.Items)
}

func (s *Session) trackPosition(trackID string) int {
	tracks := s.engine.Timeline().Tracks()
	for i, t := range tracks {
		if t.ID == trackID {
			return i
		}
	}
	return len(tracks)
}
