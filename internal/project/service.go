package project

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/heimdex/heimdex-timeline/internal/media"
	"github.com/heimdex/heimdex-timeline/internal/metrics"
	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

type Options struct {
	// Prober, when set, bounds trims of video items by their source length
	// and sizes newly added video items.
	Prober media.Prober
	// Metrics counts engine callbacks and open sessions. Optional.
	Metrics *metrics.Metrics
	// ResolveOverlaps ripples a track after a drag leaves items overlapping.
	ResolveOverlaps bool
	DefaultZoom     float64
	NewID           func() string
	Logger          *slog.Logger
}

// Service owns the open editing sessions. Each project has at most one.
type Service struct {
	repo Repository
	opts Options

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewService(repo Repository, opts Options) *Service {
	if opts.NewID == nil {
		opts.NewID = timeline.NewID
	}
	if opts.DefaultZoom == 0 {
		opts.DefaultZoom = timeline.DefaultZoom
	}
	opts.DefaultZoom = timeline.ClampZoom(opts.DefaultZoom)
	return &Service{repo: repo, opts: opts, sessions: make(map[string]*Session)}
}

// CreateProject stores a new project holding one empty video track.
func (s *Service) CreateProject(ctx context.Context, name string) (*Project, error) {
	p, err := s.newProject(ctx, name, 0, 0)
	if err != nil {
		return nil, err
	}
	track := &timeline.Track{ID: s.opts.NewID(), Type: timeline.TrackVideo, Name: "Video 1"}
	if err := s.repo.SaveTrack(ctx, p.ID, track, 0); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) newProject(ctx context.Context, name string, zoom, playhead float64) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Untitled"
	}
	if zoom == 0 {
		zoom = s.opts.DefaultZoom
	}
	now := time.Now().UTC().Truncate(time.Second)
	p := &Project{
		ID:        s.opts.NewID(),
		Name:      name,
		Zoom:      timeline.ClampZoom(zoom),
		Playhead:  max(0, playhead),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	if s.opts.Logger != nil {
		s.opts.Logger.Info("project created", "project_id", p.ID, "name", p.Name)
	}
	return p, nil
}

func (s *Service) ListProjects(ctx context.Context) ([]*Project, error) {
	return s.repo.ListProjects(ctx)
}

// GetProject prefers the live session copy, whose view may be newer than
// the stored row.
func (s *Service) GetProject(ctx context.Context, id string) (*Project, error) {
	if sess := s.session(id); sess != nil {
		sess.mu.Lock()
		p := sess.project
		sess.mu.Unlock()
		return &p, nil
	}
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}
	return p, nil
}

func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if _, err := s.GetProject(ctx, id); err != nil {
		return err
	}
	s.Close(id)
	return s.repo.DeleteProject(ctx, id)
}

// Open loads a project into a session, or returns the one already open.
func (s *Service) Open(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}

	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}
	tracks, err := s.repo.LoadTracks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load tracks: %w", err)
	}

	sess := newSession(*p, tracks, s)
	s.sessions[id] = sess
	if s.opts.Metrics != nil {
		s.opts.Metrics.SessionOpened()
	}
	if s.opts.Logger != nil {
		s.opts.Logger.Info("project opened", "project_id", id, "tracks", len(tracks))
	}
	return sess, nil
}

// Close drops a session. Its state is already persisted.
func (s *Service) Close(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return
	}
	delete(s.sessions, id)
	if s.opts.Metrics != nil {
		s.opts.Metrics.SessionClosed()
	}
}

func (s *Service) session(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

// Do runs fn against the project's session with exclusive access. Work the
// engine's callbacks deferred is done after fn returns. fn's error wins;
// otherwise the first persistence error is returned.
func (s *Service) Do(ctx context.Context, id string, fn func(*Session) error) error {
	sess, err := s.Open(ctx, id)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.ctx = ctx
	sess.err = nil
	defer func() { sess.ctx = context.Background() }()

	fnErr := fn(sess)
	sess.flush()
	if fnErr != nil {
		return fnErr
	}
	return sess.err
}

func (s *Service) Snapshot(ctx context.Context, id string) (*Snapshot, error) {
	var snap Snapshot
	err := s.Do(ctx, id, func(sess *Session) error {
		snap = sess.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Import stores a document as a new project.
func (s *Service) Import(ctx context.Context, doc *Document) (*Project, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	tracks := doc.tracksWithIDs(s.opts.NewID)

	p, err := s.newProject(ctx, doc.Name, doc.Zoom, doc.Playhead)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceTracks(ctx, p.ID, tracks); err != nil {
		if derr := s.repo.DeleteProject(ctx, p.ID); derr != nil && s.opts.Logger != nil {
			s.opts.Logger.Warn("failed to remove partial import", "project_id", p.ID, "error", derr)
		}
		return nil, fmt.Errorf("import tracks: %w", err)
	}
	return p, nil
}

// Export renders a project as a document.
func (s *Service) Export(ctx context.Context, id string) (*Document, error) {
	snap, err := s.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Document{
		Version:  DocumentVersion,
		Name:     snap.Project.Name,
		Zoom:     snap.Zoom,
		Playhead: snap.CurrentTime,
		Tracks:   snap.Tracks,
	}, nil
}
