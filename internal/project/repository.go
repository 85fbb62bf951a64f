package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/heimdex/heimdex-timeline/internal/db"
	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

type Repository interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	DeleteProject(ctx context.Context, id string) error
	UpdateProjectView(ctx context.Context, id string, zoom, playhead float64) error

	SaveTrack(ctx context.Context, projectID string, t *timeline.Track, position int) error
	DeleteTrack(ctx context.Context, projectID, trackID string) error
	// SaveTrackOrder rewrites the position of every item on t to match
	// its order in t.Items.
	SaveTrackOrder(ctx context.Context, projectID string, t *timeline.Track) error
	LoadTracks(ctx context.Context, projectID string) ([]*timeline.Track, error)
	// ReplaceTracks swaps a project's whole timeline in one transaction.
	ReplaceTracks(ctx context.Context, projectID string, tracks []*timeline.Track) error

	SaveItem(ctx context.Context, projectID, trackID string, item timeline.Item, position int) error
	DeleteItem(ctx context.Context, projectID, itemID string) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateProject(ctx context.Context, p *Project) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, zoom, playhead, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Zoom, p.Playhead, p.CreatedAt.Format(time.RFC3339), p.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (*Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, zoom, playhead, created_at, updated_at
		FROM projects WHERE id = ?
	`, id)

	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*Project, error) {
	var p Project
	var createdAt, updatedAt string
	if err := row.Scan(&p.ID, &p.Name, &p.Zoom, &p.Playhead, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}

func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]*Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, zoom, playhead, created_at, updated_at
		FROM projects ORDER BY created_at DESC, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *SQLiteRepository) DeleteProject(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) UpdateProjectView(ctx context.Context, id string, zoom, playhead float64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE projects SET zoom = ?, playhead = ?, updated_at = ? WHERE id = ?
	`, zoom, playhead, time.Now().UTC().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) SaveTrack(ctx context.Context, projectID string, t *timeline.Track, position int) error {
	return saveTrack(ctx, r.db, projectID, t, position)
}

func saveTrack(ctx context.Context, ex execer, projectID string, t *timeline.Track, position int) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO tracks (project_id, id, type, name, position)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(project_id, id) DO UPDATE SET
			type = excluded.type,
			name = excluded.name,
			position = excluded.position
	`, projectID, t.ID, string(t.Type), t.Name, position)
	return err
}

func (r *SQLiteRepository) DeleteTrack(ctx context.Context, projectID, trackID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM tracks WHERE project_id = ? AND id = ?", projectID, trackID)
	return err
}

func (r *SQLiteRepository) SaveTrackOrder(ctx context.Context, projectID string, t *timeline.Track) error {
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for i, it := range t.Items {
			if _, err := tx.ExecContext(ctx, `
				UPDATE items SET track_id = ?, position = ? WHERE project_id = ? AND id = ?
			`, t.ID, i, projectID, it.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) LoadTracks(ctx context.Context, projectID string) ([]*timeline.Track, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, name FROM tracks WHERE project_id = ? ORDER BY position, id
	`, projectID)
	if err != nil {
		return nil, err
	}

	var tracks []*timeline.Track
	byID := make(map[string]*timeline.Track)
	for rows.Next() {
		var t timeline.Track
		var typ string
		if err := rows.Scan(&t.ID, &typ, &t.Name); err != nil {
			rows.Close()
			return nil, err
		}
		t.Type = timeline.TrackType(typ)
		tracks = append(tracks, &t)
		byID[t.ID] = &t
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := r.db.QueryContext(ctx, `
		SELECT track_id, id, type, start, duration, src_offset, src, thumbnail, name,
		       is_locked, is_background, animation, transition
		FROM items WHERE project_id = ? ORDER BY position, id
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer items.Close()

	for items.Next() {
		trackID, it, err := scanItem(items)
		if err != nil {
			return nil, err
		}
		if t, ok := byID[trackID]; ok {
			t.Items = append(t.Items, it)
		}
	}
	return tracks, items.Err()
}

func scanItem(row scanner) (string, timeline.Item, error) {
	var it timeline.Item
	var trackID, typ string
	var thumbnail, name, animation, transition sql.NullString
	var locked, background int

	err := row.Scan(&trackID, &it.ID, &typ, &it.Start, &it.Duration, &it.Offset, &it.Src,
		&thumbnail, &name, &locked, &background, &animation, &transition)
	if err != nil {
		return "", it, err
	}
	it.Type = timeline.ItemType(typ)
	it.Thumbnail = thumbnail.String
	it.Name = name.String
	it.IsLocked = locked == 1
	it.IsBackground = background == 1

	if animation.Valid {
		it.Animation = &timeline.Animation{}
		if err := json.Unmarshal([]byte(animation.String), it.Animation); err != nil {
			return "", it, fmt.Errorf("item %s animation: %w", it.ID, err)
		}
	}
	if transition.Valid {
		it.Transition = &timeline.Transition{}
		if err := json.Unmarshal([]byte(transition.String), it.Transition); err != nil {
			return "", it, fmt.Errorf("item %s transition: %w", it.ID, err)
		}
	}
	return trackID, it, nil
}

func (r *SQLiteRepository) ReplaceTracks(ctx context.Context, projectID string, tracks []*timeline.Track) error {
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM tracks WHERE project_id = ?", projectID); err != nil {
			return err
		}
		for ti, t := range tracks {
			if err := saveTrack(ctx, tx, projectID, t, ti); err != nil {
				return fmt.Errorf("track %s: %w", t.ID, err)
			}
			for ii, it := range t.Items {
				if err := saveItem(ctx, tx, projectID, t.ID, it, ii); err != nil {
					return fmt.Errorf("item %s: %w", it.ID, err)
				}
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) SaveItem(ctx context.Context, projectID, trackID string, item timeline.Item, position int) error {
	return saveItem(ctx, r.db, projectID, trackID, item, position)
}

func saveItem(ctx context.Context, ex execer, projectID, trackID string, it timeline.Item, position int) error {
	animation, err := nullJSON(it.Animation)
	if err != nil {
		return err
	}
	transition, err := nullJSON(it.Transition)
	if err != nil {
		return err
	}

	_, err = ex.ExecContext(ctx, `
		INSERT INTO items (project_id, track_id, id, type, start, duration, src_offset, src,
		                   thumbnail, name, is_locked, is_background, animation, transition, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, id) DO UPDATE SET
			track_id = excluded.track_id,
			type = excluded.type,
			start = excluded.start,
			duration = excluded.duration,
			src_offset = excluded.src_offset,
			src = excluded.src,
			thumbnail = excluded.thumbnail,
			name = excluded.name,
			is_locked = excluded.is_locked,
			is_background = excluded.is_background,
			animation = excluded.animation,
			transition = excluded.transition,
			position = excluded.position
	`, projectID, trackID, it.ID, string(it.Type), it.Start, it.Duration, it.Offset, it.Src,
		nullString(it.Thumbnail), nullString(it.Name), boolToInt(it.IsLocked), boolToInt(it.IsBackground),
		animation, transition, position)
	return err
}

func (r *SQLiteRepository) DeleteItem(ctx context.Context, projectID, itemID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM items WHERE project_id = ? AND id = ?", projectID, itemID)
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func nullJSON[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
