package project

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/heimdex/heimdex-timeline/internal/db"
	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

func openRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "timeline.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewRepository(database.Conn())
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

func newTestService(t *testing.T, opts Options) (*Service, *SQLiteRepository) {
	t.Helper()
	repo := openRepo(t)
	if opts.NewID == nil {
		opts.NewID = seqIDs()
	}
	return NewService(repo, opts), repo
}

// importYAML creates a project from an inline document.
func importYAML(t *testing.T, svc *Service, src string) *Project {
	t.Helper()
	doc, err := DecodeDocument(strings.NewReader(src))
	require.NoError(t, err)
	p, err := svc.Import(context.Background(), doc)
	require.NoError(t, err)
	return p
}

func storedItem(t *testing.T, repo Repository, projectID, trackID, itemID string) (timeline.Item, bool) {
	t.Helper()
	tracks, err := repo.LoadTracks(context.Background(), projectID)
	require.NoError(t, err)
	for _, tr := range tracks {
		if tr.ID != trackID {
			continue
		}
		for _, it := range tr.Items {
			if it.ID == itemID {
				return it, true
			}
		}
	}
	return timeline.Item{}, false
}

func itemIDs(tr *timeline.Track) []string {
	ids := make([]string, len(tr.Items))
	for i, it := range tr.Items {
		ids[i] = it.ID
	}
	return ids
}
