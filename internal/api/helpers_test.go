package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/heimdex/heimdex-timeline/internal/db"
	"github.com/heimdex/heimdex-timeline/internal/logging"
	"github.com/heimdex/heimdex-timeline/internal/metrics"
	"github.com/heimdex/heimdex-timeline/internal/playback"
	"github.com/heimdex/heimdex-timeline/internal/project"
)

const testToken = "test-token-123"

const twoClipsDoc = `
version: 1
name: Two clips
tracks:
  - id: v1
    type: video
    name: Video 1
    items:
      - {id: a, type: video, start: 0, duration: 4, src: a.mp4, name: A}
      - {id: b, type: video, start: 5, duration: 2, src: b.mp4, name: B}
  - id: o1
    type: overlay
    name: Overlay 1
    items:
      - {id: t, type: text, start: 0, duration: 2, name: Title}
`

type testEnv struct {
	cfg    ServerConfig
	repo   *project.SQLiteRepository
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "timeline.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	repo := project.NewRepository(database.Conn())
	require.NoError(t, repo.SetConfig(context.Background(), project.ConfigAuthToken, testToken))

	n := 0
	svc := project.NewService(repo, project.Options{
		ResolveOverlaps: true,
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})

	cfg := ServerConfig{
		Service:    svc,
		Repository: repo,
		Media:      playback.NewMediaServer(nil),
		Metrics:    metrics.New(),
		Logger:     logging.NewNop(),
		StartTime:  time.Now(),
		DeviceID:   "device-1",
		FrameRate:  30,
	}
	return &testEnv{cfg: cfg, repo: repo, router: NewRouter(cfg)}
}

// do sends an authenticated request. A string body is sent as-is, anything
// else is JSON-encoded.
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) importDoc(t *testing.T, doc string) string {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/projects/import", doc)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeAs[ProjectResponse](t, rr).ID
}

func decodeAs[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func decodeJSONBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	return decodeAs[map[string]interface{}](t, rr)
}

func findItem(t *testing.T, snap project.Snapshot, trackID, itemID string) (found bool, start float64) {
	t.Helper()
	for _, tr := range snap.Tracks {
		if tr.ID != trackID {
			continue
		}
		for _, it := range tr.Items {
			if it.ID == itemID {
				return true, it.Start
			}
		}
	}
	return false, 0
}
