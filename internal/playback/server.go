package playback

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// MediaServer streams clip sources so a client can preview them with
// seeking.
type MediaServer struct {
	logger *slog.Logger
}

func NewMediaServer(logger *slog.Logger) *MediaServer {
	return &MediaServer{logger: logger}
}

// IsRemote reports whether src points at a URL rather than a local file.
func IsRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// ServeSource writes src to w, honoring a single byte range. Remote sources
// are redirected to.
func (s *MediaServer) ServeSource(w http.ResponseWriter, r *http.Request, src string) error {
	if IsRemote(src) {
		http.Redirect(w, r, src, http.StatusFound)
		return nil
	}

	f, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "source not found", http.StatusNotFound)
			return nil
		}
		return fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		http.Error(w, "source is a directory", http.StatusBadRequest)
		return nil
	}
	size := info.Size()

	ctype := mime.TypeByExtension(filepath.Ext(src))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", ctype)

	br, ranged, err := ParseByteRange(r.Header.Get("Range"), size)
	switch {
	case errors.Is(err, ErrUnsatisfiable):
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "range not satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	case err != nil || !ranged:
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, f); err != nil && s.logger != nil {
			s.logger.Debug("media copy interrupted", "error", err)
		}
		return nil
	}

	if _, err := f.Seek(br.First, io.SeekStart); err != nil {
		return fmt.Errorf("seek source: %w", err)
	}
	w.Header().Set("Content-Length", strconv.FormatInt(br.Length(), 10))
	w.Header().Set("Content-Range", br.Header(size))
	w.WriteHeader(http.StatusPartialContent)
	if _, err := io.CopyN(w, f, br.Length()); err != nil && s.logger != nil {
		s.logger.Debug("media copy interrupted", "error", err)
	}
	return nil
}
