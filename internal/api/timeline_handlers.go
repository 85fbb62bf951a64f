package api

import (
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/heimdex/heimdex-timeline/internal/logging"
	"github.com/heimdex/heimdex-timeline/internal/project"
	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

// defaultRulerTail is the ruler room, in seconds, drawn past the last item.
const defaultRulerTail = 10.0

// editFunc applies an edit inside a project's session and returns the
// response to send. A nil body sends the status alone; afterEdit sends the
// timeline as it stands once the session call has returned.
type editFunc func(r *http.Request, s *project.Session) (status int, body any, err error)

type snapshotMarker struct{}

var afterEdit = snapshotMarker{}

// editHandler runs fn under the session lock. The response is written only
// after deferred work and persistence have finished.
func editHandler(cfg ServerConfig, fn editFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var status int
		var body any
		err := cfg.Service.Do(r.Context(), id, func(s *project.Session) error {
			var err error
			status, body, err = fn(r, s)
			return err
		})
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}

		switch body.(type) {
		case nil:
			w.WriteHeader(status)
		case snapshotMarker:
			snap, err := cfg.Service.Snapshot(r.Context(), id)
			if err != nil {
				writeServiceError(w, cfg, err)
				return
			}
			WriteJSON(w, status, snap)
		default:
			WriteJSON(w, status, body)
		}
	}
}

func timelineHandler(cfg ServerConfig) http.HandlerFunc {
	return editHandler(cfg, func(r *http.Request, s *project.Session) (int, any, error) {
		return http.StatusOK, s.Snapshot(), nil
	})
}

func rulerHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tail := defaultRulerTail
		if v := r.URL.Query().Get("tail"); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
				WriteError(w, http.StatusBadRequest, "tail must be a finite non-negative number", "BAD_REQUEST")
				return
			}
			tail = f
		}
		editHandler(cfg, func(r *http.Request, s *project.Session) (int, any, error) {
			e := s.Engine()
			return http.StatusOK, RulerResponse{
				Zoom:      e.Zoom(),
				Duration:  e.Timeline().Duration(),
				PlayheadX: e.PlayheadX(),
				Ticks:     e.Ruler(tail),
			}, nil
		})(w, r)
	}
}

func transitionsHandler(cfg ServerConfig) http.HandlerFunc {
	return editHandler(cfg, func(r *http.Request, s *project.Session) (int, any, error) {
		points := s.Engine().Transitions()
		if points == nil {
			points = []timeline.TransitionPoint{}
		}
		return http.StatusOK, TransitionsResponse{Transitions: points}, nil
	})
}

func pointerDownHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PointerDownRequest
		if !decodeBody(w, r, &req, false) {
			return
		}
		if !req.Kind.Valid() {
			WriteError(w, http.StatusBadRequest, "kind must be move, resize-left, resize-right or scrub", "BAD_REQUEST")
			return
		}
		editHandler(cfg, func(r *http.Request, s *project.Session) (int, any, error) {
			s.Engine().PointerDown(timeline.PointerDown{
				Kind:    req.Kind,
				TrackID: req.TrackID,
				ItemID:  req.ItemID,
				X:       req.X,
				Bounds:  timeline.Bounds{MinStart: req.MinStart, MaxStart: req.MaxStart},
			})
			return http.StatusOK, afterEdit, nil
		})(w, r)
	}
}

func pointerMoveHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PointerMoveRequest
		if !decodeBody(w, r, &req, false) {
			return
		}
		editHandler(cfg, func(r *http.Request, s *project.Session) (int, any, error) {
			s.Engine().PointerMove(timeline.PointerMove{X: req.X, HoverTrackID: req.HoverTrackID})
			return http.StatusOK, afterEdit, nil
		})(w, r)
	}
}

func pointerUpHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PointerUpRequest
		if !decodeBody(w, r, &req, true) {
			return
		}
		editHandler(cfg, func(r *http.Request, s *project.Session) (int, any, error) {
			s.Engine().PointerUp(timeline.PointerUp{HoverTrackID: req.HoverTrackID})
			return http.StatusOK, afterEdit, nil
		})(w, r)
	}
}

func zoomHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ZoomRequest
		if !decodeBody(w, r, &req, false) {
			return
		}
		if req.Zoom == nil && req.Steps == 0 {
			WriteError(w, http.StatusBadRequest, "zoom or steps is required", "BAD_REQUEST")
			return
		}
		editHandler(cfg, func(r *http.Request, s *project.Session) (int, any, error) {
			e := s.Engine()
			if req.Zoom != nil {
				e.SetZoom(*req.Zoom)
			} else {
				e.StepZoom(req.Steps)
			}
			return http.StatusOK, ZoomResponse{Zoom: e.Zoom(), PlayheadX: e.PlayheadX()}, nil
		})(w, r)
	}
}

func playhead(s *project.Session) PlayheadResponse {
	return PlayheadResponse{
		CurrentTime: s.Engine().CurrentTime(),
		PlayheadX:   s.Engine().PlayheadX(),
		Playing:     s.Transport().State().Playing,
	}
}

func seekHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SeekRequest
		if !decodeBody(w, r, &req, false) {
			return
		}
		editHandler(cfg, func(r *http.Request, s *project.Session) (int, any, error) {
			s.Engine().Seek(req.Time)
			return http.StatusOK, playhead(s), nil
		})(w, r)
	}
}

func playPauseHandler(cfg ServerConfig) http.HandlerFunc {
	return editHandler(cfg, func(r *http.Request, s *project.Session) (int, any, error) {
		s.Engine().PlayPause()
		return http.StatusOK, playhead(s), nil
	})
}

func addItemHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req timeline.AddItemRequest
		if !decodeBody(w, r, &req, false) {
			return
		}
		editHandler(cfg, func(r *http.Request, s *project.Session) (int, any, error) {
			trackID, item, err := s.Engine().AddTrackItem(req)
			if err != nil {
				return 0, nil, err
			}
			return http.StatusCreated, ItemResponse{TrackID: trackID, Item: item}, nil
		})(w, r)
	}
}

func addTrackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddTrackRequest
		if !decodeBody(w, r, &req, false) {
			return
		}
		editHandler(cfg, func(r *http.Request, s *project.Session) (int, any, error) {
			t, err := s.AddTrack(req.Type, req.Name)
			if err != nil {
				return 0, nil, err
			}
			return http.StatusCreated, t, nil
		})(w, r)
	}
}

func removeTrackHandler(cfg ServerConfig) http.HandlerFunc {
	return editHandler(cfg, func(r *http.Request, s *project.Session) (int, any, error) {
		if err := s.RemoveTrack(chi.URLParam(r, "trackID")); err != nil {
			return 0, nil, err
		}
		return http.StatusNoContent, nil, nil
	})
}

func pasteHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TimeRequest
		if !decodeBody(w, r, &req, true) {
			return
		}
		editHandler(cfg, func(r *http.Request, s *project.Session) (int, any, error) {
			trackID := chi.URLParam(r, "trackID")
			at := s.Engine().CurrentTime()
			if req.Time != nil {
				at = *req.Time
			}
			item, err := s.Engine().Paste(trackID, at)
			if err != nil {
				return 0, nil, err
			}
			return http.StatusCreated, ItemResponse{TrackID: trackID, Item: item}, nil
		})(w, r)
	}
}

func dropHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DropRequest
		if !decodeBody(w, r, &req, false) {
			return
		}
		if !req.Item.Type.Valid() {
			WriteError(w, http.StatusBadRequest, "item type must be video, image, color or text", "BAD_REQUEST")
			return
		}
		editHandler(cfg, func(r *http.Request, s *project.Session) (int, any, error) {
			trackID := chi.URLParam(r, "trackID")
			item, err := s.Engine().DropClip(trackID, req.Time, req.Item)
			if err != nil {
				return 0, nil, err
			}
			return http.StatusCreated, ItemResponse{TrackID: trackID, Item: item}, nil
		})(w, r)
	}
}

func deleteItemHandler(cfg ServerConfig) http.HandlerFunc {
	return editHandler(cfg, func(r *http.Request, s *project.Session) (int, any, error) {
		if err := s.Engine().Delete(chi.URLParam(r, "trackID"), chi.URLParam(r, "itemID")); err != nil {
			return 0, nil, err
		}
		return http.StatusNoContent, nil, nil
	})
}

func copyHandler(cfg ServerConfig) http.HandlerFunc {
	return editHandler(cfg, func(r *http.Request, s *project.Session) (int, any, error) {
		if !s.Engine().Copy(chi.URLParam(r, "trackID"), chi.URLParam(r, "itemID")) {
			return 0, nil, timeline.ErrItemNotFound
		}
		return http.StatusNoContent, nil, nil
	})
}

func duplicateHandler(cfg ServerConfig) http.HandlerFunc {
	return editHandler(cfg, func(r *http.Request, s *project.Session) (int, any, error) {
		trackID := chi.URLParam(r, "trackID")
		item, err := s.Engine().Duplicate(trackID, chi.URLParam(r, "itemID"))
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, ItemResponse{TrackID: trackID, Item: item}, nil
	})
}

func toggleHandler(cfg ServerConfig, toggle func(*timeline.Engine, string, string) (timeline.Item, error)) http.HandlerFunc {
	return editHandler(cfg, func(r *http.Request, s *project.Session) (int, any, error) {
		trackID := chi.URLParam(r, "trackID")
		item, err := toggle(s.Engine(), trackID, chi.URLParam(r, "itemID"))
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, ItemResponse{TrackID: trackID, Item: item}, nil
	})
}

func splitHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TimeRequest
		if !decodeBody(w, r, &req, true) {
			return
		}
		editHandler(cfg, func(r *http.Request, s *project.Session) (int, any, error) {
			trackID, itemID := chi.URLParam(r, "trackID"), chi.URLParam(r, "itemID")
			var left, right timeline.Item
			var err error
			if req.Time != nil {
				left, right, err = s.Engine().Split(trackID, itemID, *req.Time)
			} else {
				left, right, err = s.Engine().SplitAtPlayhead(trackID, itemID)
			}
			if err != nil {
				return 0, nil, err
			}
			return http.StatusOK, SplitResponse{TrackID: trackID, Left: left, Right: right}, nil
		})(w, r)
	}
}

func selectHandler(cfg ServerConfig) http.HandlerFunc {
	return editHandler(cfg, func(r *http.Request, s *project.Session) (int, any, error) {
		trackID, itemID := chi.URLParam(r, "trackID"), chi.URLParam(r, "itemID")
		if _, ok := s.Engine().Timeline().Item(trackID, itemID); !ok {
			return 0, nil, timeline.ErrItemNotFound
		}
		s.Engine().Select(trackID, itemID)
		return http.StatusNoContent, nil, nil
	})
}

func setTransitionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tr timeline.Transition
		if !decodeBody(w, r, &tr, false) {
			return
		}
		editHandler(cfg, func(r *http.Request, s *project.Session) (int, any, error) {
			trackID, itemID := chi.URLParam(r, "trackID"), chi.URLParam(r, "itemID")
			if err := s.Engine().SetTransition(trackID, itemID, &tr); err != nil {
				return 0, nil, err
			}
			item, _ := s.Engine().Timeline().Item(trackID, itemID)
			return http.StatusOK, ItemResponse{TrackID: trackID, Item: item}, nil
		})(w, r)
	}
}

func activateTransitionHandler(cfg ServerConfig) http.HandlerFunc {
	return editHandler(cfg, func(r *http.Request, s *project.Session) (int, any, error) {
		trackID, itemID := chi.URLParam(r, "trackID"), chi.URLParam(r, "itemID")
		if _, ok := s.Engine().Timeline().Item(trackID, itemID); !ok {
			return 0, nil, timeline.ErrItemNotFound
		}
		s.Engine().ActivateTransition(trackID, itemID)
		return http.StatusNoContent, nil, nil
	})
}

func mediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item timeline.Item
		err := cfg.Service.Do(r.Context(), chi.URLParam(r, "id"), func(s *project.Session) error {
			it, ok := s.Engine().Timeline().Item(chi.URLParam(r, "trackID"), chi.URLParam(r, "itemID"))
			if !ok {
				return timeline.ErrItemNotFound
			}
			item = it
			return nil
		})
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		if item.Src == "" || item.Type == timeline.ItemColor || item.Type == timeline.ItemText {
			WriteError(w, http.StatusNotFound, "item has no media source", "NO_MEDIA")
			return
		}
		if cfg.Media == nil {
			WriteError(w, http.StatusServiceUnavailable, "media preview disabled", "UNAVAILABLE")
			return
		}
		if err := cfg.Media.ServeSource(w, r, item.Src); err != nil {
			cfg.Logger.Error("media preview error", "error", err, "item_id", item.ID, "src", logging.SanitizePath(item.Src))
		}
	}
}
