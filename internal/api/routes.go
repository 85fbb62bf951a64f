package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/heimdex/heimdex-timeline/internal/config"
	"github.com/heimdex/heimdex-timeline/internal/export"
	"github.com/heimdex/heimdex-timeline/internal/project"
	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

const (
	projectPath = "/projects/{id}"
	trackPath   = projectPath + "/tracks/{trackID}"
	itemPath    = trackPath + "/items/{itemID}"

	// maxDocumentBytes caps uploaded project documents.
	maxDocumentBytes = 8 << 20
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger, cfg.Metrics))
	r.Use(CORSAllowlist())

	r.Get("/health", healthHandler(cfg))
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	// Media elements cannot send a bearer token, so previews are limited
	// to this machine instead.
	r.Group(func(r chi.Router) {
		r.Use(LoopbackGuard())
		r.Get(itemPath+"/media", mediaHandler(cfg))
		r.Head(itemPath+"/media", mediaHandler(cfg))
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/projects", listProjectsHandler(cfg))
		r.Post("/projects", createProjectHandler(cfg))
		r.Post("/projects/import", importProjectHandler(cfg))

		r.Get(projectPath, getProjectHandler(cfg))
		r.Delete(projectPath, deleteProjectHandler(cfg))
		r.Get(projectPath+"/document", documentHandler(cfg))
		r.Post(projectPath+"/export/edl", exportEDLHandler(cfg))

		r.Get(projectPath+"/timeline", timelineHandler(cfg))
		r.Get(projectPath+"/ruler", rulerHandler(cfg))
		r.Get(projectPath+"/transitions", transitionsHandler(cfg))
		r.Post(projectPath+"/pointer/down", pointerDownHandler(cfg))
		r.Post(projectPath+"/pointer/move", pointerMoveHandler(cfg))
		r.Post(projectPath+"/pointer/up", pointerUpHandler(cfg))
		r.Post(projectPath+"/zoom", zoomHandler(cfg))
		r.Post(projectPath+"/seek", seekHandler(cfg))
		r.Post(projectPath+"/playpause", playPauseHandler(cfg))
		r.Post(projectPath+"/items", addItemHandler(cfg))

		r.Post(projectPath+"/tracks", addTrackHandler(cfg))
		r.Delete(trackPath, removeTrackHandler(cfg))
		r.Post(trackPath+"/paste", pasteHandler(cfg))
		r.Post(trackPath+"/drop", dropHandler(cfg))

		r.Delete(itemPath, deleteItemHandler(cfg))
		r.Post(itemPath+"/copy", copyHandler(cfg))
		r.Post(itemPath+"/duplicate", duplicateHandler(cfg))
		r.Post(itemPath+"/lock", toggleHandler(cfg, (*timeline.Engine).ToggleLock))
		r.Post(itemPath+"/detach", toggleHandler(cfg, (*timeline.Engine).ToggleDetach))
		r.Post(itemPath+"/split", splitHandler(cfg))
		r.Post(itemPath+"/select", selectHandler(cfg))
		r.Put(itemPath+"/transition", setTransitionHandler(cfg))
		r.Post(itemPath+"/transition/activate", activateTransitionHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  config.Version,
			UptimeS:  uptime,
			DeviceID: cfg.DeviceID,
		})
	}
}

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := cfg.Service.ListProjects(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list projects", "INTERNAL_ERROR")
			return
		}

		resp := ProjectsResponse{Projects: make([]ProjectResponse, len(projects))}
		for i, p := range projects {
			resp.Projects[i] = ProjectToResponse(p)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func createProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProjectRequest
		if !decodeBody(w, r, &req, true) {
			return
		}

		p, err := cfg.Service.CreateProject(r.Context(), req.Name)
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusCreated, ProjectToResponse(p))
	}
}

func importProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := project.DecodeDocument(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}

		p, err := cfg.Service.Import(r.Context(), doc)
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusCreated, ProjectToResponse(p))
	}
}

func getProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := cfg.Service.GetProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(p))
	}
}

func deleteProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Service.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func documentHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := cfg.Service.Export(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		if err := doc.Encode(w); err != nil {
			cfg.Logger.Error("failed to encode document", "error", err)
		}
	}
}

// decodeBody reads a JSON body into v. When optional is set an empty body
// leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
	return false
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, cfg ServerConfig, err error) {
	switch {
	case errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, timeline.ErrTrackNotFound),
		errors.Is(err, timeline.ErrItemNotFound):
		WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, timeline.ErrNoClipboard):
		WriteError(w, http.StatusConflict, err.Error(), "CLIPBOARD_EMPTY")
	case errors.Is(err, export.ErrNoEvents):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "NO_EVENTS")
	case errors.Is(err, project.ErrInvalidDocument),
		errors.Is(err, project.ErrInvalidItemKind),
		errors.Is(err, project.ErrInvalidTrack),
		errors.Is(err, timeline.ErrOutOfRange),
		errors.Is(err, timeline.ErrNotVideoTrack),
		errors.Is(err, timeline.ErrInvalidTiming),
		errors.Is(err, export.ErrInvalidOutputDir),
		errors.Is(err, export.ErrNotVideo),
		errors.Is(err, export.ErrNoVideoTrack):
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
	default:
		cfg.Logger.Error("request failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
	}
}
