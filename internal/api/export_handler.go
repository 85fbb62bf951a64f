package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/heimdex/heimdex-timeline/internal/export"
)

func exportEDLHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req export.Request
		if !decodeBody(w, r, &req, false) {
			return
		}

		if req.Format != "" && strings.ToLower(req.Format) != "edl" {
			WriteError(w, http.StatusBadRequest, "format must be edl", "BAD_REQUEST")
			return
		}

		if err := export.ValidateOutputDir(req.OutputDir); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		frameRate := req.FrameRate
		if frameRate <= 0 {
			frameRate = cfg.FrameRate
		}

		snap, err := cfg.Service.Snapshot(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}

		res, err := export.Build(snap.Project.Name, snap.Tracks, req.TrackID, frameRate)
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}

		name := req.Filename
		if name == "" {
			name = snap.Project.Name
		}
		outputPath, err := export.WriteFile(req.OutputDir, name, res.EDL)
		if err != nil {
			cfg.Logger.Error("failed to write export file", "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to write export file", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, export.Response{
			Status:     "ok",
			Format:     "edl",
			OutputPath: outputPath,
			TrackID:    res.TrackID,
			EventCount: res.Events,
			Skipped:    res.Skipped,
		})
	}
}
