package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/heimdex/heimdex-timeline/internal/metrics"
	"github.com/heimdex/heimdex-timeline/internal/project"
)

// MediaServer streams an item's source for preview.
type MediaServer interface {
	ServeSource(w http.ResponseWriter, r *http.Request, src string) error
}

// ConfigStore holds the bearer token checked by AuthMiddleware.
type ConfigStore interface {
	GetConfig(ctx context.Context, key string) (string, error)
}

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type ServerConfig struct {
	Port       int
	Service    *project.Service
	Repository ConfigStore
	Media      MediaServer
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	StartTime  time.Time
	DeviceID   string
	// FrameRate is the EDL frame rate used when a request names none.
	FrameRate float64
}

const (
	readTimeout = 15 * time.Second
	idleTimeout = 60 * time.Second
)

// NewServer binds the router to the loopback interface. Writes are not
// time-limited so media previews can stream.
func NewServer(cfg ServerConfig) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("127.0.0.1:%d", cfg.Port),
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: readTimeout,
			ReadTimeout:       readTimeout,
			IdleTimeout:       idleTimeout,
		},
		logger: cfg.Logger,
	}
}

// Start serves until Shutdown. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("timeline API listening", "addr", s.Addr())
	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("stopping timeline API")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
