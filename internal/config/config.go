// Package config provides configuration management for the timeline service.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

const (
	// Default values
	DefaultPort      = 8788
	DefaultLogLevel  = "info"
	DefaultDataDir   = ".heimdex-timeline"
	DefaultFrameRate = 30.0
	DefaultProber    = ProberNone

	// Environment variable names
	EnvPort            = "TIMELINE_PORT"
	EnvLogLevel        = "TIMELINE_LOG_LEVEL"
	EnvDataDir         = "TIMELINE_DATA_DIR"
	EnvDefaultZoom     = "TIMELINE_DEFAULT_ZOOM"
	EnvFrameRate       = "TIMELINE_EDL_FPS"
	EnvResolveOverlaps = "TIMELINE_RESOLVE_OVERLAPS"
	EnvMetrics         = "TIMELINE_METRICS"
	EnvProber          = "TIMELINE_PROBER"

	// Database filename
	DBFilename = "timeline.db"
)

// Media prober choices.
const (
	ProberNone    = "none"
	ProberFFprobe = "ffprobe"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	DefaultZoom() float64
	EDLFrameRate() float64
	ResolveOverlaps() bool
	MetricsEnabled() bool
	Prober() string
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port            int
	logLevel        string
	dataDir         string
	defaultZoom     float64
	frameRate       float64
	resolveOverlaps bool
	metrics         bool
	prober          string
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:            DefaultPort,
		logLevel:        DefaultLogLevel,
		dataDir:         defaultDataDir(),
		defaultZoom:     timeline.DefaultZoom,
		frameRate:       DefaultFrameRate,
		resolveOverlaps: true,
		metrics:         true,
		prober:          DefaultProber,
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if err := cfg.SetPort(port); err != nil {
			return nil, err
		}
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if z := os.Getenv(EnvDefaultZoom); z != "" {
		zoom, err := strconv.ParseFloat(z, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvDefaultZoom, err)
		}
		cfg.defaultZoom = timeline.ClampZoom(zoom)
	}

	if f := os.Getenv(EnvFrameRate); f != "" {
		fps, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvFrameRate, err)
		}
		if fps <= 0 {
			return nil, fmt.Errorf("invalid %s: frame rate must be positive", EnvFrameRate)
		}
		cfg.frameRate = fps
	}

	var err error
	if cfg.resolveOverlaps, err = envBool(EnvResolveOverlaps, cfg.resolveOverlaps); err != nil {
		return nil, err
	}
	if cfg.metrics, err = envBool(EnvMetrics, cfg.metrics); err != nil {
		return nil, err
	}

	if p := os.Getenv(EnvProber); p != "" {
		p = strings.ToLower(p)
		if p != ProberNone && p != ProberFFprobe {
			return nil, fmt.Errorf("invalid %s: want %q or %q", EnvProber, ProberNone, ProberFFprobe)
		}
		cfg.prober = p
	}

	return cfg, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

// SetPort overrides the port, e.g. from a command-line flag.
func (c *EnvConfig) SetPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
	}
	c.port = port
	return nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// DefaultZoom is the zoom new projects open at.
func (c *EnvConfig) DefaultZoom() float64 {
	return c.defaultZoom
}

func (c *EnvConfig) EDLFrameRate() float64 {
	return c.frameRate
}

// ResolveOverlaps reports whether overlaps left by a drag are rippled away
// when the drag ends.
func (c *EnvConfig) ResolveOverlaps() bool {
	return c.resolveOverlaps
}

func (c *EnvConfig) MetricsEnabled() bool {
	return c.metrics
}

// Prober names the media prober used to bound trims.
func (c *EnvConfig) Prober() string {
	return c.prober
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
