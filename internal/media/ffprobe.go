package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// FFprobe inspects files with the ffprobe binary.
type FFprobe struct {
	path   string
	logger *slog.Logger
}

// NewFFprobe looks ffprobe up on PATH, falling back to the bare name.
func NewFFprobe(logger *slog.Logger) *FFprobe {
	path := "ffprobe"
	if p, err := exec.LookPath("ffprobe"); err == nil {
		path = p
	}
	return &FFprobe{path: path, logger: logger}
}

func (f *FFprobe) Available() bool {
	_, err := exec.LookPath(f.path)
	return err == nil
}

func (f *FFprobe) Probe(ctx context.Context, src string) (*ProbeResult, error) {
	cmd := exec.CommandContext(ctx, f.path,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		src,
	)
	out, err := cmd.Output()
	if err != nil {
		if f.logger != nil {
			f.logger.Debug("ffprobe failed", "src", src, "error", err)
		}
		return nil, fmt.Errorf("ffprobe %s: %w", src, err)
	}
	return parseFFprobe(out)
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AvgFrameRate string `json:"avg_frame_rate"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
	BitRate  string `json:"bit_rate"`
}

func parseFFprobe(out []byte) (*ProbeResult, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	r := &ProbeResult{}
	if d, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil && d > 0 {
		r.Duration = d
	}
	if br, err := strconv.ParseInt(probe.Format.BitRate, 10, 64); err == nil {
		r.Bitrate = br
	}

	for _, s := range probe.Streams {
		switch s.CodecType {
		case "video":
			if r.Codec == "" {
				r.Codec = s.CodecName
				r.Width = s.Width
				r.Height = s.Height
				r.FrameRate = parseRational(s.AvgFrameRate)
			}
		case "audio":
			if r.AudioCodec == "" {
				r.AudioCodec = s.CodecName
			}
		}
	}
	return r, nil
}

// parseRational reads ffprobe's "30000/1001" form.
func parseRational(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		v, _ := strconv.ParseFloat(s, 64)
		return v
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
