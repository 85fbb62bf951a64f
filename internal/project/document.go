package project

import (
	"errors"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

const DocumentVersion = 1

var ErrInvalidDocument = errors.New("invalid project document")

// Document is the portable YAML form of a project.
type Document struct {
	Version  int               `yaml:"version"`
	Name     string            `yaml:"name"`
	Zoom     float64           `yaml:"zoom,omitempty"`
	Playhead float64           `yaml:"playhead,omitempty"`
	Tracks   []*timeline.Track `yaml:"tracks"`
}

// DecodeDocument reads and validates a document. Unknown fields are errors.
func DecodeDocument(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty", ErrInvalidDocument)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Encode writes the document as YAML.
func (d *Document) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}

func (d *Document) Validate() error {
	if d.Version != 0 && d.Version != DocumentVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidDocument, d.Version)
	}
	if !finite(d.Zoom, d.Playhead) {
		return fmt.Errorf("%w: zoom and playhead must be finite", ErrInvalidDocument)
	}

	trackIDs := make(map[string]bool)
	itemIDs := make(map[string]bool)
	for i, t := range d.Tracks {
		if t == nil {
			return fmt.Errorf("%w: track %d is empty", ErrInvalidDocument, i)
		}
		if !t.Type.Valid() {
			return fmt.Errorf("%w: track %d has type %q", ErrInvalidDocument, i, t.Type)
		}
		if t.ID != "" {
			if trackIDs[t.ID] {
				return fmt.Errorf("%w: duplicate track id %q", ErrInvalidDocument, t.ID)
			}
			trackIDs[t.ID] = true
		}
		for j, it := range t.Items {
			where := fmt.Sprintf("track %d item %d", i, j)
			if !it.Type.Valid() {
				return fmt.Errorf("%w: %s has type %q", ErrInvalidDocument, where, it.Type)
			}
			if !finite(it.Start, it.Duration, it.Offset) {
				return fmt.Errorf("%w: %s has a non-finite time", ErrInvalidDocument, where)
			}
			if it.Start < 0 || it.Offset < 0 {
				return fmt.Errorf("%w: %s has a negative start or offset", ErrInvalidDocument, where)
			}
			if it.Duration < timeline.MinDuration {
				return fmt.Errorf("%w: %s is shorter than %gs", ErrInvalidDocument, where, timeline.MinDuration)
			}
			if tr := it.Transition; tr.Active() {
				if tr.Timing != "" && !tr.Timing.Valid() {
					return fmt.Errorf("%w: %s has transition timing %q", ErrInvalidDocument, where, tr.Timing)
				}
				if !finite(tr.Duration) {
					return fmt.Errorf("%w: %s has a non-finite transition duration", ErrInvalidDocument, where)
				}
			}
			if it.ID != "" {
				if itemIDs[it.ID] {
					return fmt.Errorf("%w: duplicate item id %q", ErrInvalidDocument, it.ID)
				}
				itemIDs[it.ID] = true
			}
		}
	}
	return nil
}

// tracksWithIDs deep-copies the tracks, filling in missing ids.
func (d *Document) tracksWithIDs(newID func() string) []*timeline.Track {
	out := make([]*timeline.Track, len(d.Tracks))
	for i, t := range d.Tracks {
		c := t.Clone()
		if c.ID == "" {
			c.ID = newID()
		}
		for j := range c.Items {
			if c.Items[j].ID == "" {
				c.Items[j].ID = newID()
			}
		}
		out[i] = c
	}
	return out
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
