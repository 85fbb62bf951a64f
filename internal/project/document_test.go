package project

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

func TestDecodeDocument(t *testing.T) {
	doc, err := DecodeDocument(strings.NewReader(`
version: 1
name: Promo
zoom: 80
tracks:
  - id: v1
    type: video
    items:
      - id: a
        type: video
        start: 0
        duration: 3
        src: intro.mp4
        transition: {type: dissolve, duration: 0.5, timing: prefix}
        animation:
          preset: ken-burns
          params: {scale: 1.2}
  - type: overlay
    items:
      - {type: text, duration: 2, name: Title}
`))
	require.NoError(t, err)
	assert.Equal(t, "Promo", doc.Name)
	require.Len(t, doc.Tracks, 2)

	a := doc.Tracks[0].Items[0]
	assert.Equal(t, timeline.TimingPrefix, a.Transition.Timing)
	assert.Equal(t, "ken-burns", a.Animation.Preset)
	assert.Equal(t, 1.2, a.Animation.Params["scale"])

	tracks := doc.tracksWithIDs(seqIDs())
	assert.Equal(t, "gen-1", tracks[1].ID)
	assert.Equal(t, "gen-2", tracks[1].Items[0].ID)
	assert.Empty(t, doc.Tracks[1].ID)
}

func TestDecodeDocument_Invalid(t *testing.T) {
	tests := map[string]string{
		"empty":          ``,
		"unknown field":  "name: x\ncolour: red\n",
		"version":        "version: 7\nname: x\n",
		"track type":     "tracks:\n  - {id: t, type: subtitle}\n",
		"item type":      "tracks:\n  - {id: t, type: video, items: [{id: a, type: gif, duration: 1}]}\n",
		"short item":     "tracks:\n  - {id: t, type: video, items: [{id: a, type: video, duration: 0.2}]}\n",
		"negative start": "tracks:\n  - {id: t, type: video, items: [{id: a, type: video, start: -1, duration: 1}]}\n",
		"dup track":      "tracks:\n  - {id: t, type: video}\n  - {id: t, type: audio}\n",
		"nan start":      "tracks:\n  - {id: t, type: video, items: [{id: a, type: video, start: .nan, duration: 1}]}\n",
		"inf duration":   "tracks:\n  - {id: t, type: video, items: [{id: a, type: video, duration: .inf}]}\n",
		"nan duration":   "tracks:\n  - {id: t, type: video, items: [{id: a, type: video, duration: .nan}]}\n",
		"inf offset":     "tracks:\n  - {id: t, type: video, items: [{id: a, type: video, duration: 1, offset: .inf}]}\n",
		"inf zoom":       "zoom: .inf\n",
		"nan playhead":   "playhead: .nan\n",
		"bad timing": "tracks:\n  - {id: t, type: video, items: [{id: a, type: video, duration: 1, " +
			"transition: {type: fade, duration: 1, timing: sideways}}]}\n",
		"nan transition": "tracks:\n  - {id: t, type: video, items: [{id: a, type: video, duration: 1, " +
			"transition: {type: fade, duration: .nan}}]}\n",
		"dup item": "tracks:\n  - {id: t, type: video, items: [{id: a, type: video, duration: 1}]}\n" +
			"  - {id: u, type: video, items: [{id: a, type: video, duration: 1}]}\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeDocument(strings.NewReader(src))
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestDocument_EncodeDecode(t *testing.T) {
	doc := &Document{
		Version: DocumentVersion,
		Name:    "Out",
		Zoom:    40,
		Tracks: []*timeline.Track{{
			ID: "v1", Type: timeline.TrackVideo, Name: "Video 1",
			Items: []timeline.Item{{ID: "a", Type: timeline.ItemVideo, Start: 1, Duration: 2, Offset: 0.5, Src: "a.mp4"}},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, doc.Encode(&buf))
	assert.Contains(t, buf.String(), "name: Out")

	back, err := DecodeDocument(&buf)
	require.NoError(t, err)
	assert.Equal(t, doc, back)
}

func TestResolveOverlaps(t *testing.T) {
	tests := []struct {
		name  string
		items []timeline.Item
		want  map[string]float64
	}{
		{
			name:  "no overlap",
			items: []timeline.Item{{ID: "a", Start: 0, Duration: 2}, {ID: "b", Start: 2, Duration: 1}},
			want:  map[string]float64{},
		},
		{
			name:  "pushed to end",
			items: []timeline.Item{{ID: "a", Start: 0, Duration: 4}, {ID: "b", Start: 2, Duration: 2}},
			want:  map[string]float64{"b": 4},
		},
		{
			name: "ripples",
			items: []timeline.Item{
				{ID: "c", Start: 5, Duration: 1},
				{ID: "a", Start: 0, Duration: 4},
				{ID: "b", Start: 3, Duration: 2},
			},
			want: map[string]float64{"b": 4, "c": 6},
		},
		{
			name:  "contained",
			items: []timeline.Item{{ID: "a", Start: 0, Duration: 10}, {ID: "b", Start: 2, Duration: 1}, {ID: "c", Start: 12, Duration: 1}},
			want:  map[string]float64{"b": 10},
		},
		{
			name:  "locked item stays put",
			items: []timeline.Item{{ID: "a", Start: 4, Duration: 3}, {ID: "b", Start: 5, Duration: 3, IsLocked: true}},
			want:  map[string]float64{"a": 8},
		},
		{
			name: "pushed past consecutive locked items",
			items: []timeline.Item{
				{ID: "x", Start: 0, Duration: 2, IsLocked: true},
				{ID: "a", Start: 1, Duration: 2},
				{ID: "y", Start: 3, Duration: 1, IsLocked: true},
				{ID: "c", Start: 4, Duration: 1},
			},
			want: map[string]float64{"a": 4, "c": 6},
		},
		{
			name:  "fits before locked item",
			items: []timeline.Item{{ID: "a", Start: 0, Duration: 2}, {ID: "b", Start: 1, Duration: 1}, {ID: "l", Start: 5, Duration: 1, IsLocked: true}},
			want:  map[string]float64{"b": 2},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := map[string]float64{}
			for _, it := range ResolveOverlaps(&timeline.Track{ID: "v1", Items: tc.items}) {
				got[it.ID] = it.Start
			}
			assert.Equal(t, tc.want, got)
		})
	}
	assert.Nil(t, ResolveOverlaps(nil))
}
