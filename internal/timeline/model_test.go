package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeline_UpdateItemReplacesByID(t *testing.T) {
	rec := &recorder{}
	tl := NewTimeline([]*Track{videoTrack("v1", clip("a", 0, 2, 0), clip("b", 2, 2, 0))}, rec.callbacks(), nil)

	upd := clip("b", 3, 1, 0.5)
	require.NoError(t, tl.UpdateItem("v1", upd))

	got, ok := tl.Item("v1", "b")
	require.True(t, ok)
	assert.Equal(t, upd, got)
	assert.Equal(t, []Item{upd}, rec.updates)
}

func TestTimeline_UpdateItemMissing(t *testing.T) {
	rec := &recorder{}
	tl := NewTimeline([]*Track{videoTrack("v1")}, rec.callbacks(), nil)

	assert.ErrorIs(t, tl.UpdateItem("nope", clip("a", 0, 1, 0)), ErrTrackNotFound)
	assert.ErrorIs(t, tl.UpdateItem("v1", clip("a", 0, 1, 0)), ErrItemNotFound)
	assert.Empty(t, rec.updates)
}

func TestTimeline_DeleteItem(t *testing.T) {
	rec := &recorder{}
	tl := NewTimeline([]*Track{videoTrack("v1", clip("a", 0, 2, 0))}, rec.callbacks(), nil)

	require.NoError(t, tl.DeleteItem("v1", "a"))
	assert.ErrorIs(t, tl.DeleteItem("v1", "a"), ErrItemNotFound)

	v1, _ := tl.Track("v1")
	assert.Empty(t, v1.Items)
	assert.Equal(t, []string{"a"}, rec.deletes)
}

func TestTimeline_MoveItemAcrossTracks(t *testing.T) {
	rec := &recorder{}
	tl := NewTimeline([]*Track{
		videoTrack("v1", clip("a", 0, 2, 0)),
		videoTrack("v2", clip("b", 0, 2, 0)),
	}, rec.callbacks(), nil)

	require.NoError(t, tl.MoveItemAcrossTracks("a", "v1", "v2", 7))

	v2, _ := tl.Track("v2")
	require.Len(t, v2.Items, 2)
	assert.Equal(t, "a", v2.Items[1].ID)
	assert.Equal(t, 7.0, v2.Items[1].Start)

	trackID, _, ok := tl.Find("a")
	require.True(t, ok)
	assert.Equal(t, "v2", trackID)
}

func TestTimeline_MoveItemAcrossTracksNoOps(t *testing.T) {
	rec := &recorder{}
	tl := NewTimeline([]*Track{videoTrack("v1", clip("a", 0, 2, 0)), videoTrack("v2")}, rec.callbacks(), nil)

	assert.ErrorIs(t, tl.MoveItemAcrossTracks("a", "v1", "missing", 1), ErrTrackNotFound)
	assert.ErrorIs(t, tl.MoveItemAcrossTracks("zz", "v1", "v2", 1), ErrItemNotFound)
	assert.NoError(t, tl.MoveItemAcrossTracks("a", "v1", "v1", 1))
	assert.Empty(t, rec.moves)

	a, _ := tl.Item("v1", "a")
	assert.Equal(t, 0.0, a.Start)
}

func TestTimeline_SplitItemAtTime(t *testing.T) {
	rec := &recorder{}
	tl := NewTimeline([]*Track{videoTrack("v1", clip("x", 0, 1, 0), clip("a", 1, 4, 0), clip("y", 5, 1, 0))}, rec.callbacks(), seqIDs())

	left, right, err := tl.SplitItemAtTime("v1", "a", 2.5)
	require.NoError(t, err)

	assert.Equal(t, 1.0, left.Start)
	assert.Equal(t, 1.5, left.Duration)
	assert.Equal(t, 0.0, left.Offset)
	assert.Equal(t, 2.5, right.Start)
	assert.Equal(t, 2.5, right.Duration)
	assert.Equal(t, 1.5, right.Offset)

	v1, _ := tl.Track("v1")
	ids := make([]string, len(v1.Items))
	for i, it := range v1.Items {
		ids[i] = it.ID
	}
	assert.Equal(t, []string{"x", "gen-1", "gen-2", "y"}, ids)
	assert.Equal(t, []string{"a"}, rec.deletes)
	assert.Len(t, rec.inserts, 2)
}

func TestTimeline_SplitConservation(t *testing.T) {
	orig := clip("a", 1.25, 6.5, 2)
	for _, at := range []float64{1.75, 2, 3.3, 4.125, 6, 7.25} {
		tl := NewTimeline([]*Track{videoTrack("v1", orig)}, Callbacks{}, seqIDs())
		left, right, err := tl.SplitItemAtTime("v1", "a", at)
		require.NoError(t, err, "at=%v", at)

		assert.InDelta(t, orig.Duration, left.Duration+right.Duration, 1e-9)
		assert.InDelta(t, left.End(), right.Start, 1e-9)
		assert.InDelta(t, left.Offset+left.Duration, right.Offset, 1e-9)
		assert.Equal(t, orig.Start, left.Start)
		assert.InDelta(t, orig.End(), right.End(), 1e-9)
	}
}

func TestTimeline_SplitOutOfRange(t *testing.T) {
	rec := &recorder{}
	tl := NewTimeline([]*Track{videoTrack("v1", clip("a", 1, 4, 0))}, rec.callbacks(), seqIDs())

	for _, at := range []float64{0, 1, 1.2, 4.8, 5, 9} {
		_, _, err := tl.SplitItemAtTime("v1", "a", at)
		assert.ErrorIs(t, err, ErrOutOfRange, "at=%v", at)
	}
	_, _, err := tl.SplitItemAtTime("v1", "missing", 2)
	assert.ErrorIs(t, err, ErrItemNotFound)

	v1, _ := tl.Track("v1")
	require.Len(t, v1.Items, 1)
	assert.Equal(t, "a", v1.Items[0].ID)
	assert.Empty(t, rec.deletes)
}

func TestTimeline_SplitKeepsIncomingTransitionOnLeft(t *testing.T) {
	a := clip("a", 0, 4, 0)
	a.Transition = &Transition{Type: "fade", Duration: 1, Timing: TimingOverlap}
	tl := NewTimeline([]*Track{videoTrack("v1", a)}, Callbacks{}, seqIDs())

	left, right, err := tl.SplitItemAtTime("v1", "a", 2)
	require.NoError(t, err)
	assert.NotNil(t, left.Transition)
	assert.Nil(t, right.Transition)
}

func TestTimeline_SnapshotsAreIsolated(t *testing.T) {
	a := clip("a", 0, 4, 0)
	a.Animation = &Animation{Preset: "zoom-in", Params: map[string]any{"scale": 1.2}}
	tl := NewTimeline([]*Track{videoTrack("v1", a)}, Callbacks{}, nil)

	tracks := tl.Tracks()
	tracks[0].Items[0].Start = 99
	tracks[0].Items[0].Animation.Params["scale"] = 3.0

	got, _ := tl.Item("v1", "a")
	assert.Equal(t, 0.0, got.Start)
	assert.Equal(t, 1.2, got.Animation.Params["scale"])
}

func TestTimeline_TracksAddRemoveAndDuration(t *testing.T) {
	tl := NewTimeline(nil, Callbacks{}, nil)
	assert.Equal(t, 0.0, tl.Duration())

	assert.True(t, tl.AddTrack(videoTrack("v1", clip("a", 2, 3, 0))))
	assert.False(t, tl.AddTrack(videoTrack("v1")))
	assert.True(t, tl.AddTrack(&Track{ID: "a1", Type: TrackAudio, Items: []Item{{ID: "m", Start: 1, Duration: 9}}}))
	assert.Equal(t, 10.0, tl.Duration())

	assert.True(t, tl.RemoveTrack("a1"))
	assert.False(t, tl.RemoveTrack("a1"))
	assert.Equal(t, 5.0, tl.Duration())
}
