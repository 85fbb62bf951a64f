package timeline

import "math"

// Timeline owns the tracks of one edit and reports every mutation through
// its callbacks. It performs no invariant checks of its own; the drag
// controller and the clip operations keep items valid.
type Timeline struct {
	tracks []*Track
	cb     Callbacks
	newID  func() string
}

// NewTimeline builds a timeline over deep copies of tracks.
func NewTimeline(tracks []*Track, cb Callbacks, newID func() string) *Timeline {
	if newID == nil {
		newID = NewID
	}
	tl := &Timeline{cb: cb, newID: newID}
	for _, t := range tracks {
		if t != nil {
			tl.tracks = append(tl.tracks, t.Clone())
		}
	}
	return tl
}

// Tracks returns deep copies of all tracks in display order.
func (tl *Timeline) Tracks() []*Track {
	out := make([]*Track, len(tl.tracks))
	for i, t := range tl.tracks {
		out[i] = t.Clone()
	}
	return out
}

// Track returns a copy of the track with the given id.
func (tl *Timeline) Track(id string) (*Track, bool) {
	t := tl.track(id)
	if t == nil {
		return nil, false
	}
	return t.Clone(), true
}

func (tl *Timeline) track(id string) *Track {
	for _, t := range tl.tracks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Item returns a copy of an item on a track.
func (tl *Timeline) Item(trackID, itemID string) (Item, bool) {
	t := tl.track(trackID)
	if t == nil {
		return Item{}, false
	}
	i := t.indexOf(itemID)
	if i < 0 {
		return Item{}, false
	}
	return t.Items[i].Clone(), true
}

// Find locates an item on any track and returns its track id.
func (tl *Timeline) Find(itemID string) (string, Item, bool) {
	for _, t := range tl.tracks {
		if i := t.indexOf(itemID); i >= 0 {
			return t.ID, t.Items[i].Clone(), true
		}
	}
	return "", Item{}, false
}

// Duration is the end time of the last item on any track.
func (tl *Timeline) Duration() float64 {
	var end float64
	for _, t := range tl.tracks {
		for _, it := range t.Items {
			end = math.Max(end, it.End())
		}
	}
	return end
}

// AddTrack appends a track. Tracks are created by the host application;
// a duplicate id is ignored.
func (tl *Timeline) AddTrack(t *Track) bool {
	if t == nil || tl.track(t.ID) != nil {
		return false
	}
	tl.tracks = append(tl.tracks, t.Clone())
	return true
}

// RemoveTrack drops a track and all of its items.
func (tl *Timeline) RemoveTrack(id string) bool {
	for i, t := range tl.tracks {
		if t.ID == id {
			tl.tracks = append(tl.tracks[:i], tl.tracks[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateItem replaces the item with the same id on the named track.
func (tl *Timeline) UpdateItem(trackID string, item Item) error {
	t := tl.track(trackID)
	if t == nil {
		return ErrTrackNotFound
	}
	i := t.indexOf(item.ID)
	if i < 0 {
		return ErrItemNotFound
	}
	t.Items[i] = item.Clone()
	tl.cb.updateClip(trackID, item)
	return nil
}

// InsertItem appends a new item to a track.
func (tl *Timeline) InsertItem(trackID string, item Item) error {
	t := tl.track(trackID)
	if t == nil {
		return ErrTrackNotFound
	}
	t.Items = append(t.Items, item.Clone())
	tl.cb.insertClip(trackID, item)
	return nil
}

// DeleteItem removes an item. Deleting an absent item is a no-op.
func (tl *Timeline) DeleteItem(trackID, itemID string) error {
	t := tl.track(trackID)
	if t == nil {
		return ErrTrackNotFound
	}
	i := t.indexOf(itemID)
	if i < 0 {
		return ErrItemNotFound
	}
	t.Items = append(t.Items[:i], t.Items[i+1:]...)
	tl.cb.deleteClip(trackID, itemID)
	return nil
}

// MoveItemAcrossTracks transfers an item to the end of another track with a
// new start time.
func (tl *Timeline) MoveItemAcrossTracks(itemID, sourceTrackID, targetTrackID string, newStart float64) error {
	src := tl.track(sourceTrackID)
	dst := tl.track(targetTrackID)
	if src == nil || dst == nil {
		return ErrTrackNotFound
	}
	if src == dst {
		return nil
	}
	i := src.indexOf(itemID)
	if i < 0 {
		return ErrItemNotFound
	}

	item := src.Items[i]
	item.Start = math.Max(0, newStart)
	src.Items = append(src.Items[:i], src.Items[i+1:]...)
	dst.Items = append(dst.Items, item)

	tl.cb.moveClip(itemID, sourceTrackID, targetTrackID, item.Start)
	return nil
}

// SplitItemAtTime cuts an item in two at time t. The original is replaced
// by a left and a right piece with new ids, in the original's position.
func (tl *Timeline) SplitItemAtTime(trackID, itemID string, t float64) (Item, Item, error) {
	tr := tl.track(trackID)
	if tr == nil {
		return Item{}, Item{}, ErrTrackNotFound
	}
	i := tr.indexOf(itemID)
	if i < 0 {
		return Item{}, Item{}, ErrItemNotFound
	}

	left, right, err := splitItem(tr.Items[i], t)
	if err != nil {
		return Item{}, Item{}, err
	}
	left.ID = tl.newID()
	right.ID = tl.newID()

	items := make([]Item, 0, len(tr.Items)+1)
	items = append(items, tr.Items[:i]...)
	items = append(items, left, right)
	items = append(items, tr.Items[i+1:]...)
	tr.Items = items

	tl.cb.deleteClip(trackID, itemID)
	tl.cb.insertClip(trackID, left)
	tl.cb.insertClip(trackID, right)
	return left.Clone(), right.Clone(), nil
}

func splitItem(it Item, t float64) (Item, Item, error) {
	if t <= it.Start || t >= it.End() {
		return Item{}, Item{}, ErrOutOfRange
	}
	leftDur := t - it.Start
	rightDur := it.End() - t
	if leftDur < MinDuration || rightDur < MinDuration {
		return Item{}, Item{}, ErrOutOfRange
	}

	left := it.Clone()
	left.Duration = leftDur

	right := it.Clone()
	right.Start = t
	right.Duration = rightDur
	right.Offset = it.Offset + leftDur
	// the cut is a hard edit; the incoming transition stays on the left piece
	right.Transition = nil

	return left, right, nil
}
