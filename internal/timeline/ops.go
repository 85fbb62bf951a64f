package timeline

import "math"

// AddItemRequest asks the host to create a new item of the given kind.
type AddItemRequest struct {
	Kind      ItemType `json:"kind"`
	Src       string   `json:"src,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"`
	Name      string   `json:"name,omitempty"`
}

// AddResult is what an ItemFactory hands back. NewTrack is set when the
// factory created the track the item belongs to.
type AddResult struct {
	TrackID  string
	NewTrack *Track
	Item     Item
}

// ItemFactory creates items on behalf of AddTrackItem. tracks is a snapshot
// of the current timeline.
type ItemFactory func(req AddItemRequest, tracks []*Track) (AddResult, error)

// Copy captures a snapshot of an item for a later Paste.
func (e *Engine) Copy(trackID, itemID string) bool {
	item, ok := e.tl.Item(trackID, itemID)
	if !ok {
		return false
	}
	e.clipboard = &item
	return true
}

// Clipboard returns the copied item, if any.
func (e *Engine) Clipboard() (Item, bool) {
	if e.clipboard == nil {
		return Item{}, false
	}
	return e.clipboard.Clone(), true
}

// Paste materializes the clipboard as a new item on trackID starting at at.
// The clipboard is kept so it can be pasted again.
func (e *Engine) Paste(trackID string, at float64) (Item, error) {
	if e.clipboard == nil {
		return Item{}, ErrNoClipboard
	}
	item := e.clipboard.Clone()
	item.ID = e.newID()
	item.Start = math.Max(0, at)
	if err := e.tl.InsertItem(trackID, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Duplicate places a copy of an item directly after it on the same track.
func (e *Engine) Duplicate(trackID, itemID string) (Item, error) {
	orig, ok := e.tl.Item(trackID, itemID)
	if !ok {
		return Item{}, ErrItemNotFound
	}
	item := orig.Clone()
	item.ID = e.newID()
	item.Start = orig.End()
	if err := e.tl.InsertItem(trackID, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// ToggleLock flips whether an item can be dragged.
func (e *Engine) ToggleLock(trackID, itemID string) (Item, error) {
	return e.toggle(trackID, itemID, func(it *Item) { it.IsLocked = !it.IsLocked })
}

// ToggleDetach flips the full-bleed background flag.
func (e *Engine) ToggleDetach(trackID, itemID string) (Item, error) {
	return e.toggle(trackID, itemID, func(it *Item) { it.IsBackground = !it.IsBackground })
}

func (e *Engine) toggle(trackID, itemID string, fn func(*Item)) (Item, error) {
	item, ok := e.tl.Item(trackID, itemID)
	if !ok {
		return Item{}, ErrItemNotFound
	}
	fn(&item)
	if err := e.tl.UpdateItem(trackID, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Delete removes an item permanently. If the item is being dragged the
// drag is dropped.
func (e *Engine) Delete(trackID, itemID string) error {
	if e.drag != nil && e.drag.ItemID == itemID {
		e.drag = nil
	}
	return e.tl.DeleteItem(trackID, itemID)
}

// Split cuts an item at time at.
func (e *Engine) Split(trackID, itemID string, at float64) (Item, Item, error) {
	return e.tl.SplitItemAtTime(trackID, itemID, at)
}

// SplitAtPlayhead cuts an item at the current playhead.
func (e *Engine) SplitAtPlayhead(trackID, itemID string) (Item, Item, error) {
	return e.Split(trackID, itemID, e.currentTime)
}

// AddTrackItem asks the factory for a new item and appends it.
func (e *Engine) AddTrackItem(req AddItemRequest) (string, Item, error) {
	if e.factory == nil {
		return "", Item{}, ErrNoFactory
	}
	res, err := e.factory(req, e.tl.Tracks())
	if err != nil {
		return "", Item{}, err
	}
	if res.NewTrack != nil {
		nt := res.NewTrack.Clone()
		nt.Items = nil
		e.tl.AddTrack(nt)
		if res.TrackID == "" {
			res.TrackID = nt.ID
		}
	}
	item := e.normalize(res.Item)
	if err := e.tl.InsertItem(res.TrackID, item); err != nil {
		return "", Item{}, err
	}
	return res.TrackID, item, nil
}

// DropClip inserts an item dragged in from outside the timeline at time t.
// The item always gets a fresh id; ids supplied by the caller are ignored.
func (e *Engine) DropClip(trackID string, t float64, item Item) (Item, error) {
	item.ID = ""
	item.Start = t
	item = e.normalize(item)
	if err := e.tl.InsertItem(trackID, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (e *Engine) normalize(item Item) Item {
	if _, _, taken := e.tl.Find(item.ID); item.ID == "" || taken {
		item.ID = e.newID()
	}
	item.Start = math.Max(0, finiteOr(item.Start, 0))
	item.Duration = math.Max(MinDuration, finiteOr(item.Duration, MinDuration))
	return item
}

func finiteOr(v, fallback float64) float64 {
	if isFinite(v) {
		return v
	}
	return fallback
}
