package timeline

// Callbacks is the outward contract of the engine. Every field is optional.
// Callbacks run synchronously on the caller's goroutine, after the engine
// state has been updated.
type Callbacks struct {
	// OnUpdateClip receives the item verbatim after every committed change.
	OnUpdateClip func(trackID string, item Item)
	// OnInsertClip receives items the engine created (paste, duplicate,
	// split, drop, add).
	OnInsertClip func(trackID string, item Item)
	OnDeleteClip func(trackID, itemID string)
	// OnMoveClip fires after an item changed tracks at the end of a drag.
	OnMoveClip func(itemID, sourceTrackID, targetTrackID string, newStart float64)
	// OnClipDragEnd fires when a same-track drag is released. Overlaps left
	// by a free move are the receiver's to resolve.
	OnClipDragEnd func(trackID string)
	// OnSelectClip receives empty ids on deselect.
	OnSelectClip       func(trackID, itemID string)
	OnSelectTransition func(trackID, itemID string)
	OnSeek             func(t float64)
	OnPlayPause        func()
	OnZoom             func(zoom float64)
}

func (c Callbacks) updateClip(trackID string, item Item) {
	if c.OnUpdateClip != nil {
		c.OnUpdateClip(trackID, item.Clone())
	}
}

func (c Callbacks) insertClip(trackID string, item Item) {
	if c.OnInsertClip != nil {
		c.OnInsertClip(trackID, item.Clone())
	}
}

func (c Callbacks) deleteClip(trackID, itemID string) {
	if c.OnDeleteClip != nil {
		c.OnDeleteClip(trackID, itemID)
	}
}

func (c Callbacks) moveClip(itemID, src, dst string, start float64) {
	if c.OnMoveClip != nil {
		c.OnMoveClip(itemID, src, dst, start)
	}
}

func (c Callbacks) dragEnd(trackID string) {
	if c.OnClipDragEnd != nil {
		c.OnClipDragEnd(trackID)
	}
}

func (c Callbacks) selectClip(trackID, itemID string) {
	if c.OnSelectClip != nil {
		c.OnSelectClip(trackID, itemID)
	}
}

func (c Callbacks) selectTransition(trackID, itemID string) {
	if c.OnSelectTransition != nil {
		c.OnSelectTransition(trackID, itemID)
	}
}

func (c Callbacks) seek(t float64) {
	if c.OnSeek != nil {
		c.OnSeek(t)
	}
}

func (c Callbacks) playPause() {
	if c.OnPlayPause != nil {
		c.OnPlayPause()
	}
}

func (c Callbacks) zoom(z float64) {
	if c.OnZoom != nil {
		c.OnZoom(z)
	}
}
