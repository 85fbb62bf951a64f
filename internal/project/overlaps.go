package project

import (
	"math"
	"sort"

	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

// ResolveOverlaps ripples a track so no item starts before an earlier item
// ends. Items are visited in start order and pushed right; locked items never
// move, and an unlocked item that would land on one is pushed past it. The
// returned items are the ones whose Start changed.
func ResolveOverlaps(t *timeline.Track) []timeline.Item {
	if t == nil || len(t.Items) < 2 {
		return nil
	}

	items := make([]timeline.Item, len(t.Items))
	copy(items, t.Items)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Start < items[j].Start
	})

	var locked []timeline.Item
	for _, it := range items {
		if it.IsLocked {
			locked = append(locked, it)
		}
	}

	var changed []timeline.Item
	end := 0.0
	for _, it := range items {
		if !it.IsLocked {
			start := math.Max(it.Start, end)
			for _, l := range locked {
				if start < l.End() && start+it.Duration > l.Start {
					start = l.End()
				}
			}
			if start != it.Start {
				it.Start = start
				changed = append(changed, it)
			}
		}
		end = math.Max(end, it.End())
	}
	return changed
}
