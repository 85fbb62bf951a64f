package timeline

import "math"

// Bounds are optional neighbor boundaries for a bounded move. Ordinary
// drags leave both nil so clips can be reordered by crossing neighbors.
type Bounds struct {
	MinStart *float64 `json:"min_start,omitempty"`
	MaxStart *float64 `json:"max_start,omitempty"`
}

// SnapThreshold is the snap distance in seconds at the given zoom.
func SnapThreshold(zoom float64) float64 {
	return SnapThresholdPx / zoom
}

// ResolveSnap pulls start onto a supplied bound when it is closer than the
// snap threshold. The lower bound wins when both are in range.
func ResolveSnap(start float64, b Bounds, zoom float64) float64 {
	threshold := SnapThreshold(zoom)
	if b.MinStart != nil && math.Abs(start-*b.MinStart) < threshold {
		return *b.MinStart
	}
	if b.MaxStart != nil && math.Abs(start-*b.MaxStart) < threshold {
		return *b.MaxStart
	}
	return start
}
