package timeline

// TimeToPixels converts seconds to pixels at the given zoom (px/sec).
func TimeToPixels(t, zoom float64) float64 {
	return t * zoom
}

// PixelsToTime converts pixels to seconds at the given zoom (px/sec).
func PixelsToTime(x, zoom float64) float64 {
	return x / zoom
}

// ClampZoom limits z to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// Zoom is the horizontal scale of the timeline in pixels per second.
type Zoom float64

func (z Zoom) Value() float64 {
	return float64(z)
}

// Set returns the zoom for an absolute value.
func (z Zoom) Set(v float64) Zoom {
	return Zoom(ClampZoom(v))
}

// Step returns the zoom after n wheel steps; negative n zooms out.
func (z Zoom) Step(n int) Zoom {
	return Zoom(ClampZoom(float64(z) + float64(n)*ZoomStep))
}

func (z Zoom) TimeToPixels(t float64) float64 {
	return TimeToPixels(t, float64(z))
}

func (z Zoom) PixelsToTime(x float64) float64 {
	return PixelsToTime(x, float64(z))
}
