package timeline

import "errors"

var (
	ErrTrackNotFound = errors.New("track not found")
	ErrItemNotFound  = errors.New("item not found")

	// ErrOutOfRange is returned when a split time does not fall strictly
	// inside an item or would leave a piece shorter than MinDuration.
	ErrOutOfRange = errors.New("time out of range")

	ErrNotVideoTrack = errors.New("transitions apply to video tracks only")
	ErrInvalidTiming = errors.New("transition timing must be prefix, overlap or postfix")
	ErrNoClipboard   = errors.New("clipboard is empty")
	ErrNoFactory     = errors.New("no item factory configured")
)
