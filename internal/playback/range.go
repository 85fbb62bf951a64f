package playback

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidRange  = errors.New("invalid range format")
	ErrUnsatisfiable = errors.New("range not satisfiable")
)

// ByteRange is an inclusive span of a file.
type ByteRange struct {
	First int64
	Last  int64
}

func (b ByteRange) Length() int64 {
	return b.Last - b.First + 1
}

func (b ByteRange) Header(size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", b.First, b.Last, size)
}

// ParseByteRange reads a Range header against a file of the given size.
// ok is false when no range was requested. Only the first range of a
// multi-range request is honored.
func ParseByteRange(header string, size int64) (ByteRange, bool, error) {
	if header == "" {
		return ByteRange{}, false, nil
	}
	spec, found := strings.CutPrefix(header, "bytes=")
	if !found {
		return ByteRange{}, false, ErrInvalidRange
	}
	spec, _, _ = strings.Cut(spec, ",")
	first, last, found := strings.Cut(strings.TrimSpace(spec), "-")
	if !found {
		return ByteRange{}, false, ErrInvalidRange
	}

	var r ByteRange
	switch {
	case first == "":
		n, err := strconv.ParseInt(last, 10, 64)
		if err != nil || n <= 0 {
			return ByteRange{}, false, ErrInvalidRange
		}
		r = ByteRange{First: max(0, size-n), Last: size - 1}
	default:
		f, err := strconv.ParseInt(first, 10, 64)
		if err != nil || f < 0 {
			return ByteRange{}, false, ErrInvalidRange
		}
		r = ByteRange{First: f, Last: size - 1}
		if last != "" {
			l, err := strconv.ParseInt(last, 10, 64)
			if err != nil {
				return ByteRange{}, false, ErrInvalidRange
			}
			r.Last = min(l, size-1)
			if l < f {
				return ByteRange{}, false, ErrUnsatisfiable
			}
		}
	}

	if r.First >= size {
		return ByteRange{}, false, ErrUnsatisfiable
	}
	return r, true, nil
}
