package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

var ErrInvalidOutputDir = errors.New("invalid output_dir")

// nameMarks are the punctuation runes an EDL file name may keep.
const nameMarks = " -_.,()"

// SanitizeName turns a project or track name into something safe to use as a
// file name: control characters are dropped, letters, digits and nameMarks
// are kept, everything else becomes '_'. maxLen counts runes; 0 means no limit.
func SanitizeName(s string, maxLen int) string {
	cleaned := strings.TrimSpace(strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r):
			return -1
		case unicode.IsLetter(r), unicode.IsDigit(r), strings.ContainsRune(nameMarks, r):
			return r
		default:
			return '_'
		}
	}, s))

	if runes := []rune(cleaned); maxLen > 0 && len(runes) > maxLen {
		cleaned = strings.TrimSpace(string(runes[:maxLen]))
	}
	return cleaned
}

// ValidateOutputDir accepts only a clean path to an existing directory.
func ValidateOutputDir(dir string) error {
	switch {
	case strings.TrimSpace(dir) == "":
		return fmt.Errorf("%w: required", ErrInvalidOutputDir)
	case slices.Contains(strings.Split(filepath.ToSlash(dir), "/"), ".."):
		return fmt.Errorf("%w: path traversal", ErrInvalidOutputDir)
	case filepath.Clean(dir) != dir:
		return fmt.Errorf("%w: not a clean path", ErrInvalidOutputDir)
	}

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: does not exist", ErrInvalidOutputDir)
	case err != nil:
		return fmt.Errorf("%w: %v", ErrInvalidOutputDir, err)
	case !info.IsDir():
		return fmt.Errorf("%w: not a directory", ErrInvalidOutputDir)
	}
	return nil
}
