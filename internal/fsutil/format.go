// Package fsutil provides the filesystem helpers simplepipe needs: deriving a
// metric file's format from its path and writing files atomically.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies the serialization of a metric file.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// suffixes maps file suffixes to formats. Matching is case-sensitive.
var suffixes = map[string]Format{
	".json": FormatJSON,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
}

// ErrPathNotFound is returned when the path handed to DetectFormat does not exist.
var ErrPathNotFound = errors.New("fsutil: path not found")

// ErrUnsupportedFormat matches any *UnsupportedFormatError.
var ErrUnsupportedFormat = errors.New("fsutil: unsupported format")

// UnsupportedFormatError reports a file suffix or format value that has no parser.
type UnsupportedFormatError struct {
	// Suffix is the offending file suffix or format name. Empty when the
	// path has no suffix.
	Suffix string
}

// Error returns the formatted error string.
func (e *UnsupportedFormatError) Error() string {
	if e.Suffix == "" {
		return "fsutil: unsupported format: path has no suffix"
	}
	return fmt.Sprintf("fsutil: unsupported format %q", e.Suffix)
}

// Is supports errors.Is matching against ErrUnsupportedFormat.
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// Valid reports whether f is a supported format.
func (f Format) Valid() bool {
	return f == FormatJSON || f == FormatYAML
}

// suffix returns the extension of the last path element. Leading dots are
// part of the name, so ".json" and "..json" have no suffix.
func suffix(path string) string {
	return filepath.Ext(strings.TrimLeft(filepath.Base(path), "."))
}

// DetectFormat derives the format of the file at path from its suffix.
// The path must exist; the file content is never inspected.
func DetectFormat(path string) (Format, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("fsutil: detect format of %s: %w", path, ErrPathNotFound)
		}
		return "", fmt.Errorf("fsutil: detect format of %s: %w", path, err)
	}

	ext := suffix(path)
	if f, ok := suffixes[ext]; ok {
		return f, nil
	}
	return "", &UnsupportedFormatError{Suffix: ext}
}
