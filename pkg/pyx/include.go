package pyx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Includer resolves $expand directives depth-first, folding every included
// file into one flat Lines sequence while preserving each line's original
// (file, lineno) coordinates. It mirrors the teacher's IncludeResolver
// (pkg/cpp/include.go) cut down to the dialect's single relative-path form:
// there is no -I/-isystem search list and no #pragma once, only a
// process-wide visited set that silently terminates cycles.
type Includer struct {
	visited map[string]bool
	Warn    func(msg string) // optional; receives FileMissing warnings
}

// NewIncluder creates an Includer with a fresh, empty visited set. The
// visited set is shared across the whole top-level expansion, per spec:
// diamond includes of the same file contribute their content only once.
func NewIncluder() *Includer {
	return &Includer{visited: make(map[string]bool)}
}

func (inc *Includer) warn(format string, args ...any) {
	if inc.Warn != nil {
		inc.Warn(fmt.Sprintf(format, args...))
	}
}

// ExpandFiles reads path and recursively inlines every $expand target found
// in it, returning the flattened line sequence. A path already in the
// visited set contributes zero lines (cycle-safe, not an error).
func (inc *Includer) ExpandFiles(path string) (Lines, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if inc.visited[abs] {
		return nil, nil
	}
	inc.visited[abs] = true

	raw, err := LoadFile(path)
	if err != nil {
		inc.warn("%s", (&FileMissingError{Path: path, Err: err}).Error())
		return nil, nil
	}

	baseDir := filepath.Dir(abs)
	var out Lines
	for _, sl := range raw {
		trimmed := strings.TrimSpace(sl.Content)
		if !strings.HasPrefix(trimmed, "$expand") {
			out = append(out, sl)
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) < 2 {
			// Malformed $expand (no argument): silently ignored, per spec.
			continue
		}
		target := filepath.Join(baseDir, fields[1])
		included, err := inc.ExpandFiles(target)
		if err != nil {
			return nil, err
		}
		out = append(out, included...)
	}
	return out, nil
}

// ExpandFilesTopLevel is a convenience wrapper for the CLI entry point: the
// top-level input file must exist, unlike a transitively-included one. warn,
// if non-nil, receives a message for every missing $expand target found
// along the way (§7's FileMissing kind); pass nil to discard them.
func ExpandFilesTopLevel(path string, warn func(string)) (Lines, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("main file not found: %s", path)
	}
	inc := NewIncluder()
	inc.Warn = warn
	return inc.ExpandFiles(path)
}
