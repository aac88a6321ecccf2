// Package rowsource turns files into lists of rows and measures how tall each
// row renders. It supplies the content side of a virtualized list: the
// calculator only ever sees row indices and heights.
package rowsource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptySource is returned when a file yields no rows.
var ErrEmptySource = errors.New("rowsource: source has no rows")

// Source is an ordered, fixed-length list of rows.
type Source interface {
	// Len returns the number of rows.
	Len() int
	// Row returns the text of row i (0 <= i < Len()).
	Row(i int) string
}

// Kind selects how a file is split into rows.
type Kind string

const (
	// KindText splits on newlines: one row per line.
	KindText Kind = "text"
	// KindMarkdown splits on top-level Markdown blocks: one row per block.
	KindMarkdown Kind = "markdown"
)

// KindForPath infers the row kind from a file extension.
func KindForPath(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return KindMarkdown
	default:
		return KindText
	}
}

// Lines is a Source with one row per text line.
type Lines []string

// Len implements Source.
func (l Lines) Len() int { return len(l) }

// Row implements Source.
func (l Lines) Row(i int) string { return l[i] }

// Blocks is a Source with one row per top-level Markdown block.
type Blocks []string

// Len implements Source.
func (b Blocks) Len() int { return len(b) }

// Row implements Source.
func (b Blocks) Row(i int) string { return b[i] }

// Load reads path and splits it according to KindForPath.
// A file with no rows returns ErrEmptySource.
//
//nolint:ireturn // Callers choose behavior by Kind, not by concrete type.
func Load(path string) (Source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var src Source
	switch KindForPath(path) {
	case KindMarkdown:
		src = ParseMarkdown(content)
	default:
		src = SplitLines(content)
	}

	if src.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptySource)
	}

	return src, nil
}
