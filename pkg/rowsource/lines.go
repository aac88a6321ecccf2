package rowsource

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// maxLineBytes bounds a single line; log files occasionally carry very long ones.
const maxLineBytes = 4 * 1024 * 1024

// ReadLines reads r to EOF and returns one row per line.
// LF and CRLF endings are both accepted; a trailing newline does not add an
// empty row.
func ReadLines(r io.Reader) (Lines, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines Lines
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}

	return lines, nil
}

// SplitLines is ReadLines over an in-memory buffer.
func SplitLines(content []byte) Lines {
	lines, err := ReadLines(bytes.NewReader(content))
	if err != nil {
		return splitLong(content)
	}
	return lines
}

// splitLong is the fallback for content holding a line longer than the
// scanner allows.
func splitLong(content []byte) Lines {
	text := strings.TrimSuffix(string(content), "\n")
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "\n")
	lines := make(Lines, len(parts))
	for i, p := range parts {
		lines[i] = strings.TrimSuffix(p, "\r")
	}
	return lines
}
