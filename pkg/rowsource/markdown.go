package rowsource

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ParseMarkdown splits CommonMark content into one row per top-level block.
//
// A row runs from the first source line of its block up to the first line
// of the next block, with trailing blank lines removed. Blocks that carry no
// source position (thematic breaks, empty headings) are folded into the
// preceding row.
func ParseMarkdown(content []byte) Blocks {
	if len(strings.TrimSpace(string(content))) == 0 {
		return nil
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(content))
	lineStarts := buildLineStarts(content)

	var starts []int
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		offset := blockStart(node, content)
		if offset < 0 {
			continue
		}
		offset = snapToLineStart(lineStarts, offset)
		if len(starts) > 0 && starts[len(starts)-1] >= offset {
			continue
		}
		starts = append(starts, offset)
	}

	if len(starts) == 0 {
		return Blocks{strings.TrimRight(string(content), " \t\r\n")}
	}
	// Leading content without a position (a document opening with a
	// thematic break) belongs to the first row.
	starts[0] = 0

	blocks := make(Blocks, 0, len(starts))
	for i, start := range starts {
		end := len(content)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		row := strings.TrimRight(string(content[start:end]), " \t\r\n")
		blocks = append(blocks, strings.TrimLeft(row, "\r\n"))
	}

	return blocks
}

// blockStart returns the byte offset of the first source character of a
// block, or -1 when goldmark recorded no position for it.
func blockStart(node ast.Node, content []byte) int {
	if fenced, ok := node.(*ast.FencedCodeBlock); ok {
		if fenced.Info != nil {
			return fenced.Info.Segment.Start
		}
		if fenced.Lines().Len() > 0 {
			// The opening fence is the line before the first content line.
			return previousLineStart(content, fenced.Lines().At(0).Start)
		}
		return -1
	}

	if lines := node.Lines(); lines != nil && lines.Len() > 0 {
		return lines.At(0).Start
	}

	// Containers (lists, block quotes) start where their first block child does.
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		if child.Type() != ast.TypeBlock {
			continue
		}
		if offset := blockStart(child, content); offset >= 0 {
			return offset
		}
	}

	return -1
}

func buildLineStarts(content []byte) []int {
	starts := []int{0}
	for i, c := range content {
		if c == '\n' && i+1 < len(content) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// snapToLineStart moves offset back to the start of the line containing it.
func snapToLineStart(lineStarts []int, offset int) int {
	idx := sort.Search(len(lineStarts), func(i int) bool {
		return lineStarts[i] > offset
	})
	if idx == 0 {
		return 0
	}
	return lineStarts[idx-1]
}

// previousLineStart returns the start of the line before the one holding offset.
func previousLineStart(content []byte, offset int) int {
	lineStart := offset
	for lineStart > 0 && content[lineStart-1] != '\n' {
		lineStart--
	}
	if lineStart == 0 {
		return 0
	}
	prev := lineStart - 1
	for prev > 0 && content[prev-1] != '\n' {
		prev--
	}
	return prev
}
