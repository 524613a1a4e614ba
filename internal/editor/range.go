package editor

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Range is a half-open byte range [Start, End) of a document's text.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int { return r.End - r.Start }

func (r Range) String() string { return fmt.Sprintf("[%d,%d)", r.Start, r.End) }

// ParseRange converts a selection written for the command line into a
// byte range of text. Accepted forms, all 1-based:
//
//	N          line N without its line break
//	N-M        lines N through M without the final line break
//	L:C-L:C    from line:column up to, but excluding, line:column
//
// Columns count characters, not bytes.
func ParseRange(text, spec string) (Range, error) {
	spec = strings.TrimSpace(spec)
	lines := lineStarts(text)

	if strings.Contains(spec, ":") {
		from, to, ok := strings.Cut(spec, "-")
		if !ok {
			return Range{}, fmt.Errorf("invalid selection %q: want L:C-L:C", spec)
		}
		start, err := position(text, lines, from)
		if err != nil {
			return Range{}, fmt.Errorf("invalid selection %q: %w", spec, err)
		}
		end, err := position(text, lines, to)
		if err != nil {
			return Range{}, fmt.Errorf("invalid selection %q: %w", spec, err)
		}
		if end < start {
			return Range{}, fmt.Errorf("invalid selection %q: end before start", spec)
		}
		return Range{Start: start, End: end}, nil
	}

	from, to, isSpan := strings.Cut(spec, "-")
	first, err := lineNumber(from, len(lines))
	if err != nil {
		return Range{}, fmt.Errorf("invalid selection %q: %w", spec, err)
	}
	last := first
	if isSpan {
		if last, err = lineNumber(to, len(lines)); err != nil {
			return Range{}, fmt.Errorf("invalid selection %q: %w", spec, err)
		}
		if last < first {
			return Range{}, fmt.Errorf("invalid selection %q: end before start", spec)
		}
	}

	return Range{Start: lines[first-1], End: lineEnd(text, lines, last)}, nil
}

// lineStarts returns the byte offset of every line.
func lineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' && i+1 < len(text) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineEnd returns the offset of the line break ending line n (1-based).
func lineEnd(text string, starts []int, n int) int {
	end := len(text)
	if n < len(starts) {
		end = starts[n] - 1
	} else if strings.HasSuffix(text, "\n") {
		end--
	}
	if end > starts[n-1] && text[end-1] == '\r' {
		end--
	}
	return end
}

func lineNumber(s string, count int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("line %q is not a number", s)
	}
	if n < 1 || n > count {
		return 0, fmt.Errorf("line %d is outside the document (1-%d)", n, count)
	}
	return n, nil
}

func position(text string, starts []int, s string) (int, error) {
	l, c, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("position %q: want line:column", s)
	}
	line, err := lineNumber(l, len(starts))
	if err != nil {
		return 0, err
	}
	col, err := strconv.Atoi(c)
	if err != nil || col < 1 {
		return 0, fmt.Errorf("column %q is not a positive number", c)
	}

	offset := starts[line-1]
	end := lineEnd(text, starts, line)
	for i := 1; i < col; i++ {
		if offset >= end {
			return 0, fmt.Errorf("column %d is past the end of line %d", col, line)
		}
		_, size := utf8.DecodeRuneInString(text[offset:])
		offset += size
	}
	return offset, nil
}
