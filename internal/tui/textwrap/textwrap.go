// ABOUTME: Display-width measurement and wrapping for chat content and the input buffer
// ABOUTME: Splits text into byte-range segments that never cut a multi-column glyph
package textwrap

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// cond pins East-Asian ambiguous characters to one column so layout does not
// depend on the user's locale variables.
var cond = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	return c
}()

// Segment is one display line expressed as a byte range [Start, End) of the
// source text. Newline is set when the segment was closed by an explicit '\n'
// at byte End, which belongs to neither segment.
type Segment struct {
	Start   int
	End     int
	Newline bool
}

// Text returns the segment's slice of s.
func (seg Segment) Text(s string) string {
	return s[seg.Start:seg.End]
}

// Line is a wrapped line with its prefix kept apart so callers can style each.
type Line struct {
	Prefix  string
	Content string
}

// String joins prefix and content.
func (l Line) String() string {
	return l.Prefix + l.Content
}

// TabWidth is how many spaces a tab expands to, matching lipgloss rendering.
const TabWidth = 4

var tabSpaces = strings.Repeat(" ", TabWidth)

func unsafeRune(r rune) bool {
	return r != '\n' && unicode.IsControl(r)
}

// Sanitize makes text safe to measure and draw. Invalid UTF-8 becomes U+FFFD
// and terminal escape sequences are removed. Tabs then expand to TabWidth
// spaces and carriage returns are dropped. Any remaining control character
// becomes U+FFFD. Newlines are kept.
func Sanitize(s string) string {
	if utf8.ValidString(s) && strings.IndexFunc(s, unsafeRune) < 0 {
		return s
	}

	s = ansi.Strip(strings.ToValidUTF8(s, string(utf8.RuneError)))

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\t':
			sb.WriteString(tabSpaces)
		case r == '\r':
		case unsafeRune(r):
			sb.WriteRune(utf8.RuneError)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// RuneWidth returns the terminal cell width of r: 0, 1 or 2.
func RuneWidth(r rune) int {
	return cond.RuneWidth(r)
}

// Width returns the display width of s.
func Width(s string) int {
	w := 0
	for _, r := range s {
		w += RuneWidth(r)
	}
	return w
}

// Truncate shortens s to at most w columns, ending in an ellipsis when cut.
func Truncate(s string, w int) string {
	if w < 1 {
		return ""
	}
	return cond.Truncate(s, w, "…")
}

// SplitIntoDisplayLines cuts text into segments no wider than maxWidth columns.
// Explicit newlines always close a segment and are consumed. Width breaks
// happen before the character that would overflow, and only when the current
// segment already holds something, so a glyph wider than maxWidth sits alone
// on its own line instead of producing an empty one.
func SplitIntoDisplayLines(text string, maxWidth int) []Segment {
	if maxWidth < 1 {
		maxWidth = 1
	}

	segments := make([]Segment, 0, len(text)/maxWidth+1)
	start, width := 0, 0

	for i, r := range text {
		if r == '\n' {
			segments = append(segments, Segment{Start: start, End: i, Newline: true})
			start = i + 1
			width = 0
			continue
		}

		w := RuneWidth(r)
		if width+w > maxWidth && i > start {
			segments = append(segments, Segment{Start: start, End: i})
			start = i
			width = 0
		}
		width += w
	}

	return append(segments, Segment{Start: start, End: len(text)})
}

// WrapWithLinePrefix wraps text so that prefix+segment fits in maxWidth columns.
// Empty text still yields one line holding the bare prefix.
func WrapWithLinePrefix(text string, maxWidth int, prefix string) []Line {
	segments := SplitIntoDisplayLines(text, maxWidth-Width(prefix))

	lines := make([]Line, 0, len(segments))
	for _, seg := range segments {
		lines = append(lines, Line{Prefix: prefix, Content: seg.Text(text)})
	}
	return lines
}

// ClampCursor moves an offset into [0, len(text)] and back onto a rune boundary.
func ClampCursor(text string, cursor int) int {
	if cursor < 0 {
		return 0
	}
	if cursor >= len(text) {
		return len(text)
	}
	for cursor > 0 && !utf8.RuneStart(text[cursor]) {
		cursor--
	}
	return cursor
}

// LineIndex returns the index of the segment that displays cursor. An offset
// sitting exactly on a width-induced break belongs to the following line, so
// every offset maps to a single cell.
func LineIndex(cursor int, segments []Segment) int {
	for i, seg := range segments {
		if cursor < seg.Start {
			continue
		}
		if cursor < seg.End {
			return i
		}
		if cursor == seg.End {
			if !seg.Newline && i+1 < len(segments) {
				return i + 1
			}
			return i
		}
	}
	return len(segments) - 1
}

// CursorToLineColumn maps a byte offset into text to (line, display column)
// over segments produced from the same text. Stale offsets are clamped.
func CursorToLineColumn(text string, cursor int, segments []Segment) (int, int) {
	if len(segments) == 0 {
		return 0, 0
	}
	cursor = ClampCursor(text, cursor)

	line := LineIndex(cursor, segments)
	seg := segments[line]
	if cursor > seg.End {
		cursor = seg.End
	}
	if cursor < seg.Start {
		cursor = seg.Start
	}
	return line, Width(text[seg.Start:cursor])
}

// LastCursor is the furthest offset on a segment that still displays on it.
// For a width-wrapped line that is the boundary before its last character,
// because the break offset itself belongs to the next line.
func LastCursor(text string, segments []Segment, line int) int {
	seg := segments[line]
	if seg.Newline || line == len(segments)-1 || seg.End == seg.Start {
		return seg.End
	}
	_, size := utf8.DecodeLastRuneInString(text[seg.Start:seg.End])
	return seg.End - size
}

// ColumnToCursor finds the offset on a segment closest to column col without
// passing it, never beyond LastCursor for that line.
func ColumnToCursor(text string, segments []Segment, line, col int) int {
	seg := segments[line]
	limit := LastCursor(text, segments, line)

	cursor, width := seg.Start, 0
	for cursor < seg.End {
		r, size := utf8.DecodeRuneInString(text[cursor:seg.End])
		w := RuneWidth(r)
		if width+w > col {
			break
		}
		width += w
		cursor += size
	}

	if cursor > limit {
		cursor = limit
	}
	return cursor
}
