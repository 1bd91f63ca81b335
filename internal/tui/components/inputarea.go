// ABOUTME: InputArea component: the multi-line chat input editor
// ABOUTME: Byte-offset cursor over a UTF-8 buffer, wrapped by display width, with a blinking caret
package components

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harper/termchat/internal/tui/textwrap"
	"github.com/harper/termchat/internal/tui/theme"
)

// inputChrome is the horizontal space the box takes from its outer width:
// two border columns plus one column kept free for the caret at line end.
const inputChrome = 3

// InputArea owns the composed-but-unsent text. The cursor is a byte offset
// that always sits on a rune boundary in [0, len(value)].
type InputArea struct {
	value     string
	cursor    int
	width     int // outer width
	textWidth int
	maxLines  int
	offset    int // first wrapped line shown
	focused   bool
	theme     theme.Theme
	caret     cursor.Model
}

// NewInputArea creates an input box of the given outer width that grows up
// to maxLines text lines before scrolling.
func NewInputArea(width, maxLines int, th theme.Theme) *InputArea {
	caret := cursor.New()
	caret.Style = lipgloss.NewStyle().Foreground(th.Text)
	caret.TextStyle = lipgloss.NewStyle().Foreground(th.Text)

	ia := &InputArea{
		maxLines: max(maxLines, 1),
		theme:    th,
		caret:    caret,
	}
	ia.SetWidth(width)
	return ia
}

func (ia *InputArea) Value() string { return ia.value }
func (ia *InputArea) Cursor() int   { return ia.cursor }

func (ia *InputArea) SetWidth(width int) {
	ia.width = width
	ia.textWidth = max(width-inputChrome, 1)
	ia.scrollToCursor()
}

func (ia *InputArea) TextWidth() int {
	return ia.textWidth
}

// Focus sets the focused state and starts the caret blinking.
func (ia *InputArea) Focus() tea.Cmd {
	ia.focused = true
	return ia.caret.Focus()
}

func (ia *InputArea) Blur() {
	ia.focused = false
	ia.caret.Blur()
}

func (ia *InputArea) Focused() bool {
	return ia.focused
}

// segments is recomputed on every call because the width can change between
// calls.
func (ia *InputArea) segments() []textwrap.Segment {
	return textwrap.SplitIntoDisplayLines(ia.value, ia.textWidth)
}

// Editing operations

func (ia *InputArea) InsertChar(r rune) {
	ia.InsertString(string(r))
}

// InsertString inserts s at the cursor. Pasted tabs and control characters
// are sanitized so every byte in the buffer has a measurable width.
func (ia *InputArea) InsertString(s string) {
	if s == "" {
		return
	}
	s = textwrap.Sanitize(s)
	if s == "" {
		return
	}
	ia.cursor = textwrap.ClampCursor(ia.value, ia.cursor)
	ia.value = ia.value[:ia.cursor] + s + ia.value[ia.cursor:]
	ia.cursor += len(s)
	ia.scrollToCursor()
}

// InsertNewline adds a soft newline without sending.
func (ia *InputArea) InsertNewline() {
	ia.InsertString("\n")
}

func (ia *InputArea) DeleteBackward() {
	ia.cursor = textwrap.ClampCursor(ia.value, ia.cursor)
	if ia.cursor == 0 {
		return
	}
	_, size := utf8.DecodeLastRuneInString(ia.value[:ia.cursor])
	ia.value = ia.value[:ia.cursor-size] + ia.value[ia.cursor:]
	ia.cursor -= size
	ia.scrollToCursor()
}

func (ia *InputArea) DeleteForward() {
	ia.cursor = textwrap.ClampCursor(ia.value, ia.cursor)
	if ia.cursor >= len(ia.value) {
		return
	}
	_, size := utf8.DecodeRuneInString(ia.value[ia.cursor:])
	ia.value = ia.value[:ia.cursor] + ia.value[ia.cursor+size:]
	ia.scrollToCursor()
}

func (ia *InputArea) MoveLeft() {
	ia.cursor = textwrap.ClampCursor(ia.value, ia.cursor)
	if ia.cursor == 0 {
		return
	}
	_, size := utf8.DecodeLastRuneInString(ia.value[:ia.cursor])
	ia.cursor -= size
	ia.scrollToCursor()
}

func (ia *InputArea) MoveRight() {
	ia.cursor = textwrap.ClampCursor(ia.value, ia.cursor)
	if ia.cursor >= len(ia.value) {
		return
	}
	_, size := utf8.DecodeRuneInString(ia.value[ia.cursor:])
	ia.cursor += size
	ia.scrollToCursor()
}

// MoveHome goes to the start of the current display line.
func (ia *InputArea) MoveHome() {
	segs := ia.segments()
	line, _ := textwrap.CursorToLineColumn(ia.value, ia.cursor, segs)
	ia.cursor = segs[line].Start
	ia.scrollToCursor()
}

// MoveEnd goes to the end of the current display line.
func (ia *InputArea) MoveEnd() {
	segs := ia.segments()
	line, _ := textwrap.CursorToLineColumn(ia.value, ia.cursor, segs)
	ia.cursor = textwrap.LastCursor(ia.value, segs, line)
	ia.scrollToCursor()
}

// MoveUp keeps the display column where the previous line allows it.
func (ia *InputArea) MoveUp() {
	segs := ia.segments()
	line, col := textwrap.CursorToLineColumn(ia.value, ia.cursor, segs)
	if line == 0 {
		return
	}
	ia.cursor = textwrap.ColumnToCursor(ia.value, segs, line-1, col)
	ia.scrollToCursor()
}

func (ia *InputArea) MoveDown() {
	segs := ia.segments()
	line, col := textwrap.CursorToLineColumn(ia.value, ia.cursor, segs)
	if line >= len(segs)-1 {
		return
	}
	ia.cursor = textwrap.ColumnToCursor(ia.value, segs, line+1, col)
	ia.scrollToCursor()
}

func (ia *InputArea) Clear() {
	ia.value = ""
	ia.cursor = 0
	ia.offset = 0
}

// Geometry

// CursorPosition returns the cursor's wrapped line and display column.
func (ia *InputArea) CursorPosition() (line, col int) {
	return textwrap.CursorToLineColumn(ia.value, ia.cursor, ia.segments())
}

// LineCount is the number of wrapped lines in the buffer.
func (ia *InputArea) LineCount() int {
	return len(ia.segments())
}

func (ia *InputArea) visibleLines() int {
	return min(max(ia.LineCount(), 1), ia.maxLines)
}

// Height is the outer height of the box: the wrapped line count clamped to
// [1, maxLines] plus the border.
func (ia *InputArea) Height() int {
	return ia.visibleLines() + 2
}

// CaretPosition is where the caret is drawn, relative to the box's top-left
// corner including the border.
func (ia *InputArea) CaretPosition() (x, y int) {
	line, col := ia.CursorPosition()
	return col + 1, line - ia.offset + 1
}

func (ia *InputArea) scrollToCursor() {
	line, _ := ia.CursorPosition()
	visible := ia.visibleLines()

	if line < ia.offset {
		ia.offset = line
	}
	if line >= ia.offset+visible {
		ia.offset = line - visible + 1
	}
	ia.offset = max(min(ia.offset, ia.LineCount()-visible), 0)
}

// HandleKey applies editing and navigation keys. It reports whether the key
// was consumed; send and soft newline are left to the caller.
func (ia *InputArea) HandleKey(msg tea.KeyMsg, km KeyMap) bool {
	switch {
	case key.Matches(msg, km.Backspace):
		ia.DeleteBackward()
	case key.Matches(msg, km.Delete):
		ia.DeleteForward()
	case key.Matches(msg, km.Left):
		ia.MoveLeft()
	case key.Matches(msg, km.Right):
		ia.MoveRight()
	case key.Matches(msg, km.Up):
		ia.MoveUp()
	case key.Matches(msg, km.Down):
		ia.MoveDown()
	case key.Matches(msg, km.Home):
		ia.MoveHome()
	case key.Matches(msg, km.End):
		ia.MoveEnd()
	case msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace:
		ia.InsertString(string(msg.Runes))
	default:
		return false
	}
	return true
}

// Update forwards caret blink messages.
func (ia *InputArea) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	ia.caret, cmd = ia.caret.Update(msg)
	return cmd
}

// View renders the box with the visible window of wrapped lines.
func (ia *InputArea) View() string {
	segs := ia.segments()
	_, caretRow := ia.CaretPosition()
	visible := ia.visibleLines()
	textStyle := ia.theme.TextStyle()

	rows := make([]string, 0, visible)
	for i := ia.offset; i < ia.offset+visible && i < len(segs); i++ {
		text := segs[i].Text(ia.value)
		if !ia.focused || i-ia.offset+1 != caretRow {
			rows = append(rows, textStyle.Render(text))
			continue
		}

		at := max(ia.cursor-segs[i].Start, 0)
		at = min(at, len(text))
		under := " "
		rest := ""
		if at < len(text) {
			_, size := utf8.DecodeRuneInString(text[at:])
			under = text[at : at+size]
			rest = text[at+size:]
		}
		ia.caret.SetChar(under)
		rows = append(rows, textStyle.Render(text[:at])+ia.caret.View()+textStyle.Render(rest))
	}

	return ia.theme.PaneStyle(ia.width, visible+2, ia.focused).
		Render(strings.Join(rows, "\n"))
}
