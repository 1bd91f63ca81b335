// ABOUTME: ChatView component for displaying the message feed with scrolling
// ABOUTME: Groups consecutive messages by sender, wraps content, and slices the visible window
package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/harper/termchat/internal/tui/client"
	"github.com/harper/termchat/internal/tui/textwrap"
	"github.com/harper/termchat/internal/tui/theme"
)

const contentPrefix = "│ "

type ChatView struct {
	width    int
	height   int
	theme    theme.Theme
	viewport viewport.Model
	messages []client.ChatMessage
	lines    []string
	scroll   ScrollState
	focused  bool
	now      func() time.Time
}

// NewChatView creates a pane with the given outer size.
func NewChatView(width, height int, t theme.Theme) *ChatView {
	cv := &ChatView{
		theme:    t,
		viewport: viewport.New(0, 0),
		scroll:   NewScrollState(),
		now:      time.Now,
	}
	cv.SetSize(width, height)
	return cv
}

func (cv *ChatView) innerWidth() int  { return max(cv.width-2, 1) }
func (cv *ChatView) innerHeight() int { return max(cv.height-2, 1) }

// SetMessages replaces the rendered feed snapshot.
func (cv *ChatView) SetMessages(messages []client.ChatMessage) {
	cv.messages = messages
	cv.Refresh()
}

// Refresh re-renders lines (relative timestamps age between calls) and
// reflows the scroll state.
func (cv *ChatView) Refresh() {
	cv.lines = cv.renderLines(cv.now())
	cv.reflow()
}

func (cv *ChatView) reflow() {
	cv.scroll.Reflow(len(cv.lines), cv.innerHeight())

	content := make([]string, 0, len(cv.lines)+ScrollPadding)
	content = append(content, cv.lines...)
	for i := 0; i < ScrollPadding; i++ {
		content = append(content, "")
	}
	cv.viewport.SetContent(strings.Join(content, "\n"))
	cv.viewport.SetYOffset(cv.scroll.Offset)
}

func (cv *ChatView) SetSize(width, height int) {
	cv.width = width
	cv.height = height
	cv.viewport.Width = cv.innerWidth()
	cv.viewport.Height = cv.innerHeight()
	cv.Refresh()
}

func (cv *ChatView) Width() int  { return cv.width }
func (cv *ChatView) Height() int { return cv.height }

func (cv *ChatView) Focus()        { cv.focused = true }
func (cv *ChatView) Blur()         { cv.focused = false }
func (cv *ChatView) Focused() bool { return cv.focused }

// LineCount is the number of rendered message lines, padding excluded.
func (cv *ChatView) LineCount() int {
	return len(cv.lines)
}

func (cv *ChatView) Scroll() ScrollState {
	return cv.scroll
}

// PageSize is how far PgUp/PgDn move.
func (cv *ChatView) PageSize() int {
	return max(cv.innerHeight()-1, 1)
}

func (cv *ChatView) ScrollUp(n int) {
	cv.scroll.ScrollUp(n)
	cv.reflow()
}

func (cv *ChatView) ScrollDown(n int) {
	cv.scroll.ScrollDown(n)
	cv.reflow()
}

func (cv *ChatView) PinToBottom() {
	cv.scroll.PinToBottom()
	cv.reflow()
}

// renderLines lays out every message. Consecutive messages from the same
// sender share one header.
func (cv *ChatView) renderLines(now time.Time) []string {
	width := cv.innerWidth()
	lines := make([]string, 0, len(cv.messages)*2)

	border := cv.theme.DimStyle()
	text := cv.theme.TextStyle()

	prevUser := ""
	for i, msg := range cv.messages {
		if i == 0 || msg.User != prevUser {
			lines = append(lines, cv.header(msg, width, now))
		}
		prevUser = msg.User

		contentStyle := text
		if msg.User == client.SystemUser {
			contentStyle = cv.theme.DimStyle()
		}
		for _, l := range textwrap.WrapWithLinePrefix(textwrap.Sanitize(msg.Content), width, contentPrefix) {
			lines = append(lines, border.Render(l.Prefix)+contentStyle.Render(l.Content))
		}
	}
	return lines
}

// header renders "┌ icon user" with the relative time right-aligned.
func (cv *ChatView) header(msg client.ChatMessage, width int, now time.Time) string {
	lead := "┌ " + msg.IconOrDefault() + " "
	user := textwrap.Truncate(textwrap.Sanitize(msg.User), width-textwrap.Width(lead))
	left := cv.theme.DimStyle().Render(lead) + cv.theme.UserStyle().Render(user)
	used := textwrap.Width(lead) + textwrap.Width(user)

	ts := msg.RelativeTime(now)
	if ts == "" || used+1+textwrap.Width(ts) > width {
		return left
	}
	gap := width - used - textwrap.Width(ts)
	return left + strings.Repeat(" ", gap) + cv.theme.TimestampStyle().Render(ts)
}

// View renders the pane. An empty feed shows a placeholder.
func (cv *ChatView) View() string {
	style := cv.theme.PaneStyle(cv.width, cv.height, cv.focused)
	if len(cv.messages) == 0 {
		return style.Render(cv.theme.DimStyle().Render("No messages yet"))
	}
	return style.Render(cv.viewport.View())
}
