// ABOUTME: StatusBar component for displaying connection status and session info
// ABOUTME: Shows connection state with colored indicators and the short key help
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	"github.com/harper/termchat/internal/tui/theme"
)

type StatusBar struct {
	width            int
	theme            theme.Theme
	connectionStatus string
	user             string
	server           string
	help             help.Model
	keys             help.KeyMap
}

func NewStatusBar(width int, t theme.Theme, keys help.KeyMap) *StatusBar {
	h := help.New()
	h.Styles.ShortKey = t.AccentStyle()
	h.Styles.ShortDesc = t.DimStyle()
	h.Styles.ShortSeparator = t.DimStyle()

	return &StatusBar{
		width:            width,
		theme:            t,
		connectionStatus: "disconnected",
		help:             h,
		keys:             keys,
	}
}

func (s *StatusBar) SetConnectionStatus(status string) {
	s.connectionStatus = status
}

func (s *StatusBar) ConnectionStatus() string {
	return s.connectionStatus
}

// SetSession records who is signed in and where.
func (s *StatusBar) SetSession(user, server string) {
	s.user = user
	s.server = server
}

func (s *StatusBar) SetSize(width int) {
	s.width = width
}

func (s *StatusBar) View() string {
	var status string
	switch s.connectionStatus {
	case "connected":
		status = s.theme.SuccessStyle().Render("● Connected")
	case "connecting":
		status = s.theme.WarningStyle().Render("● Connecting")
	default:
		status = s.theme.ErrorStyle().Render("● Disconnected")
	}

	session := "Not signed in"
	if s.user != "" {
		session = fmt.Sprintf("%s @ %s", s.user, s.server)
	}
	left := fmt.Sprintf("[%s] %s", status, s.theme.TextStyle().Render(session))

	// The style pads one column on each side.
	inner := max(s.width-2, 0)
	s.help.Width = max(inner-lipgloss.Width(left)-3, 0)
	shortcuts := s.help.View(s.keys)

	padding := inner - lipgloss.Width(left) - lipgloss.Width(shortcuts)
	var content string
	if shortcuts == "" || padding < 1 {
		content = left
	} else {
		content = left + strings.Repeat(" ", padding) + shortcuts
	}

	return s.theme.StatusBarStyle().
		Width(s.width).
		MaxWidth(s.width).
		MaxHeight(1).
		Render(content)
}
