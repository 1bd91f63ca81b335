// ABOUTME: HelpOverlay component for displaying keyboard shortcuts
// ABOUTME: Renders the full key map with bubbles/help inside a centered modal
package components

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	"github.com/harper/termchat/internal/tui/theme"
)

// HelpOverlay displays a modal overlay with keyboard shortcuts
type HelpOverlay struct {
	width   int
	height  int
	theme   theme.Theme
	visible bool
	keys    help.KeyMap
	help    help.Model
}

func NewHelpOverlay(width, height int, t theme.Theme, keys help.KeyMap) *HelpOverlay {
	h := help.New()
	h.ShowAll = true
	h.Styles.FullKey = t.SuccessStyle().Bold(true)
	h.Styles.FullDesc = t.TextStyle()
	h.Styles.FullSeparator = t.DimStyle()

	return &HelpOverlay{
		width:  width,
		height: height,
		theme:  t,
		keys:   keys,
		help:   h,
	}
}

func (h *HelpOverlay) Show()           { h.visible = true }
func (h *HelpOverlay) Hide()           { h.visible = false }
func (h *HelpOverlay) Toggle()         { h.visible = !h.visible }
func (h *HelpOverlay) IsVisible() bool { return h.visible }

func (h *HelpOverlay) SetSize(width, height int) {
	h.width = width
	h.height = height
}

// View renders the help overlay centered in the screen, or "" when hidden.
func (h *HelpOverlay) View() string {
	if !h.visible {
		return ""
	}

	title := h.theme.TitleStyle(true).Render("Keyboard Shortcuts")
	body := h.help.View(h.keys)
	content := lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", h.theme.DimStyle().Render("esc or ? to close"))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(h.theme.BorderFocus).
		Padding(1, 2).
		Render(content)

	return lipgloss.Place(h.width, h.height, lipgloss.Center, lipgloss.Center, modal)
}
