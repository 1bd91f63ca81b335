// ABOUTME: HomeScreen lobby shown between signing in and joining the chat
// ABOUTME: Enter joins the chat room, l logs out and q quits
package screens

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harper/termchat/internal/tui/theme"
)

// JoinChatMsg asks the app to open the chat screen.
type JoinChatMsg struct{}

// LogoutMsg drops the session token and returns to the auth screen.
type LogoutMsg struct{}

type HomeScreen struct {
	user   string
	icon   string
	server string
	width  int
	height int
	theme  theme.Theme
}

func NewHomeScreen(user, icon, server string, width, height int, th theme.Theme) *HomeScreen {
	return &HomeScreen{
		user:   user,
		icon:   icon,
		server: server,
		width:  width,
		height: height,
		theme:  th,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h.width = msg.Width
		h.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return h, func() tea.Msg { return JoinChatMsg{} }
		case "l":
			return h, func() tea.Msg { return LogoutMsg{} }
		case "q":
			return h, tea.Quit
		}
	}
	return h, nil
}

func (h *HomeScreen) View() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		h.theme.TitleStyle(true).Render("termchat"),
		"",
		h.theme.TextStyle().Render("Signed in as ")+h.theme.UserStyle().Render(h.icon+" "+h.user),
		h.theme.DimStyle().Render(h.server),
		"",
		h.theme.ButtonStyle(true).Render("Join chat"),
		"",
		h.theme.DimStyle().Render("enter join • l log out • q quit"),
	)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(h.theme.Border).
		Padding(1, 4).
		Render(content)

	return lipgloss.Place(h.width, h.height, lipgloss.Center, lipgloss.Center, box)
}
