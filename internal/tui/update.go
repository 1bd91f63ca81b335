// ABOUTME: Update logic for the TUI (page transitions and message routing)
// ABOUTME: Implements the Elm architecture Update function with one switch over the active page
package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/harper/termchat/internal/logger"
	"github.com/harper/termchat/internal/tui/screens"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if key.Matches(msg, m.quit) {
			if m.chat != nil {
				m.chat.Close()
			}
			return m, tea.Quit
		}

	case screens.AuthenticatedMsg:
		m.session = screens.Session{User: msg.User, Icon: msg.Icon, Token: msg.Token}
		m.showHome()
		return m, nil

	case screens.LogoutMsg:
		logger.Info("tui: %q signed out", m.session.User)
		m.session = screens.Session{}
		m.showAuth()
		return m, m.auth.Init()

	case screens.JoinChatMsg:
		m.showChat()
		return m, m.chat.Init()

	case screens.LeaveChatMsg:
		m.showHome()
		return m, nil
	}

	return m, m.updatePage(msg)
}

// updatePage hands msg to the active screen.
func (m Model) updatePage(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.page {
	case PageAuth:
		_, cmd = m.auth.Update(msg)
	case PageHome:
		_, cmd = m.home.Update(msg)
	case PageChat:
		_, cmd = m.chat.Update(msg)
	}
	return cmd
}
