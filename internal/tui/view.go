// ABOUTME: View rendering for the TUI (converts model state to terminal output)
// ABOUTME: Implements the Elm architecture View function
package tui

func (m Model) View() string {
	switch m.page {
	case PageAuth:
		return m.auth.View()
	case PageHome:
		return m.home.View()
	case PageChat:
		return m.chat.View()
	default:
		return ""
	}
}
