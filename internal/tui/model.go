// ABOUTME: Core Bubbletea model holding the active page and the signed-in session
// ABOUTME: Exactly one of the auth, home and chat screens exists at a time
package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/harper/termchat/internal/config"
	"github.com/harper/termchat/internal/tui/client"
	"github.com/harper/termchat/internal/tui/components"
	"github.com/harper/termchat/internal/tui/screens"
	"github.com/harper/termchat/internal/tui/theme"
)

// Page selects which screen is active.
type Page int

const (
	PageAuth Page = iota
	PageHome
	PageChat
)

func (p Page) String() string {
	switch p {
	case PageAuth:
		return "auth"
	case PageHome:
		return "home"
	case PageChat:
		return "chat"
	default:
		return "unknown"
	}
}

// Deps are the server collaborators picked from the configured transport.
type Deps struct {
	Authenticator client.Authenticator
	Dialer        client.Dialer
}

type Model struct {
	config *config.Config
	theme  theme.Theme
	deps   Deps
	quit   key.Binding
	width  int
	height int

	page    Page
	auth    *screens.AuthScreen
	home    *screens.HomeScreen
	chat    *screens.ChatScreen
	session screens.Session
}

func NewModel(cfg *config.Config, th theme.Theme, deps Deps) Model {
	m := Model{
		config: cfg,
		theme:  th,
		deps:   deps,
		quit:   components.NewKeyMap(cfg.Keybindings).Quit,
		// Resized on the first WindowSizeMsg.
		width:  80,
		height: 24,
	}
	m.showAuth()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.auth.Init()
}

func (m Model) Page() Page {
	return m.page
}

// serverLabel is shown on the auth and home screens.
func (m Model) serverLabel() string {
	if m.config.Server.Transport == config.TransportTCP {
		return m.config.Server.TCPAddr
	}
	return m.config.Server.APIURL
}

func (m *Model) showAuth() {
	m.page = PageAuth
	m.auth = screens.NewAuthScreen(m.deps.Authenticator, m.serverLabel(), m.config.Server.HandshakeTimeout(), m.width, m.height, m.theme)
	m.home = nil
	m.chat = nil
}

func (m *Model) showHome() {
	m.page = PageHome
	m.home = screens.NewHomeScreen(m.session.User, m.session.Icon, m.serverLabel(), m.width, m.height, m.theme)
	m.auth = nil
	m.chat = nil
}

func (m *Model) showChat() {
	m.page = PageChat
	m.chat = screens.NewChatScreen(m.config, m.deps.Dialer, m.session, m.width, m.height, m.theme)
	m.auth = nil
	m.home = nil
}
