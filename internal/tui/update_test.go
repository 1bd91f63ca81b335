// ABOUTME: Tests for page transitions in the top-level model
// ABOUTME: Walks auth -> home -> chat -> home -> auth with fake collaborators
package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harper/termchat/internal/config"
	"github.com/harper/termchat/internal/tui/client"
	"github.com/harper/termchat/internal/tui/screens"
	"github.com/harper/termchat/internal/tui/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct{}

func (stubAuth) Authenticate(context.Context, string, string, string) (string, error) {
	return "tok", nil
}

type stubDialer struct{}

func (stubDialer) Transport() string { return "WS" }
func (stubDialer) Address() string   { return "ws://chat.test/ws" }
func (stubDialer) Dial(context.Context) (client.FrameConn, error) {
	return nil, errors.New("offline")
}

func newTestModel() Model {
	return NewModel(config.DefaultConfig(), theme.DefaultTheme, Deps{
		Authenticator: stubAuth{},
		Dialer:        stubDialer{},
	})
}

func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestModel_StartsOnAuth(t *testing.T) {
	m := newTestModel()

	assert.Equal(t, PageAuth, m.Page())
	assert.NotNil(t, m.auth)
	assert.Nil(t, m.home)
	assert.Nil(t, m.chat)
	assert.Contains(t, m.View(), "Register")
}

func TestModel_PageFlow(t *testing.T) {
	m := newTestModel()

	m, _ = step(t, m, screens.AuthenticatedMsg{User: "alice", Icon: "★", Token: "tok"})
	require.Equal(t, PageHome, m.Page())
	assert.Nil(t, m.auth)
	assert.Equal(t, "tok", m.session.Token)
	assert.Contains(t, m.View(), "★ alice")

	m, cmd := step(t, m, screens.JoinChatMsg{})
	require.Equal(t, PageChat, m.Page())
	assert.NotNil(t, cmd, "chat init connects and starts ticking")
	assert.Nil(t, m.home)
	assert.Contains(t, m.View(), "alice @ ws://chat.test/ws")

	m, _ = step(t, m, screens.LeaveChatMsg{})
	require.Equal(t, PageHome, m.Page())
	assert.Nil(t, m.chat)

	m, _ = step(t, m, screens.LogoutMsg{})
	require.Equal(t, PageAuth, m.Page())
	assert.Empty(t, m.session.Token)
}

func TestModel_HomeKeysRouteThroughPage(t *testing.T) {
	m := newTestModel()
	m, _ = step(t, m, screens.AuthenticatedMsg{User: "alice", Token: "tok"})

	_, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.Equal(t, screens.JoinChatMsg{}, cmd())
}

func TestModel_CtrlCQuitsFromAnyPage(t *testing.T) {
	m := newTestModel()
	_, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m, _ = step(t, m, screens.AuthenticatedMsg{User: "alice", Token: "tok"})
	m, _ = step(t, m, screens.JoinChatMsg{})
	_, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_WindowSizeReachesNewScreens(t *testing.T) {
	m := newTestModel()
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = step(t, m, screens.AuthenticatedMsg{User: "alice", Token: "tok"})
	m, _ = step(t, m, screens.JoinChatMsg{})

	view := m.View()
	assert.Equal(t, 40, lipgloss.Height(view))
	assert.Equal(t, 120, lipgloss.Width(view))
}

func TestModel_TCPServerLabel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.Transport = config.TransportTCP
	m := NewModel(cfg, theme.DefaultTheme, Deps{Authenticator: stubAuth{}, Dialer: stubDialer{}})

	assert.Contains(t, m.View(), cfg.Server.TCPAddr)
}

func TestPage_String(t *testing.T) {
	assert.Equal(t, "auth", PageAuth.String())
	assert.Equal(t, "home", PageHome.String())
	assert.Equal(t, "chat", PageChat.String())
}
