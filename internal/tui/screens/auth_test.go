// ABOUTME: Tests for AuthScreen form navigation, validation, and the authenticate round trip
// ABOUTME: Drives the screen with key messages and runs the returned commands by hand
package screens

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	chaterrors "github.com/harper/termchat/internal/errors"
	"github.com/harper/termchat/internal/tui/client"
	"github.com/harper/termchat/internal/tui/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	token string
	err   error
	calls []string
	block bool
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context, username, password, icon string) (string, error) {
	f.calls = append(f.calls, username+"|"+password+"|"+icon)
	if f.block {
		<-ctx.Done()
		return "", chaterrors.ErrAuthTimeout
	}
	return f.token, f.err
}

func newTestAuth(auth client.Authenticator) *AuthScreen {
	return NewAuthScreen(auth, "http://localhost:8000", time.Second, 80, 30, theme.DefaultTheme)
}

func authType(s *AuthScreen, text string) {
	s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func authPress(s *AuthScreen, t tea.KeyType) tea.Cmd {
	_, cmd := s.Update(tea.KeyMsg{Type: t})
	return cmd
}

// collect runs cmd and any batched commands, returning their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, collect(c)...)
	}
	return out
}

// submit presses enter on the focused button, waits for the authenticator
// and feeds its result back. It returns the screen's follow-up command.
func submit(t *testing.T, s *AuthScreen) tea.Cmd {
	t.Helper()
	for _, msg := range collect(authPress(s, tea.KeyEnter)) {
		if res, ok := msg.(authResultMsg); ok {
			_, next := s.Update(res)
			return next
		}
	}
	t.Fatal("submit produced no auth result")
	return nil
}

func fillCredentials(s *AuthScreen, user, pass string) {
	authType(s, user)
	authPress(s, tea.KeyTab)
	authType(s, pass)
}

func focusSubmit(s *AuthScreen) {
	for !s.onButton() {
		authPress(s, tea.KeyTab)
	}
}

func TestAuthScreen_StartsInRegisterMode(t *testing.T) {
	s := newTestAuth(&fakeAuthenticator{})

	assert.Equal(t, ModeRegister, s.Mode())
	assert.Equal(t, 3, s.inputCount())
	view := s.View()
	assert.Contains(t, view, "Register")
	assert.Contains(t, view, "Icon")
}

func TestAuthScreen_ToggleMode(t *testing.T) {
	s := newTestAuth(&fakeAuthenticator{})
	authPress(s, tea.KeyTab)

	authPress(s, tea.KeyCtrlT)

	assert.Equal(t, ModeLogin, s.Mode())
	assert.Equal(t, 0, s.focus, "toggling resets focus")
	assert.NotContains(t, s.View(), "Icon")

	authPress(s, tea.KeyCtrlT)
	assert.Equal(t, ModeRegister, s.Mode())
}

func TestAuthScreen_FocusCycles(t *testing.T) {
	s := newTestAuth(&fakeAuthenticator{})

	for _, want := range []int{1, 2, 3, 0} {
		authPress(s, tea.KeyTab)
		assert.Equal(t, want, s.focus)
	}

	authPress(s, tea.KeyShiftTab)
	assert.Equal(t, 3, s.focus)
	assert.True(t, s.onButton())

	authPress(s, tea.KeyUp)
	assert.Equal(t, 2, s.focus)
	authPress(s, tea.KeyDown)
	assert.Equal(t, 3, s.focus)
}

func TestAuthScreen_LoginModeSkipsIcon(t *testing.T) {
	s := newTestAuth(&fakeAuthenticator{})
	authPress(s, tea.KeyCtrlT)

	authPress(s, tea.KeyTab)
	authPress(s, tea.KeyTab)

	assert.True(t, s.onButton())
	for _, in := range s.inputs {
		assert.False(t, in.Focused())
	}
}

func TestAuthScreen_TypingFillsFocusedField(t *testing.T) {
	s := newTestAuth(&fakeAuthenticator{})
	fillCredentials(s, "alice", "secret")

	assert.Equal(t, "alice", s.inputs[fieldUsername].Value())
	assert.Equal(t, "secret", s.inputs[fieldPassword].Value())
	assert.NotContains(t, s.View(), "secret", "password is masked")
}

func TestAuthScreen_RequiresUsernameAndPassword(t *testing.T) {
	fake := &fakeAuthenticator{token: "tok"}
	s := newTestAuth(fake)
	authType(s, "alice")
	focusSubmit(s)

	cmd := authPress(s, tea.KeyEnter)

	assert.NotNil(t, cmd, "error banner schedules its own dismissal")
	assert.Equal(t, "Username and Password required", s.Error())
	assert.False(t, s.Loading())
	assert.Empty(t, fake.calls)
	assert.Contains(t, s.View(), "Username and Password required")
}

func TestAuthScreen_SubmitSucceeds(t *testing.T) {
	fake := &fakeAuthenticator{token: "tok-123"}
	s := newTestAuth(fake)
	fillCredentials(s, "alice", "secret")
	authPress(s, tea.KeyTab)
	authType(s, "★")
	focusSubmit(s)

	next := submit(t, s)

	assert.False(t, s.Loading())
	assert.Equal(t, []string{"alice|secret|★"}, fake.calls)
	require.NotNil(t, next)
	assert.Equal(t, AuthenticatedMsg{User: "alice", Icon: "★", Token: "tok-123"}, next())
}

func TestAuthScreen_RegisterWithoutIconUsesDefault(t *testing.T) {
	fake := &fakeAuthenticator{token: "tok"}
	s := newTestAuth(fake)
	fillCredentials(s, "bob", "pw")
	focusSubmit(s)

	submit(t, s)

	assert.Equal(t, []string{"bob|pw|" + client.DefaultIcon}, fake.calls)
}

func TestAuthScreen_LoginSendsNoIcon(t *testing.T) {
	fake := &fakeAuthenticator{token: "tok"}
	s := newTestAuth(fake)
	authPress(s, tea.KeyCtrlT)
	fillCredentials(s, "bob", "pw")
	focusSubmit(s)

	submit(t, s)

	assert.Equal(t, []string{"bob|pw|"}, fake.calls)
}

func TestAuthScreen_FailureShowsBanner(t *testing.T) {
	fake := &fakeAuthenticator{err: chaterrors.NewAuthError("login", "wrong password")}
	s := newTestAuth(fake)
	fillCredentials(s, "alice", "nope")
	focusSubmit(s)

	next := submit(t, s)

	assert.NotNil(t, next, "banner dismissal is scheduled")
	assert.Equal(t, "Login failed: wrong password", s.Error())
	assert.False(t, s.Loading())
}

func TestAuthScreen_TimeoutShowsBanner(t *testing.T) {
	fake := &fakeAuthenticator{block: true}
	s := NewAuthScreen(fake, "http://localhost:8000", 20*time.Millisecond, 80, 30, theme.DefaultTheme)
	fillCredentials(s, "alice", "pw")
	focusSubmit(s)

	submit(t, s)

	assert.Equal(t, chaterrors.UserMessage(chaterrors.ErrAuthTimeout), s.Error())
}

func TestAuthScreen_BannerClearsOnlyForLatestError(t *testing.T) {
	s := newTestAuth(&fakeAuthenticator{})
	focusSubmit(s)

	authPress(s, tea.KeyEnter)
	first := s.errSeq
	authPress(s, tea.KeyEnter)

	s.Update(clearAuthErrorMsg{seq: first})
	assert.NotEmpty(t, s.Error(), "stale dismissal keeps the newer banner")

	s.Update(clearAuthErrorMsg{seq: s.errSeq})
	assert.Empty(t, s.Error())
}

func TestAuthScreen_KeysIgnoredWhileLoading(t *testing.T) {
	s := newTestAuth(&fakeAuthenticator{token: "tok"})
	fillCredentials(s, "alice", "pw")
	focusSubmit(s)
	authPress(s, tea.KeyEnter)
	require.True(t, s.Loading())

	authPress(s, tea.KeyCtrlT)
	assert.Equal(t, ModeRegister, s.Mode())
}

func TestAuthScreen_CommandPopupQuits(t *testing.T) {
	s := newTestAuth(&fakeAuthenticator{})
	authType(s, ":")
	require.True(t, s.CommandOpen())
	assert.Equal(t, "", s.inputs[fieldUsername].Value())

	authType(s, "q")
	cmd := authPress(s, tea.KeyEnter)

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, s.CommandOpen())
}

func TestAuthScreen_CommandPopupEscCloses(t *testing.T) {
	s := newTestAuth(&fakeAuthenticator{})
	authType(s, ":")
	authType(s, "quit")

	assert.Nil(t, authPress(s, tea.KeyEsc))
	assert.False(t, s.CommandOpen())
}

func TestAuthScreen_UnknownCommand(t *testing.T) {
	s := newTestAuth(&fakeAuthenticator{})
	authType(s, ":")
	authType(s, "foo")
	authPress(s, tea.KeyEnter)

	assert.Equal(t, "Unknown command: foo", s.Error())
}

func TestAuthScreen_ColonIsTextInsideFilledField(t *testing.T) {
	s := newTestAuth(&fakeAuthenticator{})
	authType(s, "a")
	authType(s, ":")

	assert.False(t, s.CommandOpen())
	assert.Equal(t, "a:", s.inputs[fieldUsername].Value())
}
