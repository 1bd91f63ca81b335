// ABOUTME: AuthScreen form for registering or logging in before chatting
// ABOUTME: Runs the authenticator off the render loop and shows timed error banners
package screens

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	chaterrors "github.com/harper/termchat/internal/errors"
	"github.com/harper/termchat/internal/logger"
	"github.com/harper/termchat/internal/tui/client"
	"github.com/harper/termchat/internal/tui/theme"
)

// ErrorBannerTimeout is how long an auth error stays on screen.
const ErrorBannerTimeout = 3 * time.Second

type AuthMode int

const (
	ModeRegister AuthMode = iota
	ModeLogin
)

func (m AuthMode) String() string {
	if m == ModeLogin {
		return "Login"
	}
	return "Register"
}

// AuthenticatedMsg is emitted once the server hands out a session token.
type AuthenticatedMsg struct {
	User  string
	Icon  string
	Token string
}

type authResultMsg struct {
	user  string
	icon  string
	token string
	err   error
}

type clearAuthErrorMsg struct {
	seq int
}

const (
	fieldUsername = iota
	fieldPassword
	fieldIcon
)

type AuthScreen struct {
	auth    client.Authenticator
	timeout time.Duration
	server  string

	mode    AuthMode
	inputs  []textinput.Model
	focus   int // len(visible inputs) selects the submit button
	spinner spinner.Model
	loading bool

	errText string
	errSeq  int

	cmdOpen  bool
	cmdInput textinput.Model

	width  int
	height int
	theme  theme.Theme
}

func NewAuthScreen(auth client.Authenticator, server string, timeout time.Duration, width, height int, th theme.Theme) *AuthScreen {
	newInput := func(placeholder string, limit int) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = limit
		ti.Width = 30
		ti.Prompt = ""
		ti.TextStyle = th.TextStyle()
		ti.PlaceholderStyle = th.DimStyle()
		return ti
	}

	password := newInput("password", 128)
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	inputs := []textinput.Model{
		newInput("username", 32),
		password,
		newInput(client.DefaultIcon, 4),
	}
	inputs[fieldUsername].Focus()

	cmdInput := textinput.New()
	cmdInput.Prompt = ":"
	cmdInput.CharLimit = 16

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = th.AccentStyle()

	return &AuthScreen{
		auth:     auth,
		timeout:  timeout,
		server:   server,
		mode:     ModeRegister,
		inputs:   inputs,
		spinner:  sp,
		cmdInput: cmdInput,
		width:    width,
		height:   height,
		theme:    th,
	}
}

func (s *AuthScreen) Init() tea.Cmd {
	return textinput.Blink
}

func (s *AuthScreen) Mode() AuthMode    { return s.mode }
func (s *AuthScreen) Loading() bool     { return s.loading }
func (s *AuthScreen) Error() string     { return s.errText }
func (s *AuthScreen) CommandOpen() bool { return s.cmdOpen }

// inputCount is the number of fields shown in the current mode.
func (s *AuthScreen) inputCount() int {
	if s.mode == ModeRegister {
		return 3
	}
	return 2
}

func (s *AuthScreen) onButton() bool {
	return s.focus == s.inputCount()
}

func (s *AuthScreen) setFocus(i int) {
	n := s.inputCount() + 1
	s.focus = ((i % n) + n) % n
	for idx := range s.inputs {
		if idx == s.focus && !s.onButton() {
			s.inputs[idx].Focus()
		} else {
			s.inputs[idx].Blur()
		}
	}
}

func (s *AuthScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		return s, nil

	case spinner.TickMsg:
		if !s.loading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case authResultMsg:
		s.loading = false
		if msg.err != nil {
			logger.Warn("auth: %s as %q failed: %v", strings.ToLower(s.mode.String()), msg.user, msg.err)
			return s, s.showError(chaterrors.UserMessage(msg.err))
		}
		logger.Info("auth: signed in as %q", msg.user)
		authed := AuthenticatedMsg{User: msg.user, Icon: msg.icon, Token: msg.token}
		return s, func() tea.Msg { return authed }

	case clearAuthErrorMsg:
		if msg.seq == s.errSeq {
			s.errText = ""
		}
		return s, nil

	case tea.KeyMsg:
		if s.loading {
			return s, nil
		}
		if s.cmdOpen {
			return s, s.handleCommandKey(msg)
		}
		return s, s.handleKey(msg)
	}

	if !s.onButton() {
		var cmd tea.Cmd
		s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *AuthScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		s.setFocus(s.focus + 1)
		return nil
	case "shift+tab", "up":
		s.setFocus(s.focus - 1)
		return nil
	case "ctrl+t":
		if s.mode == ModeRegister {
			s.mode = ModeLogin
		} else {
			s.mode = ModeRegister
		}
		s.setFocus(0)
		return nil
	case "enter":
		if s.onButton() {
			return s.submit()
		}
		s.setFocus(s.focus + 1)
		return nil
	case ":":
		// A colon is only a command prefix when it cannot be field input.
		if s.onButton() || s.inputs[s.focus].Value() == "" {
			s.cmdOpen = true
			s.cmdInput.SetValue("")
			return s.cmdInput.Focus()
		}
	}

	if s.onButton() {
		return nil
	}
	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	return cmd
}

func (s *AuthScreen) handleCommandKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		s.closeCommand()
		return nil
	case tea.KeyEnter:
		command := strings.TrimSpace(s.cmdInput.Value())
		s.closeCommand()
		switch command {
		case "q", "quit":
			return tea.Quit
		case "":
			return nil
		default:
			return s.showError("Unknown command: " + command)
		}
	}

	var cmd tea.Cmd
	s.cmdInput, cmd = s.cmdInput.Update(msg)
	return cmd
}

func (s *AuthScreen) closeCommand() {
	s.cmdOpen = false
	s.cmdInput.Blur()
	s.cmdInput.SetValue("")
}

func (s *AuthScreen) submit() tea.Cmd {
	username := strings.TrimSpace(s.inputs[fieldUsername].Value())
	password := strings.TrimSpace(s.inputs[fieldPassword].Value())
	if username == "" || password == "" {
		return s.showError("Username and Password required")
	}

	icon := ""
	if s.mode == ModeRegister {
		icon = strings.TrimSpace(s.inputs[fieldIcon].Value())
		if icon == "" {
			icon = client.DefaultIcon
		}
	}

	s.loading = true
	s.errText = ""
	return tea.Batch(s.spinner.Tick, s.authenticate(username, password, icon))
}

func (s *AuthScreen) authenticate(username, password, icon string) tea.Cmd {
	auth, timeout := s.auth, s.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		token, err := auth.Authenticate(ctx, username, password, icon)
		return authResultMsg{user: username, icon: icon, token: token, err: err}
	}
}

// showError displays text until ErrorBannerTimeout passes or a newer error replaces it.
func (s *AuthScreen) showError(text string) tea.Cmd {
	s.errSeq++
	s.errText = text
	seq := s.errSeq
	return tea.Tick(ErrorBannerTimeout, func(time.Time) tea.Msg {
		return clearAuthErrorMsg{seq: seq}
	})
}

func (s *AuthScreen) View() string {
	labels := []string{"Username", "Password", "Icon"}

	rows := []string{
		s.theme.TitleStyle(true).Render(s.mode.String()),
		s.theme.DimStyle().Render(s.server),
		"",
	}
	for i := 0; i < s.inputCount(); i++ {
		focused := i == s.focus
		rows = append(rows,
			s.theme.TextStyle().Render(labels[i]),
			s.theme.FieldStyle(focused).Width(34).Render(s.inputs[i].View()),
		)
	}

	button := s.theme.ButtonStyle(s.onButton()).Render("Submit")
	if s.loading {
		button = s.spinner.View() + " " + s.theme.DimStyle().Render("Authenticating…")
	}
	other := ModeLogin
	if s.mode == ModeLogin {
		other = ModeRegister
	}
	rows = append(rows,
		"",
		button,
		"",
		s.theme.DimStyle().Render("Ctrl+T: "+other.String()+"   : for command"),
		s.theme.DimStyle().Render("Tab/Shift+Tab: Move | Enter: Submit"),
	)

	if s.errText != "" {
		rows = append(rows, "", s.theme.ErrorStyle().Render(" "+s.errText+" "))
	}
	if s.cmdOpen {
		popup := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(s.theme.BorderFocus).
			Width(24).
			Render(s.cmdInput.View())
		rows = append(rows, "", popup)
	}

	form := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.theme.Border).
		Padding(1, 3).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))

	return lipgloss.Place(s.width, s.height, lipgloss.Center, lipgloss.Center, form)
}
