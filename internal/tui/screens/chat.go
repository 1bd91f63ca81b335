// ABOUTME: ChatScreen composes the message pane, input box and status bar around one chat session
// ABOUTME: Drains the shared feed on a tick, routes keys, throttles sends and restarts the bridge
package screens

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harper/termchat/internal/config"
	chaterrors "github.com/harper/termchat/internal/errors"
	"github.com/harper/termchat/internal/logger"
	"github.com/harper/termchat/internal/tui/client"
	"github.com/harper/termchat/internal/tui/components"
	"github.com/harper/termchat/internal/tui/theme"
)

const (
	// OutboundBuffer is the capacity of the queue between the screen and the bridge.
	OutboundBuffer = 64

	statusBarHeight = 1
	minChatHeight   = 3
)

// Ticks and bridge results outlive the screen that scheduled them, so both
// carry ids that are unique for the life of the process.
var (
	chatScreenIDs atomic.Uint64
	bridgeGens    atomic.Uint64
)

// LeaveChatMsg is emitted after the screen has stopped its bridge.
type LeaveChatMsg struct{}

// BridgeClosedMsg reports the end of a bridge run. Gen identifies which
// connection attempt ended so a stale result cannot mark a newer one closed.
type BridgeClosedMsg struct {
	Gen uint64
	Err error
}

type chatTickMsg struct {
	screen uint64
}

// Session is what the chat screen needs from a successful sign-in.
type Session struct {
	User  string
	Icon  string
	Token string
}

type ChatScreen struct {
	id      uint64
	session Session
	dialer  client.Dialer
	tick    time.Duration

	keys   components.KeyMap
	chat   *components.ChatView
	input  *components.InputArea
	status *components.StatusBar
	toasts *components.NotificationComponent
	help   *components.HelpOverlay

	feed       *client.Feed
	lastPushed uint64
	throttle   *client.Throttle
	outbound   chan string

	bridge *client.Bridge
	cancel context.CancelFunc
	gen    uint64

	width  int
	height int
	theme  theme.Theme
}

func NewChatScreen(cfg *config.Config, dialer client.Dialer, session Session, width, height int, th theme.Theme) *ChatScreen {
	keys := components.NewKeyMap(cfg.Keybindings)

	s := &ChatScreen{
		id:       chatScreenIDs.Add(1),
		session:  session,
		dialer:   dialer,
		tick:     cfg.UI.TickInterval(),
		keys:     keys,
		chat:     components.NewChatView(width, max(height-statusBarHeight-3, minChatHeight), th),
		input:    components.NewInputArea(width, cfg.UI.InputMaxLines, th),
		status:   components.NewStatusBar(width, th, keys),
		toasts:   components.NewNotificationComponent(width, th),
		help:     components.NewHelpOverlay(width, height, th, keys),
		feed:     client.NewFeed(client.FeedCapacity),
		throttle: client.NewThrottle(client.SendCooldown, time.Now),
		outbound: make(chan string, OutboundBuffer),
		width:    width,
		height:   height,
		theme:    th,
	}
	s.bridge = client.NewBridge(dialer, session.Token, s.feed, s.outbound)
	s.status.SetSession(session.User, dialer.Address())
	s.layout()
	return s
}

func (s *ChatScreen) Init() tea.Cmd {
	return tea.Batch(s.connect(), s.input.Focus(), s.tickCmd())
}

// connect starts a fresh bridge on the shared feed and outbound queue.
func (s *ChatScreen) connect() tea.Cmd {
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.gen = bridgeGens.Add(1)
	gen := s.gen

	bridge := client.NewBridge(s.dialer, s.session.Token, s.feed, s.outbound)
	s.bridge = bridge
	s.status.SetConnectionStatus(client.BridgeConnecting.String())
	logger.Info("chat: connecting to %s (%s) as %q", s.dialer.Address(), s.dialer.Transport(), s.session.User)

	return func() tea.Msg {
		return BridgeClosedMsg{Gen: gen, Err: bridge.Run(ctx)}
	}
}

// Close stops the bridge. The connection is closed by the bridge itself.
func (s *ChatScreen) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *ChatScreen) tickCmd() tea.Cmd {
	id := s.id
	return tea.Tick(s.tick, func(time.Time) tea.Msg {
		return chatTickMsg{screen: id}
	})
}

// refresh pulls the latest feed snapshot when the feed is free and has new
// messages. A busy feed keeps the previous snapshot for this tick.
func (s *ChatScreen) refresh() {
	pushed := s.feed.Pushed()
	if msgs, ok := s.feed.DrainAvailable(); ok && pushed != s.lastPushed {
		s.lastPushed = pushed
		s.chat.SetMessages(msgs)
	} else {
		s.chat.Refresh()
	}
	if state := s.bridge.State(); state != client.BridgeIdle {
		s.status.SetConnectionStatus(state.String())
	}
}

func (s *ChatScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.layout()
		return s, nil

	case chatTickMsg:
		if msg.screen != s.id {
			return s, nil
		}
		s.refresh()
		return s, s.tickCmd()

	case BridgeClosedMsg:
		return s, s.onBridgeClosed(msg)

	case components.DismissNotificationMsg:
		s.toasts.Update(msg)
		s.layout()
		return s, nil

	case tea.KeyMsg:
		cmd := s.handleKey(msg)
		s.layout()
		return s, cmd
	}

	return s, s.input.Update(msg)
}

func (s *ChatScreen) onBridgeClosed(msg BridgeClosedMsg) tea.Cmd {
	if msg.Gen != s.gen {
		return nil
	}
	s.status.SetConnectionStatus(client.BridgeClosed.String())
	if msg.Err == nil || errors.Is(msg.Err, context.Canceled) {
		return nil
	}

	logger.Warn("chat: connection to %s ended: %v", s.dialer.Address(), msg.Err)
	cmd := s.toasts.Show(chaterrors.UserMessage(msg.Err), components.SeverityError)
	s.layout()
	return cmd
}

func (s *ChatScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	if s.help.IsVisible() {
		if key.Matches(msg, s.keys.Help, s.keys.Leave) || msg.String() == "?" {
			s.help.Hide()
		}
		return nil
	}

	switch {
	case key.Matches(msg, s.keys.Help):
		s.help.Toggle()
		return nil

	case key.Matches(msg, s.keys.Leave):
		s.Close()
		return func() tea.Msg { return LeaveChatMsg{} }

	case key.Matches(msg, s.keys.Reconnect):
		if s.bridge.State() != client.BridgeClosed {
			return nil
		}
		return tea.Batch(
			s.toasts.Show("Reconnecting to "+s.dialer.Address(), components.SeverityInfo),
			s.connect(),
		)

	case key.Matches(msg, s.keys.ScrollUp):
		s.chat.ScrollUp(1)
		return nil
	case key.Matches(msg, s.keys.ScrollDown):
		s.chat.ScrollDown(1)
		return nil
	case key.Matches(msg, s.keys.PageUp):
		s.chat.ScrollUp(s.chat.PageSize())
		return nil
	case key.Matches(msg, s.keys.PageDown):
		s.chat.ScrollDown(s.chat.PageSize())
		return nil

	case key.Matches(msg, s.keys.FocusToggle):
		return s.toggleFocus()
	}

	if s.chat.Focused() {
		switch {
		case msg.String() == "?":
			s.help.Toggle()
		case key.Matches(msg, s.keys.Up):
			s.chat.ScrollUp(1)
		case key.Matches(msg, s.keys.Down):
			s.chat.ScrollDown(1)
		case key.Matches(msg, s.keys.End):
			s.chat.PinToBottom()
		}
		return nil
	}

	switch {
	case key.Matches(msg, s.keys.Send):
		s.send()
	case key.Matches(msg, s.keys.SoftNewline):
		s.input.InsertNewline()
	default:
		s.input.HandleKey(msg, s.keys)
	}
	return nil
}

func (s *ChatScreen) toggleFocus() tea.Cmd {
	if s.chat.Focused() {
		s.chat.Blur()
		return s.input.Focus()
	}
	s.input.Blur()
	s.chat.Focus()
	return nil
}

// send forwards the composed text to the bridge. Attempts inside the send
// cooldown are dropped silently with the buffer untouched, as are sends the
// full queue cannot take.
func (s *ChatScreen) send() bool {
	if !s.throttle.Ready() {
		return false
	}

	text := strings.TrimSpace(s.input.Value())
	if text == "" {
		return false
	}

	select {
	case s.outbound <- text:
	default:
		logger.Warn("chat: outbound queue full, keeping input")
		return false
	}

	s.input.Clear()
	s.throttle.Record()
	return true
}

func (s *ChatScreen) toastHeight() int {
	if s.toasts.Count() == 0 {
		return 0
	}
	return lipgloss.Height(s.toasts.View())
}

func (s *ChatScreen) chatHeight() int {
	return max(s.height-statusBarHeight-s.toastHeight()-s.input.Height(), minChatHeight)
}

// layout sizes every pane. The input box grows with its wrapped line count,
// so this runs after each key.
func (s *ChatScreen) layout() {
	s.input.SetWidth(s.width)
	s.status.SetSize(s.width)
	s.toasts.SetWidth(s.width)
	s.help.SetSize(s.width, s.height)

	if h := s.chatHeight(); h != s.chat.Height() || s.width != s.chat.Width() {
		s.chat.SetSize(s.width, h)
	}
}

func (s *ChatScreen) View() string {
	if s.help.IsVisible() {
		return s.help.View()
	}

	parts := []string{s.chat.View()}
	if toasts := s.toasts.View(); toasts != "" {
		parts = append(parts, lipgloss.PlaceHorizontal(s.width, lipgloss.Right, toasts))
	}
	parts = append(parts, s.input.View(), s.status.View())

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
