// ABOUTME: Key bindings for the chat screen built from configuration
// ABOUTME: Implements help.KeyMap so the status bar and help overlay render from one source
package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/harper/termchat/internal/config"
)

type KeyMap struct {
	Send        key.Binding
	SoftNewline key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	FocusToggle key.Binding
	Reconnect   key.Binding
	Leave       key.Binding
	Quit        key.Binding
	Help        key.Binding

	// Editing and navigation inside the input box.
	Left      key.Binding
	Right     key.Binding
	Up        key.Binding
	Down      key.Binding
	Home      key.Binding
	End       key.Binding
	Backspace key.Binding
	Delete    key.Binding
}

// NewKeyMap builds bindings from the configured key lists.
func NewKeyMap(cfg config.KeybindingsConfig) KeyMap {
	bind := func(keys []string, desc string) key.Binding {
		return key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(strings.Join(keys, "/"), desc),
		)
	}

	return KeyMap{
		Send:        bind(cfg.Send, "send"),
		SoftNewline: bind(cfg.SoftNewline, "newline"),
		ScrollUp:    bind(cfg.ScrollUp, "scroll up"),
		ScrollDown:  bind(cfg.ScrollDown, "scroll down"),
		PageUp:      bind([]string{"pgup"}, "page up"),
		PageDown:    bind([]string{"pgdown"}, "page down"),
		FocusToggle: bind([]string{"tab"}, "focus chat/input"),
		Reconnect:   bind(cfg.Reconnect, "reconnect"),
		Leave:       bind(cfg.Leave, "leave chat"),
		Quit:        bind(cfg.Quit, "quit"),
		Help:        bind(cfg.Help, "help"),

		Left:      bind([]string{"left", "ctrl+b"}, "left"),
		Right:     bind([]string{"right", "ctrl+f"}, "right"),
		Up:        bind([]string{"up"}, "line up"),
		Down:      bind([]string{"down"}, "line down"),
		Home:      bind([]string{"home", "ctrl+a"}, "line start"),
		End:       bind([]string{"end", "ctrl+e"}, "line end"),
		Backspace: bind([]string{"backspace", "ctrl+h"}, "delete back"),
		Delete:    bind([]string{"delete", "ctrl+d"}, "delete forward"),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.SoftNewline, k.FocusToggle, k.Help, k.Leave}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.SoftNewline, k.Left, k.Right, k.Up, k.Down, k.Home, k.End, k.Backspace, k.Delete},
		{k.ScrollUp, k.ScrollDown, k.PageUp, k.PageDown, k.FocusToggle},
		{k.Reconnect, k.Help, k.Leave, k.Quit},
	}
}
