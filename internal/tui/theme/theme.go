// ABOUTME: Theme system for TUI styling with lipgloss
// ABOUTME: Loads RGB triples from a JSON theme file once at startup and builds component styles
package theme

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	chaterrors "github.com/harper/termchat/internal/errors"
)

// RGB is a colour triple; the theme file writes it as [r, g, b].
type RGB [3]uint8

func (c *RGB) UnmarshalJSON(data []byte) error {
	var parts []int
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("colour must be [r, g, b]: %w", err)
	}
	if len(parts) != 3 {
		return fmt.Errorf("colour must have 3 components, got %d", len(parts))
	}
	for i, p := range parts {
		if p < 0 || p > 255 {
			return fmt.Errorf("colour component %d out of range: %d", i, p)
		}
		c[i] = uint8(p)
	}
	return nil
}

// Color converts the triple to a lipgloss hex colour.
func (c RGB) Color() lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", c[0], c[1], c[2]))
}

// File mirrors theme.json. The first four colours are required; the auth
// screen extras fall back to them when absent.
type File struct {
	Border      *RGB `json:"border"`
	BorderFocus *RGB `json:"border_focus"`
	ButtonFocus *RGB `json:"button_focus"`
	Text        *RGB `json:"text"`

	Button     *RGB `json:"button,omitempty"`
	ErrorBg    *RGB `json:"error_bg,omitempty"`
	ErrorFg    *RGB `json:"error_fg,omitempty"`
	InputHover *RGB `json:"input_hover,omitempty"`
}

type Theme struct {
	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Accent      lipgloss.Color
	Text        lipgloss.Color
	Button      lipgloss.Color
	ErrorBg     lipgloss.Color
	ErrorFg     lipgloss.Color
	InputHover  lipgloss.Color
	Dim         lipgloss.Color
	Success     lipgloss.Color
	Warning     lipgloss.Color
}

var DefaultTheme = Theme{
	Border:      lipgloss.Color("#585B70"),
	BorderFocus: lipgloss.Color("#89B4FA"),
	Accent:      lipgloss.Color("#CBA6F7"),
	Text:        lipgloss.Color("#CDD6F4"),
	Button:      lipgloss.Color("#6C7086"),
	ErrorBg:     lipgloss.Color("#F38BA8"),
	ErrorFg:     lipgloss.Color("#1E1E2E"),
	InputHover:  lipgloss.Color("#313244"),
	Dim:         lipgloss.Color("#6C7086"),
	Success:     lipgloss.Color("#A6E3A1"),
	Warning:     lipgloss.Color("#F9E2AF"),
}

// Load reads and parses the theme file. Any failure is a *errors.ThemeError.
func Load(path string) (Theme, error) {
	//nolint:gosec // theme path comes from user config
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, chaterrors.NewThemeError(path, err)
	}

	th, err := Parse(data)
	if err != nil {
		return Theme{}, chaterrors.NewThemeError(path, err)
	}
	return th, nil
}

// Parse builds a Theme from theme.json contents.
func Parse(data []byte) (Theme, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return Theme{}, fmt.Errorf("invalid theme json: %w", err)
	}

	required := []struct {
		name string
		rgb  *RGB
	}{
		{"border", f.Border},
		{"border_focus", f.BorderFocus},
		{"button_focus", f.ButtonFocus},
		{"text", f.Text},
	}
	for _, r := range required {
		if r.rgb == nil {
			return Theme{}, fmt.Errorf("missing required colour %q", r.name)
		}
	}

	or := func(c *RGB, fallback lipgloss.Color) lipgloss.Color {
		if c == nil {
			return fallback
		}
		return c.Color()
	}

	th := Theme{
		Border:      f.Border.Color(),
		BorderFocus: f.BorderFocus.Color(),
		Accent:      f.ButtonFocus.Color(),
		Text:        f.Text.Color(),
		Dim:         DefaultTheme.Dim,
		Success:     DefaultTheme.Success,
		Warning:     DefaultTheme.Warning,
	}
	th.Button = or(f.Button, th.Border)
	th.ErrorBg = or(f.ErrorBg, DefaultTheme.ErrorBg)
	th.ErrorFg = or(f.ErrorFg, DefaultTheme.ErrorFg)
	th.InputHover = or(f.InputHover, DefaultTheme.InputHover)
	return th, nil
}

// Style constructors

func (t Theme) borderColor(focused bool) lipgloss.Color {
	if focused {
		return t.BorderFocus
	}
	return t.Border
}

// PaneStyle is a rounded block; width and height are outer dimensions.
func (t Theme) PaneStyle(width, height int, focused bool) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.borderColor(focused)).
		Foreground(t.Text).
		Width(max(width-2, 0)).
		Height(max(height-2, 0))
}

func (t Theme) TitleStyle(focused bool) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.borderColor(focused)).
		Bold(true)
}

func (t Theme) TextStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Text)
}

func (t Theme) AccentStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent)
}

func (t Theme) UserStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)
}

func (t Theme) DimStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Dim)
}

func (t Theme) TimestampStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Dim).
		Faint(true).
		Italic(true)
}

func (t Theme) FieldStyle(focused bool) lipgloss.Style {
	s := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.borderColor(focused)).
		Foreground(t.Text).
		Padding(0, 1)
	if focused {
		s = s.Background(t.InputHover)
	}
	return s
}

func (t Theme) ButtonStyle(focused bool) lipgloss.Style {
	s := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 2)
	if focused {
		return s.BorderForeground(t.Accent).Foreground(t.Accent).Bold(true)
	}
	return s.BorderForeground(t.Button).Foreground(t.Button)
}

func (t Theme) StatusBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Text).
		Padding(0, 1)
}

func (t Theme) ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.ErrorFg).
		Background(t.ErrorBg).
		Bold(true)
}

func (t Theme) SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Success)
}

func (t Theme) WarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Warning)
}
