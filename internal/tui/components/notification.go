// ABOUTME: Toast notification system for displaying temporary messages
// ABOUTME: Supports info, warning, error, and success severities with auto-dismiss
package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harper/termchat/internal/tui/theme"
)

// Notification represents a single toast notification.
type Notification struct {
	ID        int
	Message   string
	Severity  string // info, warning, error, success
	CreatedAt time.Time
}

// NotificationComponent manages toast notifications.
type NotificationComponent struct {
	notifications []*Notification
	maxVisible    int
	width         int
	theme         theme.Theme
	nextID        int
}

// DismissNotificationMsg is sent to dismiss a notification.
type DismissNotificationMsg struct {
	ID int
}

const (
	maxNotifications  = 3
	notificationWidth = 40
	autoDismissDelay  = 3 * time.Second

	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
	SeveritySuccess = "success"
)

// NewNotificationComponent creates a new notification component.
func NewNotificationComponent(width int, th theme.Theme) *NotificationComponent {
	return &NotificationComponent{
		notifications: make([]*Notification, 0, maxNotifications),
		maxVisible:    maxNotifications,
		width:         width,
		theme:         th,
	}
}

// Show creates and displays a new notification, returns auto-dismiss command.
func (nc *NotificationComponent) Show(message string, severity string) tea.Cmd {
	nc.nextID++
	notif := &Notification{
		ID:        nc.nextID,
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now(),
	}

	nc.notifications = append(nc.notifications, notif)

	// Enforce max visible limit (keep most recent)
	if len(nc.notifications) > nc.maxVisible {
		nc.notifications = nc.notifications[len(nc.notifications)-nc.maxVisible:]
	}

	return nc.autoDismissCmd(notif.ID)
}

// Dismiss removes a notification by id. Unknown ids are ignored.
func (nc *NotificationComponent) Dismiss(id int) {
	for i, n := range nc.notifications {
		if n.ID == id {
			nc.notifications = append(nc.notifications[:i], nc.notifications[i+1:]...)
			return
		}
	}
}

// Count is the number of toasts currently shown.
func (nc *NotificationComponent) Count() int {
	return len(nc.notifications)
}

func (nc *NotificationComponent) SetWidth(width int) {
	nc.width = width
}

// Update handles messages for the notification component.
func (nc *NotificationComponent) Update(msg tea.Msg) tea.Cmd {
	if dismissMsg, ok := msg.(DismissNotificationMsg); ok {
		nc.Dismiss(dismissMsg.ID)
	}
	return nil
}

// View renders the notifications as a vertical stack.
func (nc *NotificationComponent) View() string {
	if len(nc.notifications) == 0 {
		return ""
	}

	width := min(notificationWidth, max(nc.width-2, 10))
	views := make([]string, 0, len(nc.notifications))
	for _, notif := range nc.notifications {
		style := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(nc.borderColor(notif.Severity)).
			Foreground(nc.theme.Text).
			Padding(0, 1).
			Width(width)

		views = append(views, style.Render(nc.icon(notif.Severity)+" "+notif.Message))
	}

	return lipgloss.JoinVertical(lipgloss.Right, views...)
}

func (nc *NotificationComponent) icon(severity string) string {
	switch severity {
	case SeverityWarning:
		return "!"
	case SeverityError:
		return "✗"
	case SeveritySuccess:
		return "✓"
	default:
		return "i"
	}
}

func (nc *NotificationComponent) borderColor(severity string) lipgloss.Color {
	switch severity {
	case SeverityWarning:
		return nc.theme.Warning
	case SeverityError:
		return nc.theme.ErrorBg
	case SeveritySuccess:
		return nc.theme.Success
	default:
		return nc.theme.BorderFocus
	}
}

// autoDismissCmd returns a command that dismisses a notification after delay.
func (nc *NotificationComponent) autoDismissCmd(id int) tea.Cmd {
	return tea.Tick(autoDismissDelay, func(time.Time) tea.Msg {
		return DismissNotificationMsg{ID: id}
	})
}
