// ABOUTME: Chat message model and inbound frame decoding
// ABOUTME: Frames that are not structured chat messages become synthetic system messages
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harper/termchat/internal/tui/textwrap"
)

const (
	SystemUser  = "system"
	SystemIcon  = "󰚩"
	DefaultIcon = "󰬌"
)

// ChatMessage is immutable once constructed.
type ChatMessage struct {
	User      string  `json:"user"`
	Icon      *string `json:"icon,omitempty"`
	Content   string  `json:"content"`
	Timestamp *int64  `json:"timestamp,omitempty"` // unix seconds
}

// wireMessage keeps required fields as pointers so absence can be detected.
type wireMessage struct {
	User      *string `json:"user"`
	Icon      *string `json:"icon"`
	Content   *string `json:"content"`
	Timestamp *int64  `json:"timestamp"`
}

var errMissingField = errors.New("missing required field")

// ParseChatMessage decodes a structured frame. user and content are required.
// Text fields are sanitized so control bytes never reach the terminal.
func ParseChatMessage(frame string) (ChatMessage, error) {
	var w wireMessage
	if err := json.Unmarshal([]byte(frame), &w); err != nil {
		return ChatMessage{}, err
	}
	if w.User == nil {
		return ChatMessage{}, fmt.Errorf("%w: user", errMissingField)
	}
	if w.Content == nil {
		return ChatMessage{}, fmt.Errorf("%w: content", errMissingField)
	}
	if w.Icon != nil {
		icon := textwrap.Sanitize(*w.Icon)
		w.Icon = &icon
	}
	return ChatMessage{
		User:      textwrap.Sanitize(*w.User),
		Icon:      w.Icon,
		Content:   textwrap.Sanitize(*w.Content),
		Timestamp: w.Timestamp,
	}, nil
}

// SystemMessage wraps raw text as a message from the reserved system sender.
func SystemMessage(content string, now time.Time) ChatMessage {
	icon := SystemIcon
	ts := now.Unix()
	return ChatMessage{
		User:      SystemUser,
		Icon:      &icon,
		Content:   textwrap.Sanitize(content),
		Timestamp: &ts,
	}
}

// DecodeFrame never fails: undecodable frames are downgraded to a system
// message carrying the raw text. The bool reports whether decoding succeeded.
func DecodeFrame(frame string, now time.Time) (ChatMessage, bool) {
	msg, err := ParseChatMessage(frame)
	if err != nil {
		return SystemMessage(frame, now), false
	}
	return msg, true
}

// IconOrDefault returns the sender icon, or the generic glyph when absent.
func (m ChatMessage) IconOrDefault() string {
	if m.Icon == nil || *m.Icon == "" {
		return DefaultIcon
	}
	return *m.Icon
}

// RelativeTime renders the message age: now, Ns, Nm, Nh, then local HH:MM.
func (m ChatMessage) RelativeTime(now time.Time) string {
	if m.Timestamp == nil {
		return ""
	}
	return RelativeTime(*m.Timestamp, now)
}

func RelativeTime(unix int64, now time.Time) string {
	diff := now.Unix() - unix
	switch {
	case diff <= 0:
		return "now"
	case diff < 60:
		return fmt.Sprintf("%ds", diff)
	case diff < 3600:
		return fmt.Sprintf("%dm", diff/60)
	case diff < 86400:
		return fmt.Sprintf("%dh", diff/3600)
	default:
		return time.Unix(unix, 0).In(now.Location()).Format("15:04")
	}
}
