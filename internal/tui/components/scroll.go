// ABOUTME: Scroll state for the chat pane: pinned to the bottom or at a manual offset
// ABOUTME: Reflow recomputes the maximum offset each redraw and re-pins when auto-scrolling
package components

// ScrollPadding is the count of blank lines kept under the last message.
const ScrollPadding = 2

// ScrollState keeps 0 <= Offset <= Max. Auto means pinned to the bottom.
type ScrollState struct {
	Offset int
	Max    int
	Auto   bool
}

func NewScrollState() ScrollState {
	return ScrollState{Auto: true}
}

// Reflow recomputes Max from the rendered line count and viewport height.
func (s *ScrollState) Reflow(contentLines, viewport int) {
	s.Max = max(contentLines+ScrollPadding-viewport, 0)
	if s.Auto {
		s.Offset = s.Max
		return
	}
	s.Offset = min(max(s.Offset, 0), s.Max)
}

// ScrollUp leaves pinned mode unless already at the top.
func (s *ScrollState) ScrollUp(n int) {
	if s.Offset <= 0 || n <= 0 {
		return
	}
	s.Offset = max(s.Offset-n, 0)
	s.Auto = false
}

// ScrollDown re-pins once the offset reaches the bottom.
func (s *ScrollState) ScrollDown(n int) {
	if n <= 0 {
		return
	}
	s.Offset = min(s.Offset+n, s.Max)
	if s.Offset >= s.Max {
		s.Auto = true
	}
}

func (s *ScrollState) PinToBottom() {
	s.Auto = true
	s.Offset = s.Max
}
