// ABOUTME: Tests for the chat scroll state machine
// ABOUTME: Verifies pinning, manual offsets, clamping and the padding rule
package components

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrollState_StartsPinned(t *testing.T) {
	s := NewScrollState()
	assert.True(t, s.Auto)
	assert.Equal(t, 0, s.Offset)
}

func TestScrollState_ReflowMax(t *testing.T) {
	tests := []struct {
		lines    int
		viewport int
		wantMax  int
	}{
		{0, 10, 0},
		{8, 10, 0},
		{9, 10, 1},
		{50, 10, 42},
	}

	for _, tt := range tests {
		s := NewScrollState()
		s.Reflow(tt.lines, tt.viewport)
		assert.Equal(t, tt.wantMax, s.Max, "lines=%d viewport=%d", tt.lines, tt.viewport)
		assert.Equal(t, tt.wantMax, s.Offset)
	}
}

func TestScrollState_ScrollUpLeavesPinned(t *testing.T) {
	s := NewScrollState()
	s.Reflow(50, 10)

	s.ScrollUp(1)
	assert.False(t, s.Auto)
	assert.Equal(t, 41, s.Offset)

	s.Reflow(60, 10)
	assert.Equal(t, 41, s.Offset, "manual offset survives new content")
	assert.Equal(t, 52, s.Max)
}

func TestScrollState_ScrollUpAtTopIsNoop(t *testing.T) {
	s := NewScrollState()
	s.Reflow(3, 10)

	s.ScrollUp(1)
	assert.True(t, s.Auto, "nothing to scroll, stays pinned")
	assert.Equal(t, 0, s.Offset)
}

func TestScrollState_ScrollDownRepins(t *testing.T) {
	s := NewScrollState()
	s.Reflow(20, 10)
	s.ScrollUp(5)
	assert.False(t, s.Auto)

	s.ScrollDown(2)
	assert.False(t, s.Auto)
	s.ScrollDown(10)
	assert.True(t, s.Auto)
	assert.Equal(t, s.Max, s.Offset)

	s.Reflow(25, 10)
	assert.Equal(t, 17, s.Offset, "pinned again, follows new content")
}

func TestScrollState_ClampsWhenContentShrinks(t *testing.T) {
	s := NewScrollState()
	s.Reflow(100, 10)
	s.ScrollUp(3)

	s.Reflow(5, 10)
	assert.Equal(t, 0, s.Max)
	assert.Equal(t, 0, s.Offset)
}

func TestScrollState_PinProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := NewScrollState()

	for i := 0; i < 1000; i++ {
		switch rng.Intn(3) {
		case 0:
			s.ScrollUp(rng.Intn(5))
		case 1:
			s.ScrollDown(rng.Intn(5))
		}

		wasAuto := s.Auto
		s.Reflow(rng.Intn(80), 1+rng.Intn(20))

		assert.GreaterOrEqual(t, s.Offset, 0)
		assert.LessOrEqual(t, s.Offset, s.Max)
		if wasAuto {
			assert.Equal(t, s.Max, s.Offset)
		}
	}
}
