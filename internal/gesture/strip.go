// Package gesture classifies multi-touch pointer input into trackpad intents.
package gesture

// DefaultStripSensitivity scales scroll strip motion.
const DefaultStripSensitivity = 1.0

// ScrollListener receives scroll intents.
type ScrollListener interface {
	OnScroll(sx, sy int)
}

// ScrollStrip is a single-finger vertical scroll area. The first finger down
// owns the strip until it lifts; other fingers are ignored.
type ScrollStrip struct {
	listener    ScrollListener
	sensitivity float64

	active   bool
	activeID int
	lastY    float64
	acc      accumulator
}

// NewScrollStrip returns a strip reporting to l.
func NewScrollStrip(l ScrollListener) *ScrollStrip {
	return &ScrollStrip{listener: l, sensitivity: DefaultStripSensitivity}
}

// SetSensitivity sets the strip multiplier. Values <= 0 are ignored.
func (s *ScrollStrip) SetSensitivity(v float64) {
	if validMultiplier(v) {
		s.sensitivity = v
	}
}

// Sensitivity returns the strip multiplier.
func (s *ScrollStrip) Sensitivity() float64 {
	return s.sensitivity
}

// Active reports whether a finger currently owns the strip.
func (s *ScrollStrip) Active() bool {
	return s.active
}

// Down captures the strip for id unless another finger owns it.
func (s *ScrollStrip) Down(id int, y float64) {
	if s.active || !finite(y) {
		return
	}
	s.active = true
	s.activeID = id
	s.lastY = y
	s.acc.reset()
}

// Move scrolls vertically by the owning finger's delta.
func (s *ScrollStrip) Move(id int, y float64) {
	if !s.active || id != s.activeID || !finite(y) {
		return
	}
	dy := y - s.lastY
	s.lastY = y
	if _, sy := s.acc.step(0, dy, s.sensitivity); sy != 0 {
		s.listener.OnScroll(0, sy)
	}
}

// Up releases the strip if id owns it.
func (s *ScrollStrip) Up(id int) {
	if !s.active || id != s.activeID {
		return
	}
	s.active = false
}

// Reset releases the strip regardless of owner.
func (s *ScrollStrip) Reset() {
	s.active = false
	s.acc.reset()
}
