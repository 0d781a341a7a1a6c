// Package session holds runtime state shown to the touchpad page.
package session

import (
	"sync"

	"github.com/frudas24/remotemouse/internal/gesture"
)

// Snapshot represents a read-only view of the current session state.
type Snapshot struct {
	State             string  `json:"state"`
	Status            string  `json:"status"`
	HostURL           string  `json:"hostUrl"`
	Sensitivity       float64 `json:"sensitivity"`
	ScrollSensitivity float64 `json:"scrollSensitivity"`
	StripSensitivity  float64 `json:"stripSensitivity"`
	InputEnabled      bool    `json:"inputEnabled"`
	Modifiers         uint8   `json:"modifiers"`
}

// Session holds runtime state for the active touchpad.
type Session struct {
	mu                sync.RWMutex
	state             string
	status            string
	hostURL           string
	sensitivity       float64
	scrollSensitivity float64
	stripSensitivity  float64
	inputEnabled      bool
	modifiers         uint8
}

// New returns an initialized session pointing at hostURL.
func New(hostURL string) *Session {
	return &Session{
		state:             "disconnected",
		status:            "disconnected",
		hostURL:           hostURL,
		sensitivity:       gesture.DefaultSensitivity,
		scrollSensitivity: gesture.DefaultScrollSensitivity,
		stripSensitivity:  gesture.DefaultStripSensitivity,
		inputEnabled:      true,
	}
}

// SetConnection records the transport state and its status text.
func (s *Session) SetConnection(state, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.status = status
}

// Connection returns the last recorded transport state and status text.
func (s *Session) Connection() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.status
}

// SetInputEnabled toggles whether inputs are forwarded to the host.
func (s *Session) SetInputEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputEnabled = enabled
}

// InputEnabled reports whether inputs are forwarded to the host.
func (s *Session) InputEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inputEnabled
}

// SetSensitivity records the pointer sensitivity.
func (s *Session) SetSensitivity(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sensitivity = v
}

// SetScrollSensitivity records the two-finger scroll sensitivity.
func (s *Session) SetScrollSensitivity(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrollSensitivity = v
}

// SetStripSensitivity records the scroll strip sensitivity.
func (s *Session) SetStripSensitivity(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stripSensitivity = v
}

// SetModifiers records the latched modifier mask.
func (s *Session) SetModifiers(mask uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modifiers = mask
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		State:             s.state,
		Status:            s.status,
		HostURL:           s.hostURL,
		Sensitivity:       s.sensitivity,
		ScrollSensitivity: s.scrollSensitivity,
		StripSensitivity:  s.stripSensitivity,
		InputEnabled:      s.inputEnabled,
		Modifiers:         s.modifiers,
	}
}
