package session

import "testing"

// TestNew_Defaults verifies a fresh session starts disconnected with input enabled.
func TestNew_Defaults(t *testing.T) {
	s := New("ws://host:8788/ws")
	snap := s.Snapshot()
	if snap.State != "disconnected" || !snap.InputEnabled {
		t.Fatalf("unexpected defaults: %+v", snap)
	}
	if snap.Sensitivity != 2 || snap.ScrollSensitivity != 1 || snap.StripSensitivity != 1 {
		t.Fatalf("unexpected sensitivities: %+v", snap)
	}
	if snap.HostURL != "ws://host:8788/ws" {
		t.Fatalf("unexpected host url %q", snap.HostURL)
	}
}

// TestInputEnabled_Toggle verifies input enabled toggle.
func TestInputEnabled_Toggle(t *testing.T) {
	s := New("")
	s.SetInputEnabled(false)
	if s.InputEnabled() {
		t.Fatalf("expected input disabled")
	}
	s.SetInputEnabled(true)
	if !s.InputEnabled() {
		t.Fatalf("expected input enabled")
	}
}

// TestSetConnection verifies connection state is reported back.
func TestSetConnection(t *testing.T) {
	s := New("")
	s.SetConnection("connected", "connected")
	state, status := s.Connection()
	if state != "connected" || status != "connected" {
		t.Fatalf("unexpected connection %q %q", state, status)
	}
}

// TestSnapshot verifies snapshot content.
func TestSnapshot(t *testing.T) {
	s := New("")
	s.SetInputEnabled(false)
	s.SetSensitivity(3.5)
	s.SetScrollSensitivity(0.5)
	s.SetStripSensitivity(4)
	s.SetModifiers(5)
	s.SetConnection("connecting", "connecting...")
	snap := s.Snapshot()
	if snap.InputEnabled || snap.Sensitivity != 3.5 || snap.ScrollSensitivity != 0.5 ||
		snap.StripSensitivity != 4 || snap.Modifiers != 5 || snap.Status != "connecting..." {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}
