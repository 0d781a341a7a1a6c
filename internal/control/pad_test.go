package control

import (
	"bytes"
	"testing"

	"github.com/frudas24/remotemouse/internal/dispatch"
	"github.com/frudas24/remotemouse/internal/protocol"
	"github.com/frudas24/remotemouse/internal/session"
	"github.com/frudas24/remotemouse/internal/testutil"
)

// newTestPad returns a pad wired to a recording sender.
func newTestPad() (*Pad, *dispatch.Dispatcher, *session.Session, *testutil.RecordingSender) {
	sender := &testutil.RecordingSender{}
	d := dispatch.New(sender, dispatch.Options{})
	sess := session.New("ws://host/ws")
	return NewPad(sess, d), d, sess, sender
}

// enabled returns a pointer to b.
func enabled(b bool) *bool {
	return &b
}

// TestPad_TapSendsLeftClick verifies a still single tap becomes a left click frame.
func TestPad_TapSendsLeftClick(t *testing.T) {
	pad, _, _, sender := newTestPad()
	pad.Handle(Message{T: MsgDown, ID: 1, X: 10, Y: 10})
	pad.Handle(Message{T: MsgUp, ID: 1})

	got := sender.Sent()
	if len(got) != 1 || !bytes.Equal(got[0], []byte{0x02, 0x01, 0x00}) {
		t.Fatalf("expected left click, got %v", got)
	}
}

// TestPad_MoveCoalescedUntilFlush verifies pointer moves wait for the frame flush.
func TestPad_MoveCoalescedUntilFlush(t *testing.T) {
	pad, d, _, sender := newTestPad()
	pad.Handle(Message{T: MsgSensitivity, Value: 1})
	pad.Handle(Message{T: MsgDown, ID: 1, X: 100, Y: 100})
	pad.Handle(Message{T: MsgMove, ID: 1, X: 104, Y: 100})
	pad.Handle(Message{T: MsgMove, ID: 1, X: 110, Y: 100})
	if len(sender.Sent()) != 0 {
		t.Fatalf("expected nothing before flush")
	}
	d.Flush()
	got := sender.Sent()
	if len(got) != 1 || !bytes.Equal(got[0], []byte{0x01, 0x00, 0x0A, 0x00, 0x00}) {
		t.Fatalf("expected move(10,0), got %v", got)
	}
}

// TestPad_ImplausibleCoordinatesDropped verifies out-of-range positions never reach the classifier.
func TestPad_ImplausibleCoordinatesDropped(t *testing.T) {
	pad, d, _, sender := newTestPad()
	pad.Handle(Message{T: MsgSensitivity, Value: 1})
	pad.Handle(Message{T: MsgDown, ID: 1, X: 0, Y: 0})
	pad.Handle(Message{T: MsgMove, ID: 1, X: 1e308, Y: 0})
	pad.Handle(Message{T: MsgMove, ID: 1, X: 0, Y: -MaxCoordinate - 1})
	if dx, dy := d.Pending(); dx != 0 || dy != 0 {
		t.Fatalf("expected nothing pending, got (%d,%d)", dx, dy)
	}
	pad.Handle(Message{T: MsgMove, ID: 1, X: 3, Y: 0})
	if dx, dy := d.Pending(); dx != 3 || dy != 0 {
		t.Fatalf("expected (3,0) pending, got (%d,%d)", dx, dy)
	}

	pad.Handle(Message{T: MsgStripDown, ID: 2, Y: 1e12})
	pad.Handle(Message{T: MsgStripMove, ID: 2, Y: 5})
	if len(sender.Sent()) != 0 {
		t.Fatalf("expected strip ignored, got %v", sender.Sent())
	}
}

// TestPad_InputDisabledDropsPointers verifies disabled input ignores gestures and ends drags.
func TestPad_InputDisabledDropsPointers(t *testing.T) {
	pad, _, sess, sender := newTestPad()
	for id := 1; id <= 3; id++ {
		pad.Handle(Message{T: MsgDown, ID: id})
	}
	pad.Handle(Message{T: MsgInputEnabled, Enabled: enabled(false)})
	pad.Handle(Message{T: MsgDown, ID: 9})
	pad.Handle(Message{T: MsgUp, ID: 9})
	pad.Handle(Message{T: MsgText, Text: "x"})

	want := []protocol.Command{protocol.Drag{Active: true}, protocol.Drag{Active: false}}
	got := sender.Commands()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected drag start/end only, got %#v", got)
	}
	if sess.InputEnabled() {
		t.Fatalf("expected session input disabled")
	}
}

// TestPad_SensitivityValidation verifies invalid sensitivities keep the previous value.
func TestPad_SensitivityValidation(t *testing.T) {
	pad, _, sess, _ := newTestPad()
	pad.Handle(Message{T: MsgSensitivity, Value: 3})
	pad.Handle(Message{T: MsgSensitivity, Value: 0})
	pad.Handle(Message{T: MsgScrollSensitivity, Value: -2})
	pad.Handle(Message{T: MsgStripSensitivity, Value: 0.25})

	snap := sess.Snapshot()
	if snap.Sensitivity != 3 || snap.ScrollSensitivity != 1 || snap.StripSensitivity != 0.25 {
		t.Fatalf("unexpected sensitivities %+v", snap)
	}
}

// TestPad_ModifierAppliesToNextKey verifies a toggled modifier rides on the next key action only.
func TestPad_ModifierAppliesToNextKey(t *testing.T) {
	pad, _, sess, sender := newTestPad()
	pad.Handle(Message{T: MsgModifier, Mods: uint8(protocol.ModCtrl)})
	if sess.Snapshot().Modifiers != uint8(protocol.ModCtrl) {
		t.Fatalf("expected session to show ctrl latched")
	}
	pad.Handle(Message{T: MsgKey, Key: "c"})
	pad.Handle(Message{T: MsgKey, Key: "v"})

	got := sender.Commands()
	if len(got) != 2 {
		t.Fatalf("expected two key actions, got %#v", got)
	}
	if got[0] != (protocol.KeyAction{Name: "c", Modifiers: protocol.ModCtrl}) ||
		got[1] != (protocol.KeyAction{Name: "v"}) {
		t.Fatalf("unexpected key actions %#v", got)
	}
	if sess.Snapshot().Modifiers != 0 {
		t.Fatalf("expected latch cleared in session")
	}
}

// TestPad_StripScrolls verifies the scroll strip emits scroll frames immediately.
func TestPad_StripScrolls(t *testing.T) {
	pad, _, _, sender := newTestPad()
	pad.Handle(Message{T: MsgStripDown, ID: 4, Y: 50})
	pad.Handle(Message{T: MsgStripMove, ID: 4, Y: 47})
	pad.Handle(Message{T: MsgStripUp, ID: 4})

	got := sender.Commands()
	if len(got) != 1 || got[0] != (protocol.Scroll{SX: 0, SY: -3}) {
		t.Fatalf("expected scroll(0,-3), got %#v", got)
	}
}

// TestPad_ResetEndsDrag verifies a reset message ends an active drag once.
func TestPad_ResetEndsDrag(t *testing.T) {
	pad, _, _, sender := newTestPad()
	for id := 1; id <= 3; id++ {
		pad.Handle(Message{T: MsgDown, ID: id})
	}
	pad.Handle(Message{T: MsgReset})
	pad.Handle(Message{T: MsgReset})

	got := sender.Commands()
	if len(got) != 2 || got[1] != (protocol.Drag{Active: false}) {
		t.Fatalf("expected a single drag end, got %#v", got)
	}
}
