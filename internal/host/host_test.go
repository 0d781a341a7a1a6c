package host

import (
	"errors"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/frudas24/remotemouse/internal/metrics"
	"github.com/frudas24/remotemouse/internal/protocol"
	"github.com/frudas24/remotemouse/internal/testutil"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
)

// TestApply_MapsEveryOpcode verifies each command reaches the matching injector call.
func TestApply_MapsEveryOpcode(t *testing.T) {
	inj := &testutil.FakeInjector{}
	cmds := []protocol.Command{
		protocol.Move{DX: 10, DY: -3},
		protocol.Click{Button: protocol.ButtonRight, Modifiers: protocol.ModCtrl},
		protocol.Click{Button: 7},
		protocol.Scroll{SX: 0, SY: 2},
		protocol.Scroll{},
		protocol.Drag{Active: true},
		protocol.Drag{Active: false},
		protocol.Text{Text: "héllo"},
		protocol.KeyAction{Name: "Cmd", Modifiers: protocol.ModShift},
	}
	for _, cmd := range cmds {
		if err := Apply(inj, cmd); err != nil {
			t.Fatalf("apply %T: %v", cmd, err)
		}
	}
	want := []testutil.Call{
		{Name: "MoveRel", X: 10, Y: -3},
		{Name: "Click", Button: protocol.ButtonRight, Mods: protocol.ModCtrl},
		{Name: "Click", Button: protocol.ButtonRight},
		{Name: "Scroll", Y: 2},
		{Name: "LeftDown"},
		{Name: "LeftUp"},
		{Name: "TypeUnicode", Text: "héllo"},
		{Name: "PressKey", Text: "win", Mods: protocol.ModShift},
	}
	if got := inj.Calls(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected calls:\n got %#v\nwant %#v", got, want)
	}
}

// TestApply_EmptyKeyRejected verifies a key action without a name is an error.
func TestApply_EmptyKeyRejected(t *testing.T) {
	if err := Apply(&testutil.FakeInjector{}, protocol.KeyAction{}); err == nil {
		t.Fatalf("expected error")
	}
}

// startServer runs a host server over httptest and returns a connected client.
func startServer(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// waitCalls polls until inj has recorded n calls.
func waitCalls(t *testing.T, inj *testutil.FakeInjector, n int) []testutil.Call {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		calls := inj.Calls()
		if len(calls) >= n {
			return calls
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d calls, have %#v", n, calls)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// counterValue reads a single-series metric from reg.
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		var total float64
		for _, m := range f.GetMetric() {
			if c := m.GetCounter(); c != nil {
				total += c.GetValue()
			}
			if g := m.GetGauge(); g != nil {
				total += g.GetValue()
			}
		}
		return total
	}
	return 0
}

// TestServer_AppliesFramesInOrder verifies binary frames are decoded and applied in order.
func TestServer_AppliesFramesInOrder(t *testing.T) {
	inj := &testutil.FakeInjector{}
	reg := prometheus.NewRegistry()
	srv := NewServer(inj, Options{Metrics: metrics.NewHost(reg)})
	conn := startServer(t, srv)

	frames := [][]byte{
		protocol.EncodeMove(5, 6),
		{0x7F},
		[]byte("text frames are ignored"),
		protocol.EncodeClick(protocol.ButtonLeft, 0),
		protocol.EncodeKeyAction("enter", protocol.ModAlt),
	}
	for i, f := range frames {
		kind := websocket.BinaryMessage
		if i == 2 {
			kind = websocket.TextMessage
		}
		if err := conn.WriteMessage(kind, f); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	calls := waitCalls(t, inj, 3)
	want := []testutil.Call{
		{Name: "MoveRel", X: 5, Y: 6},
		{Name: "Click", Button: protocol.ButtonLeft},
		{Name: "PressKey", Text: "enter", Mods: protocol.ModAlt},
	}
	if !reflect.DeepEqual(calls, want) {
		t.Fatalf("unexpected calls %#v", calls)
	}
	if got := counterValue(t, reg, "remotemouse_host_decode_errors_total"); got != 1 {
		t.Fatalf("expected 1 decode error, got %v", got)
	}
	if got := counterValue(t, reg, "remotemouse_host_commands_total"); got != 3 {
		t.Fatalf("expected 3 commands, got %v", got)
	}
	if !srv.Connected() {
		t.Fatalf("expected connected")
	}
}

// TestServer_ReleasesDragOnDisconnect verifies a held drag is released when the pad goes away.
func TestServer_ReleasesDragOnDisconnect(t *testing.T) {
	inj := &testutil.FakeInjector{}
	srv := NewServer(inj, Options{})
	conn := startServer(t, srv)

	if err := conn.WriteMessage(websocket.BinaryMessage, protocol.EncodeDrag(true)); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitCalls(t, inj, 1)
	_ = conn.Close()

	calls := waitCalls(t, inj, 2)
	if calls[0].Name != "LeftDown" || calls[1].Name != "LeftUp" {
		t.Fatalf("unexpected calls %#v", calls)
	}
}

// TestServer_ApplyErrorKeepsConnection verifies injector failures do not drop the pad.
func TestServer_ApplyErrorKeepsConnection(t *testing.T) {
	inj := &testutil.FakeInjector{Err: errors.New("boom")}
	reg := prometheus.NewRegistry()
	srv := NewServer(inj, Options{Metrics: metrics.NewHost(reg)})
	conn := startServer(t, srv)

	for i := 0; i < 2; i++ {
		if err := conn.WriteMessage(websocket.BinaryMessage, protocol.EncodeScroll(0, 1)); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	waitCalls(t, inj, 2)
	deadline := time.Now().Add(2 * time.Second)
	for counterValue(t, reg, "remotemouse_host_apply_errors_total") != 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 2 apply errors")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// TestServer_NewConnectionReplacesOld verifies the newest pad connection wins.
func TestServer_NewConnectionReplacesOld(t *testing.T) {
	inj := &testutil.FakeInjector{}
	srv := NewServer(inj, Options{})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")

	first, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial first: %v", err)
	}
	defer first.Close()
	second, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial second: %v", err)
	}
	defer second.Close()

	_ = first.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := first.ReadMessage(); err == nil {
		t.Fatalf("expected first connection to be closed")
	}

	if err := second.WriteMessage(websocket.BinaryMessage, protocol.EncodeMove(1, 1)); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitCalls(t, inj, 1)
}
