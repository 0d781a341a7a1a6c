package transport

import (
	"bytes"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"
)

// fakeChannel is a channel driven by the test.
type fakeChannel struct {
	url    string
	h      Handler
	sent   [][]byte
	closed bool
}

// Send records data.
func (c *fakeChannel) Send(data []byte) error {
	c.sent = append(c.sent, data)
	return nil
}

// Close marks the channel closed and reports it like a browser socket would.
func (c *fakeChannel) Close() error {
	c.closed = true
	c.h.OnClose()
	return nil
}

// open simulates the server accepting the connection.
func (c *fakeChannel) open() { c.h.OnOpen() }

// terminate simulates the connection dropping.
func (c *fakeChannel) terminate() { c.h.OnClose() }

// fail simulates a channel error.
func (c *fakeChannel) fail() { c.h.OnError(errors.New("boom")) }

// fakeOpener records every opened channel.
type fakeOpener struct {
	channels []*fakeChannel
	failNext bool
}

// Open returns a new fake channel or a synchronous error.
func (o *fakeOpener) Open(url string, h Handler) (Channel, error) {
	if o.failNext {
		o.failNext = false
		return nil, errors.New("cannot construct")
	}
	c := &fakeChannel{url: url, h: h}
	o.channels = append(o.channels, c)
	return c, nil
}

// last returns the most recently opened channel.
func (o *fakeOpener) last() *fakeChannel {
	return o.channels[len(o.channels)-1]
}

// fakeTimer is a timer on the fake clock.
type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

// Stop cancels the timer.
func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fakeClock fires timers when advanced.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

// AfterFunc schedules f at now+d.
func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and fires due timers in order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

// pending returns the number of armed timers.
func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// stateChange is one recorded notification.
type stateChange struct {
	state  State
	status string
}

// newTestTransport returns a transport on fake dependencies.
func newTestTransport() (*Transport, *fakeOpener, *fakeClock, *[]stateChange) {
	opener := &fakeOpener{}
	clock := &fakeClock{}
	var changes []stateChange
	tr := New(Options{
		Opener: opener,
		Clock:  clock,
		OnStateChange: func(s State, status string) {
			changes = append(changes, stateChange{s, status})
		},
	})
	return tr, opener, clock, &changes
}

// TestConnect_ConnectingThenConnected verifies the first transitions.
func TestConnect_ConnectingThenConnected(t *testing.T) {
	tr, opener, _, changes := newTestTransport()
	tr.Connect("ws://localhost/ws")

	if len(*changes) != 1 || (*changes)[0] != (stateChange{StateConnecting, StatusConnecting}) {
		t.Fatalf("expected connecting, got %#v", *changes)
	}
	if len(opener.channels) != 1 || opener.channels[0].url != "ws://localhost/ws" {
		t.Fatalf("expected one channel, got %#v", opener.channels)
	}

	opener.last().open()
	if last := (*changes)[len(*changes)-1]; last != (stateChange{StateConnected, StatusConnected}) {
		t.Fatalf("expected connected, got %#v", last)
	}
}

// TestReconnect_AfterDelayOnce verifies one reconnect at 3000ms and none earlier.
func TestReconnect_AfterDelayOnce(t *testing.T) {
	tr, opener, clock, changes := newTestTransport()
	tr.Connect("ws://localhost/ws")
	opener.last().open()
	opener.last().terminate()

	if last := (*changes)[len(*changes)-1]; last.state != StateDisconnected || last.status != StatusLost {
		t.Fatalf("expected disconnected, got %#v", last)
	}

	clock.Advance(2999 * time.Millisecond)
	if len(opener.channels) != 1 {
		t.Fatalf("expected no reconnect before delay, got %d channels", len(opener.channels))
	}

	clock.Advance(time.Millisecond)
	if len(opener.channels) != 2 {
		t.Fatalf("expected one reconnect, got %d channels", len(opener.channels))
	}
	if opener.last().url != "ws://localhost/ws" {
		t.Fatalf("expected same url, got %s", opener.last().url)
	}
	if last := (*changes)[len(*changes)-1]; last.state != StateConnecting {
		t.Fatalf("expected connecting after reconnect, got %#v", last)
	}

	clock.Advance(10 * time.Second)
	if len(opener.channels) != 2 {
		t.Fatalf("expected no further attempts while connecting, got %d", len(opener.channels))
	}
}

// TestReconnect_ErrorThenCloseSchedulesOnce verifies idempotent scheduling.
func TestReconnect_ErrorThenCloseSchedulesOnce(t *testing.T) {
	tr, opener, clock, _ := newTestTransport()
	tr.Connect("ws://localhost/ws")
	ch := opener.last()
	ch.fail()
	ch.terminate()

	if clock.pending() != 1 {
		t.Fatalf("expected exactly one pending timer, got %d", clock.pending())
	}
	if !tr.ReconnectPending() {
		t.Fatalf("expected reconnect pending")
	}
	clock.Advance(DefaultReconnectDelay)
	if len(opener.channels) != 2 {
		t.Fatalf("expected a single reconnect, got %d channels", len(opener.channels))
	}
}

// TestConnect_SynchronousFailureSchedulesReconnect verifies construction errors behave like close.
func TestConnect_SynchronousFailureSchedulesReconnect(t *testing.T) {
	tr, opener, clock, changes := newTestTransport()
	opener.failNext = true
	tr.Connect("ws://nowhere/ws")

	if last := (*changes)[len(*changes)-1]; last != (stateChange{StateDisconnected, StatusFailed}) {
		t.Fatalf("expected failed state, got %#v", last)
	}
	clock.Advance(DefaultReconnectDelay)
	if len(opener.channels) != 1 {
		t.Fatalf("expected reconnect after failure, got %d channels", len(opener.channels))
	}
}

// TestSend_OnlyWhenConnected verifies sends before open are dropped and after open are exact.
func TestSend_OnlyWhenConnected(t *testing.T) {
	tr, opener, _, _ := newTestTransport()
	tr.Send([]byte{0x04, 0x01})
	tr.Connect("ws://localhost/ws")
	ch := opener.last()

	data := []byte{0x01, 0x00, 0x0A, 0x00, 0x00}
	tr.Send(data)
	if len(ch.sent) != 0 {
		t.Fatalf("expected no write before open, got %#v", ch.sent)
	}

	ch.open()
	tr.Send(data)
	if len(ch.sent) != 1 || !bytes.Equal(ch.sent[0], data) {
		t.Fatalf("expected exact buffer forwarded, got %#v", ch.sent)
	}

	ch.terminate()
	tr.Send(data)
	if len(ch.sent) != 1 {
		t.Fatalf("expected drop after close, got %#v", ch.sent)
	}
}

// TestDisconnect_StopsReconnect verifies explicit close cancels the pending timer.
func TestDisconnect_StopsReconnect(t *testing.T) {
	tr, opener, clock, changes := newTestTransport()
	tr.Connect("ws://localhost/ws")
	opener.last().open()
	opener.last().terminate()
	tr.Disconnect()

	clock.Advance(time.Minute)
	if len(opener.channels) != 1 {
		t.Fatalf("expected no reconnect after disconnect, got %d", len(opener.channels))
	}
	if state, _ := tr.State(); state != StateDisconnected {
		t.Fatalf("expected disconnected, got %v", state)
	}
	_ = changes
}

// TestDisconnect_RacingReconnectStaysClosed verifies a Disconnect concurrent with a firing
// reconnect timer never leaves a channel open or a timer armed.
func TestDisconnect_RacingReconnectStaysClosed(t *testing.T) {
	for i := 0; i < 200; i++ {
		tr, opener, clock, _ := newTestTransport()
		tr.Connect("ws://localhost/ws")
		opener.last().open()
		opener.last().terminate()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			clock.Advance(DefaultReconnectDelay)
		}()
		go func() {
			defer wg.Done()
			tr.Disconnect()
		}()
		wg.Wait()

		if state, _ := tr.State(); state != StateDisconnected {
			t.Fatalf("iteration %d: expected disconnected, got %v", i, state)
		}
		if tr.ReconnectPending() {
			t.Fatalf("iteration %d: expected no reconnect pending", i)
		}
		for _, ch := range opener.channels[1:] {
			if !ch.closed {
				t.Fatalf("iteration %d: reconnect channel left open", i)
			}
		}
	}
}

// TestDisconnect_ClosesOpenChannel verifies disconnect closes without rescheduling.
func TestDisconnect_ClosesOpenChannel(t *testing.T) {
	tr, opener, clock, changes := newTestTransport()
	tr.Connect("ws://localhost/ws")
	ch := opener.last()
	ch.open()
	tr.Disconnect()

	if !ch.closed {
		t.Fatalf("expected channel closed")
	}
	if clock.pending() != 0 {
		t.Fatalf("expected no reconnect timer, got %d", clock.pending())
	}
	if last := (*changes)[len(*changes)-1]; last != (stateChange{StateDisconnected, StatusDisconnected}) {
		t.Fatalf("expected disconnected, got %#v", last)
	}
}

// TestConnect_ReplacesStaleChannel verifies events from a replaced channel are ignored.
func TestConnect_ReplacesStaleChannel(t *testing.T) {
	tr, opener, clock, _ := newTestTransport()
	tr.Connect("ws://a/ws")
	first := opener.last()
	tr.Connect("ws://b/ws")
	second := opener.last()

	if !first.closed {
		t.Fatalf("expected first channel closed")
	}
	first.open()
	if state, _ := tr.State(); state != StateConnecting {
		t.Fatalf("stale open must be ignored, got %v", state)
	}
	second.open()
	if state, _ := tr.State(); state != StateConnected {
		t.Fatalf("expected connected, got %v", state)
	}
	if clock.pending() != 0 {
		t.Fatalf("stale close must not schedule reconnect")
	}
	if tr.URL() != "ws://b/ws" {
		t.Fatalf("expected url b, got %s", tr.URL())
	}
}

// TestStateString verifies state names.
func TestStateString(t *testing.T) {
	if StateConnected.String() != "connected" || StateConnecting.String() != "connecting" || StateDisconnected.String() != "disconnected" {
		t.Fatalf("unexpected state names")
	}
}
