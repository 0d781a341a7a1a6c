// Package dispatch turns classified intents into encoded commands on the transport.
package dispatch

import (
	"context"
	"math"
	"log/slog"
	"sync"
	"time"

	"github.com/frudas24/remotemouse/internal/metrics"
	"github.com/frudas24/remotemouse/internal/protocol"
)

// DefaultFrameInterval approximates one display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

// MaxPending bounds the pending move on each axis. It is sixteen full-size
// move frames; motion beyond it is discarded.
const MaxPending = 16 * math.MaxInt16

// Sender accepts encoded commands. Transport implements it.
type Sender interface {
	Send(data []byte)
}

// Options configures a Dispatcher.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Dispatcher
}

// Dispatcher coalesces moves per frame and sends every other intent immediately.
type Dispatcher struct {
	mu        sync.Mutex
	sender    Sender
	pendingDX int
	pendingDY int
	mods      protocol.Modifiers

	log     *slog.Logger
	metrics *metrics.Dispatcher
}

// New returns a dispatcher writing to sender.
func New(sender Sender, opts Options) *Dispatcher {
	d := &Dispatcher{
		sender:  sender,
		log:     opts.Logger,
		metrics: opts.Metrics,
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	return d
}

// OnMove adds a delta to the pending frame move, saturating at MaxPending.
func (d *Dispatcher) OnMove(dx, dy int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pendingDX = addPending(d.pendingDX, dx)
	d.pendingDY = addPending(d.pendingDY, dy)
	d.metrics.Coalesced()
}

// addPending returns p+delta limited to ±MaxPending. p is already in range,
// so neither bound check can overflow.
func addPending(p, delta int) int {
	if delta > MaxPending-p {
		return MaxPending
	}
	if delta < -MaxPending-p {
		return -MaxPending
	}
	return p + delta
}

// OnClick sends a click with the latched modifiers and clears them.
func (d *Dispatcher) OnClick(button protocol.Button) {
	d.mu.Lock()
	mods := d.mods.Take()
	d.mu.Unlock()
	d.send(protocol.OpClick, protocol.EncodeClick(button, mods))
}

// OnScroll sends a scroll immediately.
func (d *Dispatcher) OnScroll(sx, sy int) {
	d.send(protocol.OpScroll, protocol.EncodeScroll(sx, sy))
}

// OnDrag sends a drag start or end immediately.
func (d *Dispatcher) OnDrag(active bool) {
	d.send(protocol.OpDrag, protocol.EncodeDrag(active))
}

// OnText sends literal text. Empty text is ignored.
func (d *Dispatcher) OnText(text string) {
	if text == "" {
		return
	}
	d.send(protocol.OpText, protocol.EncodeText(text))
}

// OnKeyAction sends a named key with mods plus any latched modifiers, then
// clears the latch.
func (d *Dispatcher) OnKeyAction(name string, mods protocol.Modifier) {
	if name == "" {
		return
	}
	d.mu.Lock()
	mods |= d.mods.Take()
	d.mu.Unlock()
	d.send(protocol.OpKeyAction, protocol.EncodeKeyAction(name, mods))
}

// ToggleModifier flips latched modifier bits for the next click or key action.
func (d *Dispatcher) ToggleModifier(bits protocol.Modifier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mods.Toggle(bits)
}

// Modifiers returns the latched modifiers.
func (d *Dispatcher) Modifiers() protocol.Modifier {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mods.Peek()
}

// ResetModifiers clears the latch without sending anything.
func (d *Dispatcher) ResetModifiers() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mods.Set(0)
}

// Pending returns the move not yet flushed.
func (d *Dispatcher) Pending() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pendingDX, d.pendingDY
}

// Flush sends at most one move carrying the pending delta. A delta too large
// for the wire is split and the rest stays pending for the next frame.
func (d *Dispatcher) Flush() bool {
	d.mu.Lock()
	if d.pendingDX == 0 && d.pendingDY == 0 {
		d.mu.Unlock()
		return false
	}
	dx := protocol.ClampDelta(d.pendingDX)
	dy := protocol.ClampDelta(d.pendingDY)
	d.pendingDX -= dx
	d.pendingDY -= dy
	d.mu.Unlock()

	d.send(protocol.OpMove, protocol.EncodeMove(dx, dy))
	return true
}

// Drain flushes until nothing is pending and returns the number of moves sent.
func (d *Dispatcher) Drain() int {
	n := 0
	for d.Flush() {
		n++
	}
	return n
}

// Run flushes once per interval until ctx is done.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			d.Flush()
		}
	}
}

// send hands an encoded command to the sender.
func (d *Dispatcher) send(op protocol.Opcode, data []byte) {
	d.metrics.Command(op.String())
	d.log.Debug("dispatch: send", "op", op.String(), "len", len(data))
	d.sender.Send(data)
}
