// Package control turns touchpad pointer events into remote input commands.
package control

import (
	"sync"

	"github.com/frudas24/remotemouse/internal/dispatch"
	"github.com/frudas24/remotemouse/internal/gesture"
	"github.com/frudas24/remotemouse/internal/protocol"
	"github.com/frudas24/remotemouse/internal/session"
)

// MaxCoordinate bounds page coordinates in CSS pixels. Pointer messages
// outside ±MaxCoordinate, or not finite, are dropped.
const MaxCoordinate = 1 << 20

// Pad feeds control messages to the gesture classifier, scroll strip and
// dispatcher in arrival order.
type Pad struct {
	mu         sync.Mutex
	session    *session.Session
	dispatcher *dispatch.Dispatcher
	classifier *gesture.Classifier
	strip      *gesture.ScrollStrip
}

// NewPad wires a classifier and strip to d and seeds them from sess.
func NewPad(sess *session.Session, d *dispatch.Dispatcher) *Pad {
	p := &Pad{
		session:    sess,
		dispatcher: d,
		classifier: gesture.NewClassifier(d),
		strip:      gesture.NewScrollStrip(d),
	}
	snap := sess.Snapshot()
	p.classifier.SetSensitivity(snap.Sensitivity)
	p.classifier.SetScrollSensitivity(snap.ScrollSensitivity)
	p.strip.SetSensitivity(snap.StripSensitivity)
	p.syncSession()
	return p
}

// Classifier exposes the classifier for tests and clock injection.
func (p *Pad) Classifier() *gesture.Classifier {
	return p.classifier
}

// Handle applies a single control message. Unknown types are ignored.
func (p *Pad) Handle(msg Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	defer p.syncSession()

	switch msg.T {
	case MsgSensitivity:
		p.classifier.SetSensitivity(msg.Value)
		return
	case MsgScrollSensitivity:
		p.classifier.SetScrollSensitivity(msg.Value)
		return
	case MsgStripSensitivity:
		p.strip.SetSensitivity(msg.Value)
		return
	case MsgInputEnabled:
		if msg.Enabled != nil {
			p.session.SetInputEnabled(*msg.Enabled)
			if !*msg.Enabled {
				p.resetLocked()
				p.dispatcher.ResetModifiers()
			}
		}
		return
	case MsgReset:
		p.resetLocked()
		return
	}

	if !p.session.InputEnabled() || !msg.plausible() {
		return
	}

	switch msg.T {
	case MsgDown:
		p.classifier.ContactStart(msg.ID, msg.X, msg.Y)
	case MsgMove:
		p.classifier.ContactMove(msg.ID, msg.X, msg.Y)
	case MsgUp:
		p.classifier.ContactEnd(msg.ID)
	case MsgCancel:
		p.classifier.ContactCancel(msg.ID)
	case MsgStripDown:
		p.strip.Down(msg.ID, msg.Y)
	case MsgStripMove:
		p.strip.Move(msg.ID, msg.Y)
	case MsgStripUp:
		p.strip.Up(msg.ID)
	case MsgText:
		p.dispatcher.OnText(msg.Text)
	case MsgKey:
		p.dispatcher.OnKeyAction(msg.Key, protocol.Modifier(msg.Mods))
	case MsgModifier:
		p.dispatcher.ToggleModifier(protocol.Modifier(msg.Mods))
	}
}

// Reset drops every contact, ending a drag in progress.
func (p *Pad) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
}

// resetLocked resets the classifier and strip.
func (p *Pad) resetLocked() {
	p.classifier.Reset()
	p.strip.Reset()
}

// syncSession copies effective settings into the session snapshot.
func (p *Pad) syncSession() {
	p.session.SetSensitivity(p.classifier.Sensitivity())
	p.session.SetScrollSensitivity(p.classifier.ScrollSensitivity())
	p.session.SetStripSensitivity(p.strip.Sensitivity())
	p.session.SetModifiers(uint8(p.dispatcher.Modifiers()))
}
