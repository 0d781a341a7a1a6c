// Package gesture classifies multi-touch pointer input into trackpad intents.
package gesture

import (
	"math"
	"time"

	"github.com/frudas24/remotemouse/internal/protocol"
)

const (
	// DefaultSensitivity scales one- and three-finger motion.
	DefaultSensitivity = 2.0
	// DefaultScrollSensitivity scales two-finger scroll motion.
	DefaultScrollSensitivity = 1.0

	// RightClickCooldown suppresses a left tap right after a two-finger tap.
	RightClickCooldown = 300 * time.Millisecond

	moveThreshold = 1.0
	dragContacts  = 3
)

// Listener receives classified intents in arrival order.
type Listener interface {
	OnMove(dx, dy int)
	OnClick(button protocol.Button)
	OnScroll(sx, sy int)
	OnDrag(active bool)
}

// contact is the last known position of one finger.
type contact struct {
	x float64
	y float64
}

// Classifier tracks active contacts and turns their motion into intents.
// It is not safe for concurrent use; feed it from a single goroutine.
type Classifier struct {
	listener Listener

	order    []int
	contacts map[int]*contact

	move   accumulator
	scroll accumulator

	sensitivity       float64
	scrollSensitivity float64

	hasMoved       bool
	dragging       bool
	lastRightClick time.Time

	now func() time.Time
}

// NewClassifier returns a classifier reporting to l with default sensitivities.
func NewClassifier(l Listener) *Classifier {
	return &Classifier{
		listener:          l,
		contacts:          make(map[int]*contact, 4),
		sensitivity:       DefaultSensitivity,
		scrollSensitivity: DefaultScrollSensitivity,
		now:               time.Now,
	}
}

// SetNowFunc overrides the clock used for the right-click cooldown.
func (c *Classifier) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		c.now = fn
	}
}

// SetSensitivity sets the move/drag multiplier. Values <= 0 are ignored.
func (c *Classifier) SetSensitivity(v float64) {
	if validMultiplier(v) {
		c.sensitivity = v
	}
}

// SetScrollSensitivity sets the two-finger scroll multiplier. Values <= 0 are ignored.
func (c *Classifier) SetScrollSensitivity(v float64) {
	if validMultiplier(v) {
		c.scrollSensitivity = v
	}
}

// Sensitivity returns the move/drag multiplier.
func (c *Classifier) Sensitivity() float64 {
	return c.sensitivity
}

// ScrollSensitivity returns the scroll multiplier.
func (c *Classifier) ScrollSensitivity() float64 {
	return c.scrollSensitivity
}

// Active returns the number of tracked contacts.
func (c *Classifier) Active() int {
	return len(c.order)
}

// Dragging reports whether a three-finger drag is in progress.
func (c *Classifier) Dragging() bool {
	return c.dragging
}

// ContactStart registers a new finger. Non-finite coordinates are ignored.
func (c *Classifier) ContactStart(id int, x, y float64) {
	if !finite(x) || !finite(y) {
		return
	}
	if _, ok := c.contacts[id]; ok {
		// A repeated start re-anchors the contact without changing the set.
		c.contacts[id] = &contact{x: x, y: y}
		return
	}
	if len(c.order) == 0 {
		c.hasMoved = false
	}
	c.contacts[id] = &contact{x: x, y: y}
	c.order = append(c.order, id)
	c.move.reset()
	c.scroll.reset()

	if len(c.order) == dragContacts {
		c.dragging = true
		c.listener.OnDrag(true)
	}
}

// ContactMove updates a finger position and emits motion for the active tier.
// Non-finite coordinates are ignored.
func (c *Classifier) ContactMove(id int, x, y float64) {
	p, ok := c.contacts[id]
	if !ok || !finite(x) || !finite(y) {
		return
	}
	rawDx := x - p.x
	rawDy := y - p.y
	p.x = x
	p.y = y

	if math.Abs(rawDx) > moveThreshold || math.Abs(rawDy) > moveThreshold {
		c.hasMoved = true
	}

	switch len(c.order) {
	case 1, dragContacts:
		if sx, sy := c.move.step(rawDx, rawDy, c.sensitivity); sx != 0 || sy != 0 {
			c.listener.OnMove(sx, sy)
		}
	case 2:
		// Only the first finger drives scrolling so both fingers do not double count.
		if id != c.order[0] {
			return
		}
		if sx, sy := c.scroll.step(rawDx, rawDy, c.scrollSensitivity); sx != 0 || sy != 0 {
			c.listener.OnScroll(sx, sy)
		}
	}
}

// ContactEnd removes a finger that was lifted, emitting taps where they apply.
func (c *Classifier) ContactEnd(id int) {
	c.release(id, true)
}

// ContactCancel removes a finger whose gesture was interrupted. It never clicks.
func (c *Classifier) ContactCancel(id int) {
	c.release(id, false)
}

// Reset drops every contact, as when the surface loses visibility.
func (c *Classifier) Reset() {
	c.order = c.order[:0]
	clear(c.contacts)
	c.move.reset()
	c.scroll.reset()
	if c.dragging {
		c.dragging = false
		c.listener.OnDrag(false)
	}
}

// release removes id and applies tap and drag-end rules.
func (c *Classifier) release(id int, genuine bool) {
	if _, ok := c.contacts[id]; !ok {
		return
	}
	before := len(c.order)

	if genuine {
		now := c.now()
		switch before {
		case 1:
			if !c.hasMoved && !c.dragging && now.Sub(c.lastRightClick) > RightClickCooldown {
				c.listener.OnClick(protocol.ButtonLeft)
			}
		case 2:
			if !c.hasMoved {
				c.listener.OnClick(protocol.ButtonRight)
				c.lastRightClick = now
			}
		}
	}

	if c.dragging && before-1 < dragContacts {
		c.dragging = false
		c.listener.OnDrag(false)
	}

	delete(c.contacts, id)
	c.order = removeID(c.order, id)
}

// removeID deletes id from order preserving insertion order.
func removeID(order []int, id int) []int {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}

// validMultiplier reports whether v is a usable positive finite multiplier.
func validMultiplier(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
