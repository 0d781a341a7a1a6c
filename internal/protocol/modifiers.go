// Package protocol encodes and decodes the binary remote-input command stream.
package protocol

// Modifiers is a sticky modifier latch. Toggled bits stay set until the next
// Click or KeyAction takes them, so they apply to exactly one action.
// The zero value is ready to use. It is not safe for concurrent use.
type Modifiers struct {
	mask Modifier
}

// Toggle flips the given bits.
func (m *Modifiers) Toggle(bits Modifier) {
	m.mask ^= bits & ModAll
}

// Set replaces the latched mask.
func (m *Modifiers) Set(mask Modifier) {
	m.mask = mask & ModAll
}

// Peek returns the latched mask without consuming it.
func (m *Modifiers) Peek() Modifier {
	return m.mask
}

// Take returns the latched mask and clears it.
func (m *Modifiers) Take() Modifier {
	mask := m.mask
	m.mask = 0
	return mask
}
