// Package protocol encodes and decodes the binary remote-input command stream.
//
// Every command is a single websocket binary message: one opcode byte followed by a
// fixed payload. Multi-byte integers are big-endian and deltas are signed 16-bit.
//
//	Move      [0x01][int16 dx][int16 dy]
//	Click     [0x02][uint8 button][uint8 modifiers]
//	Scroll    [0x03][int16 sx][int16 sy]
//	Drag      [0x04][uint8 state]
//	Text      [0x05][utf8...]
//	KeyAction [0x06][uint8 modifiers][utf8 key name...]
package protocol

import "math"

// Opcode identifies a command on the wire.
type Opcode byte

const (
	// OpMove moves the cursor by a relative delta.
	OpMove Opcode = 0x01
	// OpClick clicks a mouse button.
	OpClick Opcode = 0x02
	// OpScroll scrolls by a relative delta.
	OpScroll Opcode = 0x03
	// OpDrag starts or ends a left-button drag.
	OpDrag Opcode = 0x04
	// OpText types UTF-8 text.
	OpText Opcode = 0x05
	// OpKeyAction presses a named key.
	OpKeyAction Opcode = 0x06
)

// String returns a short lowercase name for the opcode.
func (o Opcode) String() string {
	switch o {
	case OpMove:
		return "move"
	case OpClick:
		return "click"
	case OpScroll:
		return "scroll"
	case OpDrag:
		return "drag"
	case OpText:
		return "text"
	case OpKeyAction:
		return "key"
	default:
		return "unknown"
	}
}

// Button identifies a mouse button. The values do not relate to opcodes.
type Button uint8

const (
	// ButtonLeft is the primary button.
	ButtonLeft Button = 1
	// ButtonRight is the secondary button.
	ButtonRight Button = 2
)

// String returns the button name.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	default:
		return "unknown"
	}
}

// Modifier is a bitmask of held modifier keys.
type Modifier uint8

const (
	// ModCtrl is the Control key.
	ModCtrl Modifier = 1
	// ModShift is the Shift key.
	ModShift Modifier = 2
	// ModAlt is the Alt/Option key.
	ModAlt Modifier = 4
	// ModMeta is the Windows/Command key.
	ModMeta Modifier = 8
)

// ModAll covers every defined modifier bit.
const ModAll = ModCtrl | ModShift | ModAlt | ModMeta

// Has reports whether all bits of m2 are set in m.
func (m Modifier) Has(m2 Modifier) bool {
	return m&m2 == m2
}

// Names returns the names of the set modifiers in ctrl, shift, alt, meta order.
func (m Modifier) Names() []string {
	var out []string
	if m.Has(ModCtrl) {
		out = append(out, "ctrl")
	}
	if m.Has(ModShift) {
		out = append(out, "shift")
	}
	if m.Has(ModAlt) {
		out = append(out, "alt")
	}
	if m.Has(ModMeta) {
		out = append(out, "meta")
	}
	return out
}

// DragState is the payload byte of a Drag command.
type DragState uint8

const (
	// DragEnd releases the drag button.
	DragEnd DragState = 0
	// DragStart presses the drag button.
	DragStart DragState = 1
)

// clampInt16 saturates v into the int16 range.
func clampInt16(v int) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// ClampDelta saturates v into the range representable by a wire delta.
func ClampDelta(v int) int {
	return int(clampInt16(v))
}
