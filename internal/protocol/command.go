// Package protocol encodes and decodes the binary remote-input command stream.
package protocol

// Command is one decoded or to-be-encoded remote input command.
type Command interface {
	// Op returns the wire opcode.
	Op() Opcode
	// Encode returns the wire bytes.
	Encode() []byte
}

// Move is a relative cursor movement.
type Move struct {
	DX int
	DY int
}

// Click is a mouse button click with modifiers held.
type Click struct {
	Button    Button
	Modifiers Modifier
}

// Scroll is a relative scroll.
type Scroll struct {
	SX int
	SY int
}

// Drag starts or ends a left-button drag.
type Drag struct {
	Active bool
}

// Text is literal UTF-8 text to type.
type Text struct {
	Text string
}

// KeyAction is a named key press with modifiers held.
type KeyAction struct {
	Name      string
	Modifiers Modifier
}

// Op returns OpMove.
func (Move) Op() Opcode { return OpMove }

// Encode returns the Move wire bytes.
func (c Move) Encode() []byte { return EncodeMove(c.DX, c.DY) }

// Op returns OpClick.
func (Click) Op() Opcode { return OpClick }

// Encode returns the Click wire bytes.
func (c Click) Encode() []byte { return EncodeClick(c.Button, c.Modifiers) }

// Op returns OpScroll.
func (Scroll) Op() Opcode { return OpScroll }

// Encode returns the Scroll wire bytes.
func (c Scroll) Encode() []byte { return EncodeScroll(c.SX, c.SY) }

// Op returns OpDrag.
func (Drag) Op() Opcode { return OpDrag }

// Encode returns the Drag wire bytes.
func (c Drag) Encode() []byte { return EncodeDrag(c.Active) }

// Op returns OpText.
func (Text) Op() Opcode { return OpText }

// Encode returns the Text wire bytes.
func (c Text) Encode() []byte { return EncodeText(c.Text) }

// Op returns OpKeyAction.
func (KeyAction) Op() Opcode { return OpKeyAction }

// Encode returns the KeyAction wire bytes.
func (c KeyAction) Encode() []byte { return EncodeKeyAction(c.Name, c.Modifiers) }
