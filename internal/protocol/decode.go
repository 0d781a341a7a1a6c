// Package protocol encodes and decodes the binary remote-input command stream.
package protocol

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Decoding errors.
var (
	ErrEmptyFrame    = errors.New("protocol: empty frame")
	ErrShortFrame    = errors.New("protocol: frame too short")
	ErrUnknownOpcode = errors.New("protocol: unknown opcode")
	ErrInvalidUTF8   = errors.New("protocol: invalid utf-8 payload")
)

// int16At reads a big-endian int16 from b[0:2].
func int16At(b []byte) int {
	return int(int16(uint16(b[0])<<8 | uint16(b[1])))
}

// Decode parses a single wire message. Trailing bytes after fixed-size
// payloads are ignored; a Click without its modifier byte decodes with no modifiers.
func Decode(data []byte) (Command, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFrame
	}
	op := Opcode(data[0])
	switch op {
	case OpMove, OpScroll:
		if len(data) < MoveSize {
			return nil, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrShortFrame, op, MoveSize, len(data))
		}
		x, y := int16At(data[1:3]), int16At(data[3:5])
		if op == OpMove {
			return Move{DX: x, DY: y}, nil
		}
		return Scroll{SX: x, SY: y}, nil
	case OpClick:
		if len(data) < 2 {
			return nil, fmt.Errorf("%w: click needs at least 2 bytes", ErrShortFrame)
		}
		c := Click{Button: Button(data[1])}
		if len(data) >= ClickSize {
			c.Modifiers = Modifier(data[2])
		}
		return c, nil
	case OpDrag:
		if len(data) < DragSize {
			return nil, fmt.Errorf("%w: drag needs %d bytes", ErrShortFrame, DragSize)
		}
		return Drag{Active: DragState(data[1]) == DragStart}, nil
	case OpText:
		payload := data[1:]
		if !utf8.Valid(payload) {
			return nil, ErrInvalidUTF8
		}
		return Text{Text: string(payload)}, nil
	case OpKeyAction:
		if len(data) < 2 {
			return nil, fmt.Errorf("%w: key action needs at least 2 bytes", ErrShortFrame)
		}
		payload := data[2:]
		if !utf8.Valid(payload) {
			return nil, ErrInvalidUTF8
		}
		return KeyAction{Name: string(payload), Modifiers: Modifier(data[1])}, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownOpcode, byte(op))
	}
}
