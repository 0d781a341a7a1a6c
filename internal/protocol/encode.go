// Package protocol encodes and decodes the binary remote-input command stream.
package protocol

// Sizes of the fixed-length commands.
const (
	MoveSize   = 5
	ClickSize  = 3
	ScrollSize = 5
	DragSize   = 2
)

// putInt16 writes v big-endian into b[0:2].
func putInt16(b []byte, v int16) {
	b[0] = byte(uint16(v) >> 8)
	b[1] = byte(uint16(v))
}

// EncodeMove returns a Move command. Deltas outside int16 saturate.
func EncodeMove(dx, dy int) []byte {
	buf := make([]byte, MoveSize)
	buf[0] = byte(OpMove)
	putInt16(buf[1:3], clampInt16(dx))
	putInt16(buf[3:5], clampInt16(dy))
	return buf
}

// EncodeClick returns a Click command.
func EncodeClick(button Button, mods Modifier) []byte {
	return []byte{byte(OpClick), byte(button), byte(mods)}
}

// EncodeScroll returns a Scroll command. Deltas outside int16 saturate.
func EncodeScroll(sx, sy int) []byte {
	buf := make([]byte, ScrollSize)
	buf[0] = byte(OpScroll)
	putInt16(buf[1:3], clampInt16(sx))
	putInt16(buf[3:5], clampInt16(sy))
	return buf
}

// EncodeDrag returns a Drag command.
func EncodeDrag(active bool) []byte {
	state := DragEnd
	if active {
		state = DragStart
	}
	return []byte{byte(OpDrag), byte(state)}
}

// EncodeText returns a Text command carrying text as UTF-8.
func EncodeText(text string) []byte {
	buf := make([]byte, 0, 1+len(text))
	buf = append(buf, byte(OpText))
	return append(buf, text...)
}

// EncodeKeyAction returns a KeyAction command for the named key.
func EncodeKeyAction(name string, mods Modifier) []byte {
	buf := make([]byte, 0, 2+len(name))
	buf = append(buf, byte(OpKeyAction), byte(mods))
	return append(buf, name...)
}
