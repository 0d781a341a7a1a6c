// Package wininput injects host mouse and keyboard input.
package wininput

import (
	"errors"
	"strings"

	"github.com/frudas24/remotemouse/internal/protocol"
)

// ErrUnsupported indicates WinAPI input injection is not available.
var ErrUnsupported = errors.New("wininput is only supported on Windows")

// Injector defines the input operations applied by the host receiver.
type Injector interface {
	MoveRel(dx, dy int) error
	Click(button protocol.Button, mods protocol.Modifier) error
	Scroll(sx, sy int) error
	LeftDown() error
	LeftUp() error
	TypeUnicode(text string) error
	PressKey(name string, mods protocol.Modifier) error
}

// Modifier key names in press order.
const (
	KeyCtrl  = "ctrl"
	KeyShift = "shift"
	KeyAlt   = "alt"
	KeyWin   = "win"
)

var keyAliases = map[string]string{
	"cmd":        KeyWin,
	"command":    KeyWin,
	"meta":       KeyWin,
	"super":      KeyWin,
	"control":    KeyCtrl,
	"option":     KeyAlt,
	"return":     "enter",
	"esc":        "escape",
	"del":        "delete",
	"bksp":       "backspace",
	"pgup":       "pageup",
	"pgdn":       "pagedown",
	"arrowup":    "up",
	"arrowdown":  "down",
	"arrowleft":  "left",
	"arrowright": "right",
}

// NormalizeKey lowercases a key name and resolves aliases, so "Cmd", "meta"
// and "win" all name the Windows key. Single characters keep their case.
func NormalizeKey(name string) string {
	if name == " " {
		return "space"
	}
	if len([]rune(name)) == 1 {
		return name
	}
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := keyAliases[key]; ok {
		return alias
	}
	return key
}

// ModifierKeys returns the key names to hold for mask.
func ModifierKeys(mask protocol.Modifier) []string {
	var keys []string
	if mask.Has(protocol.ModCtrl) {
		keys = append(keys, KeyCtrl)
	}
	if mask.Has(protocol.ModShift) {
		keys = append(keys, KeyShift)
	}
	if mask.Has(protocol.ModAlt) {
		keys = append(keys, KeyAlt)
	}
	if mask.Has(protocol.ModMeta) {
		keys = append(keys, KeyWin)
	}
	return keys
}
