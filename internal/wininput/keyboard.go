//go:build windows

// Package wininput injects host mouse and keyboard input.
package wininput

import (
	"fmt"
	"unicode"
	"unicode/utf16"

	"github.com/frudas24/remotemouse/internal/protocol"
	"github.com/lxn/win"
)

var namedVKs = map[string]uint16{
	KeyCtrl:     win.VK_CONTROL,
	KeyShift:    win.VK_SHIFT,
	KeyAlt:      win.VK_MENU,
	KeyWin:      win.VK_LWIN,
	"enter":     win.VK_RETURN,
	"backspace": win.VK_BACK,
	"tab":       win.VK_TAB,
	"escape":    win.VK_ESCAPE,
	"space":     win.VK_SPACE,
	"delete":    win.VK_DELETE,
	"insert":    win.VK_INSERT,
	"home":      win.VK_HOME,
	"end":       win.VK_END,
	"pageup":    win.VK_PRIOR,
	"pagedown":  win.VK_NEXT,
	"left":      win.VK_LEFT,
	"up":        win.VK_UP,
	"right":     win.VK_RIGHT,
	"down":      win.VK_DOWN,
	"f1":        win.VK_F1,
	"f2":        win.VK_F2,
	"f3":        win.VK_F3,
	"f4":        win.VK_F4,
	"f5":        win.VK_F5,
	"f6":        win.VK_F6,
	"f7":        win.VK_F7,
	"f8":        win.VK_F8,
	"f9":        win.VK_F9,
	"f10":       win.VK_F10,
	"f11":       win.VK_F11,
	"f12":       win.VK_F12,
}

// modifierVKs returns the virtual keys to hold for mask.
func modifierVKs(mask uint8) []uint16 {
	names := ModifierKeys(protocol.Modifier(mask))
	vks := make([]uint16, 0, len(names))
	for _, name := range names {
		vks = append(vks, namedVKs[name])
	}
	return vks
}

// virtualKey resolves a normalized key name. Letters and digits map to their
// ASCII virtual key.
func virtualKey(name string) (uint16, bool) {
	if vk, ok := namedVKs[name]; ok {
		return vk, true
	}
	r := []rune(name)
	if len(r) != 1 || r[0] > unicode.MaxASCII {
		return 0, false
	}
	c := unicode.ToUpper(r[0])
	if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
		return uint16(c), true
	}
	return 0, false
}

// PressKey taps the named key with the modifier keys held. Unmapped single
// characters are typed as Unicode.
func (w *WinInjector) PressKey(name string, mods protocol.Modifier) error {
	key := NormalizeKey(name)
	w.mu.Lock()
	defer w.mu.Unlock()
	return withModifiers(uint8(mods), func() error {
		if vk, ok := virtualKey(key); ok {
			if err := sendKeyboardInput(win.KEYBDINPUT{WVk: vk}); err != nil {
				return err
			}
			return sendKeyboardInput(win.KEYBDINPUT{WVk: vk, DwFlags: win.KEYEVENTF_KEYUP})
		}
		if len([]rune(key)) == 1 {
			return typeUnicode(key)
		}
		return fmt.Errorf("wininput: unknown key %q", name)
	})
}

// TypeUnicode types Unicode text into the focused window.
func (w *WinInjector) TypeUnicode(text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return typeUnicode(text)
}

// typeUnicode sends each UTF-16 unit as a key down/up pair.
func typeUnicode(text string) error {
	for _, code := range utf16.Encode([]rune(text)) {
		if err := sendKeyboardInput(win.KEYBDINPUT{WScan: code, DwFlags: win.KEYEVENTF_UNICODE}); err != nil {
			return err
		}
		if err := sendKeyboardInput(win.KEYBDINPUT{WScan: code, DwFlags: win.KEYEVENTF_UNICODE | win.KEYEVENTF_KEYUP}); err != nil {
			return err
		}
	}
	return nil
}
