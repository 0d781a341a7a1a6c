//go:build windows

// Package wininput injects host mouse and keyboard input.
package wininput

import (
	"sync"

	"github.com/lxn/win"
)

// WinInjector injects mouse and keyboard input using WinAPI.
type WinInjector struct {
	mu sync.Mutex
}

// NewInjector returns a Windows input injector.
func NewInjector() (Injector, error) {
	return &WinInjector{}, nil
}

// sendMouseInput dispatches a single mouse input event.
func sendMouseInput(flags uint32, dx, dy int32, data uint32) error {
	input := win.INPUT{
		Type: win.INPUT_MOUSE,
		Mi: win.MOUSEINPUT{
			Dx:        dx,
			Dy:        dy,
			MouseData: data,
			DwFlags:   flags,
		},
	}
	if win.SendInput(1, &input, int32(sizeofInput)) != 1 {
		return win.GetLastError()
	}
	return nil
}

// sendKeyboardInput dispatches a single keyboard input event.
func sendKeyboardInput(key win.KEYBDINPUT) error {
	input := win.INPUT{
		Type: win.INPUT_KEYBOARD,
		Ki:   key,
	}
	if win.SendInput(1, &input, int32(sizeofInput)) != 1 {
		return win.GetLastError()
	}
	return nil
}

// withModifiers holds the keys for mask while fn runs and always releases them.
func withModifiers(mask uint8, fn func() error) error {
	var held []uint16
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			_ = sendKeyboardInput(win.KEYBDINPUT{WVk: held[i], DwFlags: win.KEYEVENTF_KEYUP})
		}
	}()
	for _, vk := range modifierVKs(mask) {
		if err := sendKeyboardInput(win.KEYBDINPUT{WVk: vk}); err != nil {
			return err
		}
		held = append(held, vk)
	}
	return fn()
}

var sizeofInput = uintptr(win.SizeofINPUT)
