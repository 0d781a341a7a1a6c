//go:build windows

// Package wininput injects host mouse and keyboard input.
package wininput

import (
	"github.com/frudas24/remotemouse/internal/protocol"
	"github.com/lxn/win"
)

const mouseeventfHWheel = 0x1000

// MoveRel moves the cursor by a relative offset.
func (w *WinInjector) MoveRel(dx, dy int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return sendMouseInput(win.MOUSEEVENTF_MOVE, int32(dx), int32(dy), 0)
}

// Click presses and releases button with the modifier keys held.
func (w *WinInjector) Click(button protocol.Button, mods protocol.Modifier) error {
	down, up := uint32(win.MOUSEEVENTF_LEFTDOWN), uint32(win.MOUSEEVENTF_LEFTUP)
	if button == protocol.ButtonRight {
		down, up = win.MOUSEEVENTF_RIGHTDOWN, win.MOUSEEVENTF_RIGHTUP
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return withModifiers(uint8(mods), func() error {
		if err := sendMouseInput(down, 0, 0, 0); err != nil {
			return err
		}
		return sendMouseInput(up, 0, 0, 0)
	})
}

// Scroll sends vertical then horizontal wheel deltas. Positive sy scrolls up.
func (w *WinInjector) Scroll(sx, sy int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if sy != 0 {
		if err := sendMouseInput(win.MOUSEEVENTF_WHEEL, 0, 0, uint32(int32(sy))); err != nil {
			return err
		}
	}
	if sx != 0 {
		return sendMouseInput(mouseeventfHWheel, 0, 0, uint32(int32(sx)))
	}
	return nil
}

// LeftDown presses the left mouse button.
func (w *WinInjector) LeftDown() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return sendMouseInput(win.MOUSEEVENTF_LEFTDOWN, 0, 0, 0)
}

// LeftUp releases the left mouse button.
func (w *WinInjector) LeftUp() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return sendMouseInput(win.MOUSEEVENTF_LEFTUP, 0, 0, 0)
}
