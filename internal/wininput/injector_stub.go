//go:build !windows

// Package wininput injects host mouse and keyboard input.
package wininput

import "github.com/frudas24/remotemouse/internal/protocol"

// NoopInjector is a placeholder injector for non-Windows builds.
type NoopInjector struct{}

// NewInjector returns a non-functional injector on non-Windows platforms.
func NewInjector() (Injector, error) {
	return &NoopInjector{}, ErrUnsupported
}

// MoveRel returns ErrUnsupported.
func (n *NoopInjector) MoveRel(dx, dy int) error {
	return ErrUnsupported
}

// Click returns ErrUnsupported.
func (n *NoopInjector) Click(button protocol.Button, mods protocol.Modifier) error {
	return ErrUnsupported
}

// Scroll returns ErrUnsupported.
func (n *NoopInjector) Scroll(sx, sy int) error {
	return ErrUnsupported
}

// LeftDown returns ErrUnsupported.
func (n *NoopInjector) LeftDown() error {
	return ErrUnsupported
}

// LeftUp returns ErrUnsupported.
func (n *NoopInjector) LeftUp() error {
	return ErrUnsupported
}

// TypeUnicode returns ErrUnsupported.
func (n *NoopInjector) TypeUnicode(text string) error {
	return ErrUnsupported
}

// PressKey returns ErrUnsupported.
func (n *NoopInjector) PressKey(name string, mods protocol.Modifier) error {
	return ErrUnsupported
}
