// Package testutil provides fakes shared by package tests.
package testutil

import (
	"sync"

	"github.com/frudas24/remotemouse/internal/protocol"
	"github.com/frudas24/remotemouse/internal/wininput"
)

// Call records a single injected action.
type Call struct {
	Name   string
	X      int
	Y      int
	Button protocol.Button
	Mods   protocol.Modifier
	Text   string
}

// FakeInjector implements wininput.Injector and records calls for tests.
type FakeInjector struct {
	mu    sync.Mutex
	calls []Call
	// Err, when set, is returned by every call after it is recorded.
	Err error
}

// Ensure FakeInjector implements the interface.
var _ wininput.Injector = (*FakeInjector)(nil)

// record appends c and returns the configured error.
func (f *FakeInjector) record(c Call) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.Err
}

// Calls returns a copy of the recorded calls.
func (f *FakeInjector) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// MoveRel records a relative move.
func (f *FakeInjector) MoveRel(dx, dy int) error {
	return f.record(Call{Name: "MoveRel", X: dx, Y: dy})
}

// Click records a button click.
func (f *FakeInjector) Click(button protocol.Button, mods protocol.Modifier) error {
	return f.record(Call{Name: "Click", Button: button, Mods: mods})
}

// Scroll records a scroll delta.
func (f *FakeInjector) Scroll(sx, sy int) error {
	return f.record(Call{Name: "Scroll", X: sx, Y: sy})
}

// LeftDown records a left mouse down.
func (f *FakeInjector) LeftDown() error {
	return f.record(Call{Name: "LeftDown"})
}

// LeftUp records a left mouse up.
func (f *FakeInjector) LeftUp() error {
	return f.record(Call{Name: "LeftUp"})
}

// TypeUnicode records typed text.
func (f *FakeInjector) TypeUnicode(text string) error {
	return f.record(Call{Name: "TypeUnicode", Text: text})
}

// PressKey records a named key press.
func (f *FakeInjector) PressKey(name string, mods protocol.Modifier) error {
	return f.record(Call{Name: "PressKey", Text: name, Mods: mods})
}
