// Package testutil provides fakes shared by package tests.
package testutil

import (
	"sync"

	"github.com/frudas24/remotemouse/internal/protocol"
)

// RecordingSender captures encoded commands passed to Send.
type RecordingSender struct {
	mu   sync.Mutex
	sent [][]byte
}

// Send records a copy of data.
func (r *RecordingSender) Send(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, append([]byte(nil), data...))
}

// Sent returns the raw frames in send order.
func (r *RecordingSender) Sent() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.sent...)
}

// Commands decodes every recorded frame. Undecodable frames are skipped.
func (r *RecordingSender) Commands() []protocol.Command {
	var out []protocol.Command
	for _, frame := range r.Sent() {
		cmd, err := protocol.Decode(frame)
		if err != nil {
			continue
		}
		out = append(out, cmd)
	}
	return out
}
