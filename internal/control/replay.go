// Package control turns touchpad pointer events into remote input commands.
package control

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// ReplayOptions tunes Replay.
type ReplayOptions struct {
	// Delay is slept between messages. Zero replays as fast as possible.
	Delay time.Duration
	// AfterEach runs after every handled message, e.g. to flush pending moves.
	AfterEach func()
}

// Replay feeds JSON-lines control messages from r into pad. Blank lines and
// lines starting with '#' are skipped. It returns the number of messages handled.
func Replay(ctx context.Context, r io.Reader, pad *Pad, opts ReplayOptions) (int, error) {
	sc := bufio.NewScanner(r)
	handled := 0
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 || raw[0] == '#' {
			continue
		}
		if err := ctx.Err(); err != nil {
			return handled, err
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			return handled, fmt.Errorf("replay line %d: %w", line, err)
		}
		pad.Handle(msg)
		handled++
		if opts.AfterEach != nil {
			opts.AfterEach()
		}
		if opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return handled, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
	}
	if err := sc.Err(); err != nil {
		return handled, fmt.Errorf("replay: %w", err)
	}
	return handled, nil
}
