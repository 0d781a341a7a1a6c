// Package main runs the remotemouse touchpad and host processes.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/frudas24/remotemouse/internal/config"
	"github.com/frudas24/remotemouse/internal/control"
	"github.com/frudas24/remotemouse/internal/discovery"
	"github.com/frudas24/remotemouse/internal/dispatch"
	"github.com/frudas24/remotemouse/internal/protocol"
	"github.com/frudas24/remotemouse/internal/session"
	"github.com/frudas24/remotemouse/internal/transport"
	"github.com/spf13/cobra"
)

// replayCmd feeds recorded control messages through the gesture pipeline.
func replayCmd() *cobra.Command {
	var (
		hostURL string
		delay   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Replay JSON-lines control messages and print or send the resulting commands",
		Long: `Replay reads one control message per line ("-" for stdin), runs it through the
gesture classifier and dispatcher, and prints every encoded command. With --host
the commands are sent to a running host instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeIn, err := openInput(args[0])
			if err != nil {
				return err
			}
			defer closeIn()
			return runReplay(contextOrBackground(cmd.Context()), in, cmd.OutOrStdout(), hostURL, delay)
		},
	}
	cmd.Flags().StringVar(&hostURL, "host", "", "Send commands to this host websocket URL instead of printing them")
	cmd.Flags().DurationVar(&delay, "delay", 0, "Pause between messages")
	return cmd
}

// openInput opens path or stdin for "-".
func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open replay file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// runReplay drives a pad from in and routes commands to out or to hostURL.
func runReplay(ctx context.Context, in io.Reader, out io.Writer, hostURL string, delay time.Duration) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.Default()

	var sender dispatch.Sender = printSender{out: out}
	if hostURL != "" {
		connected := make(chan struct{}, 1)
		tr := transport.New(transport.Options{
			Opener: &transport.WSOpener{
				PingInterval: cfg.PingInterval(),
				PongWait:     cfg.PongWait(),
				Resolver:     &discovery.Resolver{Logger: logger},
			},
			ReconnectDelay: cfg.ReconnectDelay(),
			Logger:         logger.With("component", "transport"),
			OnStateChange: func(state transport.State, status string) {
				if state == transport.StateConnected {
					select {
					case connected <- struct{}{}:
					default:
					}
				}
			},
		})
		tr.Connect(hostURL)
		defer tr.Disconnect()
		select {
		case <-connected:
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Second):
			return fmt.Errorf("replay: could not connect to %s", hostURL)
		}
		sender = tr
	}

	sess := session.New(hostURL)
	sess.SetSensitivity(cfg.Sensitivity)
	sess.SetScrollSensitivity(cfg.ScrollSensitivity)
	sess.SetStripSensitivity(cfg.StripSensitivity)
	d := dispatch.New(sender, dispatch.Options{Logger: logger.With("component", "dispatch")})
	pad := control.NewPad(sess, d)

	n, err := control.Replay(ctx, in, pad, control.ReplayOptions{
		Delay:     delay,
		AfterEach: func() { d.Flush() },
	})
	d.Drain()
	logger.Info("replay finished", "messages", n)
	return err
}

// printSender writes each command as opcode name, hex bytes and decoded form.
type printSender struct {
	out io.Writer
}

// Send prints one command.
func (p printSender) Send(data []byte) {
	cmd, err := protocol.Decode(data)
	if err != nil {
		fmt.Fprintf(p.out, "% x\t<%v>\n", data, err)
		return
	}
	fmt.Fprintf(p.out, "%-10s % x\t%+v\n", cmd.Op(), data, cmd)
}
