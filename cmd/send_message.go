package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ipm-quickstart/messaging/loopback"
	"ipm-quickstart/notifier"
	"ipm-quickstart/screen"
)

var errChannelFailed = errors.New("channel could not be created")

func newSendMessageCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "send <text>",
		Short: "Join the shared channel, send one message and print the channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := args[0]

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log, closeLog, err := newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			sess, err := newSession(cfg, log)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			g, ctx := errgroup.WithContext(ctx)
			serveCtx, stopServe := context.WithCancel(ctx)
			defer stopServe()

			url, err := sess.tokenURL(serveCtx, g)
			if err != nil {
				return err
			}
			stopLoop := sess.runLoop(g)
			s := sess.newScreen(url, screen.Options{})

			g.Go(func() error {
				defer stopServe()
				defer stopLoop()
				defer closeScreen(s, log)
				return sendOnce(ctx, s, sess.backend, text, cmd.OutOrStdout())
			})
			return g.Wait()
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Give up if the message is not delivered in time")
	return cmd
}

// sendOnce loads s, waits until the shared channel is joined, sends text and
// prints the channel once the message comes back.
func sendOnce(ctx context.Context, s *screen.Screen, backend *loopback.Backend, text string, out io.Writer) error {
	s.Load(ctx)

	snap, err := waitSnapshot(ctx, s, func(snap screen.Snapshot) bool {
		return snap.Channel.Status() == screen.ChannelFailed || joined(snap, backend)
	})
	if err != nil {
		return fmt.Errorf("channel not joined: %w", err)
	}
	if snap.Channel.Status() == screen.ChannelFailed {
		return fmt.Errorf("%w: %w", errChannelFailed, snap.Channel.Err())
	}

	s.Submit(text)
	snap, err = waitSnapshot(ctx, s, func(snap screen.Snapshot) bool {
		return len(snap.Messages) > 0
	})
	if err != nil {
		return fmt.Errorf("message not delivered: %w", err)
	}

	fmt.Fprintln(out, snap.Prompt)
	notifier.PrintRows(out, snap.Rows)
	return nil
}

func joined(snap screen.Snapshot, backend *loopback.Backend) bool {
	ch, ok := snap.Channel.Resolved()
	if !ok {
		return false
	}
	for _, info := range backend.Channels() {
		if info.SID == ch.SID() {
			return info.Members > 0
		}
	}
	return false
}

func waitSnapshot(ctx context.Context, s *screen.Screen, cond func(screen.Snapshot) bool) (screen.Snapshot, error) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		snap, err := s.Snapshot(ctx)
		if err != nil {
			return snap, err
		}
		if cond(snap) {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-ticker.C:
		}
	}
}
