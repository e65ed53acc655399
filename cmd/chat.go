package cmd

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ipm-quickstart/screen"
	"ipm-quickstart/tui"
)

func runChat(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The terminal belongs to the program; warnings and errors go to its
	// status bar and everything else only to --log-file.
	bridge := tui.NewBridge()
	log, closeLog, err := newLogger(nil, tui.NewLogWriter(bridge, zerolog.WarnLevel))
	if err != nil {
		return err
	}
	defer closeLog()

	sess, err := newSession(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	url, err := sess.tokenURL(ctx, g)
	if err != nil {
		return err
	}

	s := sess.newScreen(url, screen.Options{
		Chrome:     bridge,
		List:       bridge,
		Field:      bridge,
		LayoutView: bridge,
		Animator:   bridge,
	})
	p := tui.NewProgram(tui.New(s, cfg.Layout), bridge,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)

	stopLoop := sess.runLoop(g)
	g.Go(func() error {
		defer cancel()
		defer stopLoop()

		s.Load(ctx)
		_, err := p.Run()
		closeScreen(s, log)
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	return g.Wait()
}
