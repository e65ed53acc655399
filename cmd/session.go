package cmd

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"ipm-quickstart/config"
	"ipm-quickstart/messaging/loopback"
	"ipm-quickstart/screen"
	"ipm-quickstart/token"
	"ipm-quickstart/tokenserver"
)

// session is the wiring shared by the interactive and headless commands.
type session struct {
	cfg      *config.Config
	log      zerolog.Logger
	deviceID string
	backend  *loopback.Backend
	loop     *screen.Loop
}

func newSession(cfg *config.Config, log zerolog.Logger) (*session, error) {
	id, err := config.NewDeviceStore(cfg.DeviceFile).DeviceID()
	if err != nil {
		return nil, fmt.Errorf("failed to load device id: %w", err)
	}
	return &session{
		cfg:      cfg,
		log:      log,
		deviceID: id.String(),
		backend:  loopback.New(loopback.WithLogger(log.With().Str("component", "loopback").Logger())),
		loop:     screen.NewLoop(),
	}, nil
}

func issuerConfig(cfg config.TokenServerConfig) tokenserver.IssuerConfig {
	return tokenserver.IssuerConfig{
		Secret: cfg.Secret,
		Issuer: cfg.Issuer,
		TTL:    cfg.TTL,
	}
}

// tokenURL returns the configured token URL. When none is set it starts an
// embedded token server on a loopback port, served on g until ctx ends.
func (s *session) tokenURL(ctx context.Context, g *errgroup.Group) (string, error) {
	if s.cfg.TokenURL != "" {
		return s.cfg.TokenURL, nil
	}

	issuer, err := tokenserver.NewIssuer(issuerConfig(s.cfg.TokenServer))
	if err != nil {
		return "", fmt.Errorf("failed to create token issuer: %w", err)
	}
	log := s.log.With().Str("component", "tokenserver").Logger()
	srv := tokenserver.New(issuer, tokenserver.WithLogger(log))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to start embedded token server: %w", err)
	}
	log.Debug().Str("addr", ln.Addr().String()).Msg("embedded token server listening")
	g.Go(func() error {
		return srv.Serve(ctx, ln)
	})
	return "http://" + ln.Addr().String(), nil
}

// runLoop runs the main loop on g until the returned stop func is called.
func (s *session) runLoop(g *errgroup.Group) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	g.Go(func() error {
		s.loop.Run(ctx)
		return nil
	})
	return cancel
}

func (s *session) newScreen(url string, opts screen.Options) *screen.Screen {
	opts.Fetcher = token.NewFetcher(url, s.cfg.RequestTimeout,
		token.WithLogger(s.log.With().Str("component", "token").Logger()))
	opts.DeviceID = s.deviceID
	opts.Connector = s.backend
	opts.Channel = s.cfg.Channel
	opts.Layout = s.cfg.Layout
	opts.Log = s.log.With().Str("component", "screen").Logger()
	return screen.New(s.loop, opts)
}

// closeScreen gives Close a bounded amount of time on the loop.
func closeScreen(s *screen.Screen, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("screen did not close cleanly")
	}
}
