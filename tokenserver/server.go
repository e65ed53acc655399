// Package tokenserver is a development token endpoint compatible with the
// quickstart client: GET /token.php?device=<id> returns an identity and a
// signed access token for it.
package tokenserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Response is the JSON body of a successful token request.
type Response struct {
	Identity string `json:"identity"`
	Token    string `json:"token"`
}

type Server struct {
	issuer   *Issuer
	names    NameFunc
	log      zerolog.Logger
	registry *prometheus.Registry
	metrics  *metrics
	router   chi.Router
}

type Option func(*Server)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithNames replaces the random identity generator.
func WithNames(names NameFunc) Option {
	return func(s *Server) { s.names = names }
}

func New(issuer *Issuer, opts ...Option) *Server {
	s := &Server{
		issuer:   issuer,
		names:    RandomName,
		log:      zerolog.Nop(),
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics = newMetrics(s.registry)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Get("/token.php", s.handleToken)
	r.Get("/token", s.handleToken)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	device := r.URL.Query().Get("device")
	if device == "" {
		s.metrics.tokensIssued.WithLabelValues("rejected").Inc()
		http.Error(w, "missing device parameter", http.StatusBadRequest)
		return
	}

	identity := s.names()
	token, err := s.issuer.Issue(identity, device)
	if err != nil {
		s.metrics.tokensIssued.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Str("device", device).Msg("failed to sign token")
		http.Error(w, "failed to issue token", http.StatusInternalServerError)
		return
	}
	s.metrics.tokensIssued.WithLabelValues("issued").Inc()
	s.log.Info().Str("identity", identity).Str("device", device).Msg("issued token")

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Response{Identity: identity, Token: token})
}

// observe logs each request and records its latency.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)
		s.metrics.requestDuration.WithLabelValues(route, strconv.Itoa(ww.Status())).Observe(elapsed.Seconds())
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", elapsed).
			Msg("request")
	})
}

// Serve runs until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.log.Info().Str("addr", ln.Addr().String()).Msg("token server listening")
	return s.Serve(ctx, ln)
}
