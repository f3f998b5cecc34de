package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"docconv/internal/auth"
	"docconv/internal/config"
	"docconv/internal/domain/services"
	"docconv/internal/formats"
	"docconv/internal/handler"
	"docconv/internal/middleware"
	"docconv/internal/service/conversion"

	"github.com/rs/cors"
)

// shutdownGrace is added to the conversion timeout when draining requests
const shutdownGrace = 5 * time.Second

// Dependencies are the collaborators the HTTP routes need
type Dependencies struct {
	Converter services.Converter
	Formats   *formats.Registry
	// Verifier is nil when authentication is disabled
	Verifier auth.JWTVerifier
}

// Server is the HTTP front end of the conversion service
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	http     *http.Server
	verifier auth.JWTVerifier
}

// New wires the conversion service, format catalog and optional JWT verifier
// into an HTTP server.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	registry, err := formats.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load format catalog: %w", err)
	}

	var verifier auth.JWTVerifier
	if cfg.AuthJWKSURL != "" {
		verifier, err = auth.NewJWTVerifier(cfg.AuthJWKSURL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create JWT verifier: %w", err)
		}
	} else {
		logger.Warn("authentication disabled, AUTH_JWKS_URL is not set")
	}

	converter := conversion.NewService(conversion.ConfigFrom(cfg), logger)

	deps := Dependencies{
		Converter: converter,
		Formats:   registry,
		Verifier:  verifier,
	}

	return &Server{
		cfg:      cfg,
		logger:   logger,
		verifier: verifier,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           NewHandler(cfg, logger, deps),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       60 * time.Second,
		},
	}, nil
}

// NewHandler builds the routes and the middleware chain.
func NewHandler(cfg *config.Config, logger *slog.Logger, deps Dependencies) http.Handler {
	convertHandler := handler.NewConvertHandler(deps.Converter, cfg, deps.Formats, logger)
	formatsHandler := handler.NewFormatsHandler(cfg, deps.Formats, logger)
	healthHandler := handler.NewHealthHandler(deps.Converter, logger)

	// Go 1.22+ enhanced patterns
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.HealthCheck)

	mux.HandleFunc("GET /{$}", convertHandler.Index)
	mux.HandleFunc("GET /v1/convert", convertHandler.Form)
	mux.HandleFunc("POST /v1/convert", convertHandler.Convert)
	mux.HandleFunc("GET /v1/formats", formatsHandler.ListFormats)

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestLogger → Recovery → Auth → Routes
	var h http.Handler = mux
	h = middleware.AuthMiddleware(deps.Verifier, logger, "/health")(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   splitOrigins(cfg.CORSOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: !allowsAnyOrigin(cfg.CORSOrigins),
	})
	return corsHandler.Handler(h)
}

// Run serves until ctx is canceled, then drains in-flight conversions.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer func() {
		if s.verifier != nil {
			s.verifier.Close()
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ConversionTimeout+shutdownGrace)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// allowsAnyOrigin reports a "*" entry; credentials cannot be combined with it.
func allowsAnyOrigin(s string) bool {
	for _, o := range splitOrigins(s) {
		if o == "*" {
			return true
		}
	}
	return false
}
