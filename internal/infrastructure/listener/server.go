package listener

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/bridgeport/bridgeport-go/internal/application/service"
	"github.com/bridgeport/bridgeport-go/internal/domain/model"
	"github.com/bridgeport/bridgeport-go/internal/domain/port"
)

// Server is the HTTPS front door. Every request except preflights and the
// manifest document is forwarded through the bridge; the handler stays
// suspended until the peer's reply resolves it or the deadline elapses, and
// the caller always receives a response.
type Server struct {
	config     *model.Config
	bridge     *service.BridgeService
	logger     port.Logger
	httpServer *http.Server
}

// New builds the server and its router
func New(config *model.Config, bridge *service.BridgeService, logger port.Logger) *Server {
	s := &Server{
		config: config,
		bridge: bridge,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(corsHeaders)
	r.Use(s.requestLogger)
	if config.RateLimitRPS > 0 {
		r.Use(httprate.LimitByIP(config.RateLimitRPS, time.Second))
	}
	r.Get("/manifest.json", s.handleManifest)
	r.Handle("/*", http.HandlerFunc(s.handleForward))

	s.httpServer = &http.Server{
		Addr:              config.ListenAddr,
		Handler:           r,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler exposes the router
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the TLS listener until Shutdown. A bind failure (port already
// in use, unreadable certificate) is returned to the caller and is fatal to
// the process; it is not retried here.
func (s *Server) Start() error {
	if s.config.TLSCert == "" || s.config.TLSKey == "" {
		return fmt.Errorf("TLS certificate and key are required to start the listener")
	}

	s.logger.Info("Listening on %s", s.config.ListenAddr)

	err := s.httpServer.ListenAndServeTLS(s.config.TLSCert, s.config.TLSKey)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listener failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight handlers
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// corsHeaders attaches the fixed permissive cross-origin header set to every
// response and answers preflights locally; preflights are never forwarded.
func corsHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "*")
		h.Set("Access-Control-Allow-Methods", "*")
		h.Set("Access-Control-Expose-Headers", "*")
		h.Set("Access-Control-Allow-Private-Network", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per completed request
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("%s %s -> %d (%s)", r.Method, r.URL.RequestURI(), ww.Status(), time.Since(start).Round(time.Millisecond))
	})
}
