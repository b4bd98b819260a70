// Package server assembles the HTTP surface.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	audithandler "eval-platform/backend/internal/audit/handler"
	"eval-platform/backend/internal/health"
	identityhandler "eval-platform/backend/internal/identity/handler"
	"eval-platform/backend/internal/metrics"
	"eval-platform/backend/internal/server/middleware"
	sessionhandler "eval-platform/backend/internal/session/handler"
	userhandler "eval-platform/backend/internal/user/handler"
)

// Deps holds everything the router mounts.
type Deps struct {
	Gate     *middleware.Gate
	Auth     *identityhandler.HTTP
	Sessions *sessionhandler.HTTP
	Users    *userhandler.HTTP
	Audit    *audithandler.HTTP
	Health   *health.HTTP
}

// NewRouter builds the service router: probes and metrics are unauthenticated,
// the auth flows are public, and everything else sits behind the required
// gate.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	d.Health.Register(r)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	d.Auth.RegisterPublic(r)

	r.Group(func(r chi.Router) {
		r.Use(d.Gate.Middleware(middleware.ModeRequired))
		d.Auth.RegisterProtected(r)
		d.Sessions.Register(r)
		d.Users.Register(r)
		d.Audit.Register(r)
	})

	return otelhttp.NewHandler(r, "http.server")
}

// Server runs the HTTP listener with graceful shutdown.
type Server struct {
	srv *http.Server
	log logrus.FieldLogger
}

// New returns a Server bound to addr.
func New(addr string, handler http.Handler, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Start serves until the listener closes. It returns nil on graceful
// shutdown.
func (s *Server) Start() error {
	s.log.WithField("addr", s.srv.Addr).Info("http server listening")
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
