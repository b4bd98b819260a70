package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"eval-platform/backend/internal/anomaly"
	"eval-platform/backend/internal/audit"
	audithandler "eval-platform/backend/internal/audit/handler"
	auditrepo "eval-platform/backend/internal/audit/repository"
	"eval-platform/backend/internal/config"
	"eval-platform/backend/internal/db"
	"eval-platform/backend/internal/health"
	identityhandler "eval-platform/backend/internal/identity/handler"
	identityservice "eval-platform/backend/internal/identity/service"
	"eval-platform/backend/internal/security"
	"eval-platform/backend/internal/server"
	"eval-platform/backend/internal/server/middleware"
	sessionhandler "eval-platform/backend/internal/session/handler"
	sessionrepo "eval-platform/backend/internal/session/repository"
	sessionservice "eval-platform/backend/internal/session/service"
	"eval-platform/backend/internal/telemetry"
	userhandler "eval-platform/backend/internal/user/handler"
	userrepo "eval-platform/backend/internal/user/repository"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config")
	}
	if cfg.Env == "development" {
		log.SetFormatter(&logrus.TextFormatter{})
		log.SetLevel(logrus.DebugLevel)
	}

	ctx := context.Background()
	shutdownTracing, err := telemetry.Init(ctx, "eval-platform-auth", cfg.OTLPEndpoint)
	if err != nil {
		log.WithError(err).Fatal("telemetry")
	}

	pool, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("database")
	}
	defer pool.Close()

	tokens := security.NewTokenProvider([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.AccessTTL(), cfg.RefreshTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	sessions := sessionrepo.NewPostgresRepository(pool)
	users := userrepo.NewPostgresRepository(pool)
	audits := auditrepo.NewPostgresRepository(pool)
	recorder := audit.NewRecorder(audits, log)

	detector := anomaly.NewDetector(sessions, recorder, log,
		cfg.MaxConcurrentSessions, cfg.TravelWindow())

	authSvc := identityservice.NewAuthService(users, sessions, detector, recorder,
		hasher, tokens, cfg.MaxLifetime(), cfg.AccessTTL(), log)
	sessionSvc := sessionservice.NewService(sessionservice.NewPostgresScope(pool), recorder, log)

	gate := middleware.NewGate(tokens, sessions, cfg.PersistenceTimeout(), log)

	router := server.NewRouter(server.Deps{
		Gate:     gate,
		Auth:     identityhandler.NewHTTP(authSvc, log),
		Sessions: sessionhandler.NewHTTP(sessionSvc, log),
		Users:    userhandler.NewHTTP(users, log),
		Audit:    audithandler.NewHTTP(audits, log),
		Health:   health.NewHTTP(pool),
	})

	srv := server.New(cfg.HTTPAddr, router, log)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Fatal("serve")
		}
	case <-quit:
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("shutdown")
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.WithError(err).Error("tracing shutdown")
		}
	}
}
