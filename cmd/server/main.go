package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/collabhub/backend/internal/config"
	"github.com/collabhub/backend/internal/handlers"
	"github.com/collabhub/backend/internal/logging"
	"github.com/collabhub/backend/internal/metrics"
	appMiddleware "github.com/collabhub/backend/internal/middleware"
	"github.com/collabhub/backend/internal/services"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Firebase backs both token verification and the default store.
	var app *firebase.App
	if cfg.AuthMode == config.AuthFirebase || cfg.StoreBackend == config.StoreFirestore {
		app, err = services.NewFirebaseApp(ctx, services.FirebaseConfig{
			ProjectID:       cfg.FirebaseProjectID,
			CredentialsJSON: cfg.FirebaseCredentialsJSON,
		})
		if err != nil {
			logger.Warn("failed to initialize Firebase app", zap.Error(err))
		}
	}

	verifier := newVerifier(ctx, cfg, app, logger)

	store, err := services.OpenBackend(ctx, cfg, app, logger)
	if err != nil {
		logger.Fatal("failed to open profile store", zap.Error(err))
	}
	defer store.Close(context.Background())

	m := metrics.New(prometheus.DefaultRegisterer)
	collaboratorHandler := handlers.NewCollaboratorHandler(store, logger, m, cfg.RequestTimeout)
	router := handlers.NewRouter(collaboratorHandler, verifier, promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Collaborator API server starting", zap.String("addr", cfg.ServerAddress))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newVerifier(ctx context.Context, cfg *config.Config, app *firebase.App, logger *zap.Logger) appMiddleware.TokenVerifier {
	switch cfg.AuthMode {
	case config.AuthJWT:
		return appMiddleware.NewJWTVerifier(cfg.JWTSecret)
	case config.AuthFirebase:
		if app == nil {
			logger.Warn("Firebase auth unavailable; bearer tokens will be rejected")
			return nil
		}
		client, err := app.Auth(ctx)
		if err != nil {
			logger.Warn("failed to initialize Firebase Auth client", zap.Error(err))
			return nil
		}
		return appMiddleware.NewFirebaseVerifier(client)
	default:
		logger.Warn("unknown auth mode; bearer tokens will be rejected", zap.String("mode", cfg.AuthMode))
		return nil
	}
}
