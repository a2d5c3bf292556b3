package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/collabhub/backend/internal/config"
	"github.com/collabhub/backend/internal/logging"
	"github.com/collabhub/backend/internal/services"
	"github.com/collabhub/backend/internal/storage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		fixturePath string
		backend     string
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load collaborator fixtures into the profile store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if backend != "" {
				cfg.StoreBackend = backend
			}

			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			var fixture services.Fixture
			src, err := storage.NewJSONStore(filepath.Dir(fixturePath), filepath.Base(fixturePath))
			if err != nil {
				return err
			}
			if err := src.Load(&fixture); err != nil {
				return fmt.Errorf("read fixture %s: %w", fixturePath, err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			var app *firebase.App
			if cfg.StoreBackend == config.StoreFirestore {
				app, err = services.NewFirebaseApp(ctx, services.FirebaseConfig{
					ProjectID:       cfg.FirebaseProjectID,
					CredentialsJSON: cfg.FirebaseCredentialsJSON,
				})
				if err != nil {
					return fmt.Errorf("init firebase: %w", err)
				}
			}

			store, err := services.OpenBackend(ctx, cfg, app, logger)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			stats, err := services.SeedFixture(ctx, store, &fixture)
			if err != nil {
				return err
			}
			logger.Info("fixture loaded",
				zap.String("backend", cfg.StoreBackend),
				zap.Int("collaborators", stats.Collaborators),
				zap.Int("certifications", stats.Certifications),
				zap.Int("endorsements", stats.Endorsements),
				zap.Int("feedbacks", stats.Feedbacks))
			return nil
		},
	}

	cmd.Flags().StringVarP(&fixturePath, "file", "f", "fixtures.json", "fixture file to load")
	cmd.Flags().StringVar(&backend, "backend", "", "override STORE_BACKEND (firestore, mongo, file)")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout")
	return cmd
}
