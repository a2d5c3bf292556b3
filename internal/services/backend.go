package services

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"

	"github.com/collabhub/backend/internal/config"
)

// OpenBackend opens the store selected by cfg.StoreBackend. app is only used
// for the Firestore backend and may be nil otherwise.
func OpenBackend(ctx context.Context, cfg *config.Config, app *firebase.App, logger *zap.Logger) (Backend, error) {
	switch cfg.StoreBackend {
	case config.StoreFirestore:
		if app == nil {
			return nil, fmt.Errorf("firestore backend requires a firebase app")
		}
		store, err := NewFirestoreProfileStore(ctx, app)
		if err != nil {
			return nil, fmt.Errorf("open firestore: %w", err)
		}
		logger.Info("Firestore connected (profiles)", zap.String("project", cfg.FirebaseProjectID))
		return store, nil
	case config.StoreMongo:
		store, err := NewMongoProfileStore(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("open mongo: %w", err)
		}
		logger.Info("MongoDB connected (profiles)", zap.String("db", cfg.MongoDB))
		return store, nil
	case config.StoreFile:
		store, err := NewFileProfileStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		logger.Info("File store opened (profiles)", zap.String("dir", cfg.DataDir))
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
