package app

import (
	"context"
	"fmt"

	"github.com/clipvault/backend/internal/auth"
	"github.com/clipvault/backend/internal/config"
	"github.com/clipvault/backend/internal/db"
	"github.com/clipvault/backend/internal/handlers"
	"github.com/clipvault/backend/internal/repositories"
	"github.com/clipvault/backend/internal/storage"
	"github.com/clipvault/backend/internal/videos"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	users := repositories.NewPostgresUserRepository(pool)
	videoRepo := repositories.NewPostgresVideoRepository(pool)
	sessionStore := repositories.NewPostgresSessionStore(pool)
	sessions := auth.NewManager(cfg.AccessTokenTTL, cfg.RefreshTokenTTL, sessionStore)

	assets, err := buildAssetHost(ctx, cfg)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	return handlers.Dependencies{
		Users:    users,
		Sessions: sessions,
		Videos:   videos.NewService(videoRepo, users, assets),
		Uploads:  assets,
	}, nil
}

func buildAssetHost(ctx context.Context, cfg config.Config) (videos.AssetHost, error) {
	switch cfg.AssetBackend {
	case "", "imagekit":
		return storage.NewImageKitClient(cfg.ImageKit)
	case "s3":
		return storage.NewS3AssetStore(ctx, cfg.ObjectStore)
	default:
		return nil, fmt.Errorf("unknown asset backend %q", cfg.AssetBackend)
	}
}
