package repositories

import (
	"context"

	"github.com/clipvault/backend/internal/models"
)

// VideoRepository exposes data access for video metadata records.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	List(ctx context.Context) ([]models.VideoWithOwner, error)
	Update(ctx context.Context, video models.Video) error
	Delete(ctx context.Context, id string) error
}
