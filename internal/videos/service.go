package videos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clipvault/backend/internal/logging"
	"github.com/clipvault/backend/internal/models"
	"github.com/clipvault/backend/internal/repositories"
)

// VideoStore captures the persistence operations required by the service.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	List(ctx context.Context) ([]models.VideoWithOwner, error)
	Update(ctx context.Context, video models.Video) error
	Delete(ctx context.Context, id string) error
}

// UserStore resolves owner identities for video records.
type UserStore interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// Service mediates between an authenticated caller, the video store and the
// asset host. It owns the ownership rules for mutating operations and the
// consistency policy between metadata and binary assets.
type Service struct {
	videos VideoStore
	users  UserStore
	assets AssetHost

	// NowFunc allows tests to control record timestamps.
	NowFunc func() time.Time
}

// NewService wires a video service from its collaborators.
func NewService(videos VideoStore, users UserStore, assets AssetHost) *Service {
	return &Service{videos: videos, users: users, assets: assets}
}

// CreateInput is the payload for registering an already-uploaded clip.
type CreateInput struct {
	Title           string
	Description     string
	VideoURL        string
	ThumbnailURL    string
	VideoFileID     string
	ThumbnailFileID string
	Controls        *bool
	Quality         *int
	Tags            []string
}

// UpdateInput carries the mutable fields of a video record. Nil means "leave unchanged".
type UpdateInput struct {
	Title       *string
	Description *string
}

// List returns every video record ordered most recent first, with owner
// identity embedded. An empty store yields an empty slice, not an error.
func (s *Service) List(ctx context.Context) ([]models.VideoWithOwner, error) {
	records, err := s.videos.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	if records == nil {
		records = []models.VideoWithOwner{}
	}
	return records, nil
}

// Get loads a single record with its owner resolved. Reads are not ownership
// gated; any caller may fetch any record.
func (s *Service) Get(ctx context.Context, id string) (models.VideoWithOwner, error) {
	if strings.TrimSpace(id) == "" {
		return models.VideoWithOwner{}, ErrInvalidInput
	}

	video, err := s.videos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.VideoWithOwner{}, ErrNotFound
		}
		return models.VideoWithOwner{}, fmt.Errorf("find video: %w", err)
	}

	return s.withOwner(ctx, video)
}

// Create validates the payload and persists a new record owned by the caller.
// The binary upload has already happened client-to-asset-host; this only
// records metadata pointing at the uploaded assets.
func (s *Service) Create(ctx context.Context, callerID string, in CreateInput) (models.VideoWithOwner, error) {
	if callerID == "" {
		return models.VideoWithOwner{}, ErrUnauthenticated
	}

	if strings.TrimSpace(in.Title) == "" ||
		strings.TrimSpace(in.Description) == "" ||
		strings.TrimSpace(in.VideoURL) == "" ||
		strings.TrimSpace(in.ThumbnailURL) == "" {
		return models.VideoWithOwner{}, ErrInvalidInput
	}

	// The session authority already vouched for the caller; re-check anyway so a
	// stale session cannot create records owned by a vanished account.
	owner, err := s.users.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.VideoWithOwner{}, ErrOwnerNotFound
		}
		return models.VideoWithOwner{}, fmt.Errorf("resolve owner: %w", err)
	}

	now := s.now()

	controls := true
	if in.Controls != nil {
		controls = *in.Controls
	}

	quality := models.DefaultTransformQuality
	if in.Quality != nil {
		quality = *in.Quality
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	video := models.Video{
		ID:              uuid.NewString(),
		OwnerID:         owner.ID,
		Title:           in.Title,
		Description:     in.Description,
		VideoURL:        in.VideoURL,
		ThumbnailURL:    in.ThumbnailURL,
		VideoFileID:     in.VideoFileID,
		ThumbnailFileID: in.ThumbnailFileID,
		Controls:        controls,
		Transformation: models.Transformation{
			Height:  models.DefaultTransformHeight,
			Width:   models.DefaultTransformWidth,
			Quality: quality,
		},
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.videos.Create(ctx, video); err != nil {
		return models.VideoWithOwner{}, fmt.Errorf("create video: %w", err)
	}

	return models.VideoWithOwner{Video: video, Owner: models.Owner{ID: owner.ID, Email: owner.Email}}, nil
}

// Update applies a partial title/description patch to a record owned by the caller.
func (s *Service) Update(ctx context.Context, id, callerID string, in UpdateInput) (models.VideoWithOwner, error) {
	video, err := s.authorize(ctx, id, callerID)
	if err != nil {
		return models.VideoWithOwner{}, err
	}

	if in.Title != nil {
		video.Title = *in.Title
	}
	if in.Description != nil {
		video.Description = *in.Description
	}
	video.UpdatedAt = s.now()

	if err := s.videos.Update(ctx, video); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.VideoWithOwner{}, ErrNotFound
		}
		return models.VideoWithOwner{}, fmt.Errorf("update video: %w", err)
	}

	return s.withOwner(ctx, video)
}

// Delete removes a record owned by the caller. Binary assets are cleaned up
// best-effort first: both deletions run concurrently, failures are logged and
// swallowed, and the metadata row is removed regardless of the outcome. An
// orphaned file on the asset host is an accepted failure mode, never a fatal
// one, and never retried here.
func (s *Service) Delete(ctx context.Context, id, callerID string) error {
	video, err := s.authorize(ctx, id, callerID)
	if err != nil {
		return err
	}

	ctx, span := logging.StartSpan(ctx, "videos.delete")
	defer span.End()

	logger := logging.FromContext(ctx)

	var wg sync.WaitGroup
	for _, fileID := range []string{video.VideoFileID, video.ThumbnailFileID} {
		if fileID == "" {
			continue
		}
		wg.Add(1)
		go func(fileID string) {
			defer wg.Done()
			if err := s.assets.DeleteAsset(ctx, fileID); err != nil {
				logger.Warn("asset cleanup failed, leaving orphaned file",
					"videoId", video.ID, "fileId", fileID, "error", err)
			}
		}(fileID)
	}
	wg.Wait()

	if err := s.videos.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Lost a race with a concurrent delete; the record is gone either way.
			return nil
		}
		return fmt.Errorf("delete video: %w", err)
	}

	return nil
}

// authorize is the single authorization gate shared by all mutating operations.
// Checks run in a fixed order: existence, then authentication, then ownership.
func (s *Service) authorize(ctx context.Context, id, callerID string) (models.Video, error) {
	if strings.TrimSpace(id) == "" {
		return models.Video{}, ErrInvalidInput
	}

	video, err := s.videos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("find video: %w", err)
	}

	if callerID == "" {
		return models.Video{}, ErrUnauthenticated
	}

	if video.OwnerID != callerID {
		return models.Video{}, ErrForbidden
	}

	return video, nil
}

func (s *Service) withOwner(ctx context.Context, video models.Video) (models.VideoWithOwner, error) {
	owner, err := s.users.FindByID(ctx, video.OwnerID)
	if err != nil {
		return models.VideoWithOwner{}, fmt.Errorf("resolve owner: %w", err)
	}
	return models.VideoWithOwner{Video: video, Owner: models.Owner{ID: owner.ID, Email: owner.Email}}, nil
}

func (s *Service) now() time.Time {
	if s.NowFunc != nil {
		return s.NowFunc()
	}
	return time.Now().UTC()
}
