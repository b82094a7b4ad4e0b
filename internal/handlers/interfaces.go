package handlers

import (
	"context"

	"github.com/clipvault/backend/internal/models"
	"github.com/clipvault/backend/internal/videos"
)

// UserStore captures the persistence operations required by the auth handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// SessionManager issues, resolves and refreshes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Resolve(ctx context.Context, accessToken string) (string, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
}

// VideoService is the ownership-gated video resource lifecycle consumed by the
// video handlers.
type VideoService interface {
	List(ctx context.Context) ([]models.VideoWithOwner, error)
	Get(ctx context.Context, id string) (models.VideoWithOwner, error)
	Create(ctx context.Context, callerID string, in videos.CreateInput) (models.VideoWithOwner, error)
	Update(ctx context.Context, id, callerID string, in videos.UpdateInput) (models.VideoWithOwner, error)
	Delete(ctx context.Context, id, callerID string) error
}

// UploadSigner issues short-lived direct-upload credentials.
type UploadSigner interface {
	SignUpload(ctx context.Context) (videos.UploadTicket, error)
}
