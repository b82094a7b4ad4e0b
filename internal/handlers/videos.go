package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clipvault/backend/internal/logging"
	"github.com/clipvault/backend/internal/models"
	"github.com/clipvault/backend/internal/videos"
)

// VideoHandler provides the video feed and the ownership-gated record lifecycle.
type VideoHandler struct {
	Service  VideoService
	Sessions SessionManager
}

// List handles GET /api/v1/videos. Readable by anyone, authenticated or not.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Service == nil {
		logger.Error("video service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "video service unavailable"})
		return
	}

	records, err := h.Service.List(ctx)
	if err != nil {
		logger.Error("failed to list videos", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch videos"})
		return
	}

	payload := make([]videoPayload, 0, len(records))
	for _, rec := range records {
		payload = append(payload, toVideoPayload(rec))
	}

	respondJSON(ctx, w, http.StatusOK, payload)
}

// Get handles GET /api/v1/videos/{id}.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Service == nil {
		logger.Error("video service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "video service unavailable"})
		return
	}

	record, err := h.Service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(ctx, w, err, "view")
		return
	}

	respondJSON(ctx, w, http.StatusOK, toVideoPayload(record))
}

// Create handles POST /api/v1/videos. The binary upload has already happened
// client-to-asset-host; this registers the metadata.
func (h VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Service == nil {
		logger.Error("video service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "video service unavailable"})
		return
	}

	var req createVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid create video payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	in := videos.CreateInput{
		Title:           req.Title,
		Description:     req.Description,
		VideoURL:        req.VideoURL,
		ThumbnailURL:    req.ThumbnailURL,
		VideoFileID:     req.VideoFileID,
		ThumbnailFileID: req.ThumbnailFileID,
		Controls:        req.Controls,
		Tags:            req.Tags,
	}
	if req.Transformation != nil {
		in.Quality = req.Transformation.Quality
	}

	record, err := h.Service.Create(ctx, h.callerID(r), in)
	if err != nil {
		h.respondError(ctx, w, err, "create")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, toVideoPayload(record))
}

// Update handles PATCH /api/v1/videos/{id}. Owner only.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Service == nil {
		logger.Error("video service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "video service unavailable"})
		return
	}

	var req updateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid update video payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	record, err := h.Service.Update(ctx, chi.URLParam(r, "id"), h.callerID(r), videos.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(ctx, w, err, "edit")
		return
	}

	respondJSON(ctx, w, http.StatusOK, toVideoPayload(record))
}

// Delete handles DELETE /api/v1/videos/{id}. Owner only.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Service == nil {
		logger.Error("video service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "video service unavailable"})
		return
	}

	if err := h.Service.Delete(ctx, chi.URLParam(r, "id"), h.callerID(r)); err != nil {
		h.respondError(ctx, w, err, "delete")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "video deleted successfully"})
}

// callerID resolves the bearer token on the request to a user id. An absent or
// invalid token yields the empty caller; the service decides whether that is an
// error for the operation at hand.
func (h VideoHandler) callerID(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" || h.Sessions == nil {
		return ""
	}

	userID, err := h.Sessions.Resolve(r.Context(), token)
	if err != nil {
		return ""
	}
	return userID
}

// respondError maps service failure kinds onto the fixed HTTP status table.
func (h VideoHandler) respondError(ctx context.Context, w http.ResponseWriter, err error, action string) {
	logger := logging.FromContext(ctx)

	switch {
	case errors.Is(err, videos.ErrInvalidInput):
		message := "missing video id"
		if action == "create" {
			message = "missing required fields"
		}
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": message})
	case errors.Is(err, videos.ErrUnauthenticated):
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	case errors.Is(err, videos.ErrForbidden):
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{
			"error": "you do not have permission to " + action + " this video",
		})
	case errors.Is(err, videos.ErrNotFound):
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "video not found"})
	case errors.Is(err, videos.ErrOwnerNotFound):
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "owner not found"})
	default:
		logger.Error("video operation failed", "action", action, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "server error"})
	}
}

type createVideoRequest struct {
	Title           string                     `json:"title"`
	Description     string                     `json:"description"`
	VideoURL        string                     `json:"videoUrl"`
	ThumbnailURL    string                     `json:"thumbnailUrl"`
	VideoFileID     string                     `json:"videoFileId"`
	ThumbnailFileID string                     `json:"thumbnailFileId"`
	Controls        *bool                      `json:"controls"`
	Tags            []string                   `json:"tags"`
	Transformation  *transformationRequestBody `json:"transformation"`
}

type transformationRequestBody struct {
	Quality *int `json:"quality"`
}

type updateVideoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type ownerPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type transformationPayload struct {
	Height  int `json:"height"`
	Width   int `json:"width"`
	Quality int `json:"quality"`
}

type videoPayload struct {
	ID              string                `json:"id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	VideoURL        string                `json:"videoUrl"`
	ThumbnailURL    string                `json:"thumbnailUrl"`
	VideoFileID     string                `json:"videoFileId,omitempty"`
	ThumbnailFileID string                `json:"thumbnailFileId,omitempty"`
	Controls        bool                  `json:"controls"`
	Transformation  transformationPayload `json:"transformation"`
	Tags            []string              `json:"tags"`
	Owner           ownerPayload          `json:"owner"`
	CreatedAt       time.Time             `json:"createdAt"`
}

func toVideoPayload(rec models.VideoWithOwner) videoPayload {
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}

	return videoPayload{
		ID:              rec.ID,
		Title:           rec.Title,
		Description:     rec.Description,
		VideoURL:        rec.VideoURL,
		ThumbnailURL:    rec.ThumbnailURL,
		VideoFileID:     rec.VideoFileID,
		ThumbnailFileID: rec.ThumbnailFileID,
		Controls:        rec.Controls,
		Transformation: transformationPayload{
			Height:  rec.Transformation.Height,
			Width:   rec.Transformation.Width,
			Quality: rec.Transformation.Quality,
		},
		Tags:      tags,
		Owner:     ownerPayload{ID: rec.Owner.ID, Email: rec.Owner.Email},
		CreatedAt: rec.CreatedAt,
	}
}
