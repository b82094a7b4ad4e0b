package handlers

import (
	"net/http"

	"github.com/clipvault/backend/internal/logging"
)

// UploadHandler issues direct-upload credentials for the asset host.
type UploadHandler struct {
	Signer UploadSigner
}

// Auth handles GET /api/v1/imagekit-auth. The endpoint is public: the ticket it
// returns is the thing that authorizes the upload, keyed by the server secret.
func (h UploadHandler) Auth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Signer == nil {
		logger.Error("upload signer unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "upload signing unavailable"})
		return
	}

	ticket, err := h.Signer.SignUpload(ctx)
	if err != nil {
		logger.Error("failed to sign upload", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to sign upload"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, uploadAuthResponse{
		Signature: ticket.Signature,
		Expire:    ticket.Expire,
		Token:     ticket.Token,
	})
}

type uploadAuthResponse struct {
	Signature string `json:"signature"`
	Expire    int64  `json:"expire"`
	Token     string `json:"token"`
}
