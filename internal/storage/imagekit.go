package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clipvault/backend/internal/config"
	"github.com/clipvault/backend/internal/videos"
)

// ImageKitClient implements videos.AssetHost against the ImageKit media CDN.
// Files are deleted through the REST API; upload tickets follow ImageKit's
// client-side upload scheme: a token, a unix expiry and an HMAC-SHA1 signature
// over token+expire keyed by the private key.
type ImageKitClient struct {
	publicKey  string
	privateKey string
	apiBase    string
	ticketTTL  time.Duration

	httpClient *http.Client
	nowFunc    func() time.Time
}

// NewImageKitClient validates the credentials and returns a configured client.
func NewImageKitClient(cfg config.ImageKitConfig) (*ImageKitClient, error) {
	if strings.TrimSpace(cfg.PrivateKey) == "" {
		return nil, fmt.Errorf("imagekit: private key is required")
	}

	apiBase := strings.TrimSuffix(cfg.APIBaseURL, "/")
	if apiBase == "" {
		apiBase = "https://api.imagekit.io"
	}

	ttl := cfg.UploadTokenTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	return &ImageKitClient{
		publicKey:  cfg.PublicKey,
		privateKey: cfg.PrivateKey,
		apiBase:    apiBase,
		ticketTTL:  ttl,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// DeleteAsset removes a file by its opaque ImageKit handle.
func (c *ImageKitClient) DeleteAsset(ctx context.Context, fileID string) error {
	if strings.TrimSpace(fileID) == "" {
		return fmt.Errorf("imagekit: empty file id")
	}

	endpoint := fmt.Sprintf("%s/v1/files/%s", c.apiBase, url.PathEscape(fileID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("imagekit: build delete request: %w", err)
	}
	// ImageKit authenticates with the private key as basic-auth username.
	req.SetBasicAuth(c.privateKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("imagekit: delete file %s: %w", fileID, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("imagekit: delete file %s: unexpected status %d", fileID, resp.StatusCode)
	}

	return nil
}

// SignUpload issues a short-lived credential for a direct client upload.
func (c *ImageKitClient) SignUpload(_ context.Context) (videos.UploadTicket, error) {
	token := uuid.NewString()
	expire := c.now().Add(c.ticketTTL).Unix()

	mac := hmac.New(sha1.New, []byte(c.privateKey))
	if _, err := mac.Write([]byte(token + strconv.FormatInt(expire, 10))); err != nil {
		return videos.UploadTicket{}, fmt.Errorf("imagekit: sign upload token: %w", err)
	}

	return videos.UploadTicket{
		Token:     token,
		Expire:    expire,
		Signature: hex.EncodeToString(mac.Sum(nil)),
	}, nil
}

// WithNowFunc overrides the time source. Useful for tests.
func (c *ImageKitClient) WithNowFunc(now func() time.Time) *ImageKitClient {
	c.nowFunc = now
	return c
}

func (c *ImageKitClient) now() time.Time {
	if c.nowFunc != nil {
		return c.nowFunc()
	}
	return time.Now().UTC()
}

var _ videos.AssetHost = (*ImageKitClient)(nil)
