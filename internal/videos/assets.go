package videos

import "context"

// UploadTicket is a short-lived credential permitting a client to upload a file
// directly to the asset host.
type UploadTicket struct {
	Token     string
	Expire    int64
	Signature string
}

// AssetHost abstracts the external service holding binary video and thumbnail
// files. Uploads happen client-to-host; this service only deletes assets by
// their opaque file handles and signs upload requests.
type AssetHost interface {
	DeleteAsset(ctx context.Context, fileID string) error
	SignUpload(ctx context.Context) (UploadTicket, error)
}
