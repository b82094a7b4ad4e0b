package models

import "time"

// User represents an account within the ClipVault platform. Password holds the
// bcrypt hash and is never serialized to API responses.
type User struct {
	ID        string
	Email     string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transformation carries the rendering hints recorded alongside an uploaded clip.
type Transformation struct {
	Height  int
	Width   int
	Quality int
}

// Defaults applied when the caller omits transformation hints at creation time.
const (
	DefaultTransformHeight  = 1920
	DefaultTransformWidth   = 1080
	DefaultTransformQuality = 100
)

// Video is the metadata record for one uploaded clip. The binary assets live on
// the external asset host; VideoFileID and ThumbnailFileID are the host's opaque
// handles used for cleanup. OwnerID is set at creation and never changes.
type Video struct {
	ID              string
	OwnerID         string
	Title           string
	Description     string
	VideoURL        string
	ThumbnailURL    string
	VideoFileID     string
	ThumbnailFileID string
	Controls        bool
	Transformation  Transformation
	Tags            []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Owner is the subset of user fields embedded into video read models.
type Owner struct {
	ID    string
	Email string
}

// VideoWithOwner is the read model returned by the video service: the record
// plus its owner's public identity resolved at read time.
type VideoWithOwner struct {
	Video
	Owner Owner
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
