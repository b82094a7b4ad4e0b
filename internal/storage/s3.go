package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/clipvault/backend/internal/config"
	"github.com/clipvault/backend/internal/videos"
)

// S3AssetStore implements videos.AssetHost against an S3-compatible object
// store. Asset handles are object keys; upload tickets carry a presigned PUT
// URL in the signature field so clients can upload without AWS credentials.
type S3AssetStore struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	keyPrefix string
	uploadTTL time.Duration
}

// NewS3AssetStore configures a client targeting the provided object store.
func NewS3AssetStore(ctx context.Context, cfg config.ObjectStoreConfig) (*S3AssetStore, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 asset store: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if strings.TrimSpace(cfg.Endpoint) != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
			if service == s3.ServiceID {
				return aws.Endpoint{
					URL:           cfg.Endpoint,
					SigningRegion: cfg.Region,
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
		loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	ttl := cfg.UploadTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	return &S3AssetStore{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		keyPrefix: strings.Trim(cfg.KeyPrefix, "/"),
		uploadTTL: ttl,
	}, nil
}

// DeleteAsset removes the object identified by the provided key.
func (s *S3AssetStore) DeleteAsset(ctx context.Context, fileID string) error {
	key := strings.TrimLeft(fileID, "/")
	if key == "" {
		return fmt.Errorf("s3 asset store: empty key")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 asset store delete %s: %w", key, err)
	}

	return nil
}

// SignUpload returns a ticket whose token is the generated object key and whose
// signature is a presigned PUT URL valid until the expiry.
func (s *S3AssetStore) SignUpload(ctx context.Context) (videos.UploadTicket, error) {
	key := uuid.NewString()
	if s.keyPrefix != "" {
		key = path.Join(s.keyPrefix, key)
	}

	presigned, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.uploadTTL))
	if err != nil {
		return videos.UploadTicket{}, fmt.Errorf("s3 asset store presign %s: %w", key, err)
	}

	return videos.UploadTicket{
		Token:     key,
		Expire:    time.Now().UTC().Add(s.uploadTTL).Unix(),
		Signature: presigned.URL,
	}, nil
}

var _ videos.AssetHost = (*S3AssetStore)(nil)
