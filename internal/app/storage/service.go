package storage

import (
	"context"
	"time"
)

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// AvatarStorage defines the public interface for the avatar object storage service.
type AvatarStorage interface {
	// PresignUpload generates a pre-signed URL for uploading an avatar object.
	PresignUpload(
		ctx context.Context,
		key string,
		mimeType string,
		fileSize int64,
		duration time.Duration,
	) (string, error)

	// PresignDownload generates a pre-signed URL for downloading an avatar object.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)

	// Delete removes the object specified by the given key.
	Delete(ctx context.Context, key string) error
}

// NewAvatarStorage is the factory function for AvatarStorage.
// Only S3-compatible backends are currently supported.
func NewAvatarStorage(cfg ServiceConfig) (AvatarStorage, error) {
	return newS3Client(cfg)
}
