/*
Package storage keeps message attachments in an S3-compatible bucket.

The server never proxies file bytes: clients upload and download through short-lived
presigned URLs, and a message only references the object key.
*/
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrObjectNotFound is returned by Stat when the key does not exist.
	ErrObjectNotFound = errors.New("storage: object not found")

	// ErrStorage wraps every other failure of the bucket.
	ErrStorage = errors.New("storage: request failed")
)

// Config holds the bucket coordinates and credentials.
type Config struct {
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	ContentType  string
	Size         int64
	LastModified time.Time
}

// Service is the attachment storage used by the file handlers.
type Service interface {
	// PresignUpload returns a URL accepting a PUT of exactly size bytes of mimeType.
	PresignUpload(ctx context.Context, key, mimeType string, size int64, ttl time.Duration) (string, error)

	// PresignDownload returns a URL serving the object for ttl.
	PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error)

	Delete(ctx context.Context, key string) error

	// Stat returns the metadata of key, or ErrObjectNotFound.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
}

// New returns the S3 implementation of Service.
func New(ctx context.Context, cfg Config) (Service, error) {
	return newS3Client(ctx, cfg)
}
