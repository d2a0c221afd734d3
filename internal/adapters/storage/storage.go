// Package storage provides the S3-compatible archive for raw import uploads.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"backoffice_backend/platform/config"
)

// PresignedURLTTL is the expiration time for download URLs.
const PresignedURLTTL = 15 * time.Minute

// allowedContentTypes are the spreadsheet formats the importer accepts.
var allowedContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
	"application/octet-stream": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

// Archive stores the raw bytes of import uploads for later inspection.
type Archive struct {
	client *minio.Client
	bucket string
}

// NewArchive creates the MinIO-backed archive.
func NewArchive(cfg config.StorageConfig) (*Archive, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &Archive{client: client, bucket: cfg.GetMinioBucketImportArchive()}, nil
}

// EnsureBucketExists creates the archive bucket if it doesn't exist.
func (a *Archive) EnsureBucketExists(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
		}
	}
	return nil
}

// Store writes one upload to the archive under a unique key and returns that
// key. The key embeds the import run id and the original file name.
func (a *Archive) Store(ctx context.Context, runID, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	if err := validateContentType(contentType); err != nil {
		return "", err
	}

	ext := path.Ext(fileName)
	base := strings.TrimSuffix(path.Base(fileName), ext)
	key := fmt.Sprintf("%s/%s_%s%s", runID, base, uuid.New().String()[:8], ext)

	_, err := a.client.PutObject(ctx, a.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive upload: %w", err)
	}
	return key, nil
}

// DownloadURL creates a presigned URL for fetching an archived upload.
func (a *Archive) DownloadURL(ctx context.Context, key string) (string, error) {
	u, err := a.client.PresignedGetObject(ctx, a.bucket, key, PresignedURLTTL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}
	return u.String(), nil
}

func validateContentType(contentType string) error {
	normalized := strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
	if normalized == "" {
		return nil
	}
	if !allowedContentTypes[normalized] {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	return nil
}
