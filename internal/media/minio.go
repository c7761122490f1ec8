package media

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the base used to build object URLs. Defaults to the endpoint.
	PublicURL string
}

// Minio stores objects in a MinIO or S3-compatible bucket.
type Minio struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinio connects and makes sure the bucket exists.
func NewMinio(ctx context.Context, cfg MinioConfig) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		log.Printf("media: created bucket %s", cfg.Bucket)
	}

	return &Minio{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicBase(cfg),
	}, nil
}

func (m *Minio) Put(ctx context.Context, prefix, filename, contentType string, r io.Reader, size int64) (Object, error) {
	if size > MaxUploadBytes {
		return Object{}, ErrTooLarge
	}
	key := objectKey(prefix, filename, contentType)
	info, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return Object{}, fmt.Errorf("put object %s: %w", key, err)
	}
	return Object{
		Key:         key,
		URL:         objectURL(m.publicURL, m.bucket, key),
		ContentType: contentType,
		Size:        info.Size,
	}, nil
}

func (m *Minio) Remove(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

func objectKey(prefix, filename, contentType string) string {
	return strings.Trim(prefix, "/") + "/" + uuid.NewString() + extensionFor(filename, contentType)
}

func objectURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + key
}

func publicBase(cfg MinioConfig) string {
	if cfg.PublicURL != "" {
		return cfg.PublicURL
	}
	scheme := "http://"
	if cfg.UseSSL {
		scheme = "https://"
	}
	return scheme + cfg.Endpoint
}
