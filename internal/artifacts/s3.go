package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/swetalanaparida/EchoTranslate/internal/config"
	"github.com/swetalanaparida/EchoTranslate/internal/ports"
)

type s3Client struct {
	client *minio.Client
	bucket string
	host   string
}

func NewS3Client(ctx context.Context, cfg config.S3) (ports.S3Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: !cfg.Insecure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init S3 client: %w", err)
	}

	// проверим, что бакет существует
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", cfg.Bucket)
	}

	scheme := "https"
	if cfg.Insecure {
		scheme = "http"
	}

	return &s3Client{
		client: client,
		bucket: cfg.Bucket,
		host:   fmt.Sprintf("%s://%s", scheme, cfg.Endpoint),
	}, nil
}

// PutObject загружает файл и возвращает публичный URL
func (s *s3Client) PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"uploaded-at": time.Now().Format(time.RFC3339)},
	})
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}

	return buildPublicURL(s.host, s.bucket, key), nil
}

func buildPublicURL(host, bucket, key string) string {
	escapedKey := (&url.URL{Path: filepath.ToSlash(key)}).EscapedPath()
	return fmt.Sprintf("%s/%s/%s", host, bucket, escapedKey)
}

// S3Store раскладывает артефакты по дням: audio/2006-01-02/<name>
type S3Store struct {
	client ports.S3Client
	prefix string
	now    func() time.Time
}

func NewS3Store(client ports.S3Client) *S3Store {
	return &S3Store{client: client, prefix: "audio", now: time.Now}
}

// ObjectKey — путь в бакете
func (s *S3Store) ObjectKey(name string) string {
	date := s.now().UTC().Format("2006-01-02")
	return fmt.Sprintf("%s/%s/%s", s.prefix, date, filepath.Base(name))
}

func (s *S3Store) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := s.ObjectKey(name)
	return s.client.PutObject(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
}
