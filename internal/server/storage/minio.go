// Package storage - объектное хранилище снимков (S3-совместимое, MinIO).
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/IvanChernomyrdin/go-oralvis/internal/server/config"
)

// MinioStorage кладёт файлы в один бакет и отдаёт постоянные ссылки на них.
type MinioStorage struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioStorage создаёт клиента и убеждается, что бакет существует.
func NewMinioStorage(ctx context.Context, cfg config.StorageConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &MinioStorage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: baseURL(cfg),
	}, nil
}

// Upload копирует локальный файл в бакет под именем objectName и возвращает URL объекта.
func (s *MinioStorage) Upload(ctx context.Context, objectName, filePath, contentType string) (string, error) {
	_, err := s.client.FPutObject(ctx, s.bucket, objectName, filePath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", objectName, err)
	}
	return s.objectURL(objectName), nil
}

func (s *MinioStorage) objectURL(objectName string) string {
	return s.baseURL + "/" + s.bucket + "/" + strings.TrimLeft(objectName, "/")
}

// baseURL: public_url, если задан, иначе адрес самого endpoint.
func baseURL(cfg config.StorageConfig) string {
	if u := strings.TrimRight(strings.TrimSpace(cfg.PublicURL), "/"); u != "" {
		return u
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + cfg.Endpoint
}
