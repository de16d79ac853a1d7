// Package storage - архив исходного JSON страниц HubSpot в объектном хранилище.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// SnapshotArchive хранит сырой JSON страниц на момент бэкапа.
type SnapshotArchive interface {
	ArchiveSnapshot(ctx context.Context, objectKey string, data []byte) error
	FetchSnapshot(ctx context.Context, objectKey string) ([]byte, error)
}

// MinioClient реализует SnapshotArchive для MinIO.
type MinioClient struct {
	client     *minio.Client
	bucketName string
}

var _ SnapshotArchive = (*MinioClient)(nil)

// MinioConfig содержит параметры для подключения к MinIO.
type MinioConfig struct {
	Endpoint        string // Адрес MinIO (например, "localhost:9000")
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	BucketName      string
	Region          string
}

// SnapshotKey - ключ объекта для страницы пользователя за день (YYYY-MM-DD).
func SnapshotKey(userID int64, pageID, date string) string {
	return fmt.Sprintf("snapshots/%d/%s/%s.json", userID, pageID, date)
}

// NewMinioClient создает клиент MinIO и при необходимости бакет.
func NewMinioClient(ctx context.Context, cfg MinioConfig) (*MinioClient, error) {
	log.Printf("[Minio] Инициализация клиента для эндпоинта %s...", cfg.Endpoint)

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации клиента MinIO: %w", err)
	}

	exists, err := minioClient.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки существования бакета '%s': %w", cfg.BucketName, err)
	}
	if !exists {
		log.Printf("[Minio] Бакет '%s' не найден, создаем...", cfg.BucketName)
		if err = minioClient.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("ошибка создания бакета '%s': %w", cfg.BucketName, err)
		}
	}

	log.Printf("[Minio] Архив снимков использует бакет '%s'", cfg.BucketName)
	return &MinioClient{client: minioClient, bucketName: cfg.BucketName}, nil
}

// ArchiveSnapshot сохраняет JSON страницы. Повторная запись за тот же день
// перезаписывает объект.
func (c *MinioClient) ArchiveSnapshot(ctx context.Context, objectKey string, data []byte) error {
	info, err := c.client.PutObject(ctx, c.bucketName, objectKey, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		log.Printf("[Minio] Ошибка архивации '%s': %v", objectKey, err)
		return fmt.Errorf("ошибка загрузки снимка в MinIO: %w", err)
	}

	log.Printf("[Minio] Снимок '%s' сохранен, размер: %d, ETag: %s", objectKey, info.Size, info.ETag)
	return nil
}

// FetchSnapshot читает сохраненный JSON страницы целиком.
func (c *MinioClient) FetchSnapshot(ctx context.Context, objectKey string) ([]byte, error) {
	object, err := c.client.GetObject(ctx, c.bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, c.fetchError(objectKey, err)
	}
	defer object.Close()

	// GetObject ленивый: отсутствие объекта проявляется при чтении
	data, err := io.ReadAll(object)
	if err != nil {
		return nil, c.fetchError(objectKey, err)
	}
	return data, nil
}

func (c *MinioClient) fetchError(objectKey string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		log.Printf("[Minio] Снимок '%s' не найден в бакете '%s'", objectKey, c.bucketName)
		return ErrObjectNotFound
	}
	log.Printf("[Minio] Ошибка чтения '%s': %v", objectKey, err)
	return fmt.Errorf("ошибка получения снимка из MinIO: %w", err)
}

// Кастомная ошибка хранилища.
var (
	ErrObjectNotFound = errors.New("объект не найден в хранилище")
)
