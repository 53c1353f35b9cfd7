package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"dam-inspection-system/internal/domain"
)

// MinioConfig параметри підключення до об'єктного сховища
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// DetectionArchive зберігає сирі пакети детекцій місій у MinIO
type DetectionArchive struct {
	minioClient *minio.Client
	bucketName  string
	now         func() time.Time
}

// NewDetectionArchive створює новий екземпляр DetectionArchive
func NewDetectionArchive(ctx context.Context, cfg MinioConfig) (*DetectionArchive, error) {
	// Ініціалізація MinIO клієнта
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	// Перевірка наявності бакета і створення його, якщо не існує
	exists, err := minioClient.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if !exists {
		if err := minioClient.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &DetectionArchive{
		minioClient: minioClient,
		bucketName:  cfg.Bucket,
		now:         time.Now,
	}, nil
}

// SaveDetectionBatch зберігає пакет детекцій як JSON-об'єкт
func (a *DetectionArchive) SaveDetectionBatch(ctx context.Context, missionID uuid.UUID, results []domain.DetectionResult) (string, error) {
	payload, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("failed to marshal detection batch: %w", err)
	}

	now := a.now()
	objectKey := batchObjectKey(missionID, now)

	_, err = a.minioClient.PutObject(ctx, a.bucketName, objectKey, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
		UserMetadata: map[string]string{
			"mission-id":   missionID.String(),
			"frames":       fmt.Sprint(len(results)),
			"created-time": now.Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to save detection batch: %w", err)
	}

	return objectKey, nil
}

// GetDetectionBatch отримує збережений пакет
func (a *DetectionArchive) GetDetectionBatch(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	obj, err := a.minioClient.GetObject(ctx, a.bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get detection batch: %w", err)
	}

	return obj, nil
}

// ListDetectionBatchKeys повертає ключі всіх пакетів місії
func (a *DetectionArchive) ListDetectionBatchKeys(ctx context.Context, missionID uuid.UUID) ([]string, error) {
	objectCh := a.minioClient.ListObjects(ctx, a.bucketName, minio.ListObjectsOptions{
		Prefix:    batchPrefix(missionID),
		Recursive: true,
	})

	keys := []string{}
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing objects: %w", object.Err)
		}
		keys = append(keys, object.Key)
	}

	return keys, nil
}

func batchPrefix(missionID uuid.UUID) string {
	return fmt.Sprintf("missions/%s/", missionID)
}

func batchObjectKey(missionID uuid.UUID, at time.Time) string {
	return batchPrefix(missionID) + at.UTC().Format("20060102-150405.000") + ".json"
}
