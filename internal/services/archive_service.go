package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dentalops/internal/models"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

// ArchiveService ships daily audit exports to object storage. The bucket
// holds one JSON object per tenant per day.
type ArchiveService interface {
	EnsureBucket(ctx context.Context) error
	ArchiveAuditEntries(ctx context.Context, tenantID uuid.UUID, day time.Time, entries []*models.AuditEntry) error
}

type archiveService struct {
	client *minio.Client
	bucket string
}

func NewArchiveService(endpoint, accessKey, secretKey string, useSSL bool, bucket string) (ArchiveService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}
	return &archiveService{client: client, bucket: bucket}, nil
}

func (s *archiveService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	log.Info().Str("bucket", s.bucket).Msg("created archive bucket")
	return nil
}

func (s *archiveService) ArchiveAuditEntries(ctx context.Context, tenantID uuid.UUID, day time.Time, entries []*models.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal audit export: %w", err)
	}

	objectName := fmt.Sprintf("audit/%s/%s.json", tenantID.String(), day.Format("2006-01-02"))
	_, err = s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	log.Info().Str("object", objectName).Int("entries", len(entries)).Msg("archived audit entries")
	return nil
}
