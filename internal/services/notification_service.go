package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"dentalops/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Event types published after state changes commit. Publishing is best
// effort: a lost event never rolls back the transaction that caused it.
const (
	EventPrescriptionFilled    = "prescription.filled"
	EventPrescriptionCancelled = "prescription.cancelled"
	EventInventoryAdjusted     = "inventory.adjusted"
	EventInventoryLowStock     = "inventory.low_stock"
	EventTenantStatusChanged   = "tenant.status_changed"
)

const eventChannel = "dentalops:events"

type NotificationService interface {
	Publish(ctx context.Context, tenantID uuid.UUID, eventType string, payload models.JSONB)
}

type redisNotificationService struct {
	client *redis.Client
}

func NewNotificationService(addr, password string, db int) NotificationService {
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})
	return &redisNotificationService{client: client}
}

type eventEnvelope struct {
	Event      string       `json:"event"`
	TenantID   uuid.UUID    `json:"tenant_id"`
	OccurredAt time.Time    `json:"occurred_at"`
	Payload    models.JSONB `json:"payload,omitempty"`
}

func (s *redisNotificationService) Publish(ctx context.Context, tenantID uuid.UUID, eventType string, payload models.JSONB) {
	envelope := eventEnvelope{
		Event:      eventType,
		TenantID:   tenantID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("failed to marshal event")
		return
	}
	if err := s.client.Publish(ctx, eventChannel, data).Err(); err != nil {
		log.Warn().Err(err).Str("event", eventType).Str("tenant_id", tenantID.String()).Msg("failed to publish event")
	}
}
