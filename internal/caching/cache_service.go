package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"dentalops/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// CacheService caches derived read data. Tenant status is deliberately not
// cached anywhere: a lifecycle transition must be visible to the very next
// request.
type CacheService interface {
	GetCapabilities(ctx context.Context, tenantID uuid.UUID, roleKey string) ([]models.Capability, error)
	SetCapabilities(ctx context.Context, tenantID uuid.UUID, roleKey string, caps []models.Capability, ttl time.Duration) error
	InvalidateTenantCapabilities(ctx context.Context, tenantID uuid.UUID) error

	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Warn().Err(pingErr).Str("addr", parsedAddr).Msg("redis ping failed on initialization")
	}

	return &redisCacheService{client: client}
}

func capabilitiesKey(tenantID uuid.UUID, roleKey string) string {
	return fmt.Sprintf("dentalops:caps:%s:%s", tenantID.String(), roleKey)
}

func (r *redisCacheService) GetCapabilities(ctx context.Context, tenantID uuid.UUID, roleKey string) ([]models.Capability, error) {
	data, err := r.client.Get(ctx, capabilitiesKey(tenantID, roleKey)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var caps []models.Capability
	if err := json.Unmarshal(data, &caps); err != nil {
		return nil, err
	}
	return caps, nil
}

func (r *redisCacheService) SetCapabilities(ctx context.Context, tenantID uuid.UUID, roleKey string, caps []models.Capability, ttl time.Duration) error {
	data, err := json.Marshal(caps)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, capabilitiesKey(tenantID, roleKey), data, ttl).Err()
}

func (r *redisCacheService) InvalidateTenantCapabilities(ctx context.Context, tenantID uuid.UUID) error {
	pattern := fmt.Sprintf("dentalops:caps:%s:*", tenantID.String())
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, "dentalops:"+key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, "dentalops:"+key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, "dentalops:"+key).Err()
}
