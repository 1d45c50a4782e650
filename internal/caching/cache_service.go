package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type CacheService interface {
	// Permission caching per user; invalidated whenever roles change.
	GetUserPermissions(ctx context.Context, userID uuid.UUID) ([]string, error)
	SetUserPermissions(ctx context.Context, userID uuid.UUID, permissions []string, ttl time.Duration) error
	InvalidateUserPermissions(ctx context.Context, userID uuid.UUID) error

	// Generic string operations for token management.
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Warn().Err(err).Str("addr", addr).Msg("redis ping failed on initialization")
	}

	return &redisCacheService{client: client}
}

func permissionsKey(userID uuid.UUID) string {
	return fmt.Sprintf("vetdesk:permissions:%s", userID.String())
}

func (r *redisCacheService) GetUserPermissions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	data, err := r.client.Get(ctx, permissionsKey(userID)).Bytes()
	if err != nil {
		return nil, err
	}
	var permissions []string
	if err := json.Unmarshal(data, &permissions); err != nil {
		return nil, err
	}
	return permissions, nil
}

func (r *redisCacheService) SetUserPermissions(ctx context.Context, userID uuid.UUID, permissions []string, ttl time.Duration) error {
	data, err := json.Marshal(permissions)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, permissionsKey(userID), data, ttl).Err()
}

func (r *redisCacheService) InvalidateUserPermissions(ctx context.Context, userID uuid.UUID) error {
	return r.client.Del(ctx, permissionsKey(userID)).Err()
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
