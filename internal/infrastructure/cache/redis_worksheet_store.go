package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/erp/subcontracting/internal/domain/subcontracting"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultWorksheetTTL bounds how long an abandoned worksheet survives
	DefaultWorksheetTTL = 24 * time.Hour
	// DefaultKeyPrefix namespaces worksheet keys
	DefaultKeyPrefix = "subcontracting:worksheet:"
)

// RedisWorksheetStore implements WorksheetStore using Redis.
// This is suitable for deployments where several instances serve the same worksheets.
type RedisWorksheetStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisClient connects to Redis and checks the connection
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisWorksheetStore creates a store with an existing Redis client
func NewRedisWorksheetStore(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisWorksheetStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultWorksheetTTL
	}
	return &RedisWorksheetStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (s *RedisWorksheetStore) sheetKey(id uuid.UUID) string {
	return s.keyPrefix + id.String()
}

func (s *RedisWorksheetStore) submittedKey(id uuid.UUID) string {
	return s.keyPrefix + id.String() + ":submitted"
}

// Save creates or replaces a worksheet and refreshes its expiry
func (s *RedisWorksheetStore) Save(ctx context.Context, w *subcontracting.Worksheet) error {
	payload, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to encode worksheet: %w", err)
	}
	if err := s.client.Set(ctx, s.sheetKey(w.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store worksheet: %w", err)
	}
	return nil
}

// Get loads a worksheet
func (s *RedisWorksheetStore) Get(ctx context.Context, id uuid.UUID) (*subcontracting.Worksheet, error) {
	payload, err := s.client.Get(ctx, s.sheetKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load worksheet: %w", err)
	}
	var w subcontracting.Worksheet
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, fmt.Errorf("failed to decode worksheet: %w", err)
	}
	return &w, nil
}

// Delete removes a worksheet
func (s *RedisWorksheetStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, s.sheetKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete worksheet: %w", err)
	}
	return nil
}

// MarkSubmitted records a commit of the worksheet.
// Uses SETNX so that only one of several concurrent submits wins.
func (s *RedisWorksheetStore) MarkSubmitted(ctx context.Context, id uuid.UUID) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.submittedKey(id), "1", s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark worksheet submitted: %w", err)
	}
	return ok, nil
}

// ReleaseSubmitted clears the submission marker
func (s *RedisWorksheetStore) ReleaseSubmitted(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, s.submittedKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to release worksheet: %w", err)
	}
	return nil
}

// Ping checks that Redis answers
func (s *RedisWorksheetStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (s *RedisWorksheetStore) Close() error {
	return s.client.Close()
}

var _ subcontracting.WorksheetStore = (*RedisWorksheetStore)(nil)
