package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DeliveryWindow bounds replay protection. GitHub redelivers within minutes.
const DeliveryWindow = time.Hour

const deliveryKeyPrefix = "autofix:delivery:"

// DeliveryStore records webhook delivery IDs for replay protection.
type DeliveryStore interface {
	// MarkSeen records the delivery and reports whether it had already been seen.
	MarkSeen(ctx context.Context, deliveryID string) (duplicate bool, err error)
}

type redisDeliveryStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDeliveryStore(client *redis.Client, ttl time.Duration) DeliveryStore {
	if ttl <= 0 {
		ttl = DeliveryWindow
	}
	return &redisDeliveryStore{client: client, ttl: ttl}
}

func (s *redisDeliveryStore) MarkSeen(ctx context.Context, deliveryID string) (bool, error) {
	created, err := s.client.SetNX(ctx, deliveryKeyPrefix+deliveryID, time.Now().Unix(), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("recording delivery: %w", err)
	}
	return !created, nil
}

type memoryDeliveryStore struct {
	mu         sync.Mutex
	ttl        time.Duration
	now        func() time.Time
	deliveries map[string]time.Time
}

func NewMemoryDeliveryStore(ttl time.Duration) DeliveryStore {
	if ttl <= 0 {
		ttl = DeliveryWindow
	}
	return &memoryDeliveryStore{
		ttl:        ttl,
		now:        time.Now,
		deliveries: make(map[string]time.Time),
	}
}

func (s *memoryDeliveryStore) MarkSeen(_ context.Context, deliveryID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, seenAt := range s.deliveries {
		if now.Sub(seenAt) > s.ttl {
			delete(s.deliveries, id)
		}
	}

	if _, ok := s.deliveries[deliveryID]; ok {
		return true, nil
	}
	s.deliveries[deliveryID] = now
	return false, nil
}
