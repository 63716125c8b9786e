// Package cache tracks which postings have already triggered a notification,
// so repeated searches do not page the user twice for the same match.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix  = "jobscout:notified:"
	defaultTTL = 7 * 24 * time.Hour
)

// SeenStore marks notified posting IDs in redis. A nil client disables
// suppression: every posting counts as fresh.
type SeenStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewSeenStore(client *redis.Client, logger *zap.Logger) *SeenStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeenStore{client: client, ttl: defaultTTL, logger: logger}
}

// MarkNotified records the posting ID and reports whether it was newly
// marked. Redis errors degrade to "fresh" so a cache outage never blocks
// notifications.
func (s *SeenStore) MarkNotified(ctx context.Context, id string) bool {
	if s == nil || s.client == nil || id == "" {
		return true
	}

	fresh, err := s.client.SetNX(ctx, keyPrefix+id, time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		s.logger.Warn("seen cache unavailable", zap.Error(err))
		return true
	}
	return fresh
}
