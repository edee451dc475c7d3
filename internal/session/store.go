// Package session holds short-lived UI navigation state. Cursors are keyed
// by (user, message) so concurrent viewers of the same posted help message
// never interfere with each other.
package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cursorKeyPrefix = "help:cursor"

// Store tracks per-(user, message) pagination cursors with time-bounded
// eviction. A cursor that expired simply reads back as page 0.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewStore builds the store. Entries live for ttl after their last write.
func NewStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{client: client, ttl: ttl, logger: logger}
}

// Page returns the stored cursor for the given viewer and message, or 0
// when no entry exists or the backend is unreachable.
func (s *Store) Page(ctx context.Context, userID, messageID string) int {
	val, err := s.client.Get(ctx, cursorKey(userID, messageID)).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("session store read failed", zap.Error(err))
		}
		return 0
	}
	page, err := strconv.Atoi(val)
	if err != nil || page < 0 {
		return 0
	}
	return page
}

// SetPage stores the cursor, refreshing its TTL. Failures are logged and
// swallowed: losing a cursor only resets the viewer to page 0.
func (s *Store) SetPage(ctx context.Context, userID, messageID string, page int) {
	if err := s.client.Set(ctx, cursorKey(userID, messageID), page, s.ttl).Err(); err != nil {
		s.logger.Warn("session store write failed", zap.Error(err))
	}
}

func cursorKey(userID, messageID string) string {
	return fmt.Sprintf("%s:%s:%s", cursorKeyPrefix, userID, messageID)
}
