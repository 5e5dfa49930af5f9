package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/partnerhub/partnerhub_backend/models"
)

// SessionTTL is how long a cached partner snapshot lives without a refresh.
const SessionTTL = 24 * time.Hour

// PartnerSession is the explicit replacement for the old ambient
// currentPartner global: saved at login, cleared at logout, rehydrated from
// Redis between requests. The owning session is the single writer; a stale
// snapshot is corrected by the next dashboard refresh, which re-reads from
// the backend.
type PartnerSession struct {
	redis *redis.Client
}

// NewPartnerSession creates a session store. A nil Redis client is allowed;
// every operation then degrades to a no-op miss and callers fall back to the
// backend.
func NewPartnerSession(client *redis.Client) *PartnerSession {
	return &PartnerSession{redis: client}
}

func sessionKey(partnerID string) string {
	return fmt.Sprintf("partner_session:%s", partnerID)
}

// Save stores the partner snapshot for the session lifetime.
func (s *PartnerSession) Save(ctx context.Context, partner *models.Partner) error {
	if s.redis == nil {
		return nil
	}

	snapshot := *partner
	snapshot.Sanitize()

	data, err := json.Marshal(&snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode session snapshot: %w", err)
	}

	return s.redis.Set(ctx, sessionKey(partner.ID), data, SessionTTL).Err()
}

// Load returns the cached snapshot, or nil on a miss.
func (s *PartnerSession) Load(ctx context.Context, partnerID string) (*models.Partner, error) {
	if s.redis == nil {
		return nil, nil
	}

	data, err := s.redis.Get(ctx, sessionKey(partnerID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var partner models.Partner
	if err := json.Unmarshal([]byte(data), &partner); err != nil {
		// Unreadable snapshot: drop it and report a miss.
		s.redis.Del(ctx, sessionKey(partnerID))
		return nil, nil
	}

	return &partner, nil
}

// Touch extends the snapshot TTL without rewriting it.
func (s *PartnerSession) Touch(ctx context.Context, partnerID string) {
	if s.redis == nil {
		return
	}
	s.redis.Expire(ctx, sessionKey(partnerID), SessionTTL)
}

// Clear removes the snapshot at logout.
func (s *PartnerSession) Clear(ctx context.Context, partnerID string) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, sessionKey(partnerID)).Err()
}
