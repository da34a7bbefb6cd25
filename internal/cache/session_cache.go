package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"intakeflow/internal/model"
)

// SessionCache is the local fallback copy of session state, used for
// optimistic continuity while the remote store is slow or offline. It is
// cleared in lockstep with a session reset.
type SessionCache interface {
	Set(ctx context.Context, state *model.SessionState) error
	Get(ctx context.Context, clientID, questionnaireID string) (*model.SessionState, error)
	Delete(ctx context.Context, clientID, questionnaireID string) error
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache keeps entries for 7 days, long enough to resume an intake
// started on a flaky connection.
func NewSessionCache(client *redis.Client) SessionCache {
	return &sessionCache{
		client: client,
		ttl:    7 * 24 * time.Hour,
	}
}

func (c *sessionCache) key(clientID, questionnaireID string) string {
	return fmt.Sprintf("intake:%s:%s", clientID, questionnaireID)
}

func (c *sessionCache) Set(ctx context.Context, state *model.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}
	return c.client.Set(ctx, c.key(state.ClientID, state.QuestionnaireID), data, c.ttl).Err()
}

func (c *sessionCache) Get(ctx context.Context, clientID, questionnaireID string) (*model.SessionState, error) {
	data, err := c.client.Get(ctx, c.key(clientID, questionnaireID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state model.SessionState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		// A corrupt cache entry must not block the in-memory session.
		return nil, fmt.Errorf("failed to unmarshal cached session: %w", err)
	}
	state.Normalize()
	return &state, nil
}

func (c *sessionCache) Delete(ctx context.Context, clientID, questionnaireID string) error {
	return c.client.Del(ctx, c.key(clientID, questionnaireID)).Err()
}
