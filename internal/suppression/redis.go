package suppression

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps suppression records in Redis, shared across all server
// instances serving the same viewer.
//
// Session-scoped records are keyed by the viewer's ephemeral session ID and
// expire with it; persistent records are keyed by the long-lived viewer ID
// and have no TTL, matching the browser-storage semantics they replace.
type RedisStore struct {
	client     *redis.Client
	viewerID   string
	sessionID  string
	sessionTTL time.Duration
}

// NewRedisStore creates a Redis store bound to one viewer.
func NewRedisStore(client *redis.Client, viewerID, sessionID string, sessionTTL time.Duration) *RedisStore {
	return &RedisStore{
		client:     client,
		viewerID:   viewerID,
		sessionID:  sessionID,
		sessionTTL: sessionTTL,
	}
}

func (r *RedisStore) Get(ctx context.Context, scope Scope, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.redisKey(scope, key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisStore) Set(ctx context.Context, scope Scope, key, value string) error {
	ttl := time.Duration(0)
	if scope == ScopeSession {
		ttl = r.sessionTTL
	}
	return r.client.Set(ctx, r.redisKey(scope, key), value, ttl).Err()
}

func (r *RedisStore) redisKey(scope Scope, key string) string {
	if scope == ScopeSession {
		return "popup:sess:" + r.sessionID + ":" + key
	}
	return "popup:viewer:" + r.viewerID + ":" + key
}
