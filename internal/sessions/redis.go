package sessions

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/stratus-tools/bug-advisor/internal/utils"
)

const keyPrefix = "session:"

// RedisStore keeps sessions in Redis so logins survive process restarts.
// Expiry rides on the key TTL.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Create(ctx context.Context, username string, ttl time.Duration) (*Session, error) {
	sess := Session{
		Token:     uuid.NewString(),
		Username:  username,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}

	b, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	if err := s.rdb.Set(ctx, keyPrefix+sess.Token, b, ttl).Err(); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+token).Result()
	if err == redis.Nil {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		// corrupt entry: drop it and report absent
		_ = s.rdb.Del(ctx, keyPrefix+token).Err()
		return nil, utils.ErrNotFound
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, keyPrefix+token).Err()
}
