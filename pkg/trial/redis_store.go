package trial

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures RedisStore.
type RedisConfig struct {
	KeyPrefix string        `env:"TRIAL_SESSION_PREFIX" envDefault:"trial:session:"`
	TTL       time.Duration `env:"TRIAL_SESSION_TTL" envDefault:"0s"`
}

// RedisStore keeps sessions in redis as JSON. A zero TTL stores them without expiry.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a store on client.
func NewRedisStore(client redis.UniversalClient, cfg RedisConfig) (*RedisStore, error) {
	if client == nil {
		return nil, ErrRedisClientMissing
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "trial:session:"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: max(cfg.TTL, 0)}, nil
}

func (r *RedisStore) Load(ctx context.Context, visitor string) (Session, bool, error) {
	data, err := r.client.Get(ctx, r.prefix+visitor).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, errors.Join(ErrStore, err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, false, errors.Join(ErrStore, err)
	}
	return s, true, nil
}

func (r *RedisStore) Save(ctx context.Context, visitor string, s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Join(ErrStore, err)
	}
	if err := r.client.Set(ctx, r.prefix+visitor, data, r.ttl).Err(); err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, visitor string) error {
	if err := r.client.Del(ctx, r.prefix+visitor).Err(); err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}
