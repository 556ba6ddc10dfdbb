package store

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	platformerrors "voicerag-server-go/internal/platform/errors"
)

// RedisOptions configures the redis-backed transcript log.
type RedisOptions struct {
	Addr     string
	Username string
	Password string
	DB       int
	Key      string
}

// RedisStore appends records to a redis list.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, platformerrors.Wrap(platformerrors.KindStorage, "redis store",
			"failed to connect to redis", err)
	}

	key := opts.Key
	if key == "" {
		key = "voicerag:transcripts"
	}

	return &RedisStore{client: client, key: key}, nil
}

func (s *RedisStore) Append(ctx context.Context, rec Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	payload, err := sonic.Marshal(rec)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "redis store",
			"failed to encode record", err)
	}

	if err := s.client.RPush(ctx, s.key, payload).Err(); err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "redis store",
			"failed to append record", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
