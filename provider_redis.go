package cache

import (
	"context"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// RedisCache is a durable tier backed by redis. Entries are msgpack encoded.
type RedisCache struct {
	client redis.Cmdable
}

func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{
		client: client,
	}
}

func (r *RedisCache) Get(ctx context.Context, key string, requiredModelVersion uint16) (*Entry, error) {
	cmd := r.client.Get(ctx, key)

	if cmd.Err() != nil {
		if errors.Is(cmd.Err(), redis.Nil) {
			return nil, nil
		}
		return nil, errors.WithStack(cmd.Err())
	}

	bts, err := cmd.Bytes()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var item Entry
	if err = msgpack.Unmarshal(bts, &item); err != nil {
		return nil, errors.WithStack(err)
	}

	if !item.usable(requiredModelVersion) {
		return nil, nil
	}

	return &item, nil
}

func (r *RedisCache) MSet(ctx context.Context, values map[string]*Entry, ttl time.Duration) error {
	var multiErr error

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			b, err := msgpack.Marshal(v)
			if err != nil {
				multiErr = multierror.Append(multiErr, errors.Wrapf(err, "can not encode %s", k))
				continue
			}
			pipe.Set(ctx, k, b, ttl)
		}

		return nil
	})
	if err != nil {
		multiErr = multierror.Append(multiErr, errors.WithStack(err))
	}

	return multiErr
}

var _ Provider = (*RedisCache)(nil)
