package kv

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

const DefaultNamespace = "webrtc_session"

// casScript sets KEYS[1] to ARGV[3] only if its current value matches the
// expectation: absent when ARGV[1] is "0", equal to ARGV[2] otherwise.
var casScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if ARGV[1] == '1' then
  if cur ~= ARGV[2] then return 0 end
elseif cur then
  return 0
end
redis.call('SET', KEYS[1], ARGV[3])
return 1
`)

// Redis is a Backend on top of a Redis server. The stored value itself is
// the version token, so any concurrent write fails the compare.
type Redis struct {
	client    redis.UniversalClient
	namespace string
}

// DialRedis connects using a redis:// URL and verifies the server answers.
func DialRedis(ctx context.Context, rawURL, namespace string) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	r := NewRedis(redis.NewClient(opts), namespace)
	if err := r.Ping(ctx); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return r, nil
}

func NewRedis(client redis.UniversalClient, namespace string) *Redis {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Redis{client: client, namespace: namespace}
}

func (r *Redis) key(k string) string { return r.namespace + ":" + k }

func (r *Redis) Get(ctx context.Context, key string) ([]byte, Version, error) {
	b, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, Version{}, nil
	}
	if err != nil {
		return nil, Version{}, err
	}
	return b, Version{Present: true, Token: string(b)}, nil
}

func (r *Redis) PutIfUnchanged(ctx context.Context, key string, value []byte, expected Version) error {
	present := "0"
	if expected.Present {
		present = "1"
	}
	ok, err := casScript.Run(ctx, r.client, []string{r.key(key)}, present, expected.Token, value).Int64()
	if err != nil {
		return err
	}
	if ok != 1 {
		return ErrConflict
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Del(ctx, r.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Redis) ListKeys(ctx context.Context) ([]string, error) {
	prefix := r.namespace + ":"
	var out []string
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		out = append(out, strings.TrimPrefix(iter.Val(), prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	// SCAN may repeat keys.
	sort.Strings(out)
	out = slices.Compact(out)
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error { return r.client.Close() }
