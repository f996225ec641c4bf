package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/cocktail-pantry/internal/core/domain"
)

const (
	feasibilityKeyPrefix    = "feasibility:"
	feasibilityGenKeyPrefix = "feasibility:gen:"
)

var releaseLockScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// The hash expiry is set once, when the first threshold is cached, so later
// writes cannot extend older fields past the ttl.
var setFeasibilityScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[2]) or '0')
if current ~= tonumber(ARGV[1]) then
	return 0
end

redis.call('HSET', KEYS[1], ARGV[2], ARGV[3])
if redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[4])
end
return 1
`)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (r *RedisAdapter) ReleaseLock(ctx context.Context, key, token string) error {
	return releaseLockScript.Run(ctx, r.client, []string{key}, token).Err()
}

func (r *RedisAdapter) GetFeasibility(ctx context.Context, userID int64, maxMissing int) ([]domain.FeasibilityResult, bool, error) {
	raw, err := r.client.HGet(ctx, feasibilityKey(userID), strconv.Itoa(maxMissing)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var results []domain.FeasibilityResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, false, fmt.Errorf("decode feasibility: %w", err)
	}
	return results, true, nil
}

func (r *RedisAdapter) FeasibilityGeneration(ctx context.Context, userID int64) (int64, error) {
	gen, err := r.client.Get(ctx, feasibilityGenKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (r *RedisAdapter) SetFeasibility(ctx context.Context, userID int64, maxMissing int, gen int64, results []domain.FeasibilityResult, ttl time.Duration) (bool, error) {
	if results == nil {
		results = []domain.FeasibilityResult{}
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return false, fmt.Errorf("encode feasibility: %w", err)
	}

	keys := []string{feasibilityKey(userID), feasibilityGenKey(userID)}
	stored, err := setFeasibilityScript.Run(ctx, r.client, keys, gen, strconv.Itoa(maxMissing), raw, ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

func (r *RedisAdapter) InvalidateFeasibility(ctx context.Context, userID int64) error {
	pipe := r.client.TxPipeline()
	pipe.Incr(ctx, feasibilityGenKey(userID))
	pipe.Del(ctx, feasibilityKey(userID))
	_, err := pipe.Exec(ctx)
	return err
}

func feasibilityKey(userID int64) string {
	return feasibilityKeyPrefix + strconv.FormatInt(userID, 10)
}

func feasibilityGenKey(userID int64) string {
	return feasibilityGenKeyPrefix + strconv.FormatInt(userID, 10)
}
