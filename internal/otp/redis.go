package otp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix         = "otp:"
	fieldCode         = "code"
	fieldAttemptsLeft = "remaining_attempts"
)

// RedisStore keeps verifications in Redis hashes with a TTL. Attempt
// accounting uses optimistic concurrency: the key is WATCHed, the decision
// is made on the read value and committed in a MULTI/EXEC that fails when a
// concurrent attempt touched the key first, in which case the whole
// verification is retried.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Create(ctx context.Context, code string, maxAttempts int, ttl time.Duration) (string, error) {
	id := uuid.NewString()
	key := keyPrefix + id

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, fieldCode, code, fieldAttemptsLeft, maxAttempts)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("storing verification: %w", err)
	}
	return id, nil
}

func (s *RedisStore) Verify(ctx context.Context, authenticationID, code string) error {
	key := keyPrefix + authenticationID

	for {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			vals, err := tx.HGetAll(ctx, key).Result()
			if err != nil {
				return fmt.Errorf("loading verification: %w", err)
			}
			if len(vals) == 0 {
				return ErrNotFound
			}

			attempts, err := strconv.Atoi(vals[fieldAttemptsLeft])
			if err != nil {
				return fmt.Errorf("corrupt attempts counter: %w", err)
			}
			if attempts <= 0 {
				if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				}); err != nil {
					return err
				}
				return ErrTooManyAttempts
			}

			if subtle.ConstantTimeCompare([]byte(vals[fieldCode]), []byte(code)) == 1 {
				_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				return err
			}

			if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HIncrBy(ctx, key, fieldAttemptsLeft, -1)
				return nil
			}); err != nil {
				return err
			}
			return ErrInvalidCode
		}, key)

		// A concurrent attempt modified the key between read and commit;
		// the attempt has not been accounted yet, so run it again.
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
}
