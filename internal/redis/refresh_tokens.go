package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/gomodule/redigo/redis"

	"github.com/hminw18/timecheck-sub000/internal/config"
	"github.com/hminw18/timecheck-sub000/internal/model"
)

const refreshTokenPrefix = "refresh_token:"

// RefreshTokenRepository keeps refresh sessions in redis with a TTL, so
// expired sessions vanish without a cleanup job.
type RefreshTokenRepository struct {
	pool *redis.Pool
}

func NewRefreshTokenRepository(pool *redis.Pool) *RefreshTokenRepository {
	return &RefreshTokenRepository{pool: pool}
}

func (r *RefreshTokenRepository) Add(ctx context.Context, session string, id int64) error {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	// SET NX replies nil when the key exists.
	if _, err := redis.String(conn.Do("SET", refreshTokenPrefix+session, id,
		"NX", "EX", int(config.SessionTTl().Seconds()))); err != nil {
		if errors.Is(err, redis.ErrNil) {
			return model.ErrAlreadyExists
		}
		return fmt.Errorf("SET: %w", err)
	}

	return nil
}

func (r *RefreshTokenRepository) Get(ctx context.Context, session string) (int64, error) {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	id, err := redis.Int64(conn.Do("GET", refreshTokenPrefix+session))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return 0, model.ErrNoRecord
		}
		return 0, fmt.Errorf("GET: %w", err)
	}

	return id, nil
}

// Refresh atomically replaces an old session token with a new one keeping
// the same user. Fails with ErrNoRecord when the old session is gone and
// ErrAlreadyExists when the new token is already taken.
func (r *RefreshTokenRepository) Refresh(ctx context.Context, old, new string) error {
	id, err := r.Get(ctx, old)
	if err != nil {
		return err
	}

	if err := r.Add(ctx, new, id); err != nil {
		return err
	}

	return r.Delete(ctx, old)
}

func (r *RefreshTokenRepository) Delete(ctx context.Context, session string) error {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	deleted, err := redis.Int(conn.Do("DEL", refreshTokenPrefix+session))
	if err != nil {
		return fmt.Errorf("DEL: %w", err)
	}

	if deleted == 0 {
		return model.ErrNoRecord
	}

	return nil
}
