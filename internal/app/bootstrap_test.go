package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-analyst/internal/common/config"
	"survey-analyst/internal/common/database"
	"survey-analyst/internal/common/logger"
)

var fastRetry = RetryPolicy{Attempts: 3, InitialDelay: time.Millisecond}

func TestRetryWithBackoff_EventuallySucceeds(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), fastRetry, logger.NewTestLogger(t), "ping", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_GivesUp(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), fastRetry, logger.NewTestLogger(t), "ping", func(context.Context) error {
		calls++
		return errors.New("connection refused")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "ping failed after 3 attempts")
}

func TestRetryWithBackoff_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryWithBackoff(ctx, RetryPolicy{Attempts: 5, InitialDelay: time.Hour}, logger.NewTestLogger(t), "ping", func(context.Context) error {
		calls++
		cancel()
		return errors.New("down")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestConnect_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: "oracle"}}
	_, err := Connect(context.Background(), cfg, RetryPolicy{Attempts: 1}, logger.NewTestLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestBackends_Checks(t *testing.T) {
	mr := miniredis.RunT(t)
	b := &Backends{
		Redis:  database.NewRedis(config.RedisConfig{Address: mr.Addr()}),
		logger: logger.NewTestLogger(t),
	}
	defer b.Close(context.Background())

	checks := b.Checks()
	require.Contains(t, checks, "redis")
	assert.NotContains(t, checks, "database")
	assert.NoError(t, checks["redis"](context.Background()))

	deps := b.Dependencies()
	assert.Same(t, b.Redis, deps.Redis)
	assert.Nil(t, deps.SQL)
}
