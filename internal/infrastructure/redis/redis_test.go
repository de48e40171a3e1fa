package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"signit-esign/internal/config"
)

func TestNewRedisClientDisabled(t *testing.T) {
	client, err := NewRedisClient(fxtest.NewLifecycle(t), &config.Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewRedisClientUnreachable(t *testing.T) {
	cfg := &config.Config{Redis: config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}}

	_, err := NewRedisClient(fxtest.NewLifecycle(t), cfg, zap.NewNop())
	assert.Error(t, err)
}
