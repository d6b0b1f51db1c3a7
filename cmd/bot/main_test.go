package main

import (
	"testing"
	"time"

	"contestbot/internal/config"
	"contestbot/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupInterval(t *testing.T) {
	tests := []struct {
		name     string
		ttl      time.Duration
		expected time.Duration
	}{
		{name: "default ttl", ttl: 30 * time.Minute, expected: 15 * time.Minute},
		{name: "long ttl capped", ttl: 24 * time.Hour, expected: time.Hour},
		{name: "short ttl floored", ttl: 10 * time.Second, expected: time.Minute},
		{name: "disabled ttl", ttl: 0, expected: time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanupInterval(tt.ttl))
		})
	}
}

func TestNewSessionStore(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		store, closeFn, err := newSessionStore(config.SessionConfig{Backend: config.SessionBackendMemory, TTL: time.Minute})
		require.NoError(t, err)
		defer closeFn()

		assert.IsType(t, &session.MemoryStore{}, store)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)

		store, closeFn, err := newSessionStore(config.SessionConfig{
			Backend:   config.SessionBackendRedis,
			TTL:       time.Minute,
			RedisAddr: mr.Addr(),
		})
		require.NoError(t, err)
		defer closeFn()

		assert.IsType(t, &session.RedisStore{}, store)
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, _, err := newSessionStore(config.SessionConfig{
			Backend:   config.SessionBackendRedis,
			TTL:       time.Minute,
			RedisAddr: addr,
		})
		assert.Error(t, err)
	})
}
