package redis

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewRedisBrokerRejectsBadURL(t *testing.T) {
	_, err := NewRedisBroker(context.Background(), Config{URL: "http://not-redis"}, zerolog.Nop(), nil)
	assert.ErrorContains(t, err, "failed to parse Redis URL")
}

func TestNewRedisBrokerFailsWhenUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	// Port 1 is reserved and refuses connections.
	_, err := NewRedisBroker(ctx, Config{URL: "redis://127.0.0.1:1/0"}, zerolog.Nop(), nil)
	assert.ErrorContains(t, err, "failed to connect to Redis")
}
