package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_perClient(t *testing.T) {
	rl := newRateLimiter(1, 1)
	now := time.Now()
	assert.True(t, rl.allow("10.0.0.1", now))
	assert.False(t, rl.allow("10.0.0.1", now))
	assert.True(t, rl.allow("10.0.0.2", now))
	assert.True(t, rl.allow("10.0.0.1", now.Add(time.Second)))
}

func TestRateLimiter_forgetsIdleClients(t *testing.T) {
	rl := newRateLimiter(1, 1)
	now := time.Now()
	rl.allow("10.0.0.1", now)
	rl.allow("10.0.0.2", now.Add(2*limiterIdleTTL))
	assert.Len(t, rl.clients, 1)
}

func TestClientAddr(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", clientAddr(r))
	r.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", clientAddr(r))
}
