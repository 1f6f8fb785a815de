package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/ruslat/internal/cache"
	"github.com/hyperjump/ruslat/internal/config"
	"github.com/hyperjump/ruslat/internal/match"
)

func newServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestSearchByPage(t *testing.T) {
	var gotPath string
	srv, hits := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`["1","7"]`))
	})
	c := New(srv.URL)

	ids, err := c.SearchByPage(context.Background(), "  IvAn ")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "7"}, ids)
	assert.Equal(t, "/api/users-by-page/ivan", gotPath)
	assert.Equal(t, int32(1), hits.Load())
}

func TestSearchByPage_escapesQuery(t *testing.T) {
	var rawPath string
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		rawPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := New(srv.URL).SearchByPage(context.Background(), "a b/c")
	require.NoError(t, err)
	assert.Equal(t, "/api/users-by-page/a%20b%2Fc", rawPath)
}

func TestSearchByPage_blankSkipsRequest(t *testing.T) {
	srv, hits := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["1"]`))
	})
	ids, err := New(srv.URL).SearchByPage(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, []string{}, ids)
	assert.Zero(t, hits.Load())
}

func TestSearchByPage_numericIDs(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[1, 7]`))
	})
	ids, err := New(srv.URL).SearchByPage(context.Background(), "ivan")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "7"}, ids)
}

func TestSearchByPage_cache(t *testing.T) {
	srv, hits := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["3"]`))
	})
	mem := cache.NewMemory(8, time.Minute)
	c := New(srv.URL, WithCache(mem))

	for _, q := range []string{"petr", " PETR", "petr "} {
		ids, err := c.SearchByPage(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, []string{"3"}, ids)
	}
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 1, mem.Len())
}

func TestSearchByPage_failuresAreUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}},
		{"wrong shape", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ids": []}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, tt.handler)
			mem := cache.NewMemory(8, time.Minute)
			_, err := New(srv.URL, WithCache(mem)).SearchByPage(context.Background(), "ivan")
			assert.ErrorIs(t, err, ErrUnavailable)
			assert.Zero(t, mem.Len())
		})
	}
}

func TestSearchByPage_unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).SearchByPage(context.Background(), "ivan")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSearchByPage_remoteError(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"search must not be empty"}`))
	})
	_, err := New(srv.URL).SearchByPage(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, match.ErrEmptyQuery)
	assert.NotErrorIs(t, err, ErrUnavailable)

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "search must not be empty", remote.Message)
}

func TestSearchUsers(t *testing.T) {
	var gotQuery string
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`[{"id":"1","name":"Иван Петров","page":"ivanov"}]`))
	})
	users, err := New(srv.URL).SearchUsers(context.Background(), "иван петров")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Иван Петров", users[0].Name)
	assert.Equal(t, "иван петров", gotQuery)
}

func TestRateLimitHonoursContext(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	c := New(srv.URL, WithRateLimit(0.001, 1))

	_, err := c.SearchByPage(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.SearchByPage(ctx, "b")
	assert.Error(t, err)
}

func TestNewFromConfig(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	cfg := config.Default().Client
	cfg.ServerURL = srv.URL + "/"
	c := NewFromConfig(&cfg, nil, nil)
	assert.NoError(t, c.Health(context.Background()))
}
