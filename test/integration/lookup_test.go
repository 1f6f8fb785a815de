// Package integration runs the server, client, cache and dropdown together
// against real SQLite storage.
package integration

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hyperjump/ruslat/internal/cache"
	"github.com/hyperjump/ruslat/internal/client"
	"github.com/hyperjump/ruslat/internal/config"
	"github.com/hyperjump/ruslat/internal/dropdown"
	"github.com/hyperjump/ruslat/internal/indexer"
	"github.com/hyperjump/ruslat/internal/search"
	"github.com/hyperjump/ruslat/internal/server"
	"github.com/hyperjump/ruslat/internal/storage"
)

type staticFiles []string

func (s staticFiles) Files() []string { return s }

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	usersFile := filepath.Join(dir, "users.yaml")
	require.NoError(t, os.WriteFile(usersFile, []byte(`
- {id: "1", name: Иван Петров, page: ivanov}
- {id: "2", name: Иван Сидоров}
- {id: "3", name: Ольга Смирнова, page: olga}
- {id: "4", name: John Smith, page: jsmith}
`), 0644))

	logger := zap.NewNop()
	engine := search.NewEngine(store, &config.SearchConfig{}, logger)
	idx := indexer.NewIndexer(store, engine, indexer.WithLogger(logger))
	_, err = idx.ImportFile(context.Background(), usersFile)
	require.NoError(t, err)

	srv := server.NewServer(engine, idx, store, &config.ServerConfig{RequestTimeout: 5 * time.Second}, logger, staticFiles{usersFile}, usersFile)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func values(items []dropdown.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Value
	}
	return out
}

func TestIntegration_DropdownOverHTTP(t *testing.T) {
	ts := startServer(t)
	ctx := context.Background()
	cl := client.New(ts.URL, client.WithCache(cache.NewMemory(16, time.Minute)))

	require.NoError(t, cl.Health(ctx))
	users, err := cl.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 4)

	dd := dropdown.New(dropdown.Capabilities{Multi: true, Autocomplete: true, ShowPageHandle: true}, dropdown.WithRemote(cl))
	dd.SetItems(dropdown.ItemsFromUsers(users))

	res := dd.Search(ctx, "jsm")
	require.NoError(t, res.RemoteErr)
	assert.Equal(t, []string{"4"}, values(res.Items), "found by page handle only")

	res = dd.Search(ctx, "иван")
	assert.Equal(t, []string{"1", "2"}, values(res.Items))

	require.NoError(t, dd.Select("1"))
	res = dd.Search(ctx, "иван")
	assert.Equal(t, []string{"2"}, values(res.Items))

	res = dd.Search(ctx, "шмфт")
	assert.Equal(t, []string{"2"}, values(res.Items), "selected user stays hidden")
}

func TestIntegration_CachedLookupsSurviveOutage(t *testing.T) {
	ts := startServer(t)
	ctx := context.Background()
	cl := client.New(ts.URL, client.WithCache(cache.NewMemory(16, time.Minute)))

	ids, err := cl.SearchByPage(ctx, "Olga")
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, ids)

	ts.Close()

	ids, err = cl.SearchByPage(ctx, "olga")
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, ids)

	_, err = cl.SearchByPage(ctx, "ivan")
	assert.ErrorIs(t, err, client.ErrUnavailable)
}

func TestIntegration_BlankLookupSkipsRequest(t *testing.T) {
	ts := startServer(t)
	cl := client.New(ts.URL)

	ids, err := cl.SearchByPage(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
