package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/ruslat/internal/models"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// writeFixture writes a config and users file into a temp dir and returns the config path.
func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	users := `[
		{"id": 1, "name": "Иван Петров", "page": "ivanov"},
		{"id": 2, "name": "Мария Петрова", "page": "petrova"},
		{"id": "x3", "name": "John Smith"}
	]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte(users), 0644))
	cfg := "storage:\n  database_path: ./users.db\ndata:\n  users_file: ./users.json\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))
	return path
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"single word", []string{"petrov"}, "petrov"},
		{"multiple words", []string{"иван", "петров"}, "иван петров"},
		{"quoted phrase", []string{"иван петров"}, "иван петров"},
		{"empty", nil, ""},
		{"blank", []string{"  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildQuery(tt.args))
		})
	}
}

func TestLoadConfig_explicitPath(t *testing.T) {
	path := writeFixture(t)
	cfg, resolved, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "users.db"), cfg.Storage.DatabasePath)
	assert.Equal(t, 7777, cfg.Server.Port)
}

func TestLoadConfig_missingExplicitPath(t *testing.T) {
	_, _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestVariationsCmd(t *testing.T) {
	out, err := run(t, "variations", "ghbdtn")
	require.NoError(t, err)
	assert.Equal(t, "as typed: ghbdtn\nkeyboard: привет\ntranslit: гхбдтн\n", out)
}

func TestVariationsCmd_badFormat(t *testing.T) {
	_, err := run(t, "variations", "ghbdtn", "--format", "xml")
	assert.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ruslat dev\n", out)
}

func TestImportThenSearchLocal(t *testing.T) {
	cfgPath := writeFixture(t)
	usersFile := filepath.Join(filepath.Dir(cfgPath), "users.json")

	out, err := run(t, "--config", cfgPath, "import", usersFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 users")

	out, err = run(t, "--config", cfgPath, "search", "--local", "--format", "json", "petrov")
	require.NoError(t, err)
	var users []models.User
	require.NoError(t, json.Unmarshal([]byte(out), &users))
	require.Len(t, users, 2)
	assert.Equal(t, "1", users[0].ID)
	assert.Equal(t, "2", users[1].ID)

	out, err = run(t, "--config", cfgPath, "lookup", "--local", "ivan")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	out, err = run(t, "--config", cfgPath, "lookup", "--local", "--format", "json", "шмфт")
	require.NoError(t, err)
	assert.JSONEq(t, `["1"]`, out)
}

func TestImportCmd_unsupportedFile(t *testing.T) {
	cfgPath := writeFixture(t)
	bad := filepath.Join(t.TempDir(), "users.csv")
	require.NoError(t, os.WriteFile(bad, []byte("id,name\n"), 0644))

	_, err := run(t, "--config", cfgPath, "import", bad)
	assert.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "config.yaml")

	out, err := run(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	_, err = run(t, "--config", path, "config", "init")
	assert.Error(t, err, "existing file is not overwritten without --force")

	_, err = run(t, "--config", path, "config", "init", "--force")
	assert.NoError(t, err)

	out, err = run(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "port: 7777")
}
