package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"CONSOLE_API_BASE_URL", "CONSOLE_STORAGE_BASE_DIR", "CONSOLE_REQUEST_TIMEOUT", "CONSOLE_REPLY_DELAY", "CONSOLE_SESSION_IDENTITY"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", env.APIBaseURL)
	assert.Equal(t, 30*time.Second, env.RequestTimeout)
	assert.Equal(t, 500*time.Millisecond, env.ReplyDelay)
	assert.Equal(t, filepath.Join(home, ".agentconsole"), env.BaseDir)
	assert.Equal(t, "local", env.StorageEnv.Type)
	assert.Empty(t, env.IdentityFile)
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("CONSOLE_API_BASE_URL", "https://console.example.com/")
	t.Setenv("CONSOLE_REQUEST_TIMEOUT", "5s")
	t.Setenv("CONSOLE_REPLY_DELAY", "0s")
	t.Setenv("CONSOLE_STORAGE_TYPE", "s3")
	t.Setenv("CONSOLE_S3_BUCKET", "tokens")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://console.example.com", env.APIBaseURL)
	assert.Equal(t, 5*time.Second, env.RequestTimeout)
	assert.Zero(t, env.ReplyDelay)
	assert.Equal(t, "s3", env.StorageEnv.Type)
	assert.Equal(t, "tokens", env.S3Bucket)
}

func TestLoadEnv_InvalidDuration(t *testing.T) {
	t.Setenv("CONSOLE_REQUEST_TIMEOUT", "soon")
	_, err := LoadEnv()
	assert.Error(t, err)
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, (&BaseEnv{LogLevel: "warn"}).SlogLevel())
	assert.Equal(t, slog.LevelInfo, (&BaseEnv{LogLevel: "loud"}).SlogLevel())
	var nilEnv *BaseEnv
	assert.Equal(t, slog.LevelInfo, nilEnv.SlogLevel())
}
