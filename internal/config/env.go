package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env            string        `envconfig:"ENV" default:"local"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	APIBaseURL     string        `envconfig:"API_BASE_URL" default:"http://localhost:5000"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ReplyDelay     time.Duration `envconfig:"REPLY_DELAY" default:"500ms"`
}

type StorageEnv struct {
	Type    string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:"~/.agentconsole"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"agentconsole/"`
	S3Region string `envconfig:"S3_REGION" default:"ap-northeast-1"`
}

type SessionEnv struct {
	// IdentityFile is an age X25519 identity; when set the stored token is
	// encrypted to it.
	IdentityFile string `envconfig:"SESSION_IDENTITY"`
}

type Env struct {
	BaseEnv
	StorageEnv
	SessionEnv
}

const namespace = "CONSOLE"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	env.BaseDir = expandHome(env.BaseDir)
	env.IdentityFile = expandHome(env.IdentityFile)
	env.APIBaseURL = strings.TrimSuffix(env.APIBaseURL, "/")
	return &env, nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelInfo
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (e *BaseEnv) IsLocal() bool {
	return e.Env == "local"
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
