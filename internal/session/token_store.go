package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/agentconsole/pkg/cerr"
	"github.com/kazz187/agentconsole/pkg/storage"
)

const tokenPath = "session/token.yaml"

type tokenRecord struct {
	Token   string    `yaml:"token,omitempty"`
	Sealed  string    `yaml:"sealed,omitempty"`
	SavedAt time.Time `yaml:"saved_at"`
}

// TokenStore persists the bearer token. It is the only client state that
// survives a restart.
type TokenStore struct {
	storage storage.Storage
	sealer  Sealer
}

type TokenStoreOption func(*TokenStore)

// WithSealer encrypts the token at rest.
func WithSealer(s Sealer) TokenStoreOption {
	return func(ts *TokenStore) {
		ts.sealer = s
	}
}

func NewTokenStore(s storage.Storage, opts ...TokenStoreOption) *TokenStore {
	ts := &TokenStore{storage: s}
	for _, opt := range opts {
		opt(ts)
	}
	return ts
}

// Load returns the stored token, or "" when none has been saved.
func (ts *TokenStore) Load(ctx context.Context) (string, error) {
	data, err := ts.storage.Read(ctx, tokenPath)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", cerr.FromStorageError(cerr.StorageRead, "session token", err)
	}
	var rec tokenRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return "", cerr.NewError(cerr.DataLoss, "session token is corrupted", fmt.Errorf("failed to unmarshal token: %w", err))
	}
	if rec.Sealed == "" {
		return rec.Token, nil
	}
	if ts.sealer == nil {
		return "", cerr.NewError(cerr.FailedPrecondition, "session token is encrypted but no identity is configured", nil)
	}
	plain, err := ts.sealer.Open(rec.Sealed)
	if err != nil {
		return "", cerr.NewError(cerr.PermissionDenied, "session token cannot be decrypted", err)
	}
	return string(plain), nil
}

func (ts *TokenStore) Save(ctx context.Context, token string) error {
	if token == "" {
		return ts.Clear(ctx)
	}
	rec := tokenRecord{SavedAt: time.Now().UTC()}
	if ts.sealer != nil {
		sealed, err := ts.sealer.Seal([]byte(token))
		if err != nil {
			return cerr.NewError(cerr.Internal, "failed to encrypt session token", err)
		}
		rec.Sealed = sealed
	} else {
		rec.Token = token
	}
	data, err := yaml.Marshal(&rec)
	if err != nil {
		return cerr.NewError(cerr.Internal, "failed to encode session token", err)
	}
	if err := ts.storage.Write(ctx, tokenPath, data); err != nil {
		return cerr.FromStorageError(cerr.StorageWrite, "session token", err)
	}
	slog.DebugContext(ctx, "session token saved", "sealed", ts.sealer != nil)
	return nil
}

// Clear removes the stored token. Clearing an empty store succeeds.
func (ts *TokenStore) Clear(ctx context.Context) error {
	err := ts.storage.Delete(ctx, tokenPath)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return cerr.FromStorageError(cerr.StorageDelete, "session token", err)
	}
	return nil
}

// Path is the location of the token file when the storage is local.
func (ts *TokenStore) Path() (string, bool) {
	loc, ok := ts.storage.(storage.Locator)
	if !ok {
		return "", false
	}
	return loc.Resolve(tokenPath), true
}
