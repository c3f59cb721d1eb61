package session

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kazz187/agentconsole/pkg/cerr"
	"github.com/kazz187/agentconsole/pkg/storage"
)

func TestSession_Apply(t *testing.T) {
	s := New("")
	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)

	s.Apply(req)
	assert.Empty(t, req.Header.Get("Authorization"))

	s.SetToken("abc")
	s.Apply(req)
	s.Apply(req)
	assert.Equal(t, []string{"Bearer abc"}, req.Header.Values("Authorization"))

	s.SetToken("")
	s.Apply(req)
	_, present := req.Header["Authorization"]
	assert.False(t, present)
}

func newLocalStore(t *testing.T, opts ...TokenStoreOption) (*TokenStore, *storage.LocalStorage) {
	t.Helper()
	st, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewTokenStore(st, opts...), st
}

func TestTokenStore_PlainRoundTrip(t *testing.T) {
	ctx := context.Background()
	ts, _ := newLocalStore(t)

	token, err := ts.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, ts.Save(ctx, "tok-1"))
	token, err = ts.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	require.NoError(t, ts.Clear(ctx))
	require.NoError(t, ts.Clear(ctx))
	token, err = ts.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestTokenStore_SaveEmptyClears(t *testing.T) {
	ctx := context.Background()
	ts, st := newLocalStore(t)
	require.NoError(t, ts.Save(ctx, "tok"))
	require.NoError(t, ts.Save(ctx, ""))
	exists, err := st.Exists(ctx, tokenPath)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTokenStore_Sealed(t *testing.T) {
	ctx := context.Background()
	identity, err := LoadOrCreateIdentity(filepath.Join(t.TempDir(), "identity.txt"))
	require.NoError(t, err)
	ts, st := newLocalStore(t, WithSealer(NewAgeSealer(identity)))

	require.NoError(t, ts.Save(ctx, "secret-token"))

	raw, err := st.Read(ctx, tokenPath)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-token")
	var rec tokenRecord
	require.NoError(t, yaml.Unmarshal(raw, &rec))
	assert.Empty(t, rec.Token)
	assert.NotEmpty(t, rec.Sealed)

	token, err := ts.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", token)

	// the same file without the identity cannot be read back
	_, err = NewTokenStore(st).Load(ctx)
	assert.True(t, cerr.IsCode(err, cerr.FailedPrecondition))
}

func TestLoadOrCreateIdentity_Reuses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "identity.txt")
	first, err := LoadOrCreateIdentity(path)
	require.NoError(t, err)
	second, err := LoadOrCreateIdentity(path)
	require.NoError(t, err)
	assert.Equal(t, first.String(), second.String())
}

func TestTokenStore_Watch(t *testing.T) {
	WatchDebounce = 10 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ts, st := newLocalStore(t)
	other := NewTokenStore(st)

	changes := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- ts.Watch(ctx, "", func(token string) { changes <- token })
	}()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, other.Save(ctx, "from-login"))

	select {
	case got := <-changes:
		assert.Equal(t, "from-login", got)
	case <-ctx.Done():
		t.Fatal("token change was not observed")
	}

	require.NoError(t, other.Clear(ctx))
	select {
	case got := <-changes:
		assert.Empty(t, got)
	case <-ctx.Done():
		t.Fatal("token removal was not observed")
	}

	cancel()
	assert.NoError(t, <-done)
}
