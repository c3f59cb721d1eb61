package console

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/agentconsole/internal/activitylog"
	"github.com/kazz187/agentconsole/internal/agent"
	"github.com/kazz187/agentconsole/internal/auth"
	"github.com/kazz187/agentconsole/internal/config"
	"github.com/kazz187/agentconsole/internal/session"
	"github.com/kazz187/agentconsole/internal/testutil/fakeapi"
	"github.com/kazz187/agentconsole/internal/tool"
	"github.com/kazz187/agentconsole/pkg/storage"
)

type harness struct {
	console *Console
	api     *fakeapi.Server
	srv     *httptest.Server
	store   *storage.LocalStorage
}

func newHarness(t *testing.T) harness {
	t.Helper()
	api, srv := fakeapi.Start(t)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	c, err := New(context.Background(), Config{
		APIBaseURL:     srv.URL,
		RequestTimeout: 5 * time.Second,
	}, Deps{Storage: store})
	require.NoError(t, err)
	return harness{console: c, api: api, srv: srv, store: store}
}

func (h harness) login(t *testing.T) {
	t.Helper()
	h.console.Auth.Login(context.Background(), auth.Credentials{Email: fakeapi.SeedEmail, Password: fakeapi.SeedPassword})
	require.True(t, h.console.Auth.State().Authenticated())
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(context.Background(), Config{}, Deps{})
	assert.Error(t, err)
}

func TestConsole_TokenSurvivesRestart(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	token := h.console.Session.Token()

	again, err := New(context.Background(), Config{APIBaseURL: h.srv.URL}, Deps{Storage: h.store})
	require.NoError(t, err)
	assert.Equal(t, token, again.Session.Token())
	assert.Equal(t, token, again.Auth.State().Token)

	again.Auth.LoadUser(context.Background())
	assert.True(t, again.Auth.State().Authenticated())
}

func TestConsole_EveryRequestCarriesToken(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()

	h.console.LoadAgents(ctx)
	h.console.LoadTools(ctx)
	require.NoError(t, h.console.LoadLogs(ctx, activitylog.AllScope(), 1))

	want := "Bearer " + h.console.Session.Token()
	reqs := h.api.Requests()
	require.NotEmpty(t, reqs)
	for _, r := range reqs {
		if r.Path == "/api/auth/login" {
			continue
		}
		assert.Equal(t, want, r.Authorization, r.Path)
	}

	h.console.Auth.Logout(ctx)
	h.console.LoadAgents(ctx)
	last := h.api.Requests()[len(h.api.Requests())-1]
	assert.Empty(t, last.Authorization)
	assert.Equal(t, []string{"Not authorized to access this route"}, h.console.Alerts())
}

func TestConsole_LoadAgentDetail(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()

	toolID := h.api.AddTool(fakeapi.Object{"name": "Search", "type": "github", "endpoint": "https://api.github.com"})
	agentID := h.api.AddAgent(fakeapi.Object{"name": "PR Helper", "type": "github", "isActive": true, "tools": []any{toolID, "gone"}})
	for range 7 {
		h.api.AddLog(fakeapi.Object{"type": "query", "message": "hi", "agentId": agentID, "agentName": "PR Helper"})
	}

	require.NoError(t, h.console.LoadAgentDetail(ctx, agentID))
	current := h.console.Agents.State().Current
	require.NotNil(t, current)
	assert.Equal(t, "PR Helper", current.Name)
	assert.Len(t, h.console.Logs.State().Logs, RecentLogLimit)
	assert.Equal(t, 7, h.console.Logs.State().Pagination.Total)

	resolved := h.console.ResolveTools(current)
	require.Len(t, resolved, 2)
	assert.Equal(t, "Search", resolved[0].Name)
	assert.Equal(t, tool.Placeholder("gone"), resolved[1])
}

func TestConsole_LoadAgentDetailPartialFailure(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()
	agentID := h.api.AddAgent(fakeapi.Object{"name": "Echo", "type": "custom"})

	h.api.FailNext(http.MethodGet, "/api/tools", http.StatusInternalServerError, "database down")
	err := h.console.LoadAgentDetail(ctx, agentID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database down")
	assert.Equal(t, "Echo", h.console.Agents.State().Current.Name)
	assert.Equal(t, []string{"database down"}, h.console.Alerts())

	h.console.ClearAlerts()
	assert.True(t, h.console.Retry(ctx))
	assert.Empty(t, h.console.Alerts())
}

func TestConsole_LoadAgentDetailIgnoresEarlierFailure(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()
	agentID := h.api.AddAgent(fakeapi.Object{"name": "Echo", "type": "custom"})

	h.api.FailNext(http.MethodGet, "/api/agents", http.StatusInternalServerError, "boom")
	h.console.LoadAgents(ctx)
	require.Equal(t, []string{"boom"}, h.console.Alerts())

	require.NoError(t, h.console.LoadAgentDetail(ctx, agentID))
	assert.Equal(t, "Echo", h.console.Agents.State().Current.Name)

	h.api.FailNext(http.MethodGet, "/api/logs", http.StatusInternalServerError, "logs down")
	h.console.Logs.GetLogs(ctx, 1, 20)
	require.NoError(t, h.console.LoadLogs(ctx, activitylog.AgentScope(agentID), 1))
}

func TestConsole_LoadLogsNamesSource(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()
	agentID := h.api.AddAgent(fakeapi.Object{"name": "Echo", "type": "custom"})
	toolID := h.api.AddTool(fakeapi.Object{"name": "Pinger", "endpoint": "https://ping.example.com"})

	scope := activitylog.AgentScope(agentID)
	assert.Empty(t, h.console.SourceName(scope))
	require.NoError(t, h.console.LoadLogs(ctx, scope, 1))
	assert.Equal(t, "Logs for Agent: Echo", h.console.LogTitle(scope))
	assert.Equal(t, "Unknown Agent", h.console.SourceName(activitylog.AgentScope("missing")))

	require.NoError(t, h.console.LoadLogs(ctx, activitylog.ToolScope(toolID), 1))
	assert.Equal(t, "Pinger", h.console.SourceName(activitylog.ToolScope(toolID)))
	assert.Equal(t, "Unknown Tool", h.console.SourceName(activitylog.ToolScope("missing")))
	assert.Equal(t, "Activity Logs", h.console.LogTitle(activitylog.AllScope()))
}

func TestConsole_RetryWithoutFetch(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.console.Retry(context.Background()))
}

func TestConsole_AlertsOrder(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()

	h.api.FailNext(http.MethodGet, "/api/agents", http.StatusInternalServerError, "agents down")
	h.console.LoadAgents(ctx)
	h.api.FailNext(http.MethodGet, "/api/logs", http.StatusInternalServerError, "logs down")
	_ = h.console.LoadLogs(ctx, activitylog.AllScope(), 1)
	h.console.Auth.Login(ctx, auth.Credentials{Email: fakeapi.SeedEmail, Password: "wrong"})

	assert.Equal(t, []string{"Invalid credentials", "agents down", "logs down"}, h.console.Alerts())
}

func TestConsole_Conversation(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()
	id := h.api.AddAgent(fakeapi.Object{"name": "Echo", "type": "custom", "isActive": true})

	conv := h.console.Conversation(&agent.Agent{ID: id, Name: "Echo", IsActive: true})
	require.NoError(t, conv.Submit(ctx, "ping"))
	msgs := conv.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Echo received: ping", msgs[1].Content)
}

func TestConsole_Validation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	errs, err := h.console.ValidateToolForm(ctx, tool.NewForm())
	require.NoError(t, err)
	assert.Contains(t, errs, "name")

	errs, err = h.console.ValidateProfile(ctx, auth.ProfileForm{Name: "Admin", Email: "admin@example.com"})
	require.NoError(t, err)
	assert.Nil(t, errs)

	errs, err = h.console.ValidatePasswordChange(ctx, auth.PasswordChange{CurrentPassword: "secret123", NewPassword: "abc"}, "abd")
	require.NoError(t, err)
	assert.Equal(t, "Password must be at least 6 characters", errs["newPassword"])
	assert.Equal(t, "Passwords do not match", errs["confirmPassword"])

	errs, err = h.console.ValidateDetails(ctx, auth.Profile{Name: "Admin", Email: "admin@example.com"})
	require.NoError(t, err)
	assert.Nil(t, errs)
}

func TestConsole_WatchSession(t *testing.T) {
	session.WatchDebounce = 10 * time.Millisecond
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- h.console.WatchSession(ctx) }()
	time.Sleep(50 * time.Millisecond)

	other, err := New(ctx, Config{APIBaseURL: h.srv.URL}, Deps{Storage: h.store})
	require.NoError(t, err)
	other.Auth.Login(ctx, auth.Credentials{Email: fakeapi.SeedEmail, Password: fakeapi.SeedPassword})

	require.Eventually(t, func() bool {
		return h.console.Auth.State().Authenticated()
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, other.Session.Token(), h.console.Session.Token())

	cancel()
	assert.NoError(t, <-done)
}

func TestConsole_WatchSessionWithoutStorage(t *testing.T) {
	_, srv := fakeapi.Start(t)
	c, err := New(context.Background(), Config{APIBaseURL: srv.URL}, Deps{})
	require.NoError(t, err)
	assert.ErrorIs(t, c.WatchSession(context.Background()), session.ErrNotWatchable)
}

func TestNewFromEnv_Local(t *testing.T) {
	dir := t.TempDir()
	_, srv := fakeapi.Start(t)
	env := &config.Env{}
	env.APIBaseURL = srv.URL
	env.StorageEnv.Type = "local"
	env.StorageEnv.BaseDir = dir
	env.SessionEnv.IdentityFile = filepath.Join(dir, "identity.txt")

	c, err := NewFromEnv(context.Background(), env)
	require.NoError(t, err)
	c.Auth.Login(context.Background(), auth.Credentials{Email: fakeapi.SeedEmail, Password: fakeapi.SeedPassword})
	require.True(t, c.Auth.State().Authenticated())

	_, err = os.Stat(env.SessionEnv.IdentityFile)
	require.NoError(t, err)
	raw, err := os.ReadFile(filepath.Join(dir, "session", "token.yaml"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), c.Session.Token())
	assert.Contains(t, string(raw), "sealed:")
}
