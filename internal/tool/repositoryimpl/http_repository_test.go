package repositoryimpl

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/agentconsole/internal/apiclient"
	"github.com/kazz187/agentconsole/internal/session"
	"github.com/kazz187/agentconsole/internal/testutil/fakeapi"
	"github.com/kazz187/agentconsole/internal/tool"
	"github.com/kazz187/agentconsole/pkg/cerr"
)

func newRepo(t *testing.T) (*HTTPRepository, *fakeapi.Server) {
	t.Helper()
	api, srv := fakeapi.Start(t)
	client := apiclient.New(srv.URL, session.New(api.Token()))
	return NewHTTPRepository(client), api
}

func TestHTTPRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	_, err := repo.Create(ctx, &tool.Tool{Name: "No endpoint"})
	require.Error(t, err)
	assert.Equal(t, "Please provide a name and endpoint", cerr.Message(err, ""))

	created, err := repo.Create(ctx, &tool.Tool{
		Name:       "Issue search",
		Type:       tool.TypeGitHub,
		Endpoint:   "https://api.github.com/search/issues",
		Method:     tool.MethodGet,
		Headers:    map[string]string{"Accept": "application/vnd.github+json"},
		Parameters: []tool.Parameter{{Name: "q", Type: tool.ParamString, Required: true}},
		Auth:       tool.Auth{Type: tool.AuthBearer, Token: "ghp"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "application/vnd.github+json", created.Headers["Accept"])
	assert.Equal(t, tool.AuthBearer, created.Auth.Type)
	assert.Equal(t, []tool.Parameter{{Name: "q", Type: tool.ParamString, Required: true}}, created.Parameters)

	created.Description = "search issues"
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "search issues", updated.Description)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.Get(ctx, created.ID)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestHTTPRepository_EmptyID(t *testing.T) {
	ctx := context.Background()
	repo, api := newRepo(t)

	_, err := repo.Get(ctx, "")
	assert.ErrorIs(t, err, apiclient.ErrEmptyID)
	_, err = repo.Execute(ctx, "", "run", nil)
	assert.ErrorIs(t, err, apiclient.ErrEmptyID)
	assert.Empty(t, api.Requests())
}

func TestHTTPRepository_Types(t *testing.T) {
	ctx := context.Background()
	repo, api := newRepo(t)

	_, err := repo.Types(ctx)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))

	api.ToolTypes = []string{"github", "stripe"}
	types, err := repo.Types(ctx)
	require.NoError(t, err)
	assert.Equal(t, []tool.Type{"github", "stripe"}, types)
}

func TestHTTPRepository_RegisterAndExecute(t *testing.T) {
	ctx := context.Background()
	repo, api := newRepo(t)
	id := api.AddTool(fakeapi.Object{"name": "Echo", "endpoint": "https://echo.example.com", "isActive": false})

	_, err := repo.Execute(ctx, id, "ping", nil)
	require.Error(t, err)
	assert.Equal(t, "Tool is not active", cerr.Message(err, ""))

	registered, err := repo.Register(ctx, id)
	require.NoError(t, err)
	assert.True(t, registered.IsActive)

	res, err := repo.Execute(ctx, id, "ping", nil)
	require.NoError(t, err)
	assert.Equal(t, "ping", res["action"])
	assert.Equal(t, map[string]any{}, res["params"])

	res, err = repo.Execute(ctx, id, "send", map[string]any{"text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"text": "hi"}, res["params"])

	deregistered, err := repo.Deregister(ctx, id)
	require.NoError(t, err)
	assert.False(t, deregistered.IsActive)
}

func TestHTTPRepository_BackendFailure(t *testing.T) {
	ctx := context.Background()
	repo, api := newRepo(t)

	api.FailNext(http.MethodGet, "/api/tools", http.StatusInternalServerError, "")
	_, err := repo.List(ctx)
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.Internal))
	assert.Equal(t, "Failed to get tools", cerr.Message(err, "Failed to get tools"))
}
