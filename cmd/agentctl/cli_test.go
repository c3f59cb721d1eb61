package main

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	fcolor "github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/agentconsole/internal/console"
	"github.com/kazz187/agentconsole/internal/testutil/fakeapi"
	"github.com/kazz187/agentconsole/pkg/storage"
)

type testCLI struct {
	*CLI
	api    *fakeapi.Server
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newTestCLI(t *testing.T, format string) testCLI {
	t.Helper()
	prev := fcolor.NoColor
	fcolor.NoColor = true
	t.Cleanup(func() { fcolor.NoColor = prev })

	api, srv := fakeapi.Start(t)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	c, err := console.New(context.Background(), console.Config{
		APIBaseURL:     srv.URL,
		RequestTimeout: 5 * time.Second,
	}, console.Deps{Storage: store})
	require.NoError(t, err)

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cli := &CLI{c: c, out: out, errOut: errOut, format: format, in: bufio.NewReader(strings.NewReader(""))}
	cli.secret = func(string) (string, error) { return fakeapi.SeedPassword, nil }
	return testCLI{CLI: cli, api: api, out: out, errOut: errOut}
}

func (tc testCLI) loggedIn(t *testing.T) testCLI {
	t.Helper()
	require.NoError(t, tc.login(context.Background(), fakeapi.SeedEmail))
	tc.out.Reset()
	tc.errOut.Reset()
	return tc
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLogin(t *testing.T) {
	tc := newTestCLI(t, formatTable)
	ctx := context.Background()

	require.NoError(t, tc.login(ctx, fakeapi.SeedEmail))
	assert.Contains(t, tc.errOut.String(), "Logged in as")
	assert.Contains(t, tc.errOut.String(), fakeapi.SeedEmail)
	require.NoError(t, tc.requireUser(ctx))

	require.NoError(t, tc.logout(ctx))
	assert.ErrorIs(t, tc.requireUser(ctx), errNotLoggedIn)
}

func TestLogin_WrongPassword(t *testing.T) {
	tc := newTestCLI(t, formatTable)
	tc.secret = func(string) (string, error) { return "nope", nil }

	err := tc.login(context.Background(), fakeapi.SeedEmail)
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, tc.errOut.String(), "Invalid credentials")
	assert.Empty(t, tc.c.Alerts())
}

func TestPassword_RejectedLocally(t *testing.T) {
	tc := newTestCLI(t, formatTable).loggedIn(t)
	answers := []string{fakeapi.SeedPassword, "abc", "abc"}
	tc.secret = func(string) (string, error) {
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}

	err := tc.password(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Password must be at least 6 characters")
	for _, r := range tc.api.Requests() {
		assert.NotEqual(t, "/api/auth/updatepassword", r.Path)
	}
}

func TestListAgents(t *testing.T) {
	tc := newTestCLI(t, formatTable).loggedIn(t)
	tc.api.AddAgent(fakeapi.Object{"name": "PR Helper", "type": "github", "isActive": true, "tools": []any{}})
	tc.api.AddAgent(fakeapi.Object{"name": "Standup Bot", "type": "slack", "isActive": false, "tools": []any{}})
	ctx := context.Background()

	require.NoError(t, tc.listAgents(ctx, "", ""))
	assert.Contains(t, tc.out.String(), "[PR Helper]")
	assert.Contains(t, tc.out.String(), "[Standup Bot]")

	tc.out.Reset()
	require.NoError(t, tc.listAgents(ctx, "", "slack"))
	assert.NotContains(t, tc.out.String(), "PR Helper")
	assert.Contains(t, tc.out.String(), "inactive")

	tc.out.Reset()
	require.NoError(t, tc.listAgents(ctx, "nothing-matches", ""))
	assert.Contains(t, tc.errOut.String(), "No agents found")
}

func TestListAgents_BackendFailure(t *testing.T) {
	tc := newTestCLI(t, formatTable).loggedIn(t)
	tc.api.FailNext("GET", "/api/agents", 500, "database down")

	err := tc.listAgents(context.Background(), "", "")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, tc.errOut.String(), "! database down")
}

func TestShowAgent(t *testing.T) {
	tc := newTestCLI(t, formatYAML).loggedIn(t)
	toolID := tc.api.AddTool(fakeapi.Object{"name": "GitHub API", "type": "github", "isActive": true})
	id := tc.api.AddAgent(fakeapi.Object{"name": "PR Helper", "type": "github", "isActive": true, "tools": []any{toolID, "gone"}})
	tc.api.AddLog(fakeapi.Object{"type": "query", "message": "hello", "agentId": id, "agentName": "PR Helper"})

	require.NoError(t, tc.showAgent(context.Background(), id))
	out := tc.out.String()
	assert.Contains(t, out, "name: PR Helper")
	assert.Contains(t, out, "name: GitHub API")
	assert.Contains(t, out, "name: Unknown Tool")
	assert.Contains(t, out, "message: hello")
}

func TestAgentManifestLifecycle(t *testing.T) {
	tc := newTestCLI(t, formatTable).loggedIn(t)
	ctx := context.Background()

	file := writeFile(t, "agent.yaml", "name: Echo\ntype: custom\ndescription: first\n")
	require.NoError(t, tc.createAgent(ctx, file))
	created := tc.c.Agents.State().Agents[0]
	assert.Contains(t, tc.errOut.String(), "Created agent Echo")

	changed := writeFile(t, "agent.yaml", "name: Echo\ntype: custom\ndescription: second\n")
	require.NoError(t, tc.updateAgent(ctx, created.ID, changed, true))
	assert.Contains(t, tc.out.String(), "-description: first")
	assert.Contains(t, tc.out.String(), "+description: second")

	tc.c.Agents.GetAgentByID(ctx, created.ID)
	assert.Equal(t, "first", tc.c.Agents.State().Current.Description)

	require.NoError(t, tc.updateAgent(ctx, created.ID, changed, false))
	tc.c.Agents.GetAgentByID(ctx, created.ID)
	assert.Equal(t, "second", tc.c.Agents.State().Current.Description)

	require.NoError(t, tc.setAgentActive(ctx, created.ID, true))
	assert.Contains(t, tc.errOut.String(), "Echo is now active")

	require.NoError(t, tc.deleteAgent(ctx, created.ID))
	assert.ErrorIs(t, tc.deleteAgent(ctx, created.ID), errReported)
}

func TestCreateTool_InvalidManifest(t *testing.T) {
	tc := newTestCLI(t, formatTable).loggedIn(t)
	file := writeFile(t, "tool.yaml", "name: Broken\nendpoint: not a url\nauth:\n  type: apiKey\n")

	err := tc.createTool(context.Background(), file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Token is required for apiKey auth")
	for _, r := range tc.api.Requests() {
		assert.NotEqual(t, "/api/tools", r.Path)
	}
}

func TestExecuteTool(t *testing.T) {
	tc := newTestCLI(t, formatTable).loggedIn(t)
	id := tc.api.AddTool(fakeapi.Object{"name": "Deploy", "type": "custom", "isActive": true})

	require.NoError(t, tc.executeTool(context.Background(), id, "run", map[string]string{"count": "3", "env": "prod"}))
	out := tc.out.String()
	assert.Contains(t, out, "action: run")
	assert.Contains(t, out, "count: 3")
	assert.Contains(t, out, "env: prod")
}

func TestParseParams(t *testing.T) {
	params, err := parseParams(map[string]string{"n": "42", "flag": "true", "s": "hello", "empty": ""})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": 42, "flag": true, "s": "hello", "empty": ""}, params)

	_, err = parseParams(map[string]string{"": "x"})
	assert.Error(t, err)
}

func TestLogs(t *testing.T) {
	tc := newTestCLI(t, formatTable).loggedIn(t)
	id := tc.api.AddAgent(fakeapi.Object{"name": "PR Helper", "type": "github", "isActive": true, "tools": []any{}})
	tc.api.AddLog(fakeapi.Object{"type": "query", "message": "review this", "agentId": id, "agentName": "PR Helper"})
	tc.api.AddLog(fakeapi.Object{"type": "error", "message": "timeout", "agentId": id, "agentName": "PR Helper"})
	ctx := context.Background()

	require.NoError(t, tc.logs(ctx, logsQuery{agentID: id, page: 1, limit: 20, typ: "error"}))
	out := tc.out.String()
	assert.Contains(t, out, "Logs for Agent: PR Helper")
	assert.Contains(t, out, "timeout")
	assert.NotContains(t, out, "review this")
	assert.Contains(t, out, "Page 1 of 1 (2 entries)")

	assert.Error(t, tc.logs(ctx, logsQuery{agentID: "a", toolID: "t", page: 1, limit: 20}))
}
