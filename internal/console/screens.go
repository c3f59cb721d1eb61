package console

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"

	"github.com/kazz187/agentconsole/internal/activitylog"
	"github.com/kazz187/agentconsole/internal/agent"
	"github.com/kazz187/agentconsole/internal/tool"
	"github.com/kazz187/agentconsole/pkg/panicerr"
)

// RecentLogLimit is how many log entries the agent detail screen shows.
const RecentLogLimit = 5

// remember records fetch as the one Retry re-issues.
func (c *Console) remember(fetch func(ctx context.Context)) {
	c.mu.Lock()
	c.lastFetch = fetch
	c.mu.Unlock()
}

// Retry re-issues the most recent list or detail fetch. It reports false
// when nothing has been fetched yet.
func (c *Console) Retry(ctx context.Context) bool {
	c.mu.Lock()
	fetch := c.lastFetch
	c.mu.Unlock()
	if fetch == nil {
		return false
	}
	fetch(ctx)
	return true
}

func (c *Console) LoadAgents(ctx context.Context) {
	c.remember(c.Agents.GetAgents)
	c.Agents.GetAgents(ctx)
}

func (c *Console) LoadTools(ctx context.Context) {
	fetch := func(ctx context.Context) {
		c.Tools.GetTools(ctx)
		c.Tools.GetToolTypes(ctx)
	}
	c.remember(fetch)
	fetch(ctx)
}

// LoadAgentDetail fetches the agent, its most recent log entries and the
// tools list side by side. Each part fails on its own; the joined error is
// for logging, the stores already hold the messages.
func (c *Console) LoadAgentDetail(ctx context.Context, id string) error {
	fetch := func(ctx context.Context) error {
		p := pool.New().WithErrors().WithContext(ctx)
		p.Go(panicerr.SafeContext(func(ctx context.Context) error {
			return c.Agents.FetchAgentByID(ctx, id)
		}))
		p.Go(panicerr.SafeContext(func(ctx context.Context) error {
			return c.Logs.Fetch(ctx, activitylog.AgentScope(id), 1, RecentLogLimit)
		}))
		p.Go(panicerr.SafeContext(func(ctx context.Context) error {
			return c.Tools.FetchTools(ctx)
		}))
		if err := p.Wait(); err != nil {
			return fmt.Errorf("failed to load agent %s: %w", id, err)
		}
		return nil
	}
	c.remember(func(ctx context.Context) { _ = fetch(ctx) })
	return fetch(ctx)
}

// LoadLogs fetches a page of scope. The agents or tools list is fetched
// alongside when it is needed to name the source and not loaded yet.
func (c *Console) LoadLogs(ctx context.Context, scope activitylog.Scope, page int) error {
	return c.LoadLogsPage(ctx, scope, page, activitylog.DefaultLimit)
}

func (c *Console) LoadLogsPage(ctx context.Context, scope activitylog.Scope, page, limit int) error {
	fetch := func(ctx context.Context) error {
		p := pool.New().WithErrors().WithContext(ctx)
		p.Go(panicerr.SafeContext(func(ctx context.Context) error {
			return c.Logs.Fetch(ctx, scope, page, limit)
		}))
		switch {
		case scope.Kind == activitylog.ScopeAgent && len(c.Agents.State().Agents) == 0:
			p.Go(panicerr.SafeContext(func(ctx context.Context) error {
				return c.Agents.FetchAgents(ctx)
			}))
		case scope.Kind == activitylog.ScopeTool && len(c.Tools.State().Tools) == 0:
			p.Go(panicerr.SafeContext(func(ctx context.Context) error {
				return c.Tools.FetchTools(ctx)
			}))
		}
		return p.Wait()
	}
	c.remember(func(ctx context.Context) { _ = fetch(ctx) })
	return fetch(ctx)
}

// ResolveTools maps the agent's tool ids onto the loaded tools. It returns
// nil until the tools list has been loaded.
func (c *Console) ResolveTools(a *agent.Agent) []*tool.Tool {
	if a == nil {
		return nil
	}
	return c.Tools.State().Resolve(a.Tools)
}

// SourceName names the agent or tool a log listing is scoped to. It is
// empty while the relevant list is not loaded.
func (c *Console) SourceName(scope activitylog.Scope) string {
	switch scope.Kind {
	case activitylog.ScopeAgent:
		agents := c.Agents.State().Agents
		if len(agents) == 0 {
			return ""
		}
		a, ok := lo.Find(agents, func(a *agent.Agent) bool { return a.ID == scope.ID })
		if !ok {
			return "Unknown Agent"
		}
		return a.Name
	case activitylog.ScopeTool:
		tools := c.Tools.State().Tools
		if len(tools) == 0 {
			return ""
		}
		t, ok := lo.Find(tools, func(t *tool.Tool) bool { return t.ID == scope.ID })
		if !ok {
			return "Unknown Tool"
		}
		return t.Name
	}
	return ""
}

// LogTitle is the heading of the log screen.
func (c *Console) LogTitle(scope activitylog.Scope) string {
	switch scope.Kind {
	case activitylog.ScopeAgent:
		return "Logs for Agent: " + c.SourceName(scope)
	case activitylog.ScopeTool:
		return "Logs for Tool: " + c.SourceName(scope)
	}
	return "Activity Logs"
}

// Alerts lists every error a store currently holds, in banner order.
func (c *Console) Alerts() []string {
	agents := c.Agents.State()
	tools := c.Tools.State()
	return lo.Compact([]string{
		c.Auth.State().Error,
		agents.Error,
		tools.Error,
		tools.ExecuteError,
		c.Logs.State().Error,
		agents.QueryError,
	})
}

// ClearAlerts resets the errors of the stores that allow it.
func (c *Console) ClearAlerts() {
	c.Auth.ClearErrors()
	c.Agents.ClearErrors()
	c.Tools.ClearErrors()
}
