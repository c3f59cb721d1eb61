package activitylog

import (
	"context"
	"log/slog"

	"github.com/kazz187/agentconsole/internal/flux"
	"github.com/kazz187/agentconsole/pkg/cerr"
)

// Store holds one page of activity. Each fetch replaces the page; nothing is
// accumulated across pages.
type Store struct {
	repo  Repository
	state *flux.Store[State, Action]
}

func NewStore(repo Repository) *Store {
	return &Store{
		repo:  repo,
		state: flux.New(InitialState(), reduce),
	}
}

func (s *Store) State() State {
	return s.state.State()
}

func (s *Store) Subscribe(bufSize int) (string, <-chan State) {
	return s.state.Subscribe(bufSize)
}

func (s *Store) Unsubscribe(id string) {
	s.state.Unsubscribe(id)
}

func (s *Store) GetLogs(ctx context.Context, page, limit int) {
	_ = s.fetch(ctx, AllScope(), page, limit, "Failed to get logs")
}

func (s *Store) GetAgentLogs(ctx context.Context, agentID string, page, limit int) {
	_ = s.fetch(ctx, AgentScope(agentID), page, limit, "Failed to get agent logs")
}

func (s *Store) GetToolLogs(ctx context.Context, toolID string, page, limit int) {
	_ = s.fetch(ctx, ToolScope(toolID), page, limit, "Failed to get tool logs")
}

// Get fetches a page of the given scope.
func (s *Store) Get(ctx context.Context, scope Scope, page, limit int) {
	_ = s.Fetch(ctx, scope, page, limit)
}

// Fetch is Get that also reports this call's failure.
func (s *Store) Fetch(ctx context.Context, scope Scope, page, limit int) error {
	switch scope.Kind {
	case ScopeAgent:
		return s.fetch(ctx, scope, page, limit, "Failed to get agent logs")
	case ScopeTool:
		return s.fetch(ctx, scope, page, limit, "Failed to get tool logs")
	}
	return s.fetch(ctx, AllScope(), page, limit, "Failed to get logs")
}

func (s *Store) fetch(ctx context.Context, scope Scope, page, limit int, fallback string) error {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	s.state.Dispatch(loadingStarted{})
	res, err := s.repo.List(ctx, scope, page, limit)
	if err != nil {
		slog.WarnContext(ctx, "log request failed", "op", fallback, "page", page, "error", err)
		s.state.Dispatch(failed{msg: cerr.Message(err, fallback)})
		return err
	}
	s.state.Dispatch(pageLoaded{logs: res.Entries, pagination: paginate(res, page, limit)})
	return nil
}

// paginate fills in whatever the backend left out of its pagination block
// from the request and the total count.
func paginate(res *Result, page, limit int) Pagination {
	var p Pagination
	if res.Pagination != nil {
		p = *res.Pagination
	}
	if p.Page <= 0 {
		p.Page = page
	}
	if p.Limit <= 0 {
		p.Limit = limit
	}
	if p.Total <= 0 && res.Count != nil {
		p.Total = *res.Count
	}
	if p.TotalPages <= 0 {
		p.TotalPages = (p.Total + p.Limit - 1) / p.Limit
	}
	return p
}

func (s *Store) ClearLogs() {
	s.state.Dispatch(cleared{})
}
