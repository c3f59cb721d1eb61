package tool

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kazz187/agentconsole/internal/filter"
	"github.com/kazz187/agentconsole/internal/flux"
	"github.com/kazz187/agentconsole/pkg/cerr"
)

// Store mirrors the backend's tools and the tool type enumeration.
// Mutations and Execute return their error in addition to recording it.
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

func (s *Store) fail(ctx context.Context, err error, fallback string) {
	slog.WarnContext(ctx, "tool request failed", "op", fallback, "error", err)
	s.state.Dispatch(failed{msg: cerr.Message(err, fallback)})
}

func (s *Store) GetTools(ctx context.Context) {
	_ = s.FetchTools(ctx)
}

// FetchTools is GetTools that also reports this call's failure.
func (s *Store) FetchTools(ctx context.Context) error {
	s.state.Dispatch(loadingStarted{})
	tools, err := s.repo.List(ctx)
	if err != nil {
		s.fail(ctx, err, "Failed to get tools")
		return err
	}
	s.state.Dispatch(listLoaded{tools: tools})
	return nil
}

func (s *Store) GetToolByID(ctx context.Context, id string) {
	s.state.Dispatch(loadingStarted{})
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		s.fail(ctx, err, "Failed to get tool")
		return
	}
	s.state.Dispatch(currentLoaded{tool: t})
}

// GetToolTypes refreshes the type enumeration. Older backends lack the
// endpoint, so any failure keeps the current list without recording an error.
func (s *Store) GetToolTypes(ctx context.Context) {
	types, err := s.repo.Types(ctx)
	if err != nil {
		slog.DebugContext(ctx, "using default tool types", "error", err)
		return
	}
	if len(types) == 0 {
		return
	}
	s.state.Dispatch(typesLoaded{types: types})
}

func (s *Store) AddTool(ctx context.Context, t *Tool) (*Tool, error) {
	s.state.Dispatch(loadingStarted{})
	created, err := s.repo.Create(ctx, t)
	if err != nil {
		s.fail(ctx, err, "Failed to create tool")
		return nil, fmt.Errorf("failed to create tool: %w", err)
	}
	s.state.Dispatch(added{tool: created})
	return created, nil
}

func (s *Store) UpdateTool(ctx context.Context, t *Tool) (*Tool, error) {
	s.state.Dispatch(loadingStarted{})
	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		s.fail(ctx, err, "Failed to update tool")
		return nil, fmt.Errorf("failed to update tool: %w", err)
	}
	s.state.Dispatch(replaced{tool: updated})
	return updated, nil
}

func (s *Store) DeleteTool(ctx context.Context, id string) error {
	s.state.Dispatch(loadingStarted{})
	if err := s.repo.Delete(ctx, id); err != nil {
		s.fail(ctx, err, "Failed to delete tool")
		return fmt.Errorf("failed to delete tool: %w", err)
	}
	s.state.Dispatch(deleted{id: id})
	return nil
}

func (s *Store) RegisterTool(ctx context.Context, id string) (*Tool, error) {
	s.state.Dispatch(loadingStarted{})
	t, err := s.repo.Register(ctx, id)
	if err != nil {
		s.fail(ctx, err, "Failed to register tool")
		return nil, fmt.Errorf("failed to register tool: %w", err)
	}
	s.state.Dispatch(replaced{tool: t})
	return t, nil
}

func (s *Store) DeregisterTool(ctx context.Context, id string) (*Tool, error) {
	s.state.Dispatch(loadingStarted{})
	t, err := s.repo.Deregister(ctx, id)
	if err != nil {
		s.fail(ctx, err, "Failed to deregister tool")
		return nil, fmt.Errorf("failed to deregister tool: %w", err)
	}
	s.state.Dispatch(replaced{tool: t})
	return t, nil
}

// ExecuteTool runs action on the tool through the backend.
func (s *Store) ExecuteTool(ctx context.Context, id, action string, params map[string]any) (ExecuteResult, error) {
	s.state.Dispatch(executeStarted{})
	res, err := s.repo.Execute(ctx, id, action, params)
	if err != nil {
		slog.WarnContext(ctx, "failed to execute tool", "tool_id", id, "action", action, "error", err)
		s.state.Dispatch(executeFailed{msg: cerr.Message(err, "Failed to execute tool")})
		return nil, fmt.Errorf("failed to execute tool: %w", err)
	}
	s.state.Dispatch(executed{result: res})
	return res, nil
}

func (s *Store) FilterTools(text string) {
	if filter.Empty(text) {
		s.ClearFilter()
		return
	}
	s.state.Dispatch(filterSet{text: text})
}

func (s *Store) ClearFilter() {
	s.state.Dispatch(filterCleared{})
}

func (s *Store) FilterByType(t Type) {
	if t == "all" {
		t = ""
	}
	s.state.Dispatch(typeFilterSet{t: t})
}

func (s *Store) SetCurrent(t *Tool) {
	s.state.Dispatch(currentSet{tool: t})
}

func (s *Store) ClearCurrent() {
	s.state.Dispatch(currentCleared{})
}

func (s *Store) ClearTools() {
	s.state.Dispatch(cleared{})
}

func (s *Store) ClearErrors() {
	s.state.Dispatch(errorsCleared{})
}
