package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kazz187/agentconsole/internal/filter"
	"github.com/kazz187/agentconsole/internal/flux"
	"github.com/kazz187/agentconsole/pkg/cerr"
)

// Store mirrors the backend's agents. Every method settles with exactly one
// state transition after the backend answers; nothing is applied before.
//
// List and detail fetches record failures in State.Error only. Mutations
// record them and also return them, so a form can stay open on failure.
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
	msg := cerr.Message(err, fallback)
	slog.WarnContext(ctx, "agent request failed", "op", fallback, "error", err)
	s.state.Dispatch(failed{msg: msg})
}

func (s *Store) GetAgents(ctx context.Context) {
	_ = s.FetchAgents(ctx)
}

// FetchAgents is GetAgents for callers that need to know whether this call
// failed. Error in State may still hold an earlier failure.
func (s *Store) FetchAgents(ctx context.Context) error {
	s.state.Dispatch(loadingStarted{})
	agents, err := s.repo.List(ctx)
	if err != nil {
		s.fail(ctx, err, "Failed to get agents")
		return err
	}
	s.state.Dispatch(listLoaded{agents: agents})
	return nil
}

func (s *Store) GetAgentByID(ctx context.Context, id string) {
	_ = s.FetchAgentByID(ctx, id)
}

func (s *Store) FetchAgentByID(ctx context.Context, id string) error {
	s.state.Dispatch(loadingStarted{})
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		s.fail(ctx, err, "Failed to get agent")
		return err
	}
	s.state.Dispatch(currentLoaded{agent: a})
	return nil
}

func (s *Store) AddAgent(ctx context.Context, a *Agent) (*Agent, error) {
	s.state.Dispatch(loadingStarted{})
	created, err := s.repo.Create(ctx, a)
	if err != nil {
		s.fail(ctx, err, "Failed to create agent")
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}
	s.state.Dispatch(added{agent: created})
	return created, nil
}

func (s *Store) UpdateAgent(ctx context.Context, a *Agent) (*Agent, error) {
	s.state.Dispatch(loadingStarted{})
	updated, err := s.repo.Update(ctx, a)
	if err != nil {
		s.fail(ctx, err, "Failed to update agent")
		return nil, fmt.Errorf("failed to update agent: %w", err)
	}
	s.state.Dispatch(replaced{agent: updated})
	return updated, nil
}

func (s *Store) DeleteAgent(ctx context.Context, id string) error {
	s.state.Dispatch(loadingStarted{})
	if err := s.repo.Delete(ctx, id); err != nil {
		s.fail(ctx, err, "Failed to delete agent")
		return fmt.Errorf("failed to delete agent: %w", err)
	}
	s.state.Dispatch(deleted{id: id})
	return nil
}

func (s *Store) RegisterAgent(ctx context.Context, id string) (*Agent, error) {
	s.state.Dispatch(loadingStarted{})
	a, err := s.repo.Register(ctx, id)
	if err != nil {
		s.fail(ctx, err, "Failed to register agent")
		return nil, fmt.Errorf("failed to register agent: %w", err)
	}
	s.state.Dispatch(replaced{agent: a})
	return a, nil
}

func (s *Store) DeregisterAgent(ctx context.Context, id string) (*Agent, error) {
	s.state.Dispatch(loadingStarted{})
	a, err := s.repo.Deregister(ctx, id)
	if err != nil {
		s.fail(ctx, err, "Failed to deregister agent")
		return nil, fmt.Errorf("failed to deregister agent: %w", err)
	}
	s.state.Dispatch(replaced{agent: a})
	return a, nil
}

// QueryAgent sends prompt to the agent. It only touches the Query* fields so
// a failed chat turn leaves the list and detail state alone.
func (s *Store) QueryAgent(ctx context.Context, id, prompt string) (*QueryResult, error) {
	s.state.Dispatch(queryStarted{})
	res, err := s.repo.Query(ctx, id, prompt)
	if err != nil {
		msg := cerr.Message(err, "Failed to query agent")
		slog.WarnContext(ctx, "failed to query agent", "agent_id", id, "error", err)
		s.state.Dispatch(queryFailed{msg: msg})
		return nil, fmt.Errorf("failed to query agent: %w", err)
	}
	s.state.Dispatch(queryAnswered{result: res})
	return res, nil
}

// FilterAgents narrows the list to agents whose name, description or type
// match text. Blank text clears the filter.
func (s *Store) FilterAgents(text string) {
	if filter.Empty(text) {
		s.ClearFilter()
		return
	}
	s.state.Dispatch(filterSet{text: text})
}

func (s *Store) ClearFilter() {
	s.state.Dispatch(filterCleared{})
}

// FilterByType narrows Display to one type. "" and "all" show every type.
func (s *Store) FilterByType(t Type) {
	if t == "all" {
		t = ""
	}
	s.state.Dispatch(typeFilterSet{t: t})
}

func (s *Store) SetCurrent(a *Agent) {
	s.state.Dispatch(currentSet{agent: a})
}

func (s *Store) ClearCurrent() {
	s.state.Dispatch(currentCleared{})
}

func (s *Store) ClearAgents() {
	s.state.Dispatch(cleared{})
}

func (s *Store) ClearErrors() {
	s.state.Dispatch(errorsCleared{})
}
