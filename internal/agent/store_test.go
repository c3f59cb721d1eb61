package agent

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/agentconsole/pkg/cerr"
)

// MockRepository implements Repository in memory for testing
type MockRepository struct {
	mu     sync.Mutex
	agents []*Agent
	err    error
	nextID int
}

func (r *MockRepository) failing() error {
	err := r.err
	r.err = nil
	return err
}

func (r *MockRepository) List(context.Context) ([]*Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failing(); err != nil {
		return nil, err
	}
	return append([]*Agent(nil), r.agents...), nil
}

func (r *MockRepository) Get(_ context.Context, id string) (*Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failing(); err != nil {
		return nil, err
	}
	a, ok := lo.Find(r.agents, func(a *Agent) bool { return a.ID == id })
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, "Agent not found", nil)
	}
	return a, nil
}

func (r *MockRepository) Create(_ context.Context, a *Agent) (*Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failing(); err != nil {
		return nil, err
	}
	r.nextID++
	cp := *a
	cp.ID = "new-" + string(rune('0'+r.nextID))
	r.agents = append([]*Agent{&cp}, r.agents...)
	return &cp, nil
}

func (r *MockRepository) Update(_ context.Context, a *Agent) (*Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failing(); err != nil {
		return nil, err
	}
	cp := *a
	return &cp, nil
}

func (r *MockRepository) Delete(context.Context, string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failing()
}

func (r *MockRepository) setActive(id string, active bool) (*Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failing(); err != nil {
		return nil, err
	}
	for _, a := range r.agents {
		if a.ID == id {
			cp := *a
			cp.IsActive = active
			return &cp, nil
		}
	}
	return nil, cerr.NewError(cerr.NotFound, "Agent not found", nil)
}

func (r *MockRepository) Register(_ context.Context, id string) (*Agent, error) {
	return r.setActive(id, true)
}

func (r *MockRepository) Deregister(_ context.Context, id string) (*Agent, error) {
	return r.setActive(id, false)
}

func (r *MockRepository) Query(_ context.Context, id, prompt string) (*QueryResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failing(); err != nil {
		return nil, err
	}
	return &QueryResult{Response: id + ": " + prompt}, nil
}

func seeded() (*Store, *MockRepository) {
	repo := &MockRepository{agents: []*Agent{
		{ID: "a1", Name: "PR Helper", Description: "reviews pull requests", Type: TypeGitHub, IsActive: true},
		{ID: "a2", Name: "Announcer", Description: "posts release notes", Type: TypeSlack},
		{ID: "a3", Name: "Triage", Description: "sorts GitHub issues into jira", Type: TypeJira},
	}}
	s := NewStore(repo)
	s.GetAgents(context.Background())
	return s, repo
}

func TestStore_GetAgents(t *testing.T) {
	s, _ := seeded()
	st := s.State()
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)
	assert.Len(t, st.Agents, 3)
}

func TestStore_GetAgentsFailureKeepsList(t *testing.T) {
	s, repo := seeded()
	repo.err = cerr.NewError(cerr.Internal, "", errors.New("boom"))
	s.GetAgents(context.Background())

	st := s.State()
	assert.Equal(t, "Failed to get agents", st.Error)
	assert.False(t, st.Loading)
	assert.Len(t, st.Agents, 3)
}

func TestStore_GetAgentByID(t *testing.T) {
	s, _ := seeded()
	s.GetAgentByID(context.Background(), "a2")
	require.NotNil(t, s.State().Current)
	assert.Equal(t, "Announcer", s.State().Current.Name)

	s.GetAgentByID(context.Background(), "missing")
	assert.Equal(t, "Agent not found", s.State().Error)
	assert.Equal(t, "a2", s.State().Current.ID)
}

func TestStore_AddAgentPrepends(t *testing.T) {
	s, _ := seeded()
	before := len(s.State().Agents)

	created, err := s.AddAgent(context.Background(), &Agent{Name: "Shop bot", Type: TypeShopify})
	require.NoError(t, err)

	st := s.State()
	assert.Len(t, st.Agents, before+1)
	assert.Equal(t, created, st.Agents[0])
}

func TestStore_AddAgentFailureIsReturnedAndRecorded(t *testing.T) {
	s, repo := seeded()
	repo.err = cerr.NewError(cerr.InvalidArgument, "Please provide a name and type", nil)

	_, err := s.AddAgent(context.Background(), &Agent{})
	require.Error(t, err)
	assert.Equal(t, "Please provide a name and type", cerr.Message(err, ""))
	assert.Equal(t, "Please provide a name and type", s.State().Error)
	assert.Len(t, s.State().Agents, 3)
}

func TestStore_UpdateAgentRefreshesMatchingCurrent(t *testing.T) {
	s, _ := seeded()
	ctx := context.Background()
	s.SetCurrent(s.State().Agents[0])

	_, err := s.UpdateAgent(ctx, &Agent{ID: "a1", Name: "PR Reviewer", Type: TypeGitHub})
	require.NoError(t, err)
	st := s.State()
	assert.Equal(t, "PR Reviewer", st.Current.Name)
	assert.Equal(t, "PR Reviewer", st.Agents[0].Name)

	_, err = s.UpdateAgent(ctx, &Agent{ID: "a2", Name: "Herald", Type: TypeSlack})
	require.NoError(t, err)
	st = s.State()
	assert.Equal(t, "a1", st.Current.ID)
	assert.Equal(t, "PR Reviewer", st.Current.Name)
	assert.Equal(t, "Herald", st.Agents[1].Name)
}

func TestStore_DeleteAgentPreservesOrder(t *testing.T) {
	s, _ := seeded()
	require.NoError(t, s.DeleteAgent(context.Background(), "a2"))
	ids := lo.Map(s.State().Agents, func(a *Agent, _ int) string { return a.ID })
	assert.Equal(t, []string{"a1", "a3"}, ids)
}

func TestStore_RegisterDeregisterReplaceInPlace(t *testing.T) {
	s, _ := seeded()
	ctx := context.Background()
	s.SetCurrent(s.State().Agents[1])

	a, err := s.RegisterAgent(ctx, "a2")
	require.NoError(t, err)
	assert.True(t, a.IsActive)
	st := s.State()
	assert.Len(t, st.Agents, 3)
	assert.Equal(t, "a2", st.Agents[1].ID)
	assert.True(t, st.Agents[1].IsActive)
	assert.True(t, st.Current.IsActive)

	_, err = s.DeregisterAgent(ctx, "a2")
	require.NoError(t, err)
	assert.False(t, s.State().Agents[1].IsActive)

	_, err = s.RegisterAgent(ctx, "nope")
	require.Error(t, err)
	assert.Equal(t, "Agent not found", s.State().Error)
}

func TestStore_FilterAgents(t *testing.T) {
	s, _ := seeded()

	s.FilterAgents("github")
	st := s.State()
	ids := lo.Map(st.Filtered, func(a *Agent, _ int) string { return a.ID })
	assert.Equal(t, []string{"a1", "a3"}, ids)
	for _, a := range st.Filtered {
		assert.Contains(t, st.Agents, a)
	}

	s.FilterAgents("nothing matches")
	assert.NotNil(t, s.State().Filtered)
	assert.Empty(t, s.State().Filtered)
	assert.Empty(t, s.State().Display())

	s.FilterAgents("  ")
	assert.Nil(t, s.State().Filtered)
	assert.Len(t, s.State().Display(), 3)
}

func TestStore_FilterAgentsKeepsSpaces(t *testing.T) {
	s, _ := seeded()
	filtered := func() []string {
		return lo.Map(s.State().Filtered, func(a *Agent, _ int) string { return a.ID })
	}

	s.FilterAgents("PR ")
	assert.Equal(t, "PR ", s.State().Query)
	assert.Equal(t, []string{"a1"}, filtered())

	s.FilterAgents("Triage ")
	assert.Empty(t, filtered())
}

func TestStore_FetchAgentByIDReportsOwnFailure(t *testing.T) {
	s, repo := seeded()
	ctx := context.Background()

	repo.err = errors.New("boom")
	require.Error(t, s.FetchAgents(ctx))
	require.Equal(t, "Failed to get agents", s.State().Error)

	assert.NoError(t, s.FetchAgentByID(ctx, "a2"))
	assert.Equal(t, "Announcer", s.State().Current.Name)
	assert.Error(t, s.FetchAgentByID(ctx, "missing"))
}

func TestStore_FilterStaysSubsetAfterMutations(t *testing.T) {
	s, _ := seeded()
	ctx := context.Background()
	s.FilterAgents("github")

	require.NoError(t, s.DeleteAgent(ctx, "a3"))
	assert.Len(t, s.State().Filtered, 1)

	_, err := s.AddAgent(ctx, &Agent{Name: "Another GitHub bot", Type: TypeGitHub})
	require.NoError(t, err)
	assert.Len(t, s.State().Filtered, 2)
}

func TestStore_FilterByType(t *testing.T) {
	s, _ := seeded()
	s.FilterByType(TypeSlack)
	require.Len(t, s.State().Display(), 1)
	assert.Equal(t, "a2", s.State().Display()[0].ID)

	s.FilterByType("all")
	assert.Len(t, s.State().Display(), 3)
}

func TestStore_QueryAgentKeepsGenericErrorAlone(t *testing.T) {
	s, repo := seeded()
	ctx := context.Background()

	res, err := s.QueryAgent(ctx, "a1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "a1: hi", res.Response)
	assert.Equal(t, res, s.State().QueryResults)

	repo.err = cerr.NewError(cerr.Unavailable, "Agent is not active", nil)
	_, err = s.QueryAgent(ctx, "a1", "hi")
	require.Error(t, err)
	st := s.State()
	assert.Equal(t, "Agent is not active", st.QueryError)
	assert.False(t, st.QueryLoading)
	assert.Empty(t, st.Error)
	assert.Len(t, st.Agents, 3)
}

func TestStore_ClearAgents(t *testing.T) {
	s, repo := seeded()
	s.FilterAgents("git")
	s.SetCurrent(s.State().Agents[0])
	repo.err = errors.New("x")
	s.GetAgents(context.Background())

	s.ClearAgents()
	st := s.State()
	assert.Empty(t, st.Agents)
	assert.Nil(t, st.Filtered)
	assert.Nil(t, st.Current)
	assert.Empty(t, st.Error)
}

func TestStore_SubscribersSeeTransitions(t *testing.T) {
	s, _ := seeded()
	id, ch := s.Subscribe(8)
	defer s.Unsubscribe(id)

	s.GetAgents(context.Background())
	loading := <-ch
	done := <-ch
	assert.True(t, loading.Loading)
	assert.False(t, done.Loading)
}

func TestSuggestions(t *testing.T) {
	assert.Equal(t, "What are the open PRs in the repository?", Suggestions("GitHub")[0])
	assert.Equal(t, "Hello! What can you do?", Suggestions(TypeCustom)[0])
}
