package agent

import (
	"github.com/samber/lo"

	"github.com/kazz187/agentconsole/internal/filter"
)

type State struct {
	Agents  []*Agent
	Current *Agent
	// Filtered is nil when no text filter is active.
	Filtered []*Agent
	Query    string
	// TypeFilter narrows Display to one agent type; empty shows every type.
	TypeFilter Type
	Error      string
	Loading    bool

	QueryResults *QueryResult
	QueryLoading bool
	QueryError   string
}

func InitialState() State {
	return State{}
}

// Display is the list a list screen renders.
func (s State) Display() []*Agent {
	list := s.Agents
	if s.Filtered != nil {
		list = s.Filtered
	}
	if s.TypeFilter == "" {
		return list
	}
	return lo.Filter(list, func(a *Agent, _ int) bool { return a.Type == s.TypeFilter })
}

type Action interface {
	isAgentAction()
}

type (
	loadingStarted struct{}
	listLoaded     struct{ agents []*Agent }
	currentLoaded  struct{ agent *Agent }
	added          struct{ agent *Agent }
	replaced       struct{ agent *Agent }
	deleted        struct{ id string }
	failed         struct{ msg string }
	currentSet     struct{ agent *Agent }
	currentCleared struct{}
	cleared        struct{}
	filterSet      struct{ text string }
	filterCleared  struct{}
	typeFilterSet  struct{ t Type }
	errorsCleared  struct{}
	queryStarted   struct{}
	queryAnswered  struct{ result *QueryResult }
	queryFailed    struct{ msg string }
)

func (loadingStarted) isAgentAction() {}
func (listLoaded) isAgentAction()     {}
func (currentLoaded) isAgentAction()  {}
func (added) isAgentAction()          {}
func (replaced) isAgentAction()       {}
func (deleted) isAgentAction()        {}
func (failed) isAgentAction()         {}
func (currentSet) isAgentAction()     {}
func (currentCleared) isAgentAction() {}
func (cleared) isAgentAction()        {}
func (filterSet) isAgentAction()      {}
func (filterCleared) isAgentAction()  {}
func (typeFilterSet) isAgentAction()  {}
func (errorsCleared) isAgentAction()  {}
func (queryStarted) isAgentAction()   {}
func (queryAnswered) isAgentAction()  {}
func (queryFailed) isAgentAction()    {}

func reduce(s State, action Action) State {
	switch a := action.(type) {
	case loadingStarted:
		s.Loading = true
	case listLoaded:
		s.Agents = a.agents
		s.Loading = false
		s = refilter(s)
	case currentLoaded:
		s.Current = a.agent
		s.Loading = false
	case added:
		s.Agents = append([]*Agent{a.agent}, s.Agents...)
		s.Loading = false
		s = refilter(s)
	case replaced:
		s.Agents = lo.Map(s.Agents, func(x *Agent, _ int) *Agent {
			if x.ID == a.agent.ID {
				return a.agent
			}
			return x
		})
		if s.Current != nil && s.Current.ID == a.agent.ID {
			s.Current = a.agent
		}
		s.Loading = false
		s = refilter(s)
	case deleted:
		s.Agents = lo.Reject(s.Agents, func(x *Agent, _ int) bool { return x.ID == a.id })
		s.Loading = false
		s = refilter(s)
	case failed:
		s.Error = a.msg
		s.Loading = false
	case currentSet:
		s.Current = a.agent
	case currentCleared:
		s.Current = nil
	case cleared:
		s.Agents = nil
		s.Filtered = nil
		s.Query = ""
		s.Error = ""
		s.Current = nil
	case filterSet:
		s.Query = a.text
		s = refilter(s)
	case filterCleared:
		s.Query = ""
		s.Filtered = nil
	case typeFilterSet:
		s.TypeFilter = a.t
	case errorsCleared:
		s.Error = ""
		s.QueryError = ""
	case queryStarted:
		s.QueryLoading = true
		s.QueryError = ""
	case queryAnswered:
		s.QueryResults = a.result
		s.QueryLoading = false
	case queryFailed:
		s.QueryError = a.msg
		s.QueryLoading = false
	}
	return s
}

func refilter(s State) State {
	if filter.Empty(s.Query) {
		s.Filtered = nil
		return s
	}
	m := filter.Compile(s.Query)
	s.Filtered = lo.Filter(s.Agents, func(a *Agent, _ int) bool {
		return m.MatchAny(a.Name, a.Description, string(a.Type))
	})
	return s
}
