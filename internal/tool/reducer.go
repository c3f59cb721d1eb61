package tool

import (
	"slices"

	"github.com/samber/lo"

	"github.com/kazz187/agentconsole/internal/filter"
)

type State struct {
	Tools     []*Tool
	ToolTypes []Type
	Current   *Tool
	// Filtered is nil when no text filter is active.
	Filtered   []*Tool
	Query      string
	TypeFilter Type
	Error      string
	Loading    bool

	ExecuteResults ExecuteResult
	Executing      bool
	// ExecuteError is kept apart from Error so a failed invocation does not
	// replace a list or form error.
	ExecuteError string
}

func InitialState() State {
	return State{ToolTypes: slices.Clone(DefaultTypes)}
}

func (s State) Display() []*Tool {
	list := s.Tools
	if s.Filtered != nil {
		list = s.Filtered
	}
	if s.TypeFilter == "" {
		return list
	}
	return lo.Filter(list, func(t *Tool, _ int) bool { return t.Type == s.TypeFilter })
}

// Resolve maps tool ids onto loaded tools, substituting a placeholder for
// ids the list does not contain. It returns nil until the list is loaded.
func (s State) Resolve(ids []string) []*Tool {
	if len(s.Tools) == 0 {
		return nil
	}
	byID := lo.KeyBy(s.Tools, func(t *Tool) string { return t.ID })
	return lo.Map(ids, func(id string, _ int) *Tool {
		if t, ok := byID[id]; ok {
			return t
		}
		return Placeholder(id)
	})
}

type Action interface {
	isToolAction()
}

type (
	loadingStarted struct{}
	listLoaded     struct{ tools []*Tool }
	currentLoaded  struct{ tool *Tool }
	typesLoaded    struct{ types []Type }
	added          struct{ tool *Tool }
	replaced       struct{ tool *Tool }
	deleted        struct{ id string }
	failed         struct{ msg string }
	currentSet     struct{ tool *Tool }
	currentCleared struct{}
	cleared        struct{}
	filterSet      struct{ text string }
	filterCleared  struct{}
	typeFilterSet  struct{ t Type }
	errorsCleared  struct{}
	executeStarted struct{}
	executed       struct{ result ExecuteResult }
	executeFailed  struct{ msg string }
)

func (loadingStarted) isToolAction() {}
func (listLoaded) isToolAction()     {}
func (currentLoaded) isToolAction()  {}
func (typesLoaded) isToolAction()    {}
func (added) isToolAction()          {}
func (replaced) isToolAction()       {}
func (deleted) isToolAction()        {}
func (failed) isToolAction()         {}
func (currentSet) isToolAction()     {}
func (currentCleared) isToolAction() {}
func (cleared) isToolAction()        {}
func (filterSet) isToolAction()      {}
func (filterCleared) isToolAction()  {}
func (typeFilterSet) isToolAction()  {}
func (errorsCleared) isToolAction()  {}
func (executeStarted) isToolAction() {}
func (executed) isToolAction()       {}
func (executeFailed) isToolAction()  {}

func reduce(s State, action Action) State {
	switch a := action.(type) {
	case loadingStarted:
		s.Loading = true
	case listLoaded:
		s.Tools = a.tools
		s.Loading = false
		s = refilter(s)
	case currentLoaded:
		s.Current = a.tool
		s.Loading = false
	case typesLoaded:
		s.ToolTypes = a.types
	case added:
		s.Tools = append([]*Tool{a.tool}, s.Tools...)
		s.Loading = false
		s = refilter(s)
	case replaced:
		s.Tools = lo.Map(s.Tools, func(x *Tool, _ int) *Tool {
			if x.ID == a.tool.ID {
				return a.tool
			}
			return x
		})
		if s.Current != nil && s.Current.ID == a.tool.ID {
			s.Current = a.tool
		}
		s.Loading = false
		s = refilter(s)
	case deleted:
		s.Tools = lo.Reject(s.Tools, func(x *Tool, _ int) bool { return x.ID == a.id })
		s.Loading = false
		s = refilter(s)
	case failed:
		s.Error = a.msg
		s.Loading = false
	case currentSet:
		s.Current = a.tool
	case currentCleared:
		s.Current = nil
	case cleared:
		s.Tools = nil
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
		s.ExecuteError = ""
	case executeStarted:
		s.Executing = true
		s.ExecuteError = ""
	case executed:
		s.ExecuteResults = a.result
		s.Executing = false
	case executeFailed:
		s.ExecuteError = a.msg
		s.Executing = false
	}
	return s
}

func refilter(s State) State {
	if filter.Empty(s.Query) {
		s.Filtered = nil
		return s
	}
	m := filter.Compile(s.Query)
	s.Filtered = lo.Filter(s.Tools, func(t *Tool, _ int) bool {
		return m.MatchAny(t.Name, t.Description, string(t.Type))
	})
	return s
}
