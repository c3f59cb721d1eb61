package activitylog

import (
	"github.com/samber/lo"

	"github.com/kazz187/agentconsole/internal/filter"
)

// View narrows the loaded page for display. It never refetches and leaves
// pagination alone.
type View struct {
	Search string
	// Type is "all" or empty for every entry.
	Type Type
}

func (v View) Apply(logs []*Entry) []*Entry {
	return lo.Filter(logs, func(e *Entry, _ int) bool {
		if v.Type != "" && v.Type != "all" && e.Type != v.Type {
			return false
		}
		if filter.Empty(v.Search) {
			return true
		}
		return filter.Contains(e.Message, v.Search) ||
			filter.Contains(e.AgentName, v.Search) ||
			filter.Contains(e.ToolName, v.Search)
	})
}
