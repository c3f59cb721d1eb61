package activitylog

import "time"

type Type string

const (
	TypeQuery  Type = "query"
	TypeAction Type = "action"
	TypeError  Type = "error"
	TypeSystem Type = "system"
)

var Types = []Type{TypeQuery, TypeAction, TypeError, TypeSystem}

type Entry struct {
	ID        string    `json:"_id" yaml:"id"`
	Type      Type      `json:"type" yaml:"type"`
	Message   string    `json:"message" yaml:"message"`
	AgentID   string    `json:"agentId,omitempty" yaml:"agent_id,omitempty"`
	AgentName string    `json:"agentName,omitempty" yaml:"agent_name,omitempty"`
	ToolID    string    `json:"toolId,omitempty" yaml:"tool_id,omitempty"`
	ToolName  string    `json:"toolName,omitempty" yaml:"tool_name,omitempty"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Source names what produced the entry, for list rows.
func (e *Entry) Source() string {
	switch {
	case e.AgentName != "":
		return e.AgentName
	case e.ToolName != "":
		return e.ToolName
	}
	return "System"
}

const (
	DefaultPage  = 1
	DefaultLimit = 20
)

type Pagination struct {
	Page       int `json:"page" yaml:"page"`
	Limit      int `json:"limit" yaml:"limit"`
	Total      int `json:"total" yaml:"total"`
	TotalPages int `json:"totalPages" yaml:"total_pages"`
}

type ScopeKind int

const (
	ScopeAll ScopeKind = iota
	ScopeAgent
	ScopeTool
)

// Scope selects whose entries a listing returns.
type Scope struct {
	Kind ScopeKind
	ID   string
}

func AllScope() Scope            { return Scope{Kind: ScopeAll} }
func AgentScope(id string) Scope { return Scope{Kind: ScopeAgent, ID: id} }
func ToolScope(id string) Scope  { return Scope{Kind: ScopeTool, ID: id} }

// Result is one page as the backend reported it. Pagination and Count are
// nil when the backend left them out.
type Result struct {
	Entries    []*Entry
	Pagination *Pagination
	Count      *int
}
