package agent

import "time"

type Type string

const (
	TypeGitHub  Type = "github"
	TypeSlack   Type = "slack"
	TypeJira    Type = "jira"
	TypeShopify Type = "shopify"
	TypeCustom  Type = "custom"
)

var Types = []Type{TypeGitHub, TypeSlack, TypeJira, TypeShopify, TypeCustom}

type Agent struct {
	ID          string         `json:"_id,omitempty" yaml:"id,omitempty"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Type        Type           `json:"type" yaml:"type"`
	IsActive    bool           `json:"isActive" yaml:"is_active"`
	Code        string         `json:"code,omitempty" yaml:"code,omitempty"`
	Config      map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
	Tools       []string       `json:"tools" yaml:"tools"`
	CreatedAt   time.Time      `json:"createdAt,omitzero" yaml:"created_at,omitempty"`
	UpdatedAt   time.Time      `json:"updatedAt,omitzero" yaml:"updated_at,omitempty"`
}

// QueryResult is the backend's answer to a natural-language prompt.
type QueryResult struct {
	Response string `json:"response"`
}
