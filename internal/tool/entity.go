package tool

import "time"

type Type string

const (
	TypeGitHub  Type = "github"
	TypeSlack   Type = "slack"
	TypeJira    Type = "jira"
	TypeShopify Type = "shopify"
	TypeSpeech  Type = "speech"
	TypeCustom  Type = "custom"

	// TypeUnknown marks a placeholder for an id the tools list does not know.
	TypeUnknown Type = "unknown"
)

// DefaultTypes is used until the backend supplies its own list.
var DefaultTypes = []Type{TypeGitHub, TypeSlack, TypeJira, TypeShopify, TypeSpeech, TypeCustom}

type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
	MethodPatch  Method = "PATCH"
)

var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch}

type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthBasic  AuthType = "basic"
	AuthBearer AuthType = "bearer"
	AuthAPIKey AuthType = "apiKey"
)

type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
	ParamObject  ParamType = "object"
	ParamArray   ParamType = "array"
)

type Parameter struct {
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Required    bool      `json:"required" yaml:"required"`
	Type        ParamType `json:"type" yaml:"type"`
}

type Auth struct {
	Type     AuthType `json:"type" yaml:"type"`
	Token    string   `json:"token,omitempty" yaml:"token,omitempty"`
	Username string   `json:"username,omitempty" yaml:"username,omitempty"`
	Password string   `json:"password,omitempty" yaml:"password,omitempty"`
}

type Tool struct {
	ID          string            `json:"_id,omitempty" yaml:"id,omitempty"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Type        Type              `json:"type" yaml:"type"`
	Endpoint    string            `json:"endpoint" yaml:"endpoint"`
	Method      Method            `json:"method" yaml:"method"`
	Headers     map[string]string `json:"headers" yaml:"headers,omitempty"`
	Parameters  []Parameter       `json:"parameters" yaml:"parameters,omitempty"`
	Auth        Auth              `json:"auth" yaml:"auth"`
	IsActive    bool              `json:"isActive" yaml:"is_active"`
	CreatedAt   time.Time         `json:"createdAt,omitzero" yaml:"created_at,omitempty"`
	UpdatedAt   time.Time         `json:"updatedAt,omitzero" yaml:"updated_at,omitempty"`
}

// Placeholder stands in for a tool id that cannot be resolved.
func Placeholder(id string) *Tool {
	return &Tool{ID: id, Name: "Unknown Tool", Type: TypeUnknown}
}

// ExecuteResult is whatever the backend reports for a tool invocation.
type ExecuteResult map[string]any
