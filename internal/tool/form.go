package tool

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/kazz187/agentconsole/internal/policy"
)

type HeaderRow struct {
	Key   string
	Value string
}

// Form is the editable shape of a tool. Headers and parameters are kept as
// rows so a half-filled row survives until the form is submitted.
type Form struct {
	ID          string
	Name        string
	Description string
	Type        Type
	Endpoint    string
	Method      Method
	Auth        Auth
	IsActive    bool
	HeaderRows  []HeaderRow
	ParamRows   []Parameter
}

func emptyParam() Parameter {
	return Parameter{Type: ParamString}
}

func NewForm() *Form {
	return &Form{
		Type:       TypeCustom,
		Method:     MethodGet,
		Auth:       Auth{Type: AuthNone},
		HeaderRows: []HeaderRow{{}},
		ParamRows:  []Parameter{emptyParam()},
	}
}

// FormFromTool fills a form for editing t. Headers are listed by key.
func FormFromTool(t *Tool) *Form {
	f := NewForm()
	f.ID = t.ID
	f.Name = t.Name
	f.Description = t.Description
	f.Endpoint = t.Endpoint
	f.IsActive = t.IsActive
	if t.Type != "" {
		f.Type = t.Type
	}
	if t.Method != "" {
		f.Method = t.Method
	}
	if t.Auth.Type != "" {
		f.Auth = t.Auth
	}
	if len(t.Headers) > 0 {
		f.HeaderRows = f.HeaderRows[:0]
		for _, k := range slices.Sorted(maps.Keys(t.Headers)) {
			f.HeaderRows = append(f.HeaderRows, HeaderRow{Key: k, Value: t.Headers[k]})
		}
	}
	if len(t.Parameters) > 0 {
		f.ParamRows = slices.Clone(t.Parameters)
	}
	return f
}

func (f *Form) AddHeaderRow() {
	f.HeaderRows = append(f.HeaderRows, HeaderRow{})
}

// RemoveHeaderRow drops row i. The last remaining row is never removed.
func (f *Form) RemoveHeaderRow(i int) {
	if len(f.HeaderRows) <= 1 || i < 0 || i >= len(f.HeaderRows) {
		return
	}
	f.HeaderRows = slices.Delete(f.HeaderRows, i, i+1)
}

func (f *Form) AddParamRow() {
	f.ParamRows = append(f.ParamRows, emptyParam())
}

// RemoveParamRow drops row i. The last remaining row is never removed.
func (f *Form) RemoveParamRow(i int) {
	if len(f.ParamRows) <= 1 || i < 0 || i >= len(f.ParamRows) {
		return
	}
	f.ParamRows = slices.Delete(f.ParamRows, i, i+1)
}

// Tool serialises the form. Header rows without a key and parameter rows
// without a name are left out.
func (f *Form) Tool() *Tool {
	t := &Tool{
		ID:          f.ID,
		Name:        strings.TrimSpace(f.Name),
		Description: f.Description,
		Type:        f.Type,
		Endpoint:    strings.TrimSpace(f.Endpoint),
		Method:      f.Method,
		Auth:        f.Auth,
		IsActive:    f.IsActive,
		Headers:     map[string]string{},
		Parameters:  []Parameter{},
	}
	for _, h := range f.HeaderRows {
		key := strings.TrimSpace(h.Key)
		if key == "" {
			continue
		}
		t.Headers[key] = h.Value
	}
	for _, p := range f.ParamRows {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		p.Name = name
		if p.Type == "" {
			p.Type = ParamString
		}
		t.Parameters = append(t.Parameters, p)
	}
	if t.Auth.Type == "" {
		t.Auth.Type = AuthNone
	}
	return t
}

// Validate checks the serialised form against the tool form policy. It
// never contacts the backend.
func (f *Form) Validate(ctx context.Context, engine *policy.Engine) (policy.FieldErrors, error) {
	return engine.Check(ctx, f.Tool())
}
