// Package policy evaluates the console's form rules, written in Rego, against
// form input before anything is sent to the backend.
package policy

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/open-policy-agent/opa/v1/rego"
)

//go:embed rego/*.rego
var modules embed.FS

// Engine evaluates one policy package's violations rule.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine prepares data.agentconsole.<pkg>.violations from rego/<file>.
func NewEngine(ctx context.Context, file, pkg string) (*Engine, error) {
	src, err := modules.ReadFile("rego/" + file)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy %s: %w", file, err)
	}
	r := rego.New(
		rego.Query(fmt.Sprintf("data.agentconsole.%s.violations", pkg)),
		rego.Module(file, string(src)),
	)
	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare policy %s: %w", file, err)
	}
	return &Engine{query: query}, nil
}

func NewToolFormEngine(ctx context.Context) (*Engine, error) {
	return NewEngine(ctx, "tool_form.rego", "tool_form")
}

func NewProfileEngine(ctx context.Context) (*Engine, error) {
	return NewEngine(ctx, "profile.rego", "profile")
}

type Violation struct {
	Field   string
	Message string
}

// Violations evaluates input and returns the broken rules ordered by field.
func (e *Engine) Violations(ctx context.Context, input any) ([]Violation, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return nil, nil
	}
	set, ok := results[0].Expressions[0].Value.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected policy result %T", results[0].Expressions[0].Value)
	}
	out := make([]Violation, 0, len(set))
	for _, item := range set {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		field, _ := obj["field"].(string)
		msg, _ := obj["message"].(string)
		out = append(out, Violation{Field: field, Message: msg})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Field != out[j].Field {
			return out[i].Field < out[j].Field
		}
		return out[i].Message < out[j].Message
	})
	return out, nil
}

// Check evaluates input and folds the violations into FieldErrors. A nil
// result means the input is acceptable.
func (e *Engine) Check(ctx context.Context, input any) (FieldErrors, error) {
	vs, err := e.Violations(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(vs) == 0 {
		return nil, nil
	}
	fe := make(FieldErrors, len(vs))
	for _, v := range vs {
		if _, seen := fe[v.Field]; !seen {
			fe[v.Field] = v.Message
		}
	}
	return fe, nil
}

// FieldErrors maps a form field to the message shown next to it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, fe[k]))
	}
	return strings.Join(parts, "; ")
}
