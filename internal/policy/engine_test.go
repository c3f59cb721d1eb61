package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toolForm(t *testing.T) *Engine {
	t.Helper()
	e, err := NewToolFormEngine(context.Background())
	require.NoError(t, err)
	return e
}

func TestToolForm(t *testing.T) {
	e := toolForm(t)
	valid := map[string]any{
		"name":     "Issue search",
		"endpoint": "https://api.github.com/search/issues",
		"method":   "GET",
		"auth":     map[string]any{"type": "none"},
	}

	with := func(changes map[string]any) map[string]any {
		out := map[string]any{}
		for k, v := range valid {
			out[k] = v
		}
		for k, v := range changes {
			out[k] = v
		}
		return out
	}

	tests := []struct {
		name  string
		input map[string]any
		want  FieldErrors
	}{
		{"valid", valid, nil},
		{"missing name", with(map[string]any{"name": "  "}), FieldErrors{"name": "Name is required"}},
		{"missing endpoint", with(map[string]any{"endpoint": ""}), FieldErrors{"endpoint": "Endpoint is required"}},
		{"bad endpoint", with(map[string]any{"endpoint": "not a url"}), FieldErrors{"endpoint": "Endpoint must be a valid URL"}},
		{"ftp endpoint", with(map[string]any{"endpoint": "ftp://files.example.com"}), FieldErrors{"endpoint": "Endpoint must be a valid URL"}},
		{"bad method", with(map[string]any{"method": "TRACE"}), FieldErrors{"method": "Method must be one of GET, POST, PUT, DELETE, PATCH"}},
		{
			"basic without credentials",
			with(map[string]any{"auth": map[string]any{"type": "basic"}}),
			FieldErrors{
				"auth.username": "Username is required for basic auth",
				"auth.password": "Password is required for basic auth",
			},
		},
		{"basic complete", with(map[string]any{"auth": map[string]any{"type": "basic", "username": "u", "password": "p"}}), nil},
		{"bearer without token", with(map[string]any{"auth": map[string]any{"type": "bearer"}}), FieldErrors{"auth.token": "Token is required for bearer auth"}},
		{"apiKey without token", with(map[string]any{"auth": map[string]any{"type": "apiKey", "token": " "}}), FieldErrors{"auth.token": "Token is required for apiKey auth"}},
		{"apiKey with token", with(map[string]any{"auth": map[string]any{"type": "apiKey", "token": "k"}}), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Check(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProfile(t *testing.T) {
	e, err := NewProfileEngine(context.Background())
	require.NoError(t, err)

	tests := []struct {
		name  string
		input map[string]any
		want  FieldErrors
	}{
		{"valid details", map[string]any{"name": "Ada", "email": "ada@example.com"}, nil},
		{"missing both", map[string]any{}, FieldErrors{"name": "Name is required", "email": "Email is required"}},
		{"bad email", map[string]any{"name": "Ada", "email": "ada@example"}, FieldErrors{"email": "Please enter a valid email"}},
		{
			"password change without current",
			map[string]any{"name": "Ada", "email": "ada@example.com", "newPassword": "abcdef", "confirmPassword": "abcdef"},
			FieldErrors{"currentPassword": "Current password is required to change password"},
		},
		{
			"short and mismatched",
			map[string]any{"name": "Ada", "email": "ada@example.com", "currentPassword": "old", "newPassword": "abc", "confirmPassword": "abd"},
			FieldErrors{"newPassword": "Password must be at least 6 characters", "confirmPassword": "Passwords do not match"},
		},
		{
			"valid change",
			map[string]any{"name": "Ada", "email": "ada@example.com", "currentPassword": "old", "newPassword": "abcdef", "confirmPassword": "abcdef"},
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Check(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFieldErrors_Error(t *testing.T) {
	fe := FieldErrors{"name": "Name is required", "endpoint": "Endpoint is required"}
	assert.Equal(t, "endpoint: Endpoint is required; name: Name is required", fe.Error())
}
