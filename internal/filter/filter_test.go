package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcher(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		fields []string
		want   bool
	}{
		{"case insensitive", "GIT", []string{"github helper"}, true},
		{"any field", "slack", []string{"bot", "posts to channels", "slack"}, true},
		{"no match", "jira", []string{"bot", "github"}, false},
		{"regex", "^pr-(bot|helper)$", []string{"PR-Helper"}, true},
		{"invalid regex falls back to literal", "c++(", []string{"the c++( agent"}, true},
		{"invalid regex literal miss", "c++(", []string{"c agent"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compile(tt.text).MatchAny(tt.fields...))
		})
	}
}

func TestEmpty(t *testing.T) {
	assert.True(t, Empty(""))
	assert.True(t, Empty("  "))
	assert.False(t, Empty("a"))
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("Executed GitHub action", "github"))
	assert.False(t, Contains("Executed", "slack"))
}
