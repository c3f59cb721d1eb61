package agent

import "strings"

var suggestions = map[Type][]string{
	TypeGitHub: {
		"What are the open PRs in the repository?",
		"Summarize the latest pull request",
		"Show me open issues with 'bug' label",
	},
	TypeSlack: {
		"Send a message to #general saying 'Hello team!'",
		"What are the latest messages in the channel?",
		"Create a new channel called team-updates",
	},
	TypeJira: {
		"Show me all open bugs",
		"Create a new task for implementing login page",
		"What's the status of PROJECT-123?",
	},
	TypeShopify: {
		"How many products are in stock?",
		"Show me recent orders",
		"Update price of 'Blue T-shirt' to $24.99",
	},
}

var defaultSuggestions = []string{
	"Hello! What can you do?",
	"What tools do you have access to?",
	"Help me with a task",
}

// Suggestions returns starter prompts for a conversation with an agent of
// type t.
func Suggestions(t Type) []string {
	if s, ok := suggestions[Type(strings.ToLower(string(t)))]; ok {
		return s
	}
	return defaultSuggestions
}
