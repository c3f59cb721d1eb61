package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent   = lipgloss.AdaptiveColor{Light: "#2D5BFF", Dark: "#7AA2F7"}
	subtle   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	positive = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

	titleSt   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	helpSt    = lipgloss.NewStyle().Foreground(subtle)
	userSt    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	agentSt   = lipgloss.NewStyle().Bold(true).Foreground(positive)
	systemSt  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	warnSt    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f59e0b"))
	timeSt    = lipgloss.NewStyle().Foreground(subtle)
	inputBox  = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(accent)
	suggestSt = lipgloss.NewStyle().Italic(true).Foreground(subtle)
)
