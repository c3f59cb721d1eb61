package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/kazz187/agentconsole/internal/chat"
)

var (
	mdMu       sync.Mutex
	mdRenderer *glamour.TermRenderer
	mdWidth    int
)

// markdown renders agent replies. Plain wrapped text is used when glamour
// cannot build a renderer.
func markdown(text string, width int) string {
	if width < 20 {
		width = 20
	}
	mdMu.Lock()
	defer mdMu.Unlock()
	if mdRenderer == nil || mdWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithWordWrap(width),
			glamour.WithAutoStyle(),
			glamour.WithStylesFromJSONBytes([]byte(`{"document":{"margin":0}}`)),
		)
		if err != nil {
			return lipgloss.NewStyle().Width(width).Render(text)
		}
		mdRenderer, mdWidth = r, width
	}
	out, err := mdRenderer.Render(text)
	if err != nil || strings.TrimSpace(out) == "" {
		return lipgloss.NewStyle().Width(width).Render(text)
	}
	return strings.Trim(out, "\n")
}

func transcript(msgs []chat.Message, agentName string, width int) string {
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		stamp := timeSt.Render(m.Timestamp.Format("15:04"))
		switch m.Role {
		case chat.RoleUser:
			fmt.Fprintf(&b, "%s %s\n", userSt.Render("You"), stamp)
			b.WriteString(lipgloss.NewStyle().Width(width).Render(m.Content))
		case chat.RoleAgent:
			fmt.Fprintf(&b, "%s %s\n", agentSt.Render(agentName), stamp)
			b.WriteString(markdown(m.Content, width))
		default:
			b.WriteString(systemSt.Width(width).Render(m.Content))
		}
	}
	return b.String()
}
