// Package color assigns terminal colours to console entities so a name keeps
// the same colour in every listing.
package color

import (
	"fmt"
	"hash/fnv"

	"github.com/fatih/color"
)

var palette = []*color.Color{
	color.New(color.FgHiRed),
	color.New(color.FgHiGreen),
	color.New(color.FgHiYellow),
	color.New(color.FgHiBlue),
	color.New(color.FgHiMagenta),
	color.New(color.FgHiCyan),
	color.New(color.FgRed),
	color.New(color.FgGreen),
	color.New(color.FgYellow),
	color.New(color.FgBlue),
	color.New(color.FgMagenta),
	color.New(color.FgCyan),
}

var (
	active   = color.New(color.FgGreen)
	inactive = color.New(color.Faint)
	failure  = color.New(color.FgRed, color.Bold)
	heading  = color.New(color.Bold)

	logTypes = map[string]*color.Color{
		"query":  color.New(color.FgCyan),
		"action": color.New(color.FgGreen),
		"error":  color.New(color.FgRed),
		"system": color.New(color.FgYellow),
	}
)

// ForName returns the colour of name. Equal names always get equal colours.
func ForName(name string) *color.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return palette[h.Sum32()%uint32(len(palette))]
}

// Prefix renders "[name]" in the colour of name.
func Prefix(name string) string {
	return ForName(name).Sprintf("[%s]", name)
}

func Status(isActive bool) string {
	if isActive {
		return active.Sprint("active")
	}
	return inactive.Sprint("inactive")
}

func LogType(t string) string {
	if c, ok := logTypes[t]; ok {
		return c.Sprint(t)
	}
	return t
}

func Heading(format string, args ...any) string {
	return heading.Sprintf(format, args...)
}

// Alert renders an error banner line.
func Alert(msg string) string {
	return failure.Sprint(fmt.Sprintf("! %s", msg))
}
