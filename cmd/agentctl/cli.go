package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/kazz187/agentconsole/internal/console"
	"github.com/kazz187/agentconsole/pkg/color"
)

const (
	formatTable = "table"
	formatYAML  = "yaml"
)

// errReported means the failure has already been shown to the user.
var errReported = errors.New("reported")

type CLI struct {
	c      *console.Console
	out    io.Writer
	errOut io.Writer
	format string

	in     *bufio.Reader
	// secret reads a line without echo when stdin is a terminal.
	secret func(prompt string) (string, error)
}

func newCLI(c *console.Console, out io.Writer, format string) *CLI {
	cli := &CLI{
		c:      c,
		out:    out,
		errOut: os.Stderr,
		format: format,
		in:     bufio.NewReader(os.Stdin),
	}
	cli.secret = cli.readSecret
	return cli
}

func (cli *CLI) readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return cli.prompt(prompt)
	}
	fmt.Fprint(cli.errOut, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(cli.errOut)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

func (cli *CLI) prompt(prompt string) (string, error) {
	fmt.Fprint(cli.errOut, prompt)
	line, err := cli.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// report prints every pending alert and returns errReported when there was
// at least one. cause is only logged.
func (cli *CLI) report(ctx context.Context, cause error) error {
	alerts := cli.c.Alerts()
	if len(alerts) == 0 {
		return cause
	}
	if cause != nil {
		slog.DebugContext(ctx, "command failed", "error", cause)
	}
	for _, a := range alerts {
		fmt.Fprintln(cli.errOut, color.Alert(a))
	}
	cli.c.ClearAlerts()
	return errReported
}

func (cli *CLI) yaml(v any) error {
	enc := yaml.NewEncoder(cli.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return enc.Close()
}

func (cli *CLI) table(header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

func (cli *CLI) field(name, value string) {
	fmt.Fprintf(cli.out, "%-13s %s\n", name+":", value)
}

func (cli *CLI) done(format string, args ...any) {
	fmt.Fprintln(cli.errOut, fmt.Sprintf(format, args...))
}

// diff renders the unified diff between two YAML documents of v.
func diff(from, to any, fromName, toName string) (string, error) {
	a, err := yaml.Marshal(from)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", fromName, err)
	}
	b, err := yaml.Marshal(to)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", toName, err)
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	})
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
