package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/kazz187/agentconsole/internal/activitylog"
	"github.com/kazz187/agentconsole/pkg/color"
)

type logsQuery struct {
	agentID string
	toolID  string
	page    int
	limit   int
	search  string
	typ     string
}

func (q logsQuery) scope() (activitylog.Scope, error) {
	switch {
	case q.agentID != "" && q.toolID != "":
		return activitylog.Scope{}, errors.New("--agent and --tool cannot be combined")
	case q.agentID != "":
		return activitylog.AgentScope(q.agentID), nil
	case q.toolID != "":
		return activitylog.ToolScope(q.toolID), nil
	}
	return activitylog.AllScope(), nil
}

type logPage struct {
	Title      string                 `yaml:"title"`
	Entries    []*activitylog.Entry   `yaml:"entries"`
	Pagination activitylog.Pagination `yaml:"pagination"`
}

func (cli *CLI) logs(ctx context.Context, q logsQuery) error {
	scope, err := q.scope()
	if err != nil {
		return err
	}
	if err := cli.report(ctx, cli.c.LoadLogsPage(ctx, scope, q.page, q.limit)); err != nil {
		return err
	}

	st := cli.c.Logs.State()
	view := activitylog.View{Search: q.search, Type: activitylog.Type(q.typ)}
	page := logPage{
		Title:      cli.c.LogTitle(scope),
		Entries:    view.Apply(st.Logs),
		Pagination: st.Pagination,
	}
	if cli.format == formatYAML {
		return cli.yaml(page)
	}

	fmt.Fprintln(cli.out, color.Heading("%s", page.Title))
	if len(page.Entries) == 0 {
		fmt.Fprintln(cli.out, "No logs found")
	} else {
		rows := lo.Map(page.Entries, func(e *activitylog.Entry, _ int) []string {
			return []string{
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				color.LogType(string(e.Type)),
				color.Prefix(e.Source()),
				e.Message,
			}
		})
		if err := cli.table([]string{"TIME", "TYPE", "SOURCE", "MESSAGE"}, rows); err != nil {
			return err
		}
	}
	p := st.Pagination
	fmt.Fprintf(cli.out, "\nPage %d of %d (%d entries)\n", p.Page, max(p.TotalPages, 1), p.Total)
	return nil
}
