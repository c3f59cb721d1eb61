package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/kazz187/agentconsole/internal/activitylog"
	"github.com/kazz187/agentconsole/internal/agent"
	"github.com/kazz187/agentconsole/internal/tool"
	"github.com/kazz187/agentconsole/internal/tui"
	"github.com/kazz187/agentconsole/pkg/color"
)

func (cli *CLI) listAgents(ctx context.Context, search, typ string) error {
	cli.c.LoadAgents(ctx)
	if err := cli.report(ctx, nil); err != nil {
		return err
	}
	cli.c.Agents.FilterAgents(search)
	cli.c.Agents.FilterByType(agent.Type(typ))

	agents := cli.c.Agents.State().Display()
	if cli.format == formatYAML {
		return cli.yaml(agents)
	}
	if len(agents) == 0 {
		cli.done("No agents found")
		return nil
	}
	rows := lo.Map(agents, func(a *agent.Agent, _ int) []string {
		return []string{a.ID, color.Prefix(a.Name), string(a.Type), color.Status(a.IsActive), fmt.Sprint(len(a.Tools))}
	})
	return cli.table([]string{"ID", "NAME", "TYPE", "STATUS", "TOOLS"}, rows)
}

type agentDetail struct {
	Agent  *agent.Agent         `yaml:"agent"`
	Tools  []*tool.Tool         `yaml:"tools"`
	Recent []*activitylog.Entry `yaml:"recent_activity"`
}

func (cli *CLI) showAgent(ctx context.Context, id string) error {
	if err := cli.report(ctx, cli.c.LoadAgentDetail(ctx, id)); err != nil {
		return err
	}
	a := cli.c.Agents.State().Current
	if a == nil {
		return fmt.Errorf("agent %s not found", id)
	}
	d := agentDetail{
		Agent:  a,
		Tools:  cli.c.ResolveTools(a),
		Recent: cli.c.Logs.State().Logs,
	}
	if cli.format == formatYAML {
		return cli.yaml(d)
	}

	fmt.Fprintln(cli.out, color.Heading("%s", a.Name))
	cli.field("ID", a.ID)
	cli.field("Type", string(a.Type))
	cli.field("Status", color.Status(a.IsActive))
	cli.field("Description", orDash(a.Description))
	if !a.CreatedAt.IsZero() {
		cli.field("Created", a.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	fmt.Fprintln(cli.out)
	fmt.Fprintln(cli.out, color.Heading("Tools (%d)", len(d.Tools)))
	for _, t := range d.Tools {
		fmt.Fprintf(cli.out, "  %s %s (%s)\n", color.Prefix(t.Name), color.Status(t.IsActive), t.Type)
	}

	fmt.Fprintln(cli.out)
	fmt.Fprintln(cli.out, color.Heading("Recent activity"))
	if len(d.Recent) == 0 {
		fmt.Fprintln(cli.out, "  No activity yet")
	}
	for _, e := range d.Recent {
		fmt.Fprintf(cli.out, "  %s %-6s %s\n", e.Timestamp.Local().Format("01-02 15:04"), color.LogType(string(e.Type)), e.Message)
	}
	return nil
}

func (cli *CLI) createAgent(ctx context.Context, file string) error {
	a, err := agent.LoadManifest(file)
	if err != nil {
		return err
	}
	created, err := cli.c.Agents.AddAgent(ctx, a)
	if err != nil {
		return cli.report(ctx, err)
	}
	cli.done("Created agent %s (%s)", created.Name, created.ID)
	return nil
}

func (cli *CLI) updateAgent(ctx context.Context, id, file string, showDiff bool) error {
	a, err := agent.LoadManifest(file)
	if err != nil {
		return err
	}
	a.ID = id

	if showDiff {
		cli.c.Agents.GetAgentByID(ctx, id)
		if err := cli.report(ctx, nil); err != nil {
			return err
		}
		current := cli.c.Agents.State().Current
		if current == nil {
			return fmt.Errorf("agent %s not found", id)
		}
		cur := *current
		cur.CreatedAt, cur.UpdatedAt = a.CreatedAt, a.UpdatedAt
		d, err := diff(&cur, a, "agent/"+id, file)
		if err != nil {
			return err
		}
		if strings.TrimSpace(d) == "" {
			cli.done("No changes")
			return nil
		}
		fmt.Fprint(cli.out, d)
		return nil
	}

	updated, err := cli.c.Agents.UpdateAgent(ctx, a)
	if err != nil {
		return cli.report(ctx, err)
	}
	cli.done("Updated agent %s", updated.Name)
	return nil
}

func (cli *CLI) deleteAgent(ctx context.Context, id string) error {
	if err := cli.c.Agents.DeleteAgent(ctx, id); err != nil {
		return cli.report(ctx, err)
	}
	cli.done("Deleted agent %s", id)
	return nil
}

func (cli *CLI) setAgentActive(ctx context.Context, id string, active bool) error {
	call := cli.c.Agents.DeregisterAgent
	if active {
		call = cli.c.Agents.RegisterAgent
	}
	a, err := call(ctx, id)
	if err != nil {
		return cli.report(ctx, err)
	}
	cli.done("%s is now %s", a.Name, color.Status(a.IsActive))
	return nil
}

func (cli *CLI) chat(ctx context.Context, id string) error {
	cli.c.Agents.GetAgentByID(ctx, id)
	if err := cli.report(ctx, nil); err != nil {
		return err
	}
	a := cli.c.Agents.State().Current
	if a == nil {
		return fmt.Errorf("agent %s not found", id)
	}
	return tui.Run(ctx, cli.c.Conversation(a))
}
