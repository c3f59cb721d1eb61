package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/kazz187/agentconsole/internal/tool"
	"github.com/kazz187/agentconsole/pkg/color"
)

func (cli *CLI) listTools(ctx context.Context, search, typ string) error {
	cli.c.LoadTools(ctx)
	if err := cli.report(ctx, nil); err != nil {
		return err
	}
	cli.c.Tools.FilterTools(search)
	cli.c.Tools.FilterByType(tool.Type(typ))

	tools := cli.c.Tools.State().Display()
	if cli.format == formatYAML {
		return cli.yaml(tools)
	}
	if len(tools) == 0 {
		cli.done("No tools found")
		return nil
	}
	rows := lo.Map(tools, func(t *tool.Tool, _ int) []string {
		return []string{t.ID, color.Prefix(t.Name), string(t.Type), string(t.Method), t.Endpoint, color.Status(t.IsActive)}
	})
	return cli.table([]string{"ID", "NAME", "TYPE", "METHOD", "ENDPOINT", "STATUS"}, rows)
}

func (cli *CLI) showTool(ctx context.Context, id string) error {
	cli.c.Tools.GetToolByID(ctx, id)
	if err := cli.report(ctx, nil); err != nil {
		return err
	}
	t := cli.c.Tools.State().Current
	if t == nil {
		return fmt.Errorf("tool %s not found", id)
	}
	if cli.format == formatYAML {
		return cli.yaml(t)
	}

	fmt.Fprintln(cli.out, color.Heading("%s", t.Name))
	cli.field("ID", t.ID)
	cli.field("Type", string(t.Type))
	cli.field("Status", color.Status(t.IsActive))
	cli.field("Endpoint", fmt.Sprintf("%s %s", t.Method, t.Endpoint))
	cli.field("Auth", string(t.Auth.Type))
	cli.field("Description", orDash(t.Description))

	if len(t.Headers) > 0 {
		fmt.Fprintln(cli.out)
		fmt.Fprintln(cli.out, color.Heading("Headers"))
		keys := lo.Keys(t.Headers)
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(cli.out, "  %s: %s\n", k, t.Headers[k])
		}
	}
	if len(t.Parameters) > 0 {
		fmt.Fprintln(cli.out)
		fmt.Fprintln(cli.out, color.Heading("Parameters"))
		rows := lo.Map(t.Parameters, func(p tool.Parameter, _ int) []string {
			return []string{p.Name, string(p.Type), fmt.Sprint(p.Required), orDash(p.Description)}
		})
		return cli.table([]string{"NAME", "TYPE", "REQUIRED", "DESCRIPTION"}, rows)
	}
	return nil
}

func (cli *CLI) toolTypes(ctx context.Context) error {
	cli.c.Tools.GetToolTypes(ctx)
	types := cli.c.Tools.State().ToolTypes
	if cli.format == formatYAML {
		return cli.yaml(types)
	}
	for _, t := range types {
		fmt.Fprintln(cli.out, t)
	}
	return nil
}

// loadTool reads a manifest and runs it through the tool form rules.
func (cli *CLI) loadTool(ctx context.Context, file string) (*tool.Tool, error) {
	t, err := tool.LoadManifest(file)
	if err != nil {
		return nil, err
	}
	form := tool.FormFromTool(t)
	errs, err := cli.c.ValidateToolForm(ctx, form)
	if err != nil {
		return nil, err
	}
	if errs != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", file, errs)
	}
	return form.Tool(), nil
}

func (cli *CLI) createTool(ctx context.Context, file string) error {
	t, err := cli.loadTool(ctx, file)
	if err != nil {
		return err
	}
	created, err := cli.c.Tools.AddTool(ctx, t)
	if err != nil {
		return cli.report(ctx, err)
	}
	cli.done("Created tool %s (%s)", created.Name, created.ID)
	return nil
}

func (cli *CLI) updateTool(ctx context.Context, id, file string, showDiff bool) error {
	t, err := cli.loadTool(ctx, file)
	if err != nil {
		return err
	}
	t.ID = id

	if showDiff {
		cli.c.Tools.GetToolByID(ctx, id)
		if err := cli.report(ctx, nil); err != nil {
			return err
		}
		current := cli.c.Tools.State().Current
		if current == nil {
			return fmt.Errorf("tool %s not found", id)
		}
		cur := *current
		cur.CreatedAt, cur.UpdatedAt = t.CreatedAt, t.UpdatedAt
		d, err := diff(&cur, t, "tool/"+id, file)
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

	updated, err := cli.c.Tools.UpdateTool(ctx, t)
	if err != nil {
		return cli.report(ctx, err)
	}
	cli.done("Updated tool %s", updated.Name)
	return nil
}

func (cli *CLI) deleteTool(ctx context.Context, id string) error {
	if err := cli.c.Tools.DeleteTool(ctx, id); err != nil {
		return cli.report(ctx, err)
	}
	cli.done("Deleted tool %s", id)
	return nil
}

func (cli *CLI) setToolActive(ctx context.Context, id string, active bool) error {
	call := cli.c.Tools.DeregisterTool
	if active {
		call = cli.c.Tools.RegisterTool
	}
	t, err := call(ctx, id)
	if err != nil {
		return cli.report(ctx, err)
	}
	cli.done("%s is now %s", t.Name, color.Status(t.IsActive))
	return nil
}

func (cli *CLI) executeTool(ctx context.Context, id, action string, raw map[string]string) error {
	params, err := parseParams(raw)
	if err != nil {
		return err
	}
	res, err := cli.c.Tools.ExecuteTool(ctx, id, action, params)
	if err != nil {
		return cli.report(ctx, err)
	}
	return cli.yaml(res)
}

// parseParams reads each value as a YAML scalar so numbers and booleans
// reach the backend typed. Anything that does not parse stays a string.
func parseParams(raw map[string]string) (map[string]any, error) {
	params := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "" {
			return nil, fmt.Errorf("invalid parameter %q: name is empty", "="+v)
		}
		var decoded any
		if err := yaml.Unmarshal([]byte(v), &decoded); err != nil || decoded == nil {
			params[k] = v
			continue
		}
		params[k] = decoded
	}
	return params, nil
}
