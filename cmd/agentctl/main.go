package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kingpin/v2"

	"github.com/kazz187/agentconsole/internal/config"
	"github.com/kazz187/agentconsole/internal/console"
	"github.com/kazz187/agentconsole/pkg/clog"
	"github.com/kazz187/agentconsole/pkg/color"
)

var (
	app    = kingpin.New("agentctl", "Admin console for AI agents and tools")
	output = app.Flag("output", "Output format").Short('o').Default(formatTable).Enum(formatTable, formatYAML)

	// Auth commands
	loginCmd    = app.Command("login", "Log in and remember the session")
	loginEmail  = loginCmd.Flag("email", "Account email").String()
	registerCmd = app.Command("register", "Create an account and log in")
	regName     = registerCmd.Flag("name", "Display name").String()
	regEmail    = registerCmd.Flag("email", "Account email").String()
	logoutCmd   = app.Command("logout", "Forget the stored session")
	whoamiCmd   = app.Command("whoami", "Show the logged-in user")
	profileCmd  = app.Command("profile", "Update name and email")
	profName    = profileCmd.Flag("name", "New display name").String()
	profEmail   = profileCmd.Flag("email", "New email").String()
	passwordCmd = app.Command("password", "Change the account password")

	// Agent commands
	agentsCmd = app.Command("agents", "Agent management commands")

	agentListCmd    = agentsCmd.Command("list", "List agents").Default()
	agentListSearch = agentListCmd.Flag("search", "Name, description or type pattern").String()
	agentListType   = agentListCmd.Flag("type", "Only this agent type").String()

	agentShowCmd = agentsCmd.Command("show", "Show an agent with its tools and recent activity")
	agentShowID  = agentShowCmd.Arg("id", "Agent ID").Required().String()

	agentCreateCmd  = agentsCmd.Command("create", "Create an agent from a manifest")
	agentCreateFile = agentCreateCmd.Flag("file", "Agent manifest (YAML)").Short('f').Required().ExistingFile()

	agentUpdateCmd  = agentsCmd.Command("update", "Replace an agent from a manifest")
	agentUpdateID   = agentUpdateCmd.Arg("id", "Agent ID").Required().String()
	agentUpdateFile = agentUpdateCmd.Flag("file", "Agent manifest (YAML)").Short('f').Required().ExistingFile()
	agentUpdateDiff = agentUpdateCmd.Flag("diff", "Print the change and exit without saving").Bool()

	agentDeleteCmd = agentsCmd.Command("delete", "Delete an agent")
	agentDeleteID  = agentDeleteCmd.Arg("id", "Agent ID").Required().String()

	agentRegisterCmd   = agentsCmd.Command("register", "Activate an agent")
	agentRegisterID    = agentRegisterCmd.Arg("id", "Agent ID").Required().String()
	agentDeregisterCmd = agentsCmd.Command("deregister", "Deactivate an agent")
	agentDeregisterID  = agentDeregisterCmd.Arg("id", "Agent ID").Required().String()

	agentChatCmd = agentsCmd.Command("chat", "Chat with an agent")
	agentChatID  = agentChatCmd.Arg("id", "Agent ID").Required().String()

	// Tool commands
	toolsCmd = app.Command("tools", "Tool management commands")

	toolListCmd    = toolsCmd.Command("list", "List tools").Default()
	toolListSearch = toolListCmd.Flag("search", "Name, description or type pattern").String()
	toolListType   = toolListCmd.Flag("type", "Only this tool type").String()

	toolShowCmd = toolsCmd.Command("show", "Show a tool")
	toolShowID  = toolShowCmd.Arg("id", "Tool ID").Required().String()

	toolTypesCmd = toolsCmd.Command("types", "List the tool types the backend accepts")

	toolCreateCmd  = toolsCmd.Command("create", "Create a tool from a manifest")
	toolCreateFile = toolCreateCmd.Flag("file", "Tool manifest (YAML)").Short('f').Required().ExistingFile()

	toolUpdateCmd  = toolsCmd.Command("update", "Replace a tool from a manifest")
	toolUpdateID   = toolUpdateCmd.Arg("id", "Tool ID").Required().String()
	toolUpdateFile = toolUpdateCmd.Flag("file", "Tool manifest (YAML)").Short('f').Required().ExistingFile()
	toolUpdateDiff = toolUpdateCmd.Flag("diff", "Print the change and exit without saving").Bool()

	toolDeleteCmd = toolsCmd.Command("delete", "Delete a tool")
	toolDeleteID  = toolDeleteCmd.Arg("id", "Tool ID").Required().String()

	toolRegisterCmd   = toolsCmd.Command("register", "Activate a tool")
	toolRegisterID    = toolRegisterCmd.Arg("id", "Tool ID").Required().String()
	toolDeregisterCmd = toolsCmd.Command("deregister", "Deactivate a tool")
	toolDeregisterID  = toolDeregisterCmd.Arg("id", "Tool ID").Required().String()

	toolExecuteCmd    = toolsCmd.Command("execute", "Invoke a tool")
	toolExecuteID     = toolExecuteCmd.Arg("id", "Tool ID").Required().String()
	toolExecuteAction = toolExecuteCmd.Flag("action", "Action name").Required().String()
	toolExecuteParams = toolExecuteCmd.Flag("param", "Parameter as key=value; repeatable").StringMap()

	// Log commands
	logsCmd    = app.Command("logs", "Show activity logs")
	logsAgent  = logsCmd.Flag("agent", "Only entries for this agent").String()
	logsTool   = logsCmd.Flag("tool", "Only entries for this tool").String()
	logsPage   = logsCmd.Flag("page", "Page number").Default("1").Int()
	logsLimit  = logsCmd.Flag("limit", "Entries per page").Default("20").Int()
	logsSearch = logsCmd.Flag("search", "Only entries mentioning this text").String()
	logsType   = logsCmd.Flag("type", "Only this entry type").Default("all").Enum("all", "query", "action", "error", "system")
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, command); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, color.Alert(err.Error()))
		}
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, command string) error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}

	logOut := io.Writer(os.Stderr)
	if command == agentChatCmd.FullCommand() {
		// The chat screen owns the terminal.
		f, err := openLogFile(env.BaseDir)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	setupLogger(env, logOut)

	c, err := console.NewFromEnv(ctx, env)
	if err != nil {
		return fmt.Errorf("failed to start console: %w", err)
	}
	cli := newCLI(c, os.Stdout, *output)

	switch command {
	case loginCmd.FullCommand():
		return cli.login(ctx, *loginEmail)
	case registerCmd.FullCommand():
		return cli.register(ctx, *regName, *regEmail)
	case logoutCmd.FullCommand():
		return cli.logout(ctx)
	}

	if err := cli.requireUser(ctx); err != nil {
		return err
	}

	switch command {
	case whoamiCmd.FullCommand():
		return cli.whoami()
	case profileCmd.FullCommand():
		return cli.profile(ctx, *profName, *profEmail)
	case passwordCmd.FullCommand():
		return cli.password(ctx)

	case agentListCmd.FullCommand():
		return cli.listAgents(ctx, *agentListSearch, *agentListType)
	case agentShowCmd.FullCommand():
		return cli.showAgent(ctx, *agentShowID)
	case agentCreateCmd.FullCommand():
		return cli.createAgent(ctx, *agentCreateFile)
	case agentUpdateCmd.FullCommand():
		return cli.updateAgent(ctx, *agentUpdateID, *agentUpdateFile, *agentUpdateDiff)
	case agentDeleteCmd.FullCommand():
		return cli.deleteAgent(ctx, *agentDeleteID)
	case agentRegisterCmd.FullCommand():
		return cli.setAgentActive(ctx, *agentRegisterID, true)
	case agentDeregisterCmd.FullCommand():
		return cli.setAgentActive(ctx, *agentDeregisterID, false)
	case agentChatCmd.FullCommand():
		return cli.chat(ctx, *agentChatID)

	case toolListCmd.FullCommand():
		return cli.listTools(ctx, *toolListSearch, *toolListType)
	case toolShowCmd.FullCommand():
		return cli.showTool(ctx, *toolShowID)
	case toolTypesCmd.FullCommand():
		return cli.toolTypes(ctx)
	case toolCreateCmd.FullCommand():
		return cli.createTool(ctx, *toolCreateFile)
	case toolUpdateCmd.FullCommand():
		return cli.updateTool(ctx, *toolUpdateID, *toolUpdateFile, *toolUpdateDiff)
	case toolDeleteCmd.FullCommand():
		return cli.deleteTool(ctx, *toolDeleteID)
	case toolRegisterCmd.FullCommand():
		return cli.setToolActive(ctx, *toolRegisterID, true)
	case toolDeregisterCmd.FullCommand():
		return cli.setToolActive(ctx, *toolDeregisterID, false)
	case toolExecuteCmd.FullCommand():
		return cli.executeTool(ctx, *toolExecuteID, *toolExecuteAction, *toolExecuteParams)

	case logsCmd.FullCommand():
		return cli.logs(ctx, logsQuery{
			agentID: *logsAgent,
			toolID:  *logsTool,
			page:    *logsPage,
			limit:   *logsLimit,
			search:  *logsSearch,
			typ:     *logsType,
		})
	}
	return fmt.Errorf("unknown command %q", command)
}

func setupLogger(env *config.Env, w io.Writer) {
	var handler slog.Handler
	if env.IsLocal() {
		handler = clog.NewTextHandler(w, clog.WithColor(w == os.Stderr), clog.WithLevel(env.SlogLevel()))
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: env.SlogLevel()})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))
}

func openLogFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, "agentctl.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}
