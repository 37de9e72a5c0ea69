package cli

import (
	"context"

	"tasksapi/pkg/config"

	"github.com/spf13/cobra"
)

// RootCommand is the tasksapi binary: the HTTP server plus the
// administrative commands that share its configuration.
type RootCommand struct {
	cmd        *cobra.Command
	configPath string
}

func NewRootCommand() *RootCommand {
	root := &RootCommand{}

	root.cmd = &cobra.Command{
		Use:   "tasksapi",
		Short: "Task management REST API",
		Long: `tasksapi serves a JSON API where authenticated users manage their own tasks.

CONFIGURATION:
  Values are read from defaults, then the optional --config YAML file, then
  TASKS_* environment variables, for example:
    TASKS_SERVER_PORT                 HTTP port (default: 8080)
    TASKS_DATABASE_DRIVER             sqlite3, sqlite or postgres (default: sqlite3)
    TASKS_DATABASE_PATH               SQLite file (default: database.db)
    TASKS_DATABASE_URL                Postgres connection URL
    TASKS_AUTH_JWT_SECRET             Token signing secret (required)
    TASKS_RATE_LIMIT_STORE            memory or redis (default: memory)

EXAMPLES:
  tasksapi serve
  tasksapi migrate up
  tasksapi createuser --username admin --email admin@example.com --password secret`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.cmd.PersistentFlags().StringVarP(&root.configPath, "config", "c", "", "path to a YAML config file")

	root.cmd.AddCommand(
		root.newServeCommand(),
		root.newMigrateCommand(),
		root.newCreateUserCommand(),
	)

	return root
}

func (r *RootCommand) Execute(ctx context.Context) error {
	return r.cmd.ExecuteContext(ctx)
}

func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

func (r *RootCommand) loadConfig() (*config.Config, error) {
	return config.Load(r.configPath)
}
