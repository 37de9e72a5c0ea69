package cli

import (
	"fmt"

	"tasksapi/internal/adapter/database"

	"github.com/spf13/cobra"
)

func (r *RootCommand) newMigrateCommand() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert the database schema",
	}

	migrate.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := r.loadConfig()
				if err != nil {
					return err
				}

				if err := database.MigrateUp(cmd.Context(), cfg.Database); err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert every migration, dropping all data",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := r.loadConfig()
				if err != nil {
					return err
				}

				if err := database.MigrateDown(cmd.Context(), cfg.Database); err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), "Migrations reverted")
				return nil
			},
		},
	)

	return migrate
}
