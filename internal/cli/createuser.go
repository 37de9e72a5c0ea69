package cli

import (
	"fmt"

	"tasksapi/internal/adapter/database"
	"tasksapi/internal/adapter/http/validation"
	"tasksapi/internal/core/model/request"
	"tasksapi/internal/core/service"

	"github.com/spf13/cobra"
)

type createUserOptions struct {
	username string
	email    string
	password string
	name     string
	lastName string
}

// newCreateUserCommand seeds a user directly in the database, which is the
// only way to obtain the first set of credentials.
func (r *RootCommand) newCreateUserCommand() *cobra.Command {
	opts := &createUserOptions{}

	cmd := &cobra.Command{
		Use:   "createuser",
		Short: "Create a user that can obtain tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := r.loadConfig()
			if err != nil {
				return err
			}

			var req request.UserRequest
			if err := validation.Bind(opts.params(), &req); err != nil {
				return err
			}

			repos, err := database.Open(cmd.Context(), cfg.Database, nil)
			if err != nil {
				return err
			}
			defer repos.Close()

			user, err := service.NewUserService(repos.Users, nil).Create(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "User %q created with id %d\n", user.Username, user.ID)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.username, "username", "", "login name")
	flags.StringVar(&opts.email, "email", "", "email address")
	flags.StringVar(&opts.password, "password", "", "plain text password, stored hashed")
	flags.StringVar(&opts.name, "name", "", "first name")
	flags.StringVar(&opts.lastName, "last-name", "", "last name")

	return cmd
}

func (o *createUserOptions) params() map[string]any {
	return map[string]any{
		"username":  o.username,
		"email":     o.email,
		"password":  o.password,
		"name":      o.name,
		"last_name": o.lastName,
	}
}
