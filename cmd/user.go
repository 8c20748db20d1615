package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/bookquest/internal/progression"
	"github.com/abhisek/bookquest/internal/store"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage learners",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create a learner at level 1",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		u := &store.User{Username: args[0], Email: email, Stats: progression.NewStats()}
		if err := e.store.Repos().Users().Create(cmd.Context(), u); err != nil {
			return fmt.Errorf("create user %q: %w", args[0], err)
		}
		e.log.Info("user created", "user_id", u.ID, "username", u.Username, "email", u.Email)
		fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %d).\n", u.Username, u.ID)
		return nil
	},
}

func init() {
	userAddCmd.Flags().String("email", "", "Email address")
	userCmd.AddCommand(userAddCmd)
}

// lookupUser resolves the --user flag, which takes a username.
func lookupUser(cmd *cobra.Command, e *env) (*store.User, error) {
	name, _ := cmd.Flags().GetString("user")
	if name == "" {
		return nil, fmt.Errorf("--user is required")
	}
	return e.store.Repos().Users().GetByUsername(cmd.Context(), name)
}
