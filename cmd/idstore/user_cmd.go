package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newUserCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(
		newUserCreateCmd(app),
		newUserFindCmd(app),
		newUserDeleteCmd(app),
		newUserUnlockCmd(app),
		newUserAddRoleCmd(app),
		newUserRemoveRoleCmd(app),
	)
	return cmd
}

func newUserCreateCmd(app *application) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := app.identity.CreateUser(cmd.Context(), args[0], email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func newUserFindCmd(app *application) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "find [username]",
		Short: "Print a user as JSON, looked up by name or --email",
		Args: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.NoArgs(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var userName string
			if len(args) > 0 {
				userName = args[0]
			}
			user, err := app.identity.FindUser(cmd.Context(), userName, email)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(user, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode user: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "find by email instead of user name")
	return cmd
}

func newUserDeleteCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.identity.DeleteUser(cmd.Context(), args[0])
		},
	}
}

func newUserUnlockCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <username>",
		Short: "Clear a user's lockout and failed access count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.identity.UnlockUser(cmd.Context(), args[0])
		},
	}
}

func newUserAddRoleCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "add-role <username> <role>",
		Short: "Add a user to a role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.identity.AddToRole(cmd.Context(), args[0], args[1])
		},
	}
}

func newUserRemoveRoleCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-role <username> <role>",
		Short: "Remove a user from a role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.identity.RemoveFromRole(cmd.Context(), args[0], args[1])
		},
	}
}
