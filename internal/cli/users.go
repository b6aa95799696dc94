package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"boardsync/internal/admin"
	"boardsync/internal/model"
)

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage hub accounts (admin only)",
	}
	cmd.AddCommand(newUsersCreateCmd(app))
	cmd.AddCommand(newUsersDeleteCmd(app))
	return cmd
}

func newUsersCreateCmd(app *App) *cobra.Command {
	var (
		name     string
		password string
	)
	cmd := &cobra.Command{
		Use:   "create <email>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.requireSession()
			if err != nil {
				return err
			}
			req := admin.CreateUserRequest{Email: args[0]}
			if name != "" {
				req.Name = model.StrPtr(name)
			}
			if password != "" {
				req.Password = model.StrPtr(password)
			}
			id, err := admin.NewClient(app.HubURL, sess.Token).CreateUser(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&password, "password", "", "Initial password")
	return cmd
}

func newUsersDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.requireSession()
			if err != nil {
				return err
			}
			return admin.NewClient(app.HubURL, sess.Token).DeleteUser(cmd.Context(), args[0])
		},
	}
}
