// User commands for the farmcore CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"farmcore/internal/core"
	"farmcore/pkg/domain"
)

var flagUserRole string

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage farm accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		doc := store.Get()
		for _, u := range doc.Users {
			state := "active"
			if !u.Active {
				state = "deactivated"
			}
			marker := " "
			if u.ID == doc.ActiveUserID {
				marker = "*"
			}
			fmt.Printf("%s %s\t%s\t%s\t%s\n", marker, u.ID, u.Name, u.Role, state)
		}
		return nil
	},
}

var usersAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a new account (owner only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		svc := core.NewService(store)
		u, err := svc.AddUser(cmd.Context(), args[0], domain.Role(flagUserRole))
		if err != nil {
			return err
		}
		logger.Info().Str("user", u.ID).Str("role", string(u.Role)).Msg("user added")
		fmt.Println(u.ID)
		return nil
	},
}

var usersSwitchCmd = &cobra.Command{
	Use:   "switch <id>",
	Short: "Make an account the active user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		svc := core.NewService(store)
		if err := svc.SetActiveUser(cmd.Context(), args[0]); err != nil {
			return err
		}
		logger.Info().Str("user", args[0]).Msg("active user switched")
		return nil
	},
}

var usersDeactivateCmd = &cobra.Command{
	Use:   "deactivate <id>",
	Short: "Deactivate an account (owner only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		svc := core.NewService(store)
		if err := svc.DeactivateUser(cmd.Context(), args[0]); err != nil {
			return err
		}
		logger.Info().Str("user", args[0]).Msg("user deactivated")
		return nil
	},
}

func init() {
	usersAddCmd.Flags().StringVar(&flagUserRole, "role", string(domain.RoleWorker), "account role: owner|worker")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersSwitchCmd)
	usersCmd.AddCommand(usersDeactivateCmd)
}
