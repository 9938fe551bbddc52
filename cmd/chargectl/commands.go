package main

import (
	"errors"
	"fmt"

	"github.com/pscheid92/chargewatch/internal/domain"
	"github.com/spf13/cobra"
)

func newLoginCmd(c *cli) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Sign in and save the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			username := args[0]

			if password == "" {
				p, err := c.readPassword()
				if err != nil {
					return err
				}
				password = p
			}

			console, err := c.openConsole(ctx)
			if err != nil {
				return err
			}
			defer console.Close()

			if err := console.Login(ctx, username, password); err != nil {
				if errors.Is(err, domain.ErrCredentialsRequired) || errors.Is(err, domain.ErrInvalidCredentials) {
					return err
				}
				return fmt.Errorf("%s: %w", console.State().LoginError, err)
			}

			state := console.State()
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), newStatusOutput(state))
			}
			user := state.CurrentUser()
			printSuccess(cmd.OutOrStdout(), "Logged in as %s (%s)", user.DisplayName, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			console, err := c.openConsole(cmd.Context())
			if err != nil {
				return err
			}
			defer console.Close()

			wasLoggedIn := console.State().Authenticated()
			console.Logout(cmd.Context())

			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), newStatusOutput(console.State()))
			}
			if wasLoggedIn {
				printSuccess(cmd.OutOrStdout(), "Logged out")
			} else {
				printWarning(cmd.OutOrStdout(), "No saved session")
			}
			return nil
		},
	}
}

func newStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			console, err := c.openConsole(cmd.Context())
			if err != nil {
				return err
			}
			defer console.Close()

			state := console.State()
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), newStatusOutput(state))
			}
			if user := state.CurrentUser(); user != nil {
				printSuccess(cmd.OutOrStdout(), "Logged in as %s (%s, %s)", user.DisplayName, user.Username, user.Role)
				return nil
			}
			printWarning(cmd.OutOrStdout(), "Not logged in")
			return nil
		},
	}
}

func newDashboardCmd(c *cli) *cobra.Command {
	var usageRange string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Fetch and print the operations dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := domain.ParseUsageRange(usageRange)
			if err != nil {
				return err
			}

			console, err := c.openConsole(cmd.Context())
			if err != nil {
				return err
			}
			defer console.Close()

			if !console.State().Authenticated() {
				return errNotLoggedIn
			}
			if err := console.SetUsageRange(r); err != nil {
				return err
			}

			state := console.State()
			if state.Dashboard.IsEmpty() {
				return errors.New("dashboard data unavailable, try again later")
			}
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), newDashboardOutput(state))
			}
			printDashboard(cmd.OutOrStdout(), state)
			return nil
		},
	}

	cmd.Flags().StringVar(&usageRange, "range", string(domain.UsageToday), "utilisation range: today or week")
	return cmd
}
