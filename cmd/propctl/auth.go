package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ashureev/propdash/internal/credential"
)

func (a *app) loginCmd() *cobra.Command {
	var (
		email    string
		password string
		remember bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the token",
		Long: `Sign in with email and password.

With --remember the token is written to the credential store and is picked up
by later propctl runs and by the dashboard server. Without it the token only
lasts for this process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				fmt.Fprint(a.out, "Password: ")
				line, err := bufio.NewReader(a.in).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("no password given")
				}
				password = strings.TrimRight(line, "\r\n")
			}

			if err := a.session.LoginWithPassword(cmd.Context(), strings.TrimSpace(email), password, remember); err != nil {
				return remoteErr(err)
			}

			if remember {
				fmt.Fprintln(a.out, "Logged in. Token saved.")
			} else {
				fmt.Fprintln(a.out, "Logged in for this run only; pass --remember to keep the token.")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when empty)")
	cmd.Flags().BoolVar(&remember, "remember", false, "keep the token in the credential store")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out.")
			return nil
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the stored token against the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, scope, err := a.vault.Lookup(ctx)
			if err != nil {
				return err
			}
			if err := a.session.Init(ctx); err != nil {
				return err
			}
			if !a.session.IsAuthenticated() {
				fmt.Fprintln(a.out, "Not logged in.")
				return nil
			}
			where := "this run"
			if scope == credential.Durable {
				where = "credential store"
			}
			fmt.Fprintf(a.out, "Logged in (token from %s) against %s\n", where, a.cfg.APIBaseURL)
			return nil
		},
	}
}
