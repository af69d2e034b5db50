package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/booktracker/internal/credstore"
)

func newLoginCommand(flags *rootFlags) *cobra.Command {
	var (
		email         string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			email = strings.TrimSpace(email)
			if email == "" {
				return errors.New("--email is required")
			}
			password, err := readSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), passwordStdin)
			if err != nil {
				return err
			}
			if password == "" {
				return errors.New("password is empty")
			}

			rt, err := flags.runtime()
			if err != nil {
				return err
			}
			defer closeRuntime(rt, &err)

			s, err := rt.Client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			rt.Session.MarkLoggedIn()
			p := &printer{w: cmd.OutOrStdout()}
			p.printf("Logged in as %s (user %d)\n", email, s.UserID)
			return p.err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func newLogoutCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			rt, err := flags.runtime()
			if err != nil {
				return err
			}
			defer closeRuntime(rt, &err)

			if err := rt.Session.MarkLoggedOut(); err != nil {
				return err
			}
			p := &printer{w: cmd.OutOrStdout()}
			p.println("Logged out")
			return p.err
		},
	}
}

func newStatusCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			rt, err := flags.runtime()
			if err != nil {
				return err
			}
			defer closeRuntime(rt, &err)

			p := &printer{w: cmd.OutOrStdout()}
			p.printf("Server:           %s\n", rt.Client.BaseURL())
			p.printf("Credential store: %s\n", rt.Config.CredentialStore)
			if !rt.Session.Authenticated() {
				p.println("Session:          not logged in")
				return p.err
			}
			userID, ok, err := rt.Store.Get(credstore.KeyUserID)
			if err != nil {
				return fmt.Errorf("read user id: %w", err)
			}
			if !ok {
				userID = "unknown"
			}
			p.printf("Session:          logged in (user %s)\n", userID)
			return p.err
		},
	}
}
