// Package cli implements the booktracker command line. Running the binary
// without a subcommand starts the terminal UI; subcommands expose the same
// client operations for scripting.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/booktracker/internal/api"
	"github.com/five82/booktracker/internal/app"
)

// runTUI starts the interactive UI. Tests replace it.
var runTUI = app.Run

type rootFlags struct {
	configPath      string
	baseURL         string
	credentialStore string
	logLevel        string
}

func (f *rootFlags) appOptions() app.Options {
	return app.Options{
		ConfigPath:      f.configPath,
		BaseURL:         f.baseURL,
		CredentialStore: f.credentialStore,
		LogLevel:        f.logLevel,
	}
}

// runtime wires the client stack for one subcommand. The caller closes it.
func (f *rootFlags) runtime() (*app.Runtime, error) {
	return app.Build(f.appOptions())
}

// NewRootCommand builds the booktracker command tree.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "booktracker",
		Short:         "Browse your book shelves from the terminal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), flags.appOptions())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.config/booktracker/config.toml)")
	pf.StringVar(&flags.baseURL, "base-url", "", "API endpoint, overrides config and BOOKTRACKER_BASE_URL")
	pf.StringVar(&flags.credentialStore, "credential-store", "", "credential backend: keyring, file or memory")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newLoginCommand(flags),
		newLogoutCommand(flags),
		newStatusCommand(flags),
		newShelvesCommand(flags),
		newShelfCommand(flags),
		newBookCommand(flags),
		newLogsCommand(flags),
	)
	return root
}

// expireOnUnauthorized clears the stored session when the server rejected
// it, so the next run starts logged out.
func expireOnUnauthorized(rt *app.Runtime, err error) error {
	if err == nil || !errors.Is(err, api.ErrUnauthorized) {
		return err
	}
	if lerr := rt.Session.MarkLoggedOut(); lerr != nil {
		rt.Logger.Warn("clear rejected session failed", "error", lerr)
	}
	return fmt.Errorf("%w; run 'booktracker login'", err)
}

func closeRuntime(rt *app.Runtime, err *error) {
	*err = errors.Join(*err, rt.Close())
}
