package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pscheid92/chargewatch/internal/adapter/kvstore"
	"github.com/pscheid92/chargewatch/internal/adapter/mockapi"
	"github.com/pscheid92/chargewatch/internal/adapter/remoteapi"
	"github.com/pscheid92/chargewatch/internal/app"
	"github.com/pscheid92/chargewatch/internal/domain"
	"github.com/pscheid92/chargewatch/internal/platform/logging"
	"github.com/pscheid92/chargewatch/internal/platform/version"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errNotLoggedIn = errors.New("not logged in, run `chargectl login` first")

// cli holds the flags shared by every command and the collaborators tests
// replace.
type cli struct {
	storeDir    string
	providerURL string
	noColor     bool
	jsonOutput  bool
	verbose     bool

	newProvider  func(c *cli) (domain.DataProvider, error)
	readPassword func() (string, error)
}

func newCLI() *cli {
	return &cli{
		newProvider:  defaultProvider,
		readPassword: promptPassword,
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "chargectl",
		Short: "chargectl - terminal client for the ChargeWatch dashboard",
		Long: `chargectl signs in to the charging network's data provider and prints the
operations dashboard. The session is kept on disk so later commands reuse it.`,
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if c.noColor {
				color.NoColor = true
			}
			level := "warn"
			if c.verbose {
				level = "debug"
			}
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), level, "text"))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.storeDir, "store-dir", defaultStoreDir(), "directory holding the saved session")
	flags.StringVar(&c.providerURL, "provider-url", os.Getenv("PROVIDER_URL"), "data provider base URL (default: built-in mock provider)")
	flags.BoolVar(&c.noColor, "no-color", false, "disable colored output")
	flags.BoolVar(&c.jsonOutput, "json", false, "print JSON instead of text")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newLoginCmd(c),
		newLogoutCmd(c),
		newStatusCmd(c),
		newDashboardCmd(c),
	)
	return root
}

// openConsole builds a console over the on-disk store and restores any saved
// session, which also loads the dashboard.
func (c *cli) openConsole(ctx context.Context) (*app.Console, error) {
	store, err := kvstore.NewFileStore(c.storeDir)
	if err != nil {
		return nil, err
	}
	provider, err := c.newProvider(c)
	if err != nil {
		return nil, fmt.Errorf("set up provider: %w", err)
	}

	console := app.NewConsole(provider, store)
	console.Start(ctx)
	return console, nil
}

func defaultProvider(c *cli) (domain.DataProvider, error) {
	if c.providerURL != "" {
		return remoteapi.New(c.providerURL)
	}
	return mockapi.New()
}

func defaultStoreDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".chargectl"
	}
	return filepath.Join(dir, "chargectl")
}

func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal to prompt for a password, pass --password")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(string(raw), "\r\n"), nil
}
