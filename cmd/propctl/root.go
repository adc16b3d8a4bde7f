package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ashureev/propdash/internal/apiclient"
	"github.com/ashureev/propdash/internal/auth"
	"github.com/ashureev/propdash/internal/config"
	"github.com/ashureev/propdash/internal/credential"
	"github.com/ashureev/propdash/internal/store"
)

var errNotLoggedIn = errors.New("not logged in; run 'propctl login' first")

// app holds what every subcommand needs. It is built in PersistentPreRunE.
type app struct {
	in  io.Reader
	out io.Writer

	apiURL  string
	dbPath  string
	verbose bool

	cfg     *config.Config
	durable store.TokenStore
	vault   *credential.Vault
	client  *apiclient.Client
	session *auth.Session
}

// execute runs propctl with args and releases the credential store whether
// or not the command succeeded.
func execute(ctx context.Context, in io.Reader, out io.Writer, args []string) error {
	root, a := newRootCmd(in, out)
	root.SetArgs(args)
	defer func() {
		if err := a.close(); err != nil {
			slog.Warn("Failed to close credential store", "error", err)
		}
	}()
	return root.ExecuteContext(ctx)
}

func newRootCmd(in io.Reader, out io.Writer) (*cobra.Command, *app) {
	a := &app{in: in, out: out}

	root := &cobra.Command{
		Use:          "propctl",
		Short:        "Property dashboard from the terminal",
		Long:         "propctl talks to the property-management API: sign in, browse the dashboard and reports, manage staff and properties, and chat with the finance assistant.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "remote API base URL (overrides API_BASE_URL)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "credential database path (overrides DB_PATH)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging on stderr")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.statusCmd(),
		a.dashboardCmd(),
		a.reportsCmd(),
		a.staffCmd(),
		a.propertiesCmd(),
		a.chatCmd(),
	)
	return root, a
}

func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("api-url") {
		cfg.APIBaseURL = a.apiURL
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = a.dbPath
		cfg.CredentialBackend = config.BackendSQLite
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	a.durable, err = store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}
	// The session scope lives only as long as this process.
	a.vault = credential.NewVault(a.durable, credential.NewMemoryStore())
	a.client = apiclient.New(cfg.APIBaseURL, a.vault, apiclient.WithTimeout(cfg.APITimeout))
	a.session = auth.NewSession(a.vault, a.client)
	a.client.OnSessionExpired(a.session.Expire)
	slog.Debug("propctl ready", "api", cfg.APIBaseURL, "backend", cfg.CredentialBackend)
	return nil
}

func (a *app) close() error {
	if a.durable == nil {
		return nil
	}
	err := a.durable.Close()
	a.durable = nil
	return err
}

// requireLogin restores the stored token and fails when there is none or the
// server rejects it.
func (a *app) requireLogin(ctx context.Context) error {
	if err := a.session.Init(ctx); err != nil {
		return err
	}
	if !a.session.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}

// remoteErr turns client errors into the messages the dashboard shows.
func remoteErr(err error) error {
	var failed *apiclient.RequestFailedError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apiclient.ErrSessionExpired):
		return errors.New("session expired; run 'propctl login' again")
	case errors.Is(err, apiclient.ErrUnauthenticated):
		return errNotLoggedIn
	case errors.Is(err, apiclient.ErrTimedOut):
		return errors.New("request timed out")
	case errors.As(err, &failed):
		return errors.New(failed.Message)
	default:
		return err
	}
}
