package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/five82/booktracker/internal/api"
	"github.com/five82/booktracker/internal/config"
	"github.com/five82/booktracker/internal/credstore"
	"github.com/five82/booktracker/internal/logging"
	"github.com/five82/booktracker/internal/prefs"
	"github.com/five82/booktracker/internal/session"
	"github.com/five82/booktracker/internal/ui"
)

// Options configure the booktracker application.
type Options struct {
	ConfigPath      string
	PrefsPath       string // empty uses default ~/.config/booktracker/prefs.toml
	BaseURL         string // overrides config and environment when set
	CredentialStore string // overrides config and environment when set
	LogLevel        string // overrides config and environment when set
}

// Runtime holds the wired dependencies for one process.
type Runtime struct {
	Config  config.Config
	Logger  *slog.Logger
	Store   credstore.Store
	Client  *api.Client
	Session *session.Controller

	closer io.Closer
}

// Build loads configuration and constructs every core component.
func Build(opts Options) (*Runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(opts.CredentialStore); v != "" {
		cfg.CredentialStore = strings.ToLower(v)
	}
	if v := strings.TrimSpace(opts.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	store, err := credstore.Open(cfg.CredentialStore, cfg.CredentialsPath)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	client, err := api.NewClient(cfg.BaseURL, store, api.WithLogger(logger))
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}

	ctrl := session.New(store, client)
	logger.Debug("runtime ready",
		"base_url", client.BaseURL(),
		"credential_store", cfg.CredentialStore,
		"authenticated", ctrl.Authenticated(),
	)

	return &Runtime{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Client:  client,
		Session: ctrl,
		closer:  closer,
	}, nil
}

// Close releases the log file.
func (r *Runtime) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Run boots the booktracker TUI until the context is cancelled or the user
// quits.
func Run(ctx context.Context, opts Options) (err error) {
	rt, err := Build(opts)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, rt.Close()) }()

	prefsPath := opts.PrefsPath
	if strings.TrimSpace(prefsPath) == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, _ := prefs.Load(prefsPath)

	return ui.Run(ui.Options{
		Context:   ctx,
		Client:    rt.Client,
		Session:   rt.Session,
		Logger:    rt.Logger,
		ThemeName: userPrefs.Theme,
		LastEmail: userPrefs.LastEmail,
		PrefsPath: prefsPath,
	})
}
