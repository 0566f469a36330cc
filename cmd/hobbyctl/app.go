package main

import (
	"encoding/json"
	"io"
	"log/slog"

	"hobbyhub/internal/client/api"
	"hobbyhub/internal/client/auth"
	"hobbyhub/internal/client/events"
	"hobbyhub/internal/client/hobbies"
	"hobbyhub/internal/client/netstatus"
	"hobbyhub/internal/client/storage"
	"hobbyhub/internal/config"
	"hobbyhub/internal/logging"

	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configFile string
	logLevel   string
	baseURL    string
	storage    string
}

// app is the composition root: config, logger, storage, client and services.
type app struct {
	cfg     *config.ClientConfig
	log     *slog.Logger
	client  *api.Client
	auth    *auth.Service
	hobbies *hobbies.Service
	events  *events.Service
	out     io.Writer
}

func newApp(flags *globalFlags, out io.Writer, errOut io.Writer) (*app, error) {
	cfg, err := config.LoadClient(flags.configFile)
	if err != nil {
		return nil, err
	}
	if flags.baseURL != "" {
		cfg.BaseURL = flags.baseURL
		if cfg.ProbeURL, err = config.HealthURL(cfg.BaseURL); err != nil {
			return nil, err
		}
	}
	if flags.storage != "" {
		cfg.StoragePath = flags.storage
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}

	logger := logging.New(errOut, cfg.LogLevel)
	client, err := api.New(api.Options{
		BaseURL:    cfg.BaseURL,
		Store:      storage.NewFileStore(cfg.StoragePath),
		Prober:     netstatus.NewHTTPProber(cfg.ProbeURL),
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		CacheTTL:   cfg.CacheTTL,
		Logger:     logger,
		OnSessionExpired: func() {
			logger.Warn("session expired, run `hobbyctl login` again")
		},
	})
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:     cfg,
		log:     logger,
		client:  client,
		auth:    auth.NewService(client, logger),
		hobbies: hobbies.NewService(client, logger),
		events:  events.NewService(client, logger),
		out:     out,
	}, nil
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// withApp adapts a handler needing the app into a cobra RunE.
func withApp(flags *globalFlags, run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(flags, cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		return run(cmd, a, args)
	}
}
