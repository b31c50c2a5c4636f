package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexjbarnes/folder-sync/internal/api"
	"github.com/alexjbarnes/folder-sync/internal/config"
	"github.com/alexjbarnes/folder-sync/internal/logging"
	"github.com/alexjbarnes/folder-sync/internal/state"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "folder-sync",
		Short:         "Upload the files of selected folders to an ingestion server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSyncCmd(),
		newUploadsCmd(),
		newPublishCmd(),
		newUnpublishCmd(),
		newStreamStatusCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newRegisterCmd(),
		newAccountCmd(),
		newVersionCmd(),
	)

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}

// app is everything a command needs, built once per invocation.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	state  *state.State
	client *api.Client
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(cfg.Environment, cfg.LogLevel)

	appState, err := openState(cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}

	client, err := api.NewClient(cfg.BackendURL, api.NewHTTPClient(cfg.HTTPTimeout))
	if err != nil {
		appState.Close()
		return nil, err
	}

	client.SetToken(appState.Token())

	return &app{
		cfg:    cfg,
		logger: logger,
		state:  appState,
		client: client,
	}, nil
}

func openState(path string) (*state.State, error) {
	if path == "" {
		return state.Load()
	}

	return state.LoadAt(path)
}

func (a *app) Close() {
	if err := a.state.Close(); err != nil {
		a.logger.Warn("failed to close state", slog.String("error", err.Error()))
	}
}

// withApp adapts a command body that needs the app and a context that
// is cancelled on SIGINT or SIGTERM.
func withApp(fn func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return fn(ctx, a, cmd, args)
	}
}
