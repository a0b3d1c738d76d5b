// Package cli provides the command-line interface for GameDash.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhath/gamedash/internal/config"
	"github.com/nhath/gamedash/internal/gateway"
	"github.com/nhath/gamedash/internal/session"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configPath string
	profile    string
	debug      bool
}

// newTokenStore opens the store sessions persist tokens in. Tests swap it.
var newTokenStore = func() (session.TokenStore, error) {
	store, err := config.NewKeyringStore()
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "gamedash",
		Short: "GameDash - game server database dashboard",
		Long: `GameDash is a terminal dashboard for browsing the tables, players and
backpacks of game server databases through the GameDash REST API.

Run without a subcommand to open the dashboard, or use "gamedash serve"
to run the API itself.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} {{.Version}} (%s, %s)\n", GitCommit, BuildDate))

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/gamedash/config.toml)")
	flags.StringVarP(&opts.profile, "profile", "p", "", "backend profile to use (default: default_profile)")
	flags.BoolVar(&opts.debug, "debug", false, "write debug logs to debug.log")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newSearchCmd(opts))
	rootCmd.AddCommand(newLogoutCmd(opts))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func loadConfig(opts *globalOptions) (*config.Config, error) {
	if opts.configPath != "" {
		return config.LoadFrom(opts.configPath)
	}
	return config.Load()
}

// newClient builds the gateway client for a profile, with its session
// persisted in the token store when one is available
func newClient(cfg *config.Config, profile *config.Profile, logger *slog.Logger) (*gateway.Client, error) {
	var sess *session.Session
	if store, err := newTokenStore(); err != nil {
		logger.Warn("token store unavailable, sessions will not persist", "err", err)
		sess = session.New(profile.Name, nil)
	} else {
		sess = session.New(profile.Name, store)
	}

	return gateway.New(gateway.Options{
		BaseURL:  profile.BaseURL,
		Timeout:  cfg.RequestTimeout(),
		PageSize: cfg.PageSize,
		Session:  sess,
		Logger:   logger,
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
