package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nhath/gamedash/internal/backend"
	"github.com/nhath/gamedash/internal/config"
	"github.com/nhath/gamedash/internal/db"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var listen, logLevel string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard REST API",
		Long: `Serve the REST API the dashboard talks to, backed by the login database
and the per-server game databases configured in the [server] section.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			sc := cfg.Server
			if listen != "" {
				sc.Listen = listen
			}
			if logLevel != "" {
				sc.LogLevel = logLevel
			}
			return runServe(cmd.Context(), sc, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on (default: server.listen)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default: server.log_level)")
	return cmd
}

func runServe(ctx context.Context, sc config.ServerConfig, logOut io.Writer) error {
	level, err := parseLevel(sc.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tunnel *db.SSHTunnel
	if sc.SSH.Enabled() {
		tunnel, err = db.NewSSHTunnel(&db.SSHConfig{
			Host:     sc.SSH.Host,
			Port:     sc.SSH.Port,
			User:     sc.SSH.User,
			Password: sc.SSH.ResolvedPassword(),
			KeyPath:  sc.SSH.KeyPath,
		})
		if err != nil {
			return fmt.Errorf("ssh tunnel: %w", err)
		}
		defer tunnel.Close()
		logger.Info("ssh tunnel established", "host", sc.SSH.Host)
	}

	login, err := openCatalog(ctx, sc.Login, tunnel)
	if err != nil {
		return fmt.Errorf("login database: %w", err)
	}
	defer login.Close()

	srv := backend.NewServer(backend.Config{
		Addr:  sc.Listen,
		Login: login,
		OpenGame: func(ctx context.Context, dbName string) (*db.Catalog, error) {
			return openCatalog(ctx, sc.Game.GameDatabase(dbName), tunnel)
		},
		UserTable:     sc.UserTable,
		ServerTable:   sc.ServerTable,
		GamePrefix:    sc.Game.Prefix,
		PlayerTable:   sc.Game.PlayerTable,
		BackpackTable: sc.Game.BackpackTable,
		Logger:        logger,
	})
	return srv.Serve(ctx)
}

// openCatalog connects to one configured database. A shared tunnel, when
// given, carries network drivers; SQLite ignores it.
func openCatalog(ctx context.Context, dc config.DatabaseConfig, tunnel *db.SSHTunnel) (*db.Catalog, error) {
	typ, err := db.ParseDriverType(dc.Type)
	if err != nil {
		return nil, err
	}
	d, err := db.Open(ctx, typ, db.ConnectParams{
		Host:     dc.Host,
		Port:     dc.Port,
		User:     dc.User,
		Password: dc.ResolvedPassword(),
		Database: dc.Database,
		Tunnel:   tunnel,
	})
	if err != nil {
		return nil, err
	}
	return db.NewCatalog(d), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
