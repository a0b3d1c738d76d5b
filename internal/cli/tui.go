package cli

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhath/gamedash/internal/history"
	"github.com/nhath/gamedash/internal/ui"
)

func runTUI(cmd *cobra.Command, opts *globalOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	profile, err := cfg.ActiveProfile(opts.profile)
	if err != nil {
		return err
	}

	// Setup logging if debug enabled
	logger := discardLogger()
	if opts.debug {
		f, err := tea.LogToFile("debug.log", "debug")
		if err != nil {
			return fmt.Errorf("could not open debug log: %w", err)
		}
		defer f.Close()
		logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	client, err := newClient(cfg, profile, logger)
	if err != nil {
		return err
	}

	historyStore, err := history.NewStore(cfg.HistoryLimit)
	if err != nil {
		logger.Warn("history disabled", "err", err)
		historyStore = nil
	} else {
		defer historyStore.Close()
	}

	model := ui.NewModel(ui.Options{
		Config:  cfg,
		Profile: profile,
		Backend: client,
		History: historyStore,
		Logger:  logger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
