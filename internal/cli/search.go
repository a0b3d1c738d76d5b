package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nhath/gamedash/internal/gateway"
	"github.com/nhath/gamedash/internal/search"
)

type searchOptions struct {
	kind   string
	entity string
	column string
	term   string
	page   int
	format string
}

func newSearchCmd(opts *globalOptions) *cobra.Command {
	so := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Print one page of search results",
		Long: `Search a table, or the players or backpacks of a game server, using the
session saved by the dashboard, and print one page of results.`,
		Example: `  gamedash search --entity sys_user --term admin
  gamedash search --kind players --entity fe_game_1 --column name --term bob --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSearch(cmd, opts, so)
		},
	}

	addSearchFlags(cmd.Flags(), so)
	_ = cmd.MarkFlagRequired("entity")
	_ = cmd.RegisterFlagCompletionFunc("kind", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		kinds := make([]string, len(gateway.Kinds))
		for i, k := range gateway.Kinds {
			kinds[i] = string(k)
		}
		return kinds, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{FormatTable, FormatJSON, FormatCSV, FormatMarkdown}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func addSearchFlags(fs *pflag.FlagSet, so *searchOptions) {
	fs.StringVarP(&so.kind, "kind", "k", string(gateway.Tables), "tables, players or backpacks")
	fs.StringVarP(&so.entity, "entity", "e", "", "table name, or game database name for players/backpacks")
	fs.StringVarP(&so.column, "column", "c", "", "column to filter on (default: any)")
	fs.StringVarP(&so.term, "term", "t", "", "search term (default: no filter)")
	fs.IntVar(&so.page, "page", 1, "page number")
	fs.StringVarP(&so.format, "format", "f", FormatTable, "output format (table|json|csv|markdown)")
}

func runSearch(cmd *cobra.Command, opts *globalOptions, so *searchOptions) error {
	kind, err := gateway.ParseKind(so.kind)
	if err != nil {
		return err
	}
	if so.page < 1 {
		return fmt.Errorf("--page must be at least 1")
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	profile, err := cfg.ActiveProfile(opts.profile)
	if err != nil {
		return err
	}
	client, err := newClient(cfg, profile, discardLogger())
	if err != nil {
		return err
	}

	sess := client.Session()
	if err := sess.Restore(); err != nil {
		return fmt.Errorf("not logged in to %s: run gamedash to log in", profile.Name)
	}

	page, err := client.Search(cmd.Context(), kind, search.Query{
		EntityKey: so.entity,
		Column:    so.column,
		Term:      so.term,
		Page:      so.page,
	})
	if errors.Is(err, gateway.ErrUnauthorized) {
		_ = sess.End()
		return fmt.Errorf("session for %s has expired: run gamedash to log in again", profile.Name)
	}
	if err != nil {
		return errors.New(gateway.UserMessage(err))
	}

	return RenderPage(cmd.OutOrStdout(), page, so.page, so.format)
}
