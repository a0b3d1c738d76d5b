package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogoutCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke and forget the saved session of a profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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
				fmt.Fprintf(cmd.OutOrStdout(), "Not logged in to %s\n", profile.Name)
				return nil
			}
			// the backend may already have dropped the token
			_ = client.Logout(cmd.Context())
			if err := sess.End(); err != nil {
				return fmt.Errorf("forget session: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged out of %s\n", profile.Name)
			return nil
		},
	}
}
