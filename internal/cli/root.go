// Package cli implements portfolioctl, the operator command line.
package cli

import (
	"github.com/spf13/cobra"

	"portfolio/api/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DatabaseURL string
}

// NewRootCommand creates the root command. Flags default to the same
// environment the API server reads.
func NewRootCommand() *cobra.Command {
	cfg := config.Load()
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "portfolioctl",
		Short: "Operate the portfolio API",
	}
	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", cfg.DatabaseURL, "PostgreSQL connection string")

	cmd.AddCommand(NewMigrateCommand(opts, cfg))
	cmd.AddCommand(NewHashSecretCommand())
	cmd.AddCommand(NewReindexCommand(opts, cfg))
	return cmd
}
