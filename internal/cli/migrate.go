package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"portfolio/api/internal/config"
	"portfolio/api/internal/store"
)

var errNoDatabase = errors.New("no database configured: set DATABASE_URL or --database-url")

func NewMigrateCommand(rootOpts *RootOptions, cfg config.Config) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply pending database migrations",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(rootOpts.DatabaseURL) == "" {
				return errNoDatabase
			}
			db, err := store.Open(cmd.Context(), rootOpts.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := store.ApplyMigrations(cmd.Context(), db, store.Migrations(dir)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", cfg.MigrationsDir, "directory of *.up.sql files (default: embedded)")
	return cmd
}
