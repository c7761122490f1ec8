package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"portfolio/api/internal/config"
	"portfolio/api/internal/search"
	"portfolio/api/internal/store"
)

// NewReindexCommand rebuilds the Meilisearch posts index from PostgreSQL.
func NewReindexCommand(rootOpts *RootOptions, cfg config.Config) *cobra.Command {
	var meiliURL, meiliKey string

	cmd := &cobra.Command{
		Use:          "reindex",
		Short:        "Rebuild the search index from the database",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(rootOpts.DatabaseURL) == "" {
				return errNoDatabase
			}
			if strings.TrimSpace(meiliURL) == "" {
				return fmt.Errorf("no search server configured: set MEILI_URL or --meili-url")
			}

			db, err := store.Open(cmd.Context(), rootOpts.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			records, err := search.NewPgFTS(db).LoadAllRecords(cmd.Context())
			if err != nil {
				return err
			}

			meili := search.NewMeili(meiliURL, meiliKey)
			defer meili.Close()
			if !meili.Healthy() {
				return fmt.Errorf("meilisearch at %s is not reachable", meiliURL)
			}
			if err := meili.IndexPosts(records); err != nil {
				return fmt.Errorf("index posts: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queued %d posts for indexing\n", len(records))
			return nil
		},
	}
	cmd.Flags().StringVar(&meiliURL, "meili-url", cfg.MeiliURL, "Meilisearch URL")
	cmd.Flags().StringVar(&meiliKey, "meili-key", cfg.MeiliMasterKey, "Meilisearch API key")
	return cmd
}
