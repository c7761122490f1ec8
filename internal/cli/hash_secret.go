package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"portfolio/api/internal/auth"
)

// NewHashSecretCommand prints a bcrypt hash for PORTFOLIO_ADMIN_SECRET_BCRYPT.
// The secret is read from stdin when no argument is given so it stays out of
// shell history.
func NewHashSecretCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "hash-secret [secret]",
		Short:        "Print a bcrypt hash of the admin secret",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := ""
			if len(args) == 1 {
				secret = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read secret: %w", err)
				}
				secret = strings.TrimRight(line, "\r\n")
			}

			hash, err := auth.HashSecret(secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
