package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/benvon/fake-api/internal/services/admintoken"
	"github.com/spf13/cobra"
)

// NewTokenCmd creates the token command, which signs admin API bearer tokens.
func NewTokenCmd(load ConfigLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage admin API tokens",
	}
	cmd.AddCommand(newTokenIssueCmd(load))
	return cmd
}

func newTokenIssueCmd(load ConfigLoader) *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue an admin bearer token",
		Long:  "Sign a bearer token for /api/admin with ADMIN_TOKEN_SECRET. The token expires after ADMIN_TOKEN_TTL.",
		RunE: func(cmd *cobra.Command, args []string) error {
			subject = strings.TrimSpace(subject)
			if subject == "" {
				return fmt.Errorf("--subject is required")
			}
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			m, err := admintoken.NewManager(cfg.AdminTokenSecret, cfg.AdminTokenIssuer, cfg.AdminTokenTTL)
			if errors.Is(err, admintoken.ErrDisabled) {
				return fmt.Errorf("ADMIN_TOKEN_SECRET is not set; the admin API is disabled")
			}
			if err != nil {
				return err
			}
			token, err := m.Issue(subject)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Operator name recorded in the token (required)")
	return cmd
}
