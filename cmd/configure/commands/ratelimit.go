package commands

import (
	"fmt"
	"strings"

	"github.com/benvon/fake-api/internal/models"
	"github.com/benvon/fake-api/internal/validation"
	"github.com/spf13/cobra"
)

// NewRatelimitCmd creates the ratelimit configuration command with list and set subcommands.
func NewRatelimitCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Manage rate limit configuration",
		Long:  "List or update the per-client rate limit (e.g. 10-S, 600-M). Stored in database and picked up by running servers within a minute.",
	}
	cmd.AddCommand(newRatelimitListCmd(open))
	cmd.AddCommand(newRatelimitSetCmd(open))
	return cmd
}

func newRatelimitListCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List current rate limit configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), open, func(s *Stores) error {
				c, err := s.Ratelimit.Get(cmd.Context())
				if err != nil {
					return fmt.Errorf("get ratelimit config: %w", err)
				}
				out := cmd.OutOrStdout()
				if c == nil {
					fmt.Fprintln(out, "No rate limit configuration in database. Use 'ratelimit set' to add one.")
					return nil
				}
				fmt.Fprintln(out, "Rate limit configuration:")
				fmt.Fprintf(out, "  Rate: %s\n", c.Rate)
				return nil
			})
		},
	}
}

func newRatelimitSetCmd(open Opener) *cobra.Command {
	var rate string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set rate limit configuration",
		Long:  "Update rate limit (e.g. 5-S, 100-M, 1000-H). Stored in database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			rate = strings.TrimSpace(rate)
			if rate == "" {
				return fmt.Errorf("--rate is required (e.g. 5-S, 100-M)")
			}
			if err := validation.ValidateRate(rate); err != nil {
				return err
			}
			return withStores(cmd.Context(), open, func(s *Stores) error {
				if err := s.Ratelimit.Set(cmd.Context(), &models.RatelimitConfig{Rate: rate}); err != nil {
					return fmt.Errorf("set ratelimit config: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Rate limit configuration updated.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&rate, "rate", "", "Rate (e.g. 5-S, 100-M, 1000-H) (required)")
	return cmd
}
