package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewLogsCmd creates the logs command, which shows recent calls made with one key.
func NewLogsCmd(open Opener) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "logs <key-id>",
		Short: "Show request logs for an API key",
		Long:  "Show per-endpoint call counts and the most recent calls made with an API key.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid key id %q", args[0])
			}
			if limit < 1 || limit > 500 {
				return fmt.Errorf("--limit must be between 1 and 500")
			}
			return withStores(cmd.Context(), open, func(s *Stores) error {
				ctx := cmd.Context()
				counts, err := s.Logs.CountByEndpoint(ctx, id)
				if err != nil {
					return fmt.Errorf("count request logs: %w", err)
				}
				entries, err := s.Logs.ListByAPIKey(ctx, id, limit)
				if err != nil {
					return fmt.Errorf("list request logs: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintf(out, "No requests logged for %s\n", id)
					return nil
				}
				fmt.Fprintln(out, "Calls by endpoint:")
				for _, c := range counts {
					fmt.Fprintf(out, "  %-6s %-20s %d\n", c.Method, c.Endpoint, c.Count)
				}
				fmt.Fprintln(out, "Recent calls:")
				for _, e := range entries {
					fmt.Fprintf(out, "  %s %-6s %s\n", e.CreatedAt.Format("2006-01-02 15:04:05Z07:00"), e.Method, e.Endpoint)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of recent calls to show (1-500)")
	return cmd
}
