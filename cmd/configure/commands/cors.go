package commands

import (
	"fmt"
	"strings"

	"github.com/benvon/fake-api/internal/models"
	"github.com/benvon/fake-api/internal/validation"
	"github.com/spf13/cobra"
)

// NewCorsCmd creates the cors configuration command with list, set and reset subcommands.
func NewCorsCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cors",
		Short: "Manage CORS configuration",
		Long:  "List or update CORS allowed origins and options (stored in database).",
	}
	cmd.AddCommand(newCorsListCmd(open))
	cmd.AddCommand(newCorsSetCmd(open))
	cmd.AddCommand(newCorsResetCmd(open))
	return cmd
}

func newCorsListCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List current CORS configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), open, func(s *Stores) error {
				c, err := s.Cors.Get(cmd.Context())
				if err != nil {
					return fmt.Errorf("get cors config: %w", err)
				}
				out := cmd.OutOrStdout()
				if c == nil {
					fmt.Fprintln(out, "No CORS configuration in database. Servers fall back to FRONTEND_URL.")
					return nil
				}
				fmt.Fprintln(out, "CORS configuration:")
				fmt.Fprintf(out, "  Allowed origins: %s\n", c.AllowedOrigins)
				fmt.Fprintf(out, "  Allow credentials: %v\n", c.AllowCredentials)
				fmt.Fprintf(out, "  Max-Age: %d\n", c.MaxAge)
				return nil
			})
		},
	}
}

func newCorsSetCmd(open Opener) *cobra.Command {
	var origins string
	var allowCreds bool
	var maxAge int
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set CORS configuration",
		Long:  "Update CORS allowed origins (comma-separated). Stored in database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			origins = strings.TrimSpace(origins)
			if origins == "" {
				return fmt.Errorf("--origins is required (comma-separated list)")
			}
			if err := validation.ValidateOrigins(origins); err != nil {
				return err
			}
			if maxAge < 0 {
				return fmt.Errorf("--max-age must not be negative")
			}
			return withStores(cmd.Context(), open, func(s *Stores) error {
				c := &models.CorsConfig{
					AllowedOrigins:   origins,
					AllowCredentials: allowCreds,
					MaxAge:           maxAge,
				}
				if err := s.Cors.Set(cmd.Context(), c); err != nil {
					return fmt.Errorf("set cors config: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "CORS configuration updated.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&origins, "origins", "", "Comma-separated allowed origins (required)")
	cmd.Flags().BoolVar(&allowCreds, "allow-credentials", true, "Allow credentials")
	cmd.Flags().IntVar(&maxAge, "max-age", 86400, "Access-Control-Max-Age (seconds)")
	return cmd
}

func newCorsResetCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Remove stored CORS configuration",
		Long:  "Delete the stored CORS row so servers fall back to FRONTEND_URL.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), open, func(s *Stores) error {
				if err := s.Cors.Reset(cmd.Context()); err != nil {
					return fmt.Errorf("reset cors config: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "CORS configuration reset.")
				return nil
			})
		},
	}
}
