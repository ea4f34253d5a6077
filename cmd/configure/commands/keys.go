package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/benvon/fake-api/internal/models"
	"github.com/benvon/fake-api/internal/services/apikeys"
	"github.com/benvon/fake-api/internal/validation"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewKeysCmd creates the keys command with list, create, revoke and activate subcommands.
func NewKeysCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys",
		Long:  "List, create, revoke or re-activate fake API keys.",
	}
	cmd.AddCommand(newKeysListCmd(open))
	cmd.AddCommand(newKeysCreateCmd(open))
	cmd.AddCommand(newKeysSetActiveCmd(open, "revoke", "Deactivate an API key", false))
	cmd.AddCommand(newKeysSetActiveCmd(open, "activate", "Re-activate a revoked API key", true))
	return cmd
}

func newKeysListCmd(open Opener) *cobra.Command {
	params := validation.ListParams{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List API keys, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.Validate.Struct(params); err != nil {
				return fmt.Errorf("--limit must be 1-500 and --offset must not be negative")
			}
			return withStores(cmd.Context(), open, func(s *Stores) error {
				keys, err := s.Keys.List(cmd.Context(), params.Limit, params.Offset)
				if err != nil {
					return fmt.Errorf("list api keys: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(keys) == 0 {
					fmt.Fprintln(out, "No API keys found")
					return nil
				}
				for _, k := range keys {
					printKey(out, k)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&params.Limit, "limit", 50, "Maximum number of keys to list")
	cmd.Flags().IntVar(&params.Offset, "offset", 0, "Number of keys to skip")
	return cmd
}

func newKeysCreateCmd(open Opener) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an API key",
		Long:  "Create an active API key. The plaintext key is printed once and cannot be recovered.",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := validation.GenerateKeyRequest{Name: name}
			if err := req.Normalize(); err != nil {
				return err
			}
			return withStores(cmd.Context(), open, func(s *Stores) error {
				issued, err := s.Keys.Generate(cmd.Context(), req.Name)
				if err != nil {
					return fmt.Errorf("create api key: %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "API key: %s\n", issued.APIKey)
				fmt.Fprintf(out, "ID: %s\n", issued.ID)
				fmt.Fprintln(out, "Store this key now; it will not be shown again.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Optional label for the key")
	return cmd
}

func newKeysSetActiveCmd(open Opener, use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <key-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid key id %q", args[0])
			}
			return withStores(cmd.Context(), open, func(s *Stores) error {
				if active {
					err = s.Keys.Activate(cmd.Context(), id)
				} else {
					err = s.Keys.Revoke(cmd.Context(), id)
				}
				if errors.Is(err, apikeys.ErrKeyNotFound) {
					return fmt.Errorf("api key %s not found", id)
				}
				if err != nil {
					return fmt.Errorf("%s api key: %w", use, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "API key %s %sd.\n", id, use)
				return nil
			})
		},
	}
}

func printKey(out io.Writer, k *models.APIKey) {
	status := "active"
	if !k.IsActive {
		status = "revoked"
	}
	fmt.Fprintf(out, "  - ID: %s\n", k.ID)
	fmt.Fprintf(out, "    Prefix: %s\n", k.KeyPrefix)
	if k.Name != nil {
		fmt.Fprintf(out, "    Name: %s\n", *k.Name)
	}
	fmt.Fprintf(out, "    Status: %s\n", status)
	fmt.Fprintf(out, "    Created: %s\n", k.CreatedAt.Format("2006-01-02 15:04:05Z07:00"))
	if k.LastUsedAt != nil {
		fmt.Fprintf(out, "    Last used: %s\n", k.LastUsedAt.Format("2006-01-02 15:04:05Z07:00"))
	}
}
