package main

import (
	"context"
	"fmt"
	"os"

	"github.com/benvon/fake-api/cmd/configure/commands"
	"github.com/benvon/fake-api/internal/config"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "fake-api-configure",
		Short: "Configuration tool for the fake API",
		Long:  "CLI tool for managing API keys, request logs, rate limits, CORS and admin tokens",
	}

	rootCmd.AddCommand(commands.NewKeysCmd(commands.OpenDatabase))
	rootCmd.AddCommand(commands.NewLogsCmd(commands.OpenDatabase))
	rootCmd.AddCommand(commands.NewRatelimitCmd(commands.OpenDatabase))
	rootCmd.AddCommand(commands.NewCorsCmd(commands.OpenDatabase))
	rootCmd.AddCommand(commands.NewTokenCmd(config.Load))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
