package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/unifyhub/core/cmd/api/commands"
)

// @title UnifyHub API
// @version 1.0
// @description Unified productivity dashboard backend aggregating messages, calendar events, tasks, projects, automation rules and service connections.

// @contact.name UnifyHub Support
// @contact.url https://github.com/unifyhub/core

// @license.name MIT
// @license.url https://github.com/unifyhub/core/blob/main/LICENSE

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	rootCmd := &cobra.Command{
		Use:   "unifyhub",
		Short: "UnifyHub API Server",
		Long:  `UnifyHub aggregates messages, calendar events, tasks, projects, automation rules and service connections behind a single dashboard API.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewSeedCommand())
	rootCmd.AddCommand(commands.NewHashKeyCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
