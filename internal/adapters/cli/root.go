package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	playerID   int
	playerName string
	villageRef string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "empire",
		Short: "Empire CLI - Manage villages, construction and research",
		Long: `Empire CLI operates on the game database directly, running the same
commands the API server runs. Time-driven state (resource production,
finished upgrades and research) is brought up to date on every command.

Examples:
  empire player register --username alice
  empire config set-player --player-id 1
  empire village found --name Riverside
  empire village show
  empire building upgrade woodcutter
  empire research start forestry
  empire transition complete woodcutter
  empire catalog show`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: ./config.yaml, ./configs, /etc/empire)")
	rootCmd.PersistentFlags().IntVar(&playerID, "player-id", 0,
		"Player ID (defaults to the configured player)")
	rootCmd.PersistentFlags().StringVar(&playerName, "player", "",
		"Player username (alternative to --player-id)")
	rootCmd.PersistentFlags().StringVar(&villageRef, "village", "",
		"Village ID (defaults to the configured village)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	// Add command groups
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewPlayerCommand())
	rootCmd.AddCommand(NewVillageCommand())
	rootCmd.AddCommand(NewBuildingCommand())
	rootCmd.AddCommand(NewResearchCommand())
	rootCmd.AddCommand(NewTransitionCommand())
	rootCmd.AddCommand(NewCatalogCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, describeFailure(err))
		os.Exit(1)
	}
}
