package cli

import (
	"context"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/empire-go/internal/application/village/queries"
	"github.com/andrescamacho/empire-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage Empire configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (EMPIRE_* prefix)
2. Config file (config.yaml)
3. Default values

User preferences (default player and village) are stored in ~/.empire/preferences.yaml

Examples:
  empire config show
  empire config set-player --player-id 1
  empire config set-village --village <village-id>
  empire config clear`,
	}

	// Add subcommands
	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetPlayerCommand())
	cmd.AddCommand(newConfigSetVillageCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Printf("Warning: Failed to load config: %v\n", err)
				fmt.Println("Using default configuration.")
				cfg = config.LoadConfigOrDefault(configPath)
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			userCfg, err := userConfigHandler.Load()
			if err != nil {
				fmt.Printf("Warning: Failed to load user config: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			fmt.Println("Empire Configuration")
			fmt.Println("====================")

			fmt.Println("User Preferences:")
			fmt.Printf("  Config file:      %s\n", userConfigHandler.GetConfigPath())
			if userCfg.DefaultPlayerID != nil {
				fmt.Printf("  Default Player:   ID=%d\n", *userCfg.DefaultPlayerID)
			} else {
				fmt.Printf("  Default Player:   (not set)\n")
			}
			if userCfg.DefaultVillageID != "" {
				fmt.Printf("  Default Village:  %s\n", userCfg.DefaultVillageID)
			} else {
				fmt.Printf("  Default Village:  (not set)\n")
			}

			fmt.Println("\nDatabase:")
			fmt.Printf("  Type:             %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.Type == "sqlite":
				fmt.Printf("  Path:             %s\n", cfg.Database.Path)
			case cfg.Database.URL != "":
				fmt.Printf("  URL:              %s\n", maskPassword(cfg.Database.URL))
			default:
				fmt.Printf("  Host:             %s\n", cfg.Database.Host)
				fmt.Printf("  Port:             %d\n", cfg.Database.Port)
				fmt.Printf("  Database:         %s\n", cfg.Database.Name)
				fmt.Printf("  User:             %s\n", cfg.Database.User)
			}
			fmt.Printf("  Max Connections:  %d\n", cfg.Database.Pool.MaxOpen)

			fmt.Println("\nServer:")
			fmt.Printf("  Address:          %s\n", cfg.Server.Address)
			fmt.Printf("  Rate Limit:       %.1f req/s (burst: %d)\n",
				cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Burst)
			fmt.Printf("  Admin Routes:     %t\n", cfg.Server.EnableAdmin)

			fmt.Println("\nGame:")
			catalogPath := cfg.Game.CatalogPath
			if catalogPath == "" {
				catalogPath = "(embedded default)"
			}
			fmt.Printf("  Catalog:          %s\n", catalogPath)
			fmt.Printf("  Cancel Refund:    %.0f%%\n", cfg.Game.CancelRefundFraction*100)
			fmt.Printf("  Conflict Retries: %d\n", cfg.Game.MaxConflictRetries)

			fmt.Println("\nLogging:")
			fmt.Printf("  Level:            %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:           %s\n", cfg.Logging.Format)
			fmt.Printf("  Output:           %s\n", cfg.Logging.Output)

			return nil
		},
	}

	return cmd
}

// newConfigSetPlayerCommand creates the config set-player subcommand
func newConfigSetPlayerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-player",
		Short: "Set default player",
		Long: `Set the default player to use for commands.

Examples:
  empire config set-player --player-id 1
  empire config set-player --player alice`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if playerID == 0 && playerName == "" {
				return fmt.Errorf("either --player-id or --player flag is required")
			}

			a, closeFn, err := newApp()
			if err != nil {
				return err
			}
			defer closeFn()

			// Verify player exists in database
			p, err := resolvePlayer(context.Background(), a)
			if err != nil {
				return err
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.SetDefaultPlayer(p.ID.Value()); err != nil {
				return fmt.Errorf("failed to set default player: %w", err)
			}

			fmt.Printf("✓ Default player set to %s (ID %d)\n", p.Username, p.ID.Value())
			return nil
		},
	}

	return cmd
}

// newConfigSetVillageCommand creates the config set-village subcommand
func newConfigSetVillageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-village",
		Short: "Set default village",
		Long: `Set the default village to use for commands.

Example:
  empire config set-village --village 0b8e6c1e-5d4c-4bb4-9e8e-0d7a4ef0b5a1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if villageRef == "" {
				return fmt.Errorf("--village flag is required")
			}

			a, closeFn, err := newApp()
			if err != nil {
				return err
			}
			defer closeFn()

			// Verify village exists in database
			resp, err := a.mediator.Send(context.Background(), &queries.GetVillageQuery{VillageID: villageRef})
			if err != nil {
				return err
			}
			v := resp.(*queries.GetVillageResponse).Village

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.SetDefaultVillage(v.ID); err != nil {
				return fmt.Errorf("failed to set default village: %w", err)
			}

			fmt.Printf("✓ Default village set to %s (%s)\n", v.Name, v.ID)
			return nil
		},
	}

	return cmd
}

// newConfigClearCommand creates the config clear subcommand
func newConfigClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear default player and village",
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.ClearDefaults(); err != nil {
				return fmt.Errorf("failed to clear defaults: %w", err)
			}

			fmt.Println("✓ Defaults cleared")
			return nil
		},
	}

	return cmd
}

// maskPassword hides the password component of a database URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(u.User.Username(), "****")
	}
	return u.String()
}
