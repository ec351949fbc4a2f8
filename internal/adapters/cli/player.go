package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	playerCommands "github.com/andrescamacho/empire-go/internal/application/player/commands"
	playerQueries "github.com/andrescamacho/empire-go/internal/application/player/queries"
)

// NewPlayerCommand creates the player command with subcommands
func NewPlayerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Manage players",
		Long: `Manage players in the game database.

Players own villages. Register a player before founding a village.

Examples:
  empire player register --username alice
  empire player list
  empire player info --player alice`,
	}

	// Add subcommands
	cmd.AddCommand(newPlayerRegisterCommand())
	cmd.AddCommand(newPlayerListCommand())
	cmd.AddCommand(newPlayerInfoCommand())

	return cmd
}

// newPlayerRegisterCommand creates the player register subcommand
func newPlayerRegisterCommand() *cobra.Command {
	var (
		username    string
		displayName string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new player",
		Long: `Register a new player.

Example:
  empire player register --username alice --display-name "Alice of Riverside"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("--username flag is required")
			}

			a, closeFn, err := newApp()
			if err != nil {
				return err
			}
			defer closeFn()

			metadata := make(map[string]interface{})
			if displayName != "" {
				metadata["display_name"] = displayName
			}

			response, err := a.mediator.Send(context.Background(), &playerCommands.RegisterPlayerCommand{
				Username: username,
				Metadata: metadata,
			})
			if err != nil {
				return err
			}

			result := response.(*playerCommands.RegisterPlayerResponse)

			fmt.Println("✓ Player registered successfully")
			fmt.Printf("  Username:  %s\n", result.Player.Username)
			fmt.Printf("  Player ID: %d\n", result.Player.ID.Value())
			fmt.Printf("\nSet as default player with: empire config set-player --player-id %d\n", result.Player.ID.Value())

			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&displayName, "display-name", "", "Display name (optional)")

	return cmd
}

// newPlayerListCommand creates the player list subcommand
func newPlayerListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all registered players",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := newApp()
			if err != nil {
				return err
			}
			defer closeFn()

			response, err := a.mediator.Send(context.Background(), &playerQueries.ListPlayersQuery{})
			if err != nil {
				return err
			}
			players := response.(*playerQueries.ListPlayersResponse).Players

			if len(players) == 0 {
				fmt.Println("No players registered.")
				fmt.Println("\nRegister a player with: empire player register --username <name>")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSERNAME\tCREATED")
			fmt.Fprintln(w, "--\t--------\t-------")
			for _, p := range players {
				fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID.Value(), p.Username, p.CreatedAt.Format("2006-01-02"))
			}
			w.Flush()

			return nil
		},
	}

	return cmd
}

// newPlayerInfoCommand creates the player info subcommand
func newPlayerInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show detailed player information",
		Long: `Show detailed information about a player.

Examples:
  empire player info --player-id 1
  empire player info --player alice`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := newApp()
			if err != nil {
				return err
			}
			defer closeFn()

			p, err := resolvePlayer(context.Background(), a)
			if err != nil {
				return err
			}

			fmt.Printf("Player Information\n")
			fmt.Printf("==================\n\n")
			fmt.Printf("Player ID:     %d\n", p.ID.Value())
			fmt.Printf("Username:      %s\n", p.Username)
			fmt.Printf("Registered:    %s\n", p.CreatedAt.Format("2006-01-02 15:04:05"))
			if name, ok := p.Metadata["display_name"].(string); ok {
				fmt.Printf("Display Name:  %s\n", name)
			}

			return nil
		},
	}

	return cmd
}
