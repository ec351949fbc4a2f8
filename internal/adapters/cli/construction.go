package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/empire-go/internal/application/village/commands"
	"github.com/andrescamacho/empire-go/internal/application/village/dtos"
)

// NewBuildingCommand creates the building command with subcommands
func NewBuildingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "building",
		Short: "Upgrade village buildings",
		Long: `Upgrade village buildings.

A building is referenced by its ID or by its type (case-insensitive).
Each building can run one upgrade at a time; the cost is debited up front.

Examples:
  empire building upgrade woodcutter
  empire building upgrade WAREHOUSE --village <id>`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "upgrade <building>",
		Short: "Start upgrading a building to its next level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := newApp()
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := context.Background()
			villageID, err := resolveVillage(ctx, a)
			if err != nil {
				return err
			}

			response, err := a.mediator.Send(ctx, &commands.StartUpgradeCommand{
				VillageID:  villageID,
				BuildingID: args[0],
			})
			if err != nil {
				return err
			}

			result := response.(*commands.StartUpgradeResponse)
			printStarted("Upgrade", result.Building)
			return nil
		},
	})

	return cmd
}

// NewResearchCommand creates the research command with subcommands
func NewResearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "research",
		Short: "Start village research",
		Long: `Start village research.

Only one research line per village can be in progress at a time.

Examples:
  empire research start forestry`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "start <research>",
		Short: "Start researching the next level of a research line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := newApp()
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := context.Background()
			villageID, err := resolveVillage(ctx, a)
			if err != nil {
				return err
			}

			response, err := a.mediator.Send(ctx, &commands.StartResearchCommand{
				VillageID:  villageID,
				ResearchID: args[0],
			})
			if err != nil {
				return err
			}

			result := response.(*commands.StartResearchResponse)
			printStarted("Research", result.Research)
			return nil
		},
	})

	return cmd
}

func printStarted(kind string, u dtos.UpgradableDTO) {
	fmt.Printf("✓ %s started: %s → level %d\n", kind, u.Type, u.Level+1)
	fmt.Printf("  Paid:      %s\n", formatAmounts(u.PaidCost))
	if u.Deadline != nil {
		fmt.Printf("  Completes: %s (in %s)\n", u.Deadline.Local().Format("2006-01-02 15:04:05"), formatSeconds(u.RemainingSeconds))
	}
}
