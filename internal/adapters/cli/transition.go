package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/empire-go/internal/application/village/commands"
	"github.com/andrescamacho/empire-go/internal/application/village/queries"
)

// NewTransitionCommand creates the transition command with subcommands
func NewTransitionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transition",
		Short: "Inspect, cancel or complete in-progress upgrades and research",
		Long: `Inspect, cancel or complete in-progress upgrades and research.

Entities are referenced by ID or type (case-insensitive).

Examples:
  empire transition afford quarry
  empire transition complete woodcutter
  empire transition cancel forestry
  empire transition force woodcutter`,
	}

	cmd.AddCommand(newTransitionAffordCommand())
	cmd.AddCommand(newTransitionCompleteCommand())
	cmd.AddCommand(newTransitionCancelCommand())
	cmd.AddCommand(newTransitionForceCommand())

	return cmd
}

func newTransitionAffordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "afford <entity>",
		Short: "Check whether the next level of an entity is affordable now",
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

			response, err := a.mediator.Send(ctx, &queries.CheckAffordabilityQuery{
				VillageID: villageID,
				EntityID:  args[0],
			})
			if err != nil {
				return err
			}
			result := response.(*queries.CheckAffordabilityResponse)

			if result.Affordable {
				fmt.Printf("✓ Level %d is affordable\n", result.TargetLevel)
			} else {
				fmt.Printf("✗ Level %d is not affordable\n", result.TargetLevel)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "  Cost:\t%s\n", formatAmounts(result.Cost))
			if !result.Affordable {
				fmt.Fprintf(w, "  Missing:\t%s\n", formatAmounts(result.Deficiency))
			}
			w.Flush()
			return nil
		},
	}
}

func newTransitionCompleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <entity>",
		Short: "Complete an upgrade or research if its deadline has passed",
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

			response, err := a.mediator.Send(ctx, &commands.CompleteIfDueCommand{
				VillageID: villageID,
				EntityID:  args[0],
			})
			if err != nil {
				return err
			}
			printCompletion(response.(*commands.CompletionResponse))
			return nil
		},
	}
}

func newTransitionCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <entity>",
		Short: "Cancel an in-progress upgrade or research with a partial refund",
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

			response, err := a.mediator.Send(ctx, &commands.CancelTransitionCommand{
				VillageID: villageID,
				EntityID:  args[0],
			})
			if err != nil {
				return err
			}
			result := response.(*commands.CancelTransitionResponse)

			fmt.Println("✓ Cancelled")
			fmt.Printf("  Refunded:  %s\n", formatAmounts(result.Refund))
			if len(result.Discarded) > 0 {
				fmt.Printf("  Discarded: %s (storage full)\n", formatAmounts(result.Discarded))
			}
			return nil
		},
	}
}

func newTransitionForceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "force <entity>",
		Short: "Complete an in-progress transition immediately (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := newApp()
			if err != nil {
				return err
			}
			defer closeFn()

			if !a.cfg.Server.EnableAdmin {
				return fmt.Errorf("force completion requires server.enable_admin in the config")
			}

			ctx := context.Background()
			villageID, err := resolveVillage(ctx, a)
			if err != nil {
				return err
			}

			response, err := a.mediator.Send(ctx, &commands.ForceCompleteCommand{
				VillageID: villageID,
				EntityID:  args[0],
			})
			if err != nil {
				return err
			}
			printCompletion(response.(*commands.CompletionResponse))
			return nil
		},
	}
}

func printCompletion(result *commands.CompletionResponse) {
	c := result.Completion
	switch c.Status {
	case "COMPLETED":
		fmt.Printf("✓ Completed, now level %d\n", c.Level)
	case "PENDING":
		fmt.Printf("… Still in progress, %s remaining\n", formatSeconds(c.RemainingSeconds))
	default:
		fmt.Printf("Nothing in progress (level %d)\n", c.Level)
	}
}
