package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/empire-go/internal/application/village/commands"
	"github.com/andrescamacho/empire-go/internal/application/village/dtos"
	"github.com/andrescamacho/empire-go/internal/application/village/queries"
)

// NewVillageCommand creates the village command with subcommands
func NewVillageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "village",
		Short: "Found and inspect villages",
		Long: `Found and inspect villages.

Reading a village brings it up to date: produced resources are credited
and finished upgrades or research are applied.

Examples:
  empire village found --name Riverside
  empire village list
  empire village show --tree
  empire village collect`,
	}

	cmd.AddCommand(newVillageFoundCommand())
	cmd.AddCommand(newVillageListCommand())
	cmd.AddCommand(newVillageShowCommand())
	cmd.AddCommand(newVillageCollectCommand())

	return cmd
}

func newVillageFoundCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "found",
		Short: "Found a new village for the current player",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name flag is required")
			}

			a, closeFn, err := newApp()
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := context.Background()
			p, err := resolvePlayer(ctx, a)
			if err != nil {
				return err
			}

			response, err := a.mediator.Send(ctx, &commands.FoundVillageCommand{
				PlayerID: p.ID.Value(),
				Name:     name,
			})
			if err != nil {
				return err
			}
			v := response.(*commands.FoundVillageResponse).Village

			fmt.Println("✓ Village founded")
			fmt.Printf("  Name:       %s\n", v.Name)
			fmt.Printf("  Village ID: %s\n", v.ID)
			fmt.Printf("\nSet as default village with: empire config set-village %s\n", v.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Village name (required)")
	return cmd
}

func newVillageListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the current player's villages",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := newApp()
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := context.Background()
			p, err := resolvePlayer(ctx, a)
			if err != nil {
				return err
			}

			response, err := a.mediator.Send(ctx, &queries.ListVillagesQuery{PlayerID: p.ID.Value()})
			if err != nil {
				return err
			}
			villages := response.(*queries.ListVillagesResponse).Villages

			if len(villages) == 0 {
				fmt.Printf("%s has no villages.\n", p.Username)
				fmt.Println("\nFound one with: empire village found --name <name>")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tBUSY\tFOUNDED")
			fmt.Fprintln(w, "--\t----\t----\t-------")
			for _, v := range villages {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", v.ID, v.Name, busyCount(v), v.CreatedAt.Format("2006-01-02"))
			}
			w.Flush()
			return nil
		},
	}
}

func newVillageShowCommand() *cobra.Command {
	var asTree bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show resources, buildings and research of a village",
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

			response, err := a.mediator.Send(ctx, &queries.GetVillageQuery{VillageID: villageID})
			if err != nil {
				return err
			}
			v := response.(*queries.GetVillageResponse).Village

			if asTree {
				fmt.Print(NewTreeFormatter(isTerminal(), false).FormatTree(VillageTree(v)))
				return nil
			}
			printVillage(v)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asTree, "tree", false, "Render the village as a tree")
	return cmd
}

func newVillageCollectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Settle production and persist the village",
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

			response, err := a.mediator.Send(ctx, &commands.CollectResourcesCommand{VillageID: villageID})
			if err != nil {
				return err
			}

			fmt.Println("✓ Resources collected")
			printResources(response.(*commands.CollectResourcesResponse).Village)
			return nil
		},
	}
}

func printVillage(v *dtos.VillageDTO) {
	fmt.Printf("Village: %s (%s)\n", v.Name, v.ID)
	fmt.Printf("Owner:   %d   Version: %d\n\n", v.OwnerID, v.Version)

	printResources(v)

	fmt.Println("\nBuildings")
	printUpgradables(v.Buildings)

	fmt.Println("\nResearch")
	printUpgradables(v.Research)
}

func printResources(v *dtos.VillageDTO) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RESOURCE\tQUANTITY\tCAPACITY\tRATE/H")
	for _, r := range v.Ledger.Resources {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Kind, formatQuantity(r.Quantity), formatQuantity(r.Capacity), formatQuantity(r.RatePerHour))
	}
	w.Flush()
}

func printUpgradables(items []dtos.UpgradableDTO) {
	if len(items) == 0 {
		fmt.Println("  (none)")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tLEVEL\tSTATE\tREMAINING\tNEXT COST")
	for _, u := range items {
		nextCost := formatAmounts(u.NextCost)
		if u.Level >= u.MaxLevel {
			nextCost = "max level"
		}
		fmt.Fprintf(w, "%s\t%d/%d\t%s\t%s\t%s\n", u.Type, u.Level, u.MaxLevel, u.State, formatSeconds(u.RemainingSeconds), nextCost)
	}
	w.Flush()
}

func busyCount(v *dtos.VillageDTO) int {
	count := 0
	for _, u := range append(append([]dtos.UpgradableDTO{}, v.Buildings...), v.Research...) {
		if u.State == "IN_PROGRESS" {
			count++
		}
	}
	return count
}

func isTerminal() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
