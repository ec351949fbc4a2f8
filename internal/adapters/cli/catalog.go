package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/empire-go/internal/domain/catalog"
	"github.com/andrescamacho/empire-go/internal/domain/resources"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

// NewCatalogCommand creates the catalog command with subcommands
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the building and research catalog",
		Long: `Inspect the building and research catalog in use.

The catalog is loaded from game.catalog_path, or the built-in default
when no path is configured.

Examples:
  empire catalog show
  empire catalog show --entity woodcutter`,
	}

	cmd.AddCommand(newCatalogShowCommand())
	return cmd
}

func newCatalogShowCommand() *cobra.Command {
	var entity string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Render the catalog as a tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := newApp()
			if err != nil {
				return err
			}
			defer closeFn()

			root := CatalogTree(a.catalog)
			if entity != "" {
				spec, ok := a.catalog.Spec(catalog.EntityType(strings.ToUpper(entity)))
				if !ok {
					return shared.NewNotFoundError("catalog entry", entity)
				}
				root = entityNode(a.catalog, spec)
			}

			fmt.Print(NewTreeFormatter(isTerminal(), false).FormatTree(root))
			return nil
		},
	}

	cmd.Flags().StringVar(&entity, "entity", "", "Show a single building or research type")
	return cmd
}

// CatalogTree builds a tree of every building and research line with its levels
func CatalogTree(cat catalog.Catalog) *TreeNode {
	root := &TreeNode{Label: "Catalog"}

	buildings := &TreeNode{Label: "Buildings"}
	for _, spec := range cat.Buildings() {
		buildings.Children = append(buildings.Children, entityNode(cat, spec))
	}

	research := &TreeNode{Label: "Research"}
	for _, spec := range cat.Research() {
		research.Children = append(research.Children, entityNode(cat, spec))
	}

	root.Children = []*TreeNode{buildings, research}
	return root
}

func entityNode(cat catalog.Catalog, spec catalog.EntitySpec) *TreeNode {
	node := &TreeNode{
		Label:  fmt.Sprintf("%s (%s)", spec.Type, spec.Name),
		Status: StatusIdle,
		Detail: fmt.Sprintf("levels %d-%d", spec.StartLevel, spec.MaxLevel),
	}
	if source, level, locked := cat.UnlockedBy(spec.Type); locked {
		node.Status = StatusLocked
		node.Detail += fmt.Sprintf(", requires %s lvl %d", source, level)
	}

	for i, level := range spec.Levels {
		number := i + 1
		levelNode := &TreeNode{
			Label:  fmt.Sprintf("lvl %d", number),
			Detail: fmt.Sprintf("cost %s, %s", formatCost(level.Cost), formatSeconds(float64(level.DurationSeconds))),
		}
		if number <= spec.StartLevel {
			levelNode.Status = StatusDone
			levelNode.Detail = "starting level"
		}
		if len(level.Production) > 0 {
			levelNode.Children = append(levelNode.Children, &TreeNode{Label: "produces " + formatKindAmounts(level.Production) + " /h"})
		}
		if len(level.Capacity) > 0 {
			levelNode.Children = append(levelNode.Children, &TreeNode{Label: "stores +" + formatKindAmounts(level.Capacity)})
		}
		for _, effect := range level.Effects {
			levelNode.Children = append(levelNode.Children, &TreeNode{Label: describeEffect(effect)})
		}
		node.Children = append(node.Children, levelNode)
	}
	return node
}

func describeEffect(effect catalog.Effect) string {
	switch e := effect.(type) {
	case catalog.ProductionBuff:
		return fmt.Sprintf("%s production +%s%%", e.Resource, formatQuantity(e.Percent))
	case catalog.CapacityBuff:
		return fmt.Sprintf("%s capacity +%s", e.Resource, formatQuantity(e.Amount))
	case catalog.Unlock:
		return fmt.Sprintf("unlocks %s", e.Target)
	default:
		return string(effect.Kind())
	}
}

func formatCost(cost resources.CostVector) string {
	return formatKindAmounts(cost.Map())
}

func formatKindAmounts(amounts map[shared.ResourceKind]float64) string {
	byName := make(map[string]float64, len(amounts))
	for kind, amount := range amounts {
		byName[kind.String()] = amount
	}
	return formatAmounts(byName)
}
