package cli

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/empire-go/internal/application/village/dtos"
)

// NodeStatus drives the icon and color of a tree node
type NodeStatus int

const (
	StatusNone NodeStatus = iota
	StatusIdle
	StatusActive
	StatusDone
	StatusLocked
)

// TreeNode is one line of a rendered tree
type TreeNode struct {
	Label    string
	Status   NodeStatus
	Detail   string
	Children []*TreeNode
}

// TreeFormatter renders villages and catalogs as indented trees
type TreeFormatter struct {
	useColors bool
	useEmojis bool
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(useColors, useEmojis bool) *TreeFormatter {
	return &TreeFormatter{
		useColors: useColors,
		useEmojis: useEmojis,
	}
}

// FormatTree renders a tree with visual indicators
func (f *TreeFormatter) FormatTree(root *TreeNode) string {
	if root == nil {
		return "(empty tree)"
	}

	var builder strings.Builder
	f.formatNode(&builder, root, "", true, true)
	return builder.String()
}

// formatNode recursively formats a node and its children
func (f *TreeFormatter) formatNode(builder *strings.Builder, node *TreeNode, prefix string, isLast bool, isRoot bool) {
	var linePrefix string
	if isRoot {
		linePrefix = ""
	} else if isLast {
		linePrefix = prefix + "└── "
	} else {
		linePrefix = prefix + "├── "
	}

	icon := f.getStatusIcon(node.Status)
	if icon != "" {
		icon += " "
	}

	detail := ""
	if node.Detail != "" {
		detail = fmt.Sprintf(" %s%s%s", f.getStatusColor(node.Status), node.Detail, f.colorReset())
	}

	builder.WriteString(fmt.Sprintf("%s%s%s%s\n", linePrefix, icon, node.Label, detail))

	if len(node.Children) > 0 {
		var childPrefix string
		if isRoot {
			childPrefix = ""
		} else if isLast {
			childPrefix = prefix + "    "
		} else {
			childPrefix = prefix + "│   "
		}

		for i, child := range node.Children {
			f.formatNode(builder, child, childPrefix, i == len(node.Children)-1, false)
		}
	}
}

// getStatusIcon returns a visual indicator for node status
func (f *TreeFormatter) getStatusIcon(status NodeStatus) string {
	if !f.useEmojis {
		switch status {
		case StatusIdle:
			return "[ ]"
		case StatusActive:
			return "[~]"
		case StatusDone:
			return "[✓]"
		case StatusLocked:
			return "[x]"
		}
		return ""
	}

	switch status {
	case StatusIdle:
		return "🏠"
	case StatusActive:
		return "⏳"
	case StatusDone:
		return "✅"
	case StatusLocked:
		return "🔒"
	}
	return ""
}

// getStatusColor returns ANSI color code for a status
func (f *TreeFormatter) getStatusColor(status NodeStatus) string {
	if !f.useColors {
		return ""
	}

	switch status {
	case StatusActive:
		return "\033[33m" // Yellow
	case StatusDone:
		return "\033[32m" // Green
	case StatusLocked:
		return "\033[31m" // Red
	default:
		return "\033[36m" // Cyan
	}
}

func (f *TreeFormatter) colorReset() string {
	if !f.useColors {
		return ""
	}
	return "\033[0m"
}

// VillageTree builds the overview tree of a village
func VillageTree(v *dtos.VillageDTO) *TreeNode {
	root := &TreeNode{
		Label:  fmt.Sprintf("%s (%s)", v.Name, v.ID),
		Detail: fmt.Sprintf("owner %d, version %d", v.OwnerID, v.Version),
	}

	resourcesNode := &TreeNode{Label: "Resources"}
	for _, r := range v.Ledger.Resources {
		resourcesNode.Children = append(resourcesNode.Children, &TreeNode{
			Label:  r.Kind,
			Detail: fmt.Sprintf("%s / %s (+%s/h)", formatQuantity(r.Quantity), formatQuantity(r.Capacity), formatQuantity(r.RatePerHour)),
		})
	}

	buildingsNode := &TreeNode{Label: "Buildings"}
	for _, b := range v.Buildings {
		buildingsNode.Children = append(buildingsNode.Children, upgradableNode(b))
	}

	researchNode := &TreeNode{Label: "Research"}
	for _, r := range v.Research {
		researchNode.Children = append(researchNode.Children, upgradableNode(r))
	}

	root.Children = []*TreeNode{resourcesNode, buildingsNode, researchNode}
	return root
}

func upgradableNode(u dtos.UpgradableDTO) *TreeNode {
	node := &TreeNode{
		Label:  fmt.Sprintf("%s lvl %d/%d", u.Type, u.Level, u.MaxLevel),
		Status: StatusIdle,
	}

	switch {
	case u.State == "IN_PROGRESS":
		node.Status = StatusActive
		node.Detail = fmt.Sprintf("→ lvl %d, %s left (%.0f%%)", u.Level+1, formatSeconds(u.RemainingSeconds), u.Progress*100)
	case u.Level >= u.MaxLevel:
		node.Status = StatusDone
		node.Detail = "max level"
	default:
		node.Detail = fmt.Sprintf("next: %s, %s", formatAmounts(u.NextCost), formatSeconds(float64(u.NextDurationSeconds)))
	}
	return node
}
