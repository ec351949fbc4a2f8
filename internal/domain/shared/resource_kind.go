package shared

import (
	"fmt"
	"strings"
)

// ResourceKind identifies one of the village resources
type ResourceKind string

const (
	ResourceWood  ResourceKind = "WOOD"
	ResourceStone ResourceKind = "STONE"
	ResourceIron  ResourceKind = "IRON"
	ResourceFood  ResourceKind = "FOOD"
	ResourceGold  ResourceKind = "GOLD"
)

// AllResourceKinds returns every resource kind in display order
func AllResourceKinds() []ResourceKind {
	return []ResourceKind{
		ResourceWood,
		ResourceStone,
		ResourceIron,
		ResourceFood,
		ResourceGold,
	}
}

// String returns the string representation of the ResourceKind
func (k ResourceKind) String() string {
	return string(k)
}

// IsValid checks if the resource kind is known
func (k ResourceKind) IsValid() bool {
	switch k {
	case ResourceWood, ResourceStone, ResourceIron, ResourceFood, ResourceGold:
		return true
	default:
		return false
	}
}

// ParseResourceKind parses a string into a ResourceKind.
// Lower-case names from catalog files are accepted.
func ParseResourceKind(s string) (ResourceKind, error) {
	k := ResourceKind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("invalid resource kind: %s", s)
	}
	return k, nil
}
