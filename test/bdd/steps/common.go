package steps

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/andrescamacho/empire-go/internal/application/common"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
	"github.com/andrescamacho/empire-go/test/helpers"
)

const quantityTolerance = 1e-6

// epoch is the instant every scenario starts from; step offsets are seconds after it
var epoch = helpers.FixtureEpoch

func secondsAfterEpoch(seconds int) time.Time {
	return epoch.Add(time.Duration(seconds) * time.Second)
}

// parseAmounts reads "WOOD=80,STONE=20". An empty string is an empty map.
func parseAmounts(spec string) (map[shared.ResourceKind]float64, error) {
	amounts := make(map[shared.ResourceKind]float64)
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return amounts, nil
	}

	for _, part := range strings.Split(spec, ",") {
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("malformed amount %q, expected KIND=VALUE", part)
		}
		kind, err := shared.ParseResourceKind(name)
		if err != nil {
			return nil, err
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed amount %q: %w", part, err)
		}
		amounts[kind] = amount
	}
	return amounts, nil
}

func formatAmounts(amounts map[shared.ResourceKind]float64) string {
	parts := make([]string, 0, len(amounts))
	for kind, amount := range amounts {
		parts = append(parts, fmt.Sprintf("%s=%g", kind, amount))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func sameAmounts(expected, actual map[shared.ResourceKind]float64) bool {
	if len(expected) != len(actual) {
		return false
	}
	for kind, want := range expected {
		got, ok := actual[kind]
		if !ok || !approximately(want, got) {
			return false
		}
	}
	return true
}

func approximately(expected, actual float64) bool {
	return math.Abs(expected-actual) <= quantityTolerance
}

// expectCategory checks that err maps to the given error category
func expectCategory(err error, category string) error {
	if err == nil {
		return fmt.Errorf("expected %s error, but the operation succeeded", category)
	}
	desc := common.DescribeError(err)
	if string(desc.Category) != category {
		return fmt.Errorf("expected %s error, got %s: %v", category, desc.Category, err)
	}
	return nil
}
