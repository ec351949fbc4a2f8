package cli

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	playerApp "github.com/andrescamacho/empire-go/internal/application/player"
	"github.com/andrescamacho/empire-go/internal/application/common"
	"github.com/andrescamacho/empire-go/internal/application/village/queries"
	"github.com/andrescamacho/empire-go/internal/domain/player"
	"github.com/andrescamacho/empire-go/internal/infrastructure/config"
)

// loadUserConfig returns the stored CLI defaults, or an empty config
func loadUserConfig() *config.UserConfig {
	handler, err := config.NewUserConfigHandler()
	if err != nil {
		return &config.UserConfig{}
	}
	userCfg, err := handler.Load()
	if err != nil {
		return &config.UserConfig{}
	}
	return userCfg
}

// resolvePlayer resolves the acting player from flags or defaults
// Priority: --player-id > --player > user config default > the only registered player
func resolvePlayer(ctx context.Context, a *app) (*player.Player, error) {
	opts := &playerApp.PlayerSelectionOptions{
		UsernameFlag: playerName,
		UserConfig:   loadUserConfig(),
	}
	if playerID > 0 {
		opts.PlayerIDFlag = &playerID
	}
	return playerApp.NewPlayerResolver(a.playerRepo).ResolvePlayer(ctx, opts)
}

// resolveVillage resolves the target village ID
// Priority: --village > user config default > the player's only village
func resolveVillage(ctx context.Context, a *app) (string, error) {
	if villageRef != "" {
		return villageRef, nil
	}
	if userCfg := loadUserConfig(); userCfg.DefaultVillageID != "" {
		return userCfg.DefaultVillageID, nil
	}

	p, err := resolvePlayer(ctx, a)
	if err != nil {
		return "", fmt.Errorf("no village specified: %w", err)
	}
	resp, err := a.mediator.Send(ctx, &queries.ListVillagesQuery{PlayerID: p.ID.Value()})
	if err != nil {
		return "", err
	}
	villages := resp.(*queries.ListVillagesResponse).Villages
	if len(villages) == 1 {
		return villages[0].ID, nil
	}
	return "", fmt.Errorf("no village specified: use --village or set a default with 'empire config set-village'")
}

// describeFailure renders an error with its category for the terminal
func describeFailure(err error) string {
	desc := common.DescribeError(err)
	if desc.Category == common.CategoryInternal {
		return fmt.Sprintf("Error: %v", err)
	}
	msg := fmt.Sprintf("Error [%s]: %s", desc.Category, desc.Message)
	if desc.Retryable {
		msg += " (retry later)"
	}
	return msg
}

// formatAmounts renders a resource map as "WOOD=120 STONE=40" in stable order
func formatAmounts(amounts map[string]float64) string {
	if len(amounts) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(amounts))
	for k := range amounts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, formatQuantity(amounts[k])))
	}
	return strings.Join(parts, " ")
}

// formatQuantity shows whole numbers without decimals and others with one
func formatQuantity(q float64) string {
	if math.Abs(q-math.Round(q)) < 1e-9 {
		return fmt.Sprintf("%.0f", q)
	}
	return fmt.Sprintf("%.1f", q)
}

func formatSeconds(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	total := int(math.Ceil(seconds))
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
