package player_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	playerApp "github.com/andrescamacho/empire-go/internal/application/player"
	"github.com/andrescamacho/empire-go/internal/domain/player"
	"github.com/andrescamacho/empire-go/internal/infrastructure/config"
	"github.com/andrescamacho/empire-go/test/helpers"
)

func seedPlayers(t *testing.T, names ...string) *helpers.MockPlayerRepository {
	t.Helper()
	repo := helpers.NewMockPlayerRepository()
	for _, name := range names {
		p, err := player.NewPlayer(name, time.Now())
		require.NoError(t, err)
		repo.AddPlayer(p)
	}
	return repo
}

func TestResolvePlayer_Priority(t *testing.T) {
	two := 2
	one := 1

	tests := []struct {
		name     string
		opts     *playerApp.PlayerSelectionOptions
		expected string
	}{
		{"id flag wins", &playerApp.PlayerSelectionOptions{PlayerIDFlag: &two, UsernameFlag: "aelith"}, "borin"},
		{"username flag", &playerApp.PlayerSelectionOptions{UsernameFlag: "aelith"}, "aelith"},
		{"config default", &playerApp.PlayerSelectionOptions{UserConfig: &config.UserConfig{DefaultPlayerID: &one}}, "aelith"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			resolver := playerApp.NewPlayerResolver(seedPlayers(t, "aelith", "borin"))

			// Act
			found, err := resolver.ResolvePlayer(context.Background(), tt.opts)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.expected, found.Username)
		})
	}
}

func TestResolvePlayer_AutoSelectsOnlyPlayer(t *testing.T) {
	resolver := playerApp.NewPlayerResolver(seedPlayers(t, "aelith"))

	found, err := resolver.ResolvePlayer(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, "aelith", found.Username)
}

func TestResolvePlayer_Ambiguous(t *testing.T) {
	resolver := playerApp.NewPlayerResolver(seedPlayers(t, "aelith", "borin"))

	_, err := resolver.ResolvePlayer(context.Background(), &playerApp.PlayerSelectionOptions{})

	assert.ErrorContains(t, err, "no player specified")
}

func TestResolvePlayer_UnknownFlags(t *testing.T) {
	resolver := playerApp.NewPlayerResolver(seedPlayers(t, "aelith"))
	missing := 42

	_, err := resolver.ResolvePlayer(context.Background(), &playerApp.PlayerSelectionOptions{PlayerIDFlag: &missing})
	assert.ErrorContains(t, err, "not found")

	_, err = resolver.ResolvePlayer(context.Background(), &playerApp.PlayerSelectionOptions{UsernameFlag: "nobody"})
	assert.ErrorContains(t, err, "not found")
}
