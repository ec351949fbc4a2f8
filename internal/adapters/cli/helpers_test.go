package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/empire-go/internal/application/mediator"
	"github.com/andrescamacho/empire-go/internal/application/village/dtos"
	"github.com/andrescamacho/empire-go/internal/application/village/queries"
	"github.com/andrescamacho/empire-go/internal/domain/player"
	"github.com/andrescamacho/empire-go/test/helpers"
)

// isolateFlags points the user config at an empty home and restores the globals
func isolateFlags(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	savedID, savedName, savedRef := playerID, playerName, villageRef
	t.Cleanup(func() {
		playerID, playerName, villageRef = savedID, savedName, savedRef
	})
	playerID, playerName, villageRef = 0, "", ""
}

func newTestApp(t *testing.T, villages ...string) (*app, *helpers.MockMediator) {
	t.Helper()
	repo := helpers.NewMockPlayerRepository()
	p, err := player.NewPlayer("aelith", time.Now())
	require.NoError(t, err)
	repo.AddPlayer(p)

	m := helpers.NewMockMediator()
	m.SetSendFunc(func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		resp := &queries.ListVillagesResponse{}
		for _, id := range villages {
			resp.Villages = append(resp.Villages, &dtos.VillageDTO{ID: id})
		}
		return resp, nil
	})
	return &app{playerRepo: repo, mediator: m}, m
}

func TestResolveVillage_FlagWins(t *testing.T) {
	isolateFlags(t)
	villageRef = "from-flag"
	a, m := newTestApp(t, "only")

	id, err := resolveVillage(context.Background(), a)

	require.NoError(t, err)
	assert.Equal(t, "from-flag", id)
	assert.Empty(t, m.GetCallLog())
}

func TestResolveVillage_OnlyVillageOfOnlyPlayer(t *testing.T) {
	// Arrange
	isolateFlags(t)
	a, m := newTestApp(t, "v-1")

	// Act
	id, err := resolveVillage(context.Background(), a)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "v-1", id)
	assert.Equal(t, []string{"ListVillagesQuery"}, m.GetCallLog())
}

func TestResolveVillage_Ambiguous(t *testing.T) {
	isolateFlags(t)
	a, _ := newTestApp(t, "v-1", "v-2")

	_, err := resolveVillage(context.Background(), a)

	assert.ErrorContains(t, err, "no village specified")
}
