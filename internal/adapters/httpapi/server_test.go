package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/empire-go/internal/adapters/events"
	"github.com/andrescamacho/empire-go/internal/adapters/httpapi"
	"github.com/andrescamacho/empire-go/internal/application/mediator"
	"github.com/andrescamacho/empire-go/internal/application/setup"
	"github.com/andrescamacho/empire-go/internal/application/village/dtos"
	"github.com/andrescamacho/empire-go/internal/application/village/queries"
	"github.com/andrescamacho/empire-go/internal/application/village/services"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
	"github.com/andrescamacho/empire-go/internal/domain/village"
	"github.com/andrescamacho/empire-go/internal/infrastructure/config"
	"github.com/andrescamacho/empire-go/test/helpers"
)

type apiFixture struct {
	handler http.Handler
	clock   *shared.MockClock
	bus     *events.VillageEventBus
}

func newAPIFixture(t *testing.T, serverCfg config.ServerConfig) *apiFixture {
	t.Helper()

	clock := shared.NewMockClock(helpers.FixtureEpoch)
	bus := events.NewVillageEventBus(16)
	orchestrator := services.NewOrchestrator(
		helpers.NewMockVillageRepository(),
		helpers.NewTestCatalog(),
		bus,
		services.DefaultPolicy(),
	)
	registry := setup.NewHandlerRegistry(orchestrator, helpers.NewMockPlayerRepository(), clock)
	m, err := registry.CreateConfiguredMediator()
	require.NoError(t, err)

	server := httpapi.NewServer(m, bus, serverCfg, nil)
	return &apiFixture{handler: server.Handler(), clock: clock, bus: bus}
}

func adminConfig() config.ServerConfig {
	return config.ServerConfig{EnableAdmin: true}
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type villageBody struct {
	Village dtos.VillageDTO `json:"village"`
}

type errorBody struct {
	Error struct {
		Category  string `json:"category"`
		Message   string `json:"message"`
		Retryable bool   `json:"retryable"`
	} `json:"error"`
}

func quantity(v dtos.VillageDTO, kind string) float64 {
	for _, r := range v.Ledger.Resources {
		if r.Kind == kind {
			return r.Quantity
		}
	}
	return 0
}

func building(v dtos.VillageDTO, entityType string) dtos.UpgradableDTO {
	for _, b := range v.Buildings {
		if b.Type == entityType {
			return b
		}
	}
	return dtos.UpgradableDTO{}
}

// foundVillage registers a player and founds a village, returning its id
func (f *apiFixture) foundVillage(t *testing.T) string {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/api/players", map[string]interface{}{"username": "alice"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	playerID := decode[struct {
		ID int `json:"id"`
	}](t, rec).ID

	rec = f.do(t, http.MethodPost, "/api/villages", map[string]interface{}{"player_id": playerID, "name": "Riverside"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[villageBody](t, rec).Village.ID
}

func TestServer_UpgradeLifecycle(t *testing.T) {
	// Arrange
	f := newAPIFixture(t, adminConfig())
	villageID := f.foundVillage(t)
	base := "/api/villages/" + villageID

	// 30 minutes at 60 WOOD/h
	f.clock.Advance(30 * time.Minute)
	rec := f.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 130.0, quantity(decode[villageBody](t, rec).Village, "WOOD"), 1e-6)

	// Act - start upgrade to level 2 (120 WOOD)
	rec = f.do(t, http.MethodPost, base+"/buildings/woodcutter/upgrade", nil)

	// Assert
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	started := decode[struct {
		Village  dtos.VillageDTO    `json:"village"`
		Building dtos.UpgradableDTO `json:"building"`
	}](t, rec)
	assert.InDelta(t, 10.0, quantity(started.Village, "WOOD"), 1e-6)
	assert.Equal(t, "IN_PROGRESS", started.Building.State)
	assert.Equal(t, 1, started.Building.Level)

	// Completing early reports PENDING
	f.clock.Advance(5 * time.Minute)
	rec = f.do(t, http.MethodPost, base+"/entities/woodcutter/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pending := decode[struct {
		Completion dtos.CompletionDTO `json:"completion"`
	}](t, rec)
	assert.Equal(t, "PENDING", pending.Completion.Status)
	assert.InDelta(t, 300.0, pending.Completion.RemainingSeconds, 1e-6)

	// Past the deadline the level increments exactly once
	f.clock.Advance(5 * time.Minute)
	rec = f.do(t, http.MethodPost, base+"/entities/woodcutter/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	completed := decode[struct {
		Village    dtos.VillageDTO    `json:"village"`
		Completion dtos.CompletionDTO `json:"completion"`
	}](t, rec)
	assert.Equal(t, "COMPLETED", completed.Completion.Status)
	assert.Equal(t, 2, completed.Completion.Level)
	assert.Equal(t, 2, building(completed.Village, "WOODCUTTER").Level)

	rec = f.do(t, http.MethodPost, base+"/entities/woodcutter/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	again := decode[struct {
		Completion dtos.CompletionDTO `json:"completion"`
	}](t, rec)
	assert.Equal(t, "IDLE", again.Completion.Status)
	assert.Equal(t, 2, again.Completion.Level)
}

func TestServer_ErrorCategories(t *testing.T) {
	f := newAPIFixture(t, adminConfig())
	villageID := f.foundVillage(t)
	base := "/api/villages/" + villageID

	tests := []struct {
		name     string
		method   string
		path     string
		body     interface{}
		status   int
		category string
	}{
		{"malformed village id", http.MethodGet, "/api/villages/not-a-uuid", nil, http.StatusBadRequest, "VALIDATION"},
		{"unknown village", http.MethodGet, "/api/villages/7f1c9a52-0d55-4a1d-9f43-2d8f4b0c1e77", nil, http.StatusNotFound, "NOT_FOUND"},
		{"unknown building", http.MethodPost, base + "/buildings/tower/upgrade", nil, http.StatusNotFound, "NOT_FOUND"},
		{"locked building", http.MethodPost, base + "/buildings/barracks/upgrade", nil, http.StatusUnprocessableEntity, "PREREQUISITE_NOT_MET"},
		{"insufficient resources", http.MethodPost, base + "/buildings/woodcutter/upgrade", nil, http.StatusUnprocessableEntity, "INSUFFICIENT_RESOURCES"},
		{"cancel idle entity", http.MethodPost, base + "/entities/quarry/cancel", nil, http.StatusConflict, "INVALID_TRANSITION"},
		{"unknown player", http.MethodPost, "/api/villages", map[string]interface{}{"player_id": 99, "name": "Ghost"}, http.StatusNotFound, "NOT_FOUND"},
		{"unknown body field", http.MethodPost, "/api/players", map[string]interface{}{"nickname": "x"}, http.StatusBadRequest, "VALIDATION"},
		{"missing player filter", http.MethodGet, "/api/villages", nil, http.StatusBadRequest, "VALIDATION"},
		{"missing username", http.MethodPost, "/api/players", map[string]interface{}{}, http.StatusBadRequest, "VALIDATION"},
		{"non-positive player id", http.MethodPost, "/api/villages", map[string]interface{}{"player_id": 0, "name": "Nowhere"}, http.StatusBadRequest, "VALIDATION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.category, decode[errorBody](t, rec).Error.Category)
		})
	}
}

func TestServer_ResearchExclusivityAndCancel(t *testing.T) {
	// Arrange
	f := newAPIFixture(t, adminConfig())
	villageID := f.foundVillage(t)
	base := "/api/villages/" + villageID

	// Act - first research line starts
	rec := f.do(t, http.MethodPost, base+"/research/forestry/start", nil)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	// Assert - a second line is refused while the first runs
	rec = f.do(t, http.MethodPost, base+"/research/storage/start", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ANOTHER_RESEARCH_IN_PROGRESS", decode[errorBody](t, rec).Error.Category)

	// Cancelling refunds half of the 40 WOOD paid
	rec = f.do(t, http.MethodPost, base+"/entities/forestry/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cancelled := decode[struct {
		Village dtos.VillageDTO    `json:"village"`
		Refund  map[string]float64 `json:"refund"`
	}](t, rec)
	assert.InDelta(t, 20.0, cancelled.Refund["WOOD"], 1e-9)
	assert.InDelta(t, 80.0, quantity(cancelled.Village, "WOOD"), 1e-9)

	rec = f.do(t, http.MethodPost, base+"/research/storage/start", nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestServer_Affordability(t *testing.T) {
	f := newAPIFixture(t, adminConfig())
	villageID := f.foundVillage(t)

	rec := f.do(t, http.MethodGet, "/api/villages/"+villageID+"/entities/woodcutter/affordability", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		TargetLevel int                `json:"target_level"`
		Affordable  bool               `json:"affordable"`
		Cost        map[string]float64 `json:"cost"`
		Deficiency  map[string]float64 `json:"deficiency"`
	}](t, rec)
	assert.Equal(t, 2, body.TargetLevel)
	assert.False(t, body.Affordable)
	assert.Equal(t, 120.0, body.Cost["WOOD"])
	assert.InDelta(t, 20.0, body.Deficiency["WOOD"], 1e-9)
}

func TestServer_AdminRoutes(t *testing.T) {
	t.Run("grant clamps to capacity", func(t *testing.T) {
		f := newAPIFixture(t, adminConfig())
		villageID := f.foundVillage(t)

		rec := f.do(t, http.MethodPost, "/admin/villages/"+villageID+"/grant",
			map[string]interface{}{"amounts": map[string]float64{"wood": 950}})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decode[struct {
			Village   dtos.VillageDTO    `json:"village"`
			Discarded map[string]float64 `json:"discarded"`
		}](t, rec)
		assert.Equal(t, 1000.0, quantity(body.Village, "WOOD"))
		assert.InDelta(t, 50.0, body.Discarded["WOOD"], 1e-9)
	})

	t.Run("force complete", func(t *testing.T) {
		f := newAPIFixture(t, adminConfig())
		villageID := f.foundVillage(t)
		rec := f.do(t, http.MethodPost, "/api/villages/"+villageID+"/buildings/quarry/upgrade", nil)
		require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

		rec = f.do(t, http.MethodPost, "/admin/villages/"+villageID+"/entities/quarry/force-complete", nil)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decode[struct {
			Completion dtos.CompletionDTO `json:"completion"`
		}](t, rec)
		assert.Equal(t, "COMPLETED", body.Completion.Status)
		assert.Equal(t, 1, body.Completion.Level)
	})

	t.Run("disabled without admin flag", func(t *testing.T) {
		f := newAPIFixture(t, config.ServerConfig{})
		villageID := f.foundVillage(t)

		rec := f.do(t, http.MethodPost, "/admin/villages/"+villageID+"/grant",
			map[string]interface{}{"amounts": map[string]float64{"wood": 1}})

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestServer_RateLimit(t *testing.T) {
	cfg := config.ServerConfig{RateLimit: config.RateLimitConfig{Requests: 0.001, Burst: 2}}
	f := newAPIFixture(t, cfg)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/players", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/players", nil).Code)

	rec := f.do(t, http.MethodGet, "/api/players", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.True(t, decode[errorBody](t, rec).Error.Retryable)

	// health checks are never limited
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz", nil).Code)
}

func TestServer_EventStream(t *testing.T) {
	// Arrange
	f := newAPIFixture(t, adminConfig())
	villageID := f.foundVillage(t)
	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/villages/" + villageID + "/events"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	var snapshot struct {
		Kind    string          `json:"kind"`
		Village dtos.VillageDTO `json:"village"`
	}
	require.NoError(t, wsjson.Read(ctx, conn, &snapshot))
	assert.Equal(t, "snapshot", snapshot.Kind)
	assert.Equal(t, villageID, snapshot.Village.ID)
	health := decode[struct {
		EventSubscribers int `json:"event_subscribers"`
	}](t, f.do(t, http.MethodGet, "/healthz", nil))
	assert.Equal(t, 1, health.EventSubscribers)

	// Act
	rec := f.do(t, http.MethodPost, "/api/villages/"+villageID+"/buildings/quarry/upgrade", nil)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	// Assert
	var frame struct {
		Kind  string        `json:"kind"`
		Event dtos.EventDTO `json:"event"`
	}
	require.NoError(t, wsjson.Read(ctx, conn, &frame))
	assert.Equal(t, "event", frame.Kind)
	assert.Equal(t, "UPGRADE_STARTED", frame.Event.Type)
	assert.Equal(t, villageID, frame.Event.VillageID)
	assert.Equal(t, 50.0, frame.Event.Amounts["STONE"])

	conn.Close(websocket.StatusNormalClosure, "")
}

func TestServer_EventStream_DeliversEventCommittedDuringSnapshot(t *testing.T) {
	// Arrange - a completion lands while the snapshot is being read
	bus := events.NewVillageEventBus(4)
	villageID := village.NewVillageID()
	m := helpers.NewMockMediator()
	m.SetSendFunc(func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		bus.Publish(village.Event{
			Type:       village.EventUpgradeCompleted,
			VillageID:  villageID,
			EntityType: "WOODCUTTER",
			Level:      2,
			OccurredAt: helpers.FixtureEpoch,
		})
		return &queries.GetVillageResponse{Village: &dtos.VillageDTO{ID: villageID.String()}}, nil
	})
	srv := httptest.NewServer(httpapi.NewServer(m, bus, config.ServerConfig{}, nil).Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Act
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/villages/" + villageID.String() + "/events"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	// Assert
	var snapshot struct {
		Kind string `json:"kind"`
	}
	require.NoError(t, wsjson.Read(ctx, conn, &snapshot))
	assert.Equal(t, "snapshot", snapshot.Kind)

	var frame struct {
		Kind  string        `json:"kind"`
		Event dtos.EventDTO `json:"event"`
	}
	require.NoError(t, wsjson.Read(ctx, conn, &frame))
	assert.Equal(t, "event", frame.Kind)
	assert.Equal(t, "UPGRADE_COMPLETED", frame.Event.Type)
	assert.Equal(t, 2, frame.Event.Level)

	conn.Close(websocket.StatusNormalClosure, "")
}
