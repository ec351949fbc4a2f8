package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andrescamacho/empire-go/internal/domain/catalog"
	"github.com/andrescamacho/empire-go/internal/domain/resources"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
	"github.com/andrescamacho/empire-go/internal/domain/village"
	"gorm.io/gorm"
)

// GormVillageRepository implements VillageRepository using GORM.
//
// Per-village serialization uses optimistic versioning: Save updates the
// village row only WHERE version matches the loaded version, inside the same
// transaction as the building and research rows. A zero row count means
// another writer won and the caller must retry from load.
type GormVillageRepository struct {
	db *gorm.DB
}

// NewGormVillageRepository creates a new GORM village repository
func NewGormVillageRepository(db *gorm.DB) *GormVillageRepository {
	return &GormVillageRepository{db: db}
}

// Create persists a newly founded village at version 1
func (r *GormVillageRepository) Create(ctx context.Context, v *village.Village) error {
	model, buildings, research, err := r.villageToModels(v)
	if err != nil {
		return err
	}
	model.Version = 1
	model.UpdatedAt = model.CreatedAt

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to create village: %w", err)
		}
		if len(buildings) > 0 {
			if err := tx.Create(&buildings).Error; err != nil {
				return fmt.Errorf("failed to create buildings: %w", err)
			}
		}
		if len(research) > 0 {
			if err := tx.Create(&research).Error; err != nil {
				return fmt.Errorf("failed to create research: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	v.SetVersion(1)
	return nil
}

// LoadForUpdate loads a village for a read-modify-write cycle. The lock is
// optimistic: the version loaded here is checked again by Save.
func (r *GormVillageRepository) LoadForUpdate(ctx context.Context, id village.VillageID) (*village.Village, error) {
	return r.FindByID(ctx, id)
}

// Save writes back a loaded village. Returns *shared.ConflictError when the
// stored version no longer matches.
func (r *GormVillageRepository) Save(ctx context.Context, v *village.Village) error {
	model, buildings, research, err := r.villageToModels(v)
	if err != nil {
		return err
	}
	expected := v.Version()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&VillageModel{}).
			Where("id = ? AND version = ?", model.ID, expected).
			Updates(map[string]interface{}{
				"name":            model.Name,
				"version":         expected + 1,
				"quantities":      model.Quantities,
				"capacities":      model.Capacities,
				"rates":           model.Rates,
				"last_settled_at": model.LastSettledAt,
				"updated_at":      time.Now().UTC(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update village: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&VillageModel{}).Where("id = ?", model.ID).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check village: %w", err)
			}
			if count == 0 {
				return shared.NewNotFoundError("village", model.ID)
			}
			return shared.NewConflictError(model.ID, expected)
		}

		for i := range buildings {
			if err := tx.Save(&buildings[i]).Error; err != nil {
				return fmt.Errorf("failed to save building %s: %w", buildings[i].ID, err)
			}
		}
		for i := range research {
			if err := tx.Save(&research[i]).Error; err != nil {
				return fmt.Errorf("failed to save research %s: %w", research[i].Type, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	v.SetVersion(expected + 1)
	return nil
}

// FindByID loads a village with its buildings and research
func (r *GormVillageRepository) FindByID(ctx context.Context, id village.VillageID) (*village.Village, error) {
	var model VillageModel
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("village", id.String())
		}
		return nil, fmt.Errorf("failed to find village: %w", result.Error)
	}

	return r.loadAggregate(ctx, &model)
}

// ListByOwner returns every village owned by a player, oldest first
func (r *GormVillageRepository) ListByOwner(ctx context.Context, ownerID shared.PlayerID) ([]*village.Village, error) {
	var models []VillageModel
	result := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID.Value()).
		Order("created_at ASC, id ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list villages: %w", result.Error)
	}

	villages := make([]*village.Village, 0, len(models))
	for i := range models {
		v, err := r.loadAggregate(ctx, &models[i])
		if err != nil {
			return nil, err
		}
		villages = append(villages, v)
	}
	return villages, nil
}

func (r *GormVillageRepository) loadAggregate(ctx context.Context, model *VillageModel) (*village.Village, error) {
	var buildingModels []BuildingModel
	if err := r.db.WithContext(ctx).
		Where("village_id = ?", model.ID).
		Order("type ASC, id ASC").
		Find(&buildingModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load buildings: %w", err)
	}

	var researchModels []ResearchModel
	if err := r.db.WithContext(ctx).
		Where("village_id = ?", model.ID).
		Order("type ASC").
		Find(&researchModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load research: %w", err)
	}

	return r.modelsToVillage(model, buildingModels, researchModels)
}

// Conversion

func (r *GormVillageRepository) villageToModels(v *village.Village) (*VillageModel, []BuildingModel, []ResearchModel, error) {
	snapshot := v.Ledger().Snapshot()
	quantities, err := marshalAmounts(snapshot.Quantities)
	if err != nil {
		return nil, nil, nil, err
	}
	capacities, err := marshalAmounts(snapshot.Capacities)
	if err != nil {
		return nil, nil, nil, err
	}
	rates, err := marshalAmounts(snapshot.Rates)
	if err != nil {
		return nil, nil, nil, err
	}

	model := &VillageModel{
		ID:            v.ID().String(),
		OwnerID:       v.OwnerID().Value(),
		Name:          v.Name(),
		Version:       v.Version(),
		Quantities:    quantities,
		Capacities:    capacities,
		Rates:         rates,
		LastSettledAt: snapshot.LastSettledAt,
		CreatedAt:     v.CreatedAt(),
	}

	buildings := make([]BuildingModel, 0, len(v.Buildings()))
	for _, b := range v.Buildings() {
		cost, err := marshalAmounts(b.PendingCost().Map())
		if err != nil {
			return nil, nil, nil, err
		}
		transition := b.Transition()
		buildings = append(buildings, BuildingModel{
			ID:          b.ID(),
			VillageID:   model.ID,
			Type:        b.Type().String(),
			Level:       b.Level(),
			MaxLevel:    b.MaxLevel(),
			State:       string(transition.State()),
			StartedAt:   transition.StartedAt(),
			Deadline:    transition.Deadline(),
			PendingCost: cost,
		})
	}

	research := make([]ResearchModel, 0, len(v.Research()))
	for _, rs := range v.Research() {
		cost, err := marshalAmounts(rs.PendingCost().Map())
		if err != nil {
			return nil, nil, nil, err
		}
		transition := rs.Transition()
		research = append(research, ResearchModel{
			VillageID:   model.ID,
			Type:        rs.Type().String(),
			Level:       rs.Level(),
			MaxLevel:    rs.MaxLevel(),
			State:       string(transition.State()),
			StartedAt:   transition.StartedAt(),
			Deadline:    transition.Deadline(),
			PendingCost: cost,
		})
	}

	return model, buildings, research, nil
}

func (r *GormVillageRepository) modelsToVillage(model *VillageModel, buildingModels []BuildingModel, researchModels []ResearchModel) (*village.Village, error) {
	id, err := village.ParseVillageID(model.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid village ID in database: %w", err)
	}
	ownerID, err := shared.NewPlayerID(model.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner ID in database: %w", err)
	}

	quantities, err := unmarshalAmounts(model.Quantities)
	if err != nil {
		return nil, fmt.Errorf("failed to decode quantities: %w", err)
	}
	capacities, err := unmarshalAmounts(model.Capacities)
	if err != nil {
		return nil, fmt.Errorf("failed to decode capacities: %w", err)
	}
	rates, err := unmarshalAmounts(model.Rates)
	if err != nil {
		return nil, fmt.Errorf("failed to decode rates: %w", err)
	}
	ledger, err := resources.NewLedger(quantities, capacities, rates, model.LastSettledAt)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild ledger: %w", err)
	}

	buildings := make([]*village.Building, 0, len(buildingModels))
	for _, bm := range buildingModels {
		transition, cost, err := decodeTransition(bm.State, bm.StartedAt, bm.Deadline, bm.PendingCost)
		if err != nil {
			return nil, fmt.Errorf("building %s: %w", bm.ID, err)
		}
		b, err := village.ReconstructBuilding(bm.ID, catalog.EntityType(bm.Type), bm.Level, bm.MaxLevel, transition, cost)
		if err != nil {
			return nil, fmt.Errorf("building %s: %w", bm.ID, err)
		}
		buildings = append(buildings, b)
	}

	research := make([]*village.Research, 0, len(researchModels))
	for _, rm := range researchModels {
		transition, cost, err := decodeTransition(rm.State, rm.StartedAt, rm.Deadline, rm.PendingCost)
		if err != nil {
			return nil, fmt.Errorf("research %s: %w", rm.Type, err)
		}
		rs, err := village.ReconstructResearch(catalog.EntityType(rm.Type), rm.Level, rm.MaxLevel, transition, cost)
		if err != nil {
			return nil, fmt.Errorf("research %s: %w", rm.Type, err)
		}
		research = append(research, rs)
	}

	return village.ReconstructVillage(
		id,
		ownerID,
		model.Name,
		ledger,
		buildings,
		research,
		model.Version,
		model.CreatedAt,
	), nil
}

func decodeTransition(state string, startedAt, deadline *time.Time, pendingCost string) (shared.TimedTransition, resources.CostVector, error) {
	transition, err := shared.RecoverTimedTransition(shared.TransitionState(state), startedAt, deadline)
	if err != nil {
		return shared.TimedTransition{}, resources.CostVector{}, err
	}
	amounts, err := unmarshalAmounts(pendingCost)
	if err != nil {
		return shared.TimedTransition{}, resources.CostVector{}, fmt.Errorf("failed to decode pending cost: %w", err)
	}
	cost, err := resources.NewCostVector(amounts)
	if err != nil {
		return shared.TimedTransition{}, resources.CostVector{}, err
	}
	return transition, cost, nil
}

func marshalAmounts(amounts map[shared.ResourceKind]float64) (string, error) {
	if amounts == nil {
		amounts = map[shared.ResourceKind]float64{}
	}
	bytes, err := json.Marshal(amounts)
	if err != nil {
		return "", fmt.Errorf("failed to marshal amounts: %w", err)
	}
	return string(bytes), nil
}

func unmarshalAmounts(data string) (map[shared.ResourceKind]float64, error) {
	amounts := make(map[shared.ResourceKind]float64)
	if data == "" {
		return amounts, nil
	}
	if err := json.Unmarshal([]byte(data), &amounts); err != nil {
		return nil, err
	}
	return amounts, nil
}
