package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/andrescamacho/empire-go/internal/domain/player"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPlayerRepository implements PlayerRepository using GORM
type GormPlayerRepository struct {
	db *gorm.DB
}

// NewGormPlayerRepository creates a new GORM player repository
func NewGormPlayerRepository(db *gorm.DB) *GormPlayerRepository {
	return &GormPlayerRepository{db: db}
}

// FindByID retrieves a player by ID
func (r *GormPlayerRepository) FindByID(ctx context.Context, playerID shared.PlayerID) (*player.Player, error) {
	var model PlayerModel
	result := r.db.WithContext(ctx).Where("id = ?", playerID.Value()).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("player", playerID.String())
		}
		return nil, fmt.Errorf("failed to find player: %w", result.Error)
	}

	return r.modelToPlayer(&model)
}

// FindByUsername retrieves a player by username
func (r *GormPlayerRepository) FindByUsername(ctx context.Context, username string) (*player.Player, error) {
	var model PlayerModel
	result := r.db.WithContext(ctx).Where("username = ?", username).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("player", username)
		}
		return nil, fmt.Errorf("failed to find player: %w", result.Error)
	}

	return r.modelToPlayer(&model)
}

// ListAll retrieves all players from the database
func (r *GormPlayerRepository) ListAll(ctx context.Context) ([]*player.Player, error) {
	var models []PlayerModel
	result := r.db.WithContext(ctx).Order("id").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list players: %w", result.Error)
	}

	players := make([]*player.Player, 0, len(models))
	for _, model := range models {
		p, err := r.modelToPlayer(&model)
		if err != nil {
			continue // Skip invalid players
		}
		players = append(players, p)
	}

	return players, nil
}

// Add persists a player. A zero ID is assigned by the database and written back.
func (r *GormPlayerRepository) Add(ctx context.Context, p *player.Player) error {
	model, err := r.playerToModel(p)
	if err != nil {
		return fmt.Errorf("failed to convert player to model: %w", err)
	}

	// Upsert: create or update
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return fmt.Errorf("failed to add player: %w", result.Error)
	}

	id, err := shared.NewPlayerID(model.ID)
	if err != nil {
		return fmt.Errorf("invalid player ID assigned: %w", err)
	}
	p.ID = id
	return nil
}

// modelToPlayer converts database model to domain entity
func (r *GormPlayerRepository) modelToPlayer(model *PlayerModel) (*player.Player, error) {
	var metadata map[string]interface{}
	if model.Metadata != "" {
		if err := json.Unmarshal([]byte(model.Metadata), &metadata); err != nil {
			// If unmarshal fails, leave metadata as nil
			metadata = nil
		}
	}

	playerID, err := shared.NewPlayerID(model.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid player ID in database: %w", err)
	}

	return &player.Player{
		ID:        playerID,
		Username:  model.Username,
		CreatedAt: model.CreatedAt,
		Metadata:  metadata,
	}, nil
}

// playerToModel converts domain entity to database model
func (r *GormPlayerRepository) playerToModel(p *player.Player) (*PlayerModel, error) {
	metadataJSON := "{}"
	if p.Metadata != nil {
		bytes, err := json.Marshal(p.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		metadataJSON = string(bytes)
	}

	return &PlayerModel{
		ID:        p.ID.Value(),
		Username:  p.Username,
		CreatedAt: p.CreatedAt,
		Metadata:  metadataJSON,
	}, nil
}
