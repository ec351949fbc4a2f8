package persistence

import (
	"time"
)

// PlayerModel represents the players table
type PlayerModel struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	Username  string    `gorm:"column:username;unique;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	Metadata  string    `gorm:"column:metadata;type:text"` // JSON stored as string
}

func (PlayerModel) TableName() string {
	return "players"
}

// VillageModel represents the villages table. Version is the optimistic
// concurrency token: every successful save increments it.
type VillageModel struct {
	ID            string       `gorm:"column:id;primaryKey;not null"`
	OwnerID       int          `gorm:"column:owner_id;not null;index"`
	Owner         *PlayerModel `gorm:"foreignKey:OwnerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Name          string       `gorm:"column:name;not null"`
	Version       int64        `gorm:"column:version;not null;default:1"`
	Quantities    string       `gorm:"column:quantities;type:text;not null"` // JSON map as text
	Capacities    string       `gorm:"column:capacities;type:text;not null"` // JSON map as text
	Rates         string       `gorm:"column:rates;type:text;not null"`      // JSON map as text
	LastSettledAt time.Time    `gorm:"column:last_settled_at;not null"`
	CreatedAt     time.Time    `gorm:"column:created_at;not null"`
	UpdatedAt     time.Time    `gorm:"column:updated_at;not null"`
}

func (VillageModel) TableName() string {
	return "villages"
}

// BuildingModel represents the buildings table
type BuildingModel struct {
	ID          string        `gorm:"column:id;primaryKey;not null"`
	VillageID   string        `gorm:"column:village_id;not null;index"`
	Village     *VillageModel `gorm:"foreignKey:VillageID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Type        string        `gorm:"column:type;not null"`
	Level       int           `gorm:"column:level;not null;default:0"`
	MaxLevel    int           `gorm:"column:max_level;not null"`
	State       string        `gorm:"column:state;not null;default:'IDLE'"`
	StartedAt   *time.Time    `gorm:"column:started_at"`
	Deadline    *time.Time    `gorm:"column:deadline"`
	PendingCost string        `gorm:"column:pending_cost;type:text"` // JSON map as text
}

func (BuildingModel) TableName() string {
	return "buildings"
}

// ResearchModel represents the research table, one row per research line per village
type ResearchModel struct {
	VillageID   string        `gorm:"column:village_id;primaryKey;not null"`
	Village     *VillageModel `gorm:"foreignKey:VillageID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Type        string        `gorm:"column:type;primaryKey;not null"`
	Level       int           `gorm:"column:level;not null;default:0"`
	MaxLevel    int           `gorm:"column:max_level;not null"`
	State       string        `gorm:"column:state;not null;default:'IDLE'"`
	StartedAt   *time.Time    `gorm:"column:started_at"`
	Deadline    *time.Time    `gorm:"column:deadline"`
	PendingCost string        `gorm:"column:pending_cost;type:text"` // JSON map as text
}

func (ResearchModel) TableName() string {
	return "research"
}

// AllModels lists every model for AutoMigrate, parents first
func AllModels() []interface{} {
	return []interface{}{
		&PlayerModel{},
		&VillageModel{},
		&BuildingModel{},
		&ResearchModel{},
	}
}
