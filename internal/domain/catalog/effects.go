package catalog

import (
	"fmt"

	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

// EffectKind tags the closed set of research effects
type EffectKind string

const (
	// EffectProductionBuff multiplies a resource's production rate
	EffectProductionBuff EffectKind = "PRODUCTION_BUFF"

	// EffectCapacityBuff adds flat storage capacity for a resource
	EffectCapacityBuff EffectKind = "CAPACITY_BUFF"

	// EffectUnlock allows a locked building type to be constructed
	EffectUnlock EffectKind = "UNLOCK"
)

// Effect is implemented only by the effect types in this package
type Effect interface {
	Kind() EffectKind
	Validate() error
	isEffect()
}

// ProductionBuff raises the production of Resource by Percent (10 = +10%)
type ProductionBuff struct {
	Resource shared.ResourceKind
	Percent  float64
}

func (ProductionBuff) Kind() EffectKind { return EffectProductionBuff }
func (ProductionBuff) isEffect()        {}

func (e ProductionBuff) Validate() error {
	if !e.Resource.IsValid() {
		return fmt.Errorf("production buff: invalid resource %q", e.Resource)
	}
	if e.Percent <= -100 {
		return fmt.Errorf("production buff for %s: percent must be greater than -100", e.Resource)
	}
	return nil
}

// CapacityBuff adds Amount storage for Resource
type CapacityBuff struct {
	Resource shared.ResourceKind
	Amount   float64
}

func (CapacityBuff) Kind() EffectKind { return EffectCapacityBuff }
func (CapacityBuff) isEffect()        {}

func (e CapacityBuff) Validate() error {
	if !e.Resource.IsValid() {
		return fmt.Errorf("capacity buff: invalid resource %q", e.Resource)
	}
	if e.Amount < 0 {
		return fmt.Errorf("capacity buff for %s: amount cannot be negative", e.Resource)
	}
	return nil
}

// Unlock makes Target constructible
type Unlock struct {
	Target EntityType
}

func (Unlock) Kind() EffectKind { return EffectUnlock }
func (Unlock) isEffect()        {}

func (e Unlock) Validate() error {
	if e.Target == "" {
		return fmt.Errorf("unlock: target is required")
	}
	return nil
}
