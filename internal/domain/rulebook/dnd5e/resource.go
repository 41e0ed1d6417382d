package rulebook

import (
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/modifier"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
)

// EffectType is what happens when a resource is used
type EffectType string

const (
	EffectGrantHP        EffectType = "grant_hp"
	EffectApplyModifiers EffectType = "apply_modifiers"
)

// HPMode selects how grant_hp delivers its amount
type HPMode string

const (
	HPModeTemporary HPMode = "temporary"
	HPModeBonus     HPMode = "bonus"
)

// ClassResource is a limited-use class feature such as Rage or Second Wind.
// MaxFormula and effect amounts are formulas over level, prof and the
// ability modifiers (str_mod ... cha_mod).
type ClassResource struct {
	Key         string            `json:"key"`
	Name        string            `json:"name"`
	MaxFormula  string            `json:"max_formula"`
	RechargeOn  shared.RestType   `json:"recharge_on"`
	UnlockLevel int               `json:"unlock_level"`
	OnUse       []*ResourceEffect `json:"on_use,omitempty"`
}

// ResourceEffect is one onUse effect
type ResourceEffect struct {
	Type      EffectType      `json:"type"`
	Mode      HPMode          `json:"mode,omitempty"`
	Amount    string          `json:"amount,omitempty"`
	Duration  shared.Duration `json:"duration,omitempty"`
	Modifiers modifier.List   `json:"modifiers,omitempty"`
}

// EffectiveDuration defaults to long_rest
func (e *ResourceEffect) EffectiveDuration() shared.Duration {
	if e.Duration == "" {
		return shared.DurationLongRest
	}
	return e.Duration
}
