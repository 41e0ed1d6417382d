package character

import (
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
	dnderr "github.com/KirkDiggler/dnd-character-sheet/internal/errors"
)

// Damage removes hit points; temporary hit points absorb damage first
type Damage struct {
	Amount int
}

func (Damage) Name() string { return "damage" }

func (d Damage) Apply(c *Character) (*Character, Change, error) {
	if d.Amount < 0 {
		return c, Change{}, dnderr.InvalidArgumentf("damage must not be negative, got %d", d.Amount)
	}
	return mutate(c, func(next *Character) (Change, error) {
		remaining := d.Amount
		absorbed := min(next.HitPoints.Temporary, remaining)
		next.HitPoints.Temporary -= absorbed
		remaining -= absorbed
		next.HitPoints.Current = max(0, next.HitPoints.Current-remaining)
		return Change{Fields: []Field{FieldHitPoints}}, nil
	})
}

// Heal restores hit points up to the effective maximum. Healing from 0
// clears death saves.
type Heal struct {
	Amount int
}

func (Heal) Name() string { return "heal" }

func (h Heal) Apply(c *Character) (*Character, Change, error) {
	if h.Amount < 0 {
		return c, Change{}, dnderr.InvalidArgumentf("healing must not be negative, got %d", h.Amount)
	}
	return mutate(c, func(next *Character) (Change, error) {
		ch := Change{Fields: []Field{FieldHitPoints}}
		if next.HitPoints.Current == 0 && h.Amount > 0 {
			next.DeathSaves = DeathSaves{}
			ch = ch.With(FieldDeathSaves)
		}
		next.HitPoints.Current = min(next.HitPoints.Current+h.Amount, next.EffectiveMaxHP())
		return ch, nil
	})
}

// SetHitPoints writes current and stored max directly
type SetHitPoints struct {
	Current int
	Max     int
}

func (SetHitPoints) Name() string { return "set_hit_points" }

func (s SetHitPoints) Apply(c *Character) (*Character, Change, error) {
	if s.Max < 1 || s.Current < 0 {
		return c, Change{}, dnderr.InvalidArgumentf("invalid hit points %d/%d", s.Current, s.Max)
	}
	return mutate(c, func(next *Character) (Change, error) {
		next.HitPoints.Max = s.Max
		next.HitPoints.Current = min(s.Current, next.EffectiveMaxHP())
		return Change{Fields: []Field{FieldHitPoints}}, nil
	})
}

// SetTemporaryHP replaces temporary hit points
type SetTemporaryHP struct {
	Amount int
}

func (SetTemporaryHP) Name() string { return "set_temporary_hp" }

func (s SetTemporaryHP) Apply(c *Character) (*Character, Change, error) {
	if s.Amount < 0 {
		return c, Change{}, dnderr.InvalidArgumentf("temporary hit points must not be negative, got %d", s.Amount)
	}
	return mutate(c, func(next *Character) (Change, error) {
		next.HitPoints.Temporary = s.Amount
		return Change{Fields: []Field{FieldHitPoints}}, nil
	})
}

// SpendHitDice heals by the caller's Rolled total plus CON per die.
type SpendHitDice struct {
	Count  int
	Rolled int
}

func (SpendHitDice) Name() string { return "spend_hit_dice" }

func (s SpendHitDice) Apply(c *Character) (*Character, Change, error) {
	if s.Count < 1 {
		return c, Change{}, dnderr.InvalidArgumentf("must spend at least one hit die, got %d", s.Count)
	}
	if s.Count > c.HitDice.Current {
		return c, Change{}, dnderr.ResourceExhaustedf("only %d hit dice left", c.HitDice.Current).
			WithMeta("requested", s.Count)
	}
	return mutate(c, func(next *Character) (Change, error) {
		next.HitDice.Current -= s.Count
		gain := max(0, s.Rolled+s.Count*next.AbilityModifier(shared.AttributeConstitution))
		next.HitPoints.Current = min(next.HitPoints.Current+gain, next.EffectiveMaxHP())
		return Change{Fields: []Field{FieldHitDice, FieldHitPoints}}, nil
	})
}

// RecordDeathSave adds a success or failure, capped at three each
type RecordDeathSave struct {
	Success bool
}

func (RecordDeathSave) Name() string { return "record_death_save" }

func (r RecordDeathSave) Apply(c *Character) (*Character, Change, error) {
	if c.HitPoints.Current > 0 {
		return c, Change{}, dnderr.FailedPreconditionf("death saves are only rolled at 0 hit points")
	}
	return mutate(c, func(next *Character) (Change, error) {
		if r.Success {
			next.DeathSaves.Successes = min(3, next.DeathSaves.Successes+1)
		} else {
			next.DeathSaves.Failures = min(3, next.DeathSaves.Failures+1)
		}
		return Change{Fields: []Field{FieldDeathSaves}}, nil
	})
}

type SetExhaustion struct {
	Level int
}

func (SetExhaustion) Name() string { return "set_exhaustion" }

func (s SetExhaustion) Apply(c *Character) (*Character, Change, error) {
	if s.Level < 0 || s.Level > MaxExhaustion {
		return c, Change{}, dnderr.InvalidArgumentf("exhaustion must be between 0 and %d, got %d", MaxExhaustion, s.Level)
	}
	return mutate(c, func(next *Character) (Change, error) {
		next.Exhaustion = s.Level
		return Change{Fields: []Field{FieldExhaustion}}, nil
	})
}

type SetInspiration struct {
	Inspired bool
}

func (SetInspiration) Name() string { return "set_inspiration" }

func (s SetInspiration) Apply(c *Character) (*Character, Change, error) {
	return mutate(c, func(next *Character) (Change, error) {
		next.Inspiration = s.Inspired
		return Change{Fields: []Field{FieldInspiration}}, nil
	})
}
