package character

import (
	"strings"

	dnderr "github.com/KirkDiggler/dnd-character-sheet/internal/errors"
)

// ConsumeSpellSlot marks one slot of Level as used
type ConsumeSpellSlot struct {
	Level int
}

func (ConsumeSpellSlot) Name() string { return "consume_spell_slot" }

func (s ConsumeSpellSlot) Apply(c *Character) (*Character, Change, error) {
	maxSlots := c.MaxSpellSlots()[s.Level]
	if maxSlots == 0 {
		return c, Change{}, dnderr.FailedPreconditionf("no level %d spell slots", s.Level).
			WithMeta("level", s.Level)
	}
	if c.UsedSpellSlots[s.Level] >= maxSlots {
		return c, Change{}, dnderr.ResourceExhaustedf("all level %d spell slots are used", s.Level).
			WithMeta("level", s.Level)
	}
	return mutate(c, func(next *Character) (Change, error) {
		next.UsedSpellSlots[s.Level]++
		return Change{Fields: []Field{FieldUsedSpellSlots}}, nil
	})
}

// RestoreSpellSlot frees one used slot; at zero it does nothing
type RestoreSpellSlot struct {
	Level int
}

func (RestoreSpellSlot) Name() string { return "restore_spell_slot" }

func (s RestoreSpellSlot) Apply(c *Character) (*Character, Change, error) {
	if c.UsedSpellSlots[s.Level] <= 0 {
		return c, Change{}, nil
	}
	return mutate(c, func(next *Character) (Change, error) {
		next.UsedSpellSlots[s.Level]--
		if next.UsedSpellSlots[s.Level] == 0 {
			delete(next.UsedSpellSlots, s.Level)
		}
		return Change{Fields: []Field{FieldUsedSpellSlots}}, nil
	})
}

type UsePactSlot struct{}

func (UsePactSlot) Name() string { return "use_pact_slot" }

func (UsePactSlot) Apply(c *Character) (*Character, Change, error) {
	count, _ := c.PactSlots()
	if count == 0 {
		return c, Change{}, dnderr.FailedPreconditionf("character has no pact magic")
	}
	if c.UsedPactSlots >= count {
		return c, Change{}, dnderr.ResourceExhaustedf("all pact slots are used")
	}
	return mutate(c, func(next *Character) (Change, error) {
		next.UsedPactSlots++
		return Change{Fields: []Field{FieldUsedPactSlots}}, nil
	})
}

type RestorePactSlot struct{}

func (RestorePactSlot) Name() string { return "restore_pact_slot" }

func (RestorePactSlot) Apply(c *Character) (*Character, Change, error) {
	if c.UsedPactSlots <= 0 {
		return c, Change{}, nil
	}
	return mutate(c, func(next *Character) (Change, error) {
		next.UsedPactSlots--
		return Change{Fields: []Field{FieldUsedPactSlots}}, nil
	})
}

type PrepareSpell struct {
	Spell string
}

func (PrepareSpell) Name() string { return "prepare_spell" }

func (p PrepareSpell) Apply(c *Character) (*Character, Change, error) {
	spell := strings.TrimSpace(p.Spell)
	if spell == "" {
		return c, Change{}, dnderr.InvalidArgument("spell is required")
	}
	if containsFold(c.PreparedSpells, spell) {
		return c, Change{}, nil
	}
	return mutate(c, func(next *Character) (Change, error) {
		next.PreparedSpells = append(next.PreparedSpells, spell)
		return Change{Fields: []Field{FieldPreparedSpells}}, nil
	})
}

type UnprepareSpell struct {
	Spell string
}

func (UnprepareSpell) Name() string { return "unprepare_spell" }

func (p UnprepareSpell) Apply(c *Character) (*Character, Change, error) {
	if !containsFold(c.PreparedSpells, p.Spell) {
		return c, Change{}, dnderr.NotFoundf("spell %s is not prepared", p.Spell)
	}
	return mutate(c, func(next *Character) (Change, error) {
		next.PreparedSpells = removeFold(next.PreparedSpells, p.Spell)
		if strings.EqualFold(next.Concentration, p.Spell) {
			next.Concentration = ""
			return Change{Fields: []Field{FieldPreparedSpells, FieldConcentration}}, nil
		}
		return Change{Fields: []Field{FieldPreparedSpells}}, nil
	})
}

// SetConcentration starts concentrating on Spell; empty ends concentration
type SetConcentration struct {
	Spell string
}

func (SetConcentration) Name() string { return "set_concentration" }

func (s SetConcentration) Apply(c *Character) (*Character, Change, error) {
	return mutate(c, func(next *Character) (Change, error) {
		next.Concentration = strings.TrimSpace(s.Spell)
		return Change{Fields: []Field{FieldConcentration}}, nil
	})
}

func removeFold(list []string, s string) []string {
	var out []string
	for _, v := range list {
		if !strings.EqualFold(v, s) {
			out = append(out, v)
		}
	}
	return out
}
