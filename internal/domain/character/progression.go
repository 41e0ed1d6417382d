package character

import (
	rulebook "github.com/KirkDiggler/dnd-character-sheet/internal/domain/rulebook/dnd5e"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
	dnderr "github.com/KirkDiggler/dnd-character-sheet/internal/errors"
)

const (
	minAbilityScore = 1
	maxAbilityScore = 30
	// maxPointBuyScore is the most an ability point can raise a base score to
	maxPointBuyScore = 20
	maxClassLevel    = 20
)

// SetAbilityScore writes a base score
type SetAbilityScore struct {
	Ability shared.Attribute
	Score   int
}

func (SetAbilityScore) Name() string { return "set_ability_score" }

func (s SetAbilityScore) Apply(c *Character) (*Character, Change, error) {
	attr, ok := shared.ParseAttribute(string(s.Ability))
	if !ok {
		return c, Change{}, dnderr.InvalidArgumentf("unknown ability %q", s.Ability)
	}
	if s.Score < minAbilityScore || s.Score > maxAbilityScore {
		return c, Change{}, dnderr.InvalidArgumentf("ability score must be between %d and %d, got %d",
			minAbilityScore, maxAbilityScore, s.Score)
	}
	return mutate(c, func(next *Character) (Change, error) {
		next.AbilityScores[attr] = s.Score
		next.clampHitPoints()
		return Change{Fields: []Field{FieldAbilityScores, FieldHitPoints}}, nil
	})
}

// SpendAbilityPoint raises a base score by one from the unspent pool
type SpendAbilityPoint struct {
	Ability shared.Attribute
}

func (SpendAbilityPoint) Name() string { return "spend_ability_point" }

func (s SpendAbilityPoint) Apply(c *Character) (*Character, Change, error) {
	attr, ok := shared.ParseAttribute(string(s.Ability))
	if !ok {
		return c, Change{}, dnderr.InvalidArgumentf("unknown ability %q", s.Ability)
	}
	if c.AbilityPoints <= 0 {
		return c, Change{}, dnderr.ResourceExhaustedf("no ability points to spend")
	}
	if c.BaseScore(attr) >= maxPointBuyScore {
		return c, Change{}, dnderr.FailedPreconditionf("%s is already %d", attr, maxPointBuyScore)
	}
	return mutate(c, func(next *Character) (Change, error) {
		next.AbilityScores[attr] = next.BaseScore(attr) + 1
		next.AbilityPoints--
		return Change{Fields: []Field{FieldAbilityScores, FieldAbilityPoints}}, nil
	})
}

type AddExperience struct {
	Amount int
}

func (AddExperience) Name() string { return "add_experience" }

func (a AddExperience) Apply(c *Character) (*Character, Change, error) {
	if a.Amount < 0 {
		return c, Change{}, dnderr.InvalidArgumentf("experience must not be negative, got %d", a.Amount)
	}
	return mutate(c, func(next *Character) (Change, error) {
		next.Experience += a.Amount
		return Change{Fields: []Field{FieldExperience}}, nil
	})
}

// SetClassLevel adds a class, changes its level, or removes it at level 0.
// Class is required when adding.
type SetClassLevel struct {
	ClassKey string
	Level    int
	Class    *rulebook.Class
}

func (SetClassLevel) Name() string { return "set_class_level" }

func (s SetClassLevel) Apply(c *Character) (*Character, Change, error) {
	if s.Level < 0 || s.Level > maxClassLevel {
		return c, Change{}, dnderr.InvalidArgumentf("class level must be between 0 and %d, got %d", maxClassLevel, s.Level)
	}
	_, exists := c.ClassLevel(s.ClassKey)
	if !exists && s.Level > 0 && s.Class == nil {
		return c, Change{}, dnderr.InvalidArgumentf("class %s definition is required", s.ClassKey)
	}
	if !exists && s.Level == 0 {
		return c, Change{}, dnderr.NotFoundf("character has no %s levels", s.ClassKey)
	}

	return mutate(c, func(next *Character) (Change, error) {
		switch {
		case s.Level == 0:
			var kept []*rulebook.ClassLevel
			for _, cl := range next.Classes {
				if cl.Key() != s.ClassKey {
					kept = append(kept, cl)
				}
			}
			next.Classes = kept
		case exists:
			cl, _ := next.ClassLevel(s.ClassKey)
			cl.Level = s.Level
		default:
			next.Classes = append(next.Classes, &rulebook.ClassLevel{Class: s.Class, Level: s.Level})
		}

		before := next.HitDice.Max
		next.Level = next.TotalLevel()
		next.HitDice.Max = next.Level
		if gained := next.HitDice.Max - before; gained > 0 {
			next.HitDice.Current += gained
		}
		next.HitDice.Current = min(next.HitDice.Current, next.HitDice.Max)

		// Losing levels can lock resources and slots away
		for key := range next.ResourceUsage {
			if _, _, ok := next.findResource(key); !ok {
				delete(next.ResourceUsage, key)
			}
		}
		next.clampHitPoints()

		return Change{Fields: []Field{FieldClasses, FieldLevel, FieldHitDice, FieldHitPoints}}, nil
	})
}

// SetSubclass picks a subclass for one of the character's classes
type SetSubclass struct {
	ClassKey string
	Subclass *rulebook.Subclass
}

func (SetSubclass) Name() string { return "set_subclass" }

func (s SetSubclass) Apply(c *Character) (*Character, Change, error) {
	if _, ok := c.ClassLevel(s.ClassKey); !ok {
		return c, Change{}, dnderr.NotFoundf("character has no %s levels", s.ClassKey)
	}
	return mutate(c, func(next *Character) (Change, error) {
		cl, _ := next.ClassLevel(s.ClassKey)
		cl.Subclass = s.Subclass
		return Change{Fields: []Field{FieldClasses}}, nil
	})
}

// SetACOverride pins AC to a value; nil clears the override
type SetACOverride struct {
	Value *int
}

func (SetACOverride) Name() string { return "set_ac_override" }

func (s SetACOverride) Apply(c *Character) (*Character, Change, error) {
	return mutate(c, func(next *Character) (Change, error) {
		if s.Value == nil {
			next.ACOverride = nil
		} else {
			v := *s.Value
			next.ACOverride = &v
		}
		return Change{Fields: []Field{FieldACOverride}}, nil
	})
}
