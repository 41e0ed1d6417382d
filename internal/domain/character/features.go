package character

import (
	"strings"

	rulebook "github.com/KirkDiggler/dnd-character-sheet/internal/domain/rulebook/dnd5e"
	dnderr "github.com/KirkDiggler/dnd-character-sheet/internal/errors"
)

// AddFeat takes a feat; ability_point_grant modifiers add to the unspent pool
type AddFeat struct {
	Feat *rulebook.Feat
}

func (AddFeat) Name() string { return "add_feat" }

func (a AddFeat) Apply(c *Character) (*Character, Change, error) {
	if a.Feat == nil || a.Feat.Key == "" {
		return c, Change{}, dnderr.InvalidArgument("feat is required")
	}
	for _, f := range c.Feats {
		if f.Key == a.Feat.Key {
			return c, Change{}, dnderr.AlreadyExistsf("feat %s already taken", a.Feat.Key)
		}
	}
	return mutate(c, func(next *Character) (Change, error) {
		next.Feats = append(next.Feats, a.Feat)
		ch := Change{Fields: []Field{FieldFeats, FieldHitPoints}}
		if pts := rulebook.AbilityPoints(a.Feat.Modifiers); pts > 0 {
			next.AbilityPoints += pts
			ch = ch.With(FieldAbilityPoints)
		}
		next.clampHitPoints()
		return ch, nil
	})
}

// RemoveFeat drops a feat and takes back whatever points it granted, never
// below zero.
type RemoveFeat struct {
	Key string
}

func (RemoveFeat) Name() string { return "remove_feat" }

func (r RemoveFeat) Apply(c *Character) (*Character, Change, error) {
	var feat *rulebook.Feat
	for _, f := range c.Feats {
		if f.Key == r.Key {
			feat = f
		}
	}
	if feat == nil {
		return c, Change{}, dnderr.NotFoundf("feat %s not taken", r.Key)
	}
	return mutate(c, func(next *Character) (Change, error) {
		var kept []*rulebook.Feat
		for _, f := range next.Feats {
			if f.Key != r.Key {
				kept = append(kept, f)
			}
		}
		next.Feats = kept
		ch := Change{Fields: []Field{FieldFeats, FieldHitPoints}}
		if pts := rulebook.AbilityPoints(feat.Modifiers); pts > 0 {
			next.AbilityPoints = max(0, next.AbilityPoints-pts)
			ch = ch.With(FieldAbilityPoints)
		}
		next.clampHitPoints()
		return ch, nil
	})
}

type AddTrait struct {
	Trait *rulebook.Trait
}

func (AddTrait) Name() string { return "add_trait" }

func (a AddTrait) Apply(c *Character) (*Character, Change, error) {
	if a.Trait == nil || a.Trait.Key == "" {
		return c, Change{}, dnderr.InvalidArgument("trait is required")
	}
	for _, t := range c.Traits {
		if t.Key == a.Trait.Key {
			return c, Change{}, dnderr.AlreadyExistsf("trait %s already present", a.Trait.Key)
		}
	}
	return mutate(c, func(next *Character) (Change, error) {
		next.Traits = append(next.Traits, a.Trait)
		next.clampHitPoints()
		return Change{Fields: []Field{FieldTraits, FieldHitPoints}}, nil
	})
}

type RemoveTrait struct {
	Key string
}

func (RemoveTrait) Name() string { return "remove_trait" }

func (r RemoveTrait) Apply(c *Character) (*Character, Change, error) {
	found := false
	for _, t := range c.Traits {
		found = found || t.Key == r.Key
	}
	if !found {
		return c, Change{}, dnderr.NotFoundf("trait %s not present", r.Key)
	}
	return mutate(c, func(next *Character) (Change, error) {
		var kept []*rulebook.Trait
		for _, t := range next.Traits {
			if t.Key != r.Key {
				kept = append(kept, t)
			}
		}
		next.Traits = kept
		next.clampHitPoints()
		return Change{Fields: []Field{FieldTraits, FieldHitPoints}}, nil
	})
}

// SetManualProficiencies replaces the hand-edited armor, weapon and tool lists
type SetManualProficiencies struct {
	Lists rulebook.ProficiencyLists
}

func (SetManualProficiencies) Name() string { return "set_manual_proficiencies" }

func (s SetManualProficiencies) Apply(c *Character) (*Character, Change, error) {
	return mutate(c, func(next *Character) (Change, error) {
		next.ManualProficiencies = rulebook.ProficiencyLists{
			Armor:   cleanList(s.Lists.Armor),
			Weapons: cleanList(s.Lists.Weapons),
			Tools:   cleanList(s.Lists.Tools),
		}
		return Change{Fields: []Field{FieldManualProficiencies}}, nil
	})
}

type AddLanguage struct {
	Language string
}

func (AddLanguage) Name() string { return "add_language" }

func (a AddLanguage) Apply(c *Character) (*Character, Change, error) {
	lang := strings.TrimSpace(a.Language)
	if lang == "" {
		return c, Change{}, dnderr.InvalidArgument("language is required")
	}
	if containsFold(c.Languages, lang) {
		return c, Change{}, nil
	}
	return mutate(c, func(next *Character) (Change, error) {
		next.Languages = append(next.Languages, lang)
		return Change{Fields: []Field{FieldLanguages}}, nil
	})
}

type RemoveLanguage struct {
	Language string
}

func (RemoveLanguage) Name() string { return "remove_language" }

func (r RemoveLanguage) Apply(c *Character) (*Character, Change, error) {
	if !containsFold(c.Languages, r.Language) {
		return c, Change{}, dnderr.NotFoundf("language %s not known", r.Language)
	}
	return mutate(c, func(next *Character) (Change, error) {
		next.Languages = removeFold(next.Languages, r.Language)
		return Change{Fields: []Field{FieldLanguages}}, nil
	})
}

// AddCondition records a condition such as "poisoned". Conditions are
// tracked for display only.
type AddCondition struct {
	Condition string
}

func (AddCondition) Name() string { return "add_condition" }

func (a AddCondition) Apply(c *Character) (*Character, Change, error) {
	cond := strings.ToLower(strings.TrimSpace(a.Condition))
	if cond == "" {
		return c, Change{}, dnderr.InvalidArgument("condition is required")
	}
	if c.HasCondition(cond) {
		return c, Change{}, nil
	}
	return mutate(c, func(next *Character) (Change, error) {
		next.Conditions = append(next.Conditions, cond)
		return Change{Fields: []Field{FieldConditions}}, nil
	})
}

type RemoveCondition struct {
	Condition string
}

func (RemoveCondition) Name() string { return "remove_condition" }

func (r RemoveCondition) Apply(c *Character) (*Character, Change, error) {
	if !c.HasCondition(r.Condition) {
		return c, Change{}, nil
	}
	return mutate(c, func(next *Character) (Change, error) {
		next.Conditions = removeFold(next.Conditions, r.Condition)
		return Change{Fields: []Field{FieldConditions}}, nil
	})
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" && !containsFold(out, s) {
			out = append(out, s)
		}
	}
	return out
}
