package character

import (
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/modifier"
	rulebook "github.com/KirkDiggler/dnd-character-sheet/internal/domain/rulebook/dnd5e"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
)

// MaxExhaustion is the deadly exhaustion level
const MaxExhaustion = 6

// HitPoints holds current, stored maximum and temporary hit points.
// The effective maximum adds modifier bonuses on top of Max.
type HitPoints struct {
	Current   int `json:"current"`
	Max       int `json:"max"`
	Temporary int `json:"temporary"`
}

type HitDice struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

type DeathSaves struct {
	Successes int `json:"successes"`
	Failures  int `json:"failures"`
}

// ResourceModifier is a temporary boost created by using a class resource.
type ResourceModifier struct {
	ID          string          `json:"id"`
	ResourceKey string          `json:"resource_key"`
	Name        string          `json:"name"`
	Duration    shared.Duration `json:"duration"`
	Modifiers   modifier.List   `json:"modifiers"`
}

// Character is the snapshot every rule reads. Commands never modify a
// Character in place; they return a modified clone.
type Character struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`

	AbilityScores   map[shared.Attribute]int `json:"ability_scores"`
	HitPoints       HitPoints                `json:"hit_points"`
	HitDice         HitDice                  `json:"hit_dice"`
	DeathSaves      DeathSaves               `json:"death_saves"`
	Exhaustion      int                      `json:"exhaustion"`
	Inspiration     bool                     `json:"inspiration"`
	ACOverride      *int                     `json:"ac_override,omitempty"`
	Speed           int                      `json:"speed"`
	InitiativeBonus int                      `json:"initiative_bonus"`
	Level           int                      `json:"level"`
	Experience      int                      `json:"experience"`
	UsedSpellSlots  map[int]int              `json:"used_spell_slots"`
	UsedPactSlots   int                      `json:"used_pact_slots"`
	AbilityPoints   int                      `json:"ability_points"`
	Currency        shared.Currency          `json:"currency"`

	ManualProficiencies rulebook.ProficiencyLists `json:"manual_proficiencies"`
	ResourceModifiers   []*ResourceModifier       `json:"resource_modifiers"`

	Classes    []*rulebook.ClassLevel `json:"classes"`
	Race       *rulebook.Race         `json:"race,omitempty"`
	Background *rulebook.Background   `json:"background,omitempty"`
	Feats      []*rulebook.Feat       `json:"feats,omitempty"`
	Traits     []*rulebook.Trait      `json:"traits,omitempty"`

	Languages      []string `json:"languages,omitempty"`
	Conditions     []string `json:"conditions,omitempty"`
	Concentration  string   `json:"concentration,omitempty"`
	PreparedSpells []string `json:"prepared_spells,omitempty"`

	// Join rows: one per owned stack, and one usage counter per class resource.
	Inventory     equipment.Inventory `json:"inventory"`
	ResourceUsage map[string]int      `json:"resource_usage"`
}

// New returns a level-0 character with every score at 10
func New(id, ownerID, name string) *Character {
	c := &Character{ID: id, OwnerID: ownerID, Name: name}
	c.ensureMaps()
	for _, attr := range shared.Attributes {
		c.AbilityScores[attr] = 10
	}
	return c
}

// Clone returns a deep copy. Rulebook definitions such as classes, races and
// feats are shared as immutable reference data.
func (c *Character) Clone() *Character {
	if c == nil {
		return nil
	}
	out := *c

	out.AbilityScores = make(map[shared.Attribute]int, len(c.AbilityScores))
	for k, v := range c.AbilityScores {
		out.AbilityScores[k] = v
	}
	out.UsedSpellSlots = make(map[int]int, len(c.UsedSpellSlots))
	for k, v := range c.UsedSpellSlots {
		out.UsedSpellSlots[k] = v
	}
	out.ResourceUsage = make(map[string]int, len(c.ResourceUsage))
	for k, v := range c.ResourceUsage {
		out.ResourceUsage[k] = v
	}
	if c.ACOverride != nil {
		v := *c.ACOverride
		out.ACOverride = &v
	}

	out.ManualProficiencies = rulebook.ProficiencyLists{
		Armor:   append([]string(nil), c.ManualProficiencies.Armor...),
		Weapons: append([]string(nil), c.ManualProficiencies.Weapons...),
		Tools:   append([]string(nil), c.ManualProficiencies.Tools...),
	}

	out.ResourceModifiers = nil
	for _, rm := range c.ResourceModifiers {
		cp := *rm
		cp.Modifiers = append(modifier.List(nil), rm.Modifiers...)
		out.ResourceModifiers = append(out.ResourceModifiers, &cp)
	}

	out.Classes = nil
	for _, cl := range c.Classes {
		cp := *cl
		cp.Skills = append([]shared.Skill(nil), cl.Skills...)
		cp.Expertise = append([]shared.Skill(nil), cl.Expertise...)
		out.Classes = append(out.Classes, &cp)
	}

	out.Feats = append([]*rulebook.Feat(nil), c.Feats...)
	out.Traits = append([]*rulebook.Trait(nil), c.Traits...)
	out.Languages = append([]string(nil), c.Languages...)
	out.Conditions = append([]string(nil), c.Conditions...)
	out.PreparedSpells = append([]string(nil), c.PreparedSpells...)
	out.Inventory = c.Inventory.Clone()

	return &out
}

// BaseScore returns the stored score, 10 when unset
func (c *Character) BaseScore(attr shared.Attribute) int {
	if v, ok := c.AbilityScores[attr]; ok {
		return v
	}
	return 10
}

// ClassLevel returns the character's standing in a class
func (c *Character) ClassLevel(classKey string) (*rulebook.ClassLevel, bool) {
	for _, cl := range c.Classes {
		if cl.Key() == classKey {
			return cl, true
		}
	}
	return nil, false
}

// TotalLevel sums class levels
func (c *Character) TotalLevel() int {
	total := 0
	for _, cl := range c.Classes {
		total += cl.Level
	}
	return total
}

// HitDieSize is the first class's hit die, d8 when unknown
func (c *Character) HitDieSize() int {
	if len(c.Classes) > 0 && c.Classes[0].Class != nil && c.Classes[0].Class.HitDie > 0 {
		return c.Classes[0].Class.HitDie
	}
	return 8
}

// HasCondition reports whether a condition such as "poisoned" is active
func (c *Character) HasCondition(name string) bool {
	return containsFold(c.Conditions, name)
}

func (c *Character) ensureMaps() {
	if c.AbilityScores == nil {
		c.AbilityScores = map[shared.Attribute]int{}
	}
	if c.UsedSpellSlots == nil {
		c.UsedSpellSlots = map[int]int{}
	}
	if c.ResourceUsage == nil {
		c.ResourceUsage = map[string]int{}
	}
}
