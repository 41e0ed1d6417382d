// Package modifier defines the closed set of effects a character source
// (item, feat, trait, background, race or active resource) can contribute.
package modifier

import (
	"strings"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
)

// Kind is the wire name of a modifier variant
type Kind string

const (
	KindBonus                  Kind = "bonus"
	KindSet                    Kind = "set"
	KindOverride               Kind = "override"
	KindSkillProficiency       Kind = "skill_proficiency"
	KindExpertise              Kind = "expertise"
	KindSavingThrowProficiency Kind = "saving_throw_proficiency"
	KindArmorProficiency       Kind = "armor_proficiency"
	KindWeaponProficiency      Kind = "weapon_proficiency"
	KindLanguage               Kind = "language"
	KindAbilityIncrease        Kind = "ability_increase"
	KindAbilityPointGrant      Kind = "ability_point_grant"
)

// Well-known numeric targets besides the six ability keys.
const (
	TargetAC            = "ac"
	TargetHPMax         = "hp_max"
	TargetHPPerLevel    = "hp_per_level"
	TargetSpeed         = "speed"
	TargetInitiative    = "initiative"
	TargetSavingThrows  = "saving_throws"
	TargetSpellSaveDC   = "spell_save_dc"
	TargetSpellAttack   = "spell_attack"
	TargetCarryCapacity = "carry_capacity"
)

// Modifier is implemented only by the types in this package.
type Modifier interface {
	Kind() Kind
	// Condition is free text such as "while wielding a finesse weapon".
	Condition() string
	isModifier()
}

// Conditional carries the optional condition text shared by every variant.
type Conditional struct {
	When string `json:"condition,omitempty"`
}

func (c Conditional) Condition() string { return c.When }
func (Conditional) isModifier()         {}

// Bonus adds Value to a numeric target.
type Bonus struct {
	Conditional
	Target string
	Value  int
}

func (Bonus) Kind() Kind { return KindBonus }

// Override proposes Value as the floor of a numeric target.
type Override struct {
	Conditional
	Target string
	Value  int
}

func (Override) Kind() Kind { return KindOverride }

// SkillProficiency grants proficiency in a skill.
type SkillProficiency struct {
	Conditional
	Skill shared.Skill
}

func (SkillProficiency) Kind() Kind { return KindSkillProficiency }

// Expertise doubles the proficiency bonus for a skill.
type Expertise struct {
	Conditional
	Skill shared.Skill
}

func (Expertise) Kind() Kind { return KindExpertise }

// SavingThrowProficiency grants proficiency in one saving throw.
type SavingThrowProficiency struct {
	Conditional
	Ability shared.Attribute
}

func (SavingThrowProficiency) Kind() Kind { return KindSavingThrowProficiency }

// ArmorProficiency grants an armor category (light, medium, heavy, shields).
type ArmorProficiency struct {
	Conditional
	Category string
}

func (ArmorProficiency) Kind() Kind { return KindArmorProficiency }

// WeaponProficiency grants a weapon category or a specific weapon key.
type WeaponProficiency struct {
	Conditional
	Category string
}

func (WeaponProficiency) Kind() Kind { return KindWeaponProficiency }

// Language grants a known language.
type Language struct {
	Conditional
	Name string
}

func (Language) Kind() Kind { return KindLanguage }

// AbilityIncrease raises an ability score, optionally no higher than Max.
type AbilityIncrease struct {
	Conditional
	Ability shared.Attribute
	Value   int
	Max     *int
}

func (AbilityIncrease) Kind() Kind { return KindAbilityIncrease }

// AbilityPointGrant adds unspent improvement points when the source is gained.
type AbilityPointGrant struct {
	Conditional
	Points int
}

func (AbilityPointGrant) Kind() Kind { return KindAbilityPointGrant }

// Applies reports whether the engine should fold m. Conditioned modifiers are
// recognized but never evaluated, so they contribute nothing.
func Applies(m Modifier) bool {
	return m != nil && strings.TrimSpace(m.Condition()) == ""
}

// NumericTarget returns the target and value of a modifier that adjusts a number.
func NumericTarget(m Modifier) (target string, value int, ok bool) {
	switch v := m.(type) {
	case Bonus:
		return v.Target, v.Value, true
	case Override:
		return v.Target, v.Value, true
	case AbilityIncrease:
		return string(v.Ability), v.Value, true
	}
	return "", 0, false
}

// MatchesTarget compares targets case-insensitively, folding ability aliases.
func MatchesTarget(got, want string) bool {
	if strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(want)) {
		return true
	}
	a, okA := shared.ParseAttribute(got)
	b, okB := shared.ParseAttribute(want)
	return okA && okB && a == b
}
