package calculators

import (
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/modifier"
	rulebook "github.com/KirkDiggler/dnd-character-sheet/internal/domain/rulebook/dnd5e"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
)

// FeatureDefenseFightingStyle grants +1 AC while wearing armor
const FeatureDefenseFightingStyle = "fighting_style_defense"

// AbilityModifiers maps each ability to its current modifier
type AbilityModifiers map[shared.Attribute]int

// ACFormula is an alternative unarmored AC calculation granted by a class feature.
type ACFormula struct {
	ClassKey   string
	FeatureKey string
	Label      string
	Compute    func(mods AbilityModifiers) int
	Applies    func(p Posture) bool
}

// ACChoice is the winning AC method
type ACChoice struct {
	Value int
	Label string
}

// DefaultACFormulas are the unarmored AC features of the core classes.
var DefaultACFormulas = []ACFormula{
	{
		ClassKey:   "barbarian",
		FeatureKey: "unarmored_defense",
		Label:      "Unarmored Defense (Barbarian)",
		Compute: func(m AbilityModifiers) int {
			return 10 + m[shared.AttributeDexterity] + m[shared.AttributeConstitution]
		},
		Applies: func(p Posture) bool { return !p.Armored() },
	},
	{
		ClassKey:   "monk",
		FeatureKey: "unarmored_defense",
		Label:      "Unarmored Defense (Monk)",
		Compute: func(m AbilityModifiers) int {
			return 10 + m[shared.AttributeDexterity] + m[shared.AttributeWisdom]
		},
		Applies: func(p Posture) bool { return !p.Armored() && !p.Shielded },
	},
	{
		ClassKey:   "sorcerer",
		FeatureKey: "draconic_resilience",
		Label:      "Draconic Resilience",
		Compute: func(m AbilityModifiers) int {
			return 13 + m[shared.AttributeDexterity]
		},
		Applies: func(p Posture) bool { return !p.Armored() },
	},
}

// GetApplicableACFormulas keeps formulas whose class is present, whose feature
// that class has unlocked, and whose posture precondition holds.
func GetApplicableACFormulas(formulas []ACFormula, classes []*rulebook.ClassLevel, posture Posture) []ACFormula {
	var out []ACFormula
	for _, f := range formulas {
		for _, cl := range classes {
			if cl.Key() == f.ClassKey && cl.HasFeature(f.FeatureKey) && f.Applies(posture) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// CalculateBestAC returns the highest applicable formula, or 10 + DEX.
func CalculateBestAC(formulas []ACFormula, mods AbilityModifiers) ACChoice {
	best := ACChoice{Value: 10 + mods[shared.AttributeDexterity], Label: "Unarmored"}
	for _, f := range formulas {
		if v := f.Compute(mods); v > best.Value {
			best = ACChoice{Value: v, Label: f.Label}
		}
	}
	return best
}

// ACInput is what the calculator reads from a character
type ACInput struct {
	Posture       Posture
	Classes       []*rulebook.ClassLevel
	Modifiers     AbilityModifiers
	Sources       []modifier.Source
	Proficiencies *Proficiencies
	// Override replaces the calculation when set
	Override *int
}

// ArmorClass is the derived AC
type ArmorClass struct {
	Value        int
	IsProficient bool
	Label        string
}

// DnD5eACCalculator implements AC calculation following D&D 5e rules
type DnD5eACCalculator struct {
	formulas []ACFormula
}

// NewDnD5eACCalculator creates a calculator using DefaultACFormulas
func NewDnD5eACCalculator() *DnD5eACCalculator {
	return &DnD5eACCalculator{formulas: DefaultACFormulas}
}

// NewDnD5eACCalculatorWithFormulas creates a calculator with a custom formula registry
func NewDnD5eACCalculatorWithFormulas(formulas []ACFormula) *DnD5eACCalculator {
	return &DnD5eACCalculator{formulas: formulas}
}

// Calculate computes AC following D&D 5e rules
func (c *DnD5eACCalculator) Calculate(in ACInput) ArmorClass {
	result := ArmorClass{IsProficient: c.isProficient(in)}

	if in.Override != nil {
		result.Value = *in.Override
		result.Label = "Override"
		return result
	}

	dexMod := in.Modifiers[shared.AttributeDexterity]
	var ac int
	if in.Posture.Armored() {
		armor := in.Posture.BodyArmor
		ac = armorBase(armor, &dexMod) + dexMod
		result.Label = armor.Name
	} else {
		choice := CalculateBestAC(GetApplicableACFormulas(c.formulas, in.Classes, in.Posture), in.Modifiers)
		ac = choice.Value
		result.Label = choice.Label
	}

	// Shields stack with every calculation, unarmored defense included
	if in.Posture.Shielded {
		ac += shieldBonus(in.Posture.Shield)
	}

	if in.Posture.Armored() && hasFeature(in.Classes, FeatureDefenseFightingStyle) {
		ac++
	}

	result.Value = ResolveStat(ac, modifier.TargetAC, in.Sources)
	return result
}

func (c *DnD5eACCalculator) isProficient(in ACInput) bool {
	if in.Proficiencies == nil {
		return true
	}
	if in.Posture.BodyArmor != nil && !in.Proficiencies.HasArmorProficiency(in.Posture.BodyArmor) {
		return false
	}
	if in.Posture.Shield != nil && !in.Proficiencies.HasArmorProficiency(in.Posture.Shield) {
		return false
	}
	return true
}

// armorBase returns the armor's base AC and caps dexMod for its category.
func armorBase(armor *equipment.ItemDefinition, dexMod *int) int {
	if armor.ArmorClass == nil || armor.ArmorClass.Base <= 0 {
		return armorACFallback(armor.ID, dexMod)
	}

	switch armor.ArmorCategory() {
	case equipment.ArmorCategoryHeavy:
		*dexMod = 0
	case equipment.ArmorCategoryMedium:
		limit := 2
		if armor.ArmorClass.MaxBonus > 0 {
			limit = armor.ArmorClass.MaxBonus
		}
		if *dexMod > limit {
			*dexMod = limit
		}
	}
	return armor.ArmorClass.Base
}

// armorACFallback provides AC values for SRD armor saved without AC data
func armorACFallback(key string, dexMod *int) int {
	capMedium := func() {
		if *dexMod > 2 {
			*dexMod = 2
		}
	}

	switch key {
	case "padded-armor", "leather-armor":
		return 11
	case "studded-leather-armor":
		return 12
	case "hide-armor":
		capMedium()
		return 12
	case "chain-shirt":
		capMedium()
		return 13
	case "scale-mail", "breastplate":
		capMedium()
		return 14
	case "half-plate", "half-plate-armor":
		capMedium()
		return 15
	case "ring-mail":
		*dexMod = 0
		return 14
	case "chain-mail":
		*dexMod = 0
		return 16
	case "splint-armor":
		*dexMod = 0
		return 17
	case "plate-armor", "plate":
		*dexMod = 0
		return 18
	default:
		return 10
	}
}

func shieldBonus(item *equipment.ItemDefinition) int {
	if item != nil && item.ArmorClass != nil && item.ArmorClass.Base > 0 {
		return item.ArmorClass.Base
	}
	return 2
}

func hasFeature(classes []*rulebook.ClassLevel, key string) bool {
	for _, cl := range classes {
		if cl.HasFeature(key) {
			return true
		}
	}
	return false
}
