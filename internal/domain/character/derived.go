package character

import (
	"sort"
	"strings"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/formula"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/modifier"
	rulebook "github.com/KirkDiggler/dnd-character-sheet/internal/domain/rulebook/dnd5e"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/rulebook/dnd5e/calculators"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
)

var acCalculator = calculators.NewDnD5eACCalculator()

// ModifierSources collects every live contributor: race, background, feats,
// traits, unlocked class features, equipped (and attuned) items and active
// resource modifiers.
func (c *Character) ModifierSources() []modifier.Source {
	var out []modifier.Source
	if c.Race != nil && len(c.Race.Modifiers) > 0 {
		out = append(out, modifier.Source{ID: c.Race.Key, Name: c.Race.Name, Kind: modifier.SourceRace, Modifiers: c.Race.Modifiers})
	}
	if c.Background != nil && len(c.Background.Modifiers) > 0 {
		out = append(out, modifier.Source{ID: c.Background.Key, Name: c.Background.Name, Kind: modifier.SourceBackground, Modifiers: c.Background.Modifiers})
	}
	for _, f := range c.Feats {
		out = append(out, modifier.Source{ID: f.Key, Name: f.Name, Kind: modifier.SourceFeat, Modifiers: f.Modifiers})
	}
	for _, t := range c.Traits {
		out = append(out, modifier.Source{ID: t.Key, Name: t.Name, Kind: modifier.SourceTrait, Modifiers: t.Modifiers})
	}
	for _, cl := range c.Classes {
		for _, f := range cl.Features() {
			if len(f.Modifiers) == 0 {
				continue
			}
			out = append(out, modifier.Source{ID: cl.Key() + ":" + f.Key, Name: f.Name, Kind: modifier.SourceFeature, Modifiers: f.Modifiers})
		}
	}
	out = append(out, c.Inventory.Sources()...)
	for _, rm := range c.ResourceModifiers {
		out = append(out, modifier.Source{ID: rm.ID, Name: rm.Name, Kind: modifier.SourceResource, Modifiers: rm.Modifiers})
	}
	return out
}

// CharacterLevel is the cached level, falling back to the class sum
func (c *Character) CharacterLevel() int {
	if c.Level > 0 {
		return c.Level
	}
	return c.TotalLevel()
}

// AbilityScore resolves a score through every modifier source
func (c *Character) AbilityScore(attr shared.Attribute) int {
	return calculators.ResolveStat(c.BaseScore(attr), string(attr), c.ModifierSources())
}

func (c *Character) AbilityModifier(attr shared.Attribute) int {
	return shared.Modifier(c.AbilityScore(attr))
}

// AbilityModifiers resolves all six modifiers against one source list
func (c *Character) AbilityModifiers() calculators.AbilityModifiers {
	sources := c.ModifierSources()
	out := make(calculators.AbilityModifiers, len(shared.Attributes))
	for _, attr := range shared.Attributes {
		out[attr] = shared.Modifier(calculators.ResolveStat(c.BaseScore(attr), string(attr), sources))
	}
	return out
}

func (c *Character) ProficiencyBonus() int {
	return shared.ProficiencyBonus(c.CharacterLevel())
}

// Posture classifies the equipped gear
func (c *Character) Posture() calculators.Posture {
	return calculators.DetectPosture(c.Inventory.EquippedItems())
}

// Proficiencies aggregates class, background, manual and modifier grants
func (c *Character) Proficiencies() *calculators.Proficiencies {
	languages := append([]string(nil), c.Languages...)
	if c.Race != nil {
		languages = append(languages, c.Race.Languages...)
	}
	return calculators.NewProficiencies(calculators.ProficiencyInput{
		Classes:    c.Classes,
		Background: c.Background,
		Manual:     c.ManualProficiencies,
		Languages:  languages,
		Sources:    c.ModifierSources(),
	})
}

// Languages lists every known language, sorted
func (c *Character) KnownLanguages() []string {
	return c.Proficiencies().GrantedLanguages()
}

// ArmorClass picks the best applicable AC calculation
func (c *Character) ArmorClass() calculators.ArmorClass {
	return acCalculator.Calculate(calculators.ACInput{
		Posture:       c.Posture(),
		Classes:       c.Classes,
		Modifiers:     c.AbilityModifiers(),
		Sources:       c.ModifierSources(),
		Proficiencies: c.Proficiencies(),
		Override:      c.ACOverride,
	})
}

// EffectiveMaxHP is the stored maximum plus hp_per_level and hp_max bonuses
func (c *Character) EffectiveMaxHP() int {
	return calculators.EffectiveMaxHP(c.HitPoints.Max, c.CharacterLevel(), c.ModifierSources())
}

// SavingThrowModifier adds proficiency when proficient, plus bonuses aimed at
// the ability's save ("dex_save") or all saves.
func (c *Character) SavingThrowModifier(attr shared.Attribute) int {
	sources := c.ModifierSources()
	mod := shared.Modifier(calculators.ResolveStat(c.BaseScore(attr), string(attr), sources))
	if c.Proficiencies().HasSavingThrowProficiency(attr) {
		mod += c.ProficiencyBonus()
	}
	mod += calculators.ResolveBonus(string(attr)+"_save", sources)
	mod += calculators.ResolveBonus(modifier.TargetSavingThrows, sources)
	return mod
}

// SkillModifier adds proficiency once, or twice with expertise
func (c *Character) SkillModifier(skill shared.Skill) int {
	attr, ok := skill.Ability()
	if !ok {
		return 0
	}
	sources := c.ModifierSources()
	mod := shared.Modifier(calculators.ResolveStat(c.BaseScore(attr), string(attr), sources))
	profs := c.Proficiencies()
	switch {
	case profs.HasExpertise(skill):
		mod += 2 * c.ProficiencyBonus()
	case profs.HasSkillProficiency(skill):
		mod += c.ProficiencyBonus()
	}
	return mod + calculators.ResolveBonus(string(skill), sources)
}

func (c *Character) PassivePerception() int {
	return 10 + c.SkillModifier(shared.Skill("perception"))
}

func (c *Character) Initiative() int {
	return c.AbilityModifier(shared.AttributeDexterity) + c.InitiativeBonus +
		calculators.ResolveBonus(modifier.TargetInitiative, c.ModifierSources())
}

// EffectiveSpeed resolves walking speed, taking the race's speed when unset
func (c *Character) EffectiveSpeed() int {
	base := c.Speed
	if base == 0 && c.Race != nil {
		base = c.Race.Speed
	}
	if base == 0 {
		base = 30
	}
	return calculators.ResolveStat(base, modifier.TargetSpeed, c.ModifierSources())
}

// SpellcastingStats is one spellcasting class's numbers
type SpellcastingStats struct {
	ClassKey    string           `json:"class_key"`
	Ability     shared.Attribute `json:"ability"`
	Modifier    int              `json:"modifier"`
	SaveDC      int              `json:"save_dc"`
	AttackBonus int              `json:"attack_bonus"`
}

// SpellcastingStats returns one entry per spellcasting class, in class order
func (c *Character) SpellcastingStats() []SpellcastingStats {
	sources := c.ModifierSources()
	mods := c.AbilityModifiers()
	prof := c.ProficiencyBonus()
	dcBonus := calculators.ResolveBonus(modifier.TargetSpellSaveDC, sources)
	atkBonus := calculators.ResolveBonus(modifier.TargetSpellAttack, sources)

	var out []SpellcastingStats
	for _, cl := range c.Classes {
		sc := cl.Spellcasting()
		if sc == nil {
			continue
		}
		mod := mods[sc.Ability]
		out = append(out, SpellcastingStats{
			ClassKey:    cl.Key(),
			Ability:     sc.Ability,
			Modifier:    mod,
			SaveDC:      8 + prof + mod + dcBonus,
			AttackBonus: prof + mod + atkBonus,
		})
	}
	return out
}

// CanCastSpells is false while wearing armor or a shield the character is
// not proficient with.
func (c *Character) CanCastSpells() bool {
	p := c.Posture()
	profs := c.Proficiencies()
	if p.BodyArmor != nil && !profs.HasArmorProficiency(p.BodyArmor) {
		return false
	}
	if p.Shield != nil && !profs.HasArmorProficiency(p.Shield) {
		return false
	}
	return true
}

// MaxSpellSlots uses the multiclass spellcaster table
func (c *Character) MaxSpellSlots() map[int]int {
	return rulebook.SpellSlotsForCasterLevel(rulebook.CasterLevel(c.Classes))
}

// PactSlots sums pact-magic levels
func (c *Character) PactSlots() (count, slotLevel int) {
	return rulebook.PactSlots(c.pactLevel())
}

func (c *Character) pactLevel() int {
	level := 0
	for _, cl := range c.Classes {
		if sc := cl.Spellcasting(); sc != nil && sc.Progression == rulebook.ProgressionPact {
			level += cl.Level
		}
	}
	return level
}

// HasPactMagic reports whether any class uses pact slots
func (c *Character) HasPactMagic() bool {
	return c.pactLevel() > 0
}

// Encumbrance is carried weight against capacity
type Encumbrance struct {
	Current float64 `json:"current"`
	Max     int     `json:"max"`
}

func (c *Character) Encumbrance() Encumbrance {
	return Encumbrance{
		Current: c.Inventory.TotalWeight(),
		Max: c.AbilityScore(shared.AttributeStrength)*15 +
			calculators.ResolveBonus(modifier.TargetCarryCapacity, c.ModifierSources()),
	}
}

// AvailableResource pairs an unlocked class resource with its usage
type AvailableResource struct {
	ClassKey string
	Resource *rulebook.ClassResource
	Used     int
	Max      int
}

// Resources lists every unlocked class resource, sorted by key
func (c *Character) Resources() []AvailableResource {
	var out []AvailableResource
	for _, cl := range c.Classes {
		for _, r := range cl.Resources() {
			out = append(out, AvailableResource{
				ClassKey: cl.Key(),
				Resource: r,
				Used:     c.ResourceUsage[r.Key],
				Max:      c.resourceMax(cl, r),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Resource.Key < out[j].Resource.Key })
	return out
}

func (c *Character) findResource(key string) (*rulebook.ClassLevel, *rulebook.ClassResource, bool) {
	for _, cl := range c.Classes {
		for _, r := range cl.Resources() {
			if strings.EqualFold(r.Key, key) {
				return cl, r, true
			}
		}
	}
	return nil, nil, false
}

// ResourceMaxUses evaluates the resource's max formula; unknown resources have 0
func (c *Character) ResourceMaxUses(key string) int {
	cl, r, ok := c.findResource(key)
	if !ok {
		return 0
	}
	return c.resourceMax(cl, r)
}

func (c *Character) resourceMax(cl *rulebook.ClassLevel, r *rulebook.ClassResource) int {
	n, err := formula.EvalString(r.MaxFormula, c.formulaVars(cl))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// formulaVars binds level to the total character level and class_level to
// the level of the class owning the resource.
func (c *Character) formulaVars(cl *rulebook.ClassLevel) formula.Vars {
	vars := formula.Vars{
		"level":       float64(c.CharacterLevel()),
		"class_level": float64(c.CharacterLevel()),
		"prof":        float64(c.ProficiencyBonus()),
	}
	if cl != nil {
		vars["class_level"] = float64(cl.Level)
	}
	for attr, mod := range c.AbilityModifiers() {
		vars[string(attr)+"_mod"] = float64(mod)
	}
	return vars
}
