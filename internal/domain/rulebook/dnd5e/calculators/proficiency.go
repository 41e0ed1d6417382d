package calculators

import (
	"sort"
	"strings"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/modifier"
	rulebook "github.com/KirkDiggler/dnd-character-sheet/internal/domain/rulebook/dnd5e"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
)

// ProficiencyInput is everything proficiency can come from.
type ProficiencyInput struct {
	// Classes in the order taken; saving throws come from the first class only.
	Classes    []*rulebook.ClassLevel
	Background *rulebook.Background
	Manual     rulebook.ProficiencyLists
	Languages  []string
	Sources    []modifier.Source
}

// Proficiencies answers proficiency questions for one character snapshot.
// Every answer is the OR of class lists, manual lists and modifier grants.
type Proficiencies struct {
	skills    map[shared.Skill]bool
	expertise map[shared.Skill]bool
	saves     map[shared.Attribute]bool
	armor     map[string]bool
	weapons   map[string]bool
	tools     map[string]bool
	languages map[string]string
}

// NewProficiencies aggregates the input into lookup sets
func NewProficiencies(in ProficiencyInput) *Proficiencies {
	p := &Proficiencies{
		skills:    map[shared.Skill]bool{},
		expertise: map[shared.Skill]bool{},
		saves:     map[shared.Attribute]bool{},
		armor:     map[string]bool{},
		weapons:   map[string]bool{},
		tools:     map[string]bool{},
		languages: map[string]string{},
	}

	for i, cl := range in.Classes {
		if cl == nil || cl.Class == nil {
			continue
		}
		if i == 0 {
			for _, attr := range cl.Class.SavingThrows {
				p.saves[attr] = true
			}
		}
		for _, a := range cl.Class.ArmorProficiencies {
			p.addArmor(a)
		}
		for _, w := range cl.Class.WeaponProficiencies {
			p.addWeapon(w)
		}
		for _, t := range cl.Class.ToolProficiencies {
			p.tools[normalizeKey(t)] = true
		}
		for _, s := range cl.Skills {
			p.skills[shared.NormalizeSkill(string(s))] = true
		}
		for _, s := range cl.Expertise {
			p.expertise[shared.NormalizeSkill(string(s))] = true
		}
	}

	if bg := in.Background; bg != nil {
		for _, s := range bg.SkillProficiencies {
			p.skills[shared.NormalizeSkill(string(s))] = true
		}
		for _, t := range bg.ToolProficiencies {
			p.tools[normalizeKey(t)] = true
		}
		for _, l := range bg.Languages {
			p.addLanguage(l)
		}
	}

	for _, a := range in.Manual.Armor {
		p.addArmor(a)
	}
	for _, w := range in.Manual.Weapons {
		p.addWeapon(w)
	}
	for _, t := range in.Manual.Tools {
		p.tools[normalizeKey(t)] = true
	}
	for _, l := range in.Languages {
		p.addLanguage(l)
	}

	modifier.Each(in.Sources, func(_ modifier.Source, m modifier.Modifier) {
		switch v := m.(type) {
		case modifier.SkillProficiency:
			p.skills[v.Skill] = true
		case modifier.Expertise:
			p.expertise[v.Skill] = true
		case modifier.SavingThrowProficiency:
			p.saves[v.Ability] = true
		case modifier.ArmorProficiency:
			p.addArmor(v.Category)
		case modifier.WeaponProficiency:
			p.addWeapon(v.Category)
		case modifier.Language:
			p.addLanguage(v.Name)
		}
	})

	return p
}

// normalizeKey lowercases and hyphenates: "Thieves' Tools" -> "thieves'-tools"
func normalizeKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}

func singular(s string) string {
	if strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss") {
		return strings.TrimSuffix(s, "s")
	}
	return s
}

func (p *Proficiencies) addArmor(raw string) {
	key := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case key == "all armor" || key == "all":
		p.armor["light"], p.armor["medium"], p.armor["heavy"] = true, true, true
	case strings.Contains(key, "shield"):
		p.armor["shield"] = true
	case strings.HasPrefix(key, "light"):
		p.armor["light"] = true
	case strings.HasPrefix(key, "medium"):
		p.armor["medium"] = true
	case strings.HasPrefix(key, "heavy"):
		p.armor["heavy"] = true
	default:
		p.armor[singular(normalizeKey(raw))] = true
	}
}

func (p *Proficiencies) addWeapon(raw string) {
	key := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(key, "simple"):
		p.weapons["simple"] = true
	case strings.HasPrefix(key, "martial"):
		p.weapons["martial"] = true
	default:
		p.weapons[singular(normalizeKey(raw))] = true
	}
}

func (p *Proficiencies) addLanguage(name string) {
	n := strings.TrimSpace(name)
	if n == "" {
		return
	}
	key := strings.ToLower(n)
	if _, ok := p.languages[key]; !ok {
		p.languages[key] = n
	}
}

// HasSkillProficiency reports proficiency (or expertise) in a skill
func (p *Proficiencies) HasSkillProficiency(skill shared.Skill) bool {
	s := shared.NormalizeSkill(string(skill))
	return p.skills[s] || p.expertise[s]
}

// HasExpertise reports expertise in a skill
func (p *Proficiencies) HasExpertise(skill shared.Skill) bool {
	return p.expertise[shared.NormalizeSkill(string(skill))]
}

// HasSavingThrowProficiency reports saving throw proficiency
func (p *Proficiencies) HasSavingThrowProficiency(attr shared.Attribute) bool {
	return p.saves[attr]
}

// HasArmorCategoryProficiency checks a category such as "light" or "shield"
func (p *Proficiencies) HasArmorCategoryProficiency(cat equipment.ArmorCategory) bool {
	return p.armor[string(cat)]
}

// HasArmorProficiency checks an armor item by category, then by its literal key.
// Items that are not armor need no proficiency.
func (p *Proficiencies) HasArmorProficiency(item *equipment.ItemDefinition) bool {
	if item == nil {
		return true
	}
	cat := item.ArmorCategory()
	if cat == equipment.ArmorCategoryUnknown {
		return true
	}
	if p.armor[string(cat)] {
		return true
	}
	return p.armor[singular(normalizeKey(item.ID))] || p.armor[singular(normalizeKey(item.Name))]
}

// HasWeaponProficiency checks a weapon by literal key or name, then by category.
func (p *Proficiencies) HasWeaponProficiency(item *equipment.ItemDefinition) bool {
	if item == nil {
		return false
	}
	if p.weapons[singular(normalizeKey(item.ID))] || p.weapons[singular(normalizeKey(item.Name))] {
		return true
	}
	cat := item.WeaponCategory()
	return cat != "" && p.weapons[cat]
}

// HasWeaponProficiencyFor checks a bare id or category string
func (p *Proficiencies) HasWeaponProficiencyFor(idOrCategory string) bool {
	return p.weapons[singular(normalizeKey(idOrCategory))]
}

// HasToolProficiency checks a tool by name
func (p *Proficiencies) HasToolProficiency(tool string) bool {
	return p.tools[normalizeKey(tool)]
}

// GrantedLanguages returns known languages sorted case-insensitively
func (p *Proficiencies) GrantedLanguages() []string {
	out := make([]string, 0, len(p.languages))
	for _, name := range p.languages {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}
