package rulebook

import (
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/modifier"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
)

type Race struct {
	Key       string        `json:"key"`
	Name      string        `json:"name"`
	Speed     int           `json:"speed"`
	Languages []string      `json:"languages,omitempty"`
	Modifiers modifier.List `json:"modifiers,omitempty"`
}

type Background struct {
	Key                string         `json:"key"`
	Name               string         `json:"name"`
	SkillProficiencies []shared.Skill `json:"skill_proficiencies,omitempty"`
	ToolProficiencies  []string       `json:"tool_proficiencies,omitempty"`
	Languages          []string       `json:"languages,omitempty"`
	Modifiers          modifier.List  `json:"modifiers,omitempty"`
}

type Feat struct {
	Key         string        `json:"key"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Modifiers   modifier.List `json:"modifiers,omitempty"`
}

// Trait is a free-form character trait that may carry modifiers
type Trait struct {
	Key         string        `json:"key"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Modifiers   modifier.List `json:"modifiers,omitempty"`
}

// AbilityPoints sums ability_point_grant modifiers
func AbilityPoints(mods modifier.List) int {
	total := 0
	for _, m := range mods {
		if g, ok := m.(modifier.AbilityPointGrant); ok && modifier.Applies(g) {
			total += g.Points
		}
	}
	return total
}

// ProficiencyLists holds armor, weapon and tool proficiency strings as written
// on a sheet or a class, e.g. "Light Armor", "Martial Weapons", "Longswords".
type ProficiencyLists struct {
	Armor   []string `json:"armor,omitempty"`
	Weapons []string `json:"weapons,omitempty"`
	Tools   []string `json:"tools,omitempty"`
}
