package shared

import "strings"

// Skill is a lowercase snake_case skill key, e.g. "sleight_of_hand"
type Skill string

var skillAbilities = map[Skill]Attribute{
	"acrobatics":      AttributeDexterity,
	"animal_handling": AttributeWisdom,
	"arcana":          AttributeIntelligence,
	"athletics":       AttributeStrength,
	"deception":       AttributeCharisma,
	"history":         AttributeIntelligence,
	"insight":         AttributeWisdom,
	"intimidation":    AttributeCharisma,
	"investigation":   AttributeIntelligence,
	"medicine":        AttributeWisdom,
	"nature":          AttributeIntelligence,
	"perception":      AttributeWisdom,
	"performance":     AttributeCharisma,
	"persuasion":      AttributeCharisma,
	"religion":        AttributeIntelligence,
	"sleight_of_hand": AttributeDexterity,
	"stealth":         AttributeDexterity,
	"survival":        AttributeWisdom,
}

// NormalizeSkill folds "Sleight of Hand", "sleight-of-hand" and "skill-sleight-of-hand" to one key
func NormalizeSkill(s string) Skill {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.TrimPrefix(key, "skill-")
	key = strings.TrimPrefix(key, "skill_")
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	return Skill(key)
}

// Ability returns the ability the skill is keyed off
func (s Skill) Ability() (Attribute, bool) {
	attr, ok := skillAbilities[NormalizeSkill(string(s))]
	return attr, ok
}

// Skills returns every known skill key
func Skills() []Skill {
	out := make([]Skill, 0, len(skillAbilities))
	for s := range skillAbilities {
		out = append(out, s)
	}
	return out
}
