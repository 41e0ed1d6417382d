package shared

import (
	"math"
	"strings"
)

// Attribute is one of the six ability keys. The lowercase key doubles as the
// modifier target for that ability.
type Attribute string

var Attributes = []Attribute{AttributeStrength, AttributeDexterity, AttributeConstitution, AttributeIntelligence, AttributeWisdom, AttributeCharisma}

const (
	AttributeNone         Attribute = ""
	AttributeStrength     Attribute = "str"
	AttributeDexterity    Attribute = "dex"
	AttributeConstitution Attribute = "con"
	AttributeIntelligence Attribute = "int"
	AttributeWisdom       Attribute = "wis"
	AttributeCharisma     Attribute = "cha"
)

var attributeAliases = map[string]Attribute{
	"strength":     AttributeStrength,
	"dexterity":    AttributeDexterity,
	"constitution": AttributeConstitution,
	"intelligence": AttributeIntelligence,
	"wisdom":       AttributeWisdom,
	"charisma":     AttributeCharisma,
}

// ParseAttribute accepts either the short key or the full ability name, in any case.
func ParseAttribute(s string) (Attribute, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, attr := range Attributes {
		if string(attr) == key {
			return attr, true
		}
	}
	attr, ok := attributeAliases[key]
	return attr, ok
}

// String returns the short key
func (a Attribute) String() string {
	return string(a)
}

// Modifier converts an ability score into its modifier, floor((score-10)/2).
func Modifier(score int) int {
	return int(math.Floor(float64(score-10) / 2))
}

// ProficiencyBonus returns the proficiency bonus for a total character level.
func ProficiencyBonus(level int) int {
	if level < 1 {
		level = 1
	}
	return 2 + (level-1)/4
}
