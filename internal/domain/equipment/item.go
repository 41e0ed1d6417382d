package equipment

import (
	"strings"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/modifier"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
)

// Category is the broad kind of an item
type Category string

const (
	CategoryWeapon     Category = "weapon"
	CategoryArmor      Category = "armor"
	CategoryGear       Category = "gear"
	CategoryConsumable Category = "consumable"
	CategoryTreasure   Category = "treasure"
)

type ArmorCategory string

const (
	ArmorCategoryLight   ArmorCategory = "light"
	ArmorCategoryMedium  ArmorCategory = "medium"
	ArmorCategoryHeavy   ArmorCategory = "heavy"
	ArmorCategoryShield  ArmorCategory = "shield"
	ArmorCategoryUnknown ArmorCategory = ""
)

// ArmorClass is the AC data carried by armor and shields. MaxBonus 0 means no cap.
type ArmorClass struct {
	Base     int  `json:"base"`
	DexBonus bool `json:"dex_bonus"`
	MaxBonus int  `json:"max_bonus"`
}

// ItemDefinition is the reference-data record shared by every inventory entry
// of the same item.
type ItemDefinition struct {
	ID                      string        `json:"id"`
	Name                    string        `json:"name"`
	Description             string        `json:"description,omitempty"`
	Category                Category      `json:"category"`
	Type                    string        `json:"type,omitempty"`
	Tags                    []string      `json:"tags,omitempty"`
	Slot                    shared.Slot   `json:"slot,omitempty"`
	Weight                  float64       `json:"weight"`
	CostCopper              int           `json:"cost_cp,omitempty"`
	Properties              []string      `json:"properties,omitempty"`
	ArmorClass              *ArmorClass   `json:"armor_class,omitempty"`
	RequiresAttunement      bool          `json:"requires_attunement,omitempty"`
	IsMagical               bool          `json:"is_magical,omitempty"`
	IsCursed                bool          `json:"is_cursed,omitempty"`
	MaxCharges              int           `json:"max_charges,omitempty"`
	UnidentifiedName        string        `json:"unidentified_name,omitempty"`
	UnidentifiedDescription string        `json:"unidentified_description,omitempty"`
	Modifiers               modifier.List `json:"modifiers,omitempty"`
}

// HasTag matches tags case-insensitively
func (d *ItemDefinition) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// HasProperty checks if the weapon has a specific property
func (d *ItemDefinition) HasProperty(prop string) bool {
	for _, p := range d.Properties {
		if strings.EqualFold(p, prop) {
			return true
		}
	}
	return false
}

// TagValue returns the suffix of the first "prefix:value" tag
func (d *ItemDefinition) TagValue(prefix string) (string, bool) {
	want := strings.ToLower(prefix) + ":"
	for _, t := range d.Tags {
		lower := strings.ToLower(t)
		if strings.HasPrefix(lower, want) {
			return strings.TrimPrefix(lower, want), true
		}
	}
	return "", false
}

// ArmorCategory prefers an "armor:<category>" tag and falls back to the
// free-text type. Armor whose type names no weight class is treated as light.
func (d *ItemDefinition) ArmorCategory() ArmorCategory {
	if d == nil {
		return ArmorCategoryUnknown
	}
	if v, ok := d.TagValue("armor"); ok {
		switch v {
		case "light", "medium", "heavy":
			return ArmorCategory(v)
		case "shield", "shields":
			return ArmorCategoryShield
		}
	}

	text := strings.ToLower(d.Type)
	if strings.Contains(text, "shield") || strings.EqualFold(d.ID, "shield") {
		return ArmorCategoryShield
	}
	if d.Category != CategoryArmor {
		return ArmorCategoryUnknown
	}
	switch {
	case strings.Contains(text, "heavy"):
		return ArmorCategoryHeavy
	case strings.Contains(text, "medium"):
		return ArmorCategoryMedium
	}
	return ArmorCategoryLight
}

// IsShield reports whether the item is a shield
func (d *ItemDefinition) IsShield() bool {
	return d.ArmorCategory() == ArmorCategoryShield
}

// IsBodyArmor reports whether the item is worn armor, not a shield
func (d *ItemDefinition) IsBodyArmor() bool {
	switch d.ArmorCategory() {
	case ArmorCategoryLight, ArmorCategoryMedium, ArmorCategoryHeavy:
		return true
	}
	return false
}

// IsWeapon reports whether the item is a weapon
func (d *ItemDefinition) IsWeapon() bool {
	if d == nil {
		return false
	}
	if _, ok := d.TagValue("weapon"); ok {
		return true
	}
	return d.Category == CategoryWeapon
}

// WeaponCategory returns "simple" or "martial" from tags, then from the type text.
func (d *ItemDefinition) WeaponCategory() string {
	if v, ok := d.TagValue("weapon"); ok {
		return v
	}
	text := strings.ToLower(d.Type)
	switch {
	case strings.Contains(text, "martial"):
		return "martial"
	case strings.Contains(text, "simple"):
		return "simple"
	}
	return ""
}

// Clone returns a deep copy
func (d *ItemDefinition) Clone() *ItemDefinition {
	if d == nil {
		return nil
	}
	out := *d
	out.Tags = append([]string(nil), d.Tags...)
	out.Properties = append([]string(nil), d.Properties...)
	out.Modifiers = append(modifier.List(nil), d.Modifiers...)
	if d.ArmorClass != nil {
		ac := *d.ArmorClass
		out.ArmorClass = &ac
	}
	return &out
}
