package rulebook

import (
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/modifier"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
)

type Class struct {
	Key                 string             `json:"key"`
	Name                string             `json:"name"`
	HitDie              int                `json:"hit_die"`
	SavingThrows        []shared.Attribute `json:"saving_throws,omitempty"`
	ArmorProficiencies  []string           `json:"armor_proficiencies,omitempty"`
	WeaponProficiencies []string           `json:"weapon_proficiencies,omitempty"`
	ToolProficiencies   []string           `json:"tool_proficiencies,omitempty"`
	Spellcasting        *Spellcasting      `json:"spellcasting,omitempty"`
	Features            []*Feature         `json:"features,omitempty"`
	Resources           []*ClassResource   `json:"resources,omitempty"`
}

// Subclass adds features, resources and sometimes spellcasting to its class
type Subclass struct {
	Key          string           `json:"key"`
	Name         string           `json:"name"`
	Spellcasting *Spellcasting    `json:"spellcasting,omitempty"`
	Features     []*Feature       `json:"features,omitempty"`
	Resources    []*ClassResource `json:"resources,omitempty"`
}

// Feature is a class or subclass feature gained at Level
type Feature struct {
	Key         string        `json:"key"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Level       int           `json:"level"`
	Modifiers   modifier.List `json:"modifiers,omitempty"`
}

// ClassLevel is a character's standing in one class
type ClassLevel struct {
	Class    *Class         `json:"class"`
	Subclass *Subclass      `json:"subclass,omitempty"`
	Level    int            `json:"level"`
	Skills   []shared.Skill `json:"skills,omitempty"`
	// Expertise lists skills chosen for expertise through class features
	Expertise []shared.Skill `json:"expertise,omitempty"`
}

// Key returns the class key, or "" for a malformed entry
func (cl *ClassLevel) Key() string {
	if cl == nil || cl.Class == nil {
		return ""
	}
	return cl.Class.Key
}

// Features returns class and subclass features unlocked at the current level
func (cl *ClassLevel) Features() []*Feature {
	if cl == nil || cl.Class == nil {
		return nil
	}
	var out []*Feature
	for _, f := range cl.Class.Features {
		if f.Level <= cl.Level {
			out = append(out, f)
		}
	}
	if cl.Subclass != nil {
		for _, f := range cl.Subclass.Features {
			if f.Level <= cl.Level {
				out = append(out, f)
			}
		}
	}
	return out
}

// HasFeature reports whether a feature with key is unlocked
func (cl *ClassLevel) HasFeature(key string) bool {
	for _, f := range cl.Features() {
		if f.Key == key {
			return true
		}
	}
	return false
}

// Resources returns the class and subclass resources unlocked at the current level
func (cl *ClassLevel) Resources() []*ClassResource {
	if cl == nil || cl.Class == nil {
		return nil
	}
	var out []*ClassResource
	add := func(list []*ClassResource) {
		for _, r := range list {
			if r.UnlockLevel <= cl.Level {
				out = append(out, r)
			}
		}
	}
	add(cl.Class.Resources)
	if cl.Subclass != nil {
		add(cl.Subclass.Resources)
	}
	return out
}

// Spellcasting returns the class's spellcasting, or the subclass's for
// third casters such as the Eldritch Knight
func (cl *ClassLevel) Spellcasting() *Spellcasting {
	if cl == nil || cl.Class == nil {
		return nil
	}
	if cl.Class.Spellcasting != nil {
		return cl.Class.Spellcasting
	}
	if cl.Subclass != nil {
		return cl.Subclass.Spellcasting
	}
	return nil
}
