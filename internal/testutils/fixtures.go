package testutils

import (
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/character"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/modifier"
	rulebook "github.com/KirkDiggler/dnd-character-sheet/internal/domain/rulebook/dnd5e"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
)

// CreateTestRace creates a test race with a +2 STR bonus
func CreateTestRace(key, name string) *rulebook.Race {
	return &rulebook.Race{
		Key:   key,
		Name:  name,
		Speed: 30,
		Modifiers: modifier.List{
			modifier.Bonus{Target: string(shared.AttributeStrength), Value: 2},
		},
		Languages: []string{"Common"},
	}
}

// CreateTestClass creates a martial class with one short-rest resource
func CreateTestClass(key, name string, hitDie int) *rulebook.Class {
	return &rulebook.Class{
		Key:                 key,
		Name:                name,
		HitDie:              hitDie,
		SavingThrows:        []shared.Attribute{shared.AttributeStrength, shared.AttributeConstitution},
		ArmorProficiencies:  []string{"All Armor", "Shields"},
		WeaponProficiencies: []string{"Simple Weapons", "Martial Weapons"},
		Resources: []*rulebook.ClassResource{
			{
				Key:         "second_wind",
				Name:        "Second Wind",
				MaxFormula:  "1",
				RechargeOn:  shared.RestTypeShort,
				UnlockLevel: 1,
				OnUse: []*rulebook.ResourceEffect{{
					Type:   rulebook.EffectGrantHP,
					Mode:   rulebook.HPModeTemporary,
					Amount: "level + 5",
				}},
			},
			{
				Key:         "action_surge",
				Name:        "Action Surge",
				MaxFormula:  "1",
				RechargeOn:  shared.RestTypeLong,
				UnlockLevel: 2,
			},
		},
	}
}

// CreateTestItem creates a plain weapon definition
func CreateTestItem(id, name string, slot shared.Slot) *equipment.ItemDefinition {
	return &equipment.ItemDefinition{
		ID:       id,
		Name:     name,
		Category: equipment.CategoryWeapon,
		Type:     "Martial Melee Weapon",
		Slot:     slot,
		Weight:   3,
	}
}

// CreateTestEntry wraps an item in an identified inventory entry
func CreateTestEntry(id string, item *equipment.ItemDefinition) *equipment.Entry {
	return &equipment.Entry{
		ID:           id,
		Item:         item,
		Quantity:     1,
		IsIdentified: true,
		Charges:      item.MaxCharges,
	}
}

// CreateTestCharacter creates a level-N fighter with a race, an owned
// longsword and full hit points
func CreateTestCharacter(id, ownerID string, level int) *character.Character {
	c := character.New(id, ownerID, "Test Character")
	c.Race = CreateTestRace("human", "Human")
	c.Classes = []*rulebook.ClassLevel{{Class: CreateTestClass("fighter", "Fighter", 10), Level: level}}
	c.Level = level
	c.HitPoints = character.HitPoints{Current: 10 * level, Max: 10 * level}
	c.HitDice = character.HitDice{Current: level, Max: level}
	c.Inventory = equipment.Inventory{
		CreateTestEntry("entry-longsword", CreateTestItem("longsword", "Longsword", shared.SlotMainHand)),
	}
	return c
}
