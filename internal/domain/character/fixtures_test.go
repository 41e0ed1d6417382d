package character

import (
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/modifier"
	rulebook "github.com/KirkDiggler/dnd-character-sheet/internal/domain/rulebook/dnd5e"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
)

func intPtr(v int) *int { return &v }

var (
	barbarianClass = &rulebook.Class{
		Key:                 "barbarian",
		Name:                "Barbarian",
		HitDie:              12,
		SavingThrows:        []shared.Attribute{shared.AttributeStrength, shared.AttributeConstitution},
		ArmorProficiencies:  []string{"Light Armor", "Medium Armor", "Shields"},
		WeaponProficiencies: []string{"Simple Weapons", "Martial Weapons"},
		Features: []*rulebook.Feature{
			{Key: "rage", Name: "Rage", Level: 1},
			{Key: "unarmored_defense", Name: "Unarmored Defense", Level: 1},
		},
		Resources: []*rulebook.ClassResource{
			{
				Key:         "rage",
				Name:        "Rage",
				MaxFormula:  "2",
				RechargeOn:  shared.RestTypeLong,
				UnlockLevel: 1,
				OnUse: []*rulebook.ResourceEffect{{
					Type:      rulebook.EffectApplyModifiers,
					Duration:  shared.DurationShortRest,
					Modifiers: modifier.List{modifier.Bonus{Target: "melee_damage", Value: 2}},
				}},
			},
		},
	}

	fighterClass = &rulebook.Class{
		Key:                 "fighter",
		Name:                "Fighter",
		HitDie:              10,
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
				Key:         "vigor",
				Name:        "Vigor",
				MaxFormula:  "prof",
				RechargeOn:  shared.RestTypeLong,
				UnlockLevel: 1,
				OnUse: []*rulebook.ResourceEffect{{
					Type:   rulebook.EffectGrantHP,
					Mode:   rulebook.HPModeBonus,
					Amount: "level * 2",
				}},
			},
		},
	}

	wizardClass = &rulebook.Class{
		Key:          "wizard",
		Name:         "Wizard",
		HitDie:       6,
		SavingThrows: []shared.Attribute{shared.AttributeIntelligence, shared.AttributeWisdom},
		Spellcasting: &rulebook.Spellcasting{Ability: shared.AttributeIntelligence, Progression: rulebook.ProgressionFull},
	}

	warlockClass = &rulebook.Class{
		Key:                "warlock",
		Name:               "Warlock",
		HitDie:             8,
		ArmorProficiencies: []string{"Light Armor"},
		Spellcasting:       &rulebook.Spellcasting{Ability: shared.AttributeCharisma, Progression: rulebook.ProgressionPact},
	}
)

func newCharacter(classes ...*rulebook.ClassLevel) *Character {
	c := New("char-1", "owner-1", "Tester")
	c.Classes = classes
	c.Level = c.TotalLevel()
	c.HitPoints = HitPoints{Current: 20, Max: 20}
	c.HitDice = HitDice{Current: c.Level, Max: c.Level}
	return c
}

func entry(id string, item *equipment.ItemDefinition) *equipment.Entry {
	return &equipment.Entry{ID: id, Item: item, Quantity: 1, IsIdentified: true, Charges: item.MaxCharges}
}

func ring(id string, requiresAttunement bool, mods ...modifier.Modifier) *equipment.ItemDefinition {
	return &equipment.ItemDefinition{
		ID:                 id,
		Name:               id,
		Category:           equipment.CategoryGear,
		Slot:               shared.SlotRing,
		IsMagical:          true,
		RequiresAttunement: requiresAttunement,
		Modifiers:          mods,
	}
}

func wearing(c *Character, entries ...*equipment.Entry) *Character {
	for _, e := range entries {
		e.Equipped = true
		c.Inventory = append(c.Inventory, e)
	}
	return c
}

var (
	chainMail = &equipment.ItemDefinition{
		ID: "chain-mail", Name: "Chain Mail", Category: equipment.CategoryArmor, Type: "Heavy Armor",
		Slot: shared.SlotChest, ArmorClass: &equipment.ArmorClass{Base: 16}, Weight: 55,
	}
	longsword = &equipment.ItemDefinition{
		ID: "longsword", Name: "Longsword", Category: equipment.CategoryWeapon,
		Type: "Martial Melee Weapon", Slot: shared.SlotMainHand, Weight: 3,
	}
	shield = &equipment.ItemDefinition{
		ID: "shield", Name: "Shield", Category: equipment.CategoryArmor, Type: "Shield",
		Slot: shared.SlotOffHand, ArmorClass: &equipment.ArmorClass{Base: 2}, Weight: 6,
	}
	greatsword = &equipment.ItemDefinition{
		ID: "greatsword", Name: "Greatsword", Category: equipment.CategoryWeapon,
		Type: "Martial Melee Weapon", Slot: shared.SlotTwoHanded, Weight: 6,
	}
)
