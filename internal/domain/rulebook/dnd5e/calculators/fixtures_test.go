package calculators_test

import (
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/equipment"
	rulebook "github.com/KirkDiggler/dnd-character-sheet/internal/domain/rulebook/dnd5e"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
)

var (
	longsword = &equipment.ItemDefinition{
		ID: "longsword", Name: "Longsword", Category: equipment.CategoryWeapon,
		Type: "Martial Melee Weapon", Slot: shared.SlotMainHand,
	}
	dagger = &equipment.ItemDefinition{
		ID: "dagger", Name: "Dagger", Category: equipment.CategoryWeapon,
		Tags: []string{"weapon:simple"}, Slot: shared.SlotOffHand,
	}
	greataxe = &equipment.ItemDefinition{
		ID: "greataxe", Name: "Greataxe", Category: equipment.CategoryWeapon,
		Type: "Martial Melee Weapon", Slot: shared.SlotTwoHanded,
	}
	shield = &equipment.ItemDefinition{
		ID: "shield", Name: "Shield", Category: equipment.CategoryArmor, Type: "Shield",
		Slot: shared.SlotOffHand, ArmorClass: &equipment.ArmorClass{Base: 2},
	}
	leather = &equipment.ItemDefinition{
		ID: "leather-armor", Name: "Leather Armor", Category: equipment.CategoryArmor, Type: "Light Armor",
		Slot: shared.SlotChest, ArmorClass: &equipment.ArmorClass{Base: 11, DexBonus: true},
	}
	scaleMail = &equipment.ItemDefinition{
		ID: "scale-mail", Name: "Scale Mail", Category: equipment.CategoryArmor, Tags: []string{"armor:medium"},
		Slot: shared.SlotChest, ArmorClass: &equipment.ArmorClass{Base: 14, DexBonus: true, MaxBonus: 2},
	}
	chainMail = &equipment.ItemDefinition{
		ID: "chain-mail", Name: "Chain Mail", Category: equipment.CategoryArmor, Type: "Heavy Armor",
		Slot: shared.SlotChest, ArmorClass: &equipment.ArmorClass{Base: 16},
	}
	plateNoData = &equipment.ItemDefinition{
		ID: "plate-armor", Name: "Plate", Category: equipment.CategoryArmor, Type: "Heavy Armor",
		Slot: shared.SlotChest,
	}
)

func classLevel(key string, level int, features ...string) *rulebook.ClassLevel {
	class := &rulebook.Class{Key: key, Name: key}
	for _, f := range features {
		class.Features = append(class.Features, &rulebook.Feature{Key: f, Level: 1})
	}
	return &rulebook.ClassLevel{Class: class, Level: level}
}
