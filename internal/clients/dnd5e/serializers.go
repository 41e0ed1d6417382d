package dnd5e

import (
	"fmt"
	"strings"

	"github.com/fadedpez/dnd5e-api/clients/dnd5e"
	apiEntities "github.com/fadedpez/dnd5e-api/entities"
	"go.uber.org/zap"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/modifier"
	rulebook "github.com/KirkDiggler/dnd-character-sheet/internal/domain/rulebook/dnd5e"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
)

// the SRD does not carry the medium armor dex cap
const mediumArmorMaxDex = 2

func apiEquipmentToItem(input dnd5e.EquipmentInterface) *equipment.ItemDefinition {
	if input == nil {
		return nil
	}

	switch equip := input.(type) {
	case *apiEntities.Equipment:
		return apiGearToItem(equip)
	case *apiEntities.Weapon:
		return apiWeaponToItem(equip)
	case *apiEntities.Armor:
		return apiArmorToItem(equip)
	default:
		return nil
	}
}

func apiWeaponToItem(input *apiEntities.Weapon) *equipment.ItemDefinition {
	item := &equipment.ItemDefinition{
		ID:         input.Key,
		Name:       input.Name,
		Category:   equipment.CategoryWeapon,
		Type:       weaponType(input.WeaponCategory, input.WeaponRange),
		Slot:       shared.SlotMainHand,
		Weight:     float64(input.Weight),
		CostCopper: apiCostToCopper(input.Cost),
	}
	for _, prop := range input.Properties {
		if prop == nil || prop.Key == "" {
			continue
		}
		item.Tags = append(item.Tags, prop.Key)
		item.Properties = append(item.Properties, prop.Name)
		if prop.Key == "two-handed" {
			item.Slot = shared.SlotTwoHanded
		}
	}
	return item
}

// weaponType builds the free-text type the proficiency rules read,
// e.g. "Martial Melee Weapon"
func weaponType(category, weaponRange string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{category, weaponRange} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, strings.ToUpper(p[:1])+strings.ToLower(p[1:]))
		}
	}
	return strings.Join(append(parts, "Weapon"), " ")
}

func apiArmorToItem(input *apiEntities.Armor) *equipment.ItemDefinition {
	item := &equipment.ItemDefinition{
		ID:         input.Key,
		Name:       input.Name,
		Category:   equipment.CategoryArmor,
		Slot:       shared.SlotChest,
		Weight:     float64(input.Weight),
		CostCopper: apiCostToCopper(input.Cost),
		ArmorClass: &equipment.ArmorClass{
			Base:     int(input.ArmorClass.Base),
			DexBonus: input.ArmorClass.DexBonus,
		},
	}
	if input.StealthDisadvantage {
		item.Tags = append(item.Tags, "stealth-disadvantage")
	}

	switch strings.ToLower(strings.TrimSpace(input.ArmorCategory)) {
	case "shield":
		item.Type = "Shield"
		item.Slot = shared.SlotOffHand
	case "light":
		item.Type = "Light Armor"
	case "medium":
		item.Type = "Medium Armor"
		item.ArmorClass.MaxBonus = mediumArmorMaxDex
	case "heavy":
		item.Type = "Heavy Armor"
	default:
		item.Type = fmt.Sprintf("%s Armor", input.ArmorCategory)
	}
	return item
}

func apiGearToItem(input *apiEntities.Equipment) *equipment.ItemDefinition {
	return &equipment.ItemDefinition{
		ID:         input.Key,
		Name:       input.Name,
		Category:   equipment.CategoryGear,
		Weight:     float64(input.Weight),
		CostCopper: apiCostToCopper(input.Cost),
	}
}

func apiCostToCopper(input *apiEntities.Cost) int {
	if input == nil {
		return 0
	}
	denom, err := shared.ParseDenomination(input.Unit)
	if err != nil {
		return 0
	}
	return int(input.Quantity) * denom.CopperValue()
}

func (c *client) apiRaceToRace(input *apiEntities.Race) *rulebook.Race {
	race := &rulebook.Race{
		Key:   input.Key,
		Name:  input.Name,
		Speed: int(input.Speed),
	}
	for _, bonus := range input.AbilityBonuses {
		if bonus == nil || bonus.AbilityScore == nil {
			continue
		}
		attr, ok := shared.ParseAttribute(bonus.AbilityScore.Key)
		if !ok {
			c.logger.Warn("skipping racial bonus with unknown ability",
				zap.String("race", input.Key),
				zap.String("ability", bonus.AbilityScore.Key))
			continue
		}
		race.Modifiers = append(race.Modifiers, modifier.AbilityIncrease{Ability: attr, Value: int(bonus.Bonus)})
	}
	return race
}

func apiClassToClass(input *apiEntities.Class) *rulebook.Class {
	class := &rulebook.Class{
		Key:    input.Key,
		Name:   input.Name,
		HitDie: int(input.HitDie),
	}
	for _, prof := range input.Proficiencies {
		if prof == nil || prof.Key == "" {
			continue
		}
		switch kind, value := classifyProficiency(prof.Key, prof.Name); kind {
		case proficiencySave:
			class.SavingThrows = append(class.SavingThrows, shared.Attribute(value))
		case proficiencyArmor:
			class.ArmorProficiencies = append(class.ArmorProficiencies, value)
		case proficiencyWeapon:
			class.WeaponProficiencies = append(class.WeaponProficiencies, value)
		case proficiencyTool:
			class.ToolProficiencies = append(class.ToolProficiencies, value)
		}
	}
	return class
}

type proficiencyKind int

const (
	proficiencySave proficiencyKind = iota
	proficiencyArmor
	proficiencyWeapon
	proficiencyTool
)

// classifyProficiency sorts an SRD proficiency reference by its key, e.g.
// "saving-throw-str", "medium-armor", "martial-weapons", "thieves-tools".
func classifyProficiency(key, name string) (proficiencyKind, string) {
	key = strings.ToLower(key)
	switch {
	case strings.HasPrefix(key, "saving-throw-"):
		if attr, ok := shared.ParseAttribute(strings.TrimPrefix(key, "saving-throw-")); ok {
			return proficiencySave, string(attr)
		}
		return proficiencyTool, name
	case strings.Contains(key, "armor") || key == "shields":
		return proficiencyArmor, name
	case strings.Contains(key, "tools") || strings.Contains(key, "kit") ||
		strings.Contains(key, "supplies") || strings.HasSuffix(key, "-set"):
		return proficiencyTool, name
	default:
		return proficiencyWeapon, name
	}
}
