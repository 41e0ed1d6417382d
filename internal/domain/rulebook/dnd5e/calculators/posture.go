package calculators

import (
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
)

// ArmorState is the one armor tag a character always has
type ArmorState string

const (
	Unarmored     ArmorState = "unarmored"
	LightArmored  ArmorState = "light_armored"
	MediumArmored ArmorState = "medium_armored"
	HeavyArmored  ArmorState = "heavy_armored"
)

// HandState is the optional weapon-handling tag
type HandState string

const (
	NoHands      HandState = ""
	OneHanded    HandState = "one_handed"
	TwoHanded    HandState = "two_handed"
	DualWielding HandState = "dual_wielding"
)

// TagShielded marks an equipped shield
const TagShielded = "shielded"

// Posture is the equipment-derived state used by AC formulas and features.
type Posture struct {
	Armor    ArmorState
	Shielded bool
	Hands    HandState

	BodyArmor *equipment.ItemDefinition
	Shield    *equipment.ItemDefinition
}

// Armored reports whether body armor is worn
func (p Posture) Armored() bool {
	return p.Armor != Unarmored && p.Armor != ""
}

// Tags lists the armor tag, then shielded and the hand tag when present
func (p Posture) Tags() []string {
	tags := []string{string(p.Armor)}
	if p.Shielded {
		tags = append(tags, TagShielded)
	}
	if p.Hands != NoHands {
		tags = append(tags, string(p.Hands))
	}
	return tags
}

// Has reports whether tag is among Tags
func (p Posture) Has(tag string) bool {
	for _, t := range p.Tags() {
		if t == tag {
			return true
		}
	}
	return false
}

// DetectPosture classifies the equipped items.
func DetectPosture(equipped []*equipment.ItemDefinition) Posture {
	p := Posture{Armor: Unarmored}

	var mainWeapon, offWeapon, twoHander bool
	for _, item := range equipped {
		if item == nil {
			continue
		}
		switch item.Slot {
		case shared.SlotChest:
			if p.BodyArmor == nil && item.IsBodyArmor() {
				p.BodyArmor = item
				p.Armor = armorState(item.ArmorCategory())
			}
		case shared.SlotOffHand:
			if item.IsShield() {
				p.Shielded = true
				p.Shield = item
			} else if item.IsWeapon() {
				offWeapon = true
			}
		case shared.SlotMainHand:
			if item.IsWeapon() {
				mainWeapon = true
			}
		case shared.SlotTwoHanded:
			if item.IsWeapon() {
				twoHander = true
			}
		}
	}

	switch {
	case twoHander:
		p.Hands = TwoHanded
	case mainWeapon && offWeapon:
		p.Hands = DualWielding
	case mainWeapon && !offWeapon && !p.Shielded:
		p.Hands = OneHanded
	}
	return p
}

func armorState(cat equipment.ArmorCategory) ArmorState {
	switch cat {
	case equipment.ArmorCategoryHeavy:
		return HeavyArmored
	case equipment.ArmorCategoryMedium:
		return MediumArmored
	}
	return LightArmored
}
