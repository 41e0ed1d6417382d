package shared

type Slot string

const (
	SlotNone      Slot = ""
	SlotMainHand  Slot = "main_hand"
	SlotOffHand   Slot = "off_hand"
	SlotTwoHanded Slot = "two_handed"
	SlotChest     Slot = "chest"
	SlotHead      Slot = "head"
	SlotHands     Slot = "hands"
	SlotFeet      Slot = "feet"
	SlotNeck      Slot = "neck"
	SlotBack      Slot = "back"
	SlotWaist     Slot = "waist"
	SlotRing      Slot = "ring"
)

// ConflictsWith reports whether two equipped items in these slots cannot coexist.
// Two-handed items contend with either hand; every other slot only with itself.
func (s Slot) ConflictsWith(other Slot) bool {
	if s == SlotNone || other == SlotNone {
		return false
	}
	if s == other {
		return true
	}
	switch s {
	case SlotTwoHanded:
		return other == SlotMainHand || other == SlotOffHand
	case SlotMainHand, SlotOffHand:
		return other == SlotTwoHanded
	}
	return false
}

// IsHand reports whether the slot is held in one or both hands
func (s Slot) IsHand() bool {
	return s == SlotMainHand || s == SlotOffHand || s == SlotTwoHanded
}
