package rulebook

import "github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"

// Progression is how fast a class gains spell slots
type Progression string

const (
	ProgressionFull  Progression = "full"
	ProgressionHalf  Progression = "half"
	ProgressionThird Progression = "third"
	ProgressionPact  Progression = "pact"
)

type Spellcasting struct {
	Ability     shared.Attribute `json:"ability"`
	Progression Progression      `json:"progression"`
}

// fullCasterSlots[casterLevel-1][spellLevel-1]
var fullCasterSlots = [20][]int{
	{2},
	{3},
	{4, 2},
	{4, 3},
	{4, 3, 2},
	{4, 3, 3},
	{4, 3, 3, 1},
	{4, 3, 3, 2},
	{4, 3, 3, 3, 1},
	{4, 3, 3, 3, 2},
	{4, 3, 3, 3, 2, 1},
	{4, 3, 3, 3, 2, 1},
	{4, 3, 3, 3, 2, 1, 1},
	{4, 3, 3, 3, 2, 1, 1},
	{4, 3, 3, 3, 2, 1, 1, 1},
	{4, 3, 3, 3, 2, 1, 1, 1},
	{4, 3, 3, 3, 2, 1, 1, 1, 1},
	{4, 3, 3, 3, 3, 1, 1, 1, 1},
	{4, 3, 3, 3, 3, 2, 1, 1, 1},
	{4, 3, 3, 3, 3, 2, 2, 1, 1},
}

// SpellSlotsForCasterLevel returns max slots keyed by spell level
func SpellSlotsForCasterLevel(casterLevel int) map[int]int {
	slots := map[int]int{}
	if casterLevel < 1 {
		return slots
	}
	if casterLevel > 20 {
		casterLevel = 20
	}
	for i, n := range fullCasterSlots[casterLevel-1] {
		slots[i+1] = n
	}
	return slots
}

// CasterLevel combines slot-granting classes using the multiclass rules.
// A lone half or third caster rounds up, matching its own class table.
func CasterLevel(classes []*ClassLevel) int {
	full, half, third, casters := 0, 0, 0, 0
	for _, cl := range classes {
		sc := cl.Spellcasting()
		if sc == nil {
			continue
		}
		switch sc.Progression {
		case ProgressionFull:
			full += cl.Level
			casters++
		case ProgressionHalf:
			half += cl.Level
			casters++
		case ProgressionThird:
			third += cl.Level
			casters++
		}
	}

	if casters == 1 {
		switch {
		case half > 0:
			if half < 2 {
				return 0
			}
			return (half + 1) / 2
		case third > 0:
			if third < 3 {
				return 0
			}
			return (third + 2) / 3
		}
	}
	return full + half/2 + third/3
}

// PactSlots returns the number of pact slots and their level for a warlock level
func PactSlots(level int) (count, slotLevel int) {
	switch {
	case level < 1:
		return 0, 0
	case level == 1:
		return 1, 1
	case level == 2:
		return 2, 1
	case level <= 10:
		return 2, (level + 1) / 2
	case level <= 16:
		return 3, 5
	}
	return 4, 5
}
