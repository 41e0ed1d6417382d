package character

import (
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
)

// ShortRest resets short-recharge resources and pact slots and ends
// short_rest modifiers. Standard spell slots are untouched.
//
// When AuthoritativeUsage is set it is the store's post-rest usage and
// replaces the locally computed reset.
type ShortRest struct {
	AuthoritativeUsage map[string]int
}

func (ShortRest) Name() string { return "short_rest" }

func (r ShortRest) Apply(c *Character) (*Character, Change, error) {
	return mutate(c, func(next *Character) (Change, error) {
		ch := Change{}
		for _, ar := range next.Resources() {
			if ar.Resource.RechargeOn == shared.RestTypeShort {
				delete(next.ResourceUsage, ar.Resource.Key)
				ch.Resources = append(ch.Resources, ar.Resource.Key)
			}
		}
		if r.AuthoritativeUsage != nil {
			ch.Resources = appendUnique(ch.Resources, mirrorUsage(next, r.AuthoritativeUsage)...)
		}

		if next.HasPactMagic() {
			next.UsedPactSlots = 0
			ch = ch.With(FieldUsedPactSlots)
		}

		next.ResourceModifiers = endModifiers(next.ResourceModifiers, shared.RestTypeShort)
		next.clampHitPoints()
		return ch.With(FieldResourceModifiers, FieldHitPoints), nil
	})
}

// ShortRestResources lists the resource keys a short rest resets
func (c *Character) ShortRestResources() []string {
	var keys []string
	for _, ar := range c.Resources() {
		if ar.Resource.RechargeOn == shared.RestTypeShort {
			keys = append(keys, ar.Resource.Key)
		}
	}
	return keys
}

// LongRest is the universal reset: every resource, every resource modifier,
// hit points, hit dice and all slots. Exhaustion drops by one.
type LongRest struct {
	AuthoritativeUsage map[string]int
}

func (LongRest) Name() string { return "long_rest" }

func (r LongRest) Apply(c *Character) (*Character, Change, error) {
	return mutate(c, func(next *Character) (Change, error) {
		ch := Change{}
		for key := range c.ResourceUsage {
			ch.Resources = append(ch.Resources, key)
		}
		for _, ar := range next.Resources() {
			ch.Resources = appendUnique(ch.Resources, ar.Resource.Key)
		}
		next.ResourceUsage = map[string]int{}
		if r.AuthoritativeUsage != nil {
			ch.Resources = appendUnique(ch.Resources, mirrorUsage(next, r.AuthoritativeUsage)...)
		}

		next.ResourceModifiers = endModifiers(next.ResourceModifiers, shared.RestTypeLong)
		next.HitPoints.Current = next.EffectiveMaxHP()
		next.HitPoints.Temporary = 0
		next.HitDice.Current = next.HitDice.Max
		next.UsedSpellSlots = map[int]int{}
		next.UsedPactSlots = 0
		next.Exhaustion = max(0, next.Exhaustion-1)
		next.DeathSaves = DeathSaves{}

		return ch.With(
			FieldResourceModifiers, FieldHitPoints, FieldHitDice, FieldUsedSpellSlots,
			FieldUsedPactSlots, FieldExhaustion, FieldDeathSaves,
		), nil
	})
}

func endModifiers(mods []*ResourceModifier, rest shared.RestType) []*ResourceModifier {
	var kept []*ResourceModifier
	for _, rm := range mods {
		if !rm.Duration.EndsOn(rest) {
			kept = append(kept, rm)
		}
	}
	return kept
}

// mirrorUsage copies the store's usage rows into c and returns their keys
func mirrorUsage(c *Character, usage map[string]int) []string {
	var keys []string
	for key := range c.ResourceUsage {
		if _, ok := usage[key]; !ok {
			delete(c.ResourceUsage, key)
			keys = append(keys, key)
		}
	}
	for key, used := range usage {
		if used > 0 {
			c.ResourceUsage[key] = used
		} else {
			delete(c.ResourceUsage, key)
		}
		keys = append(keys, key)
	}
	return keys
}
