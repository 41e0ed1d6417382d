package character

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/formula"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/modifier"
	rulebook "github.com/KirkDiggler/dnd-character-sheet/internal/domain/rulebook/dnd5e"
	dnderr "github.com/KirkDiggler/dnd-character-sheet/internal/errors"
)

// UseResource spends one use of a class resource and runs its onUse effects.
type UseResource struct {
	Key string
}

func (UseResource) Name() string { return "use_resource" }

func (u UseResource) Apply(c *Character) (*Character, Change, error) {
	cl, res, ok := c.findResource(u.Key)
	if !ok {
		return c, Change{}, dnderr.NotFoundf("resource %s not available", u.Key)
	}
	maxUses := c.resourceMax(cl, res)
	if c.ResourceUsage[res.Key] >= maxUses {
		return c, Change{}, dnderr.ResourceExhaustedf("%s has no uses left", res.Name).
			WithMeta("resource", res.Key).
			WithMeta("max", maxUses)
	}

	return mutate(c, func(next *Character) (Change, error) {
		next.ResourceUsage[res.Key]++
		ch := Change{Resources: []string{res.Key}}
		vars := next.formulaVars(cl)
		for i, effect := range res.OnUse {
			ch = ch.Merge(next.applyEffect(res, i, effect, vars))
		}
		return ch, nil
	})
}

func resourceModifierID(key string, idx int) string {
	return fmt.Sprintf("resource:%s:%d", key, idx)
}

func (c *Character) applyEffect(res *rulebook.ClassResource, idx int, effect *rulebook.ResourceEffect, vars formula.Vars) Change {
	switch effect.Type {
	case rulebook.EffectGrantHP:
		// Malformed amounts count as zero
		amount, _ := formula.EvalString(effect.Amount, vars)
		if amount <= 0 {
			return Change{}
		}
		if effect.Mode == rulebook.HPModeBonus {
			c.replaceResourceModifier(&ResourceModifier{
				ID:          resourceModifierID(res.Key, idx),
				ResourceKey: res.Key,
				Name:        res.Name,
				Duration:    effect.EffectiveDuration(),
				Modifiers:   modifier.List{modifier.Bonus{Target: modifier.TargetHPMax, Value: amount}},
			})
			c.HitPoints.Current = min(c.HitPoints.Current+amount, c.EffectiveMaxHP())
			return Change{Fields: []Field{FieldResourceModifiers, FieldHitPoints}}
		}
		c.HitPoints.Temporary = max(c.HitPoints.Temporary, amount)
		return Change{Fields: []Field{FieldHitPoints}}

	case rulebook.EffectApplyModifiers:
		if len(effect.Modifiers) == 0 {
			return Change{}
		}
		c.replaceResourceModifier(&ResourceModifier{
			ID:          resourceModifierID(res.Key, idx),
			ResourceKey: res.Key,
			Name:        res.Name,
			Duration:    effect.EffectiveDuration(),
			Modifiers:   append(modifier.List(nil), effect.Modifiers...),
		})
		return Change{Fields: []Field{FieldResourceModifiers}}
	}
	return Change{}
}

// replaceResourceModifier drops earlier modifiers from the same resource
// effect so repeated uses never stack.
func (c *Character) replaceResourceModifier(rm *ResourceModifier) {
	kept := c.ResourceModifiers[:0:0]
	for _, existing := range c.ResourceModifiers {
		if existing.ID != rm.ID {
			kept = append(kept, existing)
		}
	}
	c.ResourceModifiers = append(kept, rm)
}

// RestoreResource gives back uses without resting, e.g. from a feature.
// Count 0 restores everything.
type RestoreResource struct {
	Key   string
	Count int
}

func (RestoreResource) Name() string { return "restore_resource" }

func (r RestoreResource) Apply(c *Character) (*Character, Change, error) {
	_, res, ok := c.findResource(r.Key)
	if !ok {
		return c, Change{}, dnderr.NotFoundf("resource %s not available", r.Key)
	}
	if r.Count < 0 {
		return c, Change{}, dnderr.InvalidArgumentf("restore count must not be negative, got %d", r.Count)
	}
	return mutate(c, func(next *Character) (Change, error) {
		used := next.ResourceUsage[res.Key]
		if r.Count == 0 || r.Count >= used {
			delete(next.ResourceUsage, res.Key)
		} else {
			next.ResourceUsage[res.Key] = used - r.Count
		}
		return Change{Resources: []string{res.Key}}, nil
	})
}

// RemoveResourceModifier ends one active resource modifier early, such as
// when rage ends.
type RemoveResourceModifier struct {
	ID string
}

func (RemoveResourceModifier) Name() string { return "remove_resource_modifier" }

func (r RemoveResourceModifier) Apply(c *Character) (*Character, Change, error) {
	found := false
	for _, rm := range c.ResourceModifiers {
		if strings.EqualFold(rm.ID, r.ID) {
			found = true
		}
	}
	if !found {
		return c, Change{}, dnderr.NotFoundf("resource modifier %s not active", r.ID)
	}
	return mutate(c, func(next *Character) (Change, error) {
		kept := next.ResourceModifiers[:0:0]
		for _, rm := range next.ResourceModifiers {
			if !strings.EqualFold(rm.ID, r.ID) {
				kept = append(kept, rm)
			}
		}
		next.ResourceModifiers = kept
		next.clampHitPoints()
		return Change{Fields: []Field{FieldResourceModifiers, FieldHitPoints}}, nil
	})
}

// clampHitPoints keeps current HP within the effective maximum
func (c *Character) clampHitPoints() {
	if m := c.EffectiveMaxHP(); c.HitPoints.Current > m {
		c.HitPoints.Current = m
	}
}
