package calculators

import (
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/modifier"
)

// ResolveStat folds every applicable modifier aimed at target into base.
//
// The highest override raises the base (it never lowers it), bonuses and
// ability increases are summed on top, and the smallest ability-increase cap
// clamps the final result. Every reduction is commutative so source order never matters.
func ResolveStat(base int, target string, sources []modifier.Source) int {
	floor := base
	bonus := 0
	limit, capped := 0, false

	modifier.Each(sources, func(_ modifier.Source, m modifier.Modifier) {
		switch v := m.(type) {
		case modifier.Override:
			if modifier.MatchesTarget(v.Target, target) && v.Value > floor {
				floor = v.Value
			}
		case modifier.Bonus:
			if modifier.MatchesTarget(v.Target, target) {
				bonus += v.Value
			}
		case modifier.AbilityIncrease:
			if !modifier.MatchesTarget(string(v.Ability), target) {
				return
			}
			bonus += v.Value
			if v.Max != nil && (!capped || *v.Max < limit) {
				limit, capped = *v.Max, true
			}
		}
	})

	result := floor + bonus
	if capped && result > limit {
		result = limit
	}
	return result
}

// ResolveBonus sums plain bonuses for target; overrides and caps are ignored.
func ResolveBonus(target string, sources []modifier.Source) int {
	total := 0
	modifier.Each(sources, func(_ modifier.Source, m modifier.Modifier) {
		if b, ok := m.(modifier.Bonus); ok && modifier.MatchesTarget(b.Target, target) {
			total += b.Value
		}
	})
	return total
}

// ResolveHPPerLevel sums hp_per_level bonuses
func ResolveHPPerLevel(sources []modifier.Source) int {
	return ResolveBonus(modifier.TargetHPPerLevel, sources)
}

// ResolveFlatHPBonus sums hp_max bonuses
func ResolveFlatHPBonus(sources []modifier.Source) int {
	return ResolveBonus(modifier.TargetHPMax, sources)
}

// EffectiveMaxHP is the stored maximum plus per-level and flat bonuses.
func EffectiveMaxHP(storedMax, level int, sources []modifier.Source) int {
	return storedMax + level*ResolveHPPerLevel(sources) + ResolveFlatHPBonus(sources)
}
