package character

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/modifier"
	rulebook "github.com/KirkDiggler/dnd-character-sheet/internal/domain/rulebook/dnd5e"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
)

func multiclass() *Character {
	c := newCharacter(
		&rulebook.ClassLevel{Class: fighterClass, Level: 2},
		&rulebook.ClassLevel{Class: warlockClass, Level: 3},
	)
	c.AbilityScores[shared.AttributeCharisma] = 16
	return c
}

func TestShortRest_ResetsOnlyShortResources(t *testing.T) {
	c := multiclass()
	c.ResourceUsage = map[string]int{"second_wind": 1, "vigor": 2}
	c.UsedPactSlots = 2
	c.UsedSpellSlots = map[int]int{1: 1}
	c.ResourceModifiers = []*ResourceModifier{
		{ID: "a", Duration: shared.DurationShortRest, Modifiers: modifier.List{modifier.Bonus{Target: "ac", Value: 1}}},
		{ID: "b", Duration: shared.DurationLongRest},
		{ID: "c", Duration: shared.DurationPermanent},
	}

	next, ch, err := ShortRest{}.Apply(c)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"vigor": 2}, next.ResourceUsage)
	assert.Equal(t, 0, next.UsedPactSlots)
	assert.Equal(t, map[int]int{1: 1}, next.UsedSpellSlots)
	require.Len(t, next.ResourceModifiers, 2)
	assert.Equal(t, "b", next.ResourceModifiers[0].ID)
	assert.Equal(t, "c", next.ResourceModifiers[1].ID)
	assert.Contains(t, ch.Resources, "second_wind")
	assert.NotContains(t, ch.Resources, "vigor")
	assert.Equal(t, []string{"second_wind"}, c.ShortRestResources())
}

func TestShortRest_NoPactMagicLeavesPactSlots(t *testing.T) {
	c := newCharacter(&rulebook.ClassLevel{Class: fighterClass, Level: 1})
	c.UsedPactSlots = 1

	next, ch, err := ShortRest{}.Apply(c)
	require.NoError(t, err)
	assert.Equal(t, 1, next.UsedPactSlots)
	assert.NotContains(t, ch.Fields, FieldUsedPactSlots)
}

func TestShortRest_MirrorsAuthoritativeUsage(t *testing.T) {
	c := multiclass()
	c.ResourceUsage = map[string]int{"second_wind": 1, "vigor": 1}

	next, ch, err := ShortRest{AuthoritativeUsage: map[string]int{"vigor": 2}}.Apply(c)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"vigor": 2}, next.ResourceUsage)
	assert.Contains(t, ch.Resources, "vigor")
}

func TestLongRest_ClearsEverything(t *testing.T) {
	c := multiclass()
	c.HitPoints = HitPoints{Current: 3, Max: 30, Temporary: 5}
	c.HitDice.Current = 1
	c.Exhaustion = 2
	c.UsedPactSlots = 2
	c.UsedSpellSlots = map[int]int{1: 2}
	c.ResourceUsage = map[string]int{"second_wind": 1, "vigor": 2}
	c.DeathSaves = DeathSaves{Successes: 1, Failures: 2}
	c.ResourceModifiers = []*ResourceModifier{
		{ID: "resource:vigor:0", Duration: shared.DurationPermanent,
			Modifiers: modifier.List{modifier.Bonus{Target: modifier.TargetHPMax, Value: 4}}},
	}

	next, _, err := LongRest{}.Apply(c)
	require.NoError(t, err)

	assert.Empty(t, next.ResourceUsage)
	assert.Empty(t, next.UsedSpellSlots)
	assert.Empty(t, next.ResourceModifiers)
	assert.Equal(t, 0, next.UsedPactSlots)
	assert.Equal(t, HitPoints{Current: 30, Max: 30}, next.HitPoints)
	assert.Equal(t, next.HitDice.Max, next.HitDice.Current)
	assert.Equal(t, 1, next.Exhaustion)
	assert.Equal(t, DeathSaves{}, next.DeathSaves)
}

func TestRests_AreIdempotent(t *testing.T) {
	c := multiclass()
	c.ResourceUsage = map[string]int{"second_wind": 1, "vigor": 2}
	c.UsedPactSlots = 1

	once, _, err := ShortRest{}.Apply(c)
	require.NoError(t, err)
	twice, _, err := ShortRest{}.Apply(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)

	once, _, err = LongRest{}.Apply(c)
	require.NoError(t, err)
	twice, _, err = LongRest{}.Apply(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestLongRest_EndState(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := multiclass()
		c.HitPoints = HitPoints{
			Current:   rapid.IntRange(0, 40).Draw(t, "current"),
			Max:       rapid.IntRange(1, 40).Draw(t, "max"),
			Temporary: rapid.IntRange(0, 10).Draw(t, "temp"),
		}
		exhaustion := rapid.IntRange(0, MaxExhaustion).Draw(t, "exhaustion")
		c.Exhaustion = exhaustion
		c.UsedPactSlots = rapid.IntRange(0, 2).Draw(t, "pact")
		c.UsedSpellSlots = map[int]int{1: rapid.IntRange(0, 4).Draw(t, "slots")}
		c.ResourceUsage = map[string]int{
			"second_wind": rapid.IntRange(0, 1).Draw(t, "second_wind"),
			"vigor":       rapid.IntRange(0, 2).Draw(t, "vigor"),
		}
		if rapid.Bool().Draw(t, "boosted") {
			c.ResourceModifiers = []*ResourceModifier{{
				ID:        "resource:vigor:0",
				Duration:  shared.Duration(rapid.SampledFrom([]string{"short_rest", "long_rest", "permanent"}).Draw(t, "duration")),
				Modifiers: modifier.List{modifier.Bonus{Target: modifier.TargetHPMax, Value: 4}},
			}}
		}

		next, _, err := LongRest{}.Apply(c)
		if err != nil {
			t.Fatalf("long rest failed: %v", err)
		}
		if len(next.ResourceUsage) != 0 || len(next.UsedSpellSlots) != 0 || next.UsedPactSlots != 0 {
			t.Fatalf("usage not cleared: %v %v %d", next.ResourceUsage, next.UsedSpellSlots, next.UsedPactSlots)
		}
		if len(next.ResourceModifiers) != 0 {
			t.Fatalf("resource modifiers survived")
		}
		if next.HitPoints.Temporary != 0 || next.HitPoints.Current != next.HitPoints.Max {
			t.Fatalf("hit points %+v", next.HitPoints)
		}
		if next.Exhaustion != max(0, exhaustion-1) {
			t.Fatalf("exhaustion %d from %d", next.Exhaustion, exhaustion)
		}
	})
}
