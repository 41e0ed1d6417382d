package character

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"pgregory.net/rapid"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/modifier"
	rulebook "github.com/KirkDiggler/dnd-character-sheet/internal/domain/rulebook/dnd5e"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
	dnderr "github.com/KirkDiggler/dnd-character-sheet/internal/errors"
)

type ResourceTestSuite struct {
	suite.Suite
	fighter *Character
}

func (s *ResourceTestSuite) SetupTest() {
	s.fighter = newCharacter(&rulebook.ClassLevel{Class: fighterClass, Level: 1})
}

func (s *ResourceTestSuite) TestUseResource_TemporaryHPTakesHigher() {
	next, ch, err := UseResource{Key: "second_wind"}.Apply(s.fighter)
	s.Require().NoError(err)

	s.Equal(1, next.ResourceUsage["second_wind"])
	s.Equal(6, next.HitPoints.Temporary)
	s.Equal([]string{"second_wind"}, ch.Resources)
	s.Contains(ch.Fields, FieldHitPoints)

	// input untouched
	s.Equal(0, s.fighter.ResourceUsage["second_wind"])
	s.Equal(0, s.fighter.HitPoints.Temporary)

	s.fighter.HitPoints.Temporary = 10
	next, _, err = UseResource{Key: "second_wind"}.Apply(s.fighter)
	s.Require().NoError(err)
	s.Equal(10, next.HitPoints.Temporary)
}

func (s *ResourceTestSuite) TestFormulaLevels() {
	surge := &rulebook.ClassResource{
		Key: "surge", MaxFormula: "class_level", UnlockLevel: 1, RechargeOn: shared.RestTypeShort,
		OnUse: []*rulebook.ResourceEffect{{Type: rulebook.EffectGrantHP, Mode: rulebook.HPModeTemporary, Amount: "level"}},
	}
	fighter := *fighterClass
	fighter.Resources = append([]*rulebook.ClassResource{surge}, fighterClass.Resources...)
	c := newCharacter(
		&rulebook.ClassLevel{Class: &fighter, Level: 2},
		&rulebook.ClassLevel{Class: warlockClass, Level: 3},
	)

	s.Equal(2, c.ResourceMaxUses("surge"))

	next, _, err := UseResource{Key: "surge"}.Apply(c)
	s.Require().NoError(err)
	s.Equal(5, next.HitPoints.Temporary)

	next, _, err = UseResource{Key: "second_wind"}.Apply(c)
	s.Require().NoError(err)
	s.Equal(10, next.HitPoints.Temporary)
}

func (s *ResourceTestSuite) TestUseResource_AtMaxIsRejected() {
	s.fighter.ResourceUsage["second_wind"] = 1

	next, ch, err := UseResource{Key: "second_wind"}.Apply(s.fighter)
	s.Require().Error(err)
	s.True(dnderr.Is(err, dnderr.CodeResourceExhausted))
	s.Same(s.fighter, next)
	s.True(ch.IsEmpty())
	s.Equal(1, next.ResourceUsage["second_wind"])
}

func (s *ResourceTestSuite) TestUseResource_Unknown() {
	_, _, err := UseResource{Key: "rage"}.Apply(s.fighter)
	s.True(dnderr.IsNotFound(err))
}

func (s *ResourceTestSuite) TestUseResource_BonusHPDoesNotStack() {
	first, _, err := UseResource{Key: "vigor"}.Apply(s.fighter)
	s.Require().NoError(err)
	s.Equal(22, first.EffectiveMaxHP())
	s.Equal(22, first.HitPoints.Current)

	second, _, err := UseResource{Key: "vigor"}.Apply(first)
	s.Require().NoError(err)
	s.Len(second.ResourceModifiers, 1)
	s.Equal(22, second.EffectiveMaxHP())
	s.Equal(22, second.HitPoints.Current)
	s.Equal(2, second.ResourceUsage["vigor"])
}

func (s *ResourceTestSuite) TestUseResource_BonusHealClampsToNewMax() {
	s.fighter.HitPoints.Current = 5

	next, _, err := UseResource{Key: "vigor"}.Apply(s.fighter)
	s.Require().NoError(err)
	s.Equal(7, next.HitPoints.Current)
}

func (s *ResourceTestSuite) TestUseResource_ApplyModifiers() {
	barb := newCharacter(&rulebook.ClassLevel{Class: barbarianClass, Level: 1})

	raging, ch, err := UseResource{Key: "rage"}.Apply(barb)
	s.Require().NoError(err)
	s.Require().Len(raging.ResourceModifiers, 1)
	s.Equal("resource:rage:0", raging.ResourceModifiers[0].ID)
	s.Equal(shared.DurationShortRest, raging.ResourceModifiers[0].Duration)
	s.Contains(ch.Fields, FieldResourceModifiers)

	calm, _, err := RemoveResourceModifier{ID: "resource:rage:0"}.Apply(raging)
	s.Require().NoError(err)
	s.Empty(calm.ResourceModifiers)
	s.Equal(1, calm.ResourceUsage["rage"])
}

func (s *ResourceTestSuite) TestRestoreResource() {
	s.fighter.ResourceUsage["vigor"] = 2

	next, _, err := RestoreResource{Key: "vigor", Count: 1}.Apply(s.fighter)
	s.Require().NoError(err)
	s.Equal(1, next.ResourceUsage["vigor"])

	next, _, err = RestoreResource{Key: "vigor"}.Apply(next)
	s.Require().NoError(err)
	s.NotContains(next.ResourceUsage, "vigor")
}

func TestResourceSuite(t *testing.T) {
	suite.Run(t, new(ResourceTestSuite))
}

func TestUseResource_MalformedFormulaIsZero(t *testing.T) {
	class := &rulebook.Class{Key: "odd", Resources: []*rulebook.ClassResource{{
		Key: "odd", MaxFormula: "2", UnlockLevel: 1, RechargeOn: shared.RestTypeLong,
		OnUse: []*rulebook.ResourceEffect{{Type: rulebook.EffectGrantHP, Mode: rulebook.HPModeTemporary, Amount: "level; rm -rf"}},
	}}}
	c := newCharacter(&rulebook.ClassLevel{Class: class, Level: 3})

	next, _, err := UseResource{Key: "odd"}.Apply(c)
	require.NoError(t, err)
	assert.Equal(t, 0, next.HitPoints.Temporary)
	assert.Equal(t, 1, next.ResourceUsage["odd"])
}

func TestUseResource_NeverExceedsMax(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		level := rapid.IntRange(1, 20).Draw(t, "level")
		uses := rapid.IntRange(0, 10).Draw(t, "uses")

		c := newCharacter(&rulebook.ClassLevel{Class: fighterClass, Level: level})
		maxUses := c.ResourceMaxUses("vigor")
		for i := 0; i < uses; i++ {
			next, _, err := UseResource{Key: "vigor"}.Apply(c)
			if err != nil {
				if !dnderr.Is(err, dnderr.CodeResourceExhausted) {
					t.Fatalf("unexpected error: %v", err)
				}
				if next != c {
					t.Fatalf("rejected use returned a new snapshot")
				}
			}
			c = next
		}
		if got := c.ResourceUsage["vigor"]; got != min(uses, maxUses) {
			t.Fatalf("usage %d, want %d", got, min(uses, maxUses))
		}
		bonus := 0
		for _, rm := range c.ResourceModifiers {
			for _, m := range rm.Modifiers {
				if b, ok := m.(modifier.Bonus); ok && b.Target == modifier.TargetHPMax {
					bonus += b.Value
				}
			}
		}
		if uses > 0 && bonus != level*2 {
			t.Fatalf("hp bonus %d, want %d", bonus, level*2)
		}
	})
}
