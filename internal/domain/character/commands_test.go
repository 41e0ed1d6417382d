package character

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/modifier"
	rulebook "github.com/KirkDiggler/dnd-character-sheet/internal/domain/rulebook/dnd5e"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
	dnderr "github.com/KirkDiggler/dnd-character-sheet/internal/errors"
)

func TestSpellSlots(t *testing.T) {
	c := newCharacter(&rulebook.ClassLevel{Class: wizardClass, Level: 3})
	c.UsedSpellSlots = map[int]int{1: 2}
	require.Equal(t, 4, c.MaxSpellSlots()[1])

	used, _, err := ConsumeSpellSlot{Level: 1}.Apply(c)
	require.NoError(t, err)
	assert.Equal(t, 3, used.UsedSpellSlots[1])

	restored, _, err := RestoreSpellSlot{Level: 1}.Apply(used)
	require.NoError(t, err)
	assert.Equal(t, 2, restored.UsedSpellSlots[1])

	empty := newCharacter(&rulebook.ClassLevel{Class: wizardClass, Level: 3})
	same, ch, err := RestoreSpellSlot{Level: 1}.Apply(empty)
	require.NoError(t, err)
	assert.Same(t, empty, same)
	assert.True(t, ch.IsEmpty())

	_, _, err = ConsumeSpellSlot{Level: 3}.Apply(c)
	assert.True(t, dnderr.IsFailedPrecondition(err))

	c.UsedSpellSlots[2] = 2
	_, _, err = ConsumeSpellSlot{Level: 2}.Apply(c)
	assert.True(t, dnderr.Is(err, dnderr.CodeResourceExhausted))
}

func TestPactSlots(t *testing.T) {
	c := multiclass()

	count, level := c.PactSlots()
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, level)

	next, _, err := Execute(c, UsePactSlot{}, UsePactSlot{})
	require.NoError(t, err)
	assert.Equal(t, 2, next.UsedPactSlots)

	_, _, err = UsePactSlot{}.Apply(next)
	assert.True(t, dnderr.Is(err, dnderr.CodeResourceExhausted))

	next, _, err = RestorePactSlot{}.Apply(next)
	require.NoError(t, err)
	assert.Equal(t, 1, next.UsedPactSlots)
}

func TestVitals(t *testing.T) {
	c := newCharacter(&rulebook.ClassLevel{Class: fighterClass, Level: 1})
	c.HitPoints = HitPoints{Current: 10, Max: 20, Temporary: 4}

	t.Run("temporary hit points absorb first", func(t *testing.T) {
		next, _, err := Damage{Amount: 6}.Apply(c)
		require.NoError(t, err)
		assert.Equal(t, HitPoints{Current: 8, Max: 20}, next.HitPoints)
	})

	t.Run("damage floors at zero", func(t *testing.T) {
		next, _, err := Damage{Amount: 100}.Apply(c)
		require.NoError(t, err)
		assert.Equal(t, 0, next.HitPoints.Current)
	})

	t.Run("heal clamps to effective max", func(t *testing.T) {
		next, _, err := Heal{Amount: 100}.Apply(c)
		require.NoError(t, err)
		assert.Equal(t, 20, next.HitPoints.Current)
	})

	t.Run("healing from zero clears death saves", func(t *testing.T) {
		down := c.Clone()
		down.HitPoints.Current = 0
		down, _, err := RecordDeathSave{Success: false}.Apply(down)
		require.NoError(t, err)
		assert.Equal(t, 1, down.DeathSaves.Failures)

		up, ch, err := Heal{Amount: 3}.Apply(down)
		require.NoError(t, err)
		assert.Equal(t, DeathSaves{}, up.DeathSaves)
		assert.Contains(t, ch.Fields, FieldDeathSaves)
	})

	t.Run("death saves need zero hit points", func(t *testing.T) {
		_, _, err := RecordDeathSave{Success: true}.Apply(c)
		assert.True(t, dnderr.IsFailedPrecondition(err))
	})

	t.Run("hit dice add constitution per die", func(t *testing.T) {
		hurt := c.Clone()
		hurt.AbilityScores[shared.AttributeConstitution] = 14
		next, _, err := SpendHitDice{Count: 1, Rolled: 6}.Apply(hurt)
		require.NoError(t, err)
		assert.Equal(t, 18, next.HitPoints.Current)
		assert.Equal(t, 0, next.HitDice.Current)

		_, _, err = SpendHitDice{Count: 1, Rolled: 6}.Apply(next)
		assert.True(t, dnderr.Is(err, dnderr.CodeResourceExhausted))
	})

	t.Run("exhaustion range", func(t *testing.T) {
		_, _, err := SetExhaustion{Level: MaxExhaustion + 1}.Apply(c)
		assert.True(t, dnderr.IsInvalidArgument(err))

		next, _, err := SetExhaustion{Level: 3}.Apply(c)
		require.NoError(t, err)
		assert.Equal(t, 3, next.Exhaustion)
	})
}

func TestCurrency(t *testing.T) {
	c := newCharacter()
	c.Currency = shared.Currency{GP: 5, CP: 30}

	t.Run("negative balance rejected", func(t *testing.T) {
		next, _, err := AdjustCurrency{Denomination: shared.Gold, Delta: -6}.Apply(c)
		assert.True(t, dnderr.Is(err, dnderr.CodeInsufficientFunds))
		assert.Same(t, c, next)
	})

	t.Run("spend", func(t *testing.T) {
		next, ch, err := AdjustCurrency{Denomination: "gold", Delta: -2}.Apply(c)
		require.NoError(t, err)
		assert.Equal(t, 3, next.Currency.GP)
		assert.Equal(t, []Field{FieldCurrency}, ch.Fields)
	})

	t.Run("convert keeps remainder", func(t *testing.T) {
		next, _, err := ConvertCurrency{From: shared.Copper, To: shared.Silver, Amount: 25}.Apply(c)
		require.NoError(t, err)
		assert.Equal(t, shared.Currency{GP: 5, SP: 2, CP: 10}, next.Currency)
	})

	t.Run("convert more than owned", func(t *testing.T) {
		_, _, err := ConvertCurrency{From: shared.Gold, To: shared.Silver, Amount: 6}.Apply(c)
		assert.True(t, dnderr.Is(err, dnderr.CodeInsufficientFunds))
	})
}

func TestInventoryCommands(t *testing.T) {
	c := newCharacter(&rulebook.ClassLevel{Class: fighterClass, Level: 1})
	wearing(c, entry("sword", longsword), entry("shield", shield))
	c.Inventory = append(c.Inventory, entry("great", greatsword))

	next, ch, err := EquipItem{EntryID: "great"}.Apply(c)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sword", "shield", "great"}, ch.Entries)

	var equipped []string
	for _, e := range next.Inventory.Equipped() {
		equipped = append(equipped, e.ID)
	}
	assert.Equal(t, []string{"great"}, equipped)
	assert.Len(t, c.Inventory.Equipped(), 2)
}

func TestInventoryCommands_AttunementCap(t *testing.T) {
	c := newCharacter(&rulebook.ClassLevel{Class: fighterClass, Level: 1})
	for _, slot := range []shared.Slot{shared.SlotRing, shared.SlotNeck, shared.SlotBack, shared.SlotHead} {
		item := ring(string(slot)+"-item", true)
		item.Slot = slot
		c.Inventory = append(c.Inventory, entry(string(slot), item))
	}

	next, _, err := Execute(c, AttuneItem{EntryID: "ring"}, AttuneItem{EntryID: "neck"}, AttuneItem{EntryID: "back"})
	require.NoError(t, err)
	require.Equal(t, 3, next.Inventory.AttunedCount())

	after, ch, err := AttuneItem{EntryID: "head"}.Apply(next)
	assert.True(t, dnderr.Is(err, dnderr.CodeAttunementLimit))
	assert.Same(t, next, after)
	assert.True(t, ch.IsEmpty())
	assert.Equal(t, 3, after.Inventory.AttunedCount())
}

func TestInventoryCommands_UnequipClampsHitPoints(t *testing.T) {
	c := newCharacter(&rulebook.ClassLevel{Class: fighterClass, Level: 1})
	amulet := ring("amulet-of-health", false, modifier.Bonus{Target: modifier.TargetHPMax, Value: 5})
	amulet.Slot = shared.SlotNeck
	wearing(c, entry("amulet", amulet))
	c.HitPoints.Current = 25

	next, ch, err := UnequipItem{EntryID: "amulet"}.Apply(c)
	require.NoError(t, err)
	assert.Equal(t, 20, next.HitPoints.Current)
	assert.Contains(t, ch.Fields, FieldHitPoints)
	assert.Equal(t, []string{"amulet"}, ch.Entries)
}

func TestInventoryCommands_AcquireAndConsume(t *testing.T) {
	c := newCharacter()
	potion := &equipment.ItemDefinition{ID: "rations", Name: "Rations", Category: equipment.CategoryConsumable, Weight: 2}

	next, _, err := Execute(c,
		AcquireItem{Entry: &equipment.Entry{ID: "e1", Item: potion, Quantity: 2}},
		AcquireItem{Entry: &equipment.Entry{ID: "e2", Item: potion, Quantity: 3}},
	)
	require.NoError(t, err)
	require.Len(t, next.Inventory, 1)
	assert.Equal(t, 5, next.Inventory[0].Quantity)

	next, ch, err := ConsumeItem{EntryID: "e1", Count: 5}.Apply(next)
	require.NoError(t, err)
	assert.Empty(t, next.Inventory)
	assert.Equal(t, []string{"e1"}, ch.Removed)
}

func TestProgressionAndFeats(t *testing.T) {
	c := newCharacter()

	next, ch, err := SetClassLevel{ClassKey: "fighter", Level: 3, Class: fighterClass}.Apply(c)
	require.NoError(t, err)
	assert.Equal(t, 3, next.Level)
	assert.Equal(t, HitDice{Current: 3, Max: 3}, next.HitDice)
	assert.Contains(t, ch.Fields, FieldClasses)

	asi := &rulebook.Feat{Key: "ability_score_improvement", Modifiers: modifier.List{modifier.AbilityPointGrant{Points: 2}}}
	next, _, err = AddFeat{Feat: asi}.Apply(next)
	require.NoError(t, err)
	assert.Equal(t, 2, next.AbilityPoints)

	next, _, err = Execute(next,
		SpendAbilityPoint{Ability: shared.AttributeStrength},
		SpendAbilityPoint{Ability: "strength"},
	)
	require.NoError(t, err)
	assert.Equal(t, 12, next.BaseScore(shared.AttributeStrength))

	_, _, err = SpendAbilityPoint{Ability: shared.AttributeStrength}.Apply(next)
	assert.True(t, dnderr.Is(err, dnderr.CodeResourceExhausted))

	_, _, err = AddFeat{Feat: asi}.Apply(next)
	assert.True(t, dnderr.IsAlreadyExists(err))

	next, _, err = SetClassLevel{ClassKey: "fighter", Level: 0}.Apply(next)
	require.NoError(t, err)
	assert.Empty(t, next.Classes)
	assert.Equal(t, 0, next.HitDice.Max)
}

func TestChangeKeysAndRestore(t *testing.T) {
	c := newCharacter(&rulebook.ClassLevel{Class: fighterClass, Level: 1})
	c.Inventory = equipment.Inventory{entry("sword", longsword)}

	next, ch, err := Execute(c, Damage{Amount: 5}, UseResource{Key: "second_wind"}, EquipItem{EntryID: "sword"})
	require.NoError(t, err)
	assert.Equal(t, []string{"entry:sword", "field:hit_points", "resource:second_wind"}, ch.Keys())

	restored, err := Restore(next, c, ch)
	require.NoError(t, err)
	assert.Equal(t, c.HitPoints, restored.HitPoints)
	assert.Empty(t, restored.ResourceUsage)
	assert.False(t, restored.Inventory[0].Equipped)

	partial, err := Restore(next, c, ch.Only(map[string]bool{"field:hit_points": true}))
	require.NoError(t, err)
	assert.Equal(t, c.HitPoints, partial.HitPoints)
	assert.Equal(t, 1, partial.ResourceUsage["second_wind"])
}

func TestFieldRoundTrip(t *testing.T) {
	c := multiclass()
	c.ACOverride = intPtr(17)
	c.ResourceModifiers = []*ResourceModifier{{
		ID: "resource:vigor:0", ResourceKey: "vigor", Duration: shared.DurationLongRest,
		Modifiers: modifier.List{modifier.Bonus{Target: modifier.TargetHPMax, Value: 4}},
	}}

	out := &Character{ID: c.ID}
	for _, f := range AllFields {
		data, err := c.EncodeField(f)
		require.NoError(t, err, f)
		require.NoError(t, out.DecodeField(f, data), f)
	}
	assert.Equal(t, c.ArmorClass(), out.ArmorClass())
	assert.Equal(t, c.EffectiveMaxHP(), out.EffectiveMaxHP())
	assert.Equal(t, c.ResourceModifiers, out.ResourceModifiers)

	_, err := c.EncodeField("nope")
	require.Error(t, err)
	assert.True(t, dnderr.IsInternal(err))
	assert.Equal(t, "nope", dnderr.GetMeta(err)["field"])

	err = out.DecodeField(FieldHitPoints, []byte("{not json"))
	require.Error(t, err)
	assert.True(t, dnderr.IsInternal(err))
	assert.False(t, dnderr.IsRejection(err))
}

func TestExecute_AllOrNothing(t *testing.T) {
	c := newCharacter(&rulebook.ClassLevel{Class: fighterClass, Level: 1})
	hp := c.HitPoints

	got, ch, err := Execute(c, Damage{Amount: 3}, SetExhaustion{Level: MaxExhaustion + 1})
	require.Error(t, err)
	assert.Same(t, c, got)
	assert.True(t, ch.IsEmpty())
	assert.Equal(t, hp, c.HitPoints)
}

func TestRestore_ReplacesMapsAndKeepsSharedDefinitions(t *testing.T) {
	c := newCharacter(&rulebook.ClassLevel{Class: wizardClass, Level: 3})
	used, ch, err := ConsumeSpellSlot{Level: 1}.Apply(c)
	require.NoError(t, err)

	restored, err := Restore(used, c, ch)
	require.NoError(t, err)
	assert.Empty(t, restored.UsedSpellSlots)

	hitDie := wizardClass.HitDie
	other := c.Clone()
	other.Classes[0].Level = 5
	data, err := other.EncodeField(FieldClasses)
	require.NoError(t, err)
	require.NoError(t, used.DecodeField(FieldClasses, data))
	assert.Equal(t, 5, used.Classes[0].Level)
	assert.Equal(t, 3, c.Classes[0].Level)
	assert.NotSame(t, wizardClass, used.Classes[0].Class)
	assert.Equal(t, hitDie, wizardClass.HitDie)
}
