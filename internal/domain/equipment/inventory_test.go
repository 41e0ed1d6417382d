package equipment_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"pgregory.net/rapid"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/modifier"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
	dnderr "github.com/KirkDiggler/dnd-character-sheet/internal/errors"
)

var (
	longsword = &equipment.ItemDefinition{
		ID: "longsword", Name: "Longsword", Category: equipment.CategoryWeapon,
		Type: "Martial Melee Weapon", Slot: shared.SlotMainHand, Weight: 3,
	}
	greatsword = &equipment.ItemDefinition{
		ID: "greatsword", Name: "Greatsword", Category: equipment.CategoryWeapon,
		Type: "Martial Melee Weapon", Tags: []string{"weapon:martial"}, Slot: shared.SlotTwoHanded, Weight: 6,
		Properties: []string{"two-handed", "heavy"},
	}
	shield = &equipment.ItemDefinition{
		ID: "shield", Name: "Shield", Category: equipment.CategoryArmor, Type: "Shield",
		Slot: shared.SlotOffHand, Weight: 6, ArmorClass: &equipment.ArmorClass{Base: 2},
	}
	chainMail = &equipment.ItemDefinition{
		ID: "chain-mail", Name: "Chain Mail", Category: equipment.CategoryArmor, Type: "Heavy Armor",
		Slot: shared.SlotChest, Weight: 55, ArmorClass: &equipment.ArmorClass{Base: 16},
	}
	leather = &equipment.ItemDefinition{
		ID: "leather-armor", Name: "Leather Armor", Category: equipment.CategoryArmor, Type: "Light Armor",
		Slot: shared.SlotChest, Weight: 10, ArmorClass: &equipment.ArmorClass{Base: 11, DexBonus: true},
	}
	torch = &equipment.ItemDefinition{ID: "torch", Name: "Torch", Category: equipment.CategoryGear, Weight: 1}
)

func attunable(id string, slot shared.Slot) *equipment.ItemDefinition {
	return &equipment.ItemDefinition{
		ID: id, Name: id, Category: equipment.CategoryGear, Slot: slot,
		RequiresAttunement: true, IsMagical: true,
		Modifiers: modifier.List{modifier.Bonus{Target: "ac", Value: 1}},
	}
}

type InventoryTestSuite struct {
	suite.Suite
}

func TestInventoryTestSuite(t *testing.T) {
	suite.Run(t, new(InventoryTestSuite))
}

func (s *InventoryTestSuite) TestEquip_TwoHandedDisplacesBothHands() {
	inv := equipment.Inventory{
		{ID: "sword", Item: longsword, Quantity: 1, Equipped: true},
		{ID: "shield", Item: shield, Quantity: 1, Equipped: true},
		{ID: "great", Item: greatsword, Quantity: 1},
	}

	next, tr, err := inv.Equip("great")
	s.Require().NoError(err)

	sword, _ := next.Get("sword")
	sh, _ := next.Get("shield")
	great, _ := next.Get("great")
	s.False(sword.Equipped)
	s.False(sh.Equipped)
	s.True(great.Equipped)
	s.ElementsMatch([]string{"sword", "shield", "great"}, tr.Changed)

	original, _ := inv.Get("sword")
	s.True(original.Equipped, "input inventory must not change")
}

func (s *InventoryTestSuite) TestEquip_OneHandedDisplacesTwoHanded() {
	inv := equipment.Inventory{
		{ID: "great", Item: greatsword, Quantity: 1, Equipped: true},
		{ID: "shield", Item: shield, Quantity: 1},
	}

	next, _, err := inv.Equip("shield")
	s.Require().NoError(err)

	great, _ := next.Get("great")
	sh, _ := next.Get("shield")
	s.False(great.Equipped)
	s.True(sh.Equipped)
}

func (s *InventoryTestSuite) TestEquip_SameSlotSwaps() {
	inv := equipment.Inventory{
		{ID: "chain", Item: chainMail, Quantity: 1, Equipped: true},
		{ID: "leather", Item: leather, Quantity: 1},
	}

	next, _, err := inv.Equip("leather")
	s.Require().NoError(err)
	s.Len(next.Equipped(), 1)
	s.Equal("leather", next.Equipped()[0].ID)
}

func (s *InventoryTestSuite) TestEquip_AttunementCapRejects() {
	inv := equipment.Inventory{
		{ID: "a", Item: attunable("cloak", shared.SlotBack), Quantity: 1, Equipped: true, IsAttuned: true},
		{ID: "b", Item: attunable("amulet", shared.SlotNeck), Quantity: 1, Equipped: true, IsAttuned: true},
		{ID: "c", Item: attunable("belt", shared.SlotWaist), Quantity: 1, Equipped: true, IsAttuned: true},
		{ID: "d", Item: attunable("ring", shared.SlotRing), Quantity: 1},
	}

	next, _, err := inv.Equip("d")
	s.Require().Error(err)
	s.True(dnderr.Is(err, dnderr.CodeAttunementLimit))
	s.Equal(inv, next)

	d, _ := next.Get("d")
	s.False(d.Equipped)
}

func (s *InventoryTestSuite) TestEquip_AlreadyAttunedBypassesCap() {
	inv := equipment.Inventory{
		{ID: "a", Item: attunable("cloak", shared.SlotBack), Quantity: 1, Equipped: true},
		{ID: "b", Item: attunable("amulet", shared.SlotNeck), Quantity: 1, Equipped: true},
		{ID: "c", Item: attunable("belt", shared.SlotWaist), Quantity: 1, Equipped: true},
		{ID: "d", Item: attunable("ring", shared.SlotRing), Quantity: 1, IsAttuned: true},
	}

	_, _, err := inv.Equip("d")
	s.NoError(err)
}

func (s *InventoryTestSuite) TestEquip_UnknownEntry() {
	_, _, err := equipment.Inventory{}.Equip("missing")
	s.True(dnderr.IsNotFound(err))
}

func (s *InventoryTestSuite) TestAttune() {
	inv := equipment.Inventory{
		{ID: "a", Item: attunable("cloak", shared.SlotBack), Quantity: 1, IsAttuned: true},
		{ID: "b", Item: attunable("amulet", shared.SlotNeck), Quantity: 1, IsAttuned: true},
		{ID: "c", Item: attunable("belt", shared.SlotWaist), Quantity: 1},
		{ID: "d", Item: attunable("ring", shared.SlotRing), Quantity: 1},
		{ID: "torch", Item: torch, Quantity: 1},
	}

	next, _, err := inv.Attune("c")
	s.Require().NoError(err)
	s.Equal(3, next.AttunedCount())

	rejected, _, err := next.Attune("d")
	s.True(dnderr.Is(err, dnderr.CodeAttunementLimit))
	s.Equal(3, rejected.AttunedCount())
	s.Equal(3, next.AttunedCount())
	d, _ := next.Get("d")
	s.False(d.IsAttuned)

	_, _, err = inv.Attune("torch")
	s.True(dnderr.IsFailedPrecondition(err))

	released, _, err := next.Unattune("a")
	s.Require().NoError(err)
	s.Equal(2, released.AttunedCount())
}

func (s *InventoryTestSuite) TestSources_RequireEquippedAndAttuned() {
	inv := equipment.Inventory{
		{ID: "worn-unattuned", Item: attunable("cloak", shared.SlotBack), Quantity: 1, Equipped: true},
		{ID: "attuned-unworn", Item: attunable("ring", shared.SlotRing), Quantity: 1, IsAttuned: true},
		{ID: "worn-attuned", Item: attunable("amulet", shared.SlotNeck), Quantity: 1, Equipped: true, IsAttuned: true},
	}

	sources := inv.Sources()
	s.Require().Len(sources, 1)
	s.Equal("worn-attuned", sources[0].ID)
	s.Equal(modifier.SourceItem, sources[0].Kind)
}

func (s *InventoryTestSuite) TestIdentify_RevealsName() {
	wand := &equipment.ItemDefinition{
		ID: "wand-of-web", Name: "Wand of Web", Category: equipment.CategoryGear, IsMagical: true,
		UnidentifiedName: "Knotted Wand", Description: "Casts web", UnidentifiedDescription: "A twisted stick",
	}
	inv := equipment.Inventory{{ID: "w", Item: wand, Quantity: 1}}

	w, _ := inv.Get("w")
	s.Equal("Knotted Wand", w.DisplayName())
	s.Equal("A twisted stick", w.DisplayDescription())

	next, _, err := inv.Identify("w")
	s.Require().NoError(err)
	w, _ = next.Get("w")
	s.Equal("Wand of Web", w.DisplayName())
	s.Equal("Casts web", w.DisplayDescription())
}

func (s *InventoryTestSuite) TestConsume_ZeroRemovesEntry() {
	inv := equipment.Inventory{{ID: "t", Item: torch, Quantity: 2}}

	next, tr, err := inv.Consume("t", 1)
	s.Require().NoError(err)
	t, _ := next.Get("t")
	s.Equal(1, t.Quantity)
	s.Empty(tr.Removed)

	next, tr, err = next.Consume("t", 1)
	s.Require().NoError(err)
	s.Empty(next)
	s.Equal([]string{"t"}, tr.Removed)

	_, _, err = inv.Consume("t", 3)
	s.True(dnderr.Is(err, dnderr.CodeResourceExhausted))
}

func (s *InventoryTestSuite) TestAdd_StacksPlainItems() {
	inv := equipment.Inventory{{ID: "t1", Item: torch, Quantity: 2}}

	next, tr, err := inv.Add(&equipment.Entry{ID: "t2", Item: torch, Quantity: 3})
	s.Require().NoError(err)
	s.Len(next, 1)
	s.Equal("t1", tr.EntryID)
	s.Equal(5, next[0].Quantity)

	next, _, err = next.Add(&equipment.Entry{ID: "s", Item: longsword, Quantity: 1})
	s.Require().NoError(err)
	s.Len(next, 2)
	s.True(next[1].IsIdentified)
}

func (s *InventoryTestSuite) TestUseCharge() {
	wand := &equipment.ItemDefinition{ID: "wand", Name: "Wand", Category: equipment.CategoryGear, MaxCharges: 2}
	inv, _, err := equipment.Inventory{}.Add(&equipment.Entry{ID: "w", Item: wand, Quantity: 1})
	s.Require().NoError(err)
	s.Equal(2, inv[0].Charges)

	inv, _, err = inv.UseCharge("w")
	s.Require().NoError(err)
	inv, _, err = inv.UseCharge("w")
	s.Require().NoError(err)
	_, _, err = inv.UseCharge("w")
	s.True(dnderr.Is(err, dnderr.CodeResourceExhausted))

	inv, _, err = inv.RestoreCharges("w")
	s.Require().NoError(err)
	s.Equal(2, inv[0].Charges)
}

func TestArmorCategory(t *testing.T) {
	tests := []struct {
		name string
		item *equipment.ItemDefinition
		want equipment.ArmorCategory
	}{
		{name: "tag wins", item: &equipment.ItemDefinition{Category: equipment.CategoryArmor, Type: "Heavy Armor", Tags: []string{"armor:medium"}}, want: equipment.ArmorCategoryMedium},
		{name: "type text heavy", item: chainMail, want: equipment.ArmorCategoryHeavy},
		{name: "type text light", item: leather, want: equipment.ArmorCategoryLight},
		{name: "shield", item: shield, want: equipment.ArmorCategoryShield},
		{name: "untyped armor defaults to light", item: &equipment.ItemDefinition{Category: equipment.CategoryArmor}, want: equipment.ArmorCategoryLight},
		{name: "weapon", item: longsword, want: equipment.ArmorCategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.ArmorCategory())
		})
	}
}

func TestPropertyEquipKeepsSlotsExclusive(t *testing.T) {
	pool := []*equipment.ItemDefinition{
		longsword, greatsword, shield, chainMail, leather,
		attunable("cloak", shared.SlotBack), attunable("amulet", shared.SlotNeck),
		attunable("belt", shared.SlotWaist), attunable("ring", shared.SlotRing),
		attunable("boots", shared.SlotFeet),
	}

	rapid.Check(t, func(t *rapid.T) {
		inv := equipment.Inventory{}
		for i, item := range pool {
			inv = append(inv, &equipment.Entry{ID: fmt.Sprintf("e%d", i), Item: item, Quantity: 1})
		}

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			id := fmt.Sprintf("e%d", rapid.IntRange(0, len(pool)-1).Draw(t, "entry"))
			op := rapid.IntRange(0, 3).Draw(t, "op")

			var next equipment.Inventory
			var err error
			switch op {
			case 0:
				next, _, err = inv.Equip(id)
			case 1:
				next, _, err = inv.Unequip(id)
			case 2:
				next, _, err = inv.Attune(id)
			default:
				next, _, err = inv.Unattune(id)
			}
			if err != nil {
				if !assert.ObjectsAreEqual(inv, next) {
					t.Fatalf("rejected op %d on %s changed the inventory", op, id)
				}
				continue
			}
			inv = next

			equipped := inv.Equipped()
			for a := range equipped {
				for b := range equipped {
					if a != b && equipped[a].Slot().ConflictsWith(equipped[b].Slot()) {
						t.Fatalf("%s and %s both equipped", equipped[a].ID, equipped[b].ID)
					}
				}
			}
			if inv.AttunedCount() > equipment.MaxAttunedItems {
				t.Fatalf("attuned to %d items", inv.AttunedCount())
			}
		}
	})
}

func TestTotalWeight(t *testing.T) {
	inv := equipment.Inventory{
		{ID: "t", Item: torch, Quantity: 5},
		{ID: "c", Item: chainMail, Quantity: 1},
	}
	require.InDelta(t, 60.0, inv.TotalWeight(), 0.001)
}
