package character

import (
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/equipment"
)

// applyInventory runs an inventory transition against a clone. Gear can move
// the effective HP ceiling, so current HP is clamped afterwards.
func applyInventory(c *Character, fn func(equipment.Inventory) (equipment.Inventory, equipment.Transition, error)) (*Character, Change, error) {
	inv, t, err := fn(c.Inventory)
	if err != nil {
		return c, Change{}, err
	}
	if len(t.Changed) == 0 && len(t.Removed) == 0 {
		return c, Change{}, nil
	}
	return mutate(c, func(next *Character) (Change, error) {
		next.Inventory = inv
		ch := inventoryChange(t)
		if hp := next.HitPoints.Current; hp > next.EffectiveMaxHP() {
			next.clampHitPoints()
			ch = ch.With(FieldHitPoints)
		}
		return ch, nil
	})
}

// AcquireItem adds an entry, stacking plain items onto an existing entry
type AcquireItem struct {
	Entry *equipment.Entry
}

func (AcquireItem) Name() string { return "acquire_item" }

func (a AcquireItem) Apply(c *Character) (*Character, Change, error) {
	return applyInventory(c, func(inv equipment.Inventory) (equipment.Inventory, equipment.Transition, error) {
		return inv.Add(a.Entry)
	})
}

type EquipItem struct {
	EntryID string
}

func (EquipItem) Name() string { return "equip_item" }

func (e EquipItem) Apply(c *Character) (*Character, Change, error) {
	return applyInventory(c, func(inv equipment.Inventory) (equipment.Inventory, equipment.Transition, error) {
		return inv.Equip(e.EntryID)
	})
}

type UnequipItem struct {
	EntryID string
}

func (UnequipItem) Name() string { return "unequip_item" }

func (u UnequipItem) Apply(c *Character) (*Character, Change, error) {
	return applyInventory(c, func(inv equipment.Inventory) (equipment.Inventory, equipment.Transition, error) {
		return inv.Unequip(u.EntryID)
	})
}

type AttuneItem struct {
	EntryID string
}

func (AttuneItem) Name() string { return "attune_item" }

func (a AttuneItem) Apply(c *Character) (*Character, Change, error) {
	return applyInventory(c, func(inv equipment.Inventory) (equipment.Inventory, equipment.Transition, error) {
		return inv.Attune(a.EntryID)
	})
}

type UnattuneItem struct {
	EntryID string
}

func (UnattuneItem) Name() string { return "unattune_item" }

func (u UnattuneItem) Apply(c *Character) (*Character, Change, error) {
	return applyInventory(c, func(inv equipment.Inventory) (equipment.Inventory, equipment.Transition, error) {
		return inv.Unattune(u.EntryID)
	})
}

type IdentifyItem struct {
	EntryID string
}

func (IdentifyItem) Name() string { return "identify_item" }

func (i IdentifyItem) Apply(c *Character) (*Character, Change, error) {
	return applyInventory(c, func(inv equipment.Inventory) (equipment.Inventory, equipment.Transition, error) {
		return inv.Identify(i.EntryID)
	})
}

// SetItemQuantity sets a stack size; zero drops the entry
type SetItemQuantity struct {
	EntryID  string
	Quantity int
}

func (SetItemQuantity) Name() string { return "set_item_quantity" }

func (s SetItemQuantity) Apply(c *Character) (*Character, Change, error) {
	return applyInventory(c, func(inv equipment.Inventory) (equipment.Inventory, equipment.Transition, error) {
		return inv.SetQuantity(s.EntryID, s.Quantity)
	})
}

type ConsumeItem struct {
	EntryID string
	Count   int
}

func (ConsumeItem) Name() string { return "consume_item" }

func (ci ConsumeItem) Apply(c *Character) (*Character, Change, error) {
	n := ci.Count
	if n == 0 {
		n = 1
	}
	return applyInventory(c, func(inv equipment.Inventory) (equipment.Inventory, equipment.Transition, error) {
		return inv.Consume(ci.EntryID, n)
	})
}

type UseItemCharge struct {
	EntryID string
}

func (UseItemCharge) Name() string { return "use_item_charge" }

func (u UseItemCharge) Apply(c *Character) (*Character, Change, error) {
	return applyInventory(c, func(inv equipment.Inventory) (equipment.Inventory, equipment.Transition, error) {
		return inv.UseCharge(u.EntryID)
	})
}

type RestoreItemCharges struct {
	EntryID string
}

func (RestoreItemCharges) Name() string { return "restore_item_charges" }

func (r RestoreItemCharges) Apply(c *Character) (*Character, Change, error) {
	return applyInventory(c, func(inv equipment.Inventory) (equipment.Inventory, equipment.Transition, error) {
		return inv.RestoreCharges(r.EntryID)
	})
}
