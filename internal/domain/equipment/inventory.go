package equipment

import (
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/modifier"
	dnderr "github.com/KirkDiggler/dnd-character-sheet/internal/errors"
)

// MaxAttunedItems is the attunement cap
const MaxAttunedItems = 3

// Inventory is a character's owned entries. Transitions never modify the
// receiver; they return a new inventory or an error with nothing changed.
type Inventory []*Entry

// Transition records which entries a successful operation touched.
type Transition struct {
	EntryID string
	// Changed lists entries whose flags or counts changed, EntryID included.
	Changed []string
	Removed []string
}

// Touched returns Changed followed by Removed
func (t Transition) Touched() []string {
	return append(append([]string(nil), t.Changed...), t.Removed...)
}

// Clone deep-copies the inventory
func (inv Inventory) Clone() Inventory {
	if inv == nil {
		return nil
	}
	out := make(Inventory, len(inv))
	for i, e := range inv {
		out[i] = e.Clone()
	}
	return out
}

// Get returns the entry with the given ID
func (inv Inventory) Get(entryID string) (*Entry, bool) {
	for _, e := range inv {
		if e.ID == entryID {
			return e, true
		}
	}
	return nil, false
}

// Equipped returns every equipped entry
func (inv Inventory) Equipped() []*Entry {
	var out []*Entry
	for _, e := range inv {
		if e.Equipped {
			out = append(out, e)
		}
	}
	return out
}

// EquippedItems returns the definitions of every equipped entry
func (inv Inventory) EquippedItems() []*ItemDefinition {
	var out []*ItemDefinition
	for _, e := range inv {
		if e.Equipped && e.Item != nil {
			out = append(out, e.Item)
		}
	}
	return out
}

// AttunedCount counts attuned entries
func (inv Inventory) AttunedCount() int {
	n := 0
	for _, e := range inv {
		if e.IsAttuned {
			n++
		}
	}
	return n
}

// equippedAttunementCount counts equipped entries whose item requires attunement
func (inv Inventory) equippedAttunementCount() int {
	n := 0
	for _, e := range inv {
		if e.Equipped && e.RequiresAttunement() {
			n++
		}
	}
	return n
}

// Sources returns one modifier source per entry whose modifiers are live
func (inv Inventory) Sources() []modifier.Source {
	var out []modifier.Source
	for _, e := range inv {
		if !e.ContributesModifiers() || len(e.Item.Modifiers) == 0 {
			continue
		}
		out = append(out, modifier.Source{
			ID:        e.ID,
			Name:      e.Item.Name,
			Kind:      modifier.SourceItem,
			Modifiers: e.Item.Modifiers,
		})
	}
	return out
}

// TotalWeight sums weight times quantity over all entries
func (inv Inventory) TotalWeight() float64 {
	total := 0.0
	for _, e := range inv {
		if e.Item != nil {
			total += e.Item.Weight * float64(e.Quantity)
		}
	}
	return total
}

func (inv Inventory) lookup(entryID string) (Inventory, *Entry, error) {
	next := inv.Clone()
	e, ok := next.Get(entryID)
	if !ok {
		return nil, nil, dnderr.NotFoundf("inventory entry %s not found", entryID).
			WithMeta("entry_id", entryID)
	}
	return next, e, nil
}

// Equip makes the entry equipped, displacing whatever shares its slot.
func (inv Inventory) Equip(entryID string) (Inventory, Transition, error) {
	next, target, err := inv.lookup(entryID)
	if err != nil {
		return inv, Transition{}, err
	}
	if target.Equipped {
		return inv, Transition{EntryID: entryID}, nil
	}

	if target.RequiresAttunement() && !target.IsAttuned && inv.equippedAttunementCount() >= MaxAttunedItems {
		return inv, Transition{}, dnderr.AttunementLimitf("cannot equip %s: %d attunement items already equipped",
			target.DisplayName(), MaxAttunedItems).WithMeta("entry_id", entryID)
	}

	t := Transition{EntryID: entryID}
	slot := target.Slot()
	for _, other := range next {
		if other.ID == entryID || !other.Equipped {
			continue
		}
		if slot.ConflictsWith(other.Slot()) {
			other.Equipped = false
			t.Changed = append(t.Changed, other.ID)
		}
	}
	target.Equipped = true
	t.Changed = append(t.Changed, entryID)

	return next, t, nil
}

// Unequip clears the equipped flag. It never fails for a known entry.
func (inv Inventory) Unequip(entryID string) (Inventory, Transition, error) {
	next, target, err := inv.lookup(entryID)
	if err != nil {
		return inv, Transition{}, err
	}
	if !target.Equipped {
		return inv, Transition{EntryID: entryID}, nil
	}
	target.Equipped = false
	return next, Transition{EntryID: entryID, Changed: []string{entryID}}, nil
}

// Attune binds the entry, subject to the attunement cap.
func (inv Inventory) Attune(entryID string) (Inventory, Transition, error) {
	next, target, err := inv.lookup(entryID)
	if err != nil {
		return inv, Transition{}, err
	}
	if target.IsAttuned {
		return inv, Transition{EntryID: entryID}, nil
	}
	if !target.RequiresAttunement() {
		return inv, Transition{}, dnderr.FailedPreconditionf("%s does not require attunement", target.DisplayName()).
			WithMeta("entry_id", entryID)
	}
	if inv.AttunedCount() >= MaxAttunedItems {
		return inv, Transition{}, dnderr.AttunementLimitf("already attuned to %d items", MaxAttunedItems).
			WithMeta("entry_id", entryID)
	}
	target.IsAttuned = true
	return next, Transition{EntryID: entryID, Changed: []string{entryID}}, nil
}

// Unattune releases the entry. Cursed items are not protected here.
func (inv Inventory) Unattune(entryID string) (Inventory, Transition, error) {
	next, target, err := inv.lookup(entryID)
	if err != nil {
		return inv, Transition{}, err
	}
	if !target.IsAttuned {
		return inv, Transition{EntryID: entryID}, nil
	}
	target.IsAttuned = false
	return next, Transition{EntryID: entryID, Changed: []string{entryID}}, nil
}

// Identify reveals the entry. There is no way back.
func (inv Inventory) Identify(entryID string) (Inventory, Transition, error) {
	next, target, err := inv.lookup(entryID)
	if err != nil {
		return inv, Transition{}, err
	}
	if target.IsIdentified {
		return inv, Transition{EntryID: entryID}, nil
	}
	target.IsIdentified = true
	return next, Transition{EntryID: entryID, Changed: []string{entryID}}, nil
}

// Add appends a new entry, or merges it into an existing stack of the same
// plain (non-magical, slotless) item.
func (inv Inventory) Add(entry *Entry) (Inventory, Transition, error) {
	if entry == nil || entry.Item == nil || entry.ID == "" {
		return inv, Transition{}, dnderr.InvalidArgument("entry with an id and item is required")
	}
	if entry.Quantity <= 0 {
		return inv, Transition{}, dnderr.InvalidArgumentf("quantity must be positive, got %d", entry.Quantity)
	}
	if _, exists := inv.Get(entry.ID); exists {
		return inv, Transition{}, dnderr.AlreadyExistsf("inventory entry %s already exists", entry.ID)
	}

	next := inv.Clone()
	if stackable(entry.Item) {
		for _, e := range next {
			if e.Item != nil && e.Item.ID == entry.Item.ID && stackable(e.Item) {
				e.Quantity += entry.Quantity
				return next, Transition{EntryID: e.ID, Changed: []string{e.ID}}, nil
			}
		}
	}

	added := entry.Clone()
	added.Equipped = false
	added.IsAttuned = false
	if !added.Item.IsMagical {
		added.IsIdentified = true
	}
	if added.Charges == 0 {
		added.Charges = added.Item.MaxCharges
	}
	next = append(next, added)
	return next, Transition{EntryID: added.ID, Changed: []string{added.ID}}, nil
}

func stackable(item *ItemDefinition) bool {
	return !item.IsMagical && item.Slot == "" && item.MaxCharges == 0
}

// SetQuantity sets the stack size. Zero removes the entry.
func (inv Inventory) SetQuantity(entryID string, quantity int) (Inventory, Transition, error) {
	if quantity < 0 {
		return inv, Transition{}, dnderr.InvalidArgumentf("quantity must not be negative, got %d", quantity)
	}
	next, target, err := inv.lookup(entryID)
	if err != nil {
		return inv, Transition{}, err
	}
	if quantity == 0 {
		return next.remove(entryID), Transition{EntryID: entryID, Removed: []string{entryID}}, nil
	}
	target.Quantity = quantity
	return next, Transition{EntryID: entryID, Changed: []string{entryID}}, nil
}

// Consume decrements the stack by n, removing it when it reaches zero.
func (inv Inventory) Consume(entryID string, n int) (Inventory, Transition, error) {
	if n <= 0 {
		return inv, Transition{}, dnderr.InvalidArgumentf("consume count must be positive, got %d", n)
	}
	target, ok := inv.Get(entryID)
	if !ok {
		return inv, Transition{}, dnderr.NotFoundf("inventory entry %s not found", entryID)
	}
	if target.Quantity < n {
		return inv, Transition{}, dnderr.ResourceExhaustedf("only %d %s left", target.Quantity, target.DisplayName())
	}
	return inv.SetQuantity(entryID, target.Quantity-n)
}

// UseCharge spends one charge of a charged item.
func (inv Inventory) UseCharge(entryID string) (Inventory, Transition, error) {
	next, target, err := inv.lookup(entryID)
	if err != nil {
		return inv, Transition{}, err
	}
	if target.Charges <= 0 {
		return inv, Transition{}, dnderr.ResourceExhaustedf("%s has no charges left", target.DisplayName()).
			WithMeta("entry_id", entryID)
	}
	target.Charges--
	return next, Transition{EntryID: entryID, Changed: []string{entryID}}, nil
}

// RestoreCharges refills a charged item to its maximum.
func (inv Inventory) RestoreCharges(entryID string) (Inventory, Transition, error) {
	next, target, err := inv.lookup(entryID)
	if err != nil {
		return inv, Transition{}, err
	}
	if target.Item.MaxCharges == target.Charges {
		return inv, Transition{EntryID: entryID}, nil
	}
	target.Charges = target.Item.MaxCharges
	return next, Transition{EntryID: entryID, Changed: []string{entryID}}, nil
}

func (inv Inventory) remove(entryID string) Inventory {
	out := make(Inventory, 0, len(inv))
	for _, e := range inv {
		if e.ID != entryID {
			out = append(out, e)
		}
	}
	return out
}
