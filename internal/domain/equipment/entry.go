package equipment

import (
	"fmt"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
)

// Entry is one owned stack of an item together with its per-copy flags.
type Entry struct {
	ID           string          `json:"id"`
	Item         *ItemDefinition `json:"item"`
	Quantity     int             `json:"quantity"`
	Equipped     bool            `json:"equipped"`
	IsAttuned    bool            `json:"is_attuned"`
	IsIdentified bool            `json:"is_identified"`
	Charges      int             `json:"charges"`
}

// Slot returns the slot the item occupies when equipped
func (e *Entry) Slot() shared.Slot {
	if e.Item == nil {
		return shared.SlotNone
	}
	return e.Item.Slot
}

// RequiresAttunement reports whether the underlying item needs attunement
func (e *Entry) RequiresAttunement() bool {
	return e.Item != nil && e.Item.RequiresAttunement
}

// ContributesModifiers reports whether the entry's modifiers are live: it must
// be equipped, and attuned if the item requires attunement.
func (e *Entry) ContributesModifiers() bool {
	return e.Equipped && (!e.RequiresAttunement() || e.IsAttuned)
}

// IsBoundByCurse reports whether a cursed item is attuned. The engine does not
// block unattuning; callers use this to warn.
func (e *Entry) IsBoundByCurse() bool {
	return e.Item != nil && e.Item.IsCursed && e.IsAttuned
}

func (e *Entry) hidden() bool {
	return e.Item != nil && e.Item.IsMagical && !e.IsIdentified
}

// DisplayName hides the true name of an unidentified magic item
func (e *Entry) DisplayName() string {
	if e.Item == nil {
		return ""
	}
	if !e.hidden() {
		return e.Item.Name
	}
	if e.Item.UnidentifiedName != "" {
		return e.Item.UnidentifiedName
	}
	return fmt.Sprintf("Unidentified %s", e.Item.Category)
}

// DisplayDescription hides the true description of an unidentified magic item
func (e *Entry) DisplayDescription() string {
	if e.Item == nil {
		return ""
	}
	if e.hidden() {
		return e.Item.UnidentifiedDescription
	}
	return e.Item.Description
}

// Clone returns a copy sharing nothing mutable with e
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	out := *e
	out.Item = e.Item.Clone()
	return &out
}
