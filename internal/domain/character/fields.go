package character

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	dnderr "github.com/KirkDiggler/dnd-character-sheet/internal/errors"
)

// Field names one persisted character column.
type Field string

const (
	FieldOwner               Field = "owner_id"
	FieldName                Field = "name"
	FieldAbilityScores       Field = "ability_scores"
	FieldHitPoints           Field = "hit_points"
	FieldHitDice             Field = "hit_dice"
	FieldDeathSaves          Field = "death_saves"
	FieldExhaustion          Field = "exhaustion"
	FieldInspiration         Field = "inspiration"
	FieldACOverride          Field = "ac_override"
	FieldSpeed               Field = "speed"
	FieldInitiativeBonus     Field = "initiative_bonus"
	FieldLevel               Field = "level"
	FieldExperience          Field = "experience"
	FieldUsedSpellSlots      Field = "used_spell_slots"
	FieldUsedPactSlots       Field = "used_pact_slots"
	FieldAbilityPoints       Field = "ability_points"
	FieldCurrency            Field = "currency"
	FieldManualProficiencies Field = "manual_proficiencies"
	FieldResourceModifiers   Field = "resource_modifiers"
	FieldClasses             Field = "classes"
	FieldRace                Field = "race"
	FieldBackground          Field = "background"
	FieldFeats               Field = "feats"
	FieldTraits              Field = "traits"
	FieldLanguages           Field = "languages"
	FieldConditions          Field = "conditions"
	FieldConcentration       Field = "concentration"
	FieldPreparedSpells      Field = "prepared_spells"
)

// AllFields lists every column, in storage order
var AllFields = []Field{
	FieldOwner, FieldName, FieldAbilityScores, FieldHitPoints, FieldHitDice, FieldDeathSaves,
	FieldExhaustion, FieldInspiration, FieldACOverride, FieldSpeed, FieldInitiativeBonus,
	FieldLevel, FieldExperience, FieldUsedSpellSlots, FieldUsedPactSlots, FieldAbilityPoints,
	FieldCurrency, FieldManualProficiencies, FieldResourceModifiers, FieldClasses, FieldRace,
	FieldBackground, FieldFeats, FieldTraits, FieldLanguages, FieldConditions,
	FieldConcentration, FieldPreparedSpells,
}

func (c *Character) fieldRef(f Field) (any, error) {
	switch f {
	case FieldOwner:
		return &c.OwnerID, nil
	case FieldName:
		return &c.Name, nil
	case FieldAbilityScores:
		return &c.AbilityScores, nil
	case FieldHitPoints:
		return &c.HitPoints, nil
	case FieldHitDice:
		return &c.HitDice, nil
	case FieldDeathSaves:
		return &c.DeathSaves, nil
	case FieldExhaustion:
		return &c.Exhaustion, nil
	case FieldInspiration:
		return &c.Inspiration, nil
	case FieldACOverride:
		return &c.ACOverride, nil
	case FieldSpeed:
		return &c.Speed, nil
	case FieldInitiativeBonus:
		return &c.InitiativeBonus, nil
	case FieldLevel:
		return &c.Level, nil
	case FieldExperience:
		return &c.Experience, nil
	case FieldUsedSpellSlots:
		return &c.UsedSpellSlots, nil
	case FieldUsedPactSlots:
		return &c.UsedPactSlots, nil
	case FieldAbilityPoints:
		return &c.AbilityPoints, nil
	case FieldCurrency:
		return &c.Currency, nil
	case FieldManualProficiencies:
		return &c.ManualProficiencies, nil
	case FieldResourceModifiers:
		return &c.ResourceModifiers, nil
	case FieldClasses:
		return &c.Classes, nil
	case FieldRace:
		return &c.Race, nil
	case FieldBackground:
		return &c.Background, nil
	case FieldFeats:
		return &c.Feats, nil
	case FieldTraits:
		return &c.Traits, nil
	case FieldLanguages:
		return &c.Languages, nil
	case FieldConditions:
		return &c.Conditions, nil
	case FieldConcentration:
		return &c.Concentration, nil
	case FieldPreparedSpells:
		return &c.PreparedSpells, nil
	}
	return nil, dnderr.Internalf("unknown character field %q", f).WithMeta("field", string(f))
}

// EncodeField serializes one column
func (c *Character) EncodeField(f Field) ([]byte, error) {
	ref, err := c.fieldRef(f)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ref)
}

// DecodeField overwrites one column from its serialized form. The column is
// zeroed first: decoding must neither merge into an old map nor write through
// a pointer shared with another snapshot.
func (c *Character) DecodeField(f Field, data []byte) error {
	ref, err := c.fieldRef(f)
	if err != nil {
		return err
	}
	target := reflect.ValueOf(ref).Elem()
	target.Set(reflect.Zero(target.Type()))
	if err := json.Unmarshal(data, ref); err != nil {
		return dnderr.WrapWithCode(err, dnderr.CodeInternal, fmt.Sprintf("decode %s", f)).
			WithMeta("field", string(f))
	}
	return nil
}

// Change describes what a command touched, in write-boundary terms: character
// columns, inventory join rows (upserted or deleted) and resource-usage rows.
type Change struct {
	Fields    []Field
	Entries   []string
	Removed   []string
	Resources []string
}

// IsEmpty reports whether nothing was touched
func (ch Change) IsEmpty() bool {
	return len(ch.Fields) == 0 && len(ch.Entries) == 0 && len(ch.Removed) == 0 && len(ch.Resources) == 0
}

// With returns ch with more fields
func (ch Change) With(fields ...Field) Change {
	ch.Fields = appendUnique(ch.Fields, fields...)
	return ch
}

// Merge combines two changes
func (ch Change) Merge(o Change) Change {
	ch.Fields = appendUnique(ch.Fields, o.Fields...)
	ch.Entries = appendUnique(ch.Entries, o.Entries...)
	ch.Removed = appendUnique(ch.Removed, o.Removed...)
	ch.Resources = appendUnique(ch.Resources, o.Resources...)
	return ch
}

// Keys flattens the change into stable keys such as "field:hit_points",
// "entry:<id>" and "resource:<key>".
func (ch Change) Keys() []string {
	var keys []string
	for _, f := range ch.Fields {
		keys = append(keys, "field:"+string(f))
	}
	for _, id := range ch.Entries {
		keys = append(keys, "entry:"+id)
	}
	for _, id := range ch.Removed {
		keys = append(keys, "entry:"+id)
	}
	for _, id := range ch.Resources {
		keys = append(keys, "resource:"+id)
	}
	sort.Strings(keys)
	return keys
}

// Only keeps the parts of ch whose key is in keep
func (ch Change) Only(keep map[string]bool) Change {
	var out Change
	for _, f := range ch.Fields {
		if keep["field:"+string(f)] {
			out.Fields = append(out.Fields, f)
		}
	}
	for _, id := range ch.Entries {
		if keep["entry:"+id] {
			out.Entries = append(out.Entries, id)
		}
	}
	for _, id := range ch.Removed {
		if keep["entry:"+id] {
			out.Removed = append(out.Removed, id)
		}
	}
	for _, id := range ch.Resources {
		if keep["resource:"+id] {
			out.Resources = append(out.Resources, id)
		}
	}
	return out
}

// Restore copies every part named by ch from src into a clone of dst. It is
// the compensating action for a failed write: entries absent from src are
// dropped and resource rows absent from src return to zero.
func Restore(dst, src *Character, ch Change) (*Character, error) {
	out := dst.Clone()
	out.ensureMaps()

	for _, f := range ch.Fields {
		data, err := src.EncodeField(f)
		if err != nil {
			return dst, err
		}
		if err := out.DecodeField(f, data); err != nil {
			return dst, err
		}
	}

	for _, id := range append(append([]string(nil), ch.Entries...), ch.Removed...) {
		prev, existed := src.Inventory.Get(id)
		out.Inventory = removeEntry(out.Inventory, id)
		if existed {
			out.Inventory = append(out.Inventory, prev.Clone())
		}
	}

	for _, key := range ch.Resources {
		if used, ok := src.ResourceUsage[key]; ok && used > 0 {
			out.ResourceUsage[key] = used
		} else {
			delete(out.ResourceUsage, key)
		}
	}

	return out, nil
}

func appendUnique[T comparable](dst []T, items ...T) []T {
	for _, item := range items {
		found := false
		for _, d := range dst {
			if d == item {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, item)
		}
	}
	return dst
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
