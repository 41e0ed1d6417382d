package modifier

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
)

// Raw is the loosely typed wire form of a modifier. Value may arrive as a
// number, a numeric string or a boolean depending on the kind.
type Raw struct {
	Type      string          `json:"type" yaml:"type"`
	Target    string          `json:"target,omitempty" yaml:"target,omitempty"`
	Value     json.RawMessage `json:"value,omitempty" yaml:"-"`
	Condition string          `json:"condition,omitempty" yaml:"condition,omitempty"`
	Max       *int            `json:"max,omitempty" yaml:"max,omitempty"`
}

// FromRaw validates and converts the wire form into a typed modifier.
func FromRaw(r Raw) (Modifier, error) {
	cond := Conditional{When: r.Condition}
	target := strings.TrimSpace(r.Target)

	switch Kind(strings.ToLower(strings.TrimSpace(r.Type))) {
	case KindBonus:
		v, err := intValue(r.Value)
		if err != nil {
			return nil, fmt.Errorf("bonus %q: %w", target, err)
		}
		if target == "" {
			return nil, fmt.Errorf("bonus: target is required")
		}
		return Bonus{Conditional: cond, Target: strings.ToLower(target), Value: v}, nil
	case KindSet, KindOverride:
		v, err := intValue(r.Value)
		if err != nil {
			return nil, fmt.Errorf("override %q: %w", target, err)
		}
		if target == "" {
			return nil, fmt.Errorf("override: target is required")
		}
		return Override{Conditional: cond, Target: strings.ToLower(target), Value: v}, nil
	case KindAbilityIncrease:
		attr, ok := shared.ParseAttribute(target)
		if !ok {
			return nil, fmt.Errorf("ability_increase: unknown ability %q", target)
		}
		v, err := intValue(r.Value)
		if err != nil {
			return nil, fmt.Errorf("ability_increase %q: %w", target, err)
		}
		return AbilityIncrease{Conditional: cond, Ability: attr, Value: v, Max: r.Max}, nil
	case KindAbilityPointGrant:
		v, err := intValue(r.Value)
		if err != nil {
			return nil, fmt.Errorf("ability_point_grant: %w", err)
		}
		return AbilityPointGrant{Conditional: cond, Points: v}, nil
	case KindSkillProficiency, KindExpertise, KindSavingThrowProficiency,
		KindArmorProficiency, KindWeaponProficiency, KindLanguage:
		return grantFromRaw(r, cond, target)
	}

	return nil, fmt.Errorf("unknown modifier type %q", r.Type)
}

func grantFromRaw(r Raw, cond Conditional, target string) (Modifier, error) {
	if target == "" {
		return nil, fmt.Errorf("%s: target is required", r.Type)
	}
	granted, err := boolValue(r.Value)
	if err != nil || !granted {
		return nil, fmt.Errorf("%s %q: value must be true", r.Type, target)
	}

	switch Kind(strings.ToLower(strings.TrimSpace(r.Type))) {
	case KindSkillProficiency:
		return SkillProficiency{Conditional: cond, Skill: shared.NormalizeSkill(target)}, nil
	case KindExpertise:
		return Expertise{Conditional: cond, Skill: shared.NormalizeSkill(target)}, nil
	case KindSavingThrowProficiency:
		attr, ok := shared.ParseAttribute(target)
		if !ok {
			return nil, fmt.Errorf("saving_throw_proficiency: unknown ability %q", target)
		}
		return SavingThrowProficiency{Conditional: cond, Ability: attr}, nil
	case KindArmorProficiency:
		return ArmorProficiency{Conditional: cond, Category: strings.ToLower(target)}, nil
	case KindWeaponProficiency:
		return WeaponProficiency{Conditional: cond, Category: strings.ToLower(target)}, nil
	default:
		return Language{Conditional: cond, Name: target}, nil
	}
}

// ToRaw converts a typed modifier back to the wire form.
func ToRaw(m Modifier) Raw {
	r := Raw{Type: string(m.Kind()), Condition: m.Condition()}
	switch v := m.(type) {
	case Bonus:
		r.Target, r.Value = v.Target, intJSON(v.Value)
	case Override:
		r.Target, r.Value = v.Target, intJSON(v.Value)
	case AbilityIncrease:
		r.Target, r.Value, r.Max = string(v.Ability), intJSON(v.Value), v.Max
	case AbilityPointGrant:
		r.Value = intJSON(v.Points)
	case SkillProficiency:
		r.Target, r.Value = string(v.Skill), trueJSON
	case Expertise:
		r.Target, r.Value = string(v.Skill), trueJSON
	case SavingThrowProficiency:
		r.Target, r.Value = string(v.Ability), trueJSON
	case ArmorProficiency:
		r.Target, r.Value = v.Category, trueJSON
	case WeaponProficiency:
		r.Target, r.Value = v.Category, trueJSON
	case Language:
		r.Target, r.Value = v.Name, trueJSON
	}
	return r
}

var trueJSON = json.RawMessage("true")

func intJSON(v int) json.RawMessage {
	return json.RawMessage(strconv.Itoa(v))
}

func intValue(raw json.RawMessage) (int, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("value is required")
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, convErr := strconv.Atoi(strings.TrimSpace(s))
		if convErr != nil {
			return 0, fmt.Errorf("value %q is not a number", s)
		}
		return v, nil
	}
	return 0, fmt.Errorf("value %s is not a number", string(raw))
}

func boolValue(raw json.RawMessage) (bool, error) {
	// A grant without an explicit value is a grant.
	if len(raw) == 0 {
		return true, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, err
	}
	return b, nil
}
