package rulesdata

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/modifier"
	rulebook "github.com/KirkDiggler/dnd-character-sheet/internal/domain/rulebook/dnd5e"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
)

// modifierDoc is a modifier as written in YAML. Value stays a node so
// numbers, quoted numbers and booleans all reach the modifier parser intact.
type modifierDoc struct {
	Type      string    `yaml:"type"`
	Target    string    `yaml:"target"`
	Value     yaml.Node `yaml:"value"`
	Condition string    `yaml:"condition"`
	Max       *int      `yaml:"max"`
}

func (d modifierDoc) raw() (modifier.Raw, error) {
	r := modifier.Raw{
		Type:      d.Type,
		Target:    d.Target,
		Condition: d.Condition,
		Max:       d.Max,
	}
	if d.Value.Kind == 0 {
		return r, nil
	}
	var v any
	if err := d.Value.Decode(&v); err != nil {
		return r, fmt.Errorf("line %d: %w", d.Value.Line, err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return r, fmt.Errorf("line %d: %w", d.Value.Line, err)
	}
	r.Value = data
	return r, nil
}

// parseModifiers converts docs, collecting one error per dropped entry
func parseModifiers(docs []modifierDoc) (modifier.List, []error) {
	raws := make([]modifier.Raw, 0, len(docs))
	var errs []error
	for _, d := range docs {
		r, err := d.raw()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		raws = append(raws, r)
	}
	list, parseErrs := modifier.ParseList(raws)
	return list, append(errs, parseErrs...)
}

type featureDoc struct {
	Key         string        `yaml:"key"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Level       int           `yaml:"level"`
	Modifiers   []modifierDoc `yaml:"modifiers"`
}

type effectDoc struct {
	Type      string        `yaml:"type"`
	Mode      string        `yaml:"mode"`
	Amount    string        `yaml:"amount"`
	Duration  string        `yaml:"duration"`
	Modifiers []modifierDoc `yaml:"modifiers"`
}

type resourceDoc struct {
	Key         string      `yaml:"key"`
	Name        string      `yaml:"name"`
	MaxFormula  string      `yaml:"max_formula"`
	RechargeOn  string      `yaml:"recharge_on"`
	UnlockLevel int         `yaml:"unlock_level"`
	OnUse       []effectDoc `yaml:"on_use"`
}

type spellcastingDoc struct {
	Ability     string `yaml:"ability"`
	Progression string `yaml:"progression"`
}

type subclassDoc struct {
	Key          string           `yaml:"key"`
	Name         string           `yaml:"name"`
	Spellcasting *spellcastingDoc `yaml:"spellcasting"`
	Features     []featureDoc     `yaml:"features"`
	Resources    []resourceDoc    `yaml:"resources"`
}

// classDoc is one file under classes/
type classDoc struct {
	Key                 string           `yaml:"key"`
	Name                string           `yaml:"name"`
	HitDie              int              `yaml:"hit_die"`
	SavingThrows        []string         `yaml:"saving_throws"`
	ArmorProficiencies  []string         `yaml:"armor_proficiencies"`
	WeaponProficiencies []string         `yaml:"weapon_proficiencies"`
	ToolProficiencies   []string         `yaml:"tool_proficiencies"`
	Spellcasting        *spellcastingDoc `yaml:"spellcasting"`
	Features            []featureDoc     `yaml:"features"`
	Resources           []resourceDoc    `yaml:"resources"`
	Subclasses          []subclassDoc    `yaml:"subclasses"`
}

type armorClassDoc struct {
	Base     int  `yaml:"base"`
	DexBonus bool `yaml:"dex_bonus"`
	MaxBonus int  `yaml:"max_bonus"`
}

type itemDoc struct {
	ID                      string         `yaml:"id"`
	Name                    string         `yaml:"name"`
	Description             string         `yaml:"description"`
	Category                string         `yaml:"category"`
	Type                    string         `yaml:"type"`
	Tags                    []string       `yaml:"tags"`
	Slot                    string         `yaml:"slot"`
	Weight                  float64        `yaml:"weight"`
	Cost                    string         `yaml:"cost"`
	Properties              []string       `yaml:"properties"`
	ArmorClass              *armorClassDoc `yaml:"armor_class"`
	RequiresAttunement      bool           `yaml:"requires_attunement"`
	Magical                 bool           `yaml:"magical"`
	Cursed                  bool           `yaml:"cursed"`
	MaxCharges              int            `yaml:"max_charges"`
	UnidentifiedName        string         `yaml:"unidentified_name"`
	UnidentifiedDescription string         `yaml:"unidentified_description"`
	Modifiers               []modifierDoc  `yaml:"modifiers"`
}

type featDoc struct {
	Key         string        `yaml:"key"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Modifiers   []modifierDoc `yaml:"modifiers"`
}

// itemsFile and featsFile hold a list per file
type itemsFile struct {
	Items []itemDoc `yaml:"items"`
}

type featsFile struct {
	Feats []featDoc `yaml:"feats"`
}

func (d *spellcastingDoc) toSpellcasting() (*rulebook.Spellcasting, error) {
	if d == nil {
		return nil, nil
	}
	attr, ok := shared.ParseAttribute(d.Ability)
	if !ok {
		return nil, fmt.Errorf("spellcasting ability %q is unknown", d.Ability)
	}
	switch p := rulebook.Progression(d.Progression); p {
	case rulebook.ProgressionFull, rulebook.ProgressionHalf, rulebook.ProgressionThird, rulebook.ProgressionPact:
		return &rulebook.Spellcasting{Ability: attr, Progression: p}, nil
	}
	return nil, fmt.Errorf("spellcasting progression %q is unknown", d.Progression)
}

func (d featureDoc) toFeature() (*rulebook.Feature, []error) {
	mods, errs := parseModifiers(d.Modifiers)
	return &rulebook.Feature{
		Key:         d.Key,
		Name:        d.Name,
		Description: d.Description,
		Level:       d.Level,
		Modifiers:   mods,
	}, errs
}

func (d resourceDoc) toResource() (*rulebook.ClassResource, []error) {
	res := &rulebook.ClassResource{
		Key:         d.Key,
		Name:        d.Name,
		MaxFormula:  d.MaxFormula,
		RechargeOn:  shared.RestType(d.RechargeOn),
		UnlockLevel: d.UnlockLevel,
	}
	var errs []error
	for _, e := range d.OnUse {
		mods, modErrs := parseModifiers(e.Modifiers)
		errs = append(errs, modErrs...)
		res.OnUse = append(res.OnUse, &rulebook.ResourceEffect{
			Type:      rulebook.EffectType(e.Type),
			Mode:      rulebook.HPMode(e.Mode),
			Amount:    e.Amount,
			Duration:  shared.Duration(e.Duration),
			Modifiers: mods,
		})
	}
	return res, errs
}

func (d classDoc) toClass() (*rulebook.Class, map[string]*rulebook.Subclass, []error) {
	var errs []error
	class := &rulebook.Class{
		Key:                 d.Key,
		Name:                d.Name,
		HitDie:              d.HitDie,
		ArmorProficiencies:  d.ArmorProficiencies,
		WeaponProficiencies: d.WeaponProficiencies,
		ToolProficiencies:   d.ToolProficiencies,
	}
	for _, s := range d.SavingThrows {
		attr, ok := shared.ParseAttribute(s)
		if !ok {
			errs = append(errs, fmt.Errorf("saving throw %q is unknown", s))
			continue
		}
		class.SavingThrows = append(class.SavingThrows, attr)
	}

	sc, err := d.Spellcasting.toSpellcasting()
	if err != nil {
		errs = append(errs, err)
	}
	class.Spellcasting = sc

	class.Features, errs = appendFeatures(class.Features, d.Features, errs)
	class.Resources, errs = appendResources(class.Resources, d.Resources, errs)

	subclasses := make(map[string]*rulebook.Subclass, len(d.Subclasses))
	for _, sd := range d.Subclasses {
		sub := &rulebook.Subclass{Key: sd.Key, Name: sd.Name}
		sc, err := sd.Spellcasting.toSpellcasting()
		if err != nil {
			errs = append(errs, fmt.Errorf("subclass %q: %w", sd.Key, err))
		}
		sub.Spellcasting = sc
		sub.Features, errs = appendFeatures(sub.Features, sd.Features, errs)
		sub.Resources, errs = appendResources(sub.Resources, sd.Resources, errs)
		subclasses[sd.Key] = sub
	}
	return class, subclasses, errs
}

func appendFeatures(out []*rulebook.Feature, docs []featureDoc, errs []error) ([]*rulebook.Feature, []error) {
	for _, fd := range docs {
		f, fErrs := fd.toFeature()
		for _, e := range fErrs {
			errs = append(errs, fmt.Errorf("feature %q: %w", fd.Key, e))
		}
		out = append(out, f)
	}
	return out, errs
}

func appendResources(out []*rulebook.ClassResource, docs []resourceDoc, errs []error) ([]*rulebook.ClassResource, []error) {
	for _, rd := range docs {
		r, rErrs := rd.toResource()
		for _, e := range rErrs {
			errs = append(errs, fmt.Errorf("resource %q: %w", rd.Key, e))
		}
		out = append(out, r)
	}
	return out, errs
}

func (d itemDoc) toItem() (*equipment.ItemDefinition, []error) {
	var errs []error
	mods, modErrs := parseModifiers(d.Modifiers)
	errs = append(errs, modErrs...)

	item := &equipment.ItemDefinition{
		ID:                      d.ID,
		Name:                    d.Name,
		Description:             d.Description,
		Category:                equipment.Category(d.Category),
		Type:                    d.Type,
		Tags:                    d.Tags,
		Slot:                    shared.Slot(d.Slot),
		Weight:                  d.Weight,
		Properties:              d.Properties,
		RequiresAttunement:      d.RequiresAttunement,
		IsMagical:               d.Magical,
		IsCursed:                d.Cursed,
		MaxCharges:              d.MaxCharges,
		UnidentifiedName:        d.UnidentifiedName,
		UnidentifiedDescription: d.UnidentifiedDescription,
		Modifiers:               mods,
	}
	if d.ArmorClass != nil {
		item.ArmorClass = &equipment.ArmorClass{
			Base:     d.ArmorClass.Base,
			DexBonus: d.ArmorClass.DexBonus,
			MaxBonus: d.ArmorClass.MaxBonus,
		}
	}
	if d.Cost != "" {
		cp, err := parseCost(d.Cost)
		if err != nil {
			errs = append(errs, err)
		}
		item.CostCopper = cp
	}
	return item, errs
}

func (d featDoc) toFeat() (*rulebook.Feat, []error) {
	mods, errs := parseModifiers(d.Modifiers)
	return &rulebook.Feat{
		Key:         d.Key,
		Name:        d.Name,
		Description: d.Description,
		Modifiers:   mods,
	}, errs
}
