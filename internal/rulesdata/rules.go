// Package rulesdata loads class, item and feat definitions from a YAML rules
// directory:
//
//	rules/
//	  classes/*.yaml   one class per file, subclasses inline
//	  items/*.yaml     items: [...]
//	  feats/*.yaml     feats: [...]
//
// Missing subdirectories are treated as empty.
package rulesdata

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/formula"
	rulebook "github.com/KirkDiggler/dnd-character-sheet/internal/domain/rulebook/dnd5e"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
	dnderr "github.com/KirkDiggler/dnd-character-sheet/internal/errors"
)

// Rules is the loaded reference data, keyed by class key, item ID and feat key
type Rules struct {
	Classes    map[string]*rulebook.Class
	Subclasses map[string]map[string]*rulebook.Subclass
	Items      map[string]*equipment.ItemDefinition
	Feats      map[string]*rulebook.Feat
}

// New returns empty rules
func New() *Rules {
	return &Rules{
		Classes:    map[string]*rulebook.Class{},
		Subclasses: map[string]map[string]*rulebook.Subclass{},
		Items:      map[string]*equipment.ItemDefinition{},
		Feats:      map[string]*rulebook.Feat{},
	}
}

// Load reads every rules file under dir. Parse problems, malformed modifiers
// and Validate failures are all reported together.
func Load(dir string) (*Rules, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("reading rules directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("rules path %s is not a directory", dir)
	}

	r := New()
	var errs []error

	classFiles, err := yamlFiles(filepath.Join(dir, "classes"))
	if err != nil {
		return nil, err
	}
	for _, path := range classFiles {
		var doc classDoc
		if err := decodeFile(path, &doc); err != nil {
			errs = append(errs, err)
			continue
		}
		class, subclasses, problems := doc.toClass()
		errs = appendProblems(errs, path, "class "+strconv.Quote(doc.Key), problems)
		if _, dup := r.Classes[class.Key]; dup {
			errs = append(errs, fmt.Errorf("%s: duplicate class %q", path, class.Key))
			continue
		}
		r.Classes[class.Key] = class
		r.Subclasses[class.Key] = subclasses
	}

	itemFiles, err := yamlFiles(filepath.Join(dir, "items"))
	if err != nil {
		return nil, err
	}
	for _, path := range itemFiles {
		var doc itemsFile
		if err := decodeFile(path, &doc); err != nil {
			errs = append(errs, err)
			continue
		}
		for _, id := range doc.Items {
			item, problems := id.toItem()
			errs = appendProblems(errs, path, "item "+strconv.Quote(id.ID), problems)
			if _, dup := r.Items[item.ID]; dup {
				errs = append(errs, fmt.Errorf("%s: duplicate item %q", path, item.ID))
				continue
			}
			r.Items[item.ID] = item
		}
	}

	featFiles, err := yamlFiles(filepath.Join(dir, "feats"))
	if err != nil {
		return nil, err
	}
	for _, path := range featFiles {
		var doc featsFile
		if err := decodeFile(path, &doc); err != nil {
			errs = append(errs, err)
			continue
		}
		for _, fd := range doc.Feats {
			feat, problems := fd.toFeat()
			errs = appendProblems(errs, path, "feat "+strconv.Quote(fd.Key), problems)
			if _, dup := r.Feats[feat.Key]; dup {
				errs = append(errs, fmt.Errorf("%s: duplicate feat %q", path, feat.Key))
				continue
			}
			r.Feats[feat.Key] = feat
		}
	}

	if err := r.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("loading rules from %s: %w", dir, errors.Join(errs...))
	}
	return r, nil
}

var validHitDice = map[int]bool{6: true, 8: true, 10: true, 12: true}

var validCategories = map[equipment.Category]bool{
	equipment.CategoryWeapon:     true,
	equipment.CategoryArmor:      true,
	equipment.CategoryGear:       true,
	equipment.CategoryConsumable: true,
	equipment.CategoryTreasure:   true,
}

var validSlots = map[shared.Slot]bool{
	shared.SlotNone:      true,
	shared.SlotMainHand:  true,
	shared.SlotOffHand:   true,
	shared.SlotTwoHanded: true,
	shared.SlotChest:     true,
	shared.SlotHead:      true,
	shared.SlotHands:     true,
	shared.SlotFeet:      true,
	shared.SlotNeck:      true,
	shared.SlotBack:      true,
	shared.SlotWaist:     true,
	shared.SlotRing:      true,
}

// Validate checks every definition and returns all violations joined.
func (r *Rules) Validate() error {
	var errs []error

	for _, key := range sortedKeys(r.Classes) {
		c := r.Classes[key]
		if c.Key == "" || c.Name == "" {
			errs = append(errs, fmt.Errorf("class %q: key and name are required", key))
		}
		if !validHitDice[c.HitDie] {
			errs = append(errs, fmt.Errorf("class %q: hit_die must be 6, 8, 10 or 12, got %d", key, c.HitDie))
		}
		errs = append(errs, validateFeatures("class "+strconv.Quote(key), c.Features)...)
		errs = append(errs, validateResources("class "+strconv.Quote(key), c.Resources)...)

		for _, subKey := range sortedKeys(r.Subclasses[key]) {
			sub := r.Subclasses[key][subKey]
			owner := fmt.Sprintf("subclass %q of %q", subKey, key)
			if sub.Key == "" || sub.Name == "" {
				errs = append(errs, fmt.Errorf("%s: key and name are required", owner))
			}
			errs = append(errs, validateFeatures(owner, sub.Features)...)
			errs = append(errs, validateResources(owner, sub.Resources)...)
		}
	}

	for _, id := range sortedKeys(r.Items) {
		item := r.Items[id]
		if item.ID == "" || item.Name == "" {
			errs = append(errs, fmt.Errorf("item %q: id and name are required", id))
		}
		if !validCategories[item.Category] {
			errs = append(errs, fmt.Errorf("item %q: unknown category %q", id, item.Category))
		}
		if !validSlots[item.Slot] {
			errs = append(errs, fmt.Errorf("item %q: unknown slot %q", id, item.Slot))
		}
		if item.Weight < 0 {
			errs = append(errs, fmt.Errorf("item %q: weight must be >= 0", id))
		}
		if item.MaxCharges < 0 {
			errs = append(errs, fmt.Errorf("item %q: max_charges must be >= 0", id))
		}
		if item.Category == equipment.CategoryArmor && item.ArmorClass == nil {
			errs = append(errs, fmt.Errorf("item %q: armor needs armor_class", id))
		}
	}

	for _, key := range sortedKeys(r.Feats) {
		if f := r.Feats[key]; f.Key == "" || f.Name == "" {
			errs = append(errs, fmt.Errorf("feat %q: key and name are required", key))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return dnderr.WrapWithCode(errors.Join(errs...), dnderr.CodeValidation, "invalid rules")
}

func validateFeatures(owner string, features []*rulebook.Feature) []error {
	var errs []error
	for _, f := range features {
		if f.Key == "" {
			errs = append(errs, fmt.Errorf("%s: feature key is required", owner))
		}
		if f.Level < 1 || f.Level > 20 {
			errs = append(errs, fmt.Errorf("%s: feature %q level must be 1-20, got %d", owner, f.Key, f.Level))
		}
	}
	return errs
}

func validateResources(owner string, resources []*rulebook.ClassResource) []error {
	var errs []error
	for _, res := range resources {
		where := fmt.Sprintf("%s: resource %q", owner, res.Key)
		if res.Key == "" {
			errs = append(errs, fmt.Errorf("%s: key is required", where))
		}
		if _, err := formula.Parse(res.MaxFormula); err != nil {
			errs = append(errs, fmt.Errorf("%s: max_formula: %w", where, err))
		}
		if res.RechargeOn != shared.RestTypeShort && res.RechargeOn != shared.RestTypeLong {
			errs = append(errs, fmt.Errorf("%s: recharge_on must be short_rest or long_rest, got %q", where, res.RechargeOn))
		}
		for _, eff := range res.OnUse {
			switch eff.Type {
			case rulebook.EffectGrantHP:
				if eff.Mode != rulebook.HPModeTemporary && eff.Mode != rulebook.HPModeBonus {
					errs = append(errs, fmt.Errorf("%s: grant_hp mode must be temporary or bonus, got %q", where, eff.Mode))
				}
				if _, err := formula.Parse(eff.Amount); err != nil {
					errs = append(errs, fmt.Errorf("%s: amount: %w", where, err))
				}
			case rulebook.EffectApplyModifiers:
				switch eff.Duration {
				case "", shared.DurationShortRest, shared.DurationLongRest, shared.DurationPermanent:
				default:
					errs = append(errs, fmt.Errorf("%s: unknown duration %q", where, eff.Duration))
				}
			default:
				errs = append(errs, fmt.Errorf("%s: unknown effect type %q", where, eff.Type))
			}
		}
	}
	return errs
}

func appendProblems(errs []error, path, owner string, problems []error) []error {
	for _, p := range problems {
		errs = append(errs, fmt.Errorf("%s: %s: %w", path, owner, p))
	}
	return errs
}

func decodeFile(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// yamlFiles lists *.yaml and *.yml files in dir, sorted. A missing dir is empty.
func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// parseCost reads "15 gp" style prices into copper
func parseCost(s string) (int, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, fmt.Errorf("cost %q must look like \"15 gp\"", s)
	}
	qty, err := strconv.Atoi(fields[0])
	if err != nil || qty < 0 {
		return 0, fmt.Errorf("cost %q has an invalid amount", s)
	}
	denom, err := shared.ParseDenomination(fields[1])
	if err != nil {
		return 0, fmt.Errorf("cost %q: %w", s, err)
	}
	return qty * denom.CopperValue(), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
