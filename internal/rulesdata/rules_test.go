package rulesdata_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/modifier"
	rulebook "github.com/KirkDiggler/dnd-character-sheet/internal/domain/rulebook/dnd5e"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
	dnderr "github.com/KirkDiggler/dnd-character-sheet/internal/errors"
	"github.com/KirkDiggler/dnd-character-sheet/internal/rulesdata"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Class(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "classes", "paladin.yaml"), `
key: paladin
name: Paladin
hit_die: 10
saving_throws: [wisdom, CHA]
armor_proficiencies: [All Armor, Shields]
spellcasting:
  ability: cha
  progression: half
features:
  - key: divine-health
    name: Divine Health
    level: 3
    modifiers:
      - type: saving_throw_proficiency
        target: con
        value: true
resources:
  - key: lay_on_hands
    name: Lay on Hands
    max_formula: "level * 5"
    recharge_on: long_rest
    unlock_level: 1
    on_use:
      - type: grant_hp
        mode: bonus
        amount: "5"
subclasses:
  - key: devotion
    name: Oath of Devotion
`)

	rules, err := rulesdata.Load(dir)
	require.NoError(t, err)

	require.Contains(t, rules.Classes, "paladin")
	paladin := rules.Classes["paladin"]
	assert.Equal(t, 10, paladin.HitDie)
	assert.Equal(t, []shared.Attribute{shared.AttributeWisdom, shared.AttributeCharisma}, paladin.SavingThrows)
	require.NotNil(t, paladin.Spellcasting)
	assert.Equal(t, rulebook.ProgressionHalf, paladin.Spellcasting.Progression)

	require.Len(t, paladin.Features, 1)
	assert.Equal(t, modifier.List{
		modifier.SavingThrowProficiency{Ability: shared.AttributeConstitution},
	}, paladin.Features[0].Modifiers)

	require.Len(t, paladin.Resources, 1)
	assert.Equal(t, shared.RestTypeLong, paladin.Resources[0].RechargeOn)
	assert.Equal(t, rulebook.HPModeBonus, paladin.Resources[0].OnUse[0].Mode)

	assert.Equal(t, "Oath of Devotion", rules.Subclasses["paladin"]["devotion"].Name)
}

func TestLoad_Items(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "items", "gear.yml"), `
items:
  - id: belt-of-giant-strength
    name: Belt of Hill Giant Strength
    category: treasure
    slot: waist
    magical: true
    requires_attunement: true
    modifiers:
      - {type: override, target: str, value: "21"}
  - id: breastplate
    name: Breastplate
    category: armor
    type: Medium Armor
    slot: chest
    weight: 20
    cost: 400 gp
    armor_class: {base: 14, dex_bonus: true, max_bonus: 2}
`)

	rules, err := rulesdata.Load(dir)
	require.NoError(t, err)
	require.Len(t, rules.Items, 2)

	belt := rules.Items["belt-of-giant-strength"]
	assert.Equal(t, shared.SlotWaist, belt.Slot)
	assert.True(t, belt.RequiresAttunement)
	assert.Equal(t, modifier.List{modifier.Override{Target: "str", Value: 21}}, belt.Modifiers)

	plate := rules.Items["breastplate"]
	assert.Equal(t, 40000, plate.CostCopper)
	assert.Equal(t, equipment.ArmorCategoryMedium, plate.ArmorCategory())
	assert.Equal(t, &equipment.ArmorClass{Base: 14, DexBonus: true, MaxBonus: 2}, plate.ArmorClass)
}

func TestLoad_Feats(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "feats", "feats.yaml"), `
feats:
  - key: asi
    name: Ability Score Improvement
    modifiers:
      - {type: ability_point_grant, value: 2}
`)

	rules, err := rulesdata.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, rulebook.AbilityPoints(rules.Feats["asi"].Modifiers))
}

func TestLoad_MissingSubdirectoriesAreEmpty(t *testing.T) {
	rules, err := rulesdata.Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, rules.Classes)
	assert.Empty(t, rules.Items)
	assert.Empty(t, rules.Feats)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		wantErr string
	}{
		{
			name:    "bad hit die",
			path:    "classes/bad.yaml",
			content: "key: bad\nname: Bad\nhit_die: 7\n",
			wantErr: "hit_die must be 6, 8, 10 or 12",
		},
		{
			name: "bad formula",
			path: "classes/bad.yaml",
			content: `
key: bad
name: Bad
hit_die: 8
resources:
  - {key: ki, name: Ki, max_formula: "level +", recharge_on: short_rest}
`,
			wantErr: "max_formula",
		},
		{
			name: "formula with a call is rejected",
			path: "classes/bad.yaml",
			content: `
key: bad
name: Bad
hit_die: 8
resources:
  - {key: ki, name: Ki, max_formula: "max(level, 1)", recharge_on: short_rest}
`,
			wantErr: "max_formula",
		},
		{
			name:    "unknown field",
			path:    "classes/bad.yaml",
			content: "key: bad\nname: Bad\nhit_die: 8\nhit_dice: 8\n",
			wantErr: "field hit_dice not found",
		},
		{
			name: "malformed modifier",
			path: "feats/feats.yaml",
			content: `
feats:
  - key: odd
    name: Odd
    modifiers:
      - {type: bonus, target: ac, value: lots}
`,
			wantErr: `feat "odd"`,
		},
		{
			name: "duplicate item",
			path: "items/dup.yaml",
			content: `
items:
  - {id: rope, name: Rope, category: gear}
  - {id: rope, name: Rope, category: gear}
`,
			wantErr: `duplicate item "rope"`,
		},
		{
			name:    "armor without armor class",
			path:    "items/armor.yaml",
			content: "items:\n  - {id: hide, name: Hide, category: armor, slot: chest}\n",
			wantErr: "armor needs armor_class",
		},
		{
			name:    "bad cost",
			path:    "items/gear.yaml",
			content: "items:\n  - {id: rope, name: Rope, category: gear, cost: 1 doubloon}\n",
			wantErr: "unknown denomination",
		},
		{
			name:    "unknown slot",
			path:    "items/gear.yaml",
			content: "items:\n  - {id: hat, name: Hat, category: gear, slot: tail}\n",
			wantErr: `unknown slot "tail"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, filepath.FromSlash(tt.path)), tt.content)

			_, err := rulesdata.Load(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsValidationCode(t *testing.T) {
	rules := rulesdata.New()
	assert.NoError(t, rules.Validate())

	rules.Classes["bad"] = &rulebook.Class{Key: "bad", Name: "Bad", HitDie: 7}
	err := rules.Validate()
	require.Error(t, err)
	assert.True(t, dnderr.IsValidation(err))

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "classes", "bad.yaml"), "key: bad\nname: Bad\nhit_die: 7\n")
	_, err = rulesdata.Load(dir)
	require.Error(t, err)
	assert.True(t, dnderr.IsValidation(err))
}

func TestLoad_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	writeFile(t, path, "")

	_, err := rulesdata.Load(path)
	assert.Error(t, err)
}

func TestLoad_BundledRules(t *testing.T) {
	rules, err := rulesdata.Load(filepath.Join("..", "..", "rules"))
	require.NoError(t, err)

	assert.Contains(t, rules.Classes, "fighter")
	assert.Contains(t, rules.Subclasses["fighter"], "eldritch-knight")
	assert.Contains(t, rules.Items, "longsword")
	assert.Contains(t, rules.Feats, "tough")
}
