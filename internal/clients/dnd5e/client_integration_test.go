//go:build integration

package dnd5e_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/dnd-character-sheet/internal/clients/dnd5e"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
)

func newLiveClient(t *testing.T) dnd5e.Client {
	t.Helper()
	client, err := dnd5e.New(&dnd5e.Config{
		HttpClient: &http.Client{Timeout: 10 * time.Second},
	})
	require.NoError(t, err)
	return client
}

func TestClient_GetItem_Live(t *testing.T) {
	client := newLiveClient(t)

	longsword, err := client.GetItem("longsword")
	require.NoError(t, err)
	assert.Equal(t, equipment.CategoryWeapon, longsword.Category)
	assert.Equal(t, "Martial Melee Weapon", longsword.Type)
	assert.Equal(t, 1500, longsword.CostCopper)

	chainMail, err := client.GetItem("chain-mail")
	require.NoError(t, err)
	assert.Equal(t, equipment.ArmorCategoryHeavy, chainMail.ArmorCategory())
	require.NotNil(t, chainMail.ArmorClass)
	assert.Equal(t, 16, chainMail.ArmorClass.Base)
}

func TestClient_GetClass_Live(t *testing.T) {
	client := newLiveClient(t)

	fighter, err := client.GetClass("fighter")
	require.NoError(t, err)
	assert.Equal(t, 10, fighter.HitDie)
	assert.ElementsMatch(t, []shared.Attribute{shared.AttributeStrength, shared.AttributeConstitution}, fighter.SavingThrows)
	assert.NotEmpty(t, fighter.ArmorProficiencies)
}
