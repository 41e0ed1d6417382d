package characters

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/character"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
	dnderr "github.com/KirkDiggler/dnd-character-sheet/internal/errors"
	"github.com/KirkDiggler/dnd-character-sheet/internal/testutils"
)

// runRepositoryContract exercises behavior every backend shares. Each
// backend test gets a fresh, empty repository.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		repo := newRepo(t)
		char := testutils.CreateTestCharacter("char-1", "owner-1", 3)
		char.ResourceUsage["second_wind"] = 1
		require.NoError(t, repo.Create(ctx, char))

		got, err := repo.Get(ctx, "char-1")
		require.NoError(t, err)
		assert.Equal(t, "owner-1", got.OwnerID)
		assert.Equal(t, 3, got.CharacterLevel())
		assert.Equal(t, 12, got.AbilityScore(shared.AttributeStrength))
		assert.Equal(t, map[string]int{"second_wind": 1}, got.ResourceUsage)
		require.Len(t, got.Inventory, 1)
		assert.Equal(t, "entry-longsword", got.Inventory[0].ID)

		err = repo.Create(ctx, char)
		assert.True(t, dnderr.IsAlreadyExists(err), "got %v", err)
	})

	t.Run("concurrent creates of one ID admit exactly one", func(t *testing.T) {
		repo := newRepo(t)
		const attempts = 8

		var wg sync.WaitGroup
		errs := make([]error, attempts)
		for i := range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = repo.Create(ctx, testutils.CreateTestCharacter("char-1", "owner-1", 1))
			}()
		}
		wg.Wait()

		created := 0
		for _, err := range errs {
			if err == nil {
				created++
				continue
			}
			assert.True(t, dnderr.IsAlreadyExists(err), "got %v", err)
		}
		assert.Equal(t, 1, created)

		ids, err := repo.List(ctx, "owner-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"char-1"}, ids)
	})

	t.Run("get missing", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Get(ctx, "missing")
		assert.True(t, dnderr.IsNotFound(err))
	})

	t.Run("list by owner", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, testutils.CreateTestCharacter("char-b", "owner-1", 1)))
		require.NoError(t, repo.Create(ctx, testutils.CreateTestCharacter("char-a", "owner-1", 1)))
		require.NoError(t, repo.Create(ctx, testutils.CreateTestCharacter("char-c", "owner-2", 1)))

		ids, err := repo.List(ctx, "owner-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"char-a", "char-b"}, ids)
	})

	t.Run("apply writes only what changed", func(t *testing.T) {
		repo := newRepo(t)
		char := testutils.CreateTestCharacter("char-1", "owner-1", 2)
		require.NoError(t, repo.Create(ctx, char))

		potion := testutils.CreateTestEntry("entry-potion", &equipment.ItemDefinition{
			ID: "potion", Name: "Potion", Category: equipment.CategoryConsumable, Weight: 0.5,
		})
		next, change, err := character.Execute(char,
			character.Damage{Amount: 4},
			character.AcquireItem{Entry: potion},
			character.UseResource{Key: "second_wind"},
		)
		require.NoError(t, err)

		// a stale snapshot field that the change does not name must not land
		next.Name = "Renamed"
		require.NoError(t, repo.Apply(ctx, "char-1", change, next))

		got, err := repo.Get(ctx, "char-1")
		require.NoError(t, err)
		assert.Equal(t, "Test Character", got.Name)
		assert.Equal(t, next.HitPoints, got.HitPoints)
		assert.Equal(t, map[string]int{"second_wind": 1}, got.ResourceUsage)
		_, ok := got.Inventory.Get("entry-potion")
		assert.True(t, ok)

		after, change, err := character.ConsumeItem{EntryID: "entry-potion", Count: 1}.Apply(got)
		require.NoError(t, err)
		require.NoError(t, repo.Apply(ctx, "char-1", change, after))

		got, err = repo.Get(ctx, "char-1")
		require.NoError(t, err)
		_, ok = got.Inventory.Get("entry-potion")
		assert.False(t, ok)
	})

	t.Run("apply to missing character", func(t *testing.T) {
		repo := newRepo(t)
		char := testutils.CreateTestCharacter("ghost", "owner-1", 1)
		err := repo.Apply(ctx, "ghost", character.Change{}.With(character.FieldName), char)
		assert.True(t, dnderr.IsNotFound(err))
	})

	t.Run("rests reset usage atomically", func(t *testing.T) {
		repo := newRepo(t)
		char := testutils.CreateTestCharacter("char-1", "owner-1", 2)
		char.ResourceUsage = map[string]int{"second_wind": 1, "action_surge": 1}
		require.NoError(t, repo.Create(ctx, char))

		usage, err := repo.ShortRest(ctx, "char-1", ShortRestInput{ResourceKeys: []string{"second_wind"}})
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"action_surge": 1}, usage)

		usage, err = repo.LongRest(ctx, "char-1")
		require.NoError(t, err)
		assert.Empty(t, usage)

		got, err := repo.Get(ctx, "char-1")
		require.NoError(t, err)
		assert.Empty(t, got.ResourceUsage)

		_, err = repo.LongRest(ctx, "missing")
		assert.True(t, dnderr.IsNotFound(err))
	})

	t.Run("delete", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, testutils.CreateTestCharacter("char-1", "owner-1", 1)))
		require.NoError(t, repo.Delete(ctx, "char-1"))

		_, err := repo.Get(ctx, "char-1")
		assert.True(t, dnderr.IsNotFound(err))
		ids, err := repo.List(ctx, "owner-1")
		require.NoError(t, err)
		assert.Empty(t, ids)

		assert.True(t, dnderr.IsNotFound(repo.Delete(ctx, "char-1")))
	})
}
