package characters

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/character"
	dnderr "github.com/KirkDiggler/dnd-character-sheet/internal/errors"
)

// InMemoryRepository keeps snapshots in a map.
// Useful for testing and development
type InMemoryRepository struct {
	mu         sync.RWMutex
	characters map[string]*character.Character
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		characters: make(map[string]*character.Character),
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, char *character.Character) error {
	if err := validateNew(char); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.characters[char.ID]; exists {
		return dnderr.AlreadyExistsf("character with ID '%s' already exists", char.ID).
			WithMeta("character_id", char.ID)
	}
	r.characters[char.ID] = char.Clone()
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, id string) (*character.Character, error) {
	if id == "" {
		return nil, dnderr.InvalidArgument("character ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	char, ok := r.characters[id]
	if !ok {
		return nil, notFound(id)
	}
	return char.Clone(), nil
}

func (r *InMemoryRepository) List(ctx context.Context, ownerID string) ([]string, error) {
	if ownerID == "" {
		return nil, dnderr.InvalidArgument("owner ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for id, char := range r.characters {
		if char.OwnerID == ownerID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dnderr.InvalidArgument("character ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.characters[id]; !ok {
		return notFound(id)
	}
	delete(r.characters, id)
	return nil
}

func (r *InMemoryRepository) Apply(ctx context.Context, id string, change character.Change, snapshot *character.Character) error {
	if snapshot == nil {
		return dnderr.InvalidArgument("snapshot is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.characters[id]
	if !ok {
		return notFound(id)
	}
	next, err := character.Restore(stored, snapshot, change)
	if err != nil {
		return err
	}
	r.characters[id] = next
	return nil
}

func (r *InMemoryRepository) ShortRest(ctx context.Context, id string, input ShortRestInput) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.characters[id]
	if !ok {
		return nil, notFound(id)
	}
	for _, key := range input.ResourceKeys {
		delete(stored.ResourceUsage, key)
	}
	return copyUsage(stored.ResourceUsage), nil
}

func (r *InMemoryRepository) LongRest(ctx context.Context, id string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.characters[id]
	if !ok {
		return nil, notFound(id)
	}
	stored.ResourceUsage = map[string]int{}
	return map[string]int{}, nil
}

func validateNew(char *character.Character) error {
	if char == nil {
		return dnderr.InvalidArgument("character cannot be nil")
	}
	if char.ID == "" {
		return dnderr.InvalidArgument("character ID is required")
	}
	if char.OwnerID == "" {
		return dnderr.InvalidArgument("character owner ID is required")
	}
	return nil
}

func notFound(id string) error {
	return dnderr.NotFoundf("character with ID '%s' not found", id).
		WithMeta("character_id", id)
}

func copyUsage(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		if v > 0 {
			out[k] = v
		}
	}
	return out
}
