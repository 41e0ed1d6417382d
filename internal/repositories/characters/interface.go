package characters

//go:generate mockgen -destination=mock/mock.go -package=mockcharacters -source=interface.go

import (
	"context"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/character"
)

// ShortRestInput names the resource-usage rows a short rest resets
type ShortRestInput struct {
	ResourceKeys []string
}

// Repository is the write boundary for character snapshots. Writes are
// idempotent "set these columns" calls keyed by what a command touched.
type Repository interface {
	// Create stores a new character with all of its rows
	Create(ctx context.Context, char *character.Character) error

	// Get loads a full snapshot
	Get(ctx context.Context, id string) (*character.Character, error)

	// List returns the IDs of an owner's characters
	List(ctx context.Context, ownerID string) ([]string, error)

	// Delete removes a character and its rows
	Delete(ctx context.Context, id string) error

	// Apply writes the parts of snapshot named by change
	Apply(ctx context.Context, id string, change character.Change, snapshot *character.Character) error

	// ShortRest resets the named usage rows atomically and returns the
	// resulting usage for every resource.
	ShortRest(ctx context.Context, id string, input ShortRestInput) (map[string]int, error)

	// LongRest resets every usage row atomically and returns the resulting usage
	LongRest(ctx context.Context, id string) (map[string]int, error)
}
