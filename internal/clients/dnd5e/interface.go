package dnd5e

//go:generate mockgen -destination=mock/mock_client.go -package=mockdnd5e . Client

import (
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/equipment"
	rulebook "github.com/KirkDiggler/dnd-character-sheet/internal/domain/rulebook/dnd5e"
)

// Client looks up SRD reference data and maps it into engine types
type Client interface {
	// GetItem returns the item definition for an SRD equipment key
	GetItem(key string) (*equipment.ItemDefinition, error)
	GetRace(key string) (*rulebook.Race, error)
	GetClass(key string) (*rulebook.Class, error)
}
