package rulesdata

import (
	"sync"

	"go.uber.org/zap"

	"github.com/KirkDiggler/dnd-character-sheet/internal/clients/dnd5e"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/equipment"
	rulebook "github.com/KirkDiggler/dnd-character-sheet/internal/domain/rulebook/dnd5e"
	dnderr "github.com/KirkDiggler/dnd-character-sheet/internal/errors"
)

// CatalogConfig holds configuration for a catalog
type CatalogConfig struct {
	Rules *Rules // Required
	// SRD is consulted for items and classes the rules files do not define
	SRD    dnd5e.Client
	Logger *zap.Logger
}

// Catalog answers item, class and feat lookups from local rules first and the
// SRD second. SRD answers are cached for the life of the catalog.
type Catalog struct {
	rules  *Rules
	srd    dnd5e.Client
	logger *zap.Logger

	mu      sync.RWMutex
	items   map[string]*equipment.ItemDefinition
	classes map[string]*rulebook.Class
}

// NewCatalog creates a catalog over cfg.Rules
func NewCatalog(cfg *CatalogConfig) *Catalog {
	if cfg == nil || cfg.Rules == nil {
		panic("catalog rules are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		rules:   cfg.Rules,
		srd:     cfg.SRD,
		logger:  logger,
		items:   map[string]*equipment.ItemDefinition{},
		classes: map[string]*rulebook.Class{},
	}
}

// Item looks up an item definition by ID
func (c *Catalog) Item(id string) (*equipment.ItemDefinition, error) {
	if id == "" {
		return nil, dnderr.InvalidArgument("item ID is required")
	}
	if item, ok := c.rules.Items[id]; ok {
		return item, nil
	}

	c.mu.RLock()
	item, ok := c.items[id]
	c.mu.RUnlock()
	if ok {
		return item, nil
	}

	if c.srd == nil {
		return nil, dnderr.NotFoundf("item '%s' not found", id).WithMeta("item_id", id)
	}
	item, err := c.srd.GetItem(id)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to look up item '%s'", id).WithMeta("item_id", id)
	}
	c.logger.Debug("item resolved from SRD", zap.String("item_id", id))

	c.mu.Lock()
	c.items[id] = item
	c.mu.Unlock()
	return item, nil
}

// Class looks up a class by key
func (c *Catalog) Class(key string) (*rulebook.Class, error) {
	if key == "" {
		return nil, dnderr.InvalidArgument("class key is required")
	}
	if class, ok := c.rules.Classes[key]; ok {
		return class, nil
	}

	c.mu.RLock()
	class, ok := c.classes[key]
	c.mu.RUnlock()
	if ok {
		return class, nil
	}

	if c.srd == nil {
		return nil, dnderr.NotFoundf("class '%s' not found", key).WithMeta("class_key", key)
	}
	class, err := c.srd.GetClass(key)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to look up class '%s'", key).WithMeta("class_key", key)
	}
	c.logger.Debug("class resolved from SRD", zap.String("class_key", key))

	c.mu.Lock()
	c.classes[key] = class
	c.mu.Unlock()
	return class, nil
}

// Subclass looks up a subclass defined in the rules files
func (c *Catalog) Subclass(classKey, key string) (*rulebook.Subclass, error) {
	sub, ok := c.rules.Subclasses[classKey][key]
	if !ok {
		return nil, dnderr.NotFoundf("subclass '%s' of '%s' not found", key, classKey).
			WithMeta("class_key", classKey)
	}
	return sub, nil
}

// Feat looks up a feat. Feats only come from the rules files.
func (c *Catalog) Feat(key string) (*rulebook.Feat, error) {
	feat, ok := c.rules.Feats[key]
	if !ok {
		return nil, dnderr.NotFoundf("feat '%s' not found", key).WithMeta("feat_key", key)
	}
	return feat, nil
}
