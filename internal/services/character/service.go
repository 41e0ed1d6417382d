package character

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/character"
	rulebook "github.com/KirkDiggler/dnd-character-sheet/internal/domain/rulebook/dnd5e"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/shared"
	dnderr "github.com/KirkDiggler/dnd-character-sheet/internal/errors"
	characters "github.com/KirkDiggler/dnd-character-sheet/internal/repositories/characters"
	"github.com/KirkDiggler/dnd-character-sheet/internal/uuid"
)

// Repository is an alias for the character repository interface
type Repository = characters.Repository

const defaultWriteConcurrency = 4

// Service opens characters as live sheets
type Service interface {
	// Create stores a new character and opens it
	Create(ctx context.Context, input *CreateInput) (*Sheet, error)

	// Open loads a character into a sheet
	Open(ctx context.Context, characterID string) (*Sheet, error)

	// List loads every character an owner has
	List(ctx context.Context, ownerID string) ([]*character.Character, error)

	// Delete removes a character
	Delete(ctx context.Context, characterID string) error
}

// CreateInput contains the data needed to create a character. Classes are
// in the order they were taken; the first one decides saving throws and the
// level-one hit die.
type CreateInput struct {
	OwnerID       string
	Name          string
	AbilityScores map[shared.Attribute]int
	Race          *rulebook.Race
	Background    *rulebook.Background
	Classes       []*rulebook.ClassLevel
	// MaxHitPoints overrides the computed starting maximum when positive
	MaxHitPoints int
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Repository    Repository     // Required
	Logger        *zap.Logger    // Optional, no-op if nil
	UUIDGenerator uuid.Generator // Optional, google uuids if nil
	// WriteConcurrency bounds in-flight writes per sheet
	WriteConcurrency int
}

type service struct {
	repository       Repository
	logger           *zap.Logger
	ids              uuid.Generator
	writeConcurrency int
}

// NewService creates a new character service
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil {
		panic("ServiceConfig cannot be nil")
	}
	if cfg.Repository == nil {
		panic("repository is required")
	}

	svc := &service{
		repository:       cfg.Repository,
		logger:           cfg.Logger,
		ids:              cfg.UUIDGenerator,
		writeConcurrency: cfg.WriteConcurrency,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.ids == nil {
		svc.ids = uuid.NewGoogleUUIDGenerator()
	}
	if svc.writeConcurrency < 1 {
		svc.writeConcurrency = defaultWriteConcurrency
	}
	return svc
}

func (s *service) Create(ctx context.Context, input *CreateInput) (*Sheet, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("input is required")
	}
	if strings.TrimSpace(input.OwnerID) == "" {
		return nil, dnderr.InvalidArgument("owner ID is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, dnderr.InvalidArgument("name is required")
	}
	for attr, score := range input.AbilityScores {
		if score < 1 || score > 30 {
			return nil, dnderr.InvalidArgumentf("%s score must be between 1 and 30, got %d", attr, score).
				WithMeta("attribute", string(attr))
		}
	}
	for _, cl := range input.Classes {
		if cl.Key() == "" || cl.Level < 1 {
			return nil, dnderr.InvalidArgument("every class needs a key and a positive level")
		}
	}

	char := character.New(s.ids.New(), input.OwnerID, strings.TrimSpace(input.Name))
	for attr, score := range input.AbilityScores {
		char.AbilityScores[attr] = score
	}
	char.Race = input.Race
	char.Background = input.Background
	char.Classes = input.Classes
	char.Level = char.TotalLevel()
	char.HitDice = character.HitDice{Current: char.Level, Max: char.Level}

	maxHP := input.MaxHitPoints
	if maxHP <= 0 {
		maxHP = startingHitPoints(char)
	}
	char.HitPoints = character.HitPoints{Current: maxHP, Max: maxHP}

	if err := s.repository.Create(ctx, char); err != nil {
		return nil, dnderr.Wrap(err, "failed to create character").
			WithMeta("owner_id", input.OwnerID)
	}

	s.logger.Info("character created",
		zap.String("character_id", char.ID),
		zap.String("owner_id", char.OwnerID),
		zap.Int("level", char.Level))

	return s.newSheet(char), nil
}

func (s *service) Open(ctx context.Context, characterID string) (*Sheet, error) {
	if characterID == "" {
		return nil, dnderr.InvalidArgument("character ID is required")
	}
	char, err := s.repository.Get(ctx, characterID)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to open character '%s'", characterID).
			WithMeta("character_id", characterID)
	}
	return s.newSheet(char), nil
}

func (s *service) List(ctx context.Context, ownerID string) ([]*character.Character, error) {
	if ownerID == "" {
		return nil, dnderr.InvalidArgument("owner ID is required")
	}
	ids, err := s.repository.List(ctx, ownerID)
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to list characters").
			WithMeta("owner_id", ownerID)
	}

	out := make([]*character.Character, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.writeConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			char, err := s.repository.Get(gctx, id)
			if err != nil {
				return dnderr.Wrapf(err, "failed to load character '%s'", id).
					WithMeta("character_id", id)
			}
			out[i] = char
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Delete(ctx context.Context, characterID string) error {
	if characterID == "" {
		return dnderr.InvalidArgument("character ID is required")
	}
	if err := s.repository.Delete(ctx, characterID); err != nil {
		return dnderr.Wrapf(err, "failed to delete character '%s'", characterID).
			WithMeta("character_id", characterID)
	}
	return nil
}

// startingHitPoints takes the full first hit die plus the average of every
// later die, adding the CON modifier per level.
func startingHitPoints(c *character.Character) int {
	die := c.HitDieSize()
	level := max(c.Level, 1)
	con := c.AbilityModifier(shared.AttributeConstitution)
	hp := die + con + (level-1)*(die/2+1+con)
	return max(hp, level)
}
