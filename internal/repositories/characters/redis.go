package characters

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/character"
	dnderr "github.com/KirkDiggler/dnd-character-sheet/internal/errors"
)

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient
	Logger *zap.Logger
}

// redisRepo stores each character as three hashes: one field per character
// column, one per inventory entry and one per resource-usage row.
type redisRepo struct {
	client redis.UniversalClient
	logger *zap.Logger
}

// NewRedisRepository creates a new Redis-backed character repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil {
		panic("RedisRepoConfig cannot be nil")
	}
	if cfg.Client == nil {
		panic("Redis client cannot be nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisRepo{client: cfg.Client, logger: logger}
}

func (r *redisRepo) key(id string) string {
	return fmt.Sprintf("character:%s", id)
}

func (r *redisRepo) inventoryKey(id string) string {
	return fmt.Sprintf("character:%s:inventory", id)
}

func (r *redisRepo) resourcesKey(id string) string {
	return fmt.Sprintf("character:%s:resources", id)
}

func (r *redisRepo) ownerCharactersKey(ownerID string) string {
	return fmt.Sprintf("owner:%s:characters", ownerID)
}

func (r *redisRepo) Create(ctx context.Context, char *character.Character) error {
	if err := validateNew(char); err != nil {
		return err
	}

	fields, err := fieldRows(char, character.AllFields)
	if err != nil {
		return fmt.Errorf("failed to encode character: %w", err)
	}
	entries, err := entryRows(char.Inventory)
	if err != nil {
		return err
	}
	usage := usageRows(char.ResourceUsage)

	// the owner column doubles as the creation claim: only one concurrent
	// Create can set it on an absent hash
	claimed, err := r.client.HSetNX(ctx, r.key(char.ID), string(character.FieldOwner), ownerValue(fields)).Result()
	if err != nil {
		return fmt.Errorf("failed to claim character ID: %w", err)
	}
	if !claimed {
		return dnderr.AlreadyExistsf("character with ID '%s' already exists", char.ID).
			WithMeta("character_id", char.ID)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.key(char.ID), hashArgs(fields)...)
		if len(entries) > 0 {
			pipe.HSet(ctx, r.inventoryKey(char.ID), hashArgs(entries)...)
		}
		if len(usage) > 0 {
			pipe.HSet(ctx, r.resourcesKey(char.ID), hashArgs(usage)...)
		}
		pipe.SAdd(ctx, r.ownerCharactersKey(char.OwnerID), char.ID)
		return nil
	})
	if err != nil {
		if delErr := r.client.Del(ctx, r.key(char.ID)).Err(); delErr != nil {
			r.logger.Warn("failed to release character ID claim",
				zap.String("character_id", char.ID),
				zap.Error(delErr))
		}
		return fmt.Errorf("failed to create character: %w", err)
	}
	return nil
}

func ownerValue(fields []row) string {
	for _, f := range fields {
		if f.key == string(character.FieldOwner) {
			return f.value
		}
	}
	return ""
}

func (r *redisRepo) Get(ctx context.Context, id string) (*character.Character, error) {
	if id == "" {
		return nil, dnderr.InvalidArgument("character ID is required")
	}

	var fieldsCmd, entriesCmd, usageCmd *redis.MapStringStringCmd
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		fieldsCmd = pipe.HGetAll(ctx, r.key(id))
		entriesCmd = pipe.HGetAll(ctx, r.inventoryKey(id))
		usageCmd = pipe.HGetAll(ctx, r.resourcesKey(id))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get character: %w", err)
	}
	if len(fieldsCmd.Val()) == 0 {
		return nil, notFound(id)
	}

	return decodeCharacter(id, fieldsCmd.Val(), entriesCmd.Val(), usageCmd.Val(), r.logger)
}

func (r *redisRepo) List(ctx context.Context, ownerID string) ([]string, error) {
	if ownerID == "" {
		return nil, dnderr.InvalidArgument("owner ID is required")
	}

	ids, err := r.client.SMembers(ctx, r.ownerCharactersKey(ownerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list character IDs: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *redisRepo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dnderr.InvalidArgument("character ID is required")
	}

	ownerID, err := r.ownerOf(ctx, id)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key(id), r.inventoryKey(id), r.resourcesKey(id))
		pipe.SRem(ctx, r.ownerCharactersKey(ownerID), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete character: %w", err)
	}
	return nil
}

func (r *redisRepo) Apply(ctx context.Context, id string, change character.Change, snapshot *character.Character) error {
	if id == "" {
		return dnderr.InvalidArgument("character ID is required")
	}
	if snapshot == nil {
		return dnderr.InvalidArgument("snapshot is required")
	}
	if change.IsEmpty() {
		return nil
	}

	ownerID, err := r.ownerOf(ctx, id)
	if err != nil {
		return err
	}

	rows, err := rowsForChange(change, snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode change: %w", err)
	}
	ownerMoved := false
	for _, f := range change.Fields {
		ownerMoved = ownerMoved || (f == character.FieldOwner && snapshot.OwnerID != ownerID)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(rows.fields) > 0 {
			pipe.HSet(ctx, r.key(id), hashArgs(rows.fields)...)
		}
		if len(rows.entries) > 0 {
			pipe.HSet(ctx, r.inventoryKey(id), hashArgs(rows.entries)...)
		}
		if len(rows.removedEntries) > 0 {
			pipe.HDel(ctx, r.inventoryKey(id), rows.removedEntries...)
		}
		if len(rows.usage) > 0 {
			pipe.HSet(ctx, r.resourcesKey(id), hashArgs(rows.usage)...)
		}
		if len(rows.clearedUsage) > 0 {
			pipe.HDel(ctx, r.resourcesKey(id), rows.clearedUsage...)
		}
		if ownerMoved {
			pipe.SRem(ctx, r.ownerCharactersKey(ownerID), id)
			pipe.SAdd(ctx, r.ownerCharactersKey(snapshot.OwnerID), id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply character change: %w", err)
	}
	return nil
}

// ShortRest deletes the named usage rows and reads the rest back inside one
// MULTI so a concurrent use is either fully before or fully after the reset.
func (r *redisRepo) ShortRest(ctx context.Context, id string, input ShortRestInput) (map[string]int, error) {
	if _, err := r.ownerOf(ctx, id); err != nil {
		return nil, err
	}

	var usageCmd *redis.MapStringStringCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(input.ResourceKeys) > 0 {
			pipe.HDel(ctx, r.resourcesKey(id), input.ResourceKeys...)
		}
		usageCmd = pipe.HGetAll(ctx, r.resourcesKey(id))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to short rest: %w", err)
	}
	return parseUsage(usageCmd.Val()), nil
}

func (r *redisRepo) LongRest(ctx context.Context, id string) (map[string]int, error) {
	if _, err := r.ownerOf(ctx, id); err != nil {
		return nil, err
	}

	var usageCmd *redis.MapStringStringCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.resourcesKey(id))
		usageCmd = pipe.HGetAll(ctx, r.resourcesKey(id))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to long rest: %w", err)
	}
	return parseUsage(usageCmd.Val()), nil
}

// ownerOf doubles as the existence check
func (r *redisRepo) ownerOf(ctx context.Context, id string) (string, error) {
	raw, err := r.client.HGet(ctx, r.key(id), string(character.FieldOwner)).Result()
	if errors.Is(err, redis.Nil) {
		return "", notFound(id)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get character owner: %w", err)
	}
	var ownerID string
	if err := jsonString(raw, &ownerID); err != nil {
		return "", fmt.Errorf("failed to decode character owner: %w", err)
	}
	return ownerID, nil
}
