package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/KirkDiggler/dnd-character-sheet/internal/clients/dnd5e"
	"github.com/KirkDiggler/dnd-character-sheet/internal/config"
	"github.com/KirkDiggler/dnd-character-sheet/internal/repositories/characters"
	"github.com/KirkDiggler/dnd-character-sheet/internal/rulesdata"
	characterService "github.com/KirkDiggler/dnd-character-sheet/internal/services/character"
)

// Provider holds all service instances
type Provider struct {
	CharacterService characterService.Service
	Catalog          *rulesdata.Catalog

	closers []func() error
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	Config *config.Config // Required
	Logger *zap.Logger
	// CharacterRepository skips the configured storage driver when set
	CharacterRepository characters.Repository
	// DNDClient skips building the SRD client when set
	DNDClient dnd5e.Client
}

// NewProvider opens the configured store, loads the rules directory and
// wires the character service. Close releases the store.
func NewProvider(ctx context.Context, cfg *ProviderConfig) (*Provider, error) {
	if cfg == nil || cfg.Config == nil {
		return nil, errors.New("provider config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Provider{}

	repo := cfg.CharacterRepository
	if repo == nil {
		var closer func() error
		var err error
		repo, closer, err = openRepository(ctx, cfg.Config, logger)
		if err != nil {
			return nil, err
		}
		if closer != nil {
			p.closers = append(p.closers, closer)
		}
	}

	rules, err := rulesdata.Load(cfg.Config.Rules.Dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Warn("rules directory not found, starting with no local rules",
			zap.String("dir", cfg.Config.Rules.Dir))
		rules = rulesdata.New()
	case err != nil:
		_ = p.Close()
		return nil, err
	}

	srd := cfg.DNDClient
	if srd == nil && cfg.Config.DND5E.Enabled {
		srd, err = dnd5e.New(&dnd5e.Config{
			HttpClient: &http.Client{Timeout: cfg.Config.DND5E.Timeout},
			BaseURL:    cfg.Config.DND5E.BaseURL,
			Logger:     logger.Named("dnd5e"),
		})
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("failed to create D&D 5e client: %w", err)
		}
	}

	p.Catalog = rulesdata.NewCatalog(&rulesdata.CatalogConfig{
		Rules:  rules,
		SRD:    srd,
		Logger: logger.Named("catalog"),
	})
	p.CharacterService = characterService.NewService(&characterService.ServiceConfig{
		Repository:       repo,
		Logger:           logger.Named("character"),
		WriteConcurrency: cfg.Config.Engine.WriteConcurrency,
	})

	logger.Info("services ready",
		zap.String("storage", cfg.Config.Storage.Driver),
		zap.Int("classes", len(rules.Classes)),
		zap.Int("items", len(rules.Items)),
		zap.Bool("srd", srd != nil))
	return p, nil
}

// Close releases the store
func (p *Provider) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		errs = append(errs, p.closers[i]())
	}
	p.closers = nil
	return errors.Join(errs...)
}

func openRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (characters.Repository, func() error, error) {
	switch cfg.Storage.Driver {
	case config.StorageRedis:
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Info("using redis character store", zap.String("addr", opts.Addr))
		repo := characters.NewRedisRepository(&characters.RedisRepoConfig{
			Client: client,
			Logger: logger.Named("redis"),
		})
		return repo, client.Close, nil

	case config.StorageSQLite:
		if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("failed to create sqlite directory: %w", err)
			}
		}
		store, err := characters.OpenSQLite(ctx, cfg.SQLite.Path, logger.Named("sqlite"))
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using sqlite character store", zap.String("path", cfg.SQLite.Path))
		return store, store.Close, nil

	default:
		logger.Info("using in-memory character store")
		return characters.NewInMemoryRepository(), nil, nil
	}
}
