package dnd5e

import (
	"net/http"

	"github.com/fadedpez/dnd5e-api/clients/dnd5e"
	apiEntities "github.com/fadedpez/dnd5e-api/entities"
	"go.uber.org/zap"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/equipment"
	rulebook "github.com/KirkDiggler/dnd-character-sheet/internal/domain/rulebook/dnd5e"
	dnderr "github.com/KirkDiggler/dnd-character-sheet/internal/errors"
)

// srdAPI is the part of the upstream client this package calls
type srdAPI interface {
	GetEquipment(key string) (dnd5e.EquipmentInterface, error)
	GetRace(key string) (*apiEntities.Race, error)
	GetClass(key string) (*apiEntities.Class, error)
}

// TODO: add context to functions once the upstream client takes one
type client struct {
	api    srdAPI
	logger *zap.Logger
}

type Config struct {
	HttpClient *http.Client
	// BaseURL redirects requests to a mirror; empty means DefaultBaseURL
	BaseURL string
	Logger  *zap.Logger
}

func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, dnderr.InvalidArgument("dnd5e client config is required")
	}

	httpClient := cfg.HttpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.BaseURL != "" && cfg.BaseURL != DefaultBaseURL {
		transport, err := newRebaseTransport(cfg.BaseURL, httpClient.Transport)
		if err != nil {
			return nil, dnderr.Wrapf(err, "invalid dnd5e base url '%s'", cfg.BaseURL)
		}
		rebased := *httpClient
		rebased.Transport = transport
		httpClient = &rebased
	}

	api, err := dnd5e.NewDND5eAPI(&dnd5e.DND5eAPIConfig{
		Client: httpClient,
	})
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to create dnd5e api client")
	}

	return newClient(api, cfg.Logger), nil
}

func newClient(api srdAPI, logger *zap.Logger) *client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &client{api: api, logger: logger}
}

func (c *client) GetItem(key string) (*equipment.ItemDefinition, error) {
	if key == "" {
		return nil, dnderr.InvalidArgument("item key is required")
	}

	response, err := c.api.GetEquipment(key)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to get equipment '%s'", key).
			WithMeta("item_key", key)
	}

	item := apiEquipmentToItem(response)
	if item == nil {
		return nil, dnderr.NotFoundf("equipment '%s' has no supported type", key).
			WithMeta("item_key", key)
	}
	return item, nil
}

func (c *client) GetRace(key string) (*rulebook.Race, error) {
	if key == "" {
		return nil, dnderr.InvalidArgument("race key is required")
	}

	response, err := c.api.GetRace(key)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to get race '%s'", key).
			WithMeta("race_key", key)
	}
	if response == nil {
		return nil, dnderr.NotFoundf("race '%s' not found", key)
	}

	return c.apiRaceToRace(response), nil
}

func (c *client) GetClass(key string) (*rulebook.Class, error) {
	if key == "" {
		return nil, dnderr.InvalidArgument("class key is required")
	}

	response, err := c.api.GetClass(key)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to get class '%s'", key).
			WithMeta("class_key", key)
	}
	if response == nil {
		return nil, dnderr.NotFoundf("class '%s' not found", key)
	}

	return apiClassToClass(response), nil
}
