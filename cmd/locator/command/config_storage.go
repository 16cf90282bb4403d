package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-locator/internal/commands"
	"github.com/pixil98/go-locator/internal/roster"
	"github.com/pixil98/go-locator/internal/storage"
	"github.com/pixil98/go-locator/internal/zones"
)

type StorageConfig struct {
	Commands  AssetConfig[*commands.Command] `json:"commands"`
	Zones     AssetConfig[*zones.Zone]       `json:"zones"`
	Residents AssetConfig[*roster.Resident]  `json:"residents"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Commands.Validate("commands"))
	if c.Zones.Path != "" {
		el.Add(c.Zones.Validate("zones"))
	}
	if c.Residents.Path != "" {
		el.Add(c.Residents.Validate("residents"))
	}
	return el.Err()
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}

type ZoneConfig struct {
	IndexedWorlds []string `json:"indexed_worlds"`
}

func (c *ZoneConfig) validate() error {
	for i, w := range c.IndexedWorlds {
		if w == "" {
			return fmt.Errorf("zones: indexed world %d is empty", i)
		}
	}
	return nil
}

// buildIndex returns nil when there are no zone assets and no indexed
// worlds, in which case every zone lookup is unknown.
func (c *ZoneConfig) buildIndex(assets AssetConfig[*zones.Zone]) (*zones.Index, error) {
	if assets.Path == "" && len(c.IndexedWorlds) == 0 {
		return nil, nil
	}

	var store storage.Storer[*zones.Zone] = emptyZoneStore{}
	if assets.Path != "" {
		fs, err := assets.BuildFileStore()
		if err != nil {
			return nil, fmt.Errorf("loading zones: %w", err)
		}
		store = fs
	}

	return zones.NewIndex(store, c.IndexedWorlds), nil
}

type emptyZoneStore struct{}

func (emptyZoneStore) Get(storage.Identifier) *zones.Zone {
	return nil
}

func (emptyZoneStore) GetAll() map[storage.Identifier]*zones.Zone {
	return nil
}
