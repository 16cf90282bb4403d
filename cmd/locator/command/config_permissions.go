package command

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pixil98/go-locator/internal/permissions"
)

type PermissionsConfig struct {
	Path string `json:"path"`
}

func (c *PermissionsConfig) validate() error {
	if c.Path == "" {
		return nil
	}
	if _, err := os.Stat(c.Path); err != nil {
		return fmt.Errorf("permissions: invalid path %q: %w", c.Path, err)
	}
	return nil
}

func (c *PermissionsConfig) build() (*permissions.Store, error) {
	if c.Path == "" {
		slog.Warn("no permissions path configured, only the console may locate other players")
		return permissions.New(permissions.File{})
	}
	return permissions.Load(c.Path)
}
