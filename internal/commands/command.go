package commands

import (
	"fmt"
	"regexp"
)

var aliasPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Command defines a command loaded from JSON. The asset id is the command
// name players type.
type Command struct {
	Handler string         `json:"handler"`
	Aliases []string       `json:"aliases"`
	Config  map[string]any `json:"config"` // Config passed to handler, may contain templates
}

func (c *Command) Validate() error {
	if c.Handler == "" {
		return fmt.Errorf("command handler not set")
	}

	for i, alias := range c.Aliases {
		if !aliasPattern.MatchString(alias) {
			return fmt.Errorf("alias %d: %q must be lowercase alphanumeric", i, alias)
		}
	}

	return nil
}
