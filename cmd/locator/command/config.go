package command

import (
	"fmt"
	"regexp"
	"time"

	"github.com/pixil98/go-errors"
)

const defaultTickInterval = 30 * time.Second

// tokenPattern limits names that become part of a bus subject or bucket.
var tokenPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type Config struct {
	Process      string            `json:"process"`
	TickInterval string            `json:"tick_interval"`
	Nats         NatsConfig        `json:"nats"`
	Locator      LocatorConfig     `json:"locator"`
	Permissions  PermissionsConfig `json:"permissions"`
	Storage      StorageConfig     `json:"storage"`
	Zones        ZoneConfig        `json:"zones"`
	Console      ConsoleConfig     `json:"console"`
	Sessions     SessionsConfig    `json:"sessions"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if !tokenPattern.MatchString(c.Process) {
		el.Add(fmt.Errorf("process must be set to letters, digits, '-' or '_'"))
	}

	tick, err := c.tickInterval()
	if err != nil {
		el.Add(err)
	} else if tick < time.Second {
		el.Add(fmt.Errorf("tick_interval must be at least 1 second"))
	} else if ttl, err := c.Nats.directoryTTL(); err == nil && tick >= ttl {
		el.Add(fmt.Errorf("tick_interval must be shorter than nats.directory_ttl"))
	}

	el.Add(c.Nats.validate())
	el.Add(c.Locator.validate())
	el.Add(c.Permissions.validate())
	el.Add(c.Storage.validate())
	el.Add(c.Zones.validate())
	el.Add(c.Sessions.validate())

	return el.Err()
}

func (c *Config) tickInterval() (time.Duration, error) {
	if c.TickInterval == "" {
		return defaultTickInterval, nil
	}
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		return 0, fmt.Errorf("parsing tick_interval: %w", err)
	}
	return d, nil
}

type ConsoleConfig struct {
	Enabled bool `json:"enabled"`
}
