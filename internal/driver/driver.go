package driver

import (
	"context"
	"fmt"
	"time"
)

const (
	DefaultTickLength = time.Second * 30
)

type Manager interface {
	Tick(context.Context) error
}

// Initializer is implemented by managers that need to run once before the
// first tick.
type Initializer interface {
	Init(context.Context) error
}

// Driver runs periodic upkeep such as refreshing directory entries.
type Driver struct {
	tickLength time.Duration
	managers   []Manager
}

func NewDriver(managers []Manager, opts ...DriverOpt) *Driver {
	d := &Driver{
		tickLength: DefaultTickLength,
		managers:   managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Driver) Start(ctx context.Context) error {
	for _, m := range d.managers {
		if i, ok := m.(Initializer); ok {
			if err := i.Init(ctx); err != nil {
				return fmt.Errorf("initializing manager: %w", err)
			}
		}
	}

	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := d.Tick(ctx)
			if err != nil {
				return err
			}
		}
	}
}

func (d *Driver) Tick(ctx context.Context) error {
	for _, m := range d.managers {
		if err := m.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}
