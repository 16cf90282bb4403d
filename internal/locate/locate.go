// Package locate answers "where is player X" across processes. The
// Originator sends queries and renders answers on the asking process; the
// Responder answers queries for players hosted on this process.
package locate

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pixil98/go-locator/internal/protocol"
	"github.com/pixil98/go-locator/internal/zones"
)

// Default capability labels.
const (
	DefaultLimitedCapability   = "location.limited"
	DefaultUnlimitedCapability = "location.unlimited"
)

// ErrTargetOffline is returned when a query names a player no process hosts.
var ErrTargetOffline = errors.New("target is not online")

// Bus moves encoded messages between processes.
type Bus interface {
	// Process is the name other processes use to address this one.
	Process() string
	Send(ctx context.Context, process, channel string, data []byte) error
	Listen(ctx context.Context, channel string, handler func(origin string, data []byte)) (func(), error)
}

// Directory knows which process hosts each player and what they are called.
type Directory interface {
	CurrentHost(ctx context.Context, id uuid.UUID) (string, error)
	VisibleName(ctx context.Context, id uuid.UUID) (string, error)
}

// Roster is the set of players connected to this process.
type Roster interface {
	IsOnline(id uuid.UUID) bool
	Sample(id uuid.UUID) (protocol.Sample, bool)
}

// ZoneIndex finds the named zones containing a point.
type ZoneIndex interface {
	ZonesContaining(world string, p zones.Point) ([]string, bool)
}

// Permissions answers capability checks.
type Permissions interface {
	HasCapability(p protocol.Principal, capability string) bool
}

// Notifier delivers rendered text to a principal.
type Notifier interface {
	Notify(ctx context.Context, to protocol.Principal, text string) error
}

// Config is the per-instance protocol configuration.
type Config struct {
	RequestChannel      string
	ResponseChannel     string
	LimitedCapability   string
	UnlimitedCapability string
	Precision           protocol.Precision
}

// DefaultConfig returns the standard channel names and capability labels.
func DefaultConfig() Config {
	return Config{
		RequestChannel:      protocol.DefaultRequestChannel,
		ResponseChannel:     protocol.DefaultResponseChannel,
		LimitedCapability:   DefaultLimitedCapability,
		UnlimitedCapability: DefaultUnlimitedCapability,
		Precision:           protocol.PrecisionBlock,
	}
}

func (c Config) validate() error {
	switch {
	case c.RequestChannel == "":
		return fmt.Errorf("request channel must be set")
	case c.ResponseChannel == "":
		return fmt.Errorf("response channel must be set")
	case c.RequestChannel == c.ResponseChannel:
		return fmt.Errorf("request and response channels must differ")
	}
	return nil
}
