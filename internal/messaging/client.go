package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// ConnProvider hands out the process's bus connection once it exists.
type ConnProvider interface {
	Conn(ctx context.Context) (*nats.Conn, error)
}

// NatsClient connects to an external NATS server.
type NatsClient struct {
	url  string
	name string
	conn *nats.Conn

	ready chan struct{}
}

// NewNatsClient creates a client for url that identifies itself as name.
func NewNatsClient(url, name string) *NatsClient {
	return &NatsClient{
		url:   url,
		name:  name,
		ready: make(chan struct{}),
	}
}

func (c *NatsClient) Start(ctx context.Context) error {
	conn, err := nats.Connect(c.url,
		nats.Name(c.name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.WarnContext(ctx, "nats disconnected", "url", c.url, "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.InfoContext(ctx, "nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to nats at %s: %w", c.url, err)
	}
	c.conn = conn
	close(c.ready)

	slog.InfoContext(ctx, "nats connected", "url", conn.ConnectedUrl())

	<-ctx.Done()
	if err := c.conn.Drain(); err != nil {
		slog.WarnContext(ctx, "draining nats connection", "error", err)
	}

	return nil
}

// Conn waits for the connection to be established and returns it.
func (c *NatsClient) Conn(ctx context.Context) (*nats.Conn, error) {
	select {
	case <-c.ready:
		return c.conn, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
