package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// OriginHeader carries the name of the process that published a message.
const OriginHeader = "Locator-Origin"

// NatsBus addresses channels per process. A message sent to channel c on
// process p is published to "<prefix>.c.p"; every process listens on its
// own name only.
type NatsBus struct {
	conns   ConnProvider
	prefix  string
	process string
}

// NewNatsBus creates a bus for the named process.
func NewNatsBus(conns ConnProvider, prefix, process string) *NatsBus {
	return &NatsBus{
		conns:   conns,
		prefix:  prefix,
		process: process,
	}
}

// Process returns the name of this process on the bus.
func (b *NatsBus) Process() string {
	return b.process
}

// Send publishes data on channel for the given process, stamped with this
// process as the origin.
func (b *NatsBus) Send(ctx context.Context, process, channel string, data []byte) error {
	conn, err := b.conns.Conn(ctx)
	if err != nil {
		return fmt.Errorf("waiting for bus connection: %w", err)
	}

	msg := nats.NewMsg(b.subject(channel, process))
	msg.Header.Set(OriginHeader, b.process)
	msg.Data = data

	if err := conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publishing to %s: %w", msg.Subject, err)
	}
	return nil
}

// Listen subscribes handler to channel on this process. The returned
// function removes the subscription.
func (b *NatsBus) Listen(ctx context.Context, channel string, handler func(origin string, data []byte)) (func(), error) {
	conn, err := b.conns.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("waiting for bus connection: %w", err)
	}

	subject := b.subject(channel, b.process)
	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Header.Get(OriginHeader), msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", subject, err)
	}

	return func() {
		if err := sub.Unsubscribe(); err != nil {
			slog.Warn("unsubscribing", "subject", subject, "error", err)
		}
	}, nil
}

func (b *NatsBus) subject(channel, process string) string {
	return fmt.Sprintf("%s.%s.%s", b.prefix, channel, process)
}
