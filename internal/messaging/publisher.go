package messaging

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/pixil98/go-locator/internal/protocol"
)

// PlayerSubject is the subject a player's session reads text from.
func PlayerSubject(id uuid.UUID) string {
	return fmt.Sprintf("player-%s", id)
}

// PlayerNotifier delivers text to players over their session subjects and
// to the console through a writer. Sessions read their subject through
// Subscribe.
type PlayerNotifier struct {
	conns   ConnProvider
	console io.Writer

	mu sync.Mutex
}

// NewPlayerNotifier wraps a connection provider and the console output.
func NewPlayerNotifier(conns ConnProvider, console io.Writer) *PlayerNotifier {
	return &PlayerNotifier{conns: conns, console: console}
}

func (p *PlayerNotifier) Notify(ctx context.Context, to protocol.Principal, text string) error {
	if to.Console {
		p.mu.Lock()
		defer p.mu.Unlock()
		_, err := fmt.Fprintln(p.console, text)
		return err
	}

	conn, err := p.conns.Conn(ctx)
	if err != nil {
		return fmt.Errorf("waiting for bus connection: %w", err)
	}
	return conn.Publish(PlayerSubject(to.ID), []byte(text))
}

// Subscribe calls fn with every text sent to the player until the returned
// function is called.
func (p *PlayerNotifier) Subscribe(ctx context.Context, id uuid.UUID, fn func(text string)) (func(), error) {
	conn, err := p.conns.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("waiting for bus connection: %w", err)
	}

	sub, err := conn.Subscribe(PlayerSubject(id), func(m *nats.Msg) {
		fn(string(m.Data))
	})
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", PlayerSubject(id), err)
	}
	if err := conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, fmt.Errorf("flushing subscription: %w", err)
	}

	return func() {
		_ = sub.Unsubscribe()
	}, nil
}
