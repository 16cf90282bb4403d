// Package listener accepts player connections over telnet and ssh.
package listener

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
)

// SessionRunner plays one connection until the player leaves. suggested is
// a name the transport already knows, or empty.
type SessionRunner interface {
	RunSession(ctx context.Context, conn io.ReadWriter, suggested string) error
}

type ConnectionManager struct {
	runner SessionRunner
	active atomic.Int64
}

func NewConnectionManager(runner SessionRunner) *ConnectionManager {
	return &ConnectionManager{
		runner: runner,
	}
}

func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter, suggested string) {
	n := m.active.Add(1)
	defer m.active.Add(-1)
	slog.DebugContext(ctx, "session started", "active", n)

	if err := m.runner.RunSession(ctx, conn, suggested); err != nil {
		slog.WarnContext(ctx, "player session", "error", err)
	}
}

// Active returns the number of connections currently in a session.
func (m *ConnectionManager) Active() int64 {
	return m.active.Load()
}
