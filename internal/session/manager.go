// Package session runs the players connected to this process through a
// network listener.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-locator/internal/protocol"
	"github.com/pixil98/go-locator/internal/roster"
)

const (
	defaultGreeting = "Welcome!"
	leaveTimeout    = 5 * time.Second
)

// Roster tracks the players on this process.
type Roster interface {
	Join(ctx context.Context, id uuid.UUID, name string, loc protocol.Sample) error
	Leave(ctx context.Context, id uuid.UUID) error
}

// Inbox carries text sent to a player.
type Inbox interface {
	Subscribe(ctx context.Context, id uuid.UUID, fn func(text string)) (func(), error)
}

// Executor runs one line of input on behalf of an actor.
type Executor interface {
	ExecLine(ctx context.Context, actor protocol.Principal, line string) error
}

type Manager struct {
	roster Roster
	inbox  Inbox
	exec   Executor
	login  *loginFlow
	spawn  protocol.Sample
}

type ManagerOpt func(*Manager)

// WithGreeting sets the first line shown to a new connection.
func WithGreeting(greeting string) ManagerOpt {
	return func(m *Manager) {
		m.login.greeting = greeting
	}
}

// NewManager creates a session manager. New players join the roster at
// spawn.
func NewManager(r Roster, names NameChecker, inbox Inbox, exec Executor, spawn protocol.Sample, opts ...ManagerOpt) *Manager {
	m := &Manager{
		roster: r,
		inbox:  inbox,
		exec:   exec,
		login:  &loginFlow{names: names, greeting: defaultGreeting},
		spawn:  spawn,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// RunSession logs a player in on conn and plays until they leave. The
// player is in the roster for exactly as long as the session runs.
func (m *Manager) RunSession(ctx context.Context, conn io.ReadWriter, suggested string) error {
	term := newTerminal(conn)

	name, err := m.login.run(ctx, term, suggested)
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}

	id := PlayerID(name)
	err = m.roster.Join(ctx, id, name, m.spawn)
	if errors.Is(err, roster.ErrPlayerExists) {
		return term.writeLine("That player is already connected.")
	}
	if err != nil {
		return fmt.Errorf("joining %s: %w", name, err)
	}
	defer func() {
		leaveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), leaveTimeout)
		defer cancel()
		if err := m.roster.Leave(leaveCtx, id); err != nil {
			slog.WarnContext(ctx, "removing player from roster", "player", id, "name", name, "error", err)
		}
	}()

	s := &Session{
		id:   id,
		name: name,
		term: term,
		exec: m.exec,
		msgs: make(chan string, maxPendingMessages),
	}

	unsubscribe, err := m.inbox.Subscribe(ctx, id, s.deliver)
	if err != nil {
		return fmt.Errorf("subscribing %s: %w", name, err)
	}
	defer unsubscribe()

	if err := term.writeLine(fmt.Sprintf("You are known as %s.", name)); err != nil {
		return err
	}

	err = s.Play(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
