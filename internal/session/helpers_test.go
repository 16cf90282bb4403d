package session

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-locator/internal/commands"
	"github.com/pixil98/go-locator/internal/protocol"
	"github.com/pixil98/go-locator/internal/roster"
)

type fakeConn struct {
	io.Reader
	io.Writer
}

// syncBuffer is a bytes.Buffer safe to read while a session writes to it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fakeRoster struct {
	mu      sync.Mutex
	players map[uuid.UUID]string
	spawns  map[uuid.UUID]protocol.Sample
	left    []uuid.UUID
}

func newFakeRoster() *fakeRoster {
	return &fakeRoster{players: map[uuid.UUID]string{}, spawns: map[uuid.UUID]protocol.Sample{}}
}

func (r *fakeRoster) Join(_ context.Context, id uuid.UUID, name string, loc protocol.Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[id]; ok {
		return roster.ErrPlayerExists
	}
	r.players[id] = name
	r.spawns[id] = loc
	return nil
}

func (r *fakeRoster) Leave(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[id]; !ok {
		return roster.ErrPlayerNotFound
	}
	delete(r.players, id)
	r.left = append(r.left, id)
	return nil
}

func (r *fakeRoster) online(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.players[id]
	return ok
}

type fakeNames struct {
	online map[string]bool
}

func (n *fakeNames) IDByVisibleName(_ context.Context, name string) (uuid.UUID, bool, error) {
	if n.online[strings.ToLower(name)] {
		return PlayerID(name), true, nil
	}
	return uuid.Nil, false, nil
}

type fakeInbox struct {
	mu           sync.Mutex
	subs         map[uuid.UUID]func(string)
	unsubscribed int
}

func newFakeInbox() *fakeInbox {
	return &fakeInbox{subs: map[uuid.UUID]func(string){}}
}

func (i *fakeInbox) Subscribe(_ context.Context, id uuid.UUID, fn func(string)) (func(), error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.subs[id] = fn
	return func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		delete(i.subs, id)
		i.unsubscribed++
	}, nil
}

func (i *fakeInbox) send(id uuid.UUID, text string) bool {
	i.mu.Lock()
	fn, ok := i.subs[id]
	i.mu.Unlock()
	if ok {
		fn(text)
	}
	return ok
}

type execCall struct {
	actor protocol.Principal
	line  string
}

// fakeExecutor fails lines starting with "bad" as a user error and lines
// starting with "crash" as a system error.
type fakeExecutor struct {
	mu    sync.Mutex
	calls []execCall
}

func (e *fakeExecutor) ExecLine(_ context.Context, actor protocol.Principal, line string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, execCall{actor: actor, line: line})

	switch {
	case strings.HasPrefix(line, "bad"):
		return commands.NewUserError("Unknown command: bad")
	case strings.HasPrefix(line, "crash"):
		return io.ErrUnexpectedEOF
	}
	return nil
}

func (e *fakeExecutor) lines() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []string
	for _, c := range e.calls {
		out = append(out, c.line)
	}
	return out
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
