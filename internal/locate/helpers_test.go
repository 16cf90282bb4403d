package locate

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-locator/internal/protocol"
	"github.com/pixil98/go-locator/internal/zones"
)

// memNetwork delivers messages between memBus instances synchronously.
type memNetwork struct {
	mu       sync.Mutex
	handlers map[string]map[string]func(origin string, data []byte)
	sent     []memMessage
}

type memMessage struct {
	from, to, channel, data string
}

func newMemNetwork() *memNetwork {
	return &memNetwork{handlers: make(map[string]map[string]func(string, []byte))}
}

func (n *memNetwork) bus(process string) *memBus {
	return &memBus{net: n, process: process}
}

func (n *memNetwork) listening(process, channel string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.handlers[process][channel]
	return ok
}

func (n *memNetwork) messages() []memMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]memMessage(nil), n.sent...)
}

type memBus struct {
	net     *memNetwork
	process string
}

func (b *memBus) Process() string {
	return b.process
}

func (b *memBus) Send(_ context.Context, process, channel string, data []byte) error {
	b.net.mu.Lock()
	b.net.sent = append(b.net.sent, memMessage{from: b.process, to: process, channel: channel, data: string(data)})
	h := b.net.handlers[process][channel]
	b.net.mu.Unlock()

	if h != nil {
		h(b.process, data)
	}
	return nil
}

func (b *memBus) Listen(_ context.Context, channel string, handler func(origin string, data []byte)) (func(), error) {
	b.net.mu.Lock()
	defer b.net.mu.Unlock()

	if b.net.handlers[b.process] == nil {
		b.net.handlers[b.process] = make(map[string]func(string, []byte))
	}
	b.net.handlers[b.process][channel] = handler

	return func() {
		b.net.mu.Lock()
		defer b.net.mu.Unlock()
		delete(b.net.handlers[b.process], channel)
	}, nil
}

// failingBus refuses every send.
type failingBus struct {
	memBus
}

func (b *failingBus) Send(_ context.Context, _, _ string, _ []byte) error {
	return fmt.Errorf("bus closed")
}

type dirEntry struct {
	host string
	name string
}

type fakeDirectory struct {
	mu      sync.Mutex
	entries map[uuid.UUID]dirEntry
	err     error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{entries: make(map[uuid.UUID]dirEntry)}
}

func (d *fakeDirectory) set(id uuid.UUID, host, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[id] = dirEntry{host: host, name: name}
}

func (d *fakeDirectory) CurrentHost(_ context.Context, id uuid.UUID) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.entries[id].host, d.err
}

func (d *fakeDirectory) VisibleName(_ context.Context, id uuid.UUID) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.entries[id].name, d.err
}

type fakeRoster struct {
	players map[uuid.UUID]protocol.Sample
}

func newFakeRoster() *fakeRoster {
	return &fakeRoster{players: make(map[uuid.UUID]protocol.Sample)}
}

func (r *fakeRoster) IsOnline(id uuid.UUID) bool {
	_, ok := r.players[id]
	return ok
}

func (r *fakeRoster) Sample(id uuid.UUID) (protocol.Sample, bool) {
	s, ok := r.players[id]
	return s, ok
}

type fakeZones struct {
	worlds map[string][]string
}

func (z *fakeZones) ZonesContaining(world string, _ zones.Point) ([]string, bool) {
	names, ok := z.worlds[world]
	if !ok {
		return nil, false
	}
	return append([]string{}, names...), true
}

type fakePermissions struct {
	grants map[uuid.UUID][]string
}

func (p *fakePermissions) HasCapability(who protocol.Principal, capability string) bool {
	if who.Console {
		return true
	}
	for _, c := range p.grants[who.ID] {
		if c == capability {
			return true
		}
	}
	return false
}

type notification struct {
	to   protocol.Principal
	text string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) Notify(_ context.Context, to protocol.Principal, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{to: to, text: text})
	return nil
}

func (n *recordingNotifier) notifications() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.sent...)
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
