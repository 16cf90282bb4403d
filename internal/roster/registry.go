package roster

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/pixil98/go-locator/internal/protocol"
	"github.com/pixil98/go-locator/internal/storage"
)

// Presence publishes which process hosts a player.
type Presence interface {
	Announce(ctx context.Context, id uuid.UUID, name string) error
	Withdraw(ctx context.Context, id uuid.UUID, name string) error
}

// Player is a player connected to this process.
type Player struct {
	ID       uuid.UUID
	Name     string
	Location protocol.Sample
}

// Registry is the source of truth for players connected to this process.
// All access must go through its methods to ensure thread-safety.
type Registry struct {
	mu        sync.RWMutex
	players   map[uuid.UUID]*Player
	presence  Presence
	residents storage.Storer[*Resident]
}

type RegistryOpt func(*Registry)

// WithResidents makes Init join every resident in store.
func WithResidents(store storage.Storer[*Resident]) RegistryOpt {
	return func(r *Registry) {
		r.residents = store
	}
}

// NewRegistry creates an empty registry. presence may be nil.
func NewRegistry(presence Presence, opts ...RegistryOpt) *Registry {
	r := &Registry{
		players:  make(map[uuid.UUID]*Player),
		presence: presence,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Init joins the configured residents. It runs once the bus is connected.
func (r *Registry) Init(ctx context.Context) error {
	if r.residents == nil {
		return nil
	}
	return r.Seed(ctx, r.residents)
}

// Join registers a player on this process and announces them. The player
// is not registered when the announcement fails.
func (r *Registry) Join(ctx context.Context, id uuid.UUID, name string, loc protocol.Sample) error {
	r.mu.Lock()
	if _, exists := r.players[id]; exists {
		r.mu.Unlock()
		return ErrPlayerExists
	}
	r.players[id] = &Player{ID: id, Name: name, Location: loc}
	r.mu.Unlock()

	if r.presence != nil {
		if err := r.presence.Announce(ctx, id, name); err != nil {
			// A player nobody can find is not joined.
			r.mu.Lock()
			delete(r.players, id)
			r.mu.Unlock()
			return fmt.Errorf("announcing %s: %w", name, err)
		}
	}

	slog.InfoContext(ctx, "player joined", "player", id, "name", name)
	return nil
}

// Move updates a player's location.
func (r *Registry) Move(id uuid.UUID, loc protocol.Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.players[id]
	if !exists {
		return ErrPlayerNotFound
	}
	p.Location = loc
	return nil
}

// Leave removes a player from this process and withdraws their presence.
func (r *Registry) Leave(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	p, exists := r.players[id]
	if !exists {
		r.mu.Unlock()
		return ErrPlayerNotFound
	}
	delete(r.players, id)
	r.mu.Unlock()

	if r.presence != nil {
		if err := r.presence.Withdraw(ctx, id, p.Name); err != nil {
			return fmt.Errorf("withdrawing %s: %w", p.Name, err)
		}
	}

	slog.InfoContext(ctx, "player left", "player", id, "name", p.Name)
	return nil
}

// IsOnline reports whether the player is connected to this process.
func (r *Registry) IsOnline(id uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.players[id]
	return ok
}

// Sample captures the player's current location.
func (r *Registry) Sample(id uuid.UUID) (protocol.Sample, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[id]
	if !ok {
		return protocol.Sample{}, false
	}
	return p.Location, true
}

// ForEach calls fn with a copy of each player while holding the read lock.
func (r *Registry) ForEach(fn func(Player)) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.players {
		fn(*p)
	}
}

// Tick re-announces every player so directory entries do not expire while
// the player is still connected.
func (r *Registry) Tick(ctx context.Context) error {
	if r.presence == nil {
		return nil
	}

	var players []Player
	r.ForEach(func(p Player) {
		players = append(players, p)
	})

	for _, p := range players {
		if err := r.presence.Announce(ctx, p.ID, p.Name); err != nil {
			slog.WarnContext(ctx, "refreshing presence", "player", p.ID, "error", err)
		}
	}
	return nil
}
