// Package directory publishes which process hosts each player on a NATS
// JetStream key-value store so every process can route queries and
// resolve display names.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/pixil98/go-locator/internal/messaging"
	"golang.org/x/text/cases"
)

var nameKeyPattern = regexp.MustCompile(`^[-_=a-z0-9]+$`)

// entry is the value stored for each online player.
type entry struct {
	Name string `json:"name"`
	Host string `json:"host"`
}

// KVDirectory keeps two buckets: players maps uuid to {name, host} and
// names maps a case-folded name back to the uuid. Both buckets expire
// entries after the ttl, so hosts must re-announce their players.
type KVDirectory struct {
	conns   messaging.ConnProvider
	prefix  string
	process string
	ttl     time.Duration

	mu      sync.Mutex
	players jetstream.KeyValue
	names   jetstream.KeyValue
}

// NewKVDirectory creates a directory for the named process. Buckets are
// created on first use.
func NewKVDirectory(conns messaging.ConnProvider, prefix, process string, ttl time.Duration) *KVDirectory {
	return &KVDirectory{
		conns:   conns,
		prefix:  prefix,
		process: process,
		ttl:     ttl,
	}
}

func (d *KVDirectory) buckets(ctx context.Context) (jetstream.KeyValue, jetstream.KeyValue, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.players != nil {
		return d.players, d.names, nil
	}

	conn, err := d.conns.Conn(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("waiting for bus connection: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		return nil, nil, fmt.Errorf("creating jetstream context: %w", err)
	}

	players, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  d.prefix + "-players",
		TTL:     d.ttl,
		Storage: jetstream.MemoryStorage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening players bucket: %w", err)
	}

	names, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  d.prefix + "-names",
		TTL:     d.ttl,
		Storage: jetstream.MemoryStorage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening names bucket: %w", err)
	}

	d.players = players
	d.names = names
	return players, names, nil
}

// Announce records that this process hosts the player.
func (d *KVDirectory) Announce(ctx context.Context, id uuid.UUID, name string) error {
	key, err := nameKey(name)
	if err != nil {
		return err
	}

	players, names, err := d.buckets(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(entry{Name: name, Host: d.process})
	if err != nil {
		return fmt.Errorf("encoding entry: %w", err)
	}

	if _, err := players.Put(ctx, id.String(), data); err != nil {
		return fmt.Errorf("storing player %s: %w", id, err)
	}
	if _, err := names.Put(ctx, key, []byte(id.String())); err != nil {
		return fmt.Errorf("storing name %s: %w", name, err)
	}
	return nil
}

// Withdraw removes the player if this process still hosts them. A player
// that has already moved to another process is left alone.
func (d *KVDirectory) Withdraw(ctx context.Context, id uuid.UUID, name string) error {
	players, names, err := d.buckets(ctx)
	if err != nil {
		return err
	}

	kve, e, err := d.lookup(ctx, players, id)
	if err != nil || kve == nil {
		return err
	}
	if e.Host != d.process {
		return nil
	}

	err = players.Delete(ctx, id.String(), jetstream.LastRevision(kve.Revision()))
	if err != nil && !isMissing(err) {
		return fmt.Errorf("removing player %s: %w", id, err)
	}

	key, err := nameKey(name)
	if err != nil {
		return err
	}
	nke, err := names.Get(ctx, key)
	if isMissing(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading name %s: %w", name, err)
	}
	if string(nke.Value()) != id.String() {
		return nil
	}
	err = names.Delete(ctx, key, jetstream.LastRevision(nke.Revision()))
	if err != nil && !isMissing(err) {
		return fmt.Errorf("removing name %s: %w", name, err)
	}
	return nil
}

// CurrentHost returns the process hosting the player, or "" when the
// player is not online anywhere.
func (d *KVDirectory) CurrentHost(ctx context.Context, id uuid.UUID) (string, error) {
	players, _, err := d.buckets(ctx)
	if err != nil {
		return "", err
	}

	_, e, err := d.lookup(ctx, players, id)
	if err != nil {
		return "", err
	}
	return e.Host, nil
}

// IsOnline reports whether any process hosts the player.
func (d *KVDirectory) IsOnline(ctx context.Context, id uuid.UUID) (bool, error) {
	host, err := d.CurrentHost(ctx, id)
	if err != nil {
		return false, err
	}
	return host != "", nil
}

// VisibleName returns the player's display name, or "" when unknown.
func (d *KVDirectory) VisibleName(ctx context.Context, id uuid.UUID) (string, error) {
	players, _, err := d.buckets(ctx)
	if err != nil {
		return "", err
	}

	_, e, err := d.lookup(ctx, players, id)
	if err != nil {
		return "", err
	}
	return e.Name, nil
}

// IDByVisibleName resolves a display name, ignoring case, to a player id.
func (d *KVDirectory) IDByVisibleName(ctx context.Context, name string) (uuid.UUID, bool, error) {
	key, err := nameKey(name)
	if err != nil {
		// Names that cannot be stored cannot be online.
		return uuid.Nil, false, nil
	}

	_, names, err := d.buckets(ctx)
	if err != nil {
		return uuid.Nil, false, err
	}

	kve, err := names.Get(ctx, key)
	if isMissing(err) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("reading name %s: %w", name, err)
	}

	id, err := uuid.ParseBytes(kve.Value())
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("parsing id for %s: %w", name, err)
	}
	return id, true, nil
}

func (d *KVDirectory) lookup(ctx context.Context, players jetstream.KeyValue, id uuid.UUID) (jetstream.KeyValueEntry, entry, error) {
	kve, err := players.Get(ctx, id.String())
	if isMissing(err) {
		return nil, entry{}, nil
	}
	if err != nil {
		return nil, entry{}, fmt.Errorf("reading player %s: %w", id, err)
	}

	var e entry
	if err := json.Unmarshal(kve.Value(), &e); err != nil {
		return nil, entry{}, fmt.Errorf("decoding player %s: %w", id, err)
	}
	return kve, e, nil
}

func nameKey(name string) (string, error) {
	key := cases.Fold().String(name)
	if !nameKeyPattern.MatchString(key) {
		return "", fmt.Errorf("name %q cannot be used as a directory key", name)
	}
	return key, nil
}

func isMissing(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted)
}
