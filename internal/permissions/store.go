// Package permissions answers capability and rank questions for principals.
//
// Grants are read from a YAML file:
//
//	default:
//	  rank: 0
//	principals:
//	  7b1c9c4e-58a4-4d11-9a36-0c1f0e4c1d2a:
//	    rank: 50
//	    capabilities: [location.limited]
//
// Capabilities may be glob patterns ("location.*"). The console holds every
// capability and outranks every player.
package permissions

import (
	"fmt"
	"os"
	"path"

	"github.com/google/uuid"
	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-locator/internal/protocol"
	"gopkg.in/yaml.v3"
)

// Grant is the rank and capability patterns held by one principal.
type Grant struct {
	Rank         int      `yaml:"rank"`
	Capabilities []string `yaml:"capabilities"`
}

func (g Grant) validate() error {
	el := errors.NewErrorList()
	for _, c := range g.Capabilities {
		if _, err := path.Match(c, ""); err != nil {
			el.Add(fmt.Errorf("capability %q: %w", c, err))
		}
	}
	return el.Err()
}

func (g Grant) allows(capability string) bool {
	for _, pattern := range g.Capabilities {
		if ok, _ := path.Match(pattern, capability); ok {
			return true
		}
	}
	return false
}

// File is the on-disk layout of the permission store.
type File struct {
	Default    Grant            `yaml:"default"`
	Principals map[string]Grant `yaml:"principals"`
}

// Store is an immutable set of grants.
type Store struct {
	fallback   Grant
	principals map[uuid.UUID]Grant
}

// Load reads and parses a permission file.
func Load(filename string) (*Store, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading permissions: %w", err)
	}
	return Parse(data)
}

// Parse builds a store from YAML.
func Parse(data []byte) (*Store, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing permissions: %w", err)
	}
	return New(f)
}

// New builds a store from an already decoded file.
func New(f File) (*Store, error) {
	el := errors.NewErrorList()
	el.Add(f.Default.validate())

	s := &Store{
		fallback:   f.Default,
		principals: make(map[uuid.UUID]Grant, len(f.Principals)),
	}
	for key, g := range f.Principals {
		id, err := uuid.Parse(key)
		if err != nil {
			el.Add(fmt.Errorf("principal %q: %w", key, err))
			continue
		}
		if err := g.validate(); err != nil {
			el.Add(fmt.Errorf("principal %q: %w", key, err))
			continue
		}
		s.principals[id] = g
	}

	if err := el.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) grant(id uuid.UUID) Grant {
	if g, ok := s.principals[id]; ok {
		return g
	}
	return s.fallback
}

// HasCapability reports whether p holds capability.
func (s *Store) HasCapability(p protocol.Principal, capability string) bool {
	if p.Console {
		return true
	}
	return s.grant(p.ID).allows(capability)
}

// Outranks reports whether a ranks strictly above b.
func (s *Store) Outranks(a, b protocol.Principal) bool {
	switch {
	case b.Console:
		return false
	case a.Console:
		return true
	}
	return s.grant(a.ID).Rank > s.grant(b.ID).Rank
}
