package roster

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-locator/internal/protocol"
	"github.com/pixil98/go-locator/internal/storage"
)

// Resident is a stored player placed on this process at startup.
type Resident struct {
	Name  string  `json:"name"`
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float32 `json:"yaw"`
}

func (r *Resident) Validate() error {
	el := errors.NewErrorList()

	if r.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}

	return el.Err()
}

func (r *Resident) sample() protocol.Sample {
	return protocol.Sample{World: r.World, X: r.X, Y: r.Y, Z: r.Z, Yaw: r.Yaw}
}

// Seed joins every resident in the store. Asset ids must be player UUIDs.
func (r *Registry) Seed(ctx context.Context, store storage.Storer[*Resident]) error {
	for id, res := range store.GetAll() {
		playerId, err := uuid.Parse(id.String())
		if err != nil {
			return fmt.Errorf("resident %q: id must be a uuid: %w", id, err)
		}

		err = r.Join(ctx, playerId, res.Name, res.sample())
		if err != nil {
			return fmt.Errorf("seeding resident %q: %w", res.Name, err)
		}
	}
	return nil
}
