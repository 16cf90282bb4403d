package zones

import (
	"fmt"
	"math"

	"github.com/pixil98/go-errors"
)

// Point is a position in a world.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Block returns the block coordinates containing p.
func (p Point) Block() (int, int, int) {
	return int(math.Floor(p.X)), int(math.Floor(p.Y)), int(math.Floor(p.Z))
}

// Zone is a named cuboid of blocks in one world. Min and Max are inclusive
// block coordinates.
type Zone struct {
	World string `json:"world"`
	Min   Block  `json:"min"`
	Max   Block  `json:"max"`
}

// Block is an integer block position.
type Block struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (z *Zone) Validate() error {
	el := errors.NewErrorList()

	if z.World == "" {
		el.Add(fmt.Errorf("world is required"))
	}
	if z.Min.X > z.Max.X {
		el.Add(fmt.Errorf("min.x %d is greater than max.x %d", z.Min.X, z.Max.X))
	}
	if z.Min.Y > z.Max.Y {
		el.Add(fmt.Errorf("min.y %d is greater than max.y %d", z.Min.Y, z.Max.Y))
	}
	if z.Min.Z > z.Max.Z {
		el.Add(fmt.Errorf("min.z %d is greater than max.z %d", z.Min.Z, z.Max.Z))
	}

	return el.Err()
}

// Contains reports whether the block holding p lies inside the zone.
func (z *Zone) Contains(p Point) bool {
	bx, by, bz := p.Block()
	return bx >= z.Min.X && bx <= z.Max.X &&
		by >= z.Min.Y && by <= z.Max.Y &&
		bz >= z.Min.Z && bz <= z.Max.Z
}
