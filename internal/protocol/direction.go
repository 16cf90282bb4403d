package protocol

import (
	"math"
	"strconv"
	"strings"
)

// Direction is the compass label derived from a yaw angle.
type Direction string

const (
	North        Direction = "North"
	Northeast    Direction = "Northeast"
	East         Direction = "East"
	Southeast    Direction = "Southeast"
	South        Direction = "South"
	Southwest    Direction = "Southwest"
	West         Direction = "West"
	Northwest    Direction = "Northwest"
	Undetermined Direction = "Undetermined"
)

func (d Direction) String() string {
	return string(d)
}

// ResolveDirection parses a yaw in degrees and returns its compass label.
// Anything that does not parse as a finite number is Undetermined.
func ResolveDirection(raw string) Direction {
	yaw, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return Undetermined
	}
	return DirectionFromYaw(yaw)
}

// DirectionFromYaw maps a yaw of any magnitude onto eight 45 degree sectors.
// The North sector ends at -157 rather than -157.5 on the negative side; the
// answering servers have always reported it that way.
func DirectionFromYaw(yaw float64) Direction {
	if math.IsNaN(yaw) || math.IsInf(yaw, 0) {
		return Undetermined
	}

	yaw = normalizeYaw(yaw)

	switch {
	case yaw >= 157.5 || (yaw >= -180 && yaw < -157):
		return North
	case yaw >= -157 && yaw < -112.5:
		return Northeast
	case yaw >= -112.5 && yaw < -67.5:
		return East
	case yaw >= -67.5 && yaw < -22.5:
		return Southeast
	case yaw >= -22.5 && yaw < 22.5:
		return South
	case yaw >= 22.5 && yaw < 67.5:
		return Southwest
	case yaw >= 67.5 && yaw < 112.5:
		return West
	case yaw >= 112.5 && yaw < 157.5:
		return Northwest
	default:
		return Undetermined
	}
}

// normalizeYaw folds yaw into [-180, 180).
func normalizeYaw(yaw float64) float64 {
	yaw = math.Mod(yaw+180, 360)
	if yaw < 0 {
		yaw += 360
	}
	return yaw - 180
}
