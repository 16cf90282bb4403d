package protocol

import "strings"

// ZoneState distinguishes why a ZoneSet does or does not carry names.
type ZoneState int

const (
	// ZonesNotRequested means the requester did not ask for zones.
	ZonesNotRequested ZoneState = iota
	// ZonesUnknown means zones were requested but could not be determined.
	ZonesUnknown
	// ZonesGlobal means zones were determined and none apply.
	ZonesGlobal
	// ZonesNamed means the target stands in at least one named zone.
	ZonesNamed
)

func (s ZoneState) String() string {
	switch s {
	case ZonesNotRequested:
		return "not requested"
	case ZonesUnknown:
		return "unknown"
	case ZonesGlobal:
		return "global"
	case ZonesNamed:
		return "named"
	default:
		return "invalid"
	}
}

// ZoneSet is the zone portion of a response.
type ZoneSet struct {
	State ZoneState
	Names []string
}

// UnknownZones reports that containment could not be determined.
func UnknownZones() ZoneSet {
	return ZoneSet{State: ZonesUnknown}
}

// GlobalZones reports that no named zone applies.
func GlobalZones() ZoneSet {
	return ZoneSet{State: ZonesGlobal}
}

// NamedZones returns a set of zone names. With no names it is GlobalZones.
func NamedZones(names ...string) ZoneSet {
	if len(names) == 0 {
		return GlobalZones()
	}
	return ZoneSet{State: ZonesNamed, Names: append([]string(nil), names...)}
}

func (z ZoneSet) fields() []string {
	switch z.State {
	case ZonesUnknown:
		return []string{ZonesUnknownToken}
	case ZonesGlobal:
		return []string{ZoneGlobalToken}
	case ZonesNamed:
		return z.Names
	default:
		return nil
	}
}

func parseZones(fields []string) ZoneSet {
	switch {
	case len(fields) == 0:
		return ZoneSet{State: ZonesNotRequested}
	case strings.EqualFold(fields[0], ZonesUnknownToken):
		return UnknownZones()
	case len(fields) == 1 && strings.EqualFold(fields[0], ZoneGlobalToken):
		return GlobalZones()
	default:
		return NamedZones(fields...)
	}
}
