package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Default bus channel names.
const (
	DefaultRequestChannel  = "locationrequest"
	DefaultResponseChannel = "locationresponse"
)

// Reserved tokens carried in place of data.
const (
	// ConsoleToken identifies the server console as a requester.
	ConsoleToken = "CONSOLE"
	// ZonesUnknownToken means the responder could not determine zones.
	ZonesUnknownToken = "REGIONS_UNKNOWN"
	// ZoneGlobalToken means no named zone applies at the sampled point.
	ZoneGlobalToken = "__global__"
	// NoWorldToken is sent as the world name when the target has no world.
	NoWorldToken = "null"
)

const (
	requestFieldCount  = 3
	responseFieldCount = 7
)

// Principal identifies the party asking for a location: either a player or
// the console of the asking process.
type Principal struct {
	ID      uuid.UUID
	Console bool
}

// Console is the principal for the server console.
var Console = Principal{Console: true}

// PlayerPrincipal returns the principal for a player id.
func PlayerPrincipal(id uuid.UUID) Principal {
	return Principal{ID: id}
}

// ParsePrincipal parses the wire form of a principal.
func ParsePrincipal(s string) (Principal, error) {
	if strings.EqualFold(s, ConsoleToken) {
		return Console, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: principal %q: %w", ErrMalformed, s, err)
	}
	return PlayerPrincipal(id), nil
}

func (p Principal) String() string {
	if p.Console {
		return ConsoleToken
	}
	return p.ID.String()
}

// Is reports whether p is the player with the given id.
func (p Principal) Is(id uuid.UUID) bool {
	return !p.Console && p.ID == id
}

// Request asks the process hosting Target for its location.
type Request struct {
	Requester Principal
	Target    uuid.UUID
	WantZones bool
}

// Encode returns the wire form of the request.
func (r Request) Encode() string {
	return Encode([]string{
		r.Requester.String(),
		r.Target.String(),
		strconv.FormatBool(r.WantZones),
	})
}

// ParseRequest decodes a request message. It requires exactly three fields.
func ParseRequest(msg string) (Request, error) {
	fields := Decode(msg)
	if len(fields) != requestFieldCount {
		return Request{}, fmt.Errorf("%w: request has %d fields, want %d", ErrMalformed, len(fields), requestFieldCount)
	}

	requester, err := ParsePrincipal(fields[0])
	if err != nil {
		return Request{}, fmt.Errorf("parsing requester: %w", err)
	}

	target, err := parseTarget(fields[1])
	if err != nil {
		return Request{}, err
	}

	return Request{
		Requester: requester,
		Target:    target,
		WantZones: strings.EqualFold(fields[2], "true"),
	}, nil
}

// Precision controls how coordinates are written into a response.
type Precision int

const (
	// PrecisionBlock truncates coordinates to integers.
	PrecisionBlock Precision = iota
	// PrecisionExact writes coordinates with full decimal precision.
	PrecisionExact
)

// Sample is a position captured from a live player.
type Sample struct {
	// World is empty when the player is not in any world.
	World   string
	X, Y, Z float64
	Yaw     float32
}

// Response answers a Request. Coordinates and yaw are kept in their wire
// form so they are rendered exactly as the responder sent them.
type Response struct {
	Requester Principal
	Target    uuid.UUID
	World     string
	X, Y, Z   string
	Yaw       string
	Zones     ZoneSet
}

// NewResponse builds the response to req from a captured sample.
func NewResponse(req Request, s Sample, p Precision, zones ZoneSet) Response {
	world := s.World
	if world == "" {
		world = NoWorldToken
	}
	return Response{
		Requester: req.Requester,
		Target:    req.Target,
		World:     world,
		X:         formatCoordinate(s.X, p),
		Y:         formatCoordinate(s.Y, p),
		Z:         formatCoordinate(s.Z, p),
		Yaw:       strconv.FormatFloat(float64(s.Yaw), 'f', -1, 32),
		Zones:     zones,
	}
}

// HasWorld reports whether the responder knew the target's world.
func (r Response) HasWorld() bool {
	return r.World != "" && !strings.EqualFold(r.World, NoWorldToken)
}

// Direction resolves the compass label for the response's yaw.
func (r Response) Direction() Direction {
	return ResolveDirection(r.Yaw)
}

// Encode returns the wire form of the response.
func (r Response) Encode() string {
	world := r.World
	if world == "" {
		world = NoWorldToken
	}
	fields := []string{r.Requester.String(), r.Target.String(), world, r.X, r.Y, r.Z, r.Yaw}
	return Encode(append(fields, r.Zones.fields()...))
}

// ParseResponse decodes a response message. It requires at least seven
// fields; anything after the seventh describes zones.
func ParseResponse(msg string) (Response, error) {
	fields := Decode(msg)
	if len(fields) < responseFieldCount {
		return Response{}, fmt.Errorf("%w: response has %d fields, want at least %d", ErrMalformed, len(fields), responseFieldCount)
	}

	requester, err := ParsePrincipal(fields[0])
	if err != nil {
		return Response{}, fmt.Errorf("parsing requester: %w", err)
	}

	target, err := parseTarget(fields[1])
	if err != nil {
		return Response{}, err
	}

	return Response{
		Requester: requester,
		Target:    target,
		World:     fields[2],
		X:         fields[3],
		Y:         fields[4],
		Z:         fields[5],
		Yaw:       fields[6],
		Zones:     parseZones(fields[responseFieldCount:]),
	}, nil
}

func parseTarget(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: target %q: %w", ErrMalformed, s, err)
	}
	return id, nil
}

func formatCoordinate(v float64, p Precision) string {
	if p == PrecisionExact {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatInt(int64(v), 10)
}
