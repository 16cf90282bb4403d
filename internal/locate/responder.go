package locate

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/pixil98/go-locator/internal/protocol"
	"github.com/pixil98/go-locator/internal/zones"
)

// Stats counts what the responder did with the queries it received.
type Stats struct {
	Answered       int64
	TargetsMissing int64
	Malformed      int64
	SendFailures   int64
}

// Responder answers queries for players connected to this process.
type Responder struct {
	bus    Bus
	dir    Directory
	roster Roster
	zones  ZoneIndex
	cfg    Config

	answered       atomic.Int64
	targetsMissing atomic.Int64
	malformed      atomic.Int64
	sendFailures   atomic.Int64
}

// NewResponder creates a responder. zones may be nil, in which case every
// zone lookup is unknown.
func NewResponder(bus Bus, dir Directory, roster Roster, zones ZoneIndex, cfg Config) *Responder {
	return &Responder{
		bus:    bus,
		dir:    dir,
		roster: roster,
		zones:  zones,
		cfg:    cfg,
	}
}

// HandleQuery answers a query if its target is connected here. origin is
// the process that sent the query; the answer goes back to it.
func (r *Responder) HandleQuery(ctx context.Context, origin string, data []byte) {
	req, err := protocol.ParseRequest(string(data))
	if err != nil {
		r.malformed.Add(1)
		slog.WarnContext(ctx, "discarding location query", "message", string(data), "error", err)
		return
	}

	// No negative answer exists; the asker just never hears back.
	sample, ok := r.roster.Sample(req.Target)
	if !ok {
		r.targetsMissing.Add(1)
		slog.DebugContext(ctx, "location query for absent target", "requester", req.Requester, "target", req.Target)
		return
	}

	zoneSet := protocol.ZoneSet{State: protocol.ZonesNotRequested}
	if req.WantZones {
		zoneSet = r.lookupZones(ctx, sample)
	}

	dest := r.destination(ctx, origin, req.Requester)
	if dest == "" {
		slog.WarnContext(ctx, "no destination for location answer", "requester", req.Requester, "target", req.Target)
		return
	}

	resp := protocol.NewResponse(req, sample, r.cfg.Precision, zoneSet)
	if err := r.bus.Send(ctx, dest, r.cfg.ResponseChannel, []byte(resp.Encode())); err != nil {
		r.sendFailures.Add(1)
		slog.WarnContext(ctx, "sending location answer", "requester", req.Requester, "target", req.Target, "error", err)
		return
	}
	r.answered.Add(1)
}

// Stats returns a snapshot of the responder's counters.
func (r *Responder) Stats() Stats {
	return Stats{
		Answered:       r.answered.Load(),
		TargetsMissing: r.targetsMissing.Load(),
		Malformed:      r.malformed.Load(),
		SendFailures:   r.sendFailures.Load(),
	}
}

func (r *Responder) destination(ctx context.Context, origin string, requester protocol.Principal) string {
	if origin != "" || requester.Console {
		return origin
	}

	host, err := r.dir.CurrentHost(ctx, requester.ID)
	if err != nil {
		slog.WarnContext(ctx, "finding host of requester", "requester", requester, "error", err)
		return ""
	}
	return host
}

func (r *Responder) lookupZones(ctx context.Context, s protocol.Sample) protocol.ZoneSet {
	if s.World == "" || r.zones == nil {
		return protocol.UnknownZones()
	}

	names, ok := r.zones.ZonesContaining(s.World, zones.Point{X: s.X, Y: s.Y, Z: s.Z})
	if !ok {
		return protocol.UnknownZones()
	}

	kept := make([]string, 0, len(names))
	for _, n := range names {
		if !encodableZone(n) {
			slog.WarnContext(ctx, "skipping zone name that cannot be sent", "zone", n)
			continue
		}
		kept = append(kept, n)
	}
	return protocol.NamedZones(kept...)
}

// encodableZone reports whether a zone name survives the wire unchanged.
func encodableZone(name string) bool {
	return name != "" &&
		!strings.Contains(name, protocol.Separator) &&
		!strings.EqualFold(name, protocol.ZonesUnknownToken) &&
		!strings.EqualFold(name, protocol.ZoneGlobalToken)
}
