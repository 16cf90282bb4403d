package locate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-locator/internal/protocol"
)

// Originator sends location queries and renders the answers that come back
// for requesters on this process.
type Originator struct {
	bus    Bus
	dir    Directory
	roster Roster
	perms  Permissions
	notify Notifier
	cfg    Config
}

// NewOriginator creates an originator that delivers answers through notify.
func NewOriginator(bus Bus, dir Directory, roster Roster, perms Permissions, notify Notifier, cfg Config) *Originator {
	return &Originator{
		bus:    bus,
		dir:    dir,
		roster: roster,
		perms:  perms,
		notify: notify,
		cfg:    cfg,
	}
}

// Submit sends req to the process hosting the target. It does not wait for
// the answer.
func (o *Originator) Submit(ctx context.Context, req protocol.Request) error {
	host, err := o.dir.CurrentHost(ctx, req.Target)
	if err != nil {
		return fmt.Errorf("finding host of %s: %w", req.Target, err)
	}
	if host == "" {
		return ErrTargetOffline
	}

	if err := o.bus.Send(ctx, host, o.cfg.RequestChannel, []byte(req.Encode())); err != nil {
		return fmt.Errorf("sending location query: %w", err)
	}

	slog.DebugContext(ctx, "location query sent", "requester", req.Requester, "target", req.Target, "host", host)
	return nil
}

// HandleAnswer renders an answer for its requester. origin is the process
// that produced the answer.
func (o *Originator) HandleAnswer(ctx context.Context, origin string, data []byte) {
	resp, err := protocol.ParseResponse(string(data))
	if err != nil {
		slog.WarnContext(ctx, "discarding location answer", "message", string(data), "error", err)
		return
	}

	// Every process may see answers on the shared channel. Only the ones
	// for the console or a player connected here are ours.
	if !resp.Requester.Console && !o.roster.IsOnline(resp.Requester.ID) {
		slog.DebugContext(ctx, "location answer not for this process", "requester", resp.Requester, "target", resp.Target)
		return
	}

	name, err := o.dir.VisibleName(ctx, resp.Target)
	if err != nil {
		slog.WarnContext(ctx, "resolving target name", "target", resp.Target, "error", err)
	}
	if name == "" {
		name = resp.Target.String()
	}

	var text string
	switch v := o.visibility(resp); v {
	case visibilityDenied:
		text = deniedText(name)
	default:
		text, err = renderAnswer(newAnswerView(resp, name, origin, v))
		if err != nil {
			slog.ErrorContext(ctx, "rendering location answer", "requester", resp.Requester, "target", resp.Target, "error", err)
			return
		}
	}

	if err := o.notify.Notify(ctx, resp.Requester, text); err != nil {
		slog.WarnContext(ctx, "delivering location answer", "requester", resp.Requester, "error", err)
	}
}

func (o *Originator) visibility(resp protocol.Response) visibility {
	switch {
	case resp.Requester.Console:
		return visibilityFull
	case resp.Requester.Is(resp.Target):
		return visibilitySelf
	case o.perms.HasCapability(resp.Requester, o.cfg.UnlimitedCapability):
		return visibilityFull
	case o.perms.HasCapability(resp.Requester, o.cfg.LimitedCapability):
		return visibilityLimited
	default:
		return visibilityDenied
	}
}
