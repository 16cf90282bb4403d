package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/pixil98/go-locator/internal/locate"
	"github.com/pixil98/go-locator/internal/protocol"
	"github.com/spf13/pflag"
)

// Locator sends location queries.
type Locator interface {
	Submit(ctx context.Context, req protocol.Request) error
}

// PlayerDirectory resolves the names of online players.
type PlayerDirectory interface {
	IDByVisibleName(ctx context.Context, name string) (uuid.UUID, bool, error)
	VisibleName(ctx context.Context, id uuid.UUID) (string, error)
}

// Authorizer answers capability and rank checks.
type Authorizer interface {
	HasCapability(p protocol.Principal, capability string) bool
	Outranks(a, b protocol.Principal) bool
}

const (
	defaultNotOnline     = "{{ .Name }} is not online."
	defaultDenied        = "You do not have permission to check {{ .Name }}'s location."
	defaultConsoleTarget = "The Console is omnipresent..."
	defaultConsoleSelf   = "I would hope you know where you are, as you are the console..."
)

var whereMessageKeys = []string{"not_online", "denied", "console_target", "console_self"}

// WhereHandlerFactory creates handlers that ask where a player is.
// Config:
//   - not_online (optional): template for an offline target, given .Name
//   - denied (optional): template for a refused query, given .Name
//   - console_target (optional): template for players naming the console
//   - console_self (optional): template for the console naming itself
//   - zones (optional): request zones even without -r
type WhereHandlerFactory struct {
	locator   Locator
	dir       PlayerDirectory
	perms     Authorizer
	limited   string
	unlimited string
}

func NewWhereHandlerFactory(locator Locator, dir PlayerDirectory, perms Authorizer, limited, unlimited string) *WhereHandlerFactory {
	return &WhereHandlerFactory{
		locator:   locator,
		dir:       dir,
		perms:     perms,
		limited:   limited,
		unlimited: unlimited,
	}
}

func (f *WhereHandlerFactory) ValidateConfig(config map[string]any) error {
	for _, key := range whereMessageKeys {
		v, ok := config[key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%s must be a string", key)
		}
		if _, err := parseTemplate(s); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	if v, ok := config["zones"]; ok {
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("zones must be a boolean")
		}
	}

	return nil
}

func (f *WhereHandlerFactory) Create(config map[string]any) (CommandFunc, error) {
	w := &whereCommand{
		factory:       f,
		notOnline:     stringOr(config, "not_online", defaultNotOnline),
		denied:        stringOr(config, "denied", defaultDenied),
		consoleTarget: stringOr(config, "console_target", defaultConsoleTarget),
		consoleSelf:   stringOr(config, "console_self", defaultConsoleSelf),
	}
	w.zones, _ = config["zones"].(bool)

	return w.run, nil
}

type whereCommand struct {
	factory       *WhereHandlerFactory
	notOnline     string
	denied        string
	consoleTarget string
	consoleSelf   string
	zones         bool
}

func (w *whereCommand) run(ctx context.Context, cmdCtx *CommandContext) error {
	actor := cmdCtx.Actor

	fs := pflag.NewFlagSet(cmdCtx.Name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	regions := fs.BoolP("regions", "r", w.zones, "include the zones the player is standing in")
	if err := fs.Parse(cmdCtx.Args); err != nil {
		return w.syntax(cmdCtx)
	}

	args := fs.Args()
	switch {
	case len(args) > 1:
		return w.syntax(cmdCtx)
	case len(args) == 0 && actor.Console:
		return w.syntax(cmdCtx)
	case len(args) == 0:
		return w.submit(ctx, actor, actor.ID, "", *regions)
	}

	name := args[0]
	if strings.EqualFold(name, protocol.ConsoleToken) {
		if actor.Console {
			return w.userError(w.consoleSelf, name)
		}
		return w.userError(w.consoleTarget, name)
	}

	id, ok, err := w.factory.dir.IDByVisibleName(ctx, name)
	if err != nil {
		return fmt.Errorf("looking up player %q: %w", name, err)
	}
	if !ok {
		return w.userError(w.notOnline, name)
	}

	display, err := w.factory.dir.VisibleName(ctx, id)
	if err != nil {
		return fmt.Errorf("looking up name of %s: %w", id, err)
	}
	if display == "" {
		display = name
	}

	if !actor.Console && !actor.Is(id) && !w.allowed(actor, id) {
		return w.userError(w.denied, display)
	}

	return w.submit(ctx, actor, id, display, *regions)
}

// allowed applies the checks made before a query is sent. Limited
// capability only reaches players the actor outranks.
func (w *whereCommand) allowed(actor protocol.Principal, target uuid.UUID) bool {
	f := w.factory
	if f.perms.HasCapability(actor, f.unlimited) {
		return true
	}
	return f.perms.HasCapability(actor, f.limited) && f.perms.Outranks(actor, protocol.PlayerPrincipal(target))
}

func (w *whereCommand) submit(ctx context.Context, actor protocol.Principal, target uuid.UUID, display string, zones bool) error {
	err := w.factory.locator.Submit(ctx, protocol.Request{
		Requester: actor,
		Target:    target,
		WantZones: zones,
	})
	if errors.Is(err, locate.ErrTargetOffline) {
		if display == "" {
			display = target.String()
		}
		return w.userError(w.notOnline, display)
	}
	if err != nil {
		return fmt.Errorf("submitting location query: %w", err)
	}
	return nil
}

func (w *whereCommand) syntax(cmdCtx *CommandContext) error {
	usage := "[-r|--regions]"
	switch {
	case cmdCtx.Actor.Console:
		usage = "<player> [-r|--regions]"
	case w.factory.perms.HasCapability(cmdCtx.Actor, w.factory.unlimited),
		w.factory.perms.HasCapability(cmdCtx.Actor, w.factory.limited):
		usage = "[player] [-r|--regions]"
	}
	return NewUserError(fmt.Sprintf("Syntax: %s %s", cmdCtx.Name, usage))
}

func (w *whereCommand) userError(tmpl, name string) error {
	msg, err := ExpandTemplate(tmpl, struct{ Name string }{Name: name})
	if err != nil {
		return fmt.Errorf("expanding message: %w", err)
	}
	return NewUserError(msg)
}

func stringOr(config map[string]any, key, def string) string {
	if s, ok := config[key].(string); ok && s != "" {
		return s
	}
	return def
}
