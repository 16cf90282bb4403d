package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/pixil98/go-locator/internal/protocol"
	"github.com/pixil98/go-locator/internal/storage"
)

// CommandContext is what a command function receives.
type CommandContext struct {
	Actor protocol.Principal
	Name  string   // Name the command was invoked by
	Args  []string // Raw arguments after the command name
}

// CommandFunc is the signature for compiled command functions.
type CommandFunc func(ctx context.Context, cmdCtx *CommandContext) error

// HandlerFactory creates CommandFuncs from command configurations.
type HandlerFactory interface {
	// ValidateConfig validates that the config contains required fields.
	ValidateConfig(config map[string]any) error
	// Create creates a CommandFunc from the validated config.
	Create(config map[string]any) (CommandFunc, error)
}

// compiledCommand holds a command that's been validated and compiled.
type compiledCommand struct {
	cmd     *Command
	cmdFunc CommandFunc
}

type Handler struct {
	store     storage.Storer[*Command]
	factories map[string]HandlerFactory
	compiled  map[string]*compiledCommand
}

func NewHandler(c storage.Storer[*Command]) *Handler {
	return &Handler{
		store:     c,
		factories: make(map[string]HandlerFactory),
		compiled:  make(map[string]*compiledCommand),
	}
}

// RegisterFactory registers a handler factory by name.
// The name must match the "handler" field in command JSON definitions.
func (h *Handler) RegisterFactory(name string, factory HandlerFactory) error {
	if name == "" {
		return fmt.Errorf("handler name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("handler factory cannot be nil")
	}
	if _, exists := h.factories[name]; exists {
		return fmt.Errorf("handler factory %q already registered", name)
	}
	h.factories[name] = factory
	return nil
}

// CompileAll compiles all commands from the store.
// Call this after all handler factories have been registered.
func (h *Handler) CompileAll() error {
	for id, cmd := range h.store.GetAll() {
		err := h.compile(id.String(), cmd)
		if err != nil {
			return fmt.Errorf("compiling command %q: %w", id, err)
		}
	}
	return nil
}

func (h *Handler) compile(name string, cmd *Command) error {
	factory, ok := h.factories[cmd.Handler]
	if !ok {
		return fmt.Errorf("unknown handler %q", cmd.Handler)
	}

	if err := factory.ValidateConfig(cmd.Config); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	cmdFunc, err := factory.Create(cmd.Config)
	if err != nil {
		return fmt.Errorf("creating handler: %w", err)
	}

	compiled := &compiledCommand{
		cmd:     cmd,
		cmdFunc: cmdFunc,
	}
	for _, n := range append([]string{name}, cmd.Aliases...) {
		n = strings.ToLower(n)
		if _, exists := h.compiled[n]; exists {
			return fmt.Errorf("command name %q already in use", n)
		}
		h.compiled[n] = compiled
	}
	return nil
}

// Exec executes a command with the given arguments.
func (h *Handler) Exec(ctx context.Context, actor protocol.Principal, cmdName string, rawArgs ...string) error {
	name := strings.ToLower(cmdName)
	compiled, ok := h.compiled[name]
	if !ok {
		return NewUserError(fmt.Sprintf("Unknown command: %s", cmdName))
	}

	return compiled.cmdFunc(ctx, &CommandContext{
		Actor: actor,
		Name:  name,
		Args:  rawArgs,
	})
}

// ExecLine splits a line of input into a command and its arguments and
// executes it. Blank lines are ignored.
func (h *Handler) ExecLine(ctx context.Context, actor protocol.Principal, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	return h.Exec(ctx, actor, fields[0], fields[1:]...)
}
