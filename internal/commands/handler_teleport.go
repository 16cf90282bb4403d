package commands

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
	"github.com/pixil98/go-locator/internal/protocol"
	"github.com/pixil98/go-locator/internal/roster"
)

// Mover relocates players connected to this process.
type Mover interface {
	Move(id uuid.UUID, loc protocol.Sample) error
}

// Notifier sends text to an actor.
type Notifier interface {
	Notify(ctx context.Context, to protocol.Principal, text string) error
}

const (
	defaultMoved       = "You are now at ({{ .X }}, {{ .Y }}, {{ .Z }}) in {{ .World }}."
	defaultConsoleMove = "The console has nowhere to go."
)

// TeleportHandlerFactory creates handlers that move the calling player.
// Config:
//   - moved (optional): template sent after moving, given .World .X .Y .Z .Yaw
//   - console (optional): message for the console trying to move
type TeleportHandlerFactory struct {
	mover    Mover
	notifier Notifier
}

func NewTeleportHandlerFactory(mover Mover, notifier Notifier) *TeleportHandlerFactory {
	return &TeleportHandlerFactory{mover: mover, notifier: notifier}
}

func (f *TeleportHandlerFactory) ValidateConfig(config map[string]any) error {
	if v, ok := config["moved"]; ok {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("moved must be a string")
		}
		if _, err := parseTemplate(s); err != nil {
			return fmt.Errorf("moved: %w", err)
		}
	}
	if v, ok := config["console"]; ok {
		if _, ok := v.(string); !ok {
			return fmt.Errorf("console must be a string")
		}
	}
	return nil
}

func (f *TeleportHandlerFactory) Create(config map[string]any) (CommandFunc, error) {
	moved := stringOr(config, "moved", defaultMoved)
	consoleMsg := stringOr(config, "console", defaultConsoleMove)

	return func(ctx context.Context, cmdCtx *CommandContext) error {
		if cmdCtx.Actor.Console {
			return NewUserError(consoleMsg)
		}

		loc, err := parseDestination(cmdCtx.Args)
		if err != nil {
			return NewUserError(fmt.Sprintf("Syntax: %s <world> <x> <y> <z> [yaw]", cmdCtx.Name))
		}

		err = f.mover.Move(cmdCtx.Actor.ID, loc)
		if errors.Is(err, roster.ErrPlayerNotFound) {
			return NewUserError("You are not in any world.")
		}
		if err != nil {
			return fmt.Errorf("moving %s: %w", cmdCtx.Actor, err)
		}

		msg, err := ExpandTemplate(moved, loc)
		if err != nil {
			return fmt.Errorf("expanding message: %w", err)
		}
		return f.notifier.Notify(ctx, cmdCtx.Actor, msg)
	}, nil
}

func parseDestination(args []string) (protocol.Sample, error) {
	if len(args) != 4 && len(args) != 5 {
		return protocol.Sample{}, fmt.Errorf("want 4 or 5 arguments, got %d", len(args))
	}

	var coords [3]float64
	for i := range coords {
		v, err := strconv.ParseFloat(args[i+1], 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return protocol.Sample{}, fmt.Errorf("coordinate %q is not a number", args[i+1])
		}
		coords[i] = v
	}

	var yaw float64
	if len(args) == 5 {
		v, err := strconv.ParseFloat(args[4], 32)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return protocol.Sample{}, fmt.Errorf("yaw %q is not a number", args[4])
		}
		yaw = v
	}

	return protocol.Sample{
		World: args[0],
		X:     coords[0],
		Y:     coords[1],
		Z:     coords[2],
		Yaw:   float32(yaw),
	}, nil
}
