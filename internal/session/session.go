package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/pixil98/go-locator/internal/commands"
	"github.com/pixil98/go-locator/internal/protocol"
)

const maxPendingMessages = 16

// Session is one connected player.
type Session struct {
	id   uuid.UUID
	name string
	term *terminal
	exec Executor

	msgs chan string
}

// deliver queues text sent to the player. Text is dropped when the player
// is not keeping up.
func (s *Session) deliver(text string) {
	select {
	case s.msgs <- text:
	default:
		slog.Warn("dropping message for slow session", "player", s.id, "name", s.name)
	}
}

// Play runs commands typed by the player and shows text sent to them until
// the player quits, the connection ends or ctx is cancelled.
func (s *Session) Play(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	inputChan := make(chan string)
	inputErrChan := make(chan error, 1)
	go func() {
		for {
			line, err := s.term.readLine()
			if err != nil {
				inputErrChan <- err
				return
			}
			select {
			case inputChan <- line:
			case <-done:
				return
			}
		}
	}()

	if err := s.prompt(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			if err := s.term.writeLine("\nThe server is shutting down."); err != nil {
				slog.Warn("failed to write shutdown message to player", "player", s.id, "error", err)
			}
			return ctx.Err()

		case text := <-s.msgs:
			if err := s.term.writeLine("\n" + text); err != nil {
				return err
			}
			if err := s.prompt(); err != nil {
				return err
			}

		case err := <-inputErrChan:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err

		case line := <-inputChan:
			line = strings.TrimSpace(line)
			if line == "" {
				if err := s.prompt(); err != nil {
					return err
				}
				continue
			}

			if strings.EqualFold(line, "quit") {
				return s.term.writeLine("Goodbye!")
			}

			err := s.exec.ExecLine(ctx, protocol.PlayerPrincipal(s.id), line)
			if err != nil {
				var userErr *commands.UserError
				if !errors.As(err, &userErr) {
					return fmt.Errorf("command execution failed: %w", err)
				}
				if err := s.term.writeLine(userErr.Message); err != nil {
					return err
				}
			}

			if err := s.prompt(); err != nil {
				return err
			}
		}
	}
}

func (s *Session) prompt() error {
	return s.term.write("> ")
}
