// Package console runs commands typed on the operator console.
package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/pixil98/go-locator/internal/commands"
	"github.com/pixil98/go-locator/internal/protocol"
)

// Executor runs one line of input on behalf of an actor.
type Executor interface {
	ExecLine(ctx context.Context, actor protocol.Principal, line string) error
}

// Output serializes writes to the console so command replies and answers
// arriving from the bus do not interleave.
type Output struct {
	mu sync.Mutex
	w  io.Writer
}

func NewOutput(w io.Writer) *Output {
	return &Output{w: w}
}

func (o *Output) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.w.Write(p)
}

// Console reads commands from in and executes them as the console
// principal.
type Console struct {
	in   io.Reader
	out  *Output
	exec Executor
}

func New(in io.Reader, out *Output, exec Executor) *Console {
	return &Console{in: in, out: out, exec: exec}
}

// Start reads lines until the input ends or ctx is cancelled.
func (c *Console) Start(ctx context.Context) error {
	inputChan := make(chan string)
	inputErrChan := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case inputChan <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		inputErrChan <- scanner.Err()
		close(inputChan)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case line, ok := <-inputChan:
			if !ok {
				// End of input leaves the rest of the process running.
				if err := <-inputErrChan; err != nil {
					slog.WarnContext(ctx, "reading console input", "error", err)
				}
				slog.InfoContext(ctx, "console input closed")
				<-ctx.Done()
				return nil
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			err := c.exec.ExecLine(ctx, protocol.Console, line)
			if err == nil {
				continue
			}

			var userErr *commands.UserError
			if errors.As(err, &userErr) {
				c.writeLine(ctx, userErr.Message)
				continue
			}
			slog.ErrorContext(ctx, "console command failed", "command", line, "error", err)
			c.writeLine(ctx, "An error occurred, see the log for details.")
		}
	}
}

func (c *Console) writeLine(ctx context.Context, msg string) {
	if _, err := c.out.Write([]byte(msg + "\n")); err != nil {
		slog.WarnContext(ctx, "writing to console", "error", err)
	}
}
