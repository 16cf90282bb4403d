package session

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// ErrTooManyTries is returned when a prompt's validator rejects every try.
var ErrTooManyTries = errors.New("too many tries")

// terminal reads lines from a connection through a single buffer, so the
// login prompts and the command loop never lose input to each other.
type terminal struct {
	rw io.ReadWriter
	br *bufio.Reader
}

func newTerminal(rw io.ReadWriter) *terminal {
	return &terminal{rw: rw, br: bufio.NewReader(rw)}
}

// readLine returns the next line without its line ending. A final line
// with no newline is returned before io.EOF.
func (t *terminal) readLine() (string, error) {
	line, err := t.br.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *terminal) write(s string) error {
	_, err := io.WriteString(t.rw, s)
	return err
}

func (t *terminal) writeLine(s string) error {
	return t.write(s + "\n")
}

type promptValidator func(string) (bool, string)

type promptConfig struct {
	tries     int
	validator promptValidator
}

type promptOption func(*promptConfig)

func withValidator(v promptValidator) promptOption {
	return func(cfg *promptConfig) {
		cfg.validator = v
	}
}

func withMaxTries(i int) promptOption {
	return func(cfg *promptConfig) {
		cfg.tries = i
	}
}

// prompt asks until the validator accepts the answer. The validator's
// message is written after each rejected answer.
func (t *terminal) prompt(prompt string, opts ...promptOption) (string, error) {
	config := &promptConfig{}
	for _, opt := range opts {
		opt(config)
	}

	tries := 0
	for {
		if err := t.write(prompt); err != nil {
			return "", err
		}

		input, err := t.readLine()
		if err != nil {
			return "", err
		}
		input = strings.TrimSpace(input)

		if config.validator != nil {
			ok, msg := config.validator(input)
			if !ok {
				if err := t.write(msg); err != nil {
					return "", err
				}

				tries++
				if config.tries > 0 && config.tries == tries {
					return "", ErrTooManyTries
				}
				continue
			}
		}

		return input, nil
	}
}

func (t *terminal) promptYN(prompt string) (bool, error) {
	str, err := t.prompt(prompt, withValidator(
		func(str string) (bool, string) {
			switch strings.ToLower(str) {
			case "y", "yes", "n", "no":
				return true, ""
			default:
				return false, "Enter 'yes' or 'no'.\n"
			}
		},
	))
	if err != nil {
		return false, err
	}

	switch strings.ToLower(str) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
