package session

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const maxNameTries = 5

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,16}$`)

// playerNamespace scopes the name based ids of session players, so the same
// name gets the same id on every process.
var playerNamespace = uuid.MustParse("5f0c2b8e-2d4a-4c55-9a8e-7a3c1d6b9e21")

// PlayerID returns the id a session player with name plays under.
func PlayerID(name string) uuid.UUID {
	return uuid.NewSHA1(playerNamespace, []byte(strings.ToLower(name)))
}

// NameChecker finds players already online anywhere on the bus.
type NameChecker interface {
	IDByVisibleName(ctx context.Context, name string) (uuid.UUID, bool, error)
}

type loginFlow struct {
	names    NameChecker
	greeting string
}

// run picks the name the player will be known by. A suggested name, such as
// an ssh user, is used without asking when it is valid and free.
func (f *loginFlow) run(ctx context.Context, t *terminal, suggested string) (string, error) {
	if err := t.writeLine(f.greeting); err != nil {
		return "", err
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		name, confirmed := suggested, true
		suggested = ""
		if !namePattern.MatchString(name) {
			var err error
			name, err = t.prompt("By what name do you wish to be known? ",
				withMaxTries(maxNameTries),
				withValidator(func(str string) (bool, string) {
					if !namePattern.MatchString(str) {
						return false, "Names are 3 to 16 letters, digits or underscores.\n"
					}
					return true, ""
				}),
			)
			if err != nil {
				return "", err
			}
			confirmed = false
		}

		_, online, err := f.names.IDByVisibleName(ctx, name)
		if err != nil {
			return "", fmt.Errorf("checking name %q: %w", name, err)
		}
		if online {
			if err := t.writeLine("That name is already in use."); err != nil {
				return "", err
			}
			continue
		}

		if !confirmed {
			ok, err := t.promptYN(fmt.Sprintf("Did I get that right, %s (Y/N)? ", name))
			if err != nil {
				return "", err
			}
			if !ok {
				continue
			}
		}

		return name, nil
	}
}
