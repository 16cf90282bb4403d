package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pixil98/go-locator/internal/protocol"
	"github.com/pixil98/go-locator/internal/roster"
	"github.com/pixil98/go-testutil"
)

func TestPlayerID(t *testing.T) {
	testutil.AssertEqual(t, "case insensitive", PlayerID("Alice"), PlayerID("alice"))
	if PlayerID("alice") == PlayerID("bob") {
		t.Error("different names share an id")
	}
}

func TestManager_RunSession(t *testing.T) {
	spawn := protocol.Sample{World: "overworld", X: 0, Y: 64, Z: 0}

	tests := map[string]struct {
		input     string
		suggested string
		online    []string
		expName   string
		expLines  []string
		expOutput []string
		expErr    string
	}{
		"login and quit": {
			input:     "Alice\ny\nwhere bob -r\nquit\n",
			expName:   "Alice",
			expLines:  []string{"where bob -r"},
			expOutput: []string{"Welcome!", "By what name do you wish to be known? ", "Did I get that right, Alice (Y/N)? ", "You are known as Alice.", "Goodbye!"},
		},
		"invalid name is asked again": {
			input:     "al\nalice\nyes\nquit\n",
			expName:   "alice",
			expOutput: []string{"Names are 3 to 16 letters, digits or underscores."},
		},
		"unconfirmed name is asked again": {
			input:     "alice\nn\nbob\ny\nquit\n",
			expName:   "bob",
			expOutput: []string{"Did I get that right, alice (Y/N)? ", "Did I get that right, bob (Y/N)? "},
		},
		"name in use elsewhere": {
			input:     "alice\nbob\ny\nquit\n",
			online:    []string{"alice"},
			expName:   "bob",
			expOutput: []string{"That name is already in use."},
		},
		"suggested name skips prompts": {
			input:     "quit\n",
			suggested: "Carol",
			expName:   "Carol",
			expOutput: []string{"You are known as Carol.", "Goodbye!"},
		},
		"invalid suggested name falls back to prompt": {
			input:     "carol\ny\nquit\n",
			suggested: "root!",
			expName:   "carol",
			expOutput: []string{"By what name do you wish to be known? "},
		},
		"blank lines only prompt": {
			input:    "dave\ny\n\n   \nquit\n",
			expName:  "dave",
			expLines: nil,
		},
		"user error keeps playing": {
			input:     "erin\ny\nbad thing\nwhere\nquit\n",
			expName:   "erin",
			expLines:  []string{"bad thing", "where"},
			expOutput: []string{"Unknown command: bad"},
		},
		"system error ends session": {
			input:    "frank\ny\ncrash\nwhere\n",
			expName:  "frank",
			expLines: []string{"crash"},
			expErr:   "command execution failed",
		},
		"connection ends without quit": {
			input:   "gina\ny\n",
			expName: "gina",
		},
		"connection ends during login": {
			input: "hank\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := newFakeRoster()
			inbox := newFakeInbox()
			exec := &fakeExecutor{}
			names := &fakeNames{online: map[string]bool{}}
			for _, n := range tt.online {
				names.online[n] = true
			}
			out := &syncBuffer{}

			m := NewManager(r, names, inbox, exec, spawn)
			err := m.RunSession(context.Background(), fakeConn{Reader: strings.NewReader(tt.input), Writer: out}, tt.suggested)

			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			for _, s := range tt.expOutput {
				if !strings.Contains(out.String(), s) {
					t.Errorf("output %q does not contain %q", out.String(), s)
				}
			}
			testutil.AssertEqual(t, "lines", exec.lines(), tt.expLines)

			if tt.expName == "" {
				testutil.AssertEqual(t, "joined", len(r.spawns), 0)
				return
			}

			id := PlayerID(tt.expName)
			testutil.AssertEqual(t, "spawn", r.spawns[id], spawn)
			testutil.AssertEqual(t, "still online", r.online(id), false)
			testutil.AssertEqual(t, "unsubscribed", inbox.unsubscribed, 1)
			for _, c := range exec.calls {
				testutil.AssertEqual(t, "actor", c.actor, protocol.PlayerPrincipal(id))
			}
		})
	}
}

func TestManager_RunSession_AlreadyConnected(t *testing.T) {
	r := newFakeRoster()
	r.players[PlayerID("alice")] = "alice"
	out := &syncBuffer{}

	m := NewManager(r, &fakeNames{}, newFakeInbox(), &fakeExecutor{}, protocol.Sample{})
	err := m.RunSession(context.Background(), fakeConn{Reader: strings.NewReader("quit\n"), Writer: out}, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out.String(), "That player is already connected.") {
		t.Errorf("unexpected output %q", out.String())
	}
	testutil.AssertEqual(t, "still online", r.online(PlayerID("alice")), true)
}

func TestManager_RunSession_Messages(t *testing.T) {
	r := newFakeRoster()
	inbox := newFakeInbox()
	out := &syncBuffer{}
	in, input := io.Pipe()
	id := PlayerID("alice")

	m := NewManager(r, &fakeNames{}, inbox, &fakeExecutor{}, protocol.Sample{}, WithGreeting("Hello there"))

	errc := make(chan error, 1)
	go func() {
		errc <- m.RunSession(context.Background(), fakeConn{Reader: in, Writer: out}, "alice")
	}()

	waitFor(t, "subscription", func() bool { return inbox.send(id, "Player: Bob") })
	waitFor(t, "message", func() bool { return strings.Contains(out.String(), "\nPlayer: Bob\n") })

	if _, err := io.WriteString(input, "quit\n"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := <-errc; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out.String(), "Hello there\n") {
		t.Errorf("unexpected greeting in %q", out.String())
	}
	testutil.AssertEqual(t, "still online", r.online(id), false)
}

func TestManager_RunSession_Shutdown(t *testing.T) {
	r := newFakeRoster()
	inbox := newFakeInbox()
	out := &syncBuffer{}
	in, _ := io.Pipe()
	id := PlayerID("alice")

	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager(r, &fakeNames{}, inbox, &fakeExecutor{}, protocol.Sample{})

	errc := make(chan error, 1)
	go func() {
		errc <- m.RunSession(ctx, fakeConn{Reader: in, Writer: out}, "alice")
	}()

	waitFor(t, "join", func() bool { return r.online(id) })
	cancel()

	if err := <-errc; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "The server is shutting down.") {
		t.Errorf("unexpected output %q", out.String())
	}
	testutil.AssertEqual(t, "still online", r.online(id), false)
}

type failingPresence struct {
	err error
}

func (p *failingPresence) Announce(context.Context, uuid.UUID, string) error {
	return p.err
}

func (p *failingPresence) Withdraw(context.Context, uuid.UUID, string) error {
	return nil
}

func TestManager_RunSession_JoinFailure(t *testing.T) {
	presence := &failingPresence{err: errors.New("kv down")}
	reg := roster.NewRegistry(presence)
	inbox := newFakeInbox()
	exec := &fakeExecutor{}
	id := PlayerID("alice")

	m := NewManager(reg, &fakeNames{}, inbox, exec, protocol.Sample{World: "overworld"})
	err := m.RunSession(context.Background(), fakeConn{Reader: strings.NewReader("where\nquit\n"), Writer: io.Discard}, "alice")
	testutil.AssertErrorContains(t, err, "joining alice: announcing alice: kv down")

	_, ok := reg.Sample(id)
	testutil.AssertEqual(t, "sampled", ok, false)
	testutil.AssertEqual(t, "lines", len(exec.lines()), 0)

	// The same name can log in once presence recovers.
	presence.err = nil
	out := &syncBuffer{}
	err = m.RunSession(context.Background(), fakeConn{Reader: strings.NewReader("quit\n"), Writer: out}, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out.String(), "That player is already connected.") {
		t.Errorf("retry was refused: %q", out.String())
	}
	if !strings.Contains(out.String(), "Goodbye!") {
		t.Errorf("unexpected output %q", out.String())
	}
}
