package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-locator/internal/commands"
	"github.com/pixil98/go-locator/internal/protocol"
	"github.com/pixil98/go-testutil"
)

type recordingExecutor struct {
	mu    sync.Mutex
	lines []string
	errs  map[string]error
}

func (e *recordingExecutor) ExecLine(_ context.Context, actor protocol.Principal, line string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !actor.Console {
		return errors.New("expected the console actor")
	}
	e.lines = append(e.lines, line)
	return e.errs[line]
}

func (e *recordingExecutor) executed() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.lines...)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestConsole_Start(t *testing.T) {
	in := strings.NewReader("where Steve\n\n   \nwhere\nboom\n")
	out := &syncBuffer{}
	exec := &recordingExecutor{errs: map[string]error{
		"where": commands.NewUserError("Syntax: where <player> [-r|--regions]"),
		"boom":  errors.New("bucket unavailable"),
	}}

	c := New(in, NewOutput(out), exec)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for len(exec.executed()) < 3 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for commands")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("console did not stop")
	}

	got := exec.executed()
	testutil.AssertEqual(t, "commands", strings.Join(got, ","), "where Steve,where,boom")
	testutil.AssertEqual(t, "output", out.String(),
		"Syntax: where <player> [-r|--regions]\nAn error occurred, see the log for details.\n")
}

func TestOutput_Write(t *testing.T) {
	var out bytes.Buffer
	o := NewOutput(&out)

	n, err := o.Write([]byte("answer\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "written", n, 7)
	testutil.AssertEqual(t, "output", out.String(), "answer\n")
}
