package listener

import (
	"bufio"
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
	"golang.org/x/crypto/ssh"
)

// echoRunner greets the suggested name and echoes one line back.
type echoRunner struct {
	mu        sync.Mutex
	suggested []string
}

func (r *echoRunner) RunSession(_ context.Context, conn io.ReadWriter, suggested string) error {
	r.mu.Lock()
	r.suggested = append(r.suggested, suggested)
	r.mu.Unlock()

	if _, err := io.WriteString(conn, "hello "+suggested+"\n"); err != nil {
		return err
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return err
	}
	_, err = io.WriteString(conn, "echo "+line)
	return err
}

func (r *echoRunner) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.suggested...)
}

func TestCRLFReadWriter(t *testing.T) {
	var out bytes.Buffer
	rw := newCRLFReadWriter(struct {
		io.Reader
		io.Writer
	}{strings.NewReader("one\r\ntwo\rthree\n"), &out})

	n, err := rw.Write([]byte("a\nb\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "written", n, 4)
	testutil.AssertEqual(t, "output", out.String(), "a\r\nb\r\n")

	data, err := io.ReadAll(rw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "input", string(data), "one\ntwo\nthree\n")
}

func TestSshListener_Session(t *testing.T) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(key)
	if err != nil {
		t.Fatalf("creating signer: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening: %v", err)
	}

	runner := &echoRunner{}
	cm := NewConnectionManager(runner)
	l := NewSshListener(0, cm, signer)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- l.serve(ctx, ln)
	}()

	client, err := ssh.Dial("tcp", ln.Addr().String(), &ssh.ClientConfig{
		User:            "alice",
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         2 * time.Second,
	})
	if err != nil {
		t.Fatalf("dialing: %v", err)
	}
	defer client.Close()

	sess, err := client.NewSession()
	if err != nil {
		t.Fatalf("opening session: %v", err)
	}
	stdin, err := sess.StdinPipe()
	if err != nil {
		t.Fatalf("stdin: %v", err)
	}
	stdout, err := sess.StdoutPipe()
	if err != nil {
		t.Fatalf("stdout: %v", err)
	}
	if err := sess.Shell(); err != nil {
		t.Fatalf("requesting shell: %v", err)
	}

	out := bufio.NewReader(stdout)
	greeting, err := out.ReadString('\n')
	if err != nil {
		t.Fatalf("reading greeting: %v", err)
	}
	testutil.AssertEqual(t, "greeting", greeting, "hello alice\r\n")

	if _, err := io.WriteString(stdin, "where\r\n"); err != nil {
		t.Fatalf("writing: %v", err)
	}
	echo, err := out.ReadString('\n')
	if err != nil {
		t.Fatalf("reading echo: %v", err)
	}
	testutil.AssertEqual(t, "echo", echo, "echo where\r\n")
	testutil.AssertEqual(t, "suggested", runner.names(), []string{"alice"})

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop")
	}
	testutil.AssertEqual(t, "active", cm.Active(), int64(0))
}
