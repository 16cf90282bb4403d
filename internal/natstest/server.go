// Package natstest starts throwaway NATS servers for tests.
package natstest

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// RunServer starts a JetStream enabled server on a random port. It is shut
// down when the test finishes.
func RunServer(t testing.TB) *server.Server {
	t.Helper()

	ns, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      server.RANDOM_PORT,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoSigs:    true,
		NoLog:     true,
	})
	if err != nil {
		t.Fatalf("creating nats server: %v", err)
	}

	ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		t.Fatal("nats server not ready for connections")
	}

	t.Cleanup(func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	})
	return ns
}

// Connect opens a client connection to ns that is closed with the test.
func Connect(t testing.TB, ns *server.Server) *nats.Conn {
	t.Helper()

	conn, err := nats.Connect(ns.ClientURL())
	if err != nil {
		t.Fatalf("connecting to nats: %v", err)
	}
	t.Cleanup(conn.Close)
	return conn
}

// StaticConn is a ready connection provider.
type StaticConn struct {
	C *nats.Conn
}

func (s StaticConn) Conn(_ context.Context) (*nats.Conn, error) {
	return s.C, nil
}
