package messaging

import "time"

type NatsServerOpt func(*NatsServer)

// WithStartTimeout sets the startup timeout for the nats server
func WithStartTimeout(d time.Duration) NatsServerOpt {
	return func(n *NatsServer) {
		n.startupTimeout = d
	}
}

// WithHost sets the host for the nats server
func WithHost(host string) NatsServerOpt {
	return func(n *NatsServer) {
		n.host = host
	}
}

// WithPort sets the port for the nats server. -1 picks a random port.
func WithPort(port int) NatsServerOpt {
	return func(n *NatsServer) {
		n.port = port
	}
}

// WithServerName names the server and its internal connection.
func WithServerName(name string) NatsServerOpt {
	return func(n *NatsServer) {
		n.name = name
	}
}

// WithJetStream enables JetStream, storing data under dir. An empty dir
// lets the server pick a temporary location.
func WithJetStream(dir string) NatsServerOpt {
	return func(n *NatsServer) {
		n.jetStream = true
		n.storeDir = dir
	}
}
