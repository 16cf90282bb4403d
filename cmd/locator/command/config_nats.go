package command

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-locator/internal/messaging"
)

const (
	defaultPrefix       = "locator"
	defaultDirectoryTTL = 2 * time.Minute
)

// busConnection is a worker that owns this process's bus connection.
type busConnection interface {
	Start(ctx context.Context) error
	Conn(ctx context.Context) (*nats.Conn, error)
}

// NatsConfig either embeds a server (the default) or connects to the one at
// Url.
type NatsConfig struct {
	Url          string `json:"url"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	StartTimeout string `json:"start_timeout"`
	StoreDir     string `json:"store_dir"`
	Prefix       string `json:"prefix"`
	DirectoryTTL string `json:"directory_ttl"`
}

func (n *NatsConfig) validate() error {
	el := errors.NewErrorList()

	if n.StartTimeout != "" {
		_, err := time.ParseDuration(n.StartTimeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing start_timeout: %w", err))
		}
	}

	if n.Url != "" && (n.Host != "" || n.Port != 0 || n.StoreDir != "") {
		el.Add(fmt.Errorf("host, port and store_dir only apply to an embedded server, not with url"))
	}

	if n.Prefix != "" && !tokenPattern.MatchString(n.Prefix) {
		el.Add(fmt.Errorf("prefix %q must be letters, digits, '-' or '_'", n.Prefix))
	}

	if ttl, err := n.directoryTTL(); err != nil {
		el.Add(err)
	} else if ttl < time.Second {
		el.Add(fmt.Errorf("directory_ttl must be at least 1 second"))
	}

	return el.Err()
}

func (n *NatsConfig) prefix() string {
	if n.Prefix == "" {
		return defaultPrefix
	}
	return n.Prefix
}

func (n *NatsConfig) directoryTTL() (time.Duration, error) {
	if n.DirectoryTTL == "" {
		return defaultDirectoryTTL, nil
	}
	d, err := time.ParseDuration(n.DirectoryTTL)
	if err != nil {
		return 0, fmt.Errorf("parsing directory_ttl: %w", err)
	}
	return d, nil
}

func (n *NatsConfig) buildConnection(process string) (busConnection, error) {
	if n.Url != "" {
		return messaging.NewNatsClient(n.Url, process), nil
	}
	return n.buildNatsServer(process)
}

func (n *NatsConfig) buildNatsServer(process string) (*messaging.NatsServer, error) {
	opts := []messaging.NatsServerOpt{
		messaging.WithServerName(process),
		messaging.WithJetStream(n.StoreDir),
	}
	if n.StartTimeout != "" {
		d, err := time.ParseDuration(n.StartTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing start_timeout: %w", err)
		}
		opts = append(opts, messaging.WithStartTimeout(d))
	}
	if n.Host != "" {
		opts = append(opts, messaging.WithHost(n.Host))
	}
	if n.Port != 0 {
		opts = append(opts, messaging.WithPort(n.Port))
	}

	s, err := messaging.NewNatsServer(opts...)
	if err != nil {
		return nil, err
	}

	return s, nil
}
