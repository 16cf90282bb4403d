package locate

import (
	"context"
	"fmt"
	"log/slog"
)

// Service binds an Originator and a Responder to the bus for the lifetime
// of a context.
type Service struct {
	bus        Bus
	originator *Originator
	responder  *Responder
	cfg        Config
}

// NewService validates cfg and binds originator and responder to bus.
func NewService(bus Bus, originator *Originator, responder *Responder, cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating locate config: %w", err)
	}
	return &Service{
		bus:        bus,
		originator: originator,
		responder:  responder,
		cfg:        cfg,
	}, nil
}

// Start subscribes both handlers and blocks until ctx is cancelled, then
// unsubscribes.
func (s *Service) Start(ctx context.Context) error {
	stopQueries, err := s.bus.Listen(ctx, s.cfg.RequestChannel, func(origin string, data []byte) {
		s.responder.HandleQuery(ctx, origin, data)
	})
	if err != nil {
		return fmt.Errorf("listening for location queries: %w", err)
	}
	defer stopQueries()

	stopAnswers, err := s.bus.Listen(ctx, s.cfg.ResponseChannel, func(origin string, data []byte) {
		s.originator.HandleAnswer(ctx, origin, data)
	})
	if err != nil {
		return fmt.Errorf("listening for location answers: %w", err)
	}
	defer stopAnswers()

	slog.InfoContext(ctx, "locator listening", "process", s.bus.Process(),
		"requests", s.cfg.RequestChannel, "responses", s.cfg.ResponseChannel)

	<-ctx.Done()

	stats := s.responder.Stats()
	slog.InfoContext(ctx, "locator stopped", "answered", stats.Answered,
		"targets_missing", stats.TargetsMissing, "malformed", stats.Malformed)
	return nil
}
