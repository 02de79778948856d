// Package eventbus fans the game's typed event stream out to its
// consumers: the structured log, the spectator websocket feed and the
// NATS stream.
package eventbus

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mcdev12/awantura/internal/events"
)

// Publisher delivers one event envelope to a sink.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
	Close() error
}

// LogPublisher writes every event to the structured log.
type LogPublisher struct {
	logger zerolog.Logger
}

func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With().Str("component", "eventbus").Logger()}
}

func (p *LogPublisher) Publish(_ context.Context, event events.Event) error {
	p.logger.Info().
		Str("event_id", event.ID.String()).
		Str("event_type", string(event.Type)).
		Interface("data", event.Data).
		Msg("game event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// Multi fans one event out to several publishers. Delivery continues past
// individual failures; the first error is returned.
type Multi struct {
	sinks []Publisher
}

func NewMulti(sinks ...Publisher) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Publish(ctx context.Context, event events.Event) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Publish(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *Multi) Close() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
