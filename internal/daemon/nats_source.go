package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"fitforge/internal/config"
	"fitforge/internal/events"
	"fitforge/internal/logging"
	"fitforge/internal/session"
)

// NATSSource subscribes to the session request subject and decodes each
// message into a session request. Undecodable messages are logged and
// dropped; redelivery of garbage would never succeed.
type NATSSource struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger

	sub *nats.Subscription
	out chan session.Request
}

// NewNATSSource builds a source over an established connection.
func NewNATSSource(cfg *config.Config, conn *nats.Conn, logger *slog.Logger) (*NATSSource, error) {
	if conn == nil {
		return nil, fmt.Errorf("nats source: connection is required")
	}
	if cfg.Events.BusName == "" {
		return nil, fmt.Errorf("nats source: event bus name is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &NATSSource{
		conn:    conn,
		subject: events.RequestSubject(cfg.Events.BusName),
		logger:  logging.NewComponentLogger(logger, "source"),
		out:     make(chan session.Request),
	}, nil
}

func (s *NATSSource) Start(ctx context.Context) (<-chan session.Request, error) {
	msgs := make(chan *nats.Msg, 64)
	sub, err := s.conn.ChanSubscribe(s.subject, msgs)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", s.subject, err)
	}
	s.sub = sub

	go func() {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var req session.Request
				if err := json.Unmarshal(msg.Data, &req); err != nil {
					s.logger.Warn("dropping undecodable session request", logging.Error(err))
					continue
				}
				if err := req.Validate(); err != nil {
					s.logger.Warn("dropping invalid session request",
						logging.String(logging.FieldSessionID, req.SessionID),
						logging.Error(err))
					continue
				}
				select {
				case s.out <- req:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	s.logger.Info("listening for session requests", logging.String("subject", s.subject))
	return s.out, nil
}

func (s *NATSSource) Close() error {
	if s.sub != nil {
		return s.sub.Unsubscribe()
	}
	return nil
}
