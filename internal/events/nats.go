package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"fitforge/internal/config"
	"fitforge/internal/services"
)

// Subject layout under the configured bus name.
const (
	subjectReady    = "guidance.ready"
	subjectFailed   = "guidance.failed"
	subjectRequests = "sessions.requests"
)

// CompletionSubject returns the subject completion events are published to.
func CompletionSubject(busName string) string {
	return busName + "." + subjectReady
}

// FailureSubject returns the subject failure events are published to.
func FailureSubject(busName string) string {
	return busName + "." + subjectFailed
}

// RequestSubject returns the subject session requests arrive on.
func RequestSubject(busName string) string {
	return busName + "." + subjectRequests
}

// NATSPublisher publishes outcome events to a NATS bus.
type NATSPublisher struct {
	conn    *nats.Conn
	busName string
	timeout time.Duration
}

// NewPublisher builds an outcome publisher backed by NATS when configured.
// When no bus name is configured or no connection is available, a noop
// implementation is returned.
func NewPublisher(cfg *config.Config, conn *nats.Conn) Publisher {
	busName := strings.TrimSpace(cfg.Events.BusName)
	if busName == "" || conn == nil {
		return NopPublisher{}
	}
	timeout := time.Duration(cfg.Events.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NATSPublisher{conn: conn, busName: busName, timeout: timeout}
}

func (p *NATSPublisher) PublishCompletion(ctx context.Context, event Completion) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.ProcessingStage == "" {
		event.ProcessingStage = StageComplete
	}
	return p.publish(ctx, CompletionSubject(p.busName), "publish completion event", event)
}

func (p *NATSPublisher) PublishFailure(ctx context.Context, event Failure) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.ProcessingStage == "" {
		event.ProcessingStage = StageError
	}
	return p.publish(ctx, FailureSubject(p.busName), "publish failure event", event)
}

func (p *NATSPublisher) publish(ctx context.Context, subject, operation string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return services.Wrap(services.ErrEventPublish, "notifying", operation, "encode payload", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return services.Wrap(services.ErrEventPublish, "notifying", operation,
			fmt.Sprintf("publish to %s", subject), err)
	}

	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	// Flush confirms the server accepted the message; an unflushed publish
	// can be silently dropped on a broken connection.
	if err := p.conn.FlushTimeout(timeout); err != nil {
		return services.Wrap(services.ErrEventPublish, "notifying", operation,
			fmt.Sprintf("flush to %s", subject), err)
	}
	return nil
}
