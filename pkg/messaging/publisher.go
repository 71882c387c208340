package messaging

import (
	"context"
	"errors"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ghuser/chatmesh/pkg/logger"
)

// Publisher serializes domain events into envelopes and hands them to the
// connection manager's channel for publication on a durable topic exchange.
//
// Publish is best-effort by contract: the caller's primary operation has
// already committed before publishing, and a false return must never roll it
// back. Events that cannot be handed to the broker are logged and dropped.
type Publisher struct {
	conn     *ConnManager
	exchange string
	log      logger.Logger

	// mu serializes publishes and topology declarations: a single AMQP
	// channel is not safe for unbounded concurrent use.
	mu         sync.Mutex
	declaredOn *amqp.Channel
}

// NewPublisher returns a Publisher bound to the given exchange. The exchange
// is declared durable and topic-typed on first use of each channel;
// declaration is idempotent on the broker side.
func NewPublisher(conn *ConnManager, exchange string, log logger.Logger) *Publisher {
	return &Publisher{conn: conn, exchange: exchange, log: log}
}

// Publish wraps payload in an envelope typed by routingKey and publishes it
// with persistent delivery. It returns true only when the synchronous
// publish call was accepted by the channel. It returns false — never an
// error — when messaging is disabled, no channel is available mid-reconnect,
// the payload cannot be serialized, or the broker reports back-pressure.
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload any) bool {
	ch, err := p.conn.Channel()
	if err != nil {
		if errors.Is(err, ErrDisabled) {
			p.log.DebugContext(ctx, "skipping event publish; messaging disabled",
				"routing_key", routingKey)
		} else {
			p.log.WarnContext(ctx, "cannot publish event: no broker channel",
				"routing_key", routingKey, "error", err)
		}
		publishFailures.WithLabelValues(p.exchange, routingKey).Inc()
		return false
	}

	env, err := NewEnvelope(routingKey, payload)
	if err != nil {
		p.log.ErrorContext(ctx, "failed to build event envelope",
			"routing_key", routingKey, "error", err)
		publishFailures.WithLabelValues(p.exchange, routingKey).Inc()
		return false
	}
	body, err := env.Encode()
	if err != nil {
		p.log.ErrorContext(ctx, "failed to encode event envelope",
			"routing_key", routingKey, "error", err)
		publishFailures.WithLabelValues(p.exchange, routingKey).Inc()
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.declaredOn != ch {
		if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
			p.log.ErrorContext(ctx, "failed to declare exchange",
				"exchange", p.exchange, "error", err)
			publishFailures.WithLabelValues(p.exchange, routingKey).Inc()
			return false
		}
		p.declaredOn = ch
	}

	err = ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    env.Metadata.CorrelationID,
		Timestamp:    env.OccurredAt,
		Body:         body,
	})
	if err != nil {
		p.log.WarnContext(ctx, "failed to publish event",
			"exchange", p.exchange, "routing_key", routingKey, "error", err)
		publishFailures.WithLabelValues(p.exchange, routingKey).Inc()
		return false
	}

	published.WithLabelValues(p.exchange, routingKey).Inc()
	p.log.InfoContext(ctx, "event published",
		"exchange", p.exchange, "routing_key", routingKey)
	return true
}
