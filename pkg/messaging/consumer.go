package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ghuser/chatmesh/pkg/logger"
)

const (
	defaultPrefetch       = 1
	defaultProcessTimeout = 30 * time.Second
)

// HandlerFunc processes one decoded envelope. A nil return acks the message;
// any error nacks it without requeue. Handlers must be idempotent: the
// broker redelivers messages that were received but never resolved.
type HandlerFunc func(ctx context.Context, env *Envelope) error

// ConsumerConfig describes one durable queue binding.
type ConsumerConfig struct {
	// Queue is the durable queue name, conventionally
	// "<consuming-service>.<producing-context>-events".
	Queue string

	// Exchange is the durable topic exchange the queue binds to.
	Exchange string

	// RoutingKeys are the exact keys the consumer cares about.
	RoutingKeys []string

	// Prefetch caps unacknowledged in-flight messages. Defaults to 1, which
	// serializes handling and lets a slow handler throttle delivery.
	Prefetch int

	// ProcessTimeout bounds a single handler invocation. A handler that
	// exceeds it gets its message nacked without requeue instead of pinning
	// the prefetch slot forever. Defaults to 30s.
	ProcessTimeout time.Duration
}

// brokerChannel is the subset of *amqp.Channel the consumer needs to declare
// topology and start consuming.
type brokerChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Consumer binds a durable queue to an exchange and dispatches every
// delivery to exactly one handler invocation, resolving each message to ack
// or nack from the handler's outcome.
type Consumer struct {
	conn    *ConnManager
	cfg     ConsumerConfig
	handler HandlerFunc
	log     logger.Logger

	// subMu serializes subscription attempts. The startup path and the
	// ready hook can both try to subscribe on the same fresh channel; the
	// broker rejects a second Consume with the same tag, so only one
	// attempt may be in flight at a time.
	subMu sync.Mutex

	mu           sync.Mutex
	running      bool
	tag          string
	subscribedOn brokerChannel
	wg           sync.WaitGroup
}

// NewConsumer returns a Consumer for the given binding. Defaults are applied
// for Prefetch and ProcessTimeout when unset.
func NewConsumer(conn *ConnManager, cfg ConsumerConfig, handler HandlerFunc, log logger.Logger) *Consumer {
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = defaultPrefetch
	}
	if cfg.ProcessTimeout <= 0 {
		cfg.ProcessTimeout = defaultProcessTimeout
	}
	return &Consumer{conn: conn, cfg: cfg, handler: handler, log: log}
}

// Start begins consuming. Idempotent: a second Start while running is a
// no-op. With messaging disabled it returns nil without blocking and the
// consumer simply never runs. The subscription is re-established
// automatically after every reconnect.
func (c *Consumer) Start() error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = true
	c.mu.Unlock()

	if !c.conn.Enabled() {
		c.log.Info("broker URI not configured; consumer will not start", "queue", c.cfg.Queue)
		return nil
	}

	c.conn.NotifyReady(func() {
		if err := c.subscribe(); err != nil {
			c.log.Error("failed to resubscribe after reconnect",
				"queue", c.cfg.Queue, "error", err)
		}
	})

	if err := c.conn.Start(); err != nil {
		return fmt.Errorf("start broker connection: %w", err)
	}

	// The connection may already have been ready before the hook was
	// registered; subscribe() is a no-op when already bound to the channel.
	if err := c.subscribe(); err != nil && !errors.Is(err, ErrNotReady) {
		return fmt.Errorf("subscribe %s: %w", c.cfg.Queue, err)
	}
	return nil
}

// subscribe declares the topology and starts the consume loop on the current
// channel. Declarations are idempotent; binding uses the exact routing keys.
func (c *Consumer) subscribe() error {
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	return c.subscribeTo(ch)
}

func (c *Consumer) subscribeTo(ch brokerChannel) error {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	c.mu.Lock()
	if !c.running || c.subscribedOn == ch {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := ch.ExchangeDeclare(c.cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", c.cfg.Exchange, err)
	}
	q, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", c.cfg.Queue, err)
	}
	for _, key := range c.cfg.RoutingKeys {
		if err := ch.QueueBind(q.Name, key, c.cfg.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind %s to %s with %s: %w", q.Name, c.cfg.Exchange, key, err)
		}
	}
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}

	tag := c.cfg.Queue + "-consumer"
	deliveries, err := ch.Consume(q.Name, tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", q.Name, err)
	}

	c.mu.Lock()
	c.tag = tag
	c.subscribedOn = ch
	c.mu.Unlock()

	c.wg.Add(1)
	go c.run(deliveries)

	c.log.Info("consumer started",
		"queue", q.Name, "exchange", c.cfg.Exchange,
		"routing_keys", c.cfg.RoutingKeys, "prefetch", c.cfg.Prefetch)
	return nil
}

// run drains deliveries until the channel closes. On close the loop simply
// exits: the connection manager drives the reconnect and the ready hook
// establishes a fresh subscription.
func (c *Consumer) run(deliveries <-chan amqp.Delivery) {
	defer c.wg.Done()
	for d := range deliveries {
		c.handleDelivery(context.Background(), d)
	}
	c.log.Warn("delivery channel closed", "queue", c.cfg.Queue)
}

// handleDelivery resolves exactly one message: decode, invoke the handler
// under the processing deadline, then ack on success or nack without requeue
// on any failure. A message nacked here is dead-lettered or dropped by the
// broker, never retried in a loop.
func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	consumed.WithLabelValues(c.cfg.Queue).Inc()

	env, err := DecodeEnvelope(d.Body)
	if err != nil {
		c.log.ErrorContext(ctx, "discarding undecodable message",
			"queue", c.cfg.Queue, "error", err)
		c.nack(d, "malformed")
		return
	}

	hctx, cancel := context.WithTimeout(ctx, c.cfg.ProcessTimeout)
	defer cancel()

	if err := c.invoke(hctx, env); err != nil {
		reason := "handler_error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		c.log.ErrorContext(ctx, "failed to process event",
			"queue", c.cfg.Queue, "type", env.Type, "reason", reason, "error", err)
		c.nack(d, reason)
		return
	}

	if err := d.Ack(false); err != nil {
		c.log.ErrorContext(ctx, "failed to ack message",
			"queue", c.cfg.Queue, "type", env.Type, "error", err)
		return
	}
	acked.WithLabelValues(c.cfg.Queue).Inc()
}

// invoke runs the handler on its own goroutine so a hung handler cannot hold
// the consume loop past the processing deadline. Panics become errors so one
// poison message can never crash the consuming process.
func (c *Consumer) invoke(ctx context.Context, env *Envelope) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("handler panic: %v", r)
			}
		}()
		done <- c.handler(ctx, env)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Consumer) nack(d amqp.Delivery, reason string) {
	if err := d.Nack(false, false); err != nil {
		c.log.Error("failed to nack message", "queue", c.cfg.Queue, "error", err)
		return
	}
	nacked.WithLabelValues(c.cfg.Queue, reason).Inc()
}

// Stop shuts the consumer down gracefully: cancel the consumer tag, then
// close the channel, then the connection. Each step is attempted even if an
// earlier one fails. Idempotent.
func (c *Consumer) Stop() error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	tag := c.tag
	c.tag = ""
	c.subscribedOn = nil
	c.mu.Unlock()

	var errs []error
	if tag != "" {
		if ch, err := c.conn.Channel(); err == nil {
			if err := ch.Cancel(tag, false); err != nil {
				errs = append(errs, fmt.Errorf("cancel consumer: %w", err))
			}
		}
	}

	// ConnManager.Stop closes channel then connection, each attempted.
	if err := c.conn.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop connection: %w", err))
	}

	c.wg.Wait()

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	c.log.Info("consumer stopped", "queue", c.cfg.Queue)
	return nil
}
