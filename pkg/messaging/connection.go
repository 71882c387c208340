package messaging

import (
	"context"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ghuser/chatmesh/pkg/logger"
)

// State describes the connection manager lifecycle.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateReady
	StateClosing
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateClosing:
		return "closing"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

var (
	// ErrDisabled is returned by Channel when no broker URI is configured.
	// Messaging is then disabled for the process; this is a valid
	// configuration, not a failure.
	ErrDisabled = errors.New("messaging disabled: no broker URI configured")

	// ErrNotReady is returned by Channel while no live channel exists —
	// either a connect attempt is in flight or the manager was stopped.
	// Callers may retry later; they must not start their own connect.
	ErrNotReady = errors.New("broker connection not ready")
)

type dialFunc func(url string) (*amqp.Connection, error)

// ConnManager owns a single broker connection and channel for one logical
// role (publisher or consumer) in a process. No other component holds the
// transport beyond the channel handle ConnManager grants, and ConnManager is
// the only component that mutates connection state.
//
// On any unexpected connection or channel close, both handles are discarded
// and a full reconnect is scheduled with exponential backoff. Channel-level
// faults deliberately do not get channel-only recovery: a recoverable
// channel error forces a full reconnect, trading a redundant TCP handshake
// for a single, well-tested recovery path.
type ConnManager struct {
	url string
	log logger.Logger

	// Backoff may be overridden before Start; zero value means defaults.
	Backoff Backoff

	dial dialFunc

	mu      sync.Mutex
	state   State
	conn    *amqp.Connection
	ch      *amqp.Channel
	attempt int
	timer   *time.Timer
	stopped bool
	onReady []func()
}

// NewConnManager returns a manager for the given broker URI. An empty URI
// disables messaging: Start logs once at info level and every Channel call
// returns ErrDisabled.
func NewConnManager(url string, log logger.Logger) *ConnManager {
	return &ConnManager{
		url:     url,
		log:     log,
		Backoff: DefaultBackoff(),
		dial:    amqp.Dial,
	}
}

// Enabled reports whether a broker URI is configured.
func (m *ConnManager) Enabled() bool {
	return m.url != ""
}

// State returns the current lifecycle state.
func (m *ConnManager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// NotifyReady registers fn to run (on its own goroutine) after every
// successful connect, including reconnects. Register before Start.
func (m *ConnManager) NotifyReady(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReady = append(m.onReady, fn)
}

// Start establishes the initial connection. Idempotent: calling Start while
// connected or mid-connect is a no-op. A failed first attempt does not fail
// startup; the manager keeps retrying in the background with backoff.
func (m *ConnManager) Start() error {
	if !m.Enabled() {
		m.log.Info("broker URI not configured; messaging disabled")
		return nil
	}

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return errors.New("connection manager already stopped")
	}
	if m.state == StateConnecting || m.state == StateReady {
		m.mu.Unlock()
		return nil
	}
	m.state = StateConnecting
	m.mu.Unlock()

	if err := m.connect(); err != nil {
		m.log.Warn("initial broker connect failed, retrying in background", "error", err)
		m.scheduleReconnect()
	}
	return nil
}

// Channel returns the live channel, ErrDisabled when messaging is off, or
// ErrNotReady while a connect attempt is in flight or after Stop. It never
// spawns a connect attempt of its own, so concurrent callers cannot cause
// duplicate connects.
func (m *ConnManager) Channel() (*amqp.Channel, error) {
	if !m.Enabled() {
		return nil, ErrDisabled
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateReady && m.ch != nil {
		return m.ch, nil
	}
	return nil, ErrNotReady
}

// Ping satisfies the httpx.HealthChecker interface. Disabled messaging is
// healthy by definition.
func (m *ConnManager) Ping(_ context.Context) error {
	if !m.Enabled() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateReady {
		return ErrNotReady
	}
	return nil
}

// connect dials the broker and opens a channel. Called with state already
// set to StateConnecting; exactly one connect runs at a time.
func (m *ConnManager) connect() error {
	conn, err := m.dial(m.url)
	if err != nil {
		m.setDisconnected()
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		m.setDisconnected()
		return err
	}

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		_ = ch.Close()
		_ = conn.Close()
		return nil
	}
	m.conn = conn
	m.ch = ch
	m.state = StateReady
	m.attempt = 0
	ready := make([]func(), len(m.onReady))
	copy(ready, m.onReady)
	m.mu.Unlock()

	reconnects.Inc()
	m.log.Info("broker connected")

	go m.watch(conn, ch)
	for _, fn := range ready {
		go fn()
	}
	return nil
}

func (m *ConnManager) setDisconnected() {
	m.mu.Lock()
	if !m.stopped {
		m.state = StateDisconnected
	}
	m.mu.Unlock()
}

// watch blocks until the connection or the channel closes unexpectedly,
// then discards both handles and schedules a reconnect. A graceful Stop
// closes the same notification channels; the stopped flag suppresses the
// reconnect in that case.
func (m *ConnManager) watch(conn *amqp.Connection, ch *amqp.Channel) {
	connClose := conn.NotifyClose(make(chan *amqp.Error, 1))
	chClose := ch.NotifyClose(make(chan *amqp.Error, 1))

	var reason *amqp.Error
	select {
	case reason = <-connClose:
	case reason = <-chClose:
		// Channel-level fault with the connection possibly still alive:
		// tear down the whole connection so recovery is a single path.
		_ = conn.Close()
	}

	m.mu.Lock()
	if m.stopped || m.conn != conn {
		m.mu.Unlock()
		return
	}
	m.conn = nil
	m.ch = nil
	m.state = StateDisconnected
	m.mu.Unlock()

	if reason != nil {
		m.log.Warn("broker connection lost, reconnecting", "error", reason)
	} else {
		m.log.Warn("broker connection closed unexpectedly, reconnecting")
	}
	m.scheduleReconnect()
}

// scheduleReconnect arms a reconnect timer with exponential backoff. The
// attempt counter resets only after a successful connect.
func (m *ConnManager) scheduleReconnect() {
	m.mu.Lock()
	if m.stopped || m.state == StateConnecting || m.state == StateReady {
		m.mu.Unlock()
		return
	}
	m.state = StateConnecting
	attempt := m.attempt
	m.attempt++
	delay := m.Backoff.Delay(attempt)
	m.timer = time.AfterFunc(delay, func() {
		if err := m.connect(); err != nil {
			m.log.Error("broker reconnect failed", "attempt", attempt+1, "error", err)
			m.scheduleReconnect()
		}
	})
	m.mu.Unlock()

	m.log.Info("broker reconnect scheduled", "attempt", attempt, "delay", delay.String())
}

// Stop closes the channel and the connection, in that order, attempting each
// step regardless of earlier failures. Idempotent.
func (m *ConnManager) Stop() error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	m.state = StateClosing
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	conn := m.conn
	ch := m.ch
	m.conn = nil
	m.ch = nil
	m.mu.Unlock()

	var errs []error
	if ch != nil {
		if err := ch.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	m.mu.Lock()
	m.state = StateDisconnected
	m.mu.Unlock()

	if len(errs) > 0 {
		m.log.Error("errors closing broker connection", "errors", errors.Join(errs...))
		return errors.Join(errs...)
	}
	return nil
}
