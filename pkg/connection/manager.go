package connection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/houseboard/realtime-go/pkg/record"
	"github.com/houseboard/realtime-go/pkg/transport"
	"github.com/houseboard/realtime-go/pkg/wire"
)

// Connection errors.
var (
	ErrShutdown = errors.New("connection manager shut down")
)

// Reconnect delays. Fixed, non-exponential: the channel is best-effort.
const (
	// DefaultCloseRetryDelay follows an orderly close.
	DefaultCloseRetryDelay = 3 * time.Second

	// DefaultErrorRetryDelay follows a transport error.
	DefaultErrorRetryDelay = 5 * time.Second
)

// State represents the connection state.
type State uint8

const (
	// StateDisconnected indicates no active connection.
	StateDisconnected State = iota

	// StateConnecting indicates a connection attempt is in progress.
	StateConnecting

	// StateOpen indicates an active connection.
	StateOpen

	// StateClosing indicates a socket is being discarded.
	StateClosing
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateOpen:
		return "OPEN"
	case StateClosing:
		return "CLOSING"
	default:
		return "UNKNOWN"
	}
}

// Sink consumes envelopes coming off the connection, normally the
// debounce coalescer.
type Sink interface {
	Accept(env wire.Envelope)
}

// Config configures a Manager.
type Config struct {
	// Origin is the hosting page's origin, e.g. "https://app.example".
	// The push URL is derived from it. Required.
	Origin string

	// Path overrides the push-endpoint path
	// (default: transport.DefaultPath).
	Path string

	// Sink receives inbound and locally-generated envelopes. Required.
	Sink Sink

	// Dialer establishes connections (default: transport.WSDialer).
	Dialer transport.Dialer

	// CloseRetryDelay follows an orderly close
	// (default: DefaultCloseRetryDelay).
	CloseRetryDelay time.Duration

	// ErrorRetryDelay follows a transport error
	// (default: DefaultErrorRetryDelay).
	ErrorRetryDelay time.Duration

	// Logger for diagnostics. Nil disables logging.
	Logger *zap.Logger

	// Recorder taps traffic for diagnostics (default: record.Noop).
	Recorder record.Recorder
}

// Manager owns the single logical connection to the push endpoint.
// Construct one per application (or per test) and pass it by reference;
// there is no package-level instance.
type Manager struct {
	mu sync.Mutex

	url    string
	dialer transport.Dialer
	sink   Sink

	logger   *zap.Logger
	recorder record.Recorder

	state  State
	conn   transport.Conn
	connID string

	// gen identifies the current connect attempt. Bumped on every
	// Connect and on Shutdown so callbacks from superseded sockets
	// cannot schedule reconnects.
	gen uint64

	// retryTimer is the single pending reconnect timer; scheduling a
	// new attempt stops it first.
	retryTimer *time.Timer

	closeRetry backoff.BackOff
	errorRetry backoff.BackOff

	shutdown bool
}

// NewManager creates a Manager. The push URL is derived from the origin
// up front; an origin that cannot be derived from is a construction
// error, not a retry case.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Sink == nil {
		return nil, fmt.Errorf("connection: Sink is required")
	}

	url, err := transport.DeriveURL(cfg.Origin, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("connection: %w", err)
	}

	if cfg.Dialer == nil {
		cfg.Dialer = &transport.WSDialer{}
	}
	if cfg.CloseRetryDelay <= 0 {
		cfg.CloseRetryDelay = DefaultCloseRetryDelay
	}
	if cfg.ErrorRetryDelay <= 0 {
		cfg.ErrorRetryDelay = DefaultErrorRetryDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = record.Noop{}
	}

	return &Manager{
		url:        url,
		dialer:     cfg.Dialer,
		sink:       cfg.Sink,
		logger:     cfg.Logger,
		recorder:   cfg.Recorder,
		state:      StateDisconnected,
		closeRetry: backoff.NewConstantBackOff(cfg.CloseRetryDelay),
		errorRetry: backoff.NewConstantBackOff(cfg.ErrorRetryDelay),
	}, nil
}

// URL returns the derived push-endpoint URL.
func (m *Manager) URL() string {
	return m.url
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ConnectionID returns the current socket's ID, or "" when disconnected.
func (m *Manager) ConnectionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connID
}

// Connect opens a new connection, discarding any existing or in-flight
// one first and cancelling any pending reconnect timer. On failure the
// next attempt is already scheduled; the returned error is informational.
func (m *Manager) Connect() error {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return ErrShutdown
	}

	m.stopRetryLocked()
	m.gen++
	gen := m.gen

	if old := m.conn; old != nil {
		m.conn = nil
		m.connID = ""
		m.state = StateClosing
		m.mu.Unlock()
		// The old socket's read loop will fail; the gen bump above
		// keeps it from scheduling a reconnect of its own.
		_ = old.Close()
		m.mu.Lock()
		if m.shutdown || m.gen != gen {
			m.mu.Unlock()
			return ErrShutdown
		}
	}

	m.state = StateConnecting
	m.mu.Unlock()

	conn, err := m.dialer.Dial(context.Background(), m.url)
	if err != nil {
		m.logger.Warn("push connect failed",
			zap.String("url", m.url),
			zap.Error(err))

		m.mu.Lock()
		if !m.shutdown && m.gen == gen {
			m.state = StateDisconnected
			m.scheduleRetryLocked(m.errorRetry.NextBackOff(), "error")
		}
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	if m.shutdown || m.gen != gen {
		// Superseded while dialing.
		m.mu.Unlock()
		_ = conn.Close()
		return ErrShutdown
	}
	m.conn = conn
	m.connID = uuid.NewString()
	m.state = StateOpen
	connID := m.connID
	m.mu.Unlock()

	m.logger.Info("push connection open",
		zap.String("url", m.url),
		zap.String("conn_id", connID))
	m.recordState(connID, "state: OPEN")

	go m.readLoop(gen, connID, conn)

	// Dependents refresh data that went stale while offline.
	m.sink.Accept(wire.NewEnvelope(wire.KindConnected, nil))

	return nil
}

// GetOrCreate returns the current state, lazily connecting when there is
// no live socket or the existing one is disconnected.
func (m *Manager) GetOrCreate() State {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return StateDisconnected
	}
	if m.conn != nil && m.state != StateDisconnected {
		state := m.state
		m.mu.Unlock()
		return state
	}
	if m.state == StateConnecting {
		m.mu.Unlock()
		return StateConnecting
	}
	m.mu.Unlock()

	_ = m.Connect()
	return m.State()
}

// Send transmits an envelope when the connection is open. When it is
// not, the call is a no-op that logs a warning: the channel is a
// freshness hint, so nothing is queued and no error is surfaced.
func (m *Manager) Send(kind string, payload map[string]any) {
	m.mu.Lock()
	conn := m.conn
	state := m.state
	connID := m.connID
	m.mu.Unlock()

	if state != StateOpen || conn == nil {
		m.logger.Warn("send while disconnected, dropping",
			zap.String("kind", kind),
			zap.String("state", state.String()))
		return
	}

	data, err := wire.Encode(wire.NewEnvelope(kind, payload))
	if err != nil {
		m.logger.Warn("send encode failed",
			zap.String("kind", kind),
			zap.Error(err))
		return
	}

	if err := conn.Write(data); err != nil {
		// The read loop will notice the broken socket and reconnect.
		m.logger.Warn("send failed",
			zap.String("kind", kind),
			zap.Error(err))
		return
	}

	m.recorder.Record(record.Event{
		Timestamp:    time.Now().UTC(),
		ConnectionID: connID,
		Direction:    record.DirectionOut,
		Kind:         kind,
		Raw:          data,
	})
}

// Shutdown stops the manager: the pending reconnect timer is cancelled,
// the socket closed, and further connects rejected. For teardown only;
// during normal operation the manager runs for the process lifetime.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return
	}
	m.shutdown = true
	m.gen++
	m.stopRetryLocked()
	conn := m.conn
	m.conn = nil
	m.connID = ""
	m.state = StateDisconnected
	m.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

// readLoop pumps inbound messages into the sink until the socket fails.
func (m *Manager) readLoop(gen uint64, connID string, conn transport.Conn) {
	for {
		data, err := conn.Read()
		if err != nil {
			m.handleClosed(gen, connID, err)
			return
		}

		env, derr := wire.Decode(data)
		if derr != nil {
			// Malformed messages never abort the connection.
			m.logger.Warn("dropping malformed push message",
				zap.String("conn_id", connID),
				zap.Error(derr))
			m.recordState(connID, "decode failure: "+derr.Error())
			continue
		}

		m.recorder.Record(record.Event{
			Timestamp:    time.Now().UTC(),
			ConnectionID: connID,
			Direction:    record.DirectionIn,
			Kind:         env.Kind,
			Raw:          data,
		})

		m.sink.Accept(env)
	}
}

// handleClosed reacts to a socket failure: unless this socket was
// already superseded, schedule a reconnect with the delay matching the
// failure class.
func (m *Manager) handleClosed(gen uint64, connID string, err error) {
	m.mu.Lock()
	if m.shutdown || m.gen != gen {
		// A newer Connect (or Shutdown) already owns recovery.
		m.mu.Unlock()
		return
	}

	m.conn = nil
	m.connID = ""
	m.state = StateDisconnected

	var delay time.Duration
	var class string
	if transport.IsNormalClose(err) {
		delay = m.closeRetry.NextBackOff()
		class = "close"
	} else {
		delay = m.errorRetry.NextBackOff()
		class = "error"
	}
	m.scheduleRetryLocked(delay, class)
	m.mu.Unlock()

	m.logger.Info("push connection lost",
		zap.String("conn_id", connID),
		zap.String("class", class),
		zap.Duration("retry_in", delay),
		zap.Error(err))
	m.recordState(connID, "state: DISCONNECTED ("+class+")")
}

// scheduleRetryLocked arms the reconnect timer, superseding any pending
// one. Caller holds the lock.
func (m *Manager) scheduleRetryLocked(delay time.Duration, class string) {
	if m.retryTimer != nil {
		m.retryTimer.Stop()
	}
	m.logger.Debug("reconnect scheduled",
		zap.Duration("delay", delay),
		zap.String("class", class))
	m.retryTimer = time.AfterFunc(delay, func() {
		_ = m.Connect()
	})
}

// stopRetryLocked cancels the pending reconnect timer, if any.
// Caller holds the lock.
func (m *Manager) stopRetryLocked() {
	if m.retryTimer != nil {
		m.retryTimer.Stop()
		m.retryTimer = nil
	}
}

// recordState captures a local state-change event.
func (m *Manager) recordState(connID, note string) {
	m.recorder.Record(record.Event{
		Timestamp:    time.Now().UTC(),
		ConnectionID: connID,
		Direction:    record.DirectionNone,
		Note:         note,
	})
}
