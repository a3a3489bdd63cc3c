package remote

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/samsungtv/internal/logging"
)

// Session states as observed via Supervisor.State.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateAuthenticating
	StateOpen
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Transport is the protocol-specific half of a remote session. The
// Supervisor drives it; implementations never spawn their own loops.
//
// Receive blocks for the next inbound message. It returns (nil, nil)
// when nothing arrived within the transport's poll interval, (data, nil)
// on a message, and (nil, err) when the connection is gone. Close must
// unblock a pending Receive.
type Transport interface {
	Open(ctx context.Context) error
	Authenticate(ctx context.Context) error
	Receive() ([]byte, error)
	Close() error
}

// SupervisorConfig configures a Supervisor.
type SupervisorConfig struct {
	Transport Transport

	// OnMessage is invoked from the receive loop for each inbound
	// message. May be nil.
	OnMessage func([]byte)
	// OnDisconnect is invoked from the receive loop when the session
	// drops, before any reconnect attempt. May be nil.
	OnDisconnect func()

	// Fatal reports whether an open/authenticate error should abort
	// Start instead of entering the retry loop. May be nil.
	Fatal func(error) bool

	// RetryOnStartFailure starts the receive loop even when the
	// initial non-fatal open fails, letting the retry loop establish
	// the session in the background.
	RetryOnStartFailure bool

	// RetryDelay is the fixed wait between reconnect attempts.
	RetryDelay time.Duration
	// JoinTimeout bounds how long Close waits for the loop to exit.
	JoinTimeout time.Duration
}

const (
	defaultRetryDelay  = 2 * time.Second
	defaultJoinTimeout = 3 * time.Second
)

// Supervisor owns the lifecycle of one remote session: the initial
// open/authenticate sequence, the single background receive loop, and
// reconnection after involuntary disconnects. At most one receive loop
// exists per Supervisor regardless of how many reconnects occur.
type Supervisor struct {
	cfg SupervisorConfig

	state      atomic.Int32
	reconnects atomic.Uint64

	mu      sync.Mutex // guards running, stop, done
	running bool
	stop    chan struct{}
	done    chan struct{}

	// authMu serializes open+authenticate sequences so a reconnect
	// never interleaves with an explicit Start.
	authMu sync.Mutex
}

// NewSupervisor creates a Supervisor for the given transport.
func NewSupervisor(cfg SupervisorConfig) *Supervisor {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.JoinTimeout <= 0 {
		cfg.JoinTimeout = defaultJoinTimeout
	}
	return &Supervisor{cfg: cfg}
}

// State returns the current session state.
func (s *Supervisor) State() State {
	return State(s.state.Load())
}

// Reconnects returns how many times the session was re-established
// after an involuntary disconnect.
func (s *Supervisor) Reconnects() uint64 {
	return s.reconnects.Load()
}

// Running reports whether the receive loop is active.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start opens and authenticates the transport, then launches the
// receive loop. Fatal errors (per cfg.Fatal) and, unless
// RetryOnStartFailure is set, any open error abort the start without a
// loop. Start may be called again after Close.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	err := s.openAndAuthenticate(ctx)
	if err != nil {
		if s.cfg.Fatal != nil && s.cfg.Fatal(err) {
			s.state.Store(int32(StateDisconnected))
			return err
		}
		if !s.cfg.RetryOnStartFailure {
			s.state.Store(int32(StateDisconnected))
			return err
		}
		logging.Warn("Initial connection failed, will retry in background", zap.Error(err))
	}

	s.mu.Lock()
	if s.running {
		// Lost a race with a concurrent Start; the winner's loop is up.
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done
	s.mu.Unlock()

	go s.loop(stop, done, err != nil)
	return nil
}

// Close shuts the session down: it signals the loop, closes the
// transport to unblock any pending read, and waits up to JoinTimeout
// for the loop to exit. Closing an already-closed Supervisor is a
// no-op.
func (s *Supervisor) Close() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		// No loop to join, but closing the transport cancels an
		// in-flight Start blocked on the pairing prompt.
		_ = s.cfg.Transport.Close()
		return nil
	}
	s.running = false
	done := s.done
	close(s.stop)
	s.mu.Unlock()

	s.state.Store(int32(StateClosing))
	_ = s.cfg.Transport.Close()

	select {
	case <-done:
	case <-time.After(s.cfg.JoinTimeout):
		s.state.Store(int32(StateDisconnected))
		return ErrShutdownTimeout
	}
	s.state.Store(int32(StateDisconnected))
	return nil
}

func (s *Supervisor) openAndAuthenticate(ctx context.Context) error {
	s.authMu.Lock()
	defer s.authMu.Unlock()

	s.state.Store(int32(StateConnecting))
	if err := s.cfg.Transport.Open(ctx); err != nil {
		s.state.Store(int32(StateDisconnected))
		return err
	}

	s.state.Store(int32(StateAuthenticating))
	if err := s.cfg.Transport.Authenticate(ctx); err != nil {
		_ = s.cfg.Transport.Close()
		s.state.Store(int32(StateDisconnected))
		return err
	}

	s.state.Store(int32(StateOpen))
	return nil
}

// loop is the single receive loop. startDisconnected is true when the
// initial open failed and the loop must establish the session first.
func (s *Supervisor) loop(stop, done chan struct{}, startDisconnected bool) {
	defer close(done)

	if startDisconnected {
		if !s.reconnect(stop) {
			return
		}
	}

	for {
		select {
		case <-stop:
			return
		default:
		}

		data, err := s.cfg.Transport.Receive()
		if err == nil {
			if len(data) > 0 && s.cfg.OnMessage != nil {
				s.cfg.OnMessage(data)
			}
			continue
		}

		select {
		case <-stop:
			return
		default:
		}

		logging.Warn("Session dropped", zap.Error(err))
		s.state.Store(int32(StateDisconnected))
		if s.cfg.OnDisconnect != nil {
			s.cfg.OnDisconnect()
		}
		_ = s.cfg.Transport.Close()

		if !s.reconnect(stop) {
			return
		}
	}
}

// reconnect retries open+authenticate with a fixed delay until it
// succeeds or the supervisor is stopped. Returns false when stopped.
func (s *Supervisor) reconnect(stop chan struct{}) bool {
	for {
		select {
		case <-stop:
			return false
		default:
		}

		err := s.openAndAuthenticate(context.Background())
		if err == nil {
			s.reconnects.Add(1)
			logging.Info("Session re-established",
				zap.Uint64("reconnects", s.reconnects.Load()),
			)
			return true
		}
		logging.Debug("Reconnect attempt failed", zap.Error(err))

		select {
		case <-stop:
			return false
		case <-time.After(s.cfg.RetryDelay):
		}
	}
}
