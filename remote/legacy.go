package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/samsungtv/config"
	"github.com/muurk/samsungtv/internal/logging"
	"github.com/muurk/samsungtv/upnp"
	"github.com/muurk/samsungtv/wire"
)

const (
	// keyInterval is the minimum spacing between key packets. Sending
	// faster makes the TV drop keys.
	keyInterval = 200 * time.Millisecond

	// powerOffInterval is the repeat period for the power-off key.
	powerOffInterval = 2 * time.Second

	// legacyRetryDelay is the fixed reconnect backoff.
	legacyRetryDelay = 2 * time.Second

	// receivePoll bounds each blocking read so the receive loop can
	// observe shutdown.
	receivePoll = 200 * time.Millisecond
)

// Legacy is a remote for 2008-2013 TVs speaking the binary protocol on
// TCP port 55000. The first Connect triggers an on-screen pairing
// prompt; once granted, the Paired flag on the Config records it.
type Legacy struct {
	cfg *config.Config
	dir *upnp.Directory
	sup *Supervisor

	mu   sync.Mutex
	conn net.Conn

	// sendMu serializes outbound key packets and enforces keyInterval
	sendMu sync.Mutex
}

// NewLegacy creates a legacy remote. dir may be nil when UPnP
// capabilities are not wanted.
func NewLegacy(cfg *config.Config, dir *upnp.Directory) *Legacy {
	r := &Legacy{cfg: cfg, dir: dir}
	r.sup = NewSupervisor(SupervisorConfig{
		Transport:    legacyTransport{r},
		OnMessage:    r.handleMessage,
		OnDisconnect: r.handleDisconnect,
		Fatal:        isFatal,
		RetryDelay:   legacyRetryDelay,
	})
	return r
}

// Connect establishes the session: dial, pairing handshake, capability
// rebuild, then the background receive loop. A denied or cancelled
// pairing returns ErrAccessDenied without starting the loop.
func (r *Legacy) Connect(ctx context.Context) error {
	return r.sup.Start(ctx)
}

// Close shuts the session down and waits for the receive loop.
func (r *Legacy) Close() error {
	return r.sup.Close()
}

// Connected reports whether the session is currently established.
func (r *Legacy) Connected() bool {
	return r.sup.State() == StateOpen
}

// State returns the current session state.
func (r *Legacy) State() State {
	return r.sup.State()
}

// Paired reports whether the TV has granted access to this client.
func (r *Legacy) Paired() bool {
	return r.cfg.Paired
}

// Control sends a key press (e.g. "KEY_VOLUP"). When the session is
// down the key is dropped with a warning rather than an error, so
// callers can fire keys without tracking connection state.
func (r *Legacy) Control(key string) error {
	conn := r.current()
	if conn == nil || r.sup.State() != StateOpen {
		logging.Warn("TV is not connected, dropping key", zap.String("key", key))
		return nil
	}

	r.sendMu.Lock()
	defer r.sendMu.Unlock()

	packet := wire.EncodeKey(key)
	logging.LogPacket("Sending key "+key, packet)
	if _, err := conn.Write(packet); err != nil {
		return fmt.Errorf("remote: send key %s: %w", key, err)
	}
	time.Sleep(keyInterval)
	return nil
}

// PowerOff repeats the power-off key until the TV drops the session.
// Older sets ignore a single press while showing certain menus.
func (r *Legacy) PowerOff() {
	for r.Connected() {
		if err := r.Control("KEY_POWEROFF"); err != nil {
			return
		}
		time.Sleep(powerOffInterval)
	}
}

// PowerOn is not possible over the legacy protocol; the service only
// listens while the TV is on. Use wake-on-lan instead.
func (r *Legacy) PowerOn() {
	logging.Info("Power on is not supported over the legacy protocol, use wake-on-lan")
}

// legacyTransport adapts Legacy to the Transport interface driven by
// the Supervisor.
type legacyTransport struct{ r *Legacy }

func (t legacyTransport) Open(ctx context.Context) error         { return t.r.open(ctx) }
func (t legacyTransport) Authenticate(ctx context.Context) error { return t.r.authenticate(ctx) }
func (t legacyTransport) Receive() ([]byte, error)               { return t.r.receive() }
func (t legacyTransport) Close() error                           { return t.r.closeConn() }

func (r *Legacy) open(ctx context.Context) error {
	port := r.cfg.Port
	if port == 0 {
		port = wire.DefaultPort
	}
	addr := net.JoinHostPort(r.cfg.Host, strconv.Itoa(port))

	dialer := net.Dialer{Timeout: r.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		if !r.cfg.Paired {
			// Never paired: nothing to silently retry toward, surface
			// the failure to the caller who initiated pairing.
			return markFatal(fmt.Errorf("remote: dial %s: %w", addr, err))
		}
		return fmt.Errorf("remote: dial %s: %w", addr, err)
	}

	logging.LogConnection(r.cfg.Host, "connected")
	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()
	return nil
}

// authenticate runs the pairing handshake. A pending response means the
// TV is showing the authorization prompt; by default the wait is
// unbounded and ends only when the user answers or the remote is
// closed. Config.AuthTimeout caps it.
func (r *Legacy) authenticate(ctx context.Context) error {
	conn := r.current()
	if conn == nil {
		return ErrNotRunning
	}

	packet := wire.EncodeHandshake(r.cfg.Description, r.cfg.ID, r.cfg.Name)
	logging.LogPacket("Sending handshake", packet)
	if _, err := conn.Write(packet); err != nil {
		return fmt.Errorf("remote: send handshake: %w", err)
	}

	var deadline time.Time
	if r.cfg.AuthTimeout > 0 {
		deadline = time.Now().Add(r.cfg.AuthTimeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)
	defer conn.SetReadDeadline(time.Time{})

	for {
		_, resp, err := wire.ReadResponse(conn)
		if err != nil {
			if isTimeout(err) {
				return markFatal(fmt.Errorf("remote: authorization not confirmed in time: %w", ErrAccessDenied))
			}
			return fmt.Errorf("remote: read handshake response: %w", err)
		}

		switch wire.Classify(resp) {
		case wire.KindGranted:
			r.cfg.Paired = true
			logging.LogConnection(r.cfg.Host, "access granted")
			r.rebuildDirectory(ctx)
			return nil
		case wire.KindDenied:
			r.cfg.Paired = false
			return markFatal(ErrAccessDenied)
		case wire.KindPending:
			logging.Info("Waiting for authorization on the TV screen")
		case wire.KindCancelled:
			return markFatal(fmt.Errorf("remote: authorization cancelled on the TV: %w", ErrAccessDenied))
		case wire.KindAccepted:
			// Some sets skip the pairing exchange entirely.
			r.rebuildDirectory(ctx)
			return nil
		default:
			return markFatal(&wire.UnhandledResponseError{Raw: resp})
		}
	}
}

// receive reads one response packet. Poll timeouts return (nil, nil) so
// the supervisor keeps the session alive while the TV is quiet.
func (r *Legacy) receive() ([]byte, error) {
	conn := r.current()
	if conn == nil {
		return nil, ErrNotRunning
	}

	_ = conn.SetReadDeadline(time.Now().Add(receivePoll))
	_, resp, err := wire.ReadResponse(conn)
	if err != nil {
		if isTimeout(err) {
			return nil, nil
		}
		return nil, err
	}
	return resp, nil
}

func (r *Legacy) closeConn() error {
	r.mu.Lock()
	conn := r.conn
	r.conn = nil
	r.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (r *Legacy) current() net.Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn
}

func (r *Legacy) handleMessage(data []byte) {
	kind := wire.Classify(data)
	if kind == wire.KindUnknown {
		logging.Warn("Unhandled TV response", zap.Error(&wire.UnhandledResponseError{Raw: data}))
		return
	}
	logging.Debug("TV response", zap.Stringer("kind", kind))
}

func (r *Legacy) handleDisconnect() {
	logging.LogConnection(r.cfg.Host, "disconnected")
	if r.dir != nil {
		r.dir.Clear()
	}
}

func (r *Legacy) rebuildDirectory(ctx context.Context) {
	if r.dir == nil || len(r.cfg.Locations) == 0 {
		return
	}
	if err := r.dir.Rebuild(ctx, r.cfg.Locations); err != nil {
		logging.Warn("Capability rebuild incomplete", zap.Error(err))
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
