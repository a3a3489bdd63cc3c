package remote

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/samsungtv/config"
	"github.com/muurk/samsungtv/internal/logging"
	"github.com/muurk/samsungtv/upnp"
	"github.com/muurk/samsungtv/wol"
)

const (
	// DefaultWebSocketPort serves the plain remote channel.
	DefaultWebSocketPort = 8001
	// SecureWebSocketPort serves the token-authenticated channel on TLS.
	SecureWebSocketPort = 8002

	// wsRetryDelay is the reconnect wait for websocket sessions.
	wsRetryDelay = 1 * time.Second

	// powerProbeTimeout bounds the power-state HTTP probe.
	powerProbeTimeout = 2 * time.Second
)

// Channel events sent by the TV on the remote websocket.
const (
	eventConnect      = "ms.channel.connect"
	eventUnauthorized = "ms.channel.unauthorized"
	eventTimeout      = "ms.channel.timeOut"
)

// Message is one JSON frame on the remote channel.
type Message struct {
	Method string          `json:"method,omitempty"`
	Event  string          `json:"event,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Opener supplies the subprotocol-specific parts of a websocket
// session: the endpoint URL and the in-band handshake run on each fresh
// connection.
type Opener interface {
	URL(cfg *config.Config) (string, error)
	Authenticate(ctx context.Context, cfg *config.Config, conn *websocket.Conn) error
}

// WebSocket is a remote for 2014+ TVs speaking the websocket protocol
// on ports 8001/8002. Pairing happens in-band: the TV shows a prompt on
// first connect and answers with a channel event.
type WebSocket struct {
	cfg    *config.Config
	dir    *upnp.Directory
	opener Opener
	sup    *Supervisor

	probe *http.Client

	mu      sync.Mutex
	conn    *websocket.Conn
	writeMu sync.Mutex

	cbMu      sync.Mutex
	callbacks map[string][]func(Message)
}

// NewWebSocket creates a websocket remote. A nil opener selects the
// standard remote-control channel, secure when the config carries a
// token or names the secure port.
func NewWebSocket(cfg *config.Config, dir *upnp.Directory, opener Opener) *WebSocket {
	if opener == nil {
		opener = RemoteChannelOpener{
			Secure: cfg.Token != "" || cfg.Port == SecureWebSocketPort,
		}
	}
	r := &WebSocket{
		cfg:       cfg,
		dir:       dir,
		opener:    opener,
		probe:     &http.Client{Timeout: powerProbeTimeout},
		callbacks: map[string][]func(Message){},
	}
	r.sup = NewSupervisor(SupervisorConfig{
		Transport:           wsTransport{r},
		OnMessage:           r.handleMessage,
		OnDisconnect:        r.handleDisconnect,
		Fatal:               isFatal,
		RetryOnStartFailure: true,
		RetryDelay:          wsRetryDelay,
	})
	return r
}

// Connect establishes the session and starts the receive loop. Unlike
// the legacy protocol, a TV that is merely off is not an error: the
// loop keeps retrying in the background until the set comes up.
func (r *WebSocket) Connect(ctx context.Context) error {
	return r.sup.Start(ctx)
}

// Close shuts the session down and waits for the receive loop.
func (r *WebSocket) Close() error {
	return r.sup.Close()
}

// Connected reports whether the session is currently established.
func (r *WebSocket) Connected() bool {
	return r.sup.State() == StateOpen
}

// State returns the current session state.
func (r *WebSocket) State() State {
	return r.sup.State()
}

// Control sends a key press over the remote channel. Dropped with a
// warning when the session is down.
func (r *WebSocket) Control(key string) error {
	if r.sup.State() != StateOpen {
		logging.Warn("TV is not connected, dropping key", zap.String("key", key))
		return nil
	}

	msg := map[string]any{
		"method": "ms.remote.control",
		"params": map[string]string{
			"Cmd":          "Click",
			"DataOfCmd":    key,
			"Option":       "false",
			"TypeOfRemote": "SendRemoteKey",
		},
	}
	if err := r.send(msg); err != nil {
		return fmt.Errorf("remote: send key %s: %w", key, err)
	}
	time.Sleep(keyInterval)
	return nil
}

// Power probes whether the TV is responsive over its REST endpoint.
func (r *WebSocket) Power() bool {
	endpoint := fmt.Sprintf("http://%s/api/v2/", joinHostPort(r.cfg.Host, DefaultWebSocketPort))
	resp, err := r.probe.Get(endpoint)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// PowerOn wakes the TV with a magic packet when the probe says it is
// off. Requires the MAC to be resolvable (see MACAddress).
func (r *WebSocket) PowerOn() {
	if r.Power() {
		return
	}
	mac := r.MACAddress()
	if mac == "" {
		logging.Error("Cannot power on, MAC address unknown", zap.String("host", r.cfg.Host))
		return
	}
	if err := wol.Wake(mac); err != nil {
		logging.Error("Wake-on-lan failed", zap.Error(err))
	}
}

// PowerOff repeats the power key until the probe reports the TV off.
func (r *WebSocket) PowerOff() {
	for r.Connected() && r.Power() {
		if err := r.Control("KEY_POWER"); err != nil {
			return
		}
		time.Sleep(powerOffInterval)
	}
}

// MACAddress returns the TV's MAC, resolving and caching it on the
// config the first time. Resolution needs the TV on the local segment;
// the power probe refreshes the ARP table as a side effect.
func (r *WebSocket) MACAddress() string {
	if r.cfg.MAC != "" {
		return r.cfg.MAC
	}

	r.Power()
	mac, err := wol.ResolveMAC(r.cfg.Host)
	if err != nil {
		logging.Error("MAC resolution failed", zap.String("host", r.cfg.Host), zap.Error(err))
		return ""
	}
	r.cfg.MAC = mac
	return mac
}

// RegisterOnce registers a one-shot callback for a channel event. All
// registrations are discarded when the session drops; they are scoped
// to the current connection.
func (r *WebSocket) RegisterOnce(event string, fn func(Message)) {
	r.cbMu.Lock()
	r.callbacks[event] = append(r.callbacks[event], fn)
	r.cbMu.Unlock()
}

// send marshals and writes one JSON frame. gorilla allows a single
// concurrent writer, hence the write mutex.
func (r *WebSocket) send(v any) error {
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()
	if conn == nil {
		return ErrNotRunning
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	return conn.WriteJSON(v)
}

// wsTransport adapts WebSocket to the Transport interface.
type wsTransport struct{ r *WebSocket }

func (t wsTransport) Open(ctx context.Context) error         { return t.r.open(ctx) }
func (t wsTransport) Authenticate(ctx context.Context) error { return t.r.authenticate(ctx) }
func (t wsTransport) Receive() ([]byte, error)               { return t.r.receive() }
func (t wsTransport) Close() error                           { return t.r.closeConn() }

func (r *WebSocket) open(ctx context.Context) error {
	endpoint, err := r.opener.URL(r.cfg)
	if err != nil {
		return markFatal(err)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: r.cfg.Timeout,
		// TVs serve a self-signed certificate on the secure port
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	conn, resp, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return fmt.Errorf("remote: dial %s: %w", r.cfg.Host, err)
	}
	if resp != nil {
		resp.Body.Close()
	}

	logging.LogConnection(r.cfg.Host, "connected")
	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()
	return nil
}

func (r *WebSocket) authenticate(ctx context.Context) error {
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()
	if conn == nil {
		return ErrNotRunning
	}

	if err := r.opener.Authenticate(ctx, r.cfg, conn); err != nil {
		return err
	}

	logging.LogConnection(r.cfg.Host, "channel open")
	r.rebuildDirectory(ctx)
	return nil
}

func (r *WebSocket) receive() ([]byte, error) {
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()
	if conn == nil {
		return nil, ErrNotRunning
	}

	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("remote: empty read")
	}
	return data, nil
}

func (r *WebSocket) closeConn() error {
	r.mu.Lock()
	conn := r.conn
	r.conn = nil
	r.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (r *WebSocket) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		logging.Warn("Undecodable channel frame", zap.Error(err))
		return
	}
	logging.Debug("Channel event", zap.String("event", msg.Event))

	r.cbMu.Lock()
	fns := r.callbacks[msg.Event]
	delete(r.callbacks, msg.Event)
	r.cbMu.Unlock()
	for _, fn := range fns {
		fn(msg)
	}
}

func (r *WebSocket) handleDisconnect() {
	logging.LogConnection(r.cfg.Host, "disconnected")
	if r.dir != nil {
		r.dir.Clear()
	}
	r.cbMu.Lock()
	r.callbacks = map[string][]func(Message){}
	r.cbMu.Unlock()
}

func (r *WebSocket) rebuildDirectory(ctx context.Context) {
	if r.dir == nil || len(r.cfg.Locations) == 0 {
		return
	}
	if err := r.dir.Rebuild(ctx, r.cfg.Locations); err != nil {
		logging.Warn("Capability rebuild incomplete", zap.Error(err))
	}
}

// RemoteChannelOpener opens the standard samsung.remote.control
// channel. Secure selects the token-authenticated TLS endpoint used by
// TVs that advertise TokenAuthSupport.
type RemoteChannelOpener struct {
	Secure bool
}

func (o RemoteChannelOpener) URL(cfg *config.Config) (string, error) {
	scheme, port := "ws", DefaultWebSocketPort
	if o.Secure {
		scheme, port = "wss", SecureWebSocketPort
	}
	if cfg.Port != 0 {
		port = cfg.Port
	}

	query := url.Values{}
	query.Set("name", base64.StdEncoding.EncodeToString([]byte(cfg.Name)))
	if o.Secure && cfg.Token != "" {
		query.Set("token", cfg.Token)
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     joinHostPort(cfg.Host, port),
		Path:     "/api/v2/channels/samsung.remote.control",
		RawQuery: query.Encode(),
	}
	return u.String(), nil
}

// Authenticate waits for the channel-connect event. The first connect
// from an unknown client makes the TV show its pairing prompt; the
// event arrives once the user answers. A token in the connect payload
// is cached on the config for future secure connects.
func (o RemoteChannelOpener) Authenticate(ctx context.Context, cfg *config.Config, conn *websocket.Conn) error {
	var deadline time.Time
	if cfg.AuthTimeout > 0 {
		deadline = time.Now().Add(cfg.AuthTimeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)
	defer conn.SetReadDeadline(time.Time{})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("remote: read channel event: %w", err)
		}

		switch msg.Event {
		case eventConnect:
			var data struct {
				Token string `json:"token"`
			}
			if len(msg.Data) > 0 {
				_ = json.Unmarshal(msg.Data, &data)
			}
			if data.Token != "" {
				cfg.Token = data.Token
			}
			return nil
		case eventUnauthorized:
			return markFatal(ErrAccessDenied)
		case eventTimeout:
			return markFatal(fmt.Errorf("remote: authorization not confirmed in time: %w", ErrAccessDenied))
		default:
			logging.Debug("Ignoring channel event during handshake", zap.String("event", msg.Event))
		}
	}
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
