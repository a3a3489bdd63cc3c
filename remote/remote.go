package remote

import (
	"context"
	"fmt"

	"github.com/muurk/samsungtv/config"
	"github.com/muurk/samsungtv/upnp"
)

// Method selects the transport family for a TV.
type Method string

const (
	// MethodLegacy is the binary protocol on TCP 55000 (2008-2013 sets)
	MethodLegacy Method = "legacy"
	// MethodWebSocket is the websocket protocol on 8001/8002 (2014+)
	MethodWebSocket Method = "websocket"
)

// Remote is the protocol-independent surface shared by both transport
// families.
type Remote interface {
	Connect(ctx context.Context) error
	Close() error
	Connected() bool
	State() State
	Control(key string) error
	PowerOn()
	PowerOff()
}

var (
	_ Remote = (*Legacy)(nil)
	_ Remote = (*WebSocket)(nil)
)

// New creates a remote for the given method.
func New(method Method, cfg *config.Config, dir *upnp.Directory) (Remote, error) {
	switch method {
	case MethodLegacy:
		return NewLegacy(cfg, dir), nil
	case MethodWebSocket, "":
		return NewWebSocket(cfg, dir, nil), nil
	default:
		return nil, fmt.Errorf("remote: unknown method %q (want legacy or websocket)", method)
	}
}
