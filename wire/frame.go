package wire

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Legacy protocol constants (TCP port 55000 remote protocol, 2008-2013 sets)
const (
	// DefaultPort is the TCP port the legacy remote service listens on
	DefaultPort = 55000

	// handshake payload opcode
	opcodeHandshake0 = 0x64
	opcodeHandshake1 = 0x00
)

// Response sentinel patterns returned by the TV after a handshake or
// control packet. Multi-byte patterns must match exactly; pending and
// cancelled are identified by their leading byte only.
var (
	respGranted  = []byte{0x64, 0x00, 0x01, 0x00}
	respDenied   = []byte{0x64, 0x00, 0x00, 0x00}
	respAccepted = []byte{0x00, 0x00, 0x00, 0x00}
)

const (
	respPendingByte   = 0x0a
	respCancelledByte = 0x65
)

// ErrConnectionClosed is returned when the TV closes the connection,
// observed as a zero-length response field.
var ErrConnectionClosed = errors.New("wire: connection closed by TV")

// UnhandledResponseError is returned when the TV sends a response that
// matches no known pattern. Raw carries the response bytes for diagnostics.
type UnhandledResponseError struct {
	Raw []byte
}

func (e *UnhandledResponseError) Error() string {
	return fmt.Sprintf("wire: unhandled response (% x)", e.Raw)
}

// ResponseKind classifies a decoded response field.
type ResponseKind int

const (
	// KindUnknown is a response matching no known pattern
	KindUnknown ResponseKind = iota
	// KindGranted means the TV granted access (pairing succeeded)
	KindGranted
	// KindDenied means the TV denied access
	KindDenied
	// KindPending means the TV is waiting for on-screen user confirmation
	KindPending
	// KindCancelled means the user cancelled the authorization prompt
	KindCancelled
	// KindAccepted acknowledges a control command
	KindAccepted
)

func (k ResponseKind) String() string {
	switch k {
	case KindGranted:
		return "granted"
	case KindDenied:
		return "denied"
	case KindPending:
		return "pending"
	case KindCancelled:
		return "cancelled"
	case KindAccepted:
		return "accepted"
	default:
		return "unknown"
	}
}

// SerializeString encodes a string field for the legacy wire format:
// a one-byte length, a reserved zero byte, then the payload. Unless raw
// is set the payload is base64-encoded first.
func SerializeString(data []byte, raw bool) []byte {
	if !raw {
		encoded := make([]byte, base64.StdEncoding.EncodedLen(len(data)))
		base64.StdEncoding.Encode(encoded, data)
		data = encoded
	}

	out := make([]byte, 0, len(data)+2)
	out = append(out, byte(len(data)), 0x00)
	return append(out, data...)
}

// EncodeHandshake builds the full pairing packet: the handshake opcode
// followed by the base64-wrapped description, id and name fields, framed
// as a raw length-prefixed payload.
func EncodeHandshake(description, id, name string) []byte {
	payload := []byte{opcodeHandshake0, opcodeHandshake1}
	payload = append(payload, SerializeString([]byte(description), false)...)
	payload = append(payload, SerializeString([]byte(id), false)...)
	payload = append(payload, SerializeString([]byte(name), false)...)

	packet := []byte{0x00, 0x00, 0x00}
	return append(packet, SerializeString(payload, true)...)
}

// EncodeKey builds a control packet for a key name (e.g. "KEY_VOLUP").
func EncodeKey(key string) []byte {
	payload := []byte{0x00, 0x00, 0x00}
	payload = append(payload, SerializeString([]byte(key), false)...)

	packet := []byte{0x00, 0x00, 0x00}
	return append(packet, SerializeString(payload, true)...)
}

// ReadResponse reads one response off the stream: a 3-byte header (one
// reserved byte plus a big-endian uint16 device-name length), the device
// name, then a big-endian uint16 response length and the response field.
// A zero-length response field means the TV closed the connection.
func ReadResponse(r io.Reader) (name []byte, response []byte, err error) {
	header := make([]byte, 3)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, nil, fmt.Errorf("wire: read header: %w", err)
	}

	nameLen := binary.BigEndian.Uint16(header[1:3])
	name = make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, nil, fmt.Errorf("wire: read device name: %w", err)
	}

	lenBuf := make([]byte, 2)
	if _, err := io.ReadFull(r, lenBuf); err != nil {
		return nil, nil, fmt.Errorf("wire: read response length: %w", err)
	}

	respLen := binary.BigEndian.Uint16(lenBuf)
	if respLen == 0 {
		return name, nil, ErrConnectionClosed
	}

	response = make([]byte, respLen)
	if _, err := io.ReadFull(r, response); err != nil {
		return nil, nil, fmt.Errorf("wire: read response: %w", err)
	}

	return name, response, nil
}

// Classify maps a response field onto its ResponseKind.
func Classify(response []byte) ResponseKind {
	switch {
	case bytes.Equal(response, respGranted):
		return KindGranted
	case bytes.Equal(response, respDenied):
		return KindDenied
	case len(response) > 0 && response[0] == respPendingByte:
		return KindPending
	case len(response) > 0 && response[0] == respCancelledByte:
		return KindCancelled
	case bytes.Equal(response, respAccepted):
		return KindAccepted
	default:
		return KindUnknown
	}
}
