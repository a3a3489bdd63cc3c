// Package wire implements the binary framing used by the legacy Samsung
// TV remote protocol (TCP port 55000).
//
// # Frame Format
//
// Outbound packets are built from length-prefixed string fields:
//
//	[len:1][reserved:1 = 0x00][payload]
//
// where payload is base64-encoded unless the field is a raw container.
// The handshake packet carries the 0x64 0x00 opcode followed by three
// base64-wrapped fields (description, id, name); control packets carry
// three zero bytes plus one base64-wrapped key name.
//
// Inbound responses are framed as:
//
//	[reserved:1][name_len:2 BE][name][resp_len:2 BE][response]
//
// The response field is matched against a small set of sentinel byte
// patterns (access granted, access denied, confirmation pending,
// authorization cancelled, command accepted); anything else is reported
// as an UnhandledResponseError with the raw bytes attached.
package wire
