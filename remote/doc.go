// Package remote implements the remote-control transports for Samsung
// TVs and the connection supervisor they share.
//
// Two transport families exist: the legacy binary protocol spoken by
// 2008-2013 sets on TCP port 55000, and the websocket protocol spoken
// by newer sets. Both are driven by a Supervisor that owns the single
// background receive loop, serializes open/authenticate sequences, and
// reconnects with a fixed delay after involuntary disconnects.
package remote
