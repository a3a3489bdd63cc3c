// Package config defines the per-TV configuration shared between the
// caller and the remote transports.
//
// The Config is owned by the caller but mutated by the library as a
// side effect of successful pairing (the Paired flag and websocket
// Token) and of lazy MAC resolution. Save persists it as YAML so that a
// TV paired once stays paired across restarts.
package config
