// Package upnp implements the capability model for UPnP-controlled TVs.
//
// A TV exposes a discovered, model-dependent set of remote services
// (MainTVAgent2, RenderingControl, AVTransport, ...). The Directory is
// built from one or more device-description URLs: each description is
// fetched over HTTP, its service list and child devices parsed, and each
// service's SCPD document read to learn the action set with positional
// argument order.
//
// Lookup is explicit and absence is never an error: Resolve returns
// (nil, false) for a service or action the TV does not offer, and
// callers are expected to degrade the operation rather than fail. The
// directory is rebuilt wholesale on reconnect and cleared on disconnect;
// readers tolerate it being momentarily empty.
package upnp
