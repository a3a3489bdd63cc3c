// Package tv is the high-level facade over a TV's discovered UPnP
// capabilities plus its REST device endpoint.
//
// Every operation resolves its service and action against the
// capability directory at call time. A capability that is absent on
// the connected model is a normal state, not an error: getters report
// it through their ok result and setters become logged no-ops. Real
// faults (transport errors, SOAP faults, malformed payloads) are
// returned as errors.
package tv
