// Package discovery finds Samsung TVs on the local network.
//
// Two mechanisms are combined: SSDP search, which legacy and modern
// sets answer and which yields the UPnP description locations the
// capability directory is built from, and mDNS browsing for the
// MultiScreen service advertised by 2014+ sets.
package discovery
