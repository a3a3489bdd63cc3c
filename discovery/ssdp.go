package discovery

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/alexballas/go-ssdp"
	"go.uber.org/zap"

	"github.com/muurk/samsungtv/internal/logging"
)

// RemoteReceiverTarget is the search target legacy Samsung sets answer
// with their remote-control receiver.
const RemoteReceiverTarget = "urn:samsung.com:device:RemoteControlReceiver:1"

// DefaultSearchWait is how long an SSDP search listens for answers.
const DefaultSearchWait = 3 * time.Second

// SearchSSDP runs an SSDP search and returns the Samsung TVs that
// answered, with their description locations grouped per host. wait
// values under one second are rounded up, matching the protocol's
// whole-second MX header.
func SearchSSDP(wait time.Duration) ([]TV, error) {
	if wait <= 0 {
		wait = DefaultSearchWait
	}
	waitSec := int(wait / time.Second)
	if waitSec < 1 {
		waitSec = 1
	}

	services, err := ssdp.Search(ssdp.All, waitSec, "")
	if err != nil {
		return nil, fmt.Errorf("discovery: ssdp search: %w", err)
	}

	byHost := map[string]*TV{}
	var order []string
	for _, svc := range services {
		if !isSamsung(svc) {
			continue
		}
		host, err := hostOf(svc.Location)
		if err != nil {
			logging.Debug("Skipping SSDP answer with bad location",
				zap.String("location", svc.Location),
				zap.Error(err),
			)
			continue
		}

		found, ok := byHost[host]
		if !ok {
			found = &TV{Host: host, DiscoveredAt: time.Now()}
			byHost[host] = found
			order = append(order, host)
		}
		found.addLocation(svc.Location)
	}

	out := make([]TV, 0, len(order))
	for _, host := range order {
		out = append(out, *byHost[host])
	}
	logging.Info("SSDP search finished",
		zap.Int("answers", len(services)),
		zap.Int("tvs", len(out)),
	)
	return out, nil
}

// Locations returns the description URLs a single host answered with,
// for seeding a capability directory when the TV is already known.
func Locations(host string, wait time.Duration) ([]string, error) {
	tvs, err := SearchSSDP(wait)
	if err != nil {
		return nil, err
	}
	for i := range tvs {
		if tvs[i].Host == host {
			return tvs[i].Locations, nil
		}
	}
	return nil, nil
}

// isSamsung filters SSDP answers down to Samsung televisions, matching
// either the dedicated receiver target or the vendor's UPnP stack
// banner.
func isSamsung(svc ssdp.Service) bool {
	if svc.Type == RemoteReceiverTarget {
		return true
	}
	haystack := strings.ToLower(svc.Server + " " + svc.Type + " " + svc.USN)
	return strings.Contains(haystack, "samsung")
}

func hostOf(location string) (string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	host := u.Host
	if h, _, err := net.SplitHostPort(u.Host); err == nil {
		host = h
	}
	if host == "" {
		return "", fmt.Errorf("discovery: location %q has no host", location)
	}
	return host, nil
}
