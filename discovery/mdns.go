package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/samsungtv/internal/logging"
)

const (
	// MultiScreenService is the mDNS service 2014+ Samsung TVs
	// advertise for their MultiScreen platform
	MultiScreenService = "_samsungmsf._tcp"

	// ServiceDomain is the mDNS domain
	ServiceDomain = "local."

	// DefaultScanTimeout bounds one browse pass
	DefaultScanTimeout = 10 * time.Second
)

// Scanner browses mDNS for Samsung MultiScreen TVs.
type Scanner struct {
	// Timeout is the maximum time one scan listens for announcements
	Timeout time.Duration
}

// NewScanner creates a scanner with default settings.
func NewScanner() *Scanner {
	return &Scanner{Timeout: DefaultScanTimeout}
}

// Scan discovers TVs until the timeout elapses or ctx is cancelled.
func (s *Scanner) Scan(ctx context.Context) ([]TV, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("discovery: create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var tvs []TV

	done := make(chan struct{})
	go func() {
		defer close(done)
		for entry := range entries {
			if found := parseServiceEntry(entry); found != nil {
				tvs = append(tvs, *found)
			}
		}
	}()

	if err := resolver.Browse(ctx, MultiScreenService, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("discovery: browse mDNS: %w", err)
	}

	<-ctx.Done()
	<-done

	logging.Info("mDNS scan finished", zap.Int("tvs", len(tvs)))
	return tvs, nil
}

// Discover runs SSDP and mDNS together and merges the results by host.
func Discover(ctx context.Context, wait time.Duration) ([]TV, error) {
	scanner := &Scanner{Timeout: wait}
	if wait <= 0 {
		scanner.Timeout = DefaultScanTimeout
	}

	ssdpCh := make(chan []TV, 1)
	go func() {
		tvs, err := SearchSSDP(wait)
		if err != nil {
			logging.Warn("SSDP search failed", zap.Error(err))
		}
		ssdpCh <- tvs
	}()

	mdnsTVs, err := scanner.Scan(ctx)
	if err != nil {
		logging.Warn("mDNS scan failed", zap.Error(err))
	}
	ssdpTVs := <-ssdpCh

	merged := merge(ssdpTVs, mdnsTVs)
	if len(merged) == 0 && err != nil {
		return nil, err
	}
	return merged, nil
}

func parseServiceEntry(entry *zeroconf.ServiceEntry) *TV {
	if entry == nil || len(entry.AddrIPv4) == 0 {
		return nil
	}

	found := &TV{
		Host:         entry.AddrIPv4[0].String(),
		Name:         entry.Instance,
		Metadata:     map[string]string{},
		DiscoveredAt: time.Now(),
	}

	for _, txt := range entry.Text {
		key, value, ok := strings.Cut(txt, "=")
		if !ok {
			continue
		}
		found.Metadata[key] = value
		switch key {
		case "fn":
			// friendly name beats the instance name
			found.Name = value
		case "md", "model":
			found.ModelName = value
		}
	}

	logging.Debug("mDNS entry",
		zap.String("instance", entry.Instance),
		zap.String("host", found.Host),
	)
	return found
}
