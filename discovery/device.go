package discovery

import (
	"fmt"
	"sort"
	"time"
)

// TV is one discovered television.
type TV struct {
	// Host is the IPv4 address
	Host string

	// Name is the advertised name, when a mechanism provided one
	Name string

	// ModelName is the advertised model, when known
	ModelName string

	// Locations are UPnP description URLs collected from SSDP answers,
	// ready to seed a capability directory
	Locations []string

	// Metadata carries extra key/value data from mDNS TXT records
	Metadata map[string]string

	// DiscoveredAt is when the TV was first seen
	DiscoveredAt time.Time
}

func (t *TV) String() string {
	if t.Name != "" {
		return fmt.Sprintf("%s (%s)", t.Name, t.Host)
	}
	return t.Host
}

// addLocation records a description URL once.
func (t *TV) addLocation(location string) {
	for _, l := range t.Locations {
		if l == location {
			return
		}
	}
	t.Locations = append(t.Locations, location)
	sort.Strings(t.Locations)
}

// merge folds results from multiple mechanisms into one list keyed by
// host.
func merge(lists ...[]TV) []TV {
	byHost := map[string]*TV{}
	var order []string

	for _, list := range lists {
		for i := range list {
			found := &list[i]
			existing, ok := byHost[found.Host]
			if !ok {
				clone := *found
				byHost[found.Host] = &clone
				order = append(order, found.Host)
				continue
			}
			if existing.Name == "" {
				existing.Name = found.Name
			}
			if existing.ModelName == "" {
				existing.ModelName = found.ModelName
			}
			for _, l := range found.Locations {
				existing.addLocation(l)
			}
			for k, v := range found.Metadata {
				if existing.Metadata == nil {
					existing.Metadata = map[string]string{}
				}
				if _, dup := existing.Metadata[k]; !dup {
					existing.Metadata[k] = v
				}
			}
		}
	}

	out := make([]TV, 0, len(order))
	for _, host := range order {
		out = append(out, *byHost[host])
	}
	return out
}
