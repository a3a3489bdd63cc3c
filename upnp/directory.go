package upnp

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/samsungtv/internal/logging"
)

// Device is a discovered UPnP device (root or embedded) with its own
// service set.
type Device struct {
	// Name is the short lookup name derived from the device type
	Name string
	// FriendlyName is the advertised human-readable name
	FriendlyName string
	// ModelName is the TV model string (e.g. "UE55KS8000")
	ModelName string
	// UDN is the unique device name
	UDN string

	services map[string]*Service
	devices  map[string]*Device
}

// Service looks up a service on this device by short name.
func (d *Device) Service(name string) (*Service, bool) {
	s, ok := d.services[name]
	return s, ok
}

// Directory holds the set of remote services discovered on a TV at a
// point in time. It is rebuilt wholesale on every reconnect and cleared
// on disconnect; readers must tolerate it being empty.
type Directory struct {
	client *http.Client

	mu       sync.RWMutex
	devices  map[string]*Device
	services map[string]*Service
}

// NewDirectory creates an empty directory. A nil client uses a default
// with the standard fetch timeout.
func NewDirectory(client *http.Client) *Directory {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &Directory{
		client:   client,
		devices:  map[string]*Device{},
		services: map[string]*Service{},
	}
}

// Rebuild replaces the directory contents from the given description
// locations. Locations that fail to fetch or parse are skipped with a
// warning so one dead endpoint does not hide the rest of the TV. The
// swap is atomic: readers see either the old or the new directory.
func (d *Directory) Rebuild(ctx context.Context, locations []string) error {
	devices := map[string]*Device{}
	services := map[string]*Service{}

	for _, location := range locations {
		desc, err := fetchDescription(ctx, d.client, location)
		if err != nil {
			logging.Warn("Skipping UPnP location",
				zap.String("location", location),
				zap.Error(err),
			)
			continue
		}

		dev, err := d.buildDevice(ctx, location, desc.URLBase, &desc.Device)
		if err != nil {
			logging.Warn("Skipping UPnP device",
				zap.String("location", location),
				zap.Error(err),
			)
			continue
		}

		mergeDevice(devices, services, dev)
	}

	d.mu.Lock()
	d.devices = devices
	d.services = services
	d.mu.Unlock()

	logging.Info("Capability directory rebuilt",
		zap.Int("devices", len(devices)),
		zap.Int("services", len(services)),
	)
	return ctx.Err()
}

// Clear empties the directory. Used on disconnect.
func (d *Directory) Clear() {
	d.mu.Lock()
	d.devices = map[string]*Device{}
	d.services = map[string]*Service{}
	d.mu.Unlock()
}

// Service looks up a service by short name across all devices.
func (d *Directory) Service(name string) (*Service, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.services[name]
	return s, ok
}

// Device looks up a device by short name.
func (d *Directory) Device(name string) (*Device, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	dev, ok := d.devices[name]
	return dev, ok
}

// Resolve finds an action handle by service and action name. Resolution
// checks child devices before the flat service table so embedded devices
// shadow root-level duplicates, mirroring the dispatch order callers
// depend on. A false result means the capability is absent on this TV,
// which is a normal, non-exceptional state.
func (d *Directory) Resolve(service, action string) (*Action, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, dev := range d.devices {
		if s, ok := dev.services[service]; ok {
			if a, ok := s.actions[action]; ok {
				return a, true
			}
		}
	}
	if s, ok := d.services[service]; ok {
		if a, ok := s.actions[action]; ok {
			return a, true
		}
	}
	return nil, false
}

// Services returns the short names of all discovered services.
func (d *Directory) Services() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.services))
	for name := range d.services {
		names = append(names, name)
	}
	return names
}

// Empty reports whether the directory currently holds no services.
func (d *Directory) Empty() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.services) == 0
}

// ModelName returns the model name of the first device advertising one.
func (d *Directory) ModelName() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, dev := range d.devices {
		if dev.ModelName != "" {
			return dev.ModelName
		}
	}
	return ""
}

func (d *Directory) buildDevice(ctx context.Context, location, urlBase string, desc *descriptionDevice) (*Device, error) {
	dev := &Device{
		Name:         shortName(desc.DeviceType),
		FriendlyName: desc.FriendlyName,
		ModelName:    desc.ModelName,
		UDN:          desc.UDN,
		services:     map[string]*Service{},
		devices:      map[string]*Device{},
	}

	for i := range desc.Services {
		svc, err := d.buildService(ctx, location, urlBase, &desc.Services[i])
		if err != nil {
			logging.Warn("Skipping UPnP service",
				zap.String("service", desc.Services[i].ServiceID),
				zap.Error(err),
			)
			continue
		}
		dev.services[svc.Name] = svc
	}

	for i := range desc.Devices {
		child, err := d.buildDevice(ctx, location, urlBase, &desc.Devices[i])
		if err != nil {
			return nil, err
		}
		dev.devices[child.Name] = child
	}

	return dev, ctx.Err()
}

func (d *Directory) buildService(ctx context.Context, location, urlBase string, desc *descriptionService) (*Service, error) {
	controlURL, err := resolveURL(location, urlBase, desc.ControlURL)
	if err != nil {
		return nil, err
	}
	scpdURL, err := resolveURL(location, urlBase, desc.SCPDURL)
	if err != nil {
		return nil, err
	}

	doc, err := fetchSCPD(ctx, d.client, scpdURL)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		Name:       shortName(desc.ServiceID),
		Type:       desc.ServiceType,
		ControlURL: controlURL,
		client:     d.client,
		actions:    map[string]*Action{},
	}

	for _, a := range doc.Actions {
		action := &Action{Name: a.Name, service: svc}
		for _, arg := range a.Arguments {
			if arg.Direction == "out" {
				action.Out = append(action.Out, arg.Name)
			} else {
				action.In = append(action.In, arg.Name)
			}
		}
		svc.actions[a.Name] = action
	}

	return svc, nil
}

// mergeDevice folds a root device and its embedded children into the
// flat lookup tables. Children are registered both under their parent
// and at the top level so Resolve can find them by short name.
func mergeDevice(devices map[string]*Device, services map[string]*Service, dev *Device) {
	if _, exists := devices[dev.Name]; !exists {
		devices[dev.Name] = dev
	}
	for name, svc := range dev.services {
		if _, exists := services[name]; !exists {
			services[name] = svc
		}
	}
	for _, child := range dev.devices {
		mergeDevice(devices, services, child)
	}
}
