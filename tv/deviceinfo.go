package tv

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"
)

const (
	// restPort serves the device description endpoint on 2014+ TVs
	restPort = 8001

	restProbeTimeout = 2 * time.Second

	maxInfoSize = 1 << 20
)

// DeviceInfo is the JSON document served at /api/v2/ by 2014+ TVs.
// Legacy sets do not expose it; Info returns an error for those.
type DeviceInfo struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Version string       `json:"version"`
	Type    string       `json:"type"`
	URI     string       `json:"uri"`
	Device  DeviceDetail `json:"device"`
}

// DeviceDetail carries the per-device fields, including the feature
// flags newer firmware advertises as string booleans.
type DeviceDetail struct {
	OS               string `json:"OS"`
	FrameTVSupport   string `json:"FrameTVSupport"`
	GamePadSupport   string `json:"GamePadSupport"`
	TokenAuthSupport string `json:"TokenAuthSupport"`
	VoiceSupport     string `json:"VoiceSupport"`
	PowerState       string `json:"PowerState"`
	FirmwareVersion  string `json:"firmwareVersion"`
	ModelName        string `json:"modelName"`
	Name             string `json:"name"`
	NetworkType      string `json:"networkType"`
	Resolution       string `json:"resolution"`
	WifiMac          string `json:"wifiMac"`
	IP               string `json:"ip"`
}

// Info fetches the REST device description.
func (t *TV) Info(ctx context.Context) (*DeviceInfo, error) {
	base := t.restBase
	if base == "" {
		base = fmt.Sprintf("http://%s", net.JoinHostPort(t.cfg.Host, strconv.Itoa(restPort)))
	}
	endpoint := base + "/api/v2/"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("tv: build info request: %w", err)
	}

	resp, err := t.rest.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tv: fetch device info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tv: device info returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxInfoSize))
	if err != nil {
		return nil, fmt.Errorf("tv: read device info: %w", err)
	}

	var info DeviceInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("tv: parse device info: %w", err)
	}
	return &info, nil
}

// TokenAuthSupported reports whether the TV wants token authentication
// on the secure websocket port.
func (d *DeviceInfo) TokenAuthSupported() bool {
	return d.Device.TokenAuthSupport == "true"
}

// FrameTV reports whether this is a Frame model with art mode.
func (d *DeviceInfo) FrameTV() bool {
	return d.Device.FrameTVSupport == "true"
}

// PoweredOn reports the advertised power state. Firmware without the
// field is treated as on, since the endpoint answered at all.
func (d *DeviceInfo) PoweredOn() bool {
	return d.Device.PowerState == "" || d.Device.PowerState == "on"
}
